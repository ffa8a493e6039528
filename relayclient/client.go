// Package relayclient talks to the progress relay server over HTTP.
package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"progressboard/model"
)

// DefaultTimeout bounds every relay call.
const DefaultTimeout = 30 * time.Second

// Client is safe for concurrent use.
type Client struct {
	rc      *resty.Client
	baseURL string
	timeout time.Duration
	log     *logrus.Entry
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(c *Client) { c.log = l }
}

// WithTransport swaps the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.rc.SetTransport(rt) }
}

func New(baseURL string, opts ...Option) *Client {
	base := strings.TrimRight(baseURL, "/")
	c := &Client{
		rc:      resty.New(),
		baseURL: base,
		timeout: DefaultTimeout,
		log:     logrus.WithField("component", "relayclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rc.SetBaseURL(base).
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/json").
		SetLogger(c.log)
	return c
}

// BaseURL returns the relay address the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type tasksEnvelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	SaveTime  *string         `json:"save_time"`
	Timestamp string          `json:"timestamp"`
	Message   string          `json:"message"`
	Error     string          `json:"error"`
}

// GetTasks returns the relay's current snapshot.
func (c *Client) GetTasks(ctx context.Context) (*model.Snapshot, error) {
	const op = "get tasks"
	var env tasksEnvelope
	if err := c.do(ctx, op, http.MethodGet, "/api/tasks", nil, &env); err != nil {
		return nil, err
	}
	return c.snapshot(op, env)
}

// RefreshFromSource makes the relay re-pull its fixed default source and
// returns the new snapshot.
func (c *Client) RefreshFromSource(ctx context.Context) (*model.Snapshot, error) {
	const op = "refresh data"
	var env tasksEnvelope
	if err := c.do(ctx, op, http.MethodPost, "/api/refresh-data", nil, &env); err != nil {
		return nil, err
	}
	if env.SaveTime == nil && env.Timestamp != "" {
		env.SaveTime = &env.Timestamp
	}
	return c.snapshot(op, env)
}

func (c *Client) snapshot(op string, env tasksEnvelope) (*model.Snapshot, error) {
	if !env.Success {
		return nil, upstreamError(op, 0, mustJSON(env))
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, malformedError(op, "data is not a list", nil)
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, malformedError(op, "data is not a list", err)
	}
	tasks, err := model.DecodeTaskRecords(raws)
	if err != nil {
		return nil, malformedError(op, err.Error(), err)
	}
	snap := &model.Snapshot{Tasks: tasks}
	if env.SaveTime != nil {
		snap.SaveTime = *env.SaveTime
	}
	c.log.WithFields(logrus.Fields{"op": op, "count": len(tasks)}).Debug("snapshot received")
	return snap, nil
}

// GetConfig returns the relay's latest sheet configuration, or nil when it
// has none.
func (c *Client) GetConfig(ctx context.Context) (*model.WebhookConfig, error) {
	const op = "get config"
	var env struct {
		Success bool                 `json:"success"`
		Config  *model.WebhookConfig `json:"config"`
	}
	if err := c.do(ctx, op, http.MethodGet, "/api/sheet-config", nil, &env); err != nil {
		return nil, err
	}
	if !env.Success || env.Config == nil || env.Config.IsZero() {
		return nil, nil
	}
	return env.Config, nil
}

// SaveConfig appends cfg to the relay's configuration log.
func (c *Client) SaveConfig(ctx context.Context, cfg model.WebhookConfig) error {
	const op = "save config"
	// without allLogs the relay appends a stamped entry to its log
	body := map[string]string{"sheet_url": cfg.SheetURL, "sheet_name": cfg.SheetName}
	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, op, http.MethodPost, "/api/save-sheet-info", body, &env); err != nil {
		return err
	}
	if !env.Success {
		return upstreamError(op, 0, mustJSON(env))
	}
	return nil
}

// FetchAndSaveSheetData asks the relay to pull the given sheet and store it.
// It returns the number of rows the relay saved.
func (c *Client) FetchAndSaveSheetData(ctx context.Context, cfg model.WebhookConfig) (int, error) {
	const op = "fetch sheet data"
	body := map[string]string{"sheet_url": cfg.SheetURL, "sheet_name": cfg.SheetName}
	var env struct {
		Success   bool `json:"success"`
		DataCount int  `json:"dataCount"`
	}
	if err := c.do(ctx, op, http.MethodPost, "/api/fetch-and-save-sheet-data", body, &env); err != nil {
		return 0, err
	}
	if !env.Success {
		return 0, upstreamError(op, 0, mustJSON(env))
	}
	return env.DataCount, nil
}

// SaveSheetData stores an arbitrary payload in the relay's raw sheet cache
// and returns the file path reported by the relay.
func (c *Client) SaveSheetData(ctx context.Context, data any) (string, error) {
	const op = "save sheet data"
	var env struct {
		Success  bool   `json:"success"`
		FilePath string `json:"filePath"`
	}
	if err := c.do(ctx, op, http.MethodPost, "/api/save-sheet-data", map[string]any{"sheetData": data}, &env); err != nil {
		return "", err
	}
	if !env.Success {
		return "", upstreamError(op, 0, mustJSON(env))
	}
	return env.FilePath, nil
}

// Health checks that the relay is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/api/health", nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	req := c.rc.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		c.log.WithError(err).WithField("op", op).Warn("relay request failed")
		return c.transportError(op, err)
	}
	if !resp.IsSuccess() {
		return upstreamError(op, resp.StatusCode(), resp.Body())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return malformedError(op, "body is not valid JSON", err)
	}
	return nil
}

func (c *Client) transportError(op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return timeoutError(op, c.timeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return timeoutError(op, c.timeout, err)
	}
	return networkError(op, c.baseURL, err)
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
