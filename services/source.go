package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"progressboard/model"
)

// Source produces the rows of a sheet as a JSON array.
type Source interface {
	Fetch(ctx context.Context, cfg model.WebhookConfig) (json.RawMessage, error)
}

// FetchKind classifies a failed source fetch.
type FetchKind int

const (
	FetchTransport FetchKind = iota + 1
	FetchTimeout
	FetchConnectTimeout
	FetchStatus
	FetchMalformed
)

// FetchError is returned by Source implementations.
type FetchError struct {
	Kind   FetchKind
	Status int
	Body   string
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchTimeout:
		return "Request timeout - webhook took too long to respond"
	case FetchConnectTimeout:
		return "Connection timeout - unable to connect to webhook server"
	case FetchStatus:
		return fmt.Sprintf("Webhook API returned %d: %s. Body: %s", e.Status, http.StatusText(e.Status), e.Body)
	case FetchMalformed:
		if e.Err != nil {
			return "Webhook returned an unexpected payload: " + e.Err.Error()
		}
		return "Webhook returned an unexpected payload"
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "webhook request failed"
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Type names the failure for the details block of error responses.
func (e *FetchError) Type() string {
	switch e.Kind {
	case FetchTimeout:
		return "TimeoutError"
	case FetchConnectTimeout:
		return "ConnectTimeoutError"
	case FetchStatus:
		return "UpstreamError"
	case FetchMalformed:
		return "MalformedResponseError"
	default:
		return "NetworkError"
	}
}

// OriginalError is the underlying error text, or the message itself.
func (e *FetchError) OriginalError() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Error()
}

// WebhookSource posts {sheet_url, sheet_name} to a webhook that answers with
// the sheet rows.
type WebhookSource struct {
	url    string
	client *resty.Client
	log    *logrus.Entry
}

// NewWebhookSource bounds every call by timeout and every dial by
// connectTimeout.
func NewWebhookSource(url string, timeout, connectTimeout time.Duration, log *logrus.Entry) *WebhookSource {
	if log == nil {
		log = logrus.WithField("component", "webhook")
	}
	dialer := &net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext

	client := resty.New().
		SetTransport(transport).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetLogger(log)
	return &WebhookSource{url: url, client: client, log: log}
}

func (w *WebhookSource) Fetch(ctx context.Context, cfg model.WebhookConfig) (json.RawMessage, error) {
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(cfg).
		Post(w.url)
	if err != nil {
		fe := classifyFetchError(err)
		w.log.WithError(err).WithField("kind", fe.Type()).Warn("webhook request failed")
		return nil, fe
	}
	w.log.WithFields(logrus.Fields{"status": resp.StatusCode(), "bytes": len(resp.Body())}).Debug("webhook responded")
	if !resp.IsSuccess() {
		w.log.WithField("status", resp.StatusCode()).Warn("webhook returned error status")
		return nil, &FetchError{Kind: FetchStatus, Status: resp.StatusCode(), Body: string(resp.Body())}
	}
	return requireArray(resp.Body())
}

func requireArray(body []byte) (json.RawMessage, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &FetchError{Kind: FetchMalformed, Err: errors.New("payload is not a JSON array")}
	}
	if rows == nil {
		return nil, &FetchError{Kind: FetchMalformed, Err: errors.New("payload is null")}
	}
	return json.RawMessage(body), nil
}

func classifyFetchError(err error) *FetchError {
	var op *net.OpError
	if errors.As(err, &op) && op.Op == "dial" && op.Timeout() {
		return &FetchError{Kind: FetchConnectTimeout, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Kind: FetchTimeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &FetchError{Kind: FetchTimeout, Err: err}
	}
	return &FetchError{Kind: FetchTransport, Err: err}
}
