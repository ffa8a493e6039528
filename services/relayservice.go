package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"progressboard/model"
)

// RelayService implements the relay endpoints on top of a FileStore, a
// Source and an optional Mirror.
type RelayService struct {
	files      *FileStore
	source     Source
	mirror     Mirror
	refreshCfg model.WebhookConfig
	loc        *time.Location
	now        func() time.Time
	log        *logrus.Entry
}

type Option func(*RelayService)

func WithMirror(m Mirror) Option {
	return func(s *RelayService) {
		if m != nil {
			s.mirror = m
		}
	}
}

// WithRefreshConfig sets the fixed source used by Refresh.
func WithRefreshConfig(cfg model.WebhookConfig) Option {
	return func(s *RelayService) { s.refreshCfg = cfg }
}

// WithLocation sets the zone save times are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(s *RelayService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *RelayService) { s.now = now }
}

func WithLogger(l *logrus.Entry) Option {
	return func(s *RelayService) { s.log = l }
}

func NewRelayService(files *FileStore, source Source, opts ...Option) *RelayService {
	s := &RelayService{
		files:      files,
		source:     source,
		mirror:     NopMirror{},
		refreshCfg: model.DefaultConfig(),
		loc:        time.Local,
		now:        time.Now,
		log:        logrus.WithField("component", "relay"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchResult describes a snapshot written by FetchAndSave or Refresh.
type FetchResult struct {
	FilePath  string
	Rows      []json.RawMessage
	SaveTime  string
	Timestamp time.Time
}

// Tasks returns the current snapshot. When no snapshot file exists the
// mirror is consulted; nil means there is no data anywhere.
func (s *RelayService) Tasks(ctx context.Context) (*StoredSnapshot, error) {
	snap, err := s.files.ReadSnapshot()
	if err == nil {
		return snap, nil
	}
	if err != ErrNotFound {
		return nil, err
	}
	snap, err = s.mirror.GetSnapshot(ctx)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		s.log.WithError(err).Warn("mirror read failed")
		return nil, nil
	}
	s.log.WithField("count", len(snap.Data)).Info("serving mirrored snapshot")
	return snap, nil
}

// FetchAndSave pulls cfg's rows from the source and replaces the snapshot.
// Nothing is written when the fetch fails.
func (s *RelayService) FetchAndSave(ctx context.Context, cfg model.WebhookConfig) (*FetchResult, error) {
	raw, err := s.source.Fetch(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var rows []json.RawMessage
	if err := codec.Unmarshal(raw, &rows); err != nil || rows == nil {
		return nil, &FetchError{Kind: FetchMalformed, Err: errors.New("payload is not a JSON array")}
	}

	at := s.now()
	saveTime := model.FormatSaveTime(at.In(s.loc))
	snap := StoredSnapshot{SaveTime: &saveTime, Data: rows}
	path, err := s.files.WriteSnapshot(snap)
	if err != nil {
		return nil, err
	}
	if err := s.mirror.PutSnapshot(ctx, snap); err != nil {
		s.log.WithError(err).Warn("mirror write failed")
	}
	s.log.WithFields(logrus.Fields{"path": path, "count": len(rows), "sheet": cfg.SheetName}).Info("snapshot saved")
	return &FetchResult{FilePath: path, Rows: rows, SaveTime: saveTime, Timestamp: at.UTC()}, nil
}

// Refresh is FetchAndSave against the fixed refresh source.
func (s *RelayService) Refresh(ctx context.Context) (*FetchResult, error) {
	return s.FetchAndSave(ctx, s.refreshCfg)
}

// SaveSheetInfo records a configuration. A non-nil allLogs replaces the log
// verbatim; otherwise cfg is appended as a new entry.
func (s *RelayService) SaveSheetInfo(ctx context.Context, cfg model.WebhookConfig, allLogs []json.RawMessage) (string, error) {
	if allLogs != nil {
		path, err := s.files.WriteConfigLog(allLogs)
		if err != nil {
			return "", err
		}
		if len(allLogs) > 0 {
			var last model.SheetLogEntry
			if codec.Unmarshal(allLogs[len(allLogs)-1], &last) == nil && !last.Config().IsZero() {
				s.mirrorConfig(ctx, last)
			}
		}
		return path, nil
	}
	if cfg.IsZero() {
		return "", &model.ValidationError{Field: "sheet_url", Message: "sheet_url and sheet_name are required"}
	}
	entry := model.NewSheetLogEntry(cfg, s.now().In(s.loc))
	path, err := s.files.AppendConfigLog(entry)
	if err != nil {
		return "", err
	}
	s.mirrorConfig(ctx, entry)
	return path, nil
}

func (s *RelayService) mirrorConfig(ctx context.Context, entry model.SheetLogEntry) {
	if err := s.mirror.AppendConfig(ctx, entry); err != nil {
		s.log.WithError(err).Warn("mirror config write failed")
	}
}

// SheetConfig returns the latest saved configuration, or nil.
func (s *RelayService) SheetConfig(ctx context.Context) (*model.WebhookConfig, error) {
	cfg, err := s.files.LatestConfig()
	if err != nil || cfg != nil {
		return cfg, err
	}
	cfg, err = s.mirror.LatestConfig(ctx)
	if err != nil {
		s.log.WithError(err).Warn("mirror config read failed")
		return nil, nil
	}
	return cfg, nil
}

// SaveSheetData writes the raw sheet cache.
func (s *RelayService) SaveSheetData(raw json.RawMessage) (string, error) {
	return s.files.WriteSheetData(raw)
}
