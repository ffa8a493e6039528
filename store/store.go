// Package store holds the client side view of the progress data: the task
// list, its filtered view, the derived stats and the sync metadata.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"progressboard/engine"
	"progressboard/model"
	"progressboard/relayclient"
)

// Relay is the subset of relayclient.Client the store needs.
type Relay interface {
	GetTasks(ctx context.Context) (*model.Snapshot, error)
	GetConfig(ctx context.Context) (*model.WebhookConfig, error)
	SaveConfig(ctx context.Context, cfg model.WebhookConfig) error
	RefreshFromSource(ctx context.Context) (*model.Snapshot, error)
}

var _ Relay = (*relayclient.Client)(nil)

// LoadStatus tracks the last load operation.
type LoadStatus int

const (
	Idle LoadStatus = iota
	Loading
	Ready
	Errored
)

func (s LoadStatus) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Errored:
		return "errored"
	default:
		return "idle"
	}
}

// ErrSuperseded is returned by a load whose response arrived after a newer
// load had started. Its result is discarded.
var ErrSuperseded = errors.New("load superseded by a newer request")

// ErrNoConfig is returned by loads when no sheet configuration is set.
var ErrNoConfig = &model.ValidationError{Field: "sheet_url", Message: "no sheet configuration; set one first"}

// State is a copy of the store contents. Slices are owned by the caller.
type State struct {
	Tasks         []model.TaskRecord
	FilteredTasks []model.TaskRecord
	Stats         model.DashboardStats
	Status        LoadStatus
	Error         string
	Config        model.WebhookConfig
	Filter        engine.Filter
	SaveTime      string
	LastSync      time.Time
}

type cachedSnapshot struct {
	SaveTime string             `json:"save_time"`
	Data     []model.TaskRecord `json:"data"`
}

// Store is safe for concurrent use. Derived fields are recomputed under the
// same lock as the change that invalidates them.
type Store struct {
	relay Relay
	local LocalStorage
	log   *logrus.Entry
	now   func() time.Time

	mu    sync.Mutex
	seq   uint64
	state State
}

type Option func(*Store)

func WithLogger(l *logrus.Entry) Option {
	return func(s *Store) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithConfig replaces the compiled-in default configuration.
func WithConfig(cfg model.WebhookConfig) Option {
	return func(s *Store) { s.state.Config = cfg }
}

// New creates an empty store. local may be nil, in which case nothing is
// cached.
func New(relay Relay, local LocalStorage, opts ...Option) *Store {
	s := &Store{
		relay: relay,
		local: local,
		log:   logrus.WithField("component", "store"),
		now:   time.Now,
	}
	s.state.Config = model.DefaultConfig()
	for _, opt := range opts {
		opt(s)
	}
	s.recompute()
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

// LoadTasks replaces the task list with the relay's current snapshot. On
// failure the previous tasks stay in place and the error is recorded.
func (s *Store) LoadTasks(ctx context.Context) (State, error) {
	return s.load(ctx, "load tasks", s.relay.GetTasks)
}

// Refresh makes the relay pull fresh data from its source, then applies the
// new snapshot like LoadTasks.
func (s *Store) Refresh(ctx context.Context) (State, error) {
	return s.load(ctx, "refresh", s.relay.RefreshFromSource)
}

func (s *Store) load(ctx context.Context, op string, fetch func(context.Context) (*model.Snapshot, error)) (State, error) {
	s.mu.Lock()
	if s.state.Config.IsZero() {
		s.state.Status = Errored
		s.state.Error = ErrNoConfig.Error()
		st := s.copyState()
		s.mu.Unlock()
		return st, ErrNoConfig
	}
	s.seq++
	id := s.seq
	s.state.Status = Loading
	s.mu.Unlock()

	snap, err := fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.seq {
		s.log.WithField("op", op).Debug("discarding stale response")
		return s.copyState(), ErrSuperseded
	}
	if err != nil {
		s.state.Status = Errored
		s.state.Error = err.Error()
		s.log.WithError(err).WithField("op", op).Warn("load failed, keeping previous data")
		return s.copyState(), err
	}

	s.state.Tasks = snap.Tasks
	s.state.SaveTime = snap.SaveTime
	s.state.LastSync = s.now()
	s.state.Status = Ready
	s.state.Error = ""
	s.recompute()
	s.cache()
	s.log.WithFields(logrus.Fields{"op": op, "count": len(snap.Tasks)}).Info("tasks loaded")
	return s.copyState(), nil
}

// LoadConfig fetches the relay's saved configuration. When the relay has
// none, the current configuration is kept. A saved configuration that fails
// validation is rejected with its *model.ValidationError and the current one
// stays in effect.
func (s *Store) LoadConfig(ctx context.Context) (State, error) {
	cfg, err := s.relay.GetConfig(ctx)
	if err == nil && cfg != nil {
		err = cfg.Validate()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.Error = err.Error()
		s.log.WithError(err).Warn("relay config not applied")
		return s.copyState(), err
	}
	if cfg != nil {
		s.state.Config = *cfg
		s.persist(KeyConfig, cfg)
	}
	return s.copyState(), nil
}

// SetConfig validates cfg, makes it current and saves it locally and on the
// relay. A *model.ValidationError leaves the configuration unchanged and
// nothing is sent. A relay failure is returned but the new configuration
// stays in effect locally.
func (s *Store) SetConfig(ctx context.Context, cfg model.WebhookConfig) (State, error) {
	if err := cfg.Validate(); err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	s.state.Config = cfg
	s.persist(KeyConfig, cfg)
	s.mu.Unlock()

	err := s.relay.SaveConfig(ctx, cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.Error = err.Error()
	}
	return s.copyState(), err
}

// SetStatusFilter narrows the filtered list to one status; nil selects all.
func (s *Store) SetStatusFilter(st *model.Status) State {
	return s.setFilter(func(f *engine.Filter) { f.Status = cloneStatus(st) })
}

func (s *Store) SetUnitFilter(unit string) State {
	return s.setFilter(func(f *engine.Filter) { f.Unit = unit })
}

func (s *Store) SetSearchTerm(term string) State {
	return s.setFilter(func(f *engine.Filter) { f.Search = term })
}

// SetFilter replaces all filter fields at once.
func (s *Store) SetFilter(f engine.Filter) State {
	return s.setFilter(func(cur *engine.Filter) {
		*cur = f
		cur.Status = cloneStatus(f.Status)
	})
}

func (s *Store) setFilter(apply func(*engine.Filter)) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(&s.state.Filter)
	s.recompute()
	return s.copyState()
}

// LoadSampleData replaces the task list with the built-in demo rows. Any
// load still in flight is discarded when it returns.
func (s *Store) LoadSampleData() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.state.Tasks = model.SampleTasks()
	s.state.SaveTime = ""
	s.state.Status = Ready
	s.state.Error = ""
	s.recompute()
	return s.copyState()
}

func (s *Store) ClearError() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
	if s.state.Status == Errored {
		s.state.Status = Idle
		if len(s.state.Tasks) > 0 {
			s.state.Status = Ready
		}
	}
	return s.copyState()
}

// Restore loads the configuration and the last cached snapshot from local
// storage. Missing keys are not an error.
func (s *Store) Restore() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.local == nil {
		return s.copyState(), nil
	}

	var cfg model.WebhookConfig
	ok, err := s.local.Get(KeyConfig, &cfg)
	if err != nil {
		return s.copyState(), err
	}
	if ok && cfg.Validate() == nil {
		s.state.Config = cfg
	}

	var cached cachedSnapshot
	ok, err = s.local.Get(KeyCachedTasks, &cached)
	if err != nil {
		return s.copyState(), err
	}
	if ok {
		s.state.Tasks = cached.Data
		s.state.SaveTime = cached.SaveTime
		s.state.Status = Ready
		s.recompute()
	}

	var last time.Time
	if ok, err = s.local.Get(KeyLastSync, &last); err != nil {
		return s.copyState(), err
	} else if ok {
		s.state.LastSync = last
	}
	return s.copyState(), nil
}

func (s *Store) recompute() {
	s.state.FilteredTasks = engine.FilterTasks(s.state.Tasks, s.state.Filter)
	s.state.Stats = engine.ComputeStats(s.state.Tasks)
}

func (s *Store) cache() {
	s.persist(KeyCachedTasks, cachedSnapshot{SaveTime: s.state.SaveTime, Data: s.state.Tasks})
	s.persist(KeyLastSync, s.state.LastSync)
}

// persist writes to local storage. Failures are logged only.
func (s *Store) persist(key string, v any) {
	if s.local == nil {
		return
	}
	if err := s.local.Set(key, v); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("local storage write failed")
	}
}

func (s *Store) copyState() State {
	st := s.state
	st.Tasks = append([]model.TaskRecord(nil), s.state.Tasks...)
	st.FilteredTasks = append([]model.TaskRecord(nil), s.state.FilteredTasks...)
	st.Filter.Status = cloneStatus(s.state.Filter.Status)
	return st
}

func cloneStatus(st *model.Status) *model.Status {
	if st == nil {
		return nil
	}
	v := *st
	return &v
}
