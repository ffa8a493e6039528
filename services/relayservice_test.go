package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progressboard/model"
)

type fakeSource struct {
	body json.RawMessage
	err  error
	got  []model.WebhookConfig
}

func (f *fakeSource) Fetch(_ context.Context, cfg model.WebhookConfig) (json.RawMessage, error) {
	f.got = append(f.got, cfg)
	return f.body, f.err
}

type memMirror struct {
	snap    *StoredSnapshot
	entries []model.SheetLogEntry
}

func (m *memMirror) PutSnapshot(_ context.Context, snap StoredSnapshot) error {
	m.snap = &snap
	return nil
}

func (m *memMirror) GetSnapshot(context.Context) (*StoredSnapshot, error) {
	if m.snap == nil {
		return nil, ErrNotFound
	}
	return m.snap, nil
}

func (m *memMirror) AppendConfig(_ context.Context, e model.SheetLogEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memMirror) LatestConfig(context.Context) (*model.WebhookConfig, error) {
	if len(m.entries) == 0 {
		return nil, nil
	}
	cfg := m.entries[len(m.entries)-1].Config()
	return &cfg, nil
}

var relayNow = time.Date(2025, 10, 1, 3, 4, 5, 0, time.UTC)

func newRelay(t *testing.T, src Source, opts ...Option) *RelayService {
	t.Helper()
	loc := time.FixedZone("ICT", 7*3600)
	opts = append([]Option{WithClock(func() time.Time { return relayNow }), WithLocation(loc)}, opts...)
	return NewRelayService(NewFileStore(afero.NewMemMapFs(), "/data"), src, opts...)
}

func TestFetchAndSave(t *testing.T) {
	src := &fakeSource{body: json.RawMessage(`[{"ID":1},{"ID":2},{"ID":3}]`)}
	mirror := &memMirror{}
	relay := newRelay(t, src, WithMirror(mirror))
	cfg := model.WebhookConfig{SheetURL: "https://docs.google.com/spreadsheets/d/abc", SheetName: "S"}

	res, err := relay.FetchAndSave(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "/data/"+SnapshotFile, res.FilePath)
	assert.Len(t, res.Rows, 3)
	assert.Equal(t, "10:04:05 01/10/2025", res.SaveTime)
	assert.Equal(t, []model.WebhookConfig{cfg}, src.got)

	snap, err := relay.Tasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Data, 3)
	assert.Equal(t, "10:04:05 01/10/2025", *snap.SaveTime)
	require.NotNil(t, mirror.snap)
	assert.Len(t, mirror.snap.Data, 3)
}

func TestFetchFailureKeepsSnapshot(t *testing.T) {
	src := &fakeSource{body: json.RawMessage(`[{"ID":1}]`)}
	relay := newRelay(t, src)
	_, err := relay.FetchAndSave(context.Background(), model.DefaultConfig())
	require.NoError(t, err)

	src.body = nil
	src.err = &FetchError{Kind: FetchTimeout}
	_, err = relay.FetchAndSave(context.Background(), model.DefaultConfig())
	require.Error(t, err)

	src.err = nil
	src.body = json.RawMessage(`{"not":"a list"}`)
	_, err = relay.FetchAndSave(context.Background(), model.DefaultConfig())
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FetchMalformed, fe.Kind)

	snap, err := relay.Tasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Data, 1)
}

func TestRefreshUsesFixedSource(t *testing.T) {
	src := &fakeSource{body: json.RawMessage(`[]`)}
	fixed := model.WebhookConfig{SheetURL: "https://docs.google.com/spreadsheets/d/fixed", SheetName: "F"}
	relay := newRelay(t, src, WithRefreshConfig(fixed))

	res, err := relay.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Equal(t, relayNow, res.Timestamp)
	assert.Equal(t, []model.WebhookConfig{fixed}, src.got)
}

func TestTasksEmptyAndMirrorFallback(t *testing.T) {
	relay := newRelay(t, &fakeSource{})
	snap, err := relay.Tasks(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)

	st := "09:00:00 30/09/2025"
	mirror := &memMirror{snap: &StoredSnapshot{SaveTime: &st, Data: []json.RawMessage{json.RawMessage(`{"ID":9}`)}}}
	relay = newRelay(t, &fakeSource{}, WithMirror(mirror))
	snap, err = relay.Tasks(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, st, *snap.SaveTime)
}

func TestSaveSheetInfo(t *testing.T) {
	mirror := &memMirror{}
	relay := newRelay(t, &fakeSource{}, WithMirror(mirror))
	ctx := context.Background()
	a := model.WebhookConfig{SheetURL: "https://docs.google.com/spreadsheets/d/a", SheetName: "A"}
	b := model.WebhookConfig{SheetURL: "https://docs.google.com/spreadsheets/d/b", SheetName: "B"}

	_, err := relay.SaveSheetInfo(ctx, a, nil)
	require.NoError(t, err)
	_, err = relay.SaveSheetInfo(ctx, b, nil)
	require.NoError(t, err)

	cfg, err := relay.SheetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, &b, cfg)
	assert.Len(t, mirror.entries, 2)
	assert.Equal(t, "2025-10-01T10:04:05+07:00", mirror.entries[0].Timestamp)

	// allLogs replaces the log verbatim
	logs := []json.RawMessage{json.RawMessage(`{"timestamp":"t","sheet_url":"https://docs.google.com/spreadsheets/d/c","sheet_name":"C","action":"configuration_saved","extra":true}`)}
	_, err = relay.SaveSheetInfo(ctx, model.WebhookConfig{}, logs)
	require.NoError(t, err)
	cfg, err = relay.SheetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "C", cfg.SheetName)

	_, err = relay.SaveSheetInfo(ctx, model.WebhookConfig{}, nil)
	var ve *model.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSheetConfigFallsBackToMirror(t *testing.T) {
	mirror := &memMirror{entries: []model.SheetLogEntry{{SheetURL: "https://docs.google.com/spreadsheets/d/m", SheetName: "M"}}}
	relay := newRelay(t, &fakeSource{}, WithMirror(mirror))
	cfg, err := relay.SheetConfig(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "M", cfg.SheetName)
}
