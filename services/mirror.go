package services

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"progressboard/model"
)

// Mirror keeps a remote copy of the snapshot and config log.
type Mirror interface {
	PutSnapshot(ctx context.Context, snap StoredSnapshot) error
	// GetSnapshot returns ErrNotFound when nothing was mirrored yet.
	GetSnapshot(ctx context.Context) (*StoredSnapshot, error)
	AppendConfig(ctx context.Context, entry model.SheetLogEntry) error
	// LatestConfig returns nil when no entry exists.
	LatestConfig(ctx context.Context) (*model.WebhookConfig, error)
}

// NopMirror is used when mirroring is disabled.
type NopMirror struct{}

func (NopMirror) PutSnapshot(context.Context, StoredSnapshot) error { return nil }

func (NopMirror) GetSnapshot(context.Context) (*StoredSnapshot, error) { return nil, ErrNotFound }

func (NopMirror) AppendConfig(context.Context, model.SheetLogEntry) error { return nil }

func (NopMirror) LatestConfig(context.Context) (*model.WebhookConfig, error) { return nil, nil }

const (
	mirrorCollection = "ProgressBoard"
	snapshotDoc      = "snapshot"
	configDoc        = "config"
	configLogs       = "Logs"
)

type mirroredSnapshot struct {
	SaveTime  string    `firestore:"save_time"`
	Data      string    `firestore:"data"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type mirroredLogEntry struct {
	Timestamp string    `firestore:"timestamp"`
	SheetURL  string    `firestore:"sheet_url"`
	SheetName string    `firestore:"sheet_name"`
	Action    string    `firestore:"action"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// FirestoreMirror stores the snapshot rows as one JSON text field so the
// upstream keys survive unchanged.
type FirestoreMirror struct {
	client *firestore.Client
	now    func() time.Time
}

func NewFirestoreMirror(client *firestore.Client) *FirestoreMirror {
	return &FirestoreMirror{client: client, now: time.Now}
}

func (m *FirestoreMirror) PutSnapshot(ctx context.Context, snap StoredSnapshot) error {
	data, err := codec.Marshal(snap.Data)
	if err != nil {
		return errors.Wrap(err, "encode snapshot rows")
	}
	doc := mirroredSnapshot{Data: string(data), UpdatedAt: m.now()}
	if snap.SaveTime != nil {
		doc.SaveTime = *snap.SaveTime
	}
	_, err = m.client.Collection(mirrorCollection).Doc(snapshotDoc).Set(ctx, doc)
	return errors.Wrap(err, "mirror snapshot")
}

func (m *FirestoreMirror) GetSnapshot(ctx context.Context) (*StoredSnapshot, error) {
	ds, err := m.client.Collection(mirrorCollection).Doc(snapshotDoc).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "read mirrored snapshot")
	}
	var doc mirroredSnapshot
	if err := ds.DataTo(&doc); err != nil {
		return nil, errors.Wrap(err, "decode mirrored snapshot")
	}
	snap := &StoredSnapshot{}
	if doc.SaveTime != "" {
		snap.SaveTime = &doc.SaveTime
	}
	if err := codec.Unmarshal([]byte(doc.Data), &snap.Data); err != nil {
		return nil, errors.Wrap(err, "decode mirrored rows")
	}
	if snap.Data == nil {
		snap.Data = []json.RawMessage{}
	}
	return snap, nil
}

func (m *FirestoreMirror) AppendConfig(ctx context.Context, entry model.SheetLogEntry) error {
	doc := mirroredLogEntry{
		Timestamp: entry.Timestamp,
		SheetURL:  entry.SheetURL,
		SheetName: entry.SheetName,
		Action:    entry.Action,
		CreatedAt: m.now(),
	}
	_, err := m.client.Collection(mirrorCollection).Doc(configDoc).
		Collection(configLogs).Doc(uuid.New().String()).Set(ctx, doc)
	return errors.Wrap(err, "mirror config entry")
}

func (m *FirestoreMirror) LatestConfig(ctx context.Context) (*model.WebhookConfig, error) {
	iter := m.client.Collection(mirrorCollection).Doc(configDoc).Collection(configLogs).
		OrderBy("createdAt", firestore.Desc).Limit(1).Documents(ctx)
	defer iter.Stop()

	ds, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read mirrored config")
	}
	var doc mirroredLogEntry
	if err := ds.DataTo(&doc); err != nil {
		return nil, errors.Wrap(err, "decode mirrored config")
	}
	return &model.WebhookConfig{SheetURL: doc.SheetURL, SheetName: doc.SheetName}, nil
}
