package services

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"progressboard/model"
)

// codec encodes the data files.
var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Files owned by the relay inside its data directory.
const (
	SnapshotFile  = "tiendocongviec.json"
	ConfigLogFile = "sheet_information.json"
	SheetDataFile = "sheet_data.json"
)

var (
	ErrNotFound        = errors.New("file not found")
	ErrInvalidSnapshot = errors.New("Invalid JSON structure")
)

// StoredSnapshot is the on-disk layout of the snapshot file. Rows are kept
// exactly as the source returned them.
type StoredSnapshot struct {
	SaveTime *string           `json:"save_time"`
	Data     []json.RawMessage `json:"data"`
}

// FileStore reads and writes the relay's JSON files. Every write replaces
// the whole file.
type FileStore struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fs, dir: dir}
}

// Path returns the location of a data file.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileStore) read(name string) ([]byte, error) {
	b, err := afero.ReadFile(s.fs, s.Path(name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return b, errors.Wrapf(err, "read %s", name)
}

// write stores v as two-space indented JSON. Raw rows are re-indented too,
// so webhook payloads never land in the file in their compact form.
func (s *FileStore) write(name string, v any) (string, error) {
	compact, err := codec.Marshal(v)
	if err != nil {
		return "", errors.Wrapf(err, "encode %s", name)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return "", errors.Wrapf(err, "indent %s", name)
	}
	b := buf.Bytes()
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create data dir")
	}
	p := s.Path(name)
	if err := afero.WriteFile(s.fs, p, b, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", name)
	}
	return p, nil
}

// ReadSnapshot returns the stored snapshot. Legacy files holding a bare
// array are accepted and come back with a nil SaveTime.
func (s *FileStore) ReadSnapshot() (*StoredSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.read(SnapshotFile)
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(b)
}

func decodeSnapshot(b []byte) (*StoredSnapshot, error) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var rows []json.RawMessage
		if err := codec.Unmarshal(b, &rows); err != nil {
			return nil, errors.Wrap(err, "decode legacy snapshot")
		}
		return &StoredSnapshot{Data: rows}, nil
	}
	var obj struct {
		SaveTime *string        `json:"save_time"`
		Data     json.RawMessage `json:"data"`
	}
	if err := codec.Unmarshal(b, &obj); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	data := bytes.TrimSpace(obj.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, ErrInvalidSnapshot
	}
	snap := &StoredSnapshot{SaveTime: obj.SaveTime}
	if err := codec.Unmarshal(data, &snap.Data); err != nil {
		return nil, errors.Wrap(err, "decode snapshot data")
	}
	return snap, nil
}

// WriteSnapshot replaces the snapshot file.
func (s *FileStore) WriteSnapshot(snap StoredSnapshot) (string, error) {
	if snap.Data == nil {
		snap.Data = []json.RawMessage{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(SnapshotFile, snap)
}

// ReadConfigLog returns the raw config log entries.
func (s *FileStore) ReadConfigLog() ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readConfigLog()
}

func (s *FileStore) readConfigLog() ([]json.RawMessage, error) {
	b, err := s.read(ConfigLogFile)
	if err != nil {
		return nil, err
	}
	var entries []json.RawMessage
	if err := codec.Unmarshal(b, &entries); err != nil {
		return nil, errors.Wrap(err, "decode config log")
	}
	return entries, nil
}

// WriteConfigLog replaces the config log with entries.
func (s *FileStore) WriteConfigLog(entries []json.RawMessage) (string, error) {
	if entries == nil {
		entries = []json.RawMessage{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ConfigLogFile, entries)
}

// AppendConfigLog adds one entry to the end of the config log.
func (s *FileStore) AppendConfigLog(entry model.SheetLogEntry) (string, error) {
	raw, err := codec.Marshal(entry)
	if err != nil {
		return "", errors.Wrap(err, "encode log entry")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// an unreadable log is started over
	entries, err := s.readConfigLog()
	if err != nil {
		entries = nil
	}
	return s.write(ConfigLogFile, append(entries, raw))
}

// LatestConfig returns the configuration in the last log entry, or nil when
// the log is missing or empty.
func (s *FileStore) LatestConfig() (*model.WebhookConfig, error) {
	entries, err := s.ReadConfigLog()
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	var last model.SheetLogEntry
	if err := codec.Unmarshal(entries[len(entries)-1], &last); err != nil {
		return nil, errors.Wrap(err, "decode latest config")
	}
	cfg := last.Config()
	return &cfg, nil
}

// WriteSheetData stores an arbitrary payload in the raw sheet cache.
func (s *FileStore) WriteSheetData(raw json.RawMessage) (string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("null")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(SheetDataFile, raw)
}

// ReadSheetData returns the raw sheet cache.
func (s *FileStore) ReadSheetData() (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.read(SheetDataFile)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
