package store

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Local storage keys.
const (
	KeyConfig      = "webhookConfig"
	KeyCachedTasks = "cachedTasks"
	KeyLastSync    = "lastSync"
)

// LocalStorage is a small key/value store for values that must survive a
// restart of the client.
type LocalStorage interface {
	// Get decodes the value stored under key into v. It reports false when
	// nothing is stored.
	Get(key string, v any) (bool, error)
	Set(key string, v any) error
	Remove(key string) error
}

// FileStorage keeps one JSON file per key in a directory.
type FileStorage struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

func NewFileStorage(fs afero.Fs, dir string) *FileStorage {
	return &FileStorage{fs: fs, dir: dir}
}

// NewMemoryStorage is backed by an in-memory filesystem.
func NewMemoryStorage() *FileStorage {
	return NewFileStorage(afero.NewMemMapFs(), "/")
}

func (s *FileStorage) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", errors.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *FileStorage) Get(key string, v any) (bool, error) {
	p, err := s.path(key)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "read %s", key)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, errors.Wrapf(err, "decode %s", key)
	}
	return true, nil
}

func (s *FileStorage) Set(key string, v any) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "create storage dir")
	}
	return errors.Wrapf(afero.WriteFile(s.fs, p, b, 0o644), "write %s", key)
}

func (s *FileStorage) Remove(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s", key)
	}
	return nil
}
