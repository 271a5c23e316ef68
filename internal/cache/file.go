package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileStore keeps each entry in its own JSON file under a directory. File
// names are hashes of the key, so keys may contain any characters.
type FileStore struct {
	dir string
	now func() time.Time
}

type fileEntry struct {
	Key     string    `json:"key"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires,omitzero"`
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
// An empty dir uses DefaultDir().
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		defaultDir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = defaultDir
	}

	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FileStore{dir: dir, now: time.Now}, nil
}

// Dir returns the directory entries and cached files live in.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, HashKey(key)+".json")
}

// Get returns the value for key.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read cache entry: %w", err)
	}

	var e fileEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return "", fmt.Errorf("corrupt cache entry for %q: %w", key, err)
	}

	if !e.Expires.IsZero() && !s.now().Before(e.Expires) {
		_ = os.Remove(s.path(key))
		return "", ErrNotFound
	}
	return e.Value, nil
}

// Set stores value under key, replacing the file atomically.
func (s *FileStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := fileEntry{Key: key, Value: value}
	if ttl > 0 {
		e.Expires = s.now().Add(ttl)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("failed to create cache entry: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Close releases nothing; it exists to satisfy Store.
func (s *FileStore) Close() error {
	return nil
}
