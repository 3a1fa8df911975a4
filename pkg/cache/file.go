package cache

import (
	"context"
	"os"
	"path/filepath"
)

// FileStore implements a file-based Store for CLI usage.
// Each key is stored as one file whose name is derived from a SHA-256 hash
// of the key, which keeps filesystem-unsafe characters out of paths and
// avoids collisions between namespaces.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-based store rooted at dir.
// If dir is empty, the XDG cache directory (~/.cache/ghwiki/) is used.
// The directory is created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// DefaultDir returns the default cache directory (~/.cache/ghwiki/),
// honoring XDG_CACHE_HOME.
func DefaultDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, "ghwiki"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "ghwiki"), nil
}

// Dir returns the absolute path to the store directory.
func (s *FileStore) Dir() string { return s.dir }

// Get retrieves a value from disk.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set writes a value to disk.
func (s *FileStore) Set(ctx context.Context, key string, data []byte) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Delete removes a value from disk.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

// path converts a key to a file path.
// Uses the first two hash characters as a subdirectory so one directory
// never accumulates too many files.
func (s *FileStore) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(s.dir, hash[:2], hash[2:]+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
