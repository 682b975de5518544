// Package file provides a file-backed KVStore: one file per logical
// key under a base directory, rewritten wholesale on every Set via an
// atomic rename. This is the default backend and mirrors the
// last-write-wins contract of the store.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
)

// KVStore implements outbound.KVStore on the local filesystem.
type KVStore struct {
	dir   string
	mutex sync.Mutex
}

// NewKVStore creates the base directory if needed and returns the store.
func NewKVStore(dir string) (*KVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &KVStore{dir: dir}, nil
}

var _ outbound.KVStore = (*KVStore)(nil)

// Get reads the file for key. A missing file means the key was never
// written.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

// Set writes the value to a temp file and renames it into place, so a
// crash mid-write never leaves a truncated collection behind.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".tmp-"+sanitize(key)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %s: %w", key, err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

// Delete removes the file for key. A missing file is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) path(key string) string {
	return filepath.Join(s.dir, sanitize(key)+".json")
}

// sanitize keeps keys filesystem-safe. Keys are internal constants, so
// this only guards against separators.
func sanitize(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, key)
}
