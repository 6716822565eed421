package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Store is a passive key-value backend for cache entries.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	// Path describes where the entry for key lives, for reporting.
	Path(key string) string
}

type MemoryStore struct {
	mu      sync.Mutex
	name    string
	entries map[string][]byte
	puts    int
}

func NewMemoryStore(name string) *MemoryStore {
	return &MemoryStore{
		name:    name,
		entries: make(map[string][]byte),
	}
}

func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}

	return append([]byte(nil), value...), true, nil
}

func (s *MemoryStore) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = append([]byte(nil), value...)
	s.puts++

	return nil
}

func (s *MemoryStore) Path(key string) string {
	return "mem://" + s.name + "/" + key
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Puts counts every write, overwrites included.
func (s *MemoryStore) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.puts
}

// FileStore keeps one file per key under dir.
type FileStore struct {
	dir string
	ext string
}

func NewFileStore(dir string, ext string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &FileStore{dir: dir, ext: ext}, nil
}

func (s *FileStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("read cache file: %w", err)
	}

	return data, true, nil
}

func (s *FileStore) Put(key string, value []byte) error {
	return writeFileAtomic(s.Path(key), value)
}

func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+s.ext)
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it into place, so readers never observe a partial entry.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return fmt.Errorf("write temp file: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return fmt.Errorf("sync temp file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("close temp file: %w", err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
