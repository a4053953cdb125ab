// Package store persists raw API responses on disk, one file per response.
//
// Keys are API-relative paths ("content/chapter-xml/1240/5678") and map
// directly to files under <base>/api/, mirroring the upstream URL layout.
// That scheme is the persisted-state contract: it is deterministic,
// collision-free (upstream IDs are unique), stable across runs and
// processes, and directly inspectable with ordinary filesystem tools.
//
// The store is write-once and accumulate-only: an existing entry is never
// overwritten, and nothing is ever evicted.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Read for a key with no cached entry.
var ErrNotFound = errors.New("not in store")

// ErrAlreadyExists is returned by Write for a key that already has an
// entry. The existing entry is left untouched.
var ErrAlreadyExists = errors.New("already in store")

// Store is a filesystem-backed write-once cache of API responses.
type Store struct {
	root string
}

// New returns a Store rooted at <baseDir>/api, creating the directory if
// needed.
func New(baseDir string) (*Store, error) {
	root := filepath.Join(baseDir, "api")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// Root returns the directory the store persists to.
func (s *Store) Root() string { return s.root }

// Has reports whether the key has a cached entry.
func (s *Store) Has(key string) bool {
	path, err := s.path(key)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Read returns the cached bytes for key, or an error wrapping ErrNotFound
// when the key is absent.
func (s *Store) Read(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("store: %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	return data, nil
}

// Write persists data under key. The write is atomic: data lands in a temp
// file next to the destination and is renamed into place, so a reader (or
// an interrupted run) never observes a partial entry. Writing a key that
// already exists returns an error wrapping ErrAlreadyExists.
func (s *Store) Write(key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if s.Has(key) {
		return fmt.Errorf("store: %s: %w", key, ErrAlreadyExists)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: create %s: %w", dir, err)
	}

	// Temp names never collide with API paths, so partial files are
	// harmless and a crash leaves at most a stray .tmp-* file.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

// path maps a key to its on-disk location, rejecting keys that would
// escape the store root.
func (s *Store) path(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("store: empty key")
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("store: invalid key %q", key)
		}
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}
