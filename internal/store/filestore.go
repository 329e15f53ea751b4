package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DirStore is a filesystem-backed Store keeping one file per processed
// output under a single directory.
type DirStore struct {
	dir string
}

// NewDirStore creates the directory if needed and returns a store over it.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
	}
	return &DirStore{dir: dir}, nil
}

// Put writes data to a fresh <uuid>.csv file and returns the id.
func (s *DirStore) Put(data []byte) (string, error) {
	id := uuid.NewString()
	if err := os.WriteFile(s.path(id), data, 0o644); err != nil {
		return "", fmt.Errorf("writing processed file: %w", err)
	}
	return id, nil
}

// Get reads the file stored under id. Ids that are not well-formed UUIDs are
// rejected before touching the filesystem, which also blocks path traversal.
func (s *DirStore) Get(id string) ([]byte, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading processed file: %w", err)
	}
	return data, nil
}

func (s *DirStore) path(id string) string {
	return filepath.Join(s.dir, id+".csv")
}
