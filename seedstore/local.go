package seedstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// LocalStore implements Store using the local file system.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
// An empty root means paths are used as given.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) path(name string) string {
	if s.root == "" {
		return name
	}
	return filepath.Join(s.root, name)
}

// Create creates a seed file for writing. The file exists, empty, as soon
// as Create returns; an existing file of the same name is truncated.
func (s *LocalStore) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	return os.Create(s.path(name))
}

// Open opens a seed file for reading.
func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return os.Open(s.path(name))
}
