package seedstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a seed file does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for reading and writing seed files.
type Store interface {
	// Create creates a seed file for writing, replacing an existing one of
	// the same name. For the in-memory, S3 and MinIO backends the file
	// becomes visible when the returned writer is closed; LocalStore
	// creates (or truncates) the file at once and fills it as it is
	// written.
	Create(ctx context.Context, name string) (io.WriteCloser, error)

	// Open opens a seed file for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
