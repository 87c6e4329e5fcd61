package port

import (
	"context"
	"io"
)

// DocumentStore holds customer document payloads. Save returns the storage
// path recorded in the document's metadata row.
type DocumentStore interface {
	Save(ctx context.Context, fileName string, contents io.Reader) (string, int64, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
}
