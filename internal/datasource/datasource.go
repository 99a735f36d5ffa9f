// Package datasource abstracts where a source export is read from.
package datasource

import (
	"context"
	"io"
)

// Source opens a byte stream for one export. Name is used for logging and to
// choose a decoder by extension.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}
