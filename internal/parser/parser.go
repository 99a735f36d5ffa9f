// Package parser holds the decoder contract shared by the csv and xlsx
// packages.
package parser

import (
	"context"
	"io"

	"reportmerge/internal/table"
)

// Decoder turns one export into a table named name.
type Decoder interface {
	Decode(ctx context.Context, r io.Reader, name string) (*table.Table, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(ctx context.Context, r io.Reader, name string) (*table.Table, error)

// Decode calls f.
func (f DecoderFunc) Decode(ctx context.Context, r io.Reader, name string) (*table.Table, error) {
	return f(ctx, r, name)
}
