// Package csv decodes delimited text exports into tables. The first record is
// the header; every later record becomes one row padded or truncated to the
// header width. Cells stay text so join keys keep their exact spelling.
package csv

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"reportmerge/internal/table"
)

// ErrNoHeader is returned when the input has no header record.
var ErrNoHeader = errors.New("csv: missing header row")

// Options configures decoding. The zero value sniffs the delimiter and keeps
// cell whitespace.
type Options struct {
	// Comma is the field delimiter. When zero it is detected from the header
	// line among ',', ';' and '\t'.
	Comma rune

	// TrimSpace trims leading/trailing whitespace from every cell.
	TrimSpace bool
}

// candidates are tried in order; ties go to the earlier one.
var candidates = []rune{',', ';', '\t'}

// sniffLimit bounds how much of the input is inspected to pick a delimiter.
const sniffLimit = 64 << 10

// Decode reads a complete CSV document from r into a table called name.
// Empty cells decode as "" rather than nil so downstream text handling is
// uniform. ctx is checked between records.
func Decode(ctx context.Context, r io.Reader, name string, opt Options) (*table.Table, error) {
	br := bufio.NewReaderSize(r, sniffLimit)
	skipBOM(br)

	comma := opt.Comma
	if comma == 0 {
		peek, _ := br.Peek(sniffLimit)
		comma = DetectDelimiter(peek)
	}

	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", ErrNoHeader, name)
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header of %s: %w", name, err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}
	cols = StripHeaderBOM(cols)

	t := table.New(name, cols)
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %s line %d: %w", name, line, err)
		}
		if blank(rec) {
			continue
		}
		row := make([]any, len(rec))
		for i, v := range rec {
			if opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			row[i] = v
		}
		t.Append(row...)
	}
	padEmpty(t)
	return t, nil
}

// DetectDelimiter picks the candidate that occurs most often on the first
// line of sample, ignoring quoted sections. It falls back to ','.
func DetectDelimiter(sample []byte) rune {
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}
	counts := make(map[rune]int, len(candidates))
	inQuote := false
	for _, b := range sample {
		switch {
		case b == '"':
			inQuote = !inQuote
		case !inQuote:
			counts[rune(b)]++
		}
	}
	best, bestN := ',', 0
	for _, c := range candidates {
		if counts[c] > bestN {
			best, bestN = c, counts[c]
		}
	}
	return best
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// padEmpty replaces the nil padding table.Append adds for short rows with "".
func padEmpty(t *table.Table) {
	for _, row := range t.Rows {
		for i, v := range row {
			if v == nil {
				row[i] = ""
			}
		}
	}
}
