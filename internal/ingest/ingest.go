// Package ingest turns export locations (local paths or URLs) into the merge
// inputs, decoding each export with the decoder its extension selects.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"reportmerge/internal/datasource"
	"reportmerge/internal/datasource/file"
	"reportmerge/internal/datasource/httpds"
	"reportmerge/internal/mapping"
	"reportmerge/internal/merge"
	"reportmerge/internal/metrics"
	"reportmerge/internal/parser"
	pcsv "reportmerge/internal/parser/csv"
	pxlsx "reportmerge/internal/parser/xlsx"
	"reportmerge/internal/table"
)

var (
	// ErrUnsupportedFormat is returned for extensions no decoder handles.
	ErrUnsupportedFormat = errors.New("ingest: unsupported file format")
	// ErrMissingInput is returned when a source has no location.
	ErrMissingInput = errors.New("ingest: missing input")
)

// Options configures decoding.
type Options struct {
	CSV pcsv.Options

	// Sheet selects the worksheet of workbook inputs. Empty means the first.
	Sheet string

	// HTTP fetches URL locations. Nil uses a client with default settings.
	HTTP *httpds.Client

	// Job labels the recorded metrics.
	Job string
}

// Loader decodes exports. It is safe for concurrent use.
type Loader struct {
	log      logrus.FieldLogger
	opt      Options
	http     *httpds.Client
	decoders map[string]parser.Decoder
}

// New returns a Loader.
func New(log logrus.FieldLogger, opt Options) *Loader {
	if opt.HTTP == nil {
		opt.HTTP = httpds.NewClient(httpds.Config{MaxRetries: 2})
	}
	if opt.Job == "" {
		opt.Job = "reportmerge"
	}
	return &Loader{
		log:      log.WithField("component", "ingest"),
		opt:      opt,
		http:     opt.HTTP,
		decoders: decoders(opt),
	}
}

// decoders maps lowercase extensions to decoders.
func decoders(opt Options) map[string]parser.Decoder {
	text := parser.DecoderFunc(func(ctx context.Context, r io.Reader, name string) (*table.Table, error) {
		return pcsv.Decode(ctx, r, name, opt.CSV)
	})
	tsv := parser.DecoderFunc(func(ctx context.Context, r io.Reader, name string) (*table.Table, error) {
		o := opt.CSV
		o.Comma = '\t'
		return pcsv.Decode(ctx, r, name, o)
	})
	workbook := parser.DecoderFunc(func(ctx context.Context, r io.Reader, name string) (*table.Table, error) {
		return pxlsx.Decode(ctx, r, name, pxlsx.Options{Sheet: opt.Sheet, TrimSpace: opt.CSV.TrimSpace})
	})
	return map[string]parser.Decoder{
		".csv":  text,
		".txt":  text,
		".tsv":  tsv,
		".xlsx": workbook,
		".xlsm": workbook,
	}
}

// Source returns the datasource for location.
func (l *Loader) Source(location string) datasource.Source {
	if httpds.IsURL(location) {
		return httpds.NewRemote(l.http, location)
	}
	return file.NewLocal(location)
}

// Supported reports whether filename has an extension a decoder handles.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".tsv", ".txt", ".xlsx", ".xlsm":
		return true
	}
	return false
}

// Decode reads one export of src from r. filename picks the decoder.
func (l *Loader) Decode(ctx context.Context, r io.Reader, filename string, src mapping.SourceID) (*table.Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	d, ok := l.decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, ext, filename)
	}
	return d.Decode(ctx, r, src.Label())
}

// Load opens ds and decodes it as the export of src.
func (l *Loader) Load(ctx context.Context, src mapping.SourceID, ds datasource.Source) (*table.Table, error) {
	if !Supported(ds.Name()) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ds.Name())
	}
	rc, err := ds.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", src, err)
	}
	defer rc.Close()

	t, err := l.Decode(ctx, rc, ds.Name(), src)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", src, err)
	}
	l.log.WithFields(logrus.Fields{
		"source":  src,
		"file":    ds.Name(),
		"rows":    t.Len(),
		"columns": t.Width(),
	}).Info("Loaded export")
	metrics.RecordRows(l.opt.Job, "input_"+src.Tag(), t.Len())
	return t, nil
}

// LoadAll decodes the three exports concurrently. Every source needs a
// location; the first failure cancels the remaining loads.
func (l *Loader) LoadAll(ctx context.Context, locations map[mapping.SourceID]string) (merge.Inputs, error) {
	var in merge.Inputs
	for _, src := range mapping.Sources {
		if strings.TrimSpace(locations[src]) == "" {
			return in, fmt.Errorf("%w: %s", ErrMissingInput, src.Label())
		}
	}

	start := time.Now()
	tables := make([]*table.Table, len(mapping.Sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range mapping.Sources {
		i, src := i, src
		ds := l.Source(locations[src])
		g.Go(func() error {
			t, err := l.Load(gctx, src, ds)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	err := g.Wait()
	metrics.RecordStep(l.opt.Job, "ingest", err, time.Since(start))
	if err != nil {
		return merge.Inputs{}, err
	}
	for i, src := range mapping.Sources {
		in.Set(src, tables[i])
	}
	return in, nil
}
