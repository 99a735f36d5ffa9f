package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"reportmerge/internal/metrics"
)

// ErrUnknownKind is returned by New for an unregistered sink kind.
var ErrUnknownKind = errors.New("publish: unknown publisher kind")

// Receipt describes a published report.
type Receipt struct {
	Kind          string `json:"kind"`
	Location      string `json:"location"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	Tabs          int    `json:"tabs_created"`
	TotalRows     int    `json:"total_rows"`
	MergedRows    int    `json:"merged_rows"`
	MergedColumns int    `json:"merged_columns"`
}

// NewReceipt fills the row counts of a Receipt from r.
func NewReceipt(kind, location, id string, r Report, tabs int) Receipt {
	return Receipt{
		Kind:          kind,
		Location:      location,
		ID:            id,
		Name:          r.Title,
		Tabs:          tabs,
		TotalRows:     r.TotalRows(),
		MergedRows:    r.MergedRows(),
		MergedColumns: r.MergedColumns(),
	}
}

// Publisher writes a report to one destination.
type Publisher interface {
	Publish(ctx context.Context, r Report) (Receipt, error)
	Close() error
}

// Config selects and configures a sink.
type Config struct {
	Kind string

	Sheets SheetsConfig
	XLSX   XLSXConfig
	SQL    SQLConfig

	Log logrus.FieldLogger
}

// SheetsConfig configures the Google Sheets sink.
type SheetsConfig struct {
	CredentialsFile string
	// ShareAnyone grants "anyone with the link" read access.
	ShareAnyone bool
}

// XLSXConfig configures the workbook file sink. Dir receives
// <title>.xlsx files; Path, when set, is used verbatim instead.
type XLSXConfig struct {
	Dir  string
	Path string
}

// SQLConfig configures the SQL sink.
type SQLConfig struct {
	Kind        string // sqlite, postgres, mssql
	DSN         string
	TablePrefix string
}

// Factory constructs a Publisher from Config.
type Factory func(ctx context.Context, cfg Config) (Publisher, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds (or replaces) the factory for kind. Sinks call it from init.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// Kinds lists the registered sink kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New constructs the Publisher registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Publisher, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownKind, cfg.Kind, Kinds())
	}
	if cfg.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.Log = l
	}
	return f(ctx, cfg)
}

// Run publishes r with p, recording the step under job and logging the
// receipt.
func Run(ctx context.Context, p Publisher, r Report, job string, log logrus.FieldLogger) (Receipt, error) {
	start := time.Now()
	rec, err := p.Publish(ctx, r)
	metrics.RecordStep(job, "publish", err, time.Since(start))
	if err != nil {
		return Receipt{}, err
	}
	log.WithFields(logrus.Fields{
		"kind":     rec.Kind,
		"location": rec.Location,
		"rows":     rec.MergedRows,
		"tabs":     rec.Tabs,
	}).Info("Published report")
	return rec, nil
}
