// Package sqlsink publishes the report into a SQL database, one table per tab.
//
// Every table starts with run_id (the report fingerprint) and row_no, which
// together form the primary key. Publishing the same report twice replaces
// the earlier rows of that run.
package sqlsink

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"reportmerge/internal/ddl"
	"reportmerge/internal/publish"
	"reportmerge/internal/storage"
	"reportmerge/internal/table"
)

// Kind is the registry key of this sink.
const Kind = "sql"

func init() {
	publish.Register(Kind, func(ctx context.Context, cfg publish.Config) (publish.Publisher, error) {
		return New(ctx, cfg.SQL, cfg.Log)
	})
}

// Publisher writes reports through a storage.Repository.
type Publisher struct {
	repo      storage.Repository
	cfg       publish.SQLConfig
	log       logrus.FieldLogger
	batchSize int
}

// New opens the configured backend.
func New(ctx context.Context, cfg publish.SQLConfig, log logrus.FieldLogger) (*Publisher, error) {
	repo, err := storage.New(ctx, storage.Config{Kind: cfg.Kind, DSN: cfg.DSN})
	if err != nil {
		return nil, fmt.Errorf("sqlsink: %w", err)
	}
	return NewWithRepository(repo, cfg, log), nil
}

// NewWithRepository wraps an open repository.
func NewWithRepository(repo storage.Repository, cfg publish.SQLConfig, log logrus.FieldLogger) *Publisher {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Publisher{
		repo:      repo,
		cfg:       cfg,
		log:       log.WithFields(logrus.Fields{"sink": Kind, "backend": repo.Dialect().Name}),
		batchSize: storage.DefaultBatchSize,
	}
}

// Close closes the repository.
func (p *Publisher) Close() error {
	p.repo.Close()
	return nil
}

// TableName returns the table a tab is written to: the lowercased tab name,
// prefixed with "<prefix>_" when a prefix is set.
func TableName(prefix, tab string) string {
	name := strings.ToLower(tab)
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

// Publish writes every tab.
func (p *Publisher) Publish(ctx context.Context, r publish.Report) (publish.Receipt, error) {
	runID := r.Fingerprint()
	tabs := publish.Tabs(r)
	var names []string
	for _, tab := range tabs {
		name := TableName(p.cfg.TablePrefix, tab.Name)
		td, rows := tableFor(name, tab, runID)

		if err := storage.EnsureTable(ctx, p.repo, td); err != nil {
			return publish.Receipt{}, fmt.Errorf("sqlsink: %w", err)
		}
		d := p.repo.Dialect()
		del := fmt.Sprintf("DELETE FROM %s WHERE %s = '%s'", ddl.QuoteFQN(name, d.Quote), d.Quote("run_id"), runID)
		if err := p.repo.Exec(ctx, del); err != nil {
			return publish.Receipt{}, fmt.Errorf("sqlsink: clear %s: %w", name, err)
		}
		cols := make([]string, len(td.Columns))
		for i, c := range td.Columns {
			cols[i] = c.Name
		}
		n, err := storage.LoadBatches(ctx, p.repo, name, cols, rows, p.batchSize, p.log)
		if err != nil {
			return publish.Receipt{}, fmt.Errorf("sqlsink: %w", err)
		}
		p.log.WithFields(logrus.Fields{"table": name, "rows": n}).Debug("Loaded tab")
		names = append(names, name)
	}
	loc := fmt.Sprintf("%s:%s", p.repo.Dialect().Name, strings.Join(names, ","))
	return publish.NewReceipt(Kind, loc, runID, r, len(tabs)), nil
}

// tableFor derives the table definition and rows of one tab. Tabs without a
// header row get positional columns named after their sheet letters.
func tableFor(name string, tab publish.Tab, runID string) (ddl.TableDef, [][]any) {
	width := tab.Width()
	data := tab.Grid
	headers := make([]string, width)
	if tab.HasHeader && len(data) > 0 {
		for i := range headers {
			if i < len(data[0]) {
				headers[i] = table.Text(data[0][i])
			}
		}
		data = data[1:]
	} else {
		for i := range headers {
			headers[i] = "col_" + strings.ToLower(publish.ColumnLetter(i+1))
		}
	}
	idents := ddl.Identifiers(headers)

	td := ddl.TableDef{FQN: name, Columns: []ddl.ColumnDef{
		{Name: "run_id", Type: ddl.Key, PrimaryKey: true},
		{Name: "row_no", Type: ddl.Integer, PrimaryKey: true},
	}}
	types := make([]ddl.Type, width)
	for i, id := range idents {
		col := make([]any, len(data))
		for r, row := range data {
			if i < len(row) {
				col[r] = row[i]
			}
		}
		types[i] = ddl.InferType(col)
		td.Columns = append(td.Columns, ddl.ColumnDef{Name: id, Type: types[i], Nullable: true})
	}

	rows := make([][]any, len(data))
	for r, row := range data {
		out := make([]any, 0, width+2)
		out = append(out, runID, int64(r+1))
		for i := 0; i < width; i++ {
			var v any
			if i < len(row) {
				v = row[i]
			}
			out = append(out, cellValue(v, types[i]))
		}
		rows[r] = out
	}
	return td, rows
}

// cellValue converts v for a column of type t. Empty cells become NULL.
func cellValue(v any, t ddl.Type) any {
	if table.IsEmpty(v) {
		return nil
	}
	switch t {
	case ddl.Real:
		switch x := v.(type) {
		case float64:
			return x
		case float32:
			return float64(x)
		case int:
			return float64(x)
		case int64:
			return float64(x)
		}
	case ddl.Integer:
		switch x := v.(type) {
		case int:
			return int64(x)
		case int64:
			return x
		}
	}
	return table.Text(v)
}
