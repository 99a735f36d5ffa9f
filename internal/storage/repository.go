// Package storage is the database layer of the SQL sink: a small Repository
// contract, a factory keyed by backend kind, and batched loading helpers.
//
// Backends (postgres, mssql, sqlite) register themselves from init; import
// reportmerge/internal/storage/all to enable all of them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"reportmerge/internal/ddl"
)

// ErrUnknownKind is returned by New for an unregistered backend.
var ErrUnknownKind = errors.New("storage: unknown kind")

// Config selects and connects a backend.
type Config struct {
	Kind string
	DSN  string
}

// Repository is the minimal surface the SQL sink needs from a database.
type Repository interface {
	// CopyFrom bulk-inserts rows (aligned to columns) into table using the
	// backend's fastest path. It returns the number of rows inserted.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	// Exec runs a statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	// Dialect renders DDL for this backend.
	Dialect() ddl.Dialect
	Close()
}

// Factory opens a Repository.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens the Repository registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownKind, cfg.Kind, ListKinds())
	}
	return f(ctx, cfg)
}

// EnsureTable creates td if it does not exist, using repo's dialect.
func EnsureTable(ctx context.Context, repo Repository, td ddl.TableDef) error {
	stmt, err := ddl.BuildCreateTableSQL(td, repo.Dialect())
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("storage: create %s: %w", td.FQN, err)
	}
	return nil
}
