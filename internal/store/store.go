// Package store owns the destination database: it refuses existing targets,
// applies the bulk-load session settings and hands out batches that group
// inserts into one transaction.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/wikisql/wikisql/internal/dialect"
	"github.com/wikisql/wikisql/internal/value"
)

// ErrTargetExists is returned when the destination already exists. Updating
// an existing database is not supported.
var ErrTargetExists = errors.New("destination already exists")

// Options configures Create.
type Options struct {
	// Driver is the database/sql driver: sqlite3 (default), sqlite,
	// postgres or pgx.
	Driver string
	// DSN is the SQLite file path or the PostgreSQL connection string.
	DSN string
	// Durable keeps the journal and synchronous writes enabled.
	Durable bool
}

// Store is an open destination database. It is used from a single goroutine.
type Store struct {
	db      *sql.DB
	dialect dialect.Dialect
	inserts map[string]string
}

// Create validates that the destination does not exist yet, opens it and
// applies the session settings.
func Create(ctx context.Context, opts Options) (*Store, error) {
	if opts.Driver == "" {
		opts.Driver = "sqlite3"
	}
	if err := Validate(opts); err != nil {
		return nil, err
	}
	d, _ := dialect.ForDriver(opts.Driver)

	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Session settings are per connection; keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := New(db, d)
	if err := s.prepare(ctx, opts.Durable); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Validate checks the driver and, for file-based destinations, that the
// file does not exist yet. Server destinations are checked once connected.
func Validate(opts Options) error {
	if opts.Driver == "" {
		opts.Driver = "sqlite3"
	}
	d, err := dialect.ForDriver(opts.Driver)
	if err != nil {
		return err
	}
	if !d.FileBased() {
		return nil
	}
	if _, err := os.Stat(opts.DSN); err == nil {
		return fmt.Errorf("%w: %s", ErrTargetExists, opts.DSN)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check destination: %w", err)
	}
	return nil
}

// New wraps an already open database.
func New(db *sql.DB, d dialect.Dialect) *Store {
	return &Store{db: db, dialect: d, inserts: make(map[string]string)}
}

func (s *Store) prepare(ctx context.Context, durable bool) error {
	if !s.dialect.FileBased() {
		var exists bool
		if err := s.db.QueryRowContext(ctx, s.dialect.ExistsQuery()).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check destination: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: meta table present", ErrTargetExists)
		}
	}

	for _, stmt := range s.dialect.Session(durable) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply %q: %w", stmt, err)
		}
	}
	return nil
}

// DB returns the underlying database.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the dialect of the store.
func (s *Store) Dialect() dialect.Dialect {
	return s.dialect
}

// Exec runs a statement outside any batch.
func (s *Store) Exec(ctx context.Context, stmt string) error {
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

// Insert writes one row in autocommit mode. It is the fallback when no
// batch could be opened.
func (s *Store) Insert(ctx context.Context, table *value.Table, args ...any) error {
	_, err := s.db.ExecContext(ctx, s.insertSQL(table), args...)
	return err
}

// Savepoint runs fn directly; every autocommit statement stands alone.
func (s *Store) Savepoint(_ context.Context, fn func() error) error {
	return fn()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) insertSQL(table *value.Table) string {
	q, ok := s.inserts[table.Name]
	if !ok {
		q = dialect.Insert(s.dialect, table)
		s.inserts[table.Name] = q
	}
	return q
}
