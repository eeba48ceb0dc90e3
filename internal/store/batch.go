package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/wikisql/wikisql/internal/value"
)

var (
	// ErrBatchCommitted is returned when a batch is used after Commit
	ErrBatchCommitted = errors.New("batch already committed")
	// ErrBatchRolledBack is returned when a batch is used after Rollback
	ErrBatchRolledBack = errors.New("batch already rolled back")
)

// savepointCounter provides unique savepoint names across all batches
var savepointCounter atomic.Uint64

// Batch is one transaction of the load. Insert statements are prepared once
// per batch and reused for every row.
type Batch struct {
	store      *Store
	tx         *sql.Tx
	stmts      map[string]*sql.Stmt
	inserts    int
	committed  atomic.Bool
	rolledBack atomic.Bool
}

// Begin opens a new batch.
func (s *Store) Begin(ctx context.Context) (*Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Batch{store: s, tx: tx, stmts: make(map[string]*sql.Stmt)}, nil
}

// Insert writes one row inside the batch.
func (b *Batch) Insert(ctx context.Context, table *value.Table, args ...any) error {
	if err := b.usable(); err != nil {
		return err
	}
	stmt, err := b.stmt(ctx, table)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, args...); err != nil {
		return err
	}
	b.inserts++
	return nil
}

// Inserts returns the number of rows written through the batch.
func (b *Batch) Inserts() int {
	return b.inserts
}

func (b *Batch) stmt(ctx context.Context, table *value.Table) (*sql.Stmt, error) {
	if stmt, ok := b.stmts[table.Name]; ok {
		return stmt, nil
	}
	stmt, err := b.tx.PrepareContext(ctx, b.store.insertSQL(table))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert into %s: %w", table.Name, err)
	}
	b.stmts[table.Name] = stmt
	return stmt, nil
}

// Savepoint runs fn inside a savepoint when the dialect needs one to keep a
// failed statement from aborting the batch. On error the savepoint is
// rolled back and the error returned.
func (b *Batch) Savepoint(ctx context.Context, fn func() error) error {
	if !b.store.dialect.Savepoints() {
		return fn()
	}
	if err := b.usable(); err != nil {
		return err
	}

	name := fmt.Sprintf("sp_%d", savepointCounter.Add(1))
	if _, err := b.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	if err := fn(); err != nil {
		if _, rbErr := b.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("%w, rollback to savepoint failed: %v", err, rbErr)
		}
		return err
	}

	if _, err := b.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

// Commit commits the batch.
func (b *Batch) Commit() error {
	if err := b.usable(); err != nil {
		return err
	}
	if err := b.tx.Commit(); err != nil {
		// The transaction is finished either way.
		b.rolledBack.Store(true)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	b.committed.Store(true)
	return nil
}

// Rollback discards the batch. Rolling back twice is a no-op.
func (b *Batch) Rollback() error {
	if b.committed.Load() {
		return ErrBatchCommitted
	}
	if b.rolledBack.Load() {
		return nil
	}
	if err := b.tx.Rollback(); err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	b.rolledBack.Store(true)
	return nil
}

// IsCommitted returns true if the batch has been committed
func (b *Batch) IsCommitted() bool {
	return b.committed.Load()
}

func (b *Batch) usable() error {
	if b.committed.Load() {
		return ErrBatchCommitted
	}
	if b.rolledBack.Load() {
		return ErrBatchRolledBack
	}
	return nil
}
