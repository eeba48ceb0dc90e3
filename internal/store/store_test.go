package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikisql/wikisql/internal/dialect"
	"github.com/wikisql/wikisql/internal/value"
)

var testTable = &value.Table{Name: "string", Columns: []value.Column{
	{Name: "id", Type: value.Integer},
	{Name: "property_id", Type: value.Integer},
	{Name: "string", Type: value.Text},
}}

func createTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Create(context.Background(), Options{DSN: path})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Exec(context.Background(),
		`CREATE TABLE "string" ("id" INTEGER NOT NULL, "property_id" INTEGER NOT NULL, "string" TEXT NOT NULL)`))
	return s
}

func countRows(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM "string"`).Scan(&n))
	return n
}

func TestCreateRejectsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exists.db")
	require.NoError(t, os.WriteFile(path, []byte("not empty"), 0o644))

	_, err := Create(context.Background(), Options{DSN: path})
	assert.ErrorIs(t, err, ErrTargetExists)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "not empty", string(data))
}

func TestCreateTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	s, err := Create(context.Background(), Options{DSN: path})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Create(context.Background(), Options{DSN: path})
	assert.ErrorIs(t, err, ErrTargetExists)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "exists.db")
	require.NoError(t, os.WriteFile(existing, nil, 0o644))

	assert.NoError(t, Validate(Options{DSN: filepath.Join(dir, "fresh.db")}))
	assert.ErrorIs(t, Validate(Options{DSN: existing}), ErrTargetExists)
	assert.ErrorIs(t, Validate(Options{Driver: "sqlite", DSN: existing}), ErrTargetExists)
	// Server targets are only checked once connected.
	assert.NoError(t, Validate(Options{Driver: "pgx", DSN: existing}))
	assert.Error(t, Validate(Options{Driver: "mysql", DSN: existing}))
}

func TestCreateUnsupportedDriver(t *testing.T) {
	_, err := Create(context.Background(), Options{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}

func TestCreateAppliesSession(t *testing.T) {
	s := createTestStore(t)

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "off", mode)

	var sync int
	require.NoError(t, s.DB().QueryRow("PRAGMA synchronous").Scan(&sync))
	assert.Equal(t, 0, sync)
}

func TestCreateDurable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "durable.db")
	s, err := Create(context.Background(), Options{DSN: path, Durable: true})
	require.NoError(t, err)
	defer s.Close()

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "delete", mode)
}

func TestBatchCommit(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	b, err := s.Begin(ctx)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Insert(ctx, testTable, int64(i), int64(1_000_000_001), "x"))
	}
	assert.Equal(t, 3, b.Inserts())
	require.NoError(t, b.Commit())
	assert.True(t, b.IsCommitted())

	assert.Equal(t, 3, countRows(t, s))

	assert.ErrorIs(t, b.Commit(), ErrBatchCommitted)
	assert.ErrorIs(t, b.Insert(ctx, testTable, int64(9), int64(9), "y"), ErrBatchCommitted)
	assert.ErrorIs(t, b.Rollback(), ErrBatchCommitted)
}

func TestBatchRollback(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	b, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, b.Insert(ctx, testTable, int64(1), int64(2), "x"))
	require.NoError(t, b.Rollback())
	require.NoError(t, b.Rollback())

	assert.Equal(t, 0, countRows(t, s))
	assert.ErrorIs(t, b.Insert(ctx, testTable, int64(1), int64(2), "x"), ErrBatchRolledBack)
}

func TestBatchFailedInsertKeepsTransaction(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	b, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, b.Insert(ctx, testTable, int64(1), int64(2), "x"))
	assert.Error(t, b.Insert(ctx, testTable, int64(1), int64(2), nil))
	require.NoError(t, b.Insert(ctx, testTable, int64(3), int64(2), "z"))
	require.NoError(t, b.Commit())

	assert.Equal(t, 2, countRows(t, s))
}

func TestStoreInsertAutocommit(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.Insert(context.Background(), testTable, int64(1), int64(2), "x"))
	assert.Equal(t, 1, countRows(t, s))

	called := false
	require.NoError(t, s.Savepoint(context.Background(), func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
}

func TestPostgresExistingTarget(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT to_regclass('meta') IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	s := New(db, dialect.Postgres{})
	err = s.prepare(context.Background(), false)
	assert.ErrorIs(t, err, ErrTargetExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFreshTarget(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT to_regclass('meta') IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("SET synchronous_commit = off")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := New(db, dialect.Postgres{})
	require.NoError(t, s.prepare(context.Background(), false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSavepoint(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	insert := regexp.QuoteMeta(`INSERT INTO "string" ("id", "property_id", "string") VALUES ($1, $2, $3)`)

	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT sp_[0-9]+").WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare(insert)
	prep.ExpectExec().WithArgs(int64(1), int64(2), "ok").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("RELEASE SAVEPOINT sp_[0-9]+").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SAVEPOINT sp_[0-9]+").WillReturnResult(sqlmock.NewResult(0, 0))
	prep.ExpectExec().WithArgs(int64(3), int64(2), "bad").WillReturnError(errors.New("constraint violated"))
	mock.ExpectExec("ROLLBACK TO SAVEPOINT sp_[0-9]+").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	s := New(db, dialect.Postgres{})
	ctx := context.Background()
	b, err := s.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, b.Savepoint(ctx, func() error {
		return b.Insert(ctx, testTable, int64(1), int64(2), "ok")
	}))
	err = b.Savepoint(ctx, func() error {
		return b.Insert(ctx, testTable, int64(3), int64(2), "bad")
	})
	assert.EqualError(t, err, "constraint violated")
	require.NoError(t, b.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("disk I/O error"))

	s := New(db, dialect.SQLite{})
	b, err := s.Begin(context.Background())
	require.NoError(t, err)

	err = b.Commit()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.False(t, b.IsCommitted())
	assert.ErrorIs(t, b.Commit(), ErrBatchRolledBack)
	assert.NoError(t, mock.ExpectationsWereMet())
}
