// Package dialect maps the abstract table definitions onto a concrete SQL
// database: column types, identifier quoting, placeholders and the session
// settings used for bulk loading.
package dialect

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wikisql/wikisql/internal/value"
)

// Dialect describes one target database.
type Dialect interface {
	// Name is the short dialect name used in configuration.
	Name() string
	// MapType converts an abstract column type to SQL.
	MapType(t value.ColumnType) string
	// Quote quotes an identifier.
	Quote(identifier string) string
	// Placeholder returns the bind parameter for the n-th (1-based) argument.
	Placeholder(n int) string
	// Session returns statements run once on the connection before loading.
	Session(durable bool) []string
	// FileBased reports whether the target is a file whose existence marks
	// the target as already created.
	FileBased() bool
	// ExistsQuery returns a query yielding one boolean row that is true when
	// the target already holds a schema. Only used when FileBased is false.
	ExistsQuery() string
	// Savepoints reports whether a failed statement poisons the enclosing
	// transaction, so that records must be isolated with savepoints.
	Savepoints() bool
}

// SQLite is the default dialect.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) MapType(t value.ColumnType) string {
	return t.String()
}

// Quote escapes internal double quotes by doubling them.
func (SQLite) Quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func (SQLite) Placeholder(int) string { return "?" }

// Session turns off the rollback journal and fsync unless durable. A crash
// mid-run leaves a database that must be discarded.
func (SQLite) Session(durable bool) []string {
	if durable {
		return nil
	}
	return []string{
		"PRAGMA synchronous = OFF",
		"PRAGMA journal_mode = OFF",
	}
}

func (SQLite) FileBased() bool     { return true }
func (SQLite) ExistsQuery() string { return "" }
func (SQLite) Savepoints() bool    { return false }

// Postgres targets a PostgreSQL database.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) MapType(t value.ColumnType) string {
	switch t {
	case value.Integer:
		return "BIGINT"
	case value.Real:
		return "DOUBLE PRECISION"
	case value.Text:
		return "TEXT"
	case value.DateTime:
		return "TIMESTAMPTZ"
	default:
		return "BYTEA"
	}
}

func (Postgres) Quote(identifier string) string {
	return pgx.Identifier{identifier}.Sanitize()
}

func (Postgres) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (Postgres) Session(durable bool) []string {
	if durable {
		return nil
	}
	return []string{"SET synchronous_commit = off"}
}

func (Postgres) FileBased() bool { return false }

func (Postgres) ExistsQuery() string {
	return "SELECT to_regclass('meta') IS NOT NULL"
}

func (Postgres) Savepoints() bool { return true }

// Drivers lists the supported database/sql driver names.
func Drivers() []string {
	return []string{"sqlite3", "sqlite", "postgres", "pgx"}
}

// ForDriver returns the dialect for a database/sql driver name.
func ForDriver(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3", "sqlite":
		return SQLite{}, nil
	case "postgres", "pgx":
		return Postgres{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// Insert builds an INSERT statement for the table.
func Insert(d Dialect, table *value.Table) string {
	columns := make([]string, len(table.Columns))
	placeholders := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		columns[i] = d.Quote(c.Name)
		placeholders[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Quote(table.Name), strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}
