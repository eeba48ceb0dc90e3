// Package schema generates the DDL for the destination store: one table
// per value variant plus the meta table, and one index per column.
package schema

import (
	"fmt"
	"strings"

	"github.com/wikisql/wikisql/internal/dialect"
	"github.com/wikisql/wikisql/internal/value"
)

// Meta holds one row per record with its label and description.
var Meta = &value.Table{
	Name: "meta",
	Columns: []value.Column{
		{Name: "id", Type: value.Integer},
		{Name: "label", Type: value.Text, Nullable: true},
		{Name: "description", Type: value.Text, Nullable: true},
	},
}

// All returns the meta table followed by the variant tables.
func All() []*value.Table {
	return append([]*value.Table{Meta}, value.Tables()...)
}

// Generator builds DDL statements for a dialect.
type Generator struct {
	dialect dialect.Dialect
	tables  []*value.Table
}

// NewGenerator creates a generator over the given tables.
func NewGenerator(d dialect.Dialect, tables []*value.Table) *Generator {
	return &Generator{dialect: d, tables: tables}
}

// CreateTables returns one CREATE TABLE statement per table.
func (g *Generator) CreateTables() []string {
	stmts := make([]string, 0, len(g.tables))
	for _, t := range g.tables {
		stmts = append(stmts, g.CreateTable(t))
	}
	return stmts
}

// CreateTable generates the CREATE TABLE statement for a table.
func (g *Generator) CreateTable(t *value.Table) string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		def := g.dialect.Quote(c.Name) + " " + g.dialect.MapType(c.Type)
		if !c.Nullable {
			def += " NOT NULL"
		}
		defs[i] = def
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", g.dialect.Quote(t.Name), strings.Join(defs, ", "))
}

// Index is one CREATE INDEX statement.
type Index struct {
	Name   string
	Table  string
	Column string
	SQL    string
}

// CreateIndexes returns one index per column per table, in table order.
func (g *Generator) CreateIndexes() []Index {
	var indexes []Index
	for _, t := range g.tables {
		for _, c := range t.Columns {
			name := fmt.Sprintf("%s_%s_index", t.Name, c.Name)
			indexes = append(indexes, Index{
				Name:   name,
				Table:  t.Name,
				Column: c.Name,
				SQL: fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
					g.dialect.Quote(name), g.dialect.Quote(t.Name), g.dialect.Quote(c.Name)),
			})
		}
	}
	return indexes
}
