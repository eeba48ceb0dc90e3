package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikisql/wikisql/internal/dialect"
)

func TestAll(t *testing.T) {
	tables := All()
	require.Len(t, tables, 8)
	assert.Equal(t, "meta", tables[0].Name)
	assert.Equal(t, "string", tables[1].Name)
	assert.Equal(t, "unknown", tables[7].Name)
}

func TestCreateTablesSQLite(t *testing.T) {
	g := NewGenerator(dialect.SQLite{}, All())
	stmts := g.CreateTables()
	require.Len(t, stmts, 8)

	assert.Equal(t, `CREATE TABLE "meta" ("id" INTEGER NOT NULL, "label" TEXT, "description" TEXT)`, stmts[0])
	assert.Equal(t, `CREATE TABLE "string" ("id" INTEGER NOT NULL, "property_id" INTEGER NOT NULL, "string" TEXT NOT NULL)`, stmts[1])
	assert.Equal(t, `CREATE TABLE "coordinates" ("id" INTEGER NOT NULL, "property_id" INTEGER NOT NULL, `+
		`"latitude" REAL NOT NULL, "longitude" REAL NOT NULL, "precision" REAL NOT NULL, "globe_id" INTEGER NOT NULL)`, stmts[3])
	assert.Equal(t, `CREATE TABLE "quantity" ("id" INTEGER NOT NULL, "property_id" INTEGER NOT NULL, `+
		`"amount" REAL NOT NULL, "lower_bound" REAL, "upper_bound" REAL, "unit_id" INTEGER)`, stmts[4])
	assert.Equal(t, `CREATE TABLE "time" ("id" INTEGER NOT NULL, "property_id" INTEGER NOT NULL, `+
		`"time" DATETIME NOT NULL, "precision" INTEGER NOT NULL)`, stmts[5])
	assert.Equal(t, `CREATE TABLE "none" ("id" INTEGER NOT NULL, "property_id" INTEGER NOT NULL)`, stmts[6])
	assert.Equal(t, `CREATE TABLE "unknown" ("id" INTEGER NOT NULL, "property_id" INTEGER NOT NULL)`, stmts[7])
}

func TestCreateTablesPostgres(t *testing.T) {
	g := NewGenerator(dialect.Postgres{}, All())
	stmts := g.CreateTables()
	assert.Equal(t, `CREATE TABLE "time" ("id" BIGINT NOT NULL, "property_id" BIGINT NOT NULL, `+
		`"time" TIMESTAMPTZ NOT NULL, "precision" BIGINT NOT NULL)`, stmts[5])
}

func TestCreateIndexes(t *testing.T) {
	g := NewGenerator(dialect.SQLite{}, All())
	indexes := g.CreateIndexes()

	// meta 3 + string 3 + entity 3 + coordinates 6 + quantity 6 + time 4 + none 2 + unknown 2
	require.Len(t, indexes, 29)

	assert.Equal(t, Index{
		Name:   "meta_id_index",
		Table:  "meta",
		Column: "id",
		SQL:    `CREATE INDEX "meta_id_index" ON "meta" ("id")`,
	}, indexes[0])
	assert.Equal(t, "meta_label_index", indexes[1].Name)
	assert.Equal(t, "meta_description_index", indexes[2].Name)

	seen := map[string]bool{}
	for _, idx := range indexes {
		assert.False(t, seen[idx.Name], "duplicate index %s", idx.Name)
		seen[idx.Name] = true
	}
	assert.True(t, seen["quantity_unit_id_index"])
	assert.True(t, seen["unknown_property_id_index"])
}
