package value

// ColumnType is the abstract type of a column. Dialects map it to SQL.
type ColumnType int

const (
	Integer ColumnType = iota
	Real
	Text
	DateTime
)

// String returns the SQLite spelling of the type.
func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case Text:
		return "TEXT"
	case DateTime:
		return "DATETIME"
	default:
		return "BLOB"
	}
}

// Column is one column of a table.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Table is the relational definition owned by a variant (or the meta table).
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// keyColumns lead every value table.
var keyColumns = []Column{
	{Name: "id", Type: Integer},
	{Name: "property_id", Type: Integer},
}

func valueTable(name string, columns ...Column) *Table {
	all := make([]Column, 0, len(keyColumns)+len(columns))
	all = append(all, keyColumns...)
	all = append(all, columns...)
	return &Table{Name: name, Columns: all}
}

var (
	stringTable = valueTable("string",
		Column{Name: "string", Type: Text},
	)
	entityTable = valueTable("entity",
		Column{Name: "entity_id", Type: Integer},
	)
	coordinatesTable = valueTable("coordinates",
		Column{Name: "latitude", Type: Real},
		Column{Name: "longitude", Type: Real},
		Column{Name: "precision", Type: Real},
		Column{Name: "globe_id", Type: Integer},
	)
	quantityTable = valueTable("quantity",
		Column{Name: "amount", Type: Real},
		Column{Name: "lower_bound", Type: Real, Nullable: true},
		Column{Name: "upper_bound", Type: Real, Nullable: true},
		Column{Name: "unit_id", Type: Integer, Nullable: true},
	)
	timeTable = valueTable("time",
		Column{Name: "time", Type: DateTime},
		Column{Name: "precision", Type: Integer},
	)
	noneTable    = valueTable("none")
	unknownTable = valueTable("unknown")
)

// Tables returns the tables of all variants in a fixed order.
func Tables() []*Table {
	return []*Table{
		stringTable,
		entityTable,
		coordinatesTable,
		quantityTable,
		timeTable,
		noneTable,
		unknownTable,
	}
}
