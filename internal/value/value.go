// Package value holds the closed set of claim value variants. Each variant
// owns a table definition and knows how to bind its fields to that table's
// columns.
package value

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wikisql/wikisql/internal/ident"
	"github.com/wikisql/wikisql/internal/wikidata"
)

// Value is one of String, EntityRef, GeoCoordinate, Quantity, Time, Absent
// or Indeterminate.
type Value interface {
	// Table returns the table rows of this variant are stored in.
	Table() *Table
	// Args returns the variant columns in table order, after id and property_id.
	Args() []any
	variant()
}

// String is a plain text value.
type String struct {
	Text string
}

// EntityRef references another entity by unified key.
type EntityRef struct {
	ID ident.Key
}

// GeoCoordinate is a point on a globe; the globe is an item key.
type GeoCoordinate struct {
	Latitude  float64
	Longitude float64
	Precision float64
	Globe     ident.Key
}

// Quantity is an amount with optional bounds and unit.
type Quantity struct {
	Amount     float64
	LowerBound *float64
	UpperBound *float64
	Unit       *ident.Key
}

// Time is an instant with the source precision code.
type Time struct {
	Time      time.Time
	Precision uint8
}

// Absent is an explicit "no value".
type Absent struct{}

// Indeterminate is an explicit "unknown value".
type Indeterminate struct{}

func (String) Table() *Table        { return stringTable }
func (EntityRef) Table() *Table     { return entityTable }
func (GeoCoordinate) Table() *Table { return coordinatesTable }
func (Quantity) Table() *Table      { return quantityTable }
func (Time) Table() *Table          { return timeTable }
func (Absent) Table() *Table        { return noneTable }
func (Indeterminate) Table() *Table { return unknownTable }

func (v String) Args() []any    { return []any{v.Text} }
func (v EntityRef) Args() []any { return []any{int64(v.ID)} }

func (v GeoCoordinate) Args() []any {
	return []any{v.Latitude, v.Longitude, v.Precision, int64(v.Globe)}
}

func (v Quantity) Args() []any {
	return []any{v.Amount, nullFloat(v.LowerBound), nullFloat(v.UpperBound), nullKey(v.Unit)}
}

func (v Time) Args() []any       { return []any{v.Time, int64(v.Precision)} }
func (Absent) Args() []any        { return nil }
func (Indeterminate) Args() []any { return nil }

func (String) variant()        {}
func (EntityRef) variant()     {}
func (GeoCoordinate) variant() {}
func (Quantity) variant()      {}
func (Time) variant()          {}
func (Absent) variant()        {}
func (Indeterminate) variant() {}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullKey(k *ident.Key) sql.NullInt64 {
	if k == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*k), Valid: true}
}

// Writer inserts one row into a table. args follow the table's columns.
type Writer interface {
	Insert(ctx context.Context, table *Table, args ...any) error
}

// Store writes v as one row keyed by (subject, property).
func Store(ctx context.Context, w Writer, subject, property ident.Key, v Value) error {
	args := make([]any, 0, len(v.Table().Columns))
	args = append(args, int64(subject), int64(property))
	args = append(args, v.Args()...)
	if err := w.Insert(ctx, v.Table(), args...); err != nil {
		return fmt.Errorf("store %s value: %w", v.Table().Name, err)
	}
	return nil
}

// FromData converts a claim payload into its variant. lang selects the
// entry of a multilingual text; without an entry in that language the
// value is Absent.
func FromData(d wikidata.Data, lang string) (Value, error) {
	switch d := d.(type) {
	case wikidata.StringData:
		return String{Text: d.Value}, nil
	case wikidata.MonolingualText:
		return String{Text: d.Text}, nil
	case wikidata.MultilingualText:
		for _, t := range d {
			if t.Language == lang {
				return String{Text: t.Text}, nil
			}
		}
		return Absent{}, nil
	case wikidata.EntityData:
		return EntityRef{ID: d.ID.Key()}, nil
	case wikidata.GlobeCoordinate:
		return GeoCoordinate{
			Latitude:  d.Latitude,
			Longitude: d.Longitude,
			Precision: d.Precision,
			Globe:     ident.Item(d.Globe),
		}, nil
	case wikidata.QuantityData:
		q := Quantity{Amount: d.Amount, LowerBound: d.LowerBound, UpperBound: d.UpperBound}
		if d.Unit != nil {
			unit := ident.Item(*d.Unit)
			q.Unit = &unit
		}
		return q, nil
	case wikidata.TimeData:
		return Time{Time: d.Time, Precision: d.Precision}, nil
	case wikidata.NoValue:
		return Absent{}, nil
	case wikidata.SomeValue:
		return Indeterminate{}, nil
	default:
		return nil, fmt.Errorf("no variant for claim data %T", d)
	}
}
