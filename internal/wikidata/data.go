package wikidata

import (
	"fmt"
	"time"
)

// DataKind enumerates the claim payload kinds of the dump. Every kind maps
// to exactly one storage variant in the value package.
type DataKind int

const (
	DataCommonsMedia DataKind = iota
	DataString
	DataExternalID
	DataURL
	DataMathExpr
	DataGeoShape
	DataMusicNotation
	DataTabularData
	DataMonolingualText
	DataMultilingualText
	DataItem
	DataProperty
	DataLexeme
	DataForm
	DataSense
	DataGlobeCoordinate
	DataQuantity
	DataTime
	DataNoValue
	DataSomeValue
)

var dataKindNames = map[DataKind]string{
	DataCommonsMedia:     "commonsMedia",
	DataString:           "string",
	DataExternalID:       "external-id",
	DataURL:              "url",
	DataMathExpr:         "math",
	DataGeoShape:         "geo-shape",
	DataMusicNotation:    "musical-notation",
	DataTabularData:      "tabular-data",
	DataMonolingualText:  "monolingualtext",
	DataMultilingualText: "multilingualtext",
	DataItem:             "wikibase-item",
	DataProperty:         "wikibase-property",
	DataLexeme:           "wikibase-lexeme",
	DataForm:             "wikibase-form",
	DataSense:            "wikibase-sense",
	DataGlobeCoordinate:  "globe-coordinate",
	DataQuantity:         "quantity",
	DataTime:             "time",
	DataNoValue:          "novalue",
	DataSomeValue:        "somevalue",
}

// datatypes maps the mainsnak datatype attribute to a kind. novalue and
// somevalue come from the snak type instead.
var datatypes = func() map[string]DataKind {
	m := make(map[string]DataKind, len(dataKindNames))
	for k, name := range dataKindNames {
		if k == DataNoValue || k == DataSomeValue {
			continue
		}
		m[name] = k
	}
	return m
}()

// String returns the dump datatype name.
func (k DataKind) String() string {
	if name, ok := dataKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("datakind(%d)", int(k))
}

// Data is a claim payload. The set of implementations is closed.
type Data interface {
	Kind() DataKind
	data()
}

// StringData covers every kind whose payload is a single string.
type StringData struct {
	Type  DataKind
	Value string
}

// MonolingualText is a text with a language tag.
type MonolingualText struct {
	Text     string
	Language string
}

// MultilingualText is a set of language-tagged texts in source order.
type MultilingualText []MonolingualText

// EntityData references another entity.
type EntityData struct {
	ID EntityID
}

// GlobeCoordinate is a point on a globe. Globe is an item id.
type GlobeCoordinate struct {
	Latitude  float64
	Longitude float64
	Precision float64
	Globe     uint64
}

// QuantityData is an amount with optional bounds and unit item id.
type QuantityData struct {
	Amount     float64
	LowerBound *float64
	UpperBound *float64
	Unit       *uint64
}

// TimeData is a point in time with the source precision code (0 = billion
// years ... 9 = year, 10 = month, 11 = day, 14 = second).
type TimeData struct {
	Time      time.Time
	Precision uint8
}

// NoValue is an explicit "no value" snak.
type NoValue struct{}

// SomeValue is an explicit "unknown value" snak.
type SomeValue struct{}

func (d StringData) Kind() DataKind     { return d.Type }
func (MonolingualText) Kind() DataKind  { return DataMonolingualText }
func (MultilingualText) Kind() DataKind { return DataMultilingualText }
func (GlobeCoordinate) Kind() DataKind  { return DataGlobeCoordinate }
func (QuantityData) Kind() DataKind     { return DataQuantity }
func (TimeData) Kind() DataKind         { return DataTime }
func (NoValue) Kind() DataKind          { return DataNoValue }
func (SomeValue) Kind() DataKind        { return DataSomeValue }

func (d EntityData) Kind() DataKind {
	switch d.ID.Kind {
	case KindProperty:
		return DataProperty
	case KindLexeme:
		return DataLexeme
	case KindForm:
		return DataForm
	case KindSense:
		return DataSense
	default:
		return DataItem
	}
}

func (StringData) data()       {}
func (MonolingualText) data()  {}
func (MultilingualText) data() {}
func (EntityData) data()       {}
func (GlobeCoordinate) data()  {}
func (QuantityData) data()     {}
func (TimeData) data()         {}
func (NoValue) data()          {}
func (SomeValue) data()        {}
