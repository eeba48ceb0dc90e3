package wikidata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Document is the raw JSON form of one dump line.
type Document struct {
	Type         string      `json:"type"`
	ID           string      `json:"id"`
	Labels       langMap     `json:"labels"`
	Descriptions langMap     `json:"descriptions"`
	Lemmas       langMap     `json:"lemmas"`
	Claims       claimMap    `json:"claims"`
	Statements   claimMap    `json:"statements"`
	Forms        []rawSubDoc `json:"forms"`
	Senses       []rawSubDoc `json:"senses"`
}

type rawSubDoc struct {
	ID              string   `json:"id"`
	Representations langMap  `json:"representations"`
	Glosses         langMap  `json:"glosses"`
	Claims          claimMap `json:"claims"`
}

type rawStatement struct {
	Mainsnak rawSnak `json:"mainsnak"`
	Rank     string  `json:"rank"`
}

type rawSnak struct {
	SnakType  string        `json:"snaktype"`
	Property  string        `json:"property"`
	Datatype  string        `json:"datatype"`
	Datavalue *rawDataValue `json:"datavalue"`
}

type rawDataValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type rawTerm struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// langMap decodes {"en": {"language": "en", "value": "..."}}. Empty maps
// are serialized as [] in the dumps.
type langMap map[string]string

func (m *langMap) UnmarshalJSON(b []byte) error {
	if isEmptyArray(b) {
		*m = nil
		return nil
	}
	var terms map[string]rawTerm
	if err := json.Unmarshal(b, &terms); err != nil {
		return err
	}
	out := make(langMap, len(terms))
	for lang, term := range terms {
		out[lang] = term.Value
	}
	*m = out
	return nil
}

// claimMap decodes {"P31": [statement, ...]}, also serialized as [] when empty.
type claimMap map[string][]rawStatement

func (m *claimMap) UnmarshalJSON(b []byte) error {
	if isEmptyArray(b) {
		*m = nil
		return nil
	}
	var claims map[string][]rawStatement
	if err := json.Unmarshal(b, &claims); err != nil {
		return err
	}
	*m = claims
	return nil
}

func isEmptyArray(b []byte) bool {
	b = bytes.TrimSpace(b)
	if len(b) < 2 || b[0] != '[' || b[len(b)-1] != ']' {
		return false
	}
	return len(bytes.TrimSpace(b[1:len(b)-1])) == 0
}

// DecodeDocument parses one line of JSON. The error wraps ErrSyntax when
// the line is not JSON at all and ErrShape when it does not have the
// expected structure.
func DecodeDocument(line []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(line, &doc); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrShape, err)
	}
	return &doc, nil
}

// Entity converts the document into an Entity. Errors wrap ErrShape.
func (d *Document) Entity() (*Entity, error) {
	id, err := ParseEntityID(d.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShape, err)
	}
	if id.Kind == KindForm || id.Kind == KindSense {
		return nil, fmt.Errorf("%w: %s is not a top-level entity", ErrShape, d.ID)
	}

	claimsIn := d.Claims
	if claimsIn == nil {
		claimsIn = d.Statements
	}
	claims, err := decodeClaims(claimsIn)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrShape, d.ID, err)
	}

	e := &Entity{
		ID:           id,
		Labels:       d.Labels,
		Descriptions: d.Descriptions,
		Claims:       claims,
	}
	if e.Labels == nil && id.Kind == KindLexeme {
		e.Labels = d.Lemmas
	}

	for _, f := range d.Forms {
		sub, err := decodeSub(f, f.Representations, KindForm)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrShape, d.ID, err)
		}
		e.Forms = append(e.Forms, sub)
	}
	for _, s := range d.Senses {
		sub, err := decodeSub(s, s.Glosses, KindSense)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrShape, d.ID, err)
		}
		e.Senses = append(e.Senses, sub)
	}

	return e, nil
}

// ParseEntity decodes one dump line in a single step.
func ParseEntity(line []byte) (*Entity, error) {
	doc, err := DecodeDocument(line)
	if err != nil {
		return nil, err
	}
	return doc.Entity()
}

func decodeSub(raw rawSubDoc, labels langMap, kind EntityKind) (SubEntity, error) {
	id, err := ParseEntityID(raw.ID)
	if err != nil {
		return SubEntity{}, err
	}
	if id.Kind != kind {
		return SubEntity{}, fmt.Errorf("%w: %s is not a %s", ErrInvalidID, raw.ID, kind)
	}
	claims, err := decodeClaims(raw.Claims)
	if err != nil {
		return SubEntity{}, fmt.Errorf("%s: %w", raw.ID, err)
	}
	return SubEntity{ID: id, Labels: labels, Claims: claims}, nil
}

// decodeClaims flattens the claim map, ordered by property id.
func decodeClaims(m claimMap) ([]Claim, error) {
	if len(m) == 0 {
		return nil, nil
	}

	type group struct {
		property   uint64
		statements []rawStatement
	}
	groups := make([]group, 0, len(m))
	total := 0
	for key, statements := range m {
		pid, err := ParseEntityID(key)
		if err != nil {
			return nil, err
		}
		if pid.Kind != KindProperty {
			return nil, fmt.Errorf("%w: claim key %s is not a property", ErrInvalidID, key)
		}
		groups = append(groups, group{property: pid.Num, statements: statements})
		total += len(statements)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].property < groups[j].property })

	claims := make([]Claim, 0, total)
	for _, g := range groups {
		for _, st := range g.statements {
			rank, ok := parseRank(st.Rank)
			if !ok {
				return nil, fmt.Errorf("P%d: unknown rank %q", g.property, st.Rank)
			}
			data, err := decodeSnak(st.Mainsnak)
			if err != nil {
				return nil, fmt.Errorf("P%d: %w", g.property, err)
			}
			claims = append(claims, Claim{Property: g.property, Rank: rank, Data: data})
		}
	}
	return claims, nil
}

func decodeSnak(s rawSnak) (Data, error) {
	switch s.SnakType {
	case "novalue":
		return NoValue{}, nil
	case "somevalue":
		return SomeValue{}, nil
	case "value":
	default:
		return nil, fmt.Errorf("unknown snak type %q", s.SnakType)
	}

	kind, ok := datatypes[s.Datatype]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDatatype, s.Datatype)
	}
	if s.Datavalue == nil || len(s.Datavalue.Value) == 0 {
		return nil, fmt.Errorf("%s: missing datavalue", s.Datatype)
	}
	raw := s.Datavalue.Value

	switch kind {
	case DataCommonsMedia, DataString, DataExternalID, DataURL, DataMathExpr,
		DataGeoShape, DataMusicNotation, DataTabularData:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Datatype, err)
		}
		return StringData{Type: kind, Value: v}, nil

	case DataMonolingualText:
		var v struct {
			Text     string `json:"text"`
			Language string `json:"language"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Datatype, err)
		}
		return MonolingualText{Text: v.Text, Language: v.Language}, nil

	case DataMultilingualText:
		var v []struct {
			Text     string `json:"text"`
			Language string `json:"language"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Datatype, err)
		}
		texts := make(MultilingualText, len(v))
		for i, t := range v {
			texts[i] = MonolingualText{Text: t.Text, Language: t.Language}
		}
		return texts, nil

	case DataItem, DataProperty, DataLexeme, DataForm, DataSense:
		return decodeEntityValue(s.Datatype, kind, raw)

	case DataGlobeCoordinate:
		var v struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
			Precision *float64 `json:"precision"`
			Globe     string   `json:"globe"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Datatype, err)
		}
		if v.Latitude == nil || v.Longitude == nil || v.Precision == nil {
			return nil, fmt.Errorf("%s: latitude, longitude and precision are required", s.Datatype)
		}
		globe, err := parseEntityURI(v.Globe)
		if err != nil {
			return nil, fmt.Errorf("%s: globe: %w", s.Datatype, err)
		}
		return GlobeCoordinate{Latitude: *v.Latitude, Longitude: *v.Longitude, Precision: *v.Precision, Globe: globe}, nil

	case DataQuantity:
		return decodeQuantity(raw)

	case DataTime:
		var v struct {
			Time      string `json:"time"`
			Precision *uint8 `json:"precision"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Datatype, err)
		}
		if v.Precision == nil {
			return nil, fmt.Errorf("%s: missing precision", s.Datatype)
		}
		t, err := ParseTime(v.Time)
		if err != nil {
			return nil, err
		}
		return TimeData{Time: t, Precision: *v.Precision}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDatatype, s.Datatype)
}

func decodeEntityValue(datatype string, kind DataKind, raw json.RawMessage) (Data, error) {
	var v struct {
		EntityType string  `json:"entity-type"`
		NumericID  *uint64 `json:"numeric-id"`
		ID         string  `json:"id"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%s: %w", datatype, err)
	}

	var id EntityID
	switch {
	case v.ID != "":
		parsed, err := ParseEntityID(v.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", datatype, err)
		}
		id = parsed
	case v.NumericID != nil && v.EntityType == "item":
		id = EntityID{Kind: KindItem, Num: *v.NumericID}
	case v.NumericID != nil && v.EntityType == "property":
		id = EntityID{Kind: KindProperty, Num: *v.NumericID}
	case v.NumericID != nil && v.EntityType == "lexeme":
		id = EntityID{Kind: KindLexeme, Num: *v.NumericID}
	default:
		return nil, fmt.Errorf("%s: missing entity id", datatype)
	}

	data := EntityData{ID: id}
	if data.Kind() != kind {
		return nil, fmt.Errorf("%s: %s has the wrong entity type", datatype, id)
	}
	return data, nil
}

func decodeQuantity(raw json.RawMessage) (Data, error) {
	var v struct {
		Amount     string  `json:"amount"`
		Unit       string  `json:"unit"`
		LowerBound *string `json:"lowerBound"`
		UpperBound *string `json:"upperBound"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}

	amount, err := strconv.ParseFloat(v.Amount, 64)
	if err != nil {
		return nil, fmt.Errorf("quantity: amount: %w", err)
	}
	q := QuantityData{Amount: amount}

	if v.LowerBound != nil {
		lower, err := strconv.ParseFloat(*v.LowerBound, 64)
		if err != nil {
			return nil, fmt.Errorf("quantity: lower bound: %w", err)
		}
		q.LowerBound = &lower
	}
	if v.UpperBound != nil {
		upper, err := strconv.ParseFloat(*v.UpperBound, 64)
		if err != nil {
			return nil, fmt.Errorf("quantity: upper bound: %w", err)
		}
		q.UpperBound = &upper
	}
	if v.Unit != "" && v.Unit != "1" {
		unit, err := parseEntityURI(v.Unit)
		if err != nil {
			return nil, fmt.Errorf("quantity: unit: %w", err)
		}
		q.Unit = &unit
	}
	return q, nil
}

// maxYear bounds the year of a time value. It leaves room for cosmological
// dates while staying inside the range of time.Time.
const maxYear = 100_000_000_000

// ParseTime parses a dump time string of the form +YYYY-MM-DDThh:mm:ssZ.
// Years may have any number of digits and a sign. Month and day are 00
// when the precision is coarser than a month or day; they become 1.
func ParseTime(s string) (time.Time, error) {
	in := s
	negative := false
	switch {
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	}

	date, clock, ok := strings.Cut(s, "T")
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, in)
	}
	clock = strings.TrimSuffix(clock, "Z")

	dateParts := strings.Split(date, "-")
	clockParts := strings.Split(clock, ":")
	if len(dateParts) != 3 || len(clockParts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, in)
	}

	year, err := strconv.ParseInt(dateParts[0], 10, 64)
	if err != nil || year > maxYear {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, in)
	}
	if negative {
		year = -year
	}

	var nums [5]int
	for i, part := range append(dateParts[1:], clockParts...) {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, in)
		}
		nums[i] = n
	}
	month, day, hour, minute, second := nums[0], nums[1], nums[2], nums[3], nums[4]
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	if month > 12 || day > 31 || hour > 23 || minute > 59 || second > 60 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, in)
	}

	return time.Date(int(year), time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}
