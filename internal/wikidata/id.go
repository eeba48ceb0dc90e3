package wikidata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wikisql/wikisql/internal/ident"
)

// EntityKind is the namespace of an entity id.
type EntityKind int

const (
	KindItem EntityKind = iota
	KindProperty
	KindLexeme
	KindForm
	KindSense
)

// String returns the entity-type name used in the dump.
func (k EntityKind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindProperty:
		return "property"
	case KindLexeme:
		return "lexeme"
	case KindForm:
		return "form"
	case KindSense:
		return "sense"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// EntityID is a parsed source id such as Q42, P31, L7, L7-F2 or L7-S1.
// For forms and senses Num is the owning lexeme and Sub the index.
type EntityID struct {
	Kind EntityKind
	Num  uint64
	Sub  uint64
}

// ParseEntityID parses an id string.
func ParseEntityID(s string) (EntityID, error) {
	if len(s) < 2 {
		return EntityID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}

	var kind EntityKind
	switch s[0] {
	case 'Q':
		kind = KindItem
	case 'P':
		kind = KindProperty
	case 'L':
		kind = KindLexeme
	default:
		return EntityID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}

	body := s[1:]
	if kind == KindLexeme {
		if lexeme, sub, ok := strings.Cut(body, "-"); ok {
			num, err := parseNumber(lexeme)
			if err != nil || len(sub) < 2 {
				return EntityID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
			}
			idx, err := parseNumber(sub[1:])
			if err != nil {
				return EntityID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
			}
			switch sub[0] {
			case 'F':
				return EntityID{Kind: KindForm, Num: num, Sub: idx}, nil
			case 'S':
				return EntityID{Kind: KindSense, Num: num, Sub: idx}, nil
			default:
				return EntityID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
			}
		}
	}

	num, err := parseNumber(body)
	if err != nil {
		return EntityID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return EntityID{Kind: kind, Num: num}, nil
}

// parseNumber accepts decimal digits only, no sign.
func parseNumber(s string) (uint64, error) {
	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseUint(s, 10, 64)
}

// Key returns the unified key for the id.
func (id EntityID) Key() ident.Key {
	switch id.Kind {
	case KindProperty:
		return ident.Property(id.Num)
	case KindLexeme:
		return ident.Lexeme(id.Num)
	case KindForm:
		return ident.Form(id.Num, id.Sub)
	case KindSense:
		return ident.Sense(id.Num, id.Sub)
	default:
		return ident.Item(id.Num)
	}
}

// String formats the id the way the dump writes it.
func (id EntityID) String() string {
	switch id.Kind {
	case KindProperty:
		return fmt.Sprintf("P%d", id.Num)
	case KindLexeme:
		return fmt.Sprintf("L%d", id.Num)
	case KindForm:
		return fmt.Sprintf("L%d-F%d", id.Num, id.Sub)
	case KindSense:
		return fmt.Sprintf("L%d-S%d", id.Num, id.Sub)
	default:
		return fmt.Sprintf("Q%d", id.Num)
	}
}

// parseEntityURI extracts an item id from a concept URI such as
// http://www.wikidata.org/entity/Q2.
func parseEntityURI(uri string) (uint64, error) {
	last := uri
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		last = uri[i+1:]
	}
	id, err := ParseEntityID(last)
	if err != nil {
		return 0, err
	}
	if id.Kind != KindItem {
		return 0, fmt.Errorf("%w: %q is not an item", ErrInvalidID, uri)
	}
	return id.Num, nil
}
