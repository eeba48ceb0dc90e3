// Package ident maps identifiers from the separate source namespaces (items,
// properties, lexemes and the forms and senses nested in lexemes) into one
// unsigned 64-bit key space.
//
// Each namespace owns an offset range:
//
//	items        [0, 1e9)
//	properties   [1e9, 2e9)
//	lexemes      [2e9, 2e9+1e10)
//	forms        lexeme + index*1e11
//	senses       lexeme + index*1e11 + 1e10
//
// Keys never collide as long as item and property ids stay below 1e9 and
// lexeme ids below 1e10. The source numbering guarantees this; it is not
// checked here.
package ident

import "fmt"

// Key is a unified identifier.
type Key uint64

const (
	propertyOffset Key = 1_000_000_000
	lexemeOffset   Key = 2_000_000_000
	subMultiplier  Key = 100_000_000_000
	senseOffset    Key = 10_000_000_000
)

// Item encodes an item id (Q42).
func Item(raw uint64) Key {
	return Key(raw)
}

// Property encodes a property id (P31).
func Property(raw uint64) Key {
	return Key(raw) + propertyOffset
}

// Lexeme encodes a lexeme id (L7).
func Lexeme(raw uint64) Key {
	return Key(raw) + lexemeOffset
}

// Form encodes the form with the given index inside a lexeme (L7-F2).
func Form(lexeme, index uint64) Key {
	return Lexeme(lexeme) + Key(index)*subMultiplier
}

// Sense encodes the sense with the given index inside a lexeme (L7-S1).
func Sense(lexeme, index uint64) Key {
	return Lexeme(lexeme) + Key(index)*subMultiplier + senseOffset
}

// Namespace identifies which source namespace a key was encoded from.
type Namespace int

const (
	NamespaceItem Namespace = iota
	NamespaceProperty
	NamespaceLexeme
	NamespaceForm
	NamespaceSense
)

// String returns the namespace name.
func (n Namespace) String() string {
	switch n {
	case NamespaceItem:
		return "item"
	case NamespaceProperty:
		return "property"
	case NamespaceLexeme:
		return "lexeme"
	case NamespaceForm:
		return "form"
	case NamespaceSense:
		return "sense"
	default:
		return fmt.Sprintf("namespace(%d)", int(n))
	}
}

// Prefix returns the letter used for the namespace in source ids.
func (n Namespace) Prefix() string {
	switch n {
	case NamespaceItem:
		return "Q"
	case NamespaceProperty:
		return "P"
	case NamespaceLexeme:
		return "L"
	case NamespaceForm:
		return "F"
	case NamespaceSense:
		return "S"
	default:
		return "?"
	}
}

// Decoded is the result of inverting a key.
type Decoded struct {
	Namespace Namespace
	Raw       uint64 // item, property or owning lexeme id
	Index     uint64 // form or sense index, zero otherwise
}

// String formats the decoded key the way the source writes ids.
func (d Decoded) String() string {
	switch d.Namespace {
	case NamespaceForm, NamespaceSense:
		return fmt.Sprintf("L%d-%s%d", d.Raw, d.Namespace.Prefix(), d.Index)
	default:
		return fmt.Sprintf("%s%d", d.Namespace.Prefix(), d.Raw)
	}
}

// Decode inverts the encoding. Form index 0 is never used by the source, so
// Form(l, 0) decodes as Lexeme(l).
func Decode(k Key) Decoded {
	switch {
	case k < propertyOffset:
		return Decoded{Namespace: NamespaceItem, Raw: uint64(k)}
	case k < lexemeOffset:
		return Decoded{Namespace: NamespaceProperty, Raw: uint64(k - propertyOffset)}
	}

	rest := k - lexemeOffset
	index := rest / subMultiplier
	rest %= subMultiplier

	if rest >= senseOffset {
		return Decoded{Namespace: NamespaceSense, Raw: uint64(rest - senseOffset), Index: uint64(index)}
	}
	if index == 0 {
		return Decoded{Namespace: NamespaceLexeme, Raw: uint64(rest)}
	}
	return Decoded{Namespace: NamespaceForm, Raw: uint64(rest), Index: uint64(index)}
}
