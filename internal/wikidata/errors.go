package wikidata

import "errors"

var (
	// ErrSyntax wraps errors for lines that are not valid JSON
	ErrSyntax = errors.New("malformed JSON")
	// ErrShape wraps errors for JSON that is not a valid entity
	ErrShape = errors.New("invalid entity")
	// ErrInvalidID is returned for unparsable entity ids
	ErrInvalidID = errors.New("invalid entity id")
	// ErrUnknownDatatype is returned for claim datatypes outside the known set
	ErrUnknownDatatype = errors.New("unknown datatype")
	// ErrInvalidTime is returned for unparsable time strings
	ErrInvalidTime = errors.New("invalid time")
)
