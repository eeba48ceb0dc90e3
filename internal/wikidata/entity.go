// Package wikidata decodes one line of a Wikidata JSON entity dump into an
// Entity with typed claims.
package wikidata

// Rank is the statement rank.
type Rank int

const (
	RankNormal Rank = iota
	RankPreferred
	RankDeprecated
)

// String returns the rank name used in the dump.
func (r Rank) String() string {
	switch r {
	case RankPreferred:
		return "preferred"
	case RankDeprecated:
		return "deprecated"
	default:
		return "normal"
	}
}

func parseRank(s string) (Rank, bool) {
	switch s {
	case "normal", "":
		return RankNormal, true
	case "preferred":
		return RankPreferred, true
	case "deprecated":
		return RankDeprecated, true
	default:
		return RankNormal, false
	}
}

// Claim is one statement: a property, its main value and the rank.
type Claim struct {
	Property uint64
	Rank     Rank
	Data     Data
}

// Entity is one record of the dump. Labels and descriptions are keyed by
// language code.
type Entity struct {
	ID           EntityID
	Labels       map[string]string
	Descriptions map[string]string
	Claims       []Claim

	// Forms and Senses are only set for lexemes.
	Forms  []SubEntity
	Senses []SubEntity
}

// SubEntity is a lexeme form or sense. Labels hold form representations or
// sense glosses.
type SubEntity struct {
	ID     EntityID
	Labels map[string]string
	Claims []Claim
}

// Label returns the label in the given language.
func (e *Entity) Label(lang string) (string, bool) {
	v, ok := e.Labels[lang]
	return v, ok
}

// Description returns the description in the given language.
func (e *Entity) Description(lang string) (string, bool) {
	v, ok := e.Descriptions[lang]
	return v, ok
}
