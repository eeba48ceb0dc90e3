package loader

import "github.com/wikisql/wikisql/internal/value"

// Stats are the counters of one run. They accumulate across the whole
// stream.
type Stats struct {
	// Lines is the number of lines read.
	Lines int64
	// Bytes is the sum of raw line lengths, skipped and invalid lines
	// included.
	Bytes int64
	// Entities counts records that parsed, whether or not they stored.
	Entities int64
	// Skipped counts empty lines and array delimiters.
	Skipped int64

	ReadErrors   int64
	JSONErrors   int64
	EntityErrors int64
	StoreErrors  int64
	CommitErrors int64
	IndexErrors  int64

	Commits          int64
	DeprecatedClaims int64

	// Rows counts rows of successfully stored records per table.
	Rows map[string]int64
}

func newStats() Stats {
	return Stats{Rows: make(map[string]int64)}
}

// Errors returns the number of reported failures.
func (s Stats) Errors() int64 {
	return s.ReadErrors + s.JSONErrors + s.EntityErrors + s.StoreErrors + s.CommitErrors + s.IndexErrors
}

// snapshot copies s so callers cannot observe later updates.
func (s Stats) snapshot() Stats {
	rows := make(map[string]int64, len(s.Rows))
	for k, v := range s.Rows {
		rows[k] = v
	}
	s.Rows = rows
	return s
}

// Stage names the step at which a line failed.
type Stage string

const (
	StageRead   Stage = "read"
	StageJSON   Stage = "json"
	StageEntity Stage = "entity"
	StageStore  Stage = "store"
	StageCommit Stage = "commit"
	StageBegin  Stage = "begin"
	StageIndex  Stage = "index"
)

// lineResult is the outcome of one line.
type lineResult struct {
	line    int64
	skipped bool
	// parsed is set once the line produced a record.
	parsed     bool
	stage      Stage
	err        error
	entity     string
	rows       map[*value.Table]int64
	deprecated int64
}

// add folds r into the run counters.
func (s *Stats) add(r lineResult) {
	s.DeprecatedClaims += r.deprecated
	if r.skipped {
		s.Skipped++
		return
	}
	if r.parsed {
		s.Entities++
	}
	switch r.stage {
	case StageRead:
		s.ReadErrors++
	case StageJSON:
		s.JSONErrors++
	case StageEntity:
		s.EntityErrors++
	case StageStore:
		s.StoreErrors++
	case "":
		for t, n := range r.rows {
			s.Rows[t.Name] += n
		}
	}
}
