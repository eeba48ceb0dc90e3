package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProgress(&buf, ProgressOptions{NoColor: true, Now: clock.now})

	clock.t = clock.t.Add(2500 * time.Millisecond)
	p.Update(1500, 2_000_000)
	assert.Equal(t, "\r\033[K1,500 entities, 2.0 MB processed in 2s...", buf.String())

	buf.Reset()
	clock.t = clock.t.Add(time.Minute)
	p.Finish(2500, 3_500_000)
	assert.Equal(t, "\r\033[K2,500 entities, 3.5 MB processed in 1m2s.\n", buf.String())
	assert.Equal(t, 62500*time.Millisecond, p.Elapsed())
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
		excludes []string
	}{
		{
			name: "context and problem",
			opts: ErrorOptions{Context: "load failed", Problem: "cannot open dump"},
			contains: []string{
				"❌ LOAD FAILED: cannot open dump",
			},
			excludes: []string{"Did you mean"},
		},
		{
			name: "suggestions and help",
			opts: ErrorOptions{
				Problem:      "unsupported driver",
				Suggestions:  []string{"sqlite3", "sqlite"},
				HelpCommands: []string{"wikisql --help"},
			},
			contains: []string{
				"Did you mean: sqlite3, sqlite?",
				"→ wikisql --help",
			},
		},
		{
			name:     "warning",
			opts:     ErrorOptions{Level: ErrorLevelWarning, Problem: "3 indexes failed"},
			contains: []string{"⚠️ 3 indexes failed"},
			excludes: []string{"❌"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.NoColor = true
			out := FormatError(tt.opts)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestCannedErrors(t *testing.T) {
	out := DestinationExistsError("wikidata.db", true)
	assert.Contains(t, out, "DESTINATION EXISTS: wikidata.db")
	assert.Contains(t, out, "nothing was written")

	out = ConfigError("driver: unsupported driver \"sqlit\"", []string{"sqlite"}, true)
	assert.Contains(t, out, "CONFIGURATION ERROR")
	assert.Contains(t, out, "Did you mean: sqlite?")
	assert.Contains(t, out, "wikisql config show")

	assert.Contains(t, LoadError("no such table", true), "LOAD FAILED: no such table")
	assert.Equal(t, "✓ done", FormatSuccess("done", true))

	var buf bytes.Buffer
	WriteSuccess(&buf, "loaded", true)
	assert.Equal(t, "✓ loaded\n", buf.String())
}

func TestSuggest(t *testing.T) {
	drivers := []string{"sqlite3", "sqlite", "postgres", "pgx"}

	assert.Equal(t, []string{"sqlite", "sqlite3"}, Suggest("sqlit", drivers))
	assert.Equal(t, []string{"postgres"}, Suggest("Postgre", drivers))
	assert.Empty(t, Suggest("mysql-server", drivers))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 3, levenshtein("saturday", "sunday"))
	assert.Equal(t, 4, levenshtein("", "meta"))
	assert.Equal(t, 0, levenshtein("time", "time"))
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, true, "TABLE", "ROWS").AlignRight(1)
	tbl.AddRow("meta", "2500")
	tbl.AddRow("coordinates", "12")
	tbl.Render()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"TABLE        ROWS",
		"───────────  ────",
		"meta         2500",
		"coordinates    12",
	}, lines)
}
