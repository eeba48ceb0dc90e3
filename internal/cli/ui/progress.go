package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Progress renders the running totals of a load on a single line:
//
//	2,500 entities, 14 MB processed in 3s...
//
// The final render ends the line with a single dot.
type Progress struct {
	writer  io.Writer
	start   time.Time
	now     func() time.Time
	noColor bool
}

// ProgressOptions configures progress rendering
type ProgressOptions struct {
	NoColor bool
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewProgress starts a progress line at the current time.
func NewProgress(w io.Writer, opts ProgressOptions) *Progress {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Progress{writer: w, start: now(), now: now, noColor: opts.NoColor}
}

// Update redraws the line with the given totals.
func (p *Progress) Update(entities, bytes int64) {
	fmt.Fprintf(p.writer, "\r\033[K%s...", p.line(entities, bytes))
}

// Finish draws the final totals and ends the line.
func (p *Progress) Finish(entities, bytes int64) {
	fmt.Fprintf(p.writer, "\r\033[K%s.\n", p.line(entities, bytes))
}

// Elapsed returns the time since the progress started.
func (p *Progress) Elapsed() time.Duration {
	return p.now().Sub(p.start)
}

func (p *Progress) line(entities, bytes int64) string {
	cyan := color.New(color.FgCyan)
	if p.noColor {
		cyan.DisableColor()
	}
	elapsed := p.Elapsed().Truncate(time.Second)
	return fmt.Sprintf("%s entities, %s processed in %s",
		cyan.Sprint(humanize.Comma(entities)),
		cyan.Sprint(humanize.Bytes(uint64(bytes))),
		elapsed)
}
