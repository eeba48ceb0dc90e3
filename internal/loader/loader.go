// Package loader streams a dump into a fresh destination store.
//
// A run moves through target validation, schema creation, batched ingest,
// a final commit and index creation. Only setup failures stop a run; every
// per-line failure is reported and the next line is read.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wikisql/wikisql/internal/ident"
	"github.com/wikisql/wikisql/internal/schema"
	"github.com/wikisql/wikisql/internal/store"
	"github.com/wikisql/wikisql/internal/value"
	"github.com/wikisql/wikisql/internal/wikidata"
)

// ErrInvalidUTF8 is reported for lines that are not valid UTF-8.
var ErrInvalidUTF8 = errors.New("line is not valid UTF-8")

// writer is implemented by both a batch and the store in autocommit mode.
type writer interface {
	value.Writer
	Savepoint(ctx context.Context, fn func() error) error
}

// Loader ingests one stream into one store. It is not safe for concurrent
// use.
type Loader struct {
	store  *store.Store
	opts   Options
	logger *zap.Logger
	schema *schema.Generator

	batch   *store.Batch
	stats   Stats
	pending int
}

// Run validates and opens the destination, then loads r into it.
func Run(ctx context.Context, r io.Reader, target store.Options, opts Options) (Stats, error) {
	opts = opts.withDefaults()
	opts.Logger.Info("opening destination", zap.String("driver", target.Driver), zap.Bool("durable", target.Durable))

	s, err := store.Create(ctx, target)
	if err != nil {
		return newStats(), err
	}
	defer s.Close()

	return New(s, opts).Load(ctx, r)
}

// New creates a loader writing to s.
func New(s *store.Store, opts Options) *Loader {
	opts = opts.withDefaults()
	return &Loader{
		store:  s,
		opts:   opts,
		logger: opts.Logger,
		schema: schema.NewGenerator(s.Dialect(), schema.All()),
		stats:  newStats(),
	}
}

// Load creates the schema, ingests r and builds the indexes. The returned
// error is only set for fatal setup failures.
func (l *Loader) Load(ctx context.Context, r io.Reader) (Stats, error) {
	start := time.Now()

	for _, stmt := range l.schema.CreateTables() {
		if err := l.store.Exec(ctx, stmt); err != nil {
			return l.stats, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	b, err := l.store.Begin(ctx)
	if err != nil {
		return l.stats, err
	}
	l.batch = b

	if err := l.Ingest(ctx, r); err != nil {
		l.report(StageRead, l.stats.Lines+1, err)
		l.stats.ReadErrors++
	}

	l.finalCommit()
	l.createIndexes(ctx)
	l.progress()

	l.logger.Info("load finished",
		zap.Int64("entities", l.stats.Entities),
		zap.Int64("bytes", l.stats.Bytes),
		zap.Int64("errors", l.stats.Errors()),
		zap.Int64("commits", l.stats.Commits),
		zap.Duration("elapsed", time.Since(start)))
	return l.stats.snapshot(), nil
}

// Ingest processes r line by line until end of stream. It returns an
// error only when the stream itself cannot be read further.
func (l *Loader) Ingest(ctx context.Context, r io.Reader) error {
	br := bufio.NewReaderSize(r, 1<<20)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			l.stats.Lines++
			res := l.processLine(ctx, l.stats.Lines, line)
			l.stats.add(res)
			if res.err != nil {
				var fields []zap.Field
				if res.entity != "" {
					fields = append(fields, zap.String("entity", res.entity))
				}
				l.report(res.stage, res.line, res.err, fields...)
			}
			if res.parsed {
				l.pending++
				if l.pending >= l.opts.BatchSize {
					l.rotate(ctx)
				}
			}
			if l.stats.Lines%progressEvery == 0 {
				l.progress()
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Stats returns a copy of the counters so far.
func (l *Loader) Stats() Stats {
	return l.stats.snapshot()
}

func (l *Loader) processLine(ctx context.Context, n int64, raw []byte) lineResult {
	res := lineResult{line: n}

	line := bytes.TrimSuffix(raw, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	l.stats.Bytes += int64(len(line))

	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("[")) || bytes.Equal(trimmed, []byte("]")) {
		res.skipped = true
		return res
	}
	if !utf8.Valid(trimmed) {
		res.stage, res.err = StageRead, ErrInvalidUTF8
		return res
	}
	trimmed = bytes.TrimSuffix(trimmed, []byte(","))

	doc, err := wikidata.DecodeDocument(trimmed)
	if err != nil {
		res.stage, res.err = StageJSON, err
		return res
	}
	res.entity = doc.ID
	e, err := doc.Entity()
	if err != nil {
		res.stage, res.err = StageEntity, err
		return res
	}
	res.parsed = true

	rows := make(map[*value.Table]int64)
	w := l.writer()
	err = w.Savepoint(ctx, func() error {
		var err error
		res.deprecated, err = l.storeEntity(ctx, w, e, rows)
		return err
	})
	if err != nil {
		res.stage, res.err = StageStore, err
		return res
	}
	res.rows = rows
	return res
}

func (l *Loader) writer() writer {
	if l.batch != nil {
		return l.batch
	}
	return l.store
}

// storeEntity writes the meta row and the claims of e, followed by its
// forms and senses when enabled. It returns the number of dropped
// deprecated claims.
func (l *Loader) storeEntity(ctx context.Context, w writer, e *wikidata.Entity, rows map[*value.Table]int64) (int64, error) {
	label, hasLabel := e.Label(l.opts.Language)
	desc, hasDesc := e.Description(l.opts.Language)
	key := e.ID.Key()

	if err := l.storeMeta(ctx, w, key, label, hasLabel, desc, hasDesc, rows); err != nil {
		return 0, err
	}
	dropped, err := l.storeClaims(ctx, w, key, e.Claims, rows)
	if err != nil || !l.opts.SubEntities {
		return dropped, err
	}

	for _, subs := range [][]wikidata.SubEntity{e.Forms, e.Senses} {
		for _, sub := range subs {
			subKey := sub.ID.Key()
			subLabel, ok := sub.Labels[l.opts.Language]
			if err := l.storeMeta(ctx, w, subKey, subLabel, ok, "", false, rows); err != nil {
				return dropped, fmt.Errorf("%s: %w", sub.ID, err)
			}
			n, err := l.storeClaims(ctx, w, subKey, sub.Claims, rows)
			dropped += n
			if err != nil {
				return dropped, fmt.Errorf("%s: %w", sub.ID, err)
			}
		}
	}
	return dropped, nil
}

func (l *Loader) storeMeta(ctx context.Context, w writer, key ident.Key, label string, hasLabel bool, desc string, hasDesc bool, rows map[*value.Table]int64) error {
	err := w.Insert(ctx, schema.Meta, int64(key),
		sql.NullString{String: label, Valid: hasLabel},
		sql.NullString{String: desc, Valid: hasDesc})
	if err != nil {
		return fmt.Errorf("store meta: %w", err)
	}
	rows[schema.Meta]++
	return nil
}

func (l *Loader) storeClaims(ctx context.Context, w writer, key ident.Key, claims []wikidata.Claim, rows map[*value.Table]int64) (int64, error) {
	var dropped int64
	for _, c := range claims {
		if c.Rank == wikidata.RankDeprecated {
			dropped++
			continue
		}
		v, err := value.FromData(c.Data, l.opts.Language)
		if err != nil {
			return dropped, fmt.Errorf("P%d: %w", c.Property, err)
		}
		if err := value.Store(ctx, w, key, ident.Property(c.Property), v); err != nil {
			return dropped, fmt.Errorf("P%d: %w", c.Property, err)
		}
		rows[v.Table()]++
	}
	return dropped, nil
}

// rotate commits the current batch and opens the next one. When no batch
// can be opened, writes fall back to autocommit until the next boundary.
func (l *Loader) rotate(ctx context.Context) {
	l.pending = 0
	l.commit()

	b, err := l.store.Begin(ctx)
	if err != nil {
		l.stats.CommitErrors++
		l.report(StageBegin, l.stats.Lines, err)
		l.batch = nil
		return
	}
	l.batch = b
}

func (l *Loader) commit() {
	if l.batch == nil {
		return
	}
	b := l.batch
	l.batch = nil
	if err := b.Commit(); err != nil {
		l.stats.CommitErrors++
		l.report(StageCommit, l.stats.Lines, err)
		return
	}
	l.stats.Commits++
	l.logger.Debug("batch committed", zap.Int64("entities", l.stats.Entities), zap.Int("rows", b.Inserts()))
}

func (l *Loader) finalCommit() {
	l.pending = 0
	l.commit()
}

func (l *Loader) createIndexes(ctx context.Context) {
	indexes := l.schema.CreateIndexes()
	l.logger.Info("creating indexes", zap.Int("count", len(indexes)))
	for _, idx := range indexes {
		if err := l.store.Exec(ctx, idx.SQL); err != nil {
			l.stats.IndexErrors++
			l.logger.Warn("index creation failed",
				zap.String("stage", string(StageIndex)),
				zap.String("index", idx.Name),
				zap.Error(err))
		}
	}
}

func (l *Loader) progress() {
	if l.opts.Progress != nil {
		l.opts.Progress(l.stats.snapshot())
	}
}

func (l *Loader) report(stage Stage, line int64, err error, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.Int64("line", line),
		zap.String("stage", string(stage)),
		zap.Error(err),
	}, fields...)
	msg := "line rejected"
	switch stage {
	case StageCommit:
		msg = "commit failed"
	case StageBegin:
		msg = "begin failed, continuing in autocommit mode"
	}
	l.logger.Warn(msg, fields...)
}
