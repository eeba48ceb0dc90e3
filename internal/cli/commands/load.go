package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wikisql/wikisql/internal/cli/config"
	"github.com/wikisql/wikisql/internal/cli/ui"
	"github.com/wikisql/wikisql/internal/loader"
	"github.com/wikisql/wikisql/internal/metrics"
	"github.com/wikisql/wikisql/internal/source"
	"github.com/wikisql/wikisql/internal/store"
)

// loadError marks fatal setup failures of a load.
type loadError struct {
	err error
}

func (e *loadError) Error() string { return e.err.Error() }
func (e *loadError) Unwrap() error { return e.err }

// NewLoadCommand creates the load command
func NewLoadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <dump> <destination>",
		Short: "Load a dump into a new database",
		Long: `Load a Wikidata JSON dump into a new database.

The dump is a path, "-" for standard input, or an s3://bucket/key URL.
Files ending in .gz, .zst or .bz2 are decompressed while reading.

The destination is a SQLite file path, or a PostgreSQL connection string
with --driver postgres or --driver pgx. It must not exist yet.

Malformed lines are reported with their line number and skipped.
Durability is off unless --durable is set: a failed run leaves a
destination that must be discarded, not resumed.`,
		Args: cobra.ExactArgs(2),
		RunE: runLoad,
	}

	cmd.Flags().Int("batch-size", loader.DefaultBatchSize, "Records per transaction")
	cmd.Flags().String("language", loader.DefaultLanguage, "Language of labels, descriptions and multilingual text")
	cmd.Flags().Bool("sub-entities", false, "Store lexeme forms and senses as records")
	cmd.Flags().String("driver", "sqlite3", "Database driver (sqlite3, sqlite, postgres, pgx)")
	cmd.Flags().Bool("durable", false, "Keep the journal and synchronous writes enabled")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file when done")
	cmd.Flags().BoolP("quiet", "q", false, "Do not print progress or the summary")

	return cmd
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	quiet, _ := cmd.Flags().GetBool("quiet")

	logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Sync()

	dump, dest := args[0], args[1]
	target := store.Options{Driver: cfg.Driver, DSN: dest, Durable: cfg.Durable}
	if err := store.Validate(target); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	in, err := source.Open(ctx, dump, source.Options{S3: source.S3Options{
		Region:    cfg.S3.Region,
		Endpoint:  cfg.S3.Endpoint,
		PathStyle: cfg.S3.PathStyle,
	}})
	if err != nil {
		return &loadError{err: fmt.Errorf("failed to open dump: %w", err)}
	}
	defer in.Close()

	progress := ui.NewProgress(cmd.OutOrStdout(), ui.ProgressOptions{NoColor: cfg.NoColor})
	opts := loader.Options{
		BatchSize:   cfg.BatchSize,
		Language:    cfg.Language,
		SubEntities: cfg.SubEntities,
		Logger:      logger.With(zap.String("dump", dump)),
	}
	if !quiet {
		opts.Progress = func(s loader.Stats) { progress.Update(s.Entities, s.Bytes) }
	}

	stats, err := loader.Run(ctx, in, target, opts)
	if err != nil {
		return &loadError{err: err}
	}
	elapsed := progress.Elapsed()

	if !quiet {
		progress.Finish(stats.Entities, stats.Bytes)
		writeSummary(cmd, cfg, stats)
	}

	if cfg.MetricsFile != "" {
		if err := metrics.Export(cfg.MetricsFile, stats, elapsed); err != nil {
			logger.Warn("metrics export failed", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}

	logger.Info("load complete",
		zap.Int64("entities", stats.Entities),
		zap.String("bytes", humanize.Bytes(uint64(stats.Bytes))),
		zap.Int64("errors", stats.Errors()),
		zap.Duration("elapsed", elapsed.Truncate(time.Millisecond)))
	return nil
}

func writeSummary(cmd *cobra.Command, cfg *config.Config, stats loader.Stats) {
	out := cmd.OutOrStdout()

	tables := make([]string, 0, len(stats.Rows))
	for name := range stats.Rows {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	tbl := ui.NewTable(out, cfg.NoColor, "TABLE", "ROWS").AlignRight(1)
	for _, name := range tables {
		tbl.AddRow(name, humanize.Comma(stats.Rows[name]))
	}
	tbl.Render()

	if n := stats.Errors(); n > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), ui.Warning(fmt.Sprintf(
			"%d problems reported: %d read, %d JSON, %d entity, %d store, %d commit, %d index",
			n, stats.ReadErrors, stats.JSONErrors, stats.EntityErrors, stats.StoreErrors,
			stats.CommitErrors, stats.IndexErrors), cfg.NoColor))
		return
	}
	ui.WriteSuccess(out, fmt.Sprintf("Loaded %s records", humanize.Comma(stats.Entities)), cfg.NoColor)
}
