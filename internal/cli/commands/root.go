package commands

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wikisql/wikisql/internal/cli/config"
	"github.com/wikisql/wikisql/internal/cli/ui"
	"github.com/wikisql/wikisql/internal/dialect"
	"github.com/wikisql/wikisql/internal/store"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wikisql",
		Short: "Load Wikidata JSON dumps into a relational database",
		Long: color.CyanString(`wikisql - Wikidata dump loader

wikisql streams a Wikidata entity dump into a fresh SQLite or PostgreSQL
database with one table per claim value type.

Features:
  • One integer key space for items, properties, lexemes, forms and senses
  • Batched transactions with per-line error isolation
  • gzip, zstd and bzip2 dumps from disk, stdin or S3`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default ./wikisql.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewLoadCommand())
	rootCmd.AddCommand(NewSchemaCommand())
	rootCmd.AddCommand(NewKeyCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// loadConfig loads the configuration with the flags of cmd on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path, cmd.Flags())
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the wikisql version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()
			for _, row := range [][2]string{
				{"wikisql version: ", Version},
				{"Git commit: ", GitCommit},
				{"Build date: ", BuildDate},
				{"Go version: ", goVer},
			} {
				titleColor.Fprint(out, row[0])
				fmt.Fprintln(out, row[1])
			}
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		noColor, _ := rootCmd.PersistentFlags().GetBool("no-color")
		writeError(rootCmd.ErrOrStderr(), err, noColor)
		return err
	}
	return nil
}

// writeError renders a fatal error for the operator.
func writeError(w io.Writer, err error, noColor bool) {
	var (
		verr *config.ValidationError
		lerr *loadError
	)
	switch {
	case errors.Is(err, store.ErrTargetExists):
		fmt.Fprint(w, ui.DestinationExistsError(err.Error(), noColor))
	case errors.As(err, &verr):
		var suggestions []string
		if verr.Key == "driver" {
			suggestions = ui.Suggest(verr.Value, dialect.Drivers())
		}
		fmt.Fprint(w, ui.ConfigError(err.Error(), suggestions, noColor))
	case errors.As(err, &lerr):
		fmt.Fprint(w, ui.LoadError(err.Error(), noColor))
	default:
		errorColor := color.New(color.FgRed, color.Bold)
		if noColor {
			errorColor.DisableColor()
		}
		errorColor.Fprintf(w, "Error: %v\n", err)
	}
}
