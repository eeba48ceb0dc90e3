package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wikisql/wikisql/internal/dialect"
	"github.com/wikisql/wikisql/internal/schema"
)

// NewSchemaCommand creates the schema command
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the DDL of the destination database",
		Long:  "Print the CREATE TABLE and CREATE INDEX statements a load runs, for the configured driver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			d, err := dialect.ForDriver(cfg.Driver)
			if err != nil {
				return err
			}

			noIndexes, _ := cmd.Flags().GetBool("no-indexes")
			gen := schema.NewGenerator(d, schema.All())
			out := cmd.OutOrStdout()
			for _, stmt := range gen.CreateTables() {
				fmt.Fprintf(out, "%s;\n", stmt)
			}
			if noIndexes {
				return nil
			}
			fmt.Fprintln(out)
			for _, idx := range gen.CreateIndexes() {
				fmt.Fprintf(out, "%s;\n", idx.SQL)
			}
			return nil
		},
	}

	cmd.Flags().String("driver", "sqlite3", "Database driver (sqlite3, sqlite, postgres, pgx)")
	cmd.Flags().Bool("no-indexes", false, "Only print the tables")

	return cmd
}
