package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wikisql/wikisql/internal/ident"
	"github.com/wikisql/wikisql/internal/wikidata"
)

// NewKeyCommand creates the key command
func NewKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key <id>...",
		Short: "Convert between entity ids and database keys",
		Long: `Print the database key of each entity id (Q42, P31, L7, L7-F2, L7-S1).

With --decode, the arguments are database keys and the entity ids are
printed instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decode, _ := cmd.Flags().GetBool("decode")
			out := cmd.OutOrStdout()

			for _, arg := range args {
				if decode {
					k, err := strconv.ParseUint(arg, 10, 64)
					if err != nil {
						return fmt.Errorf("invalid key %q: %w", arg, err)
					}
					fmt.Fprintf(out, "%d\t%s\n", k, ident.Decode(ident.Key(k)))
					continue
				}

				id, err := wikidata.ParseEntityID(arg)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%d\n", id, id.Key())
			}
			return nil
		},
	}

	cmd.Flags().BoolP("decode", "d", false, "Decode database keys into entity ids")

	return cmd
}
