package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <name>...",
	Short: "Resolve free-text player names against the player directory",
	Long: `Resolve maps each name to a player id using exact, alias, then fuzzy matching,
and prints the strategy and similarity score used.

Example:
  injurywire resolve "LeBron James" "King James" "Lebron Jame"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		resolver, err := a.openResolver(cmd.Context())
		if err != nil {
			return err
		}

		matches := resolver.ResolveBatch(args)
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tPLAYER\tMATCHED\tSTRATEGY\tSCORE")
		for _, name := range args {
			m := matches[name]
			if !m.Resolved() {
				fmt.Fprintf(tw, "%s\t-\t-\tunresolved\t-\n", name)
				continue
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%.3f\n", name, m.PlayerID, m.Name, m.Strategy, m.Score)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
