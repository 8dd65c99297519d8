package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/injurywire/internal/store"
)

// playersCmd represents the players command
var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Manage the player directory",
}

var playersImportCmd = &cobra.Command{
	Use:   "import <csv>",
	Short: "Import players from a CSV file",
	Long: `Import upserts players from a CSV file with columns id,name[,team[,active]].
A header row and # comment lines are skipped. Use "-" to read from stdin.

Example:
  injurywire players import roster.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		in, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = in.Close() }()

		players, err := store.ReadPlayersCSV(in)
		if err != nil {
			return err
		}
		st, err := a.openStore()
		if err != nil {
			return err
		}
		n, err := st.UpsertPlayers(cmd.Context(), players)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d players into %s\n", n, a.cfg.Store.Path)
		return nil
	},
}

var playersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active players",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		st, err := a.openStore()
		if err != nil {
			return err
		}
		players, err := st.Players(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tTEAM")
		for _, p := range players {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, dash(p.Team))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(playersCmd)
	playersCmd.AddCommand(playersImportCmd)
	playersCmd.AddCommand(playersListCmd)
}
