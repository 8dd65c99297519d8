package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/injurywire/internal/model"
	"github.com/ppiankov/injurywire/internal/store"
)

var (
	listPlayer   int64
	listSince    string
	listLimit    int
	listJSON     bool
	historyGame  string
	historyLimit int
)

// assumptionsCmd represents the assumptions command
var assumptionsCmd = &cobra.Command{
	Use:   "assumptions",
	Short: "Inspect stored assumptions",
}

var assumptionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List current assumptions, newest first",
	Long: `List prints the assumption currently in effect for each player and game.

Example:
  injurywire assumptions list
  injurywire assumptions list --player 2544 --json
  injurywire assumptions list --since 2024-01-15T00:00:00Z --limit 20`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := store.ListFilter{PlayerID: listPlayer, Limit: listLimit}
		if listSince != "" {
			t, ok := model.ParseTime(listSince)
			if !ok {
				return fmt.Errorf("invalid --since: %q", listSince)
			}
			filter.Since = model.FormatTimestamp(t)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		st, err := a.openStore()
		if err != nil {
			return err
		}
		list, err := st.List(cmd.Context(), filter)
		if err != nil {
			return err
		}

		if listJSON {
			return encodeLines(cmd.OutOrStdout(), list)
		}
		writeAssumptions(cmd.OutOrStdout(), list)
		return nil
	},
}

var assumptionsHistoryCmd = &cobra.Command{
	Use:   "history <player_id>",
	Short: "Show every assumption offered for a player, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid player id %q: %w", args[0], err)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		st, err := a.openStore()
		if err != nil {
			return err
		}
		entries, err := st.History(cmd.Context(), model.Key{PlayerID: id, GameID: historyGame}, historyLimit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "LOGGED\tAPPLIED\tTYPE\tSOURCE\tCONFIDENCE\tREASON")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\t%s\n",
				e.LoggedAt, e.Applied, e.Assumption.Type, e.Assumption.Source, e.Assumption.Confidence, e.Assumption.Reason)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(assumptionsCmd)
	assumptionsCmd.AddCommand(assumptionsListCmd)
	assumptionsCmd.AddCommand(assumptionsHistoryCmd)

	assumptionsListCmd.Flags().Int64Var(&listPlayer, "player", 0, "only this player id")
	assumptionsListCmd.Flags().StringVar(&listSince, "since", "", "only assumptions at or after this time")
	assumptionsListCmd.Flags().IntVar(&listLimit, "limit", 50, "maximum rows (0 for all)")
	assumptionsListCmd.Flags().BoolVar(&listJSON, "json", false, "print one JSON assumption per line")

	assumptionsHistoryCmd.Flags().StringVar(&historyGame, "game", "", "game id")
	assumptionsHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum entries")
}

func writeAssumptions(w io.Writer, list []model.Assumption) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tGAME\tTYPE\tMULTIPLIER\tCAP\tCONFIDENCE\tSOURCE\tTIMESTAMP")
	for _, a := range list {
		multiplier, minutesCap := "-", "-"
		if a.MinutesMultiplier != nil {
			multiplier = strconv.FormatFloat(*a.MinutesMultiplier, 'f', 2, 64)
		}
		if a.MinutesCap != nil {
			minutesCap = strconv.Itoa(*a.MinutesCap)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.PlayerID, dash(a.GameID), a.Type, multiplier, minutesCap, a.Confidence, a.Source, a.Timestamp)
	}
	_ = tw.Flush()
}

func encodeLines[T any](w io.Writer, values []T) error {
	enc := json.NewEncoder(w)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	}
	return nil
}
