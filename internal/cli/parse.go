package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/injurywire/internal/collect"
	"github.com/ppiankov/injurywire/internal/extract"
	"github.com/ppiankov/injurywire/internal/model"
)

var (
	parseInput  string
	parseSource string
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse [text...]",
	Short: "Extract injury signals without resolving or storing anything",
	Long: `Parse runs only the keyword extractor and prints one JSON signal per line.
Each argument is treated as one news item from --source. Without arguments,
RawItems are read as JSON Lines from --input.

Example:
  injurywire parse "LeBron James (ankle) is questionable for Friday"
  injurywire parse --source official_nba_injury_report "Joel Embiid ruled out"
  injurywire parse --input items.jsonl`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseInput, "input", "i", "-", "JSON Lines file of RawItems (\"-\" for stdin)")
	parseCmd.Flags().StringVar(&parseSource, "source", "general_news", "source id for text arguments")
}

func runParse(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var items []model.RawItem
	if len(args) > 0 {
		fetched := model.FormatTimestamp(nowFunc())
		for _, text := range args {
			items = append(items, model.RawItem{
				Text:           strings.TrimSpace(text),
				Source:         parseSource,
				SourcePriority: a.table.Rank(parseSource),
				FetchedAt:      fetched,
				Kind:           model.ItemKindFile,
			})
		}
	} else {
		in, err := openInput(parseInput)
		if err != nil {
			return err
		}
		defer func() { _ = in.Close() }()

		if items, err = collect.ReadItems(in, a.table, a.logger()); err != nil {
			return err
		}
	}

	extractor := extract.NewExtractor()
	enc := json.NewEncoder(cmd.OutOrStdout())
	misses := 0
	for _, item := range items {
		sig, ok := extractor.Extract(item)
		if !ok || !sig.Actionable() {
			misses++
			continue
		}
		if err := enc.Encode(sig); err != nil {
			return fmt.Errorf("encode signal: %w", err)
		}
	}
	a.logger().Debug("parse complete", "items", len(items), "misses", misses)
	return nil
}
