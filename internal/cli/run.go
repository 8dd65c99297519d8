package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/injurywire/internal/collect"
	"github.com/ppiankov/injurywire/internal/model"
	"github.com/ppiankov/injurywire/internal/pipeline"
)

var (
	runInput   string
	runTimeout time.Duration
	runDryRun  bool
	runJSON    bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect news and run one batch through the pipeline",
	Long: `Run performs one collection cycle:
- Poll every configured feed, social account and the official report
  (or read RawItems from a JSON Lines file with --input)
- Drop items already processed within the dedup window
- Extract injury signals and resolve player names
- Synthesize assumptions and keep the most authoritative per player and game
- Store the survivors and trigger projection recomputes

Example:
  injurywire run
  injurywire run --input items.jsonl
  cat items.jsonl | injurywire run --input - --dry-run --json`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "JSON Lines file of RawItems (\"-\" for stdin) instead of live collection")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 5*time.Minute, "overall run timeout")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "dedup within the batch only, do not store assumptions or publish triggers")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the result as JSON")
	runCmd.Flags().Int("workers", 0, "number of concurrent workers")

	_ = viper.BindPFlag("concurrency.workers", runCmd.Flags().Lookup("workers"))
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	p, err := a.newPipeline(ctx, runDryRun)
	if err != nil {
		return err
	}

	var items []model.RawItem
	if runInput != "" {
		fc := collect.NewFileCollector(runInput, a.table, a.logger())
		if items, err = fc.Collect(ctx); err != nil {
			return fmt.Errorf("collect %s: %w", fc.Name(), err)
		}
	} else {
		// Per-collector failures are logged by the registry and do not fail the run
		items = collect.FromConfig(a.cfg, a.table, a.logger()).Collect(ctx, true).Items
	}

	res := p.Run(ctx, items)
	if runJSON {
		return writeResultJSON(cmd.OutOrStdout(), res)
	}
	writeResult(cmd.OutOrStdout(), res)
	return nil
}

type resultView struct {
	Run         model.Run          `json:"run"`
	Assumptions []model.Assumption `json:"assumptions"`
}

func writeResultJSON(w io.Writer, res pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	view := resultView{Run: res.Run(), Assumptions: res.Assumptions}
	if view.Assumptions == nil {
		view.Assumptions = []model.Assumption{}
	}
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func writeResult(w io.Writer, res pipeline.Result) {
	s := res.Stats
	fmt.Fprintf(w, "Run %s (%v)\n", res.RunID, res.Finished.Sub(res.Started).Round(time.Millisecond))
	fmt.Fprintf(w, "  Items:        %d (%d duplicates)\n", s.Items, s.Duplicates)
	fmt.Fprintf(w, "  Misses:       %d extraction, %d resolution, %d synthesis\n", s.ExtractionMisses, s.ResolutionMisses, s.SynthesisMisses)
	fmt.Fprintf(w, "  Assumptions:  %d (%d superseded)\n", s.Assumptions, s.Superseded)
	fmt.Fprintf(w, "  Stored:       %d saved, %d kept existing\n", s.Saved, s.Kept)
	if s.Panics+s.Cancelled+s.PersistenceFailures+s.TriggerFailures > 0 {
		fmt.Fprintf(w, "  Failures:     %d panics, %d cancelled, %d persistence, %d trigger\n",
			s.Panics, s.Cancelled, s.PersistenceFailures, s.TriggerFailures)
	}

	impacts := res.Impacts()
	if len(impacts) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tGAME\tTYPE\tMINUTES\tCAP\tCONFIDENCE\tREASON")
	for _, i := range impacts {
		minutesCap := "-"
		if i.MinutesCap != nil {
			minutesCap = fmt.Sprint(*i.MinutesCap)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i.PlayerID, dash(i.GameID), i.ImpactType, dash(i.MinutesImpact), minutesCap, i.Confidence, i.Reason)
	}
	_ = tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// openInput opens path for reading, with "-" meaning stdin
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}
