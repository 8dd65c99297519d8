// Package pipeline runs a batch of raw items through deduplication,
// extraction, resolution, synthesis and merging, then persists and
// announces the surviving assumptions.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ppiankov/injurywire/internal/assume"
	"github.com/ppiankov/injurywire/internal/dedup"
	"github.com/ppiankov/injurywire/internal/extract"
	"github.com/ppiankov/injurywire/internal/model"
	"github.com/ppiankov/injurywire/internal/priority"
	"github.com/ppiankov/injurywire/internal/resolve"
	"github.com/ppiankov/injurywire/internal/trigger"
	"github.com/ppiankov/injurywire/internal/worker"
)

// Saver persists a merged assumption. saved is false when the stored
// assumption outranks it.
type Saver interface {
	Save(ctx context.Context, a model.Assumption) (bool, error)
}

// RunRecorder stores run summaries
type RunRecorder interface {
	RecordRun(ctx context.Context, run model.Run) error
}

// Deps are the collaborators of a Pipeline. Filter, Saver, Trigger and
// Runs are optional.
type Deps struct {
	Resolver *resolve.Resolver
	Table    *priority.Table
	Filter   *dedup.Filter
	Saver    Saver
	Trigger  trigger.Trigger
	Runs     RunRecorder
	Workers  int
	Logger   *log.Logger
}

// Pipeline orchestrates one batch transform
type Pipeline struct {
	extractor   *extract.Extractor
	synthesizer *assume.Synthesizer
	merger      *assume.Merger
	deps        Deps
	logger      *log.Logger
}

// New creates a pipeline
func New(deps Deps) *Pipeline {
	if deps.Workers <= 0 {
		deps.Workers = 1
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	return &Pipeline{
		extractor:   extract.NewExtractor(),
		synthesizer: assume.NewSynthesizer(),
		merger:      assume.NewMerger(deps.Table),
		deps:        deps,
		logger:      deps.Logger.WithPrefix("pipeline"),
	}
}

// Result is the outcome of one run
type Result struct {
	RunID       uuid.UUID
	Assumptions []model.Assumption // One survivor per key, sorted by player then game
	Stats       model.RunStats
	Started     time.Time
	Finished    time.Time
}

// Run summarizes the result for storage and display
func (r Result) Run() model.Run {
	return model.Run{
		ID:       r.RunID.String(),
		Started:  model.FormatTimestamp(r.Started),
		Finished: model.FormatTimestamp(r.Finished),
		Stats:    r.Stats,
	}
}

// Impacts returns the impact summary of every surviving assumption
func (r Result) Impacts() []assume.Impact {
	out := make([]assume.Impact, 0, len(r.Assumptions))
	for _, a := range r.Assumptions {
		out = append(out, assume.ImpactOf(a))
	}
	return out
}

type miss int

const (
	hit miss = iota
	missExtraction
	missResolution
	missSynthesis
)

type staged struct {
	assumption model.Assumption
	miss       miss
}

// Run processes items in arrival order. It never fails: per-item problems
// are counted in the result's stats.
func (p *Pipeline) Run(ctx context.Context, items []model.RawItem) Result {
	res := Result{RunID: uuid.New(), Started: time.Now()}
	res.Stats.Items = len(items)
	logger := p.logger.With("run_id", res.RunID.String())

	fresh := p.admit(ctx, items, &res.Stats)

	outcomes := worker.Map(ctx, p.deps.Workers, fresh, func(ctx context.Context, item model.RawItem) (staged, error) {
		return p.stage(item), nil
	})

	ledger := assume.NewLedger(p.merger)
	for _, out := range outcomes {
		switch {
		case out.Panicked():
			res.Stats.Panics++
			logger.Error("item panicked", "index", out.Index, "err", out.Err)
		case out.Err != nil:
			res.Stats.Cancelled++
		case out.Value.miss == missExtraction:
			res.Stats.ExtractionMisses++
		case out.Value.miss == missResolution:
			res.Stats.ResolutionMisses++
		case out.Value.miss == missSynthesis:
			res.Stats.SynthesisMisses++
		default:
			ledger.Offer(out.Value.assumption)
		}
	}

	res.Assumptions = ledger.Survivors()
	res.Stats.Assumptions = len(res.Assumptions)
	res.Stats.Superseded = ledger.Superseded()

	p.publish(ctx, logger, res.Assumptions, &res.Stats)

	res.Finished = time.Now()
	if p.deps.Runs != nil {
		if err := p.deps.Runs.RecordRun(ctx, res.Run()); err != nil {
			logger.Warn("failed to record run", "err", err)
		}
	}

	logger.Info("run complete",
		"items", res.Stats.Items,
		"duplicates", res.Stats.Duplicates,
		"assumptions", res.Stats.Assumptions,
		"saved", res.Stats.Saved,
		"took", res.Finished.Sub(res.Started).Round(time.Millisecond))
	return res
}

// admit drops duplicates sequentially so first sightings win in arrival order
func (p *Pipeline) admit(ctx context.Context, items []model.RawItem, stats *model.RunStats) []model.RawItem {
	fresh := make([]model.RawItem, 0, len(items))
	for _, item := range items {
		if item.SourcePriority <= 0 {
			item.SourcePriority = p.deps.Table.Rank(item.Source)
		}
		if item.DedupKey == "" {
			item.DedupKey = dedup.KeyOf(item)
		}
		if p.deps.Filter != nil && p.deps.Filter.IsDuplicate(ctx, item.DedupKey) {
			stats.Duplicates++
			continue
		}
		fresh = append(fresh, item)
	}
	return fresh
}

// stage runs the per-item transforms
func (p *Pipeline) stage(item model.RawItem) staged {
	sig, ok := p.extractor.Extract(item)
	if !ok || !sig.Actionable() {
		return staged{miss: missExtraction}
	}

	m := p.deps.Resolver.ResolveMatch(sig.PlayerName)
	if !m.Resolved() {
		return staged{miss: missResolution}
	}

	a, ok := p.synthesizer.Synthesize(model.ResolvedSignal{
		Signal:   sig,
		PlayerID: m.PlayerID,
		Strategy: string(m.Strategy),
		Score:    m.Score,
	})
	if !ok {
		return staged{miss: missSynthesis}
	}
	return staged{assumption: a}
}

// publish saves survivors and triggers recomputes for the ones that changed
func (p *Pipeline) publish(ctx context.Context, logger *log.Logger, survivors []model.Assumption, stats *model.RunStats) {
	for _, a := range survivors {
		logger.Debug("assumption", assume.ImpactOf(a).KeyVals()...)

		if p.deps.Saver != nil {
			saved, err := p.deps.Saver.Save(ctx, a)
			if err != nil {
				stats.PersistenceFailures++
				logger.Error("failed to save assumption", "key", a.Key().String(), "err", err)
				continue
			}
			if !saved {
				stats.Kept++
				continue
			}
			stats.Saved++
		}

		if p.deps.Trigger == nil {
			continue
		}
		if err := p.deps.Trigger.Notify(ctx, a.PlayerID, a); err != nil {
			stats.TriggerFailures++
			if !errors.Is(err, context.Canceled) {
				logger.Warn("recompute trigger failed", "player_id", a.PlayerID, "err", err)
			}
		}
	}
}
