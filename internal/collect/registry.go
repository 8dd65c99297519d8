package collect

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/injurywire/internal/model"
	"github.com/ppiankov/injurywire/internal/priority"
	"github.com/ppiankov/injurywire/internal/worker"
)

// Batch is the combined output of one collection round
type Batch struct {
	Items    []model.RawItem
	Polled   []string
	Skipped  []string         // Not due yet
	Failures map[string]error // Keyed by collector name
}

// Registry fans a collection round out over its collectors
type Registry struct {
	collectors []Collector
	workers    int
	logger     *log.Logger
}

// NewRegistry creates a registry running at most workers collectors at once
func NewRegistry(workers int, logger *log.Logger, collectors ...Collector) *Registry {
	if workers <= 0 {
		workers = 1
	}
	return &Registry{
		collectors: collectors,
		workers:    workers,
		logger:     logger.WithPrefix("collect"),
	}
}

// Add registers another collector
func (r *Registry) Add(c Collector) {
	r.collectors = append(r.collectors, c)
}

// Len returns the number of registered collectors
func (r *Registry) Len() int {
	return len(r.collectors)
}

// Collect polls every due collector. With force set, cadences are ignored.
// A failing collector is logged and recorded but never aborts the round.
// Items keep registration order.
func (r *Registry) Collect(ctx context.Context, force bool) Batch {
	start := time.Now()
	now := nowFunc()
	results := make([][]model.RawItem, len(r.collectors))
	errs := make([]error, len(r.collectors))
	polled := make([]bool, len(r.collectors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, c := range r.collectors {
		if s, ok := c.(Scheduled); ok && !force && !s.Due(now) {
			continue
		}
		polled[i] = true
		g.Go(func() error {
			items, err := c.Collect(gctx)
			results[i] = items
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	batch := Batch{Failures: make(map[string]error)}
	for i, c := range r.collectors {
		if !polled[i] {
			batch.Skipped = append(batch.Skipped, c.Name())
			continue
		}
		batch.Polled = append(batch.Polled, c.Name())
		if errs[i] != nil {
			batch.Failures[c.Name()] = errs[i]
			r.logger.Warn("collector failed", "collector", c.Name(), "err", errs[i])
		}
		batch.Items = append(batch.Items, results[i]...)
	}

	r.logger.Info("collection round",
		"polled", len(batch.Polled),
		"skipped", len(batch.Skipped),
		"failures", len(batch.Failures),
		"items", len(batch.Items),
		"took", time.Since(start).Round(time.Millisecond))
	return batch
}

// FromConfig builds the feed, bridge and official collectors described by cfg
func FromConfig(cfg *model.Config, table *priority.Table, logger *log.Logger) *Registry {
	limiter := worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst)
	fetcher := NewFetcher(cfg.HTTP, limiter)

	r := NewRegistry(cfg.Concurrency.Workers, logger)
	for _, feed := range cfg.Feeds {
		if feed.URL == "" {
			continue
		}
		r.Add(NewFeedCollector(feed, cfg.NearLock, fetcher, table, logger))
	}
	for _, account := range cfg.Accounts {
		r.Add(NewBridgeCollector(account, cfg.HTTP.BridgeTemplate, fetcher, table, logger))
	}
	if cfg.Official.Enabled && cfg.Official.URL != "" {
		r.Add(NewOfficialCollector(cfg.Official, fetcher, table, logger))
	}
	return r
}
