package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/ppiankov/injurywire/internal/assume"
	"github.com/ppiankov/injurywire/internal/cache"
	"github.com/ppiankov/injurywire/internal/dedup"
	"github.com/ppiankov/injurywire/internal/logging"
	"github.com/ppiankov/injurywire/internal/model"
	"github.com/ppiankov/injurywire/internal/pipeline"
	"github.com/ppiankov/injurywire/internal/priority"
	"github.com/ppiankov/injurywire/internal/resolve"
	"github.com/ppiankov/injurywire/internal/store"
	"github.com/ppiankov/injurywire/internal/trigger"
)

var nowFunc = time.Now

// app holds the components shared by the commands
type app struct {
	cfg      *model.Config
	log      *logging.Logger
	table    *priority.Table
	store    *store.Store
	resolver *resolve.Resolver

	closers []io.Closer
}

// newApp loads the effective config and builds the logger and priority table
func newApp() (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{
		cfg:   cfg,
		log:   logger,
		table: priority.NewTable(cfg.Priorities),
	}
	a.closers = append(a.closers, logger)
	return a, nil
}

func (a *app) logger() *log.Logger {
	return a.log.Logger
}

// openStore opens the database with the priority-aware merge rule
func (a *app) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	merger := assume.NewMerger(a.table)
	st, err := store.Open(a.cfg.Store.Path, merger.Prefers)
	if err != nil {
		return nil, err
	}
	a.store = st
	a.closers = append(a.closers, st)
	return st, nil
}

// openResolver builds a resolver over the stored player directory with the
// configured aliases, and loads its cache
func (a *app) openResolver(ctx context.Context) (*resolve.Resolver, error) {
	if a.resolver != nil {
		return a.resolver, nil
	}
	st, err := a.openStore()
	if err != nil {
		return nil, err
	}

	r := resolve.NewResolver(st, a.cfg.Resolver.FuzzyThreshold, a.logger())
	r.AddAliases(a.cfg.Resolver.Aliases)
	if path := a.cfg.Resolver.AliasesFile; path != "" {
		aliases, err := resolve.LoadAliases(path)
		if err != nil {
			return nil, err
		}
		r.AddAliases(aliases)
	}
	if err := r.Refresh(ctx); err != nil {
		return nil, err
	}
	a.resolver = r
	return r, nil
}

// newFilter builds the dedup filter over the configured seen store
func (a *app) newFilter() (*dedup.Filter, error) {
	seen, err := cache.NewSeenStore(a.cfg.Dedup, a.cfg.Redis, dedup.TTL)
	if err != nil {
		return nil, err
	}
	if c, ok := seen.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	return dedup.NewFilter(seen, a.cfg.Dedup.Prefix, a.logger()), nil
}

func (a *app) newTrigger() trigger.Trigger {
	t := trigger.FromConfig(a.cfg.Kafka, a.logger())
	if c, ok := t.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	return t
}

// newPipeline wires the full pipeline. A dry run dedups against a
// throwaway memory store, skips persistence and only logs changes.
func (a *app) newPipeline(ctx context.Context, dryRun bool) (*pipeline.Pipeline, error) {
	resolver, err := a.openResolver(ctx)
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Resolver: resolver,
		Table:    a.table,
		Workers:  a.cfg.Concurrency.Workers,
		Logger:   a.logger(),
	}
	if dryRun {
		deps.Filter = dedup.NewFilter(cache.NewMemoryStore(dedup.TTL, 10*time.Minute), a.cfg.Dedup.Prefix, a.logger())
		deps.Trigger = trigger.NewLogTrigger(a.logger())
		return pipeline.New(deps), nil
	}

	filter, err := a.newFilter()
	if err != nil {
		return nil, err
	}
	deps.Filter = filter
	deps.Saver = a.store
	deps.Runs = a.store
	deps.Trigger = a.newTrigger()
	return pipeline.New(deps), nil
}

// close releases resources in reverse order of acquisition
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}
