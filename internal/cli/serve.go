package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/injurywire/internal/collect"
	"github.com/ppiankov/injurywire/internal/pipeline"
	"github.com/ppiankov/injurywire/internal/resolve"
	"github.com/ppiankov/injurywire/internal/rest"
)

var serveNoAPI bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll sources on a schedule and serve the assumptions API",
	Long: `Serve runs collection cycles on the configured cron schedules (normal,
near-lock and official report windows) and exposes the REST API:

  GET /health
  GET /api/v1/runs/latest
  GET /api/v1/assumptions?player_id=&since=&limit=
  GET /api/v1/assumptions/:player_id?game_id=
  GET /api/v1/assumptions/:player_id/history?game_id=&limit=
  GET /api/v1/resolve?name=

Each collector still honors its own polling interval, so overlapping
schedules only poll the sources that are due. A cycle is skipped while the
previous one is still running.

Example:
  injurywire serve
  injurywire serve --addr :9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "API listen address")
	serveCmd.Flags().BoolVar(&serveNoAPI, "no-api", false, "run the scheduler without the HTTP API")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := a.newPipeline(ctx, false)
	if err != nil {
		return err
	}
	c := &cycle{
		ctx:      ctx,
		registry: collect.FromConfig(a.cfg, a.table, a.logger()),
		pipeline: p,
		resolver: a.resolver,
		logger:   a.logger().WithPrefix("serve"),
	}

	scheduler, job, err := newScheduler(a, c)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scheduler.Start()
		go job.Run()
		<-gctx.Done()
		<-scheduler.Stop().Done()
		return nil
	})
	if !serveNoAPI {
		engine, srv := rest.NewServer(a.cfg.Server.Addr)
		rest.NewController(a.store, a.resolver).RegisterRoutes(engine.Group("/api/v1"))
		g.Go(func() error {
			return rest.Serve(gctx, srv, a.logger().WithPrefix("rest"))
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger().Info("shutdown complete")
	return nil
}

// newScheduler registers the collection cycle under every configured
// schedule. All entries share one job so cycles never overlap.
func newScheduler(a *app, c *cycle) (*cron.Cron, cron.Job, error) {
	cronLogger := cron.PrintfLogger(a.logger().WithPrefix("cron").StandardLog())
	scheduler := cron.New(cron.WithLogger(cronLogger))
	job := cron.NewChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)).Then(c)

	specs := []struct {
		name string
		expr string
	}{
		{"normal", a.cfg.Schedule.Normal},
		{"near_lock", a.cfg.Schedule.NearLock},
		{"official", a.cfg.Schedule.Official},
	}
	registered := 0
	for _, s := range specs {
		if s.expr == "" {
			continue
		}
		schedule, err := cron.ParseStandard(s.expr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid %s schedule %q: %w", s.name, s.expr, err)
		}
		scheduler.Schedule(schedule, job)
		registered++
	}
	if registered == 0 {
		return nil, nil, errors.New("no schedules configured")
	}
	return scheduler, job, nil
}

// cycle is one scheduled collect-and-transform pass
type cycle struct {
	ctx      context.Context
	registry *collect.Registry
	pipeline *pipeline.Pipeline
	resolver *resolve.Resolver
	logger   *log.Logger
}

// Run implements cron.Job
func (c *cycle) Run() {
	if c.ctx.Err() != nil {
		return
	}
	// Pick up players imported since the last cycle
	if err := c.resolver.Refresh(c.ctx); err != nil {
		c.logger.Warn("player refresh failed, using cached directory", "err", err)
	}

	batch := c.registry.Collect(c.ctx, false)
	if len(batch.Items) == 0 {
		c.logger.Debug("nothing new", "polled", len(batch.Polled), "skipped", len(batch.Skipped))
		return
	}
	res := c.pipeline.Run(c.ctx, batch.Items)
	for _, impact := range res.Impacts() {
		c.logger.Info("assumption", impact.KeyVals()...)
	}
}
