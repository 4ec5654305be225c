package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rendis/dsviz/internal/api"
	"github.com/rendis/dsviz/internal/catalog"
	"github.com/rendis/dsviz/internal/expressions"
	"github.com/rendis/dsviz/internal/metrics"
	"github.com/rendis/dsviz/internal/pacing"
	"github.com/rendis/dsviz/internal/scheduler"
	"github.com/rendis/dsviz/internal/streaming"
	"github.com/rendis/dsviz/internal/validation"
	"github.com/rendis/dsviz/internal/visualizer"
	"github.com/rendis/dsviz/pkg/schema"
)

// app holds the long-lived components of a dsviz process.
type app struct {
	cfg       Config
	logger    *slog.Logger
	hub       *streaming.MemoryHub
	metrics   *metrics.Metrics
	pacer     *pacing.Pacer
	catalog   catalog.Store
	svc       *visualizer.Service
	sched     *scheduler.Scheduler
	validator *validation.JSONSchemaValidator
	jq        *expressions.GoJQEngine
	resetJob  string
}

// buildApp wires every component from cfg. The caller must Close it.
func buildApp(ctx context.Context, cfg Config, logger *slog.Logger) (*app, error) {
	policies, fallback, err := cfg.policies()
	if err != nil {
		return nil, err
	}
	validator, err := validation.NewJSONSchemaValidator()
	if err != nil {
		return nil, fmt.Errorf("compile schemas: %w", err)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		hub:       streaming.NewMemoryHub(),
		validator: validator,
		jq:        expressions.NewGoJQEngine(),
	}

	pool := pacing.NewWorkerPool(cfg.PoolSize)
	a.metrics = metrics.New(pool.Metrics)
	a.pacer = pacing.NewPacer(pacing.Deps{
		Hub:      a.hub,
		Pool:     pool,
		Policies: policies,
		Default:  fallback,
		Observer: a.metrics,
		Logger:   logger,
	})

	if err := a.openCatalog(ctx); err != nil {
		a.Close()
		return nil, err
	}

	vdeps := visualizer.Deps{Pacer: a.pacer, Metrics: a.metrics, Logger: logger}
	if a.catalog != nil {
		vdeps.Catalog = a.catalog
	}
	a.svc = visualizer.New(visualizer.Config{
		ArrayCapacity: cfg.ArrayCapacity,
		StackCapacity: cfg.StackCapacity,
		QueueCapacity: cfg.QueueCapacity,
	}, vdeps)

	a.sched = scheduler.NewScheduler(a.svc, logger)
	if err := a.setResetSchedule(cfg.ResetSchedule); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openCatalog(ctx context.Context) error {
	switch a.cfg.Catalog {
	case catalogNone:
		return nil
	case catalogLibSQL:
		cel, err := expressions.NewCELEngine()
		if err != nil {
			return err
		}
		st, err := catalog.NewLibSQLStore(a.cfg.DBPath, cel)
		if err != nil {
			return err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return err
		}
		a.catalog = st
	default:
		cel, err := expressions.NewCELEngine()
		if err != nil {
			return err
		}
		a.catalog = catalog.NewMemoryStore(cel)
	}
	return nil
}

// setResetSchedule replaces the job that clears every structure. An empty
// expression removes it.
func (a *app) setResetSchedule(cron string) error {
	if a.resetJob != "" {
		if err := a.sched.RemoveJob(a.resetJob); err != nil && !schema.IsCode(err, schema.ErrCodeNotFound) {
			return err
		}
		a.resetJob = ""
	}
	if cron == "" {
		return nil
	}
	job, err := a.sched.AddJob(scheduler.Job{Name: "reset-all", Cron: cron, Enabled: true})
	if err != nil {
		return fmt.Errorf("reset_schedule: %w", err)
	}
	a.resetJob = job.ID
	a.logger.Info("reset job scheduled", "cron", cron, "next_run_at", job.NextRunAt)
	return nil
}

// handler builds the HTTP API. The metrics route follows withMetrics.
func (a *app) handler(withMetrics bool) (http.Handler, error) {
	deps := api.Deps{
		Service:   a.svc,
		Hub:       a.hub,
		Validator: a.validator,
		Scheduler: a.sched,
		JQ:        a.jq,
		Logger:    a.logger,
	}
	if a.catalog != nil {
		deps.Catalog = a.catalog
	}
	if withMetrics {
		deps.Metrics = a.metrics
	}
	srv, err := api.NewServer(deps)
	if err != nil {
		return nil, err
	}
	return srv.Handler(), nil
}

// Close stops animations and releases the catalog.
func (a *app) Close() {
	if a.pacer != nil {
		a.pacer.Shutdown()
	}
	a.hub.Close()
	if a.catalog != nil {
		if err := a.catalog.Close(); err != nil {
			a.logger.Warn("catalog close failed", "error", err)
		}
	}
}
