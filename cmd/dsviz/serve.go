package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rendis/dsviz/internal/logging"
	"github.com/rendis/dsviz/pkg/schema"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP, SSE and WebSocket server",
		Long: `Run the visualizer server. Send SIGHUP to reload the settings file: log
level, pacing, the metrics route and the reset schedule apply live; other
changes are reported and need a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), opts, cfg)
		},
	}
}

func serve(ctx context.Context, opts *rootOpts, cfg Config) error {
	logger, level := newLogger(nil, cfg.LogLevel)

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := a.handler(cfg.Metrics)
	if err != nil {
		return err
	}
	swapper := newHandlerSwapper(h)

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Handler:           swapper,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("dsviz listening", "addr", ln.Addr().String(), "catalog", cfg.Catalog, "pacing", cfg.PacingMode)
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return a.sched.Run(gctx)
	})
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				next, err := opts.config()
				if err != nil {
					logger.Error("reload failed", "error", err)
					continue
				}
				cfg = a.reload(cfg, next, level, swapper)
			}
		}
	})

	err = g.Wait()
	logger.Info("dsviz stopped")
	return err
}

// reload applies what can change at runtime and returns the effective
// configuration.
func (a *app) reload(old, next Config, level *slog.LevelVar, swapper *handlerSwapper) Config {
	d := diffConfigs(old, next)
	if d.empty() {
		a.logger.Info("reload: no changes")
		return old
	}
	applied := old

	if d.LogLevelChanged {
		level.Set(logging.ParseLevel(next.LogLevel))
		applied.LogLevel = next.LogLevel
		a.logger.Info("reload: log level changed", "level", next.LogLevel)
	}
	if d.PacingChanged {
		policies, _, err := next.policies()
		if err != nil {
			a.logger.Error("reload: pacing not applied", "error", err)
		} else {
			for _, ch := range schema.Channels {
				a.pacer.SetPolicy(ch, policies[ch])
			}
			applied.PacingMode, applied.PacingFixed, applied.PacingRule = next.PacingMode, next.PacingFixed, next.PacingRule
			a.logger.Info("reload: pacing changed", "mode", next.PacingMode)
		}
	}
	if d.MetricsChanged {
		h, err := a.handler(next.Metrics)
		if err != nil {
			a.logger.Error("reload: handler rebuild failed", "error", err)
		} else {
			swapper.Swap(h)
			applied.Metrics = next.Metrics
			a.logger.Info("reload: metrics route toggled", "enabled", next.Metrics)
		}
	}
	if d.ScheduleChanged {
		if err := a.setResetSchedule(next.ResetSchedule); err != nil {
			a.logger.Error("reload: reset schedule not applied", "error", err)
		} else {
			applied.ResetSchedule = next.ResetSchedule
		}
	}
	if len(d.RestartNeeded) > 0 {
		a.logger.Warn("reload: restart needed to apply", "fields", d.RestartNeeded)
	}
	return applied
}
