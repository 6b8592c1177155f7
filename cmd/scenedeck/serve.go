package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/scenedeck/internal/app"
	"github.com/MrWong99/scenedeck/internal/config"
	"github.com/MrWong99/scenedeck/internal/observe"
	"github.com/MrWong99/scenedeck/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	var (
		addr         string
		pollInterval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP companion",
		Long: `Serve the drop page, the JSON API and the websocket feed on the configured
address. When --config is given the file is polled and hot-reloadable
settings (log level, thresholds, suffix, target URL, dedupe) apply live.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				c.cfg.Server.ListenAddr = addr
			}
			return c.serve(cmd.Context(), cmd.OutOrStdout(), pollInterval)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "override server.listen_addr")
	cmd.Flags().DurationVar(&pollInterval, "poll", 5*time.Second, "config file poll interval")
	return cmd
}

func (c *cli) serve(ctx context.Context, out io.Writer, pollInterval time.Duration) error {
	// ── Telemetry ─────────────────────────────────────────────────────────────
	provider, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			c.logger.Warn("telemetry shutdown error", "err", err)
		}
	}()

	metrics, err := observe.NewMetrics(provider.MeterProvider())
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	// ── Config watcher (optional) ─────────────────────────────────────────────
	var (
		application *app.App
		watcher     *config.Watcher
	)
	if c.configPath != "" {
		watcher, err = config.NewWatcher(c.configPath, func(old, next *config.Config) {
			if err := c.overrideLogLevel(next); err != nil {
				c.logger.Warn("reloaded config ignored", "err", err)
				return
			}
			if old != nil && next.Server.ListenAddr != old.Server.ListenAddr {
				c.logger.Warn("server.listen_addr changes take effect after restart")
			}
			application.ApplyConfig(old, next)
		},
			config.WithInterval(pollInterval),
			config.WithWatcherLogger(c.logger),
		)
		if err != nil {
			return err
		}
	}

	// ── Application ───────────────────────────────────────────────────────────
	application, err = c.newApp(app.WithMetrics(metrics))
	if err != nil {
		return fmt.Errorf("init application: %w", err)
	}

	srv := server.New(application,
		server.WithMetrics(metrics),
		server.WithMetricsHandler(provider.Handler()),
		server.WithLogger(c.logger),
	)

	printStartupSummary(out, c.cfg, c.configPath)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, c.cfg.Server.ListenAddr)
	})
	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}

	err = g.Wait()
	c.logger.Info("goodbye")
	return err
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(w io.Writer, cfg *config.Config, configPath string) {
	if configPath == "" {
		configPath = "(defaults)"
	}
	suffix := cfg.Launch.Suffix
	if suffix == "" {
		suffix = "(none)"
	}
	dedupe := "(off)"
	if cfg.Collection.DedupeThreshold > 0 {
		dedupe = fmt.Sprintf("%.2f", cfg.Collection.DedupeThreshold)
	}

	fmt.Fprintln(w, "╔═══════════════════════════════════════╗")
	fmt.Fprintln(w, "║       SceneDeck — startup summary     ║")
	fmt.Fprintln(w, "╠═══════════════════════════════════════╣")
	printRow(w, "Config", configPath)
	printRow(w, "Listen addr", cfg.Server.ListenAddr)
	printRow(w, "Log level", string(cfg.Server.LogLevel))
	printRow(w, "Target URL", cfg.Launch.TargetURL)
	printRow(w, "Suffix", suffix)
	printRow(w, "Dedupe", dedupe)
	printRow(w, "Max file", fmt.Sprintf("%d KiB", cfg.Ingest.MaxFileBytes>>10))
	fmt.Fprintln(w, "╚═══════════════════════════════════════╝")
}

func printRow(w io.Writer, key, value string) {
	if r := []rune(value); len(r) > 19 {
		value = string(r[:18]) + "…"
	}
	fmt.Fprintf(w, "║  %-12s    : %-19s ║\n", key, value)
}
