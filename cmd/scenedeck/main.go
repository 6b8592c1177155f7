// Command scenedeck extracts scene prompts from assistant output and hands
// them to an image or video generation tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrWong99/scenedeck/internal/app"
	"github.com/MrWong99/scenedeck/internal/config"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&cli{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "scenedeck: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// cli carries global flag values and the state built from them in
// PersistentPreRunE.
type cli struct {
	configPath string
	logLevel   string

	// appOpts are appended to every app.New call. Tests inject mock
	// clipboard and opener implementations here.
	appOpts []app.Option

	cfg    *config.Config
	logger *slog.Logger
	level  *slog.LevelVar
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "scenedeck",
		Short: "Turn assistant output into a deck of scene prompts",
		Long: `scenedeck reads text produced by an AI assistant (JSON fragments, headered
prose, or plain paragraphs), extracts an ordered list of scene prompts and
launches them one at a time in an external generation tool.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a YAML configuration file (optional)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override server.log_level (debug, info, warn, error)")

	root.AddCommand(
		newExtractCmd(c),
		newLaunchCmd(c),
		newServeCmd(c),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (c *cli) setup(stderr io.Writer) error {
	cfg := config.Default()
	if c.configPath != "" {
		loaded, err := config.Load(c.configPath)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %q not found", c.configPath)
		}
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := c.overrideLogLevel(cfg); err != nil {
		return err
	}

	c.cfg = cfg
	c.level = new(slog.LevelVar)
	c.level.Set(cfg.Server.LogLevel.SlogLevel())
	c.logger = newLogger(stderr, c.level)
	slog.SetDefault(c.logger)
	return nil
}

// overrideLogLevel applies --log-level to cfg. It runs again on every reload
// so the flag keeps precedence over the file.
func (c *cli) overrideLogLevel(cfg *config.Config) error {
	if c.logLevel == "" {
		return nil
	}
	lvl := config.LogLevel(c.logLevel)
	if !lvl.IsValid() {
		return fmt.Errorf("invalid --log-level %q (want debug, info, warn or error)", c.logLevel)
	}
	cfg.Server.LogLevel = lvl
	return nil
}

// newApp builds an App from the loaded configuration.
func (c *cli) newApp(opts ...app.Option) (*app.App, error) {
	all := append([]app.Option{
		app.WithLogger(c.logger),
		app.WithLevelVar(c.level),
	}, opts...)
	all = append(all, c.appOpts...)
	return app.New(c.cfg, all...)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scenedeck %s\n", version)
		},
	}
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(w io.Writer, level *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
