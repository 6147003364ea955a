package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/timvw/tmux-runner/internal/config"
	"github.com/timvw/tmux-runner/internal/logging"
	"github.com/timvw/tmux-runner/internal/mux"
	telem "github.com/timvw/tmux-runner/internal/otel"
	"github.com/timvw/tmux-runner/internal/query"
	"github.com/timvw/tmux-runner/internal/runner"
	"github.com/timvw/tmux-runner/internal/spawn"
)

var (
	// Global flags.
	flagConfig    string
	flagMux       string
	flagProgram   string
	flagNoTrigger bool
	flagLogFile   string
	flagLogLevel  string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "tmux-runner",
	Short: "Launcher for tmux sessions and tmuxinator projects",
	Long: `tmux-runner turns a short query into a terminal window attached to a
tmux session.

"tmux work" attaches to (or creates) the session "work", "tmux api ~/src/api -t"
creates "api" in ~/src/api inside terminator, and "tmux inator blog" starts the
tmuxinator project "blog".

The query grammar, flags and terminal programs are configured in
~/.config/tmux-runner/config.yaml. See "tmux-runner config" for the
effective values.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", envOrDefault("TMUX_RUNNER_CONFIG", ""), "config file (default: .tmux-runner.yaml or ~/.config/tmux-runner/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagMux, "mux", envOrDefault("TMUX_RUNNER_MUX", ""), "terminal multiplexer: tmux (default: auto-detect)")
	rootCmd.PersistentFlags().StringVar(&flagProgram, "program", "", "override the default terminal program")
	rootCmd.PersistentFlags().BoolVar(&flagNoTrigger, "no-trigger", false, "treat the query as already stripped of the trigger keyword")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "debug logging")
}

// app holds everything a subcommand needs, built once per invocation.
type app struct {
	cfg    *config.Config
	home   string
	store  *config.Store
	logger *zap.Logger
	tel    *telem.Telemetry
	runner *runner.Runner
}

// newApp loads configuration and wires the runner: defaults -> config file
// -> env vars -> flags.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if flagProgram != "" {
		cfg.Program = flagProgram
	}
	if flagLogFile != "" {
		cfg.LogFile = flagLogFile
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Verbose: flagVerbose,
		File:    cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	if cfg.ConfigFile != "" {
		logger.Debug("config loaded", zap.String("path", cfg.ConfigFile))
	}

	// Wire build version into OTEL service metadata
	telem.Version = Version

	// Initialize OTEL (no-op if no endpoint configured)
	tel, err := telem.Init(ctx, telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		logger.Warn("otel init failed", zap.Error(err))
	}

	var metrics *telem.Metrics
	if tel != nil {
		metrics = tel.Metrics
	}

	var tracer trace.Tracer
	if tel != nil {
		tracer = tel.Tracer
	}

	// Terminals open in the home directory unless a path says otherwise.
	spawner := spawn.NewDetached(logger)
	spawner.Dir = home

	store := config.NewStore(cfg.Snapshot(home))
	r := &runner.Runner{
		Config:    store,
		Spawner:   spawner,
		Cache:     runner.NewProjectCache(cfg.ProjectCacheTTLDuration),
		Metrics:   metrics,
		Tracer:    tracer,
		Logger:    logger,
		Timeout:   cfg.SessionTimeoutDuration,
		SessionID: uuid.NewString(),
	}

	// Without tmux there is nothing to attach to, but new sessions and
	// projects can still be offered. An explicit --mux must work.
	m, err := getMultiplexer()
	switch {
	case err == nil:
		r.Sessions = m
	case flagMux != "":
		_ = tel.Shutdown(ctx)
		return nil, err
	default:
		logger.Warn("no terminal multiplexer detected", zap.Error(err))
	}

	return &app{
		cfg:    cfg,
		home:   home,
		store:  store,
		logger: logger,
		tel:    tel,
		runner: r,
	}, nil
}

// Close flushes telemetry and logs.
func (a *app) Close(ctx context.Context) {
	if err := a.tel.Shutdown(ctx); err != nil {
		a.logger.Warn("otel shutdown failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// term joins the positional arguments into a query and removes the trigger
// keyword unless --no-trigger is set. ok is false when the query does not
// start with the trigger.
func (a *app) term(args []string) (string, bool) {
	q := strings.Join(args, " ")
	if flagNoTrigger {
		return q, true
	}
	return query.StripTrigger(q, a.store.Load().Trigger)
}

// getMultiplexer returns the configured or auto-detected multiplexer.
func getMultiplexer() (mux.Multiplexer, error) {
	if flagMux != "" {
		return mux.FromName(flagMux)
	}
	return mux.Detect()
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
