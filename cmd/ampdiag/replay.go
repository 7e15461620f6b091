package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/adapters/http/api"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/adapters/sink"
	app "github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/app"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/config"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/scenario"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/telemetry"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/pkg/logger"
)

const (
	serviceName     = "ampdiag"
	shutdownTimeout = 5 * time.Second
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [flags] scenario.yaml...",
		Short: "Replay scenarios and write diagnostic records",
		Long: `Replay builds a simulated player for each scenario file, installs the
diagnostics logger on it and applies the scenario steps in order. Records are
written to stdout; logs and trace spans go to stderr.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runReplay,
	}

	cmd.Flags().String("format", config.FormatJSON, "record format (json|msgpack|pretty)")
	cmd.Flags().String("app-name", "", "application name reported in InstanceCreated")
	cmd.Flags().String("user-agent", "", "user agent reported in InstanceCreated")
	cmd.Flags().String("log-level", "", "log level (debug|info|warn|error)")
	cmd.Flags().String("metrics-addr", "", "serve /healthz, /stats and /replay on this address")
	cmd.Flags().Bool("trace", false, "export delivery spans to stderr")
	cmd.Flags().Duration("hold", 0, "keep the HTTP surface up this long after replaying")
	return cmd
}

// loadConfig layers flags that were set explicitly over config.Load.
func loadConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	strFlags := map[string]*string{
		"format":       &cfg.Format,
		"app-name":     &cfg.AppName,
		"user-agent":   &cfg.UserAgent,
		"log-level":    &cfg.LogLevel,
		"metrics-addr": &cfg.MetricsAddr,
	}
	for name, dst := range strFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
	}
	if flags.Changed("trace") {
		if cfg.Trace, err = flags.GetBool("trace"); err != nil {
			return nil, fmt.Errorf("failed to get trace flag: %w", err)
		}
	}
	if flags.Changed("hold") {
		if cfg.Hold, err = flags.GetDuration("hold"); err != nil {
			return nil, fmt.Errorf("failed to get hold flag: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	// Records own stdout; logs go to stderr.
	if err := logger.InitWithWriter(cmd.ErrOrStderr()); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.Trace {
		shutdown, err := telemetry.InitTracer(serviceName, cmd.ErrOrStderr(), log)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error(ctx, "tracer shutdown failed", logger.Error(err))
			}
		}()
	}

	enc, err := sink.EncoderFor(cfg.Format)
	if err != nil {
		return err
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithAppName(cfg.AppName),
		app.WithUserAgent(cfg.UserAgent),
		app.WithCallback(sink.Writer(cmd.OutOrStdout(), enc, log.Named("sink"))),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	if cfg.MetricsAddr != "" {
		srv := newHTTPServer(cfg.MetricsAddr, api.NewServer(svc, svc).Handler(serviceName))
		go serveHTTP(ctx, srv, log)
		go startSystemMetricsUpdater(ctx)
		defer shutdownHTTP(srv, log)
	}

	var failed int
	for _, path := range args {
		sc, err := scenario.Load(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if _, err := svc.Replay(ctx, sc); err != nil {
			if ctx.Err() != nil {
				return err
			}
			failed++
		}
	}

	if cfg.MetricsAddr != "" && cfg.Hold > 0 {
		log.Info(ctx, "holding HTTP surface", logger.String("addr", cfg.MetricsAddr), logger.String("hold", cfg.Hold.String()))
		select {
		case <-ctx.Done():
		case <-time.After(cfg.Hold):
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d replays failed", failed, len(args))
	}
	return nil
}
