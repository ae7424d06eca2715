package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/lure/internal/api"
	"github.com/MikeSquared-Agency/lure/internal/config"
	"github.com/MikeSquared-Agency/lure/internal/dialogue"
	"github.com/MikeSquared-Agency/lure/internal/hermes"
	"github.com/MikeSquared-Agency/lure/internal/intel"
	"github.com/MikeSquared-Agency/lure/internal/processor"
	"github.com/MikeSquared-Agency/lure/internal/report"
	"github.com/MikeSquared-Agency/lure/internal/session"
	"github.com/MikeSquared-Agency/lure/internal/slack"
	"github.com/MikeSquared-Agency/lure/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the honeypot HTTP and NATS endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if servePort > 0 {
			cfg.Port = servePort
		}
		return serve(cfg)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (overrides LURE_PORT)")
}

func serve(cfg config.Config) error {
	setupLogging(cfg.LogLevel)
	logger := slog.Default()

	logger.Info("lure starting", "port", cfg.Port, "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ext, err := intel.NewExtractor(cfg.ExtractCache)
	if err != nil {
		return fmt.Errorf("extractor: %w", err)
	}

	// Database (optional: without it sessions live in memory only)
	var snap session.Snapshotter
	var db *store.Store
	if cfg.DatabaseURL != "" {
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		snap = db
		logger.Info("database connected")
	} else {
		logger.Warn("DATABASE_URL not set, sessions will not survive restarts")
	}

	var notifiers report.Notifiers
	var events hermes.Publisher

	// NATS/Hermes (optional)
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, logger)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer hermesClient.Close()
		events = hermesClient
		notifiers = append(notifiers, hermes.NewNotifier(hermesClient, logger))
		logger.Info("NATS connected", "url", cfg.NatsURL)
	}

	// Slack alerts (optional)
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		notifiers = append(notifiers, slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, logger))
		logger.Info("slack alerts ready", "channel", cfg.SlackChannel)
	}

	var notifier report.Notifier
	if len(notifiers) > 0 {
		notifier = notifiers
	}

	if cfg.CallbackURL == "" {
		logger.Warn("CALLBACK_URL not set, every report attempt will fail")
	}
	rep := report.NewReporter(report.NewClient(cfg.CallbackURL, cfg.CallbackTimeout), notifier, logger)

	reg := session.NewRegistry(snap, logger)
	go reg.Run(ctx, cfg.SweepInterval, cfg.SessionTTL)
	if db != nil {
		go purgeSnapshots(ctx, db, cfg.SweepInterval, cfg.SessionTTL, logger)
	}

	proc := processor.New(reg, ext, dialogue.New(dialogue.DefaultOptions()), rep, events, logger)

	if hermesClient != nil {
		if err := hermesClient.Serve(hermes.SubjectTurn, hermes.QueueGroup, proc.HandleTurnRequest); err != nil {
			return err
		}
	}

	opts := api.Options{
		Port:        cfg.Port,
		APIKey:      cfg.APIKey,
		Debug:       cfg.Debug(),
		CallbackURL: cfg.CallbackURL,
	}
	if db != nil {
		opts.Stored = db
	}
	if hermesClient != nil {
		opts.Bus = hermesClient
	}
	srv := api.NewServer(opts, proc, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("lure ready", "port", cfg.Port)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	logger.Info("lure stopped")
	return nil
}

// purgeSnapshots drops stored sessions idle for longer than ttl.
func purgeSnapshots(ctx context.Context, db *store.Store, interval, ttl time.Duration, logger *slog.Logger) {
	if interval <= 0 || ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := db.PurgeSessions(ctx, now.Add(-ttl))
			if err != nil {
				logger.Warn("snapshot purge failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("purged idle snapshots", "count", n)
			}
		}
	}
}
