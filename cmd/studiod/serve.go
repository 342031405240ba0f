package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"studio/internal/api"
	"studio/internal/bootstrap"
	"studio/internal/config"
	"studio/internal/manifest"
	"studio/internal/orchestrator"
	"studio/internal/retry"
	"studio/internal/services"
	"studio/internal/storage"
)

func newServeCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Bootstrap the master and its factories and serve the query API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if manifestPath != "" {
				cfg.ManifestPath = manifestPath
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "bootstrap manifest (overrides MANIFEST_PATH)")
	return cmd
}

func serve(parent context.Context, cfg *config.Config) error {
	fmt.Println("🌟 Starting studio...")
	setupLogger(cfg.LogLevel)

	slog.Info("Configuration loaded",
		"network", cfg.NetworkPassphrase,
		"admin", cfg.AdminAddress,
		"api_port", cfg.APIPort,
		"manifest", cfg.ManifestPath,
		"log_level", cfg.LogLevel,
	)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repository, err := openRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer repository.Close()

	orch := orchestrator.New([]services.Service{
		services.NewMetricsService(),
		services.NewPersistenceService(repository, retry.NewStrategy(cfg.Retry)),
	}, orchestrator.WithQueue(cfg.EventQueueSize))
	go orch.Run(context.Background())
	defer orch.Close()
	slog.Info("Orchestrator enabled", "services", len(orch.Services()))

	studio, err := bootstrap.New(bootstrap.Options{
		NetworkPassphrase: cfg.NetworkPassphrase,
		Admin:             cfg.Admin(),
		Publisher:         orch,
	})
	if err != nil {
		return fmt.Errorf("failed to bootstrap studio: %w", err)
	}

	if cfg.ManifestPath != "" {
		m, err := manifest.Load(cfg.ManifestPath)
		if err != nil {
			return err
		}
		if err := studio.Apply(ctx, m); err != nil {
			return fmt.Errorf("failed to apply manifest: %w", err)
		}
		slog.Info("✅ Manifest applied",
			"code", len(m.Code),
			"factories", len(m.Factories),
			"deployments", len(m.Deployments),
		)
	}

	server := api.NewServer(cfg.APIPort, studio, repository)
	if err := server.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	slog.Warn("Interrupt received, shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error stopping API server", "error", err)
	}

	slog.Info("Studio stopped")
	return nil
}

func openRepository(ctx context.Context, databaseURL string) (storage.Repository, error) {
	if databaseURL == "" {
		slog.Info("DATABASE_URL not set, mirroring events in memory")
		return storage.NewMemoryRepository(), nil
	}

	repo, err := storage.NewPostgresRepository(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := repo.Migrate(ctx); err != nil {
		repo.Close()
		return nil, err
	}
	slog.Info("Database connected successfully")
	return repo, nil
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}
