package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/studyplanner/core/internal/adapters/repository"
	"github.com/studyplanner/core/internal/domain/entities"
	"github.com/studyplanner/core/internal/infrastructure/backup"
	"github.com/studyplanner/core/internal/infrastructure/config"
	"github.com/studyplanner/core/internal/infrastructure/logger"
	"github.com/studyplanner/core/internal/infrastructure/metrics"
	"github.com/studyplanner/core/internal/infrastructure/server"
	"github.com/studyplanner/core/internal/ports"
)

// Set at build time with -ldflags "-X github.com/studyplanner/core/cmd/api/commands.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Study Planner web server",
		Long:  "Start the web server with the calendar page, the schedule API and the optional backup job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Study Planner version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Study Planner %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", GitCommit)
		},
	}
}

// bootstrap loads configuration and builds the logger shared by every command
func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, appLogger, nil
}

func runServer(ctx context.Context) error {
	cfg, appLogger, err := bootstrap()
	if err != nil {
		return err
	}
	defer appLogger.Close()

	if _, err := maxprocs.Set(maxprocs.Logger(appLogger.Infof)); err != nil {
		appLogger.Warnw("Failed to set GOMAXPROCS", "error", err)
	}

	var (
		m        *metrics.Metrics
		observer ports.StoreObserver = ports.NopObserver{}
	)
	if cfg.Metrics.Enabled {
		m = metrics.New()
		observer = m
	}

	store, err := repository.NewStore(cfg, appLogger, observer)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Store.Seed {
		if err := seedStore(ctx, cfg, store, appLogger); err != nil {
			return err
		}
	}

	if cfg.Backup.Enabled {
		backups, err := backup.New(store, cfg.Backup, appLogger)
		if err != nil {
			return err
		}
		backups.Start()
		defer backups.Stop()
	}

	srv, err := server.New(cfg, store, appLogger, m)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Infow("Starting Study Planner",
		"address", cfg.Server.GetAddr(),
		"environment", cfg.App.Environment,
		"store", cfg.Store.Driver,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// seedStore writes the configured subjects into a store that has no document yet
func seedStore(ctx context.Context, cfg *config.Config, store ports.DocumentStore, appLogger *logger.Logger) error {
	colors, err := config.ParseSeedSubjects(cfg.Store.SeedSubjects)
	if err != nil {
		return err
	}

	subjects := make(map[string]entities.Subject, len(colors))
	for name, color := range colors {
		subjects[name] = entities.Subject{Color: color}
	}

	created, err := store.Seed(ctx, subjects)
	if err != nil {
		return fmt.Errorf("failed to seed schedule: %w", err)
	}
	if created {
		appLogger.Infow("Created schedule document", "subjects", len(subjects))
	}
	return nil
}
