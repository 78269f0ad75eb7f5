// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pokerncp/pokerncp/internal/auth"
	authpg "github.com/pokerncp/pokerncp/internal/auth/postgres"
	"github.com/pokerncp/pokerncp/internal/config"
	"github.com/pokerncp/pokerncp/internal/httpapi"
	"github.com/pokerncp/pokerncp/internal/logging"
	"github.com/pokerncp/pokerncp/internal/observability"
	pokedexpg "github.com/pokerncp/pokerncp/internal/pokedex/postgres"
	"github.com/pokerncp/pokerncp/internal/store"
)

const shutdownTimeout = 5 * time.Second

// ServeDeps allows tests to stub out infrastructure dependencies.
// If a field is nil, the real implementation is used.
type ServeDeps struct {
	Connect func(ctx context.Context, databaseURL string) (*pgxpool.Pool, error)
	Migrate func(databaseURL string) error
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. Pending database migrations are
applied on startup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd, nil)
		},
	}

	cmd.Flags().String("listen", "", "HTTP listen address (overrides config)")
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL (overrides config)")
	cmd.Flags().String("frontend-origin", "", "allowed CORS origin pattern (overrides config)")
	cmd.Flags().Bool("production", false, "enable production mode (Secure cookies, hidden reset tokens)")
	cmd.Flags().String("metrics-addr", "", "metrics/health HTTP address (overrides config)")
	cmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().String("log-format", "", "log format (text or json)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.Connect == nil {
		deps.Connect = store.Connect
	}
	if deps.Migrate == nil {
		deps.Migrate = autoMigrate
	}

	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.SetDefault(version, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))

	logger.Info("starting server",
		"listen_addr", cfg.Server.ListenAddr,
		"production_mode", cfg.Server.ProductionMode,
	)

	if err := deps.Migrate(cfg.Database.URL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := deps.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	logger.Info("connected to database")

	codec, err := auth.NewCodec(cfg.CodecConfig())
	if err != nil {
		return fmt.Errorf("failed to build token codec: %w", err)
	}

	users := authpg.NewUserRepository(pool)
	catalog := pokedexpg.NewRepository(pool)
	service := auth.NewService(users, auth.NewArgon2Hasher(), codec)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start the observability server first so readiness reflects the
	// API coming up behind it.
	var obsServer *observability.Server
	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServer(cfg.Metrics.Addr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		metrics = obsServer.Metrics()

		obsErrChan, startErr := obsServer.Start()
		if startErr != nil {
			return fmt.Errorf("failed to start observability server: %w", startErr)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	server, err := httpapi.NewServer(httpapi.Config{
		FrontendOrigin: cfg.Server.FrontendOrigin,
		ProductionMode: cfg.Server.ProductionMode,
	}, service, users, catalog, metrics, logger)
	if err != nil {
		return fmt.Errorf("failed to build HTTP server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if serveErr := server.Listen(cfg.Server.ListenAddr); serveErr != nil {
			errChan <- serveErr
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Server started on " + cfg.Server.ListenAddr)
	logger.Info("server ready", "listen_addr", cfg.Server.ListenAddr)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")

	if err := server.Shutdown(); err != nil {
		logger.Warn("error stopping HTTP server", "error", err)
	}

	if obsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// autoMigrate applies all pending migrations.
func autoMigrate(databaseURL string) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Warn("error closing migrator", "error", closeErr)
		}
	}()
	return migrator.Up()
}

// monitorServerErrors cancels the context when a background server
// reports an error, so a dead metrics endpoint takes the process down
// instead of leaving it half-alive.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
