package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-console/internal/app"
	"github.com/spec-kit/staff-console/internal/config"
	"github.com/spec-kit/staff-console/internal/observability"
	"github.com/spec-kit/staff-console/internal/persistence"
	"github.com/spec-kit/staff-console/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore := openSessionStore(ctx, cfg, logger)
	defer closeStore()

	console := app.New(cfg, logger, store)
	go console.Janitor.Run(ctx)

	go func() {
		logger.Info("console listening", zap.String("addr", cfg.App.Addr()), zap.String("upstream", cfg.API.BaseURL))
		if err := console.Fiber.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = console.Fiber.Shutdown()
}

func openSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.SessionRepository, func()) {
	switch cfg.Session.Store {
	case config.StoreRedis:
		client := persistence.NewRedis(ctx, cfg.Redis, logger)
		return repository.NewRedisSessionRepository(client, cfg.Session.KeyPrefix), func() { _ = client.Close() }
	case config.StorePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		return repository.NewPostgresSessionRepository(pg.Pool), pg.Close
	default:
		logger.Info("using in-memory session store")
		return repository.NewMemorySessionRepository(), func() {}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
