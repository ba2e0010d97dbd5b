package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/usf-territorio/territorio-backend/api/routes"
	"github.com/usf-territorio/territorio-backend/internal/teams"
	"github.com/usf-territorio/territorio-backend/internal/territory"
	"github.com/usf-territorio/territorio-backend/pkg/config"
	"github.com/usf-territorio/territorio-backend/pkg/db"
	"github.com/usf-territorio/territorio-backend/pkg/instance"
	"github.com/usf-territorio/territorio-backend/pkg/logger"
	"github.com/usf-territorio/territorio-backend/pkg/metrics"
	"github.com/usf-territorio/territorio-backend/pkg/migrate"
	"github.com/usf-territorio/territorio-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	teamRegistry, err := teams.NewRegistry(cfg.Teams)
	if err != nil {
		logg.Error(context.Background(), "failed to parse team table", err)
		os.Exit(1)
	}

	var (
		store  territory.RecordStore
		dbPing db.Pinger
	)
	if cfg.Legacy.FileStore {
		fileStore, err := territory.OpenFileStore(context.Background(), cfg.Legacy.DataPath, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to open legacy document", err)
			os.Exit(1)
		}
		store = fileStore
		logg.Info(logg.WithField(context.Background(), "path", fileStore.Path()), "serving records from legacy document")
	} else {
		dbClient, err := db.New(context.Background(), cfg.DB, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()

		if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
			logg.Error(context.Background(), "failed to run dev migrations", err)
			os.Exit(1)
		}
		store = territory.NewRepository(dbClient)
		dbPing = dbClient
	}

	var (
		redisPing        redis.Pinger
		idempotencyStore redis.IdempotencyStore
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		redisPing = redisClient
		if cfg.FeatureFlags.Idempotency {
			idempotencyStore = redisClient
		}
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency keys disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	territoryService, err := territory.NewService(store, logg, metrics.NewEngineMetrics(registry))
	if err != nil {
		logg.Error(context.Background(), "failed to create territory service", err)
		os.Exit(1)
	}

	if cfg.Legacy.FileStore {
		// No cron worker shares the document, so repair it once here.
		for _, teamID := range teamRegistry.IDs() {
			if _, err := territoryService.Reconcile(context.Background(), teamID); err != nil {
				logg.Warn(logg.WithTeamID(context.Background(), teamID), "startup reconcile failed: "+err.Error())
			}
		}
	}

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":         cfg.App.Env,
		"addr":        addr,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.ID(),
		"teams":       teamRegistry.IDs(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbPing, redisPing, idempotencyStore, registry, teamRegistry, territoryService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shutting down gracefully")
	}
}
