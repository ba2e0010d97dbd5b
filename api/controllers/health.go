package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/usf-territorio/territorio-backend/api/responses"
	"github.com/usf-territorio/territorio-backend/pkg/config"
	"github.com/usf-territorio/territorio-backend/pkg/db"
	pkgerrors "github.com/usf-territorio/territorio-backend/pkg/errors"
	"github.com/usf-territorio/territorio-backend/pkg/logger"
	"github.com/usf-territorio/territorio-backend/pkg/redis"
)

const envHeader = "X-Territorio-Env"

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, Redis. Either
// dependency may be nil (file-backed store, Redis disabled).
func HealthReady(cfg *config.Config, dbP db.Pinger, redisP redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not ready"))
				return
			}
			checks["database"] = "ok"
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis not ready"))
				return
			}
			checks["redis"] = "ok"
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
