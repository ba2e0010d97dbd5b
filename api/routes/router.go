package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/usf-territorio/territorio-backend/api/controllers"
	"github.com/usf-territorio/territorio-backend/api/middleware"
	"github.com/usf-territorio/territorio-backend/internal/teams"
	"github.com/usf-territorio/territorio-backend/internal/territory"
	"github.com/usf-territorio/territorio-backend/pkg/config"
	"github.com/usf-territorio/territorio-backend/pkg/db"
	"github.com/usf-territorio/territorio-backend/pkg/logger"
	"github.com/usf-territorio/territorio-backend/pkg/redis"
)

// NewRouter wires the HTTP surface. dbP, redisP and idempotencyStore may be
// nil when the matching backend is not configured.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	idempotencyStore redis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	teamRegistry *teams.Registry,
	territoryService territory.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisP, logg))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/teams", controllers.TeamsList(teamRegistry))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Team(teamRegistry, logg))
			idempotent := middleware.Idempotency(idempotencyStore, logg)

			r.Route("/condominiums", func(r chi.Router) {
				r.Get("/", controllers.CondominiumsList(territoryService, logg))
				r.With(idempotent).Post("/", controllers.CondominiumCreate(territoryService, logg))
				r.Get("/{id}", controllers.CondominiumGet(territoryService, logg))
				r.Put("/{id}", controllers.CondominiumUpdate(territoryService, logg))
				r.Delete("/{id}", controllers.CondominiumDelete(territoryService, logg))
				r.With(idempotent).Post("/{id}/agents", controllers.AssignmentAdd(territoryService, logg))
				r.Delete("/{id}/agents/{agentName}", controllers.AssignmentRemove(territoryService, logg))
			})
			r.Get("/agents", controllers.AgentsList(territoryService, logg))
			r.Get("/summary", controllers.TeamSummary(territoryService, logg))
		})
	})

	return r
}
