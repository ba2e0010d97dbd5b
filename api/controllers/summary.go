package controllers

import (
	"net/http"

	"github.com/usf-territorio/territorio-backend/api/middleware"
	"github.com/usf-territorio/territorio-backend/api/responses"
	"github.com/usf-territorio/territorio-backend/internal/territory"
	pkgerrors "github.com/usf-territorio/territorio-backend/pkg/errors"
	"github.com/usf-territorio/territorio-backend/pkg/logger"
)

// TeamSummary returns the dashboard metrics of the selected team.
func TeamSummary(svc territory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "territory service unavailable"))
			return
		}

		summary, err := svc.Summary(ctx, middleware.TeamIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
