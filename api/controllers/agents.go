package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/usf-territorio/territorio-backend/api/middleware"
	"github.com/usf-territorio/territorio-backend/api/responses"
	"github.com/usf-territorio/territorio-backend/api/validators"
	"github.com/usf-territorio/territorio-backend/internal/territory"
	pkgerrors "github.com/usf-territorio/territorio-backend/pkg/errors"
	"github.com/usf-territorio/territorio-backend/pkg/logger"
)

type addAssignmentRequest struct {
	AgentName  string `json:"agent_name" validate:"required"`
	BlockRange string `json:"block_range" validate:"required"`
	StartDate  string `json:"start_date"`
}

// AssignmentAdd assigns an agent to a block range of a condominium.
func AssignmentAdd(svc territory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "territory service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var req addAssignmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		startDate, err := validators.ParseDate("start_date", req.StartDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.AddAssignment(ctx, middleware.TeamIDFromContext(ctx), id, territory.AddAssignmentInput{
			AgentName:  req.AgentName,
			BlockRange: req.BlockRange,
			StartDate:  derefTime(startDate),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AssignmentRemove drops every assignment of the named agent.
func AssignmentRemove(svc territory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "territory service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		agentName, err := url.PathUnescape(chi.URLParam(r, "agentName"))
		if err != nil || strings.TrimSpace(agentName) == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "agent name is required").
				WithDetails(map[string]any{"field": "agentName"}))
			return
		}

		result, err := svc.RemoveAssignment(ctx, middleware.TeamIDFromContext(ctx), id, agentName)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AgentsList(svc territory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "territory service unavailable"))
			return
		}

		agents, err := svc.ListAgents(ctx, middleware.TeamIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"agents": agents})
	}
}
