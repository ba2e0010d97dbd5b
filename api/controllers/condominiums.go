package controllers

import (
	"net/http"
	"time"

	"github.com/usf-territorio/territorio-backend/api/middleware"
	"github.com/usf-territorio/territorio-backend/api/responses"
	"github.com/usf-territorio/territorio-backend/api/validators"
	"github.com/usf-territorio/territorio-backend/internal/territory"
	"github.com/usf-territorio/territorio-backend/pkg/enums"
	pkgerrors "github.com/usf-territorio/territorio-backend/pkg/errors"
	"github.com/usf-territorio/territorio-backend/pkg/logger"
)

type createCondominiumRequest struct {
	Name         string `json:"name" validate:"required"`
	BlockCount   int    `json:"block_count" validate:"min=1,max=2147483647"`
	Apartments   int    `json:"apartments" validate:"gte=0"`
	Residents    int    `json:"residents" validate:"gte=0"`
	Hypertensive int    `json:"hypertensive" validate:"gte=0"`
	Diabetic     int    `json:"diabetic" validate:"gte=0"`
	Pregnant     int    `json:"pregnant" validate:"gte=0"`
	Priority     string `json:"priority" validate:"omitempty,oneof=alta media baixa"`
	LastVisit    string `json:"last_visit"`
	AgentName    string `json:"agent_name"`
	BlockRange   string `json:"block_range" validate:"required_with=AgentName"`
	StartDate    string `json:"start_date"`
}

type updateCondominiumRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=1"`
	BlockCount        *int    `json:"block_count" validate:"omitempty,min=1,max=2147483647"`
	Apartments        *int    `json:"apartments" validate:"omitempty,gte=0"`
	Residents         *int    `json:"residents" validate:"omitempty,gte=0"`
	Hypertensive      *int    `json:"hypertensive" validate:"omitempty,gte=0"`
	Diabetic          *int    `json:"diabetic" validate:"omitempty,gte=0"`
	Pregnant          *int    `json:"pregnant" validate:"omitempty,gte=0"`
	Priority          *string `json:"priority" validate:"omitempty,oneof=alta media baixa"`
	LastVisit         *string `json:"last_visit"`
	PrimaryAgentName  *string `json:"primary_agent_name"`
	PrimaryBlockRange *string `json:"primary_block_range"`
}

// CondominiumsList returns every condominium of the selected team.
func CondominiumsList(svc territory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "territory service unavailable"))
			return
		}

		list, err := svc.ListCondominiums(ctx, middleware.TeamIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"condominiums": list})
	}
}

// CondominiumCreate creates a condominium with an optional first agent.
func CondominiumCreate(svc territory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "territory service unavailable"))
			return
		}

		var req createCondominiumRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		lastVisit, err := validators.ParseDate("last_visit", req.LastVisit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		startDate, err := validators.ParseDate("start_date", req.StartDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.CreateCondominium(ctx, middleware.TeamIDFromContext(ctx), territory.CreateCondominiumInput{
			Name:         req.Name,
			BlockCount:   req.BlockCount,
			Apartments:   req.Apartments,
			Residents:    req.Residents,
			Hypertensive: req.Hypertensive,
			Diabetic:     req.Diabetic,
			Pregnant:     req.Pregnant,
			Priority:     enums.Priority(req.Priority),
			LastVisit:    lastVisit,
			AgentName:    req.AgentName,
			BlockRange:   req.BlockRange,
			StartDate:    derefTime(startDate),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func CondominiumGet(svc territory.Service, logg *logger.Logger) http.HandlerFunc {
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
		cond, err := svc.GetCondominium(ctx, middleware.TeamIDFromContext(ctx), id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cond)
	}
}

// CondominiumUpdate applies a partial update. Coverage fields are not
// accepted; they are always derived from the assignments.
func CondominiumUpdate(svc territory.Service, logg *logger.Logger) http.HandlerFunc {
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
		var req updateCondominiumRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := territory.UpdateCondominiumInput{
			Name:              req.Name,
			BlockCount:        req.BlockCount,
			Apartments:        req.Apartments,
			Residents:         req.Residents,
			Hypertensive:      req.Hypertensive,
			Diabetic:          req.Diabetic,
			Pregnant:          req.Pregnant,
			PrimaryAgentName:  req.PrimaryAgentName,
			PrimaryBlockRange: req.PrimaryBlockRange,
		}
		if req.Priority != nil {
			p := enums.Priority(*req.Priority)
			input.Priority = &p
		}
		if req.LastVisit != nil {
			input.LastVisit, err = validators.ParseDate("last_visit", *req.LastVisit)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		result, err := svc.UpdateCondominium(ctx, middleware.TeamIDFromContext(ctx), id, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CondominiumDelete(svc territory.Service, logg *logger.Logger) http.HandlerFunc {
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
		if err := svc.DeleteCondominium(ctx, middleware.TeamIDFromContext(ctx), id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
