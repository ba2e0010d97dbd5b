package middleware

import (
	"net/http"
	"strings"

	"github.com/usf-territorio/territorio-backend/api/responses"
	"github.com/usf-territorio/territorio-backend/internal/teams"
	pkgerrors "github.com/usf-territorio/territorio-backend/pkg/errors"
	"github.com/usf-territorio/territorio-backend/pkg/logger"
)

// TeamHeader selects the team a request acts on.
const TeamHeader = "X-Team-ID"

type teamLookup interface {
	Lookup(id string) (teams.Team, bool)
}

// Team requires a known team in the X-Team-ID header and places it on the
// request context.
func Team(registry teamLookup, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			teamID := strings.TrimSpace(r.Header.Get(TeamHeader))
			if teamID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "team not selected"))
				return
			}
			team, ok := registry.Lookup(teamID)
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "unknown team").
					WithDetails(map[string]any{"team_id": teamID}))
				return
			}

			ctx := WithTeamID(r.Context(), team.ID)
			if logg != nil {
				ctx = logg.WithTeamID(ctx, team.ID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
