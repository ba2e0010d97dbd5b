package controllers

import (
	"net/http"

	"github.com/usf-territorio/territorio-backend/api/responses"
	"github.com/usf-territorio/territorio-backend/internal/teams"
)

type teamLister interface {
	List() []teams.Team
}

// TeamsList returns the configured team table.
func TeamsList(registry teamLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"teams": registry.List()})
	}
}
