// Package teams exposes the configured team table.
package teams

import (
	"strings"

	"github.com/usf-territorio/territorio-backend/pkg/config"
)

// Team is one health team that owns condominiums and agents.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Registry is the immutable set of teams parsed at startup.
type Registry struct {
	ordered []Team
	byID    map[string]Team
}

// NewRegistry parses cfg once. The result is safe for concurrent use.
func NewRegistry(cfg config.TeamsConfig) (*Registry, error) {
	parsed, err := cfg.Parse()
	if err != nil {
		return nil, err
	}
	r := &Registry{
		ordered: make([]Team, 0, len(parsed)),
		byID:    make(map[string]Team, len(parsed)),
	}
	for _, t := range parsed {
		team := Team{ID: t.ID, Name: t.Name}
		r.ordered = append(r.ordered, team)
		r.byID[team.ID] = team
	}
	return r, nil
}

// Lookup returns the team with the given id.
func (r *Registry) Lookup(id string) (Team, bool) {
	team, ok := r.byID[strings.TrimSpace(id)]
	return team, ok
}

// List returns the teams in configuration order.
func (r *Registry) List() []Team {
	out := make([]Team, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// IDs returns the team ids in configuration order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.ordered))
	for _, t := range r.ordered {
		ids = append(ids, t.ID)
	}
	return ids
}
