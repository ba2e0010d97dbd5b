package territory

import (
	"context"
	"slices"

	"github.com/usf-territorio/territorio-backend/pkg/db/models"
	pkgerrors "github.com/usf-territorio/territorio-backend/pkg/errors"
	"github.com/usf-territorio/territorio-backend/pkg/types"
)

// Reconcile rederives coverage for every condominium of teamID and rebuilds
// the agents' condominium sets from the assignments, creating agents that are
// referenced but missing. Records already consistent are not written.
func (s *service) Reconcile(ctx context.Context, teamID string) (*ReconcileReport, error) {
	if err := requireTeam(teamID); err != nil {
		return nil, err
	}

	report := &ReconcileReport{TeamID: teamID}
	err := s.transact(ctx, opReconcile, func(tx Tx) error {
		*report = ReconcileReport{TeamID: teamID}

		conds, err := tx.ListCondominiums(ctx, teamID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list condominiums")
		}
		report.Condominiums = len(conds)

		links := map[string]types.IDSet{}
		lastRange := map[string]string{}
		var names []string
		for i := range conds {
			cond := &conds[i]
			if repairCoverage(cond) {
				if err := tx.PutCondominium(ctx, cond); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save condominium")
				}
				report.CoverageRepaired++
			}
			for _, a := range cond.Assignments {
				if _, seen := links[a.AgentName]; !seen {
					names = append(names, a.AgentName)
				}
				links[a.AgentName] = links[a.AgentName].Add(cond.ID)
				lastRange[a.AgentName] = a.BlockRange
			}
		}

		agents, err := tx.ListAgents(ctx, teamID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agents")
		}
		for i := range agents {
			agent := &agents[i]
			want := links[agent.Name]
			delete(links, agent.Name)
			if slices.Equal(agent.CondominiumIDs, want) || (len(agent.CondominiumIDs) == 0 && len(want) == 0) {
				continue
			}
			agent.CondominiumIDs = want.Clone()
			if err := tx.PutAgent(ctx, agent); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save agent")
			}
			report.AgentLinksRepaired++
		}

		for _, name := range names {
			want, missing := links[name]
			if !missing {
				continue
			}
			agent := &models.Agent{
				TeamID:         teamID,
				Name:           name,
				CondominiumIDs: want.Clone(),
				BlockRange:     lastRange[name],
			}
			if err := tx.PutAgent(ctx, agent); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create agent")
			}
			report.AgentsCreated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if report.CoverageRepaired+report.AgentsCreated+report.AgentLinksRepaired > 0 {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"team_id":              teamID,
			"coverage_repaired":    report.CoverageRepaired,
			"agents_created":       report.AgentsCreated,
			"agent_links_repaired": report.AgentLinksRepaired,
		})
		s.logg.Warn(ctx, "territory.reconcile.repaired")
	}
	return report, nil
}

// repairCoverage rederives cond's derived fields and reports whether any changed.
func repairCoverage(cond *models.Condominium) bool {
	before := cond.Clone()
	applyCoverage(cond)

	if before.CoveredBlocks != cond.CoveredBlocks ||
		before.UncoveredBlocks != cond.UncoveredBlocks ||
		before.CoveragePercent != cond.CoveragePercent ||
		before.CoverageStatus != cond.CoverageStatus ||
		!equalStringPtr(before.PrimaryAgentName, cond.PrimaryAgentName) ||
		!equalStringPtr(before.PrimaryBlockRange, cond.PrimaryBlockRange) {
		return true
	}
	for i := range cond.Assignments {
		if before.Assignments[i].Position != cond.Assignments[i].Position {
			return true
		}
	}
	return false
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
