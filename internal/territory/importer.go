package territory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/usf-territorio/territorio-backend/pkg/db/models"
	pkgerrors "github.com/usf-territorio/territorio-backend/pkg/errors"
	"github.com/usf-territorio/territorio-backend/pkg/types"
)

// ImportReport counts what ImportRecords wrote.
type ImportReport struct {
	Condominiums  int      `json:"condominiums"`
	AgentsCreated int      `json:"agents_created"`
	AgentsMerged  int      `json:"agents_merged"`
	Teams         []string `json:"teams"`
}

// ImportRecords copies converted legacy records into store in one
// transaction. Condominiums receive fresh ids; agent links are remapped to
// them and agents that already exist in the team are merged. Callers should
// run Reconcile for each reported team afterwards.
func ImportRecords(ctx context.Context, store RecordStore, conds []models.Condominium, agents []models.Agent) (*ImportReport, error) {
	if store == nil {
		return nil, fmt.Errorf("record store required")
	}

	report := &ImportReport{}
	err := store.Transact(ctx, func(tx Tx) error {
		*report = ImportReport{}
		teams := map[string]struct{}{}
		idMap := make(map[uint]uint, len(conds))

		for i := range conds {
			cond := conds[i].Clone()
			legacyID := cond.ID
			cond.ID = 0
			applyCoverage(cond)
			if err := tx.PutCondominium(ctx, cond); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "import condominium").
					WithDetails(map[string]any{"legacy_id": legacyID})
			}
			idMap[legacyID] = cond.ID
			teams[cond.TeamID] = struct{}{}
			report.Condominiums++
		}

		for i := range agents {
			in := agents[i]
			var links types.IDSet
			for _, legacyID := range in.CondominiumIDs {
				if id, ok := idMap[legacyID]; ok {
					links = links.Add(id)
				}
			}

			existing, err := tx.GetAgent(ctx, in.TeamID, in.Name)
			switch {
			case errors.Is(err, ErrRecordNotFound):
				agent := &models.Agent{
					TeamID:         in.TeamID,
					Name:           in.Name,
					CondominiumIDs: links,
					BlockRange:     in.BlockRange,
				}
				if agent.CondominiumIDs == nil {
					agent.CondominiumIDs = types.IDSet{}
				}
				if err := tx.PutAgent(ctx, agent); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "import agent")
				}
				report.AgentsCreated++
			case err != nil:
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
			default:
				for _, id := range links {
					existing.CondominiumIDs = existing.CondominiumIDs.Add(id)
				}
				if in.BlockRange != "" {
					existing.BlockRange = in.BlockRange
				}
				if err := tx.PutAgent(ctx, existing); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge agent")
				}
				report.AgentsMerged++
			}
			teams[in.TeamID] = struct{}{}
		}

		for team := range teams {
			report.Teams = append(report.Teams, team)
		}
		sort.Strings(report.Teams)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
