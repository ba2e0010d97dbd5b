package territory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/usf-territorio/territorio-backend/pkg/db/models"
	"github.com/usf-territorio/territorio-backend/pkg/enums"
	pkgerrors "github.com/usf-territorio/territorio-backend/pkg/errors"
)

func (s *service) Summary(ctx context.Context, teamID string) (*Summary, error) {
	if err := requireTeam(teamID); err != nil {
		return nil, err
	}

	var (
		conds  []models.Condominium
		agents []models.Agent
	)
	err := s.transact(ctx, opSummary, func(tx Tx) error {
		var err error
		if conds, err = tx.ListCondominiums(ctx, teamID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list condominiums")
		}
		if agents, err = tx.ListAgents(ctx, teamID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agents")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := summarize(teamID, conds)
	summary.Agents = len(agents)
	s.metrics.SetTeamCoverage(teamID, summary.MeanCoveragePercent.InexactFloat64())
	return summary, nil
}

// summarize totals the health indicators of conds and averages their
// coverage, rounded to one decimal place. An empty team averages to zero.
func summarize(teamID string, conds []models.Condominium) *Summary {
	summary := &Summary{
		TeamID:              teamID,
		Condominiums:        len(conds),
		MeanCoveragePercent: decimal.Zero,
		ByStatus: map[enums.CoverageStatus]int{
			enums.CoverageStatusUncovered: 0,
			enums.CoverageStatusPartial:   0,
			enums.CoverageStatusComplete:  0,
		},
	}
	if len(conds) == 0 {
		return summary
	}

	total := decimal.Zero
	for _, c := range conds {
		summary.TotalResidents += c.Residents
		summary.TotalHypertensive += c.Hypertensive
		summary.TotalDiabetic += c.Diabetic
		summary.TotalPregnant += c.Pregnant
		summary.ByStatus[enums.CoverageStatusForPercent(c.CoveragePercent)]++
		total = total.Add(decimal.NewFromInt(int64(c.CoveragePercent)))
	}
	summary.MeanCoveragePercent = total.Div(decimal.NewFromInt(int64(len(conds)))).RoundBank(1)
	return summary
}
