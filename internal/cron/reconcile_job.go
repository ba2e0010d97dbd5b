package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/usf-territorio/territorio-backend/internal/territory"
	"github.com/usf-territorio/territorio-backend/pkg/logger"
)

const reconcileJobName = "territory-reconcile"

type reconciler interface {
	Reconcile(ctx context.Context, teamID string) (*territory.ReconcileReport, error)
}

// ReconcileJobParams configures the coverage reconcile job.
type ReconcileJobParams struct {
	Logger  *logger.Logger
	Service reconciler
	TeamIDs []string
}

// NewReconcileJob builds a job that reconciles every configured team. One
// team failing does not stop the others; the failures are combined.
func NewReconcileJob(params ReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Service == nil {
		return nil, fmt.Errorf("territory service required")
	}
	if len(params.TeamIDs) == 0 {
		return nil, fmt.Errorf("at least one team required")
	}
	teams := make([]string, len(params.TeamIDs))
	copy(teams, params.TeamIDs)
	return &reconcileJob{
		logg:    params.Logger,
		service: params.Service,
		teams:   teams,
	}, nil
}

type reconcileJob struct {
	logg    *logger.Logger
	service reconciler
	teams   []string
}

func (j *reconcileJob) Name() string { return reconcileJobName }

func (j *reconcileJob) Run(ctx context.Context) error {
	var errs error
	repaired := 0
	for _, teamID := range j.teams {
		report, err := j.service.Reconcile(ctx, teamID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reconcile team %s: %w", teamID, err))
			continue
		}
		repaired += report.CoverageRepaired + report.AgentsCreated + report.AgentLinksRepaired
	}
	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"teams":    len(j.teams),
		"repaired": repaired,
		"failed":   len(multierr.Errors(errs)),
	})
	j.logg.Info(reportCtx, "reconcile loop complete")
	return errs
}
