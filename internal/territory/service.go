package territory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/usf-territorio/territorio-backend/internal/coverage"
	"github.com/usf-territorio/territorio-backend/pkg/db/models"
	"github.com/usf-territorio/territorio-backend/pkg/enums"
	pkgerrors "github.com/usf-territorio/territorio-backend/pkg/errors"
	"github.com/usf-territorio/territorio-backend/pkg/logger"
	"github.com/usf-territorio/territorio-backend/pkg/metrics"
	"github.com/usf-territorio/territorio-backend/pkg/types"
)

const (
	opCreateCondominium = "create_condominium"
	opGetCondominium    = "get_condominium"
	opListCondominiums  = "list_condominiums"
	opUpdateCondominium = "update_condominium"
	opDeleteCondominium = "delete_condominium"
	opAddAssignment     = "add_assignment"
	opRemoveAssignment  = "remove_assignment"
	opReplaceAgent      = "replace_agent"
	opListAgents        = "list_agents"
	opSummary           = "summary"
	opReconcile         = "reconcile"
)

// Service keeps condominium coverage and the agent roster consistent. Every
// method runs as exactly one RecordStore transaction scoped to teamID.
type Service interface {
	CreateCondominium(ctx context.Context, teamID string, input CreateCondominiumInput) (*Result, error)
	GetCondominium(ctx context.Context, teamID string, id uint) (*CondominiumDTO, error)
	ListCondominiums(ctx context.Context, teamID string) ([]CondominiumDTO, error)
	UpdateCondominium(ctx context.Context, teamID string, id uint, input UpdateCondominiumInput) (*Result, error)
	DeleteCondominium(ctx context.Context, teamID string, id uint) error

	AddAssignment(ctx context.Context, teamID string, condominiumID uint, input AddAssignmentInput) (*Result, error)
	RemoveAssignment(ctx context.Context, teamID string, condominiumID uint, agentName string) (*Result, error)
	ReplaceAgentOnCondominium(ctx context.Context, teamID string, condominiumID uint, agentName, blockRange string) (*Result, error)

	ListAgents(ctx context.Context, teamID string) ([]AgentDTO, error)
	Summary(ctx context.Context, teamID string) (*Summary, error)
	Reconcile(ctx context.Context, teamID string) (*ReconcileReport, error)
}

type service struct {
	store   RecordStore
	logg    *logger.Logger
	metrics *metrics.EngineMetrics
	now     func() time.Time
}

// NewService builds the engine on top of a record store. logg and m may be nil.
func NewService(store RecordStore, logg *logger.Logger, m *metrics.EngineMetrics) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("record store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		store:   store,
		logg:    logg,
		metrics: m,
		now:     time.Now,
	}, nil
}

// transact runs fn in one store transaction and normalizes untyped failures
// into dependency errors.
func (s *service) transact(ctx context.Context, op string, fn func(tx Tx) error) error {
	start := time.Now()
	err := s.store.Transact(ctx, fn)
	if err != nil && pkgerrors.As(err) == nil {
		err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record store transaction failed")
	}
	s.metrics.Observe(op, err, time.Since(start))
	return err
}

func (s *service) CreateCondominium(ctx context.Context, teamID string, input CreateCondominiumInput) (*Result, error) {
	if err := requireTeam(teamID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "condominium name is required")
	}
	if err := validateBlockCount(input.BlockCount); err != nil {
		return nil, err
	}
	if err := validateCounts(input.Apartments, input.Residents, input.Hypertensive, input.Diabetic, input.Pregnant); err != nil {
		return nil, err
	}
	priority := input.Priority
	if priority == "" {
		priority = enums.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
	}

	cond := &models.Condominium{
		TeamID:       teamID,
		Name:         name,
		BlockCount:   input.BlockCount,
		Apartments:   input.Apartments,
		Residents:    input.Residents,
		Hypertensive: input.Hypertensive,
		Diabetic:     input.Diabetic,
		Pregnant:     input.Pregnant,
		Priority:     priority,
		LastVisit:    dateOnly(input.LastVisit),
	}
	agentName := strings.TrimSpace(input.AgentName)
	if agentName != "" {
		cond.Assignments = []models.Assignment{{
			AgentName:  agentName,
			BlockRange: input.BlockRange,
			StartDate:  s.startDate(input.StartDate),
		}}
	}
	applyCoverage(cond)

	var agent *models.Agent
	err := s.transact(ctx, opCreateCondominium, func(tx Tx) error {
		if err := tx.PutCondominium(ctx, cond); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save condominium")
		}
		if agentName == "" {
			return nil
		}
		var err error
		agent, err = attachAgent(ctx, tx, teamID, agentName, input.BlockRange, cond.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logContext(ctx, teamID, cond.ID, agentName), "territory.condominium.created")
	return &Result{Condominium: FromCondominium(cond), Agent: FromAgent(agent)}, nil
}

func (s *service) GetCondominium(ctx context.Context, teamID string, id uint) (*CondominiumDTO, error) {
	if err := requireTeam(teamID); err != nil {
		return nil, err
	}
	var cond *models.Condominium
	err := s.transact(ctx, opGetCondominium, func(tx Tx) error {
		var err error
		cond, err = loadCondominium(ctx, tx, teamID, id, pkgerrors.CodeNotFound)
		return err
	})
	if err != nil {
		return nil, err
	}
	return FromCondominium(cond), nil
}

func (s *service) ListCondominiums(ctx context.Context, teamID string) ([]CondominiumDTO, error) {
	if err := requireTeam(teamID); err != nil {
		return nil, err
	}
	var conds []models.Condominium
	err := s.transact(ctx, opListCondominiums, func(tx Tx) error {
		var err error
		conds, err = tx.ListCondominiums(ctx, teamID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list condominiums")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]CondominiumDTO, 0, len(conds))
	for i := range conds {
		out = append(out, *FromCondominium(&conds[i]))
	}
	return out, nil
}

func (s *service) UpdateCondominium(ctx context.Context, teamID string, id uint, input UpdateCondominiumInput) (*Result, error) {
	if err := requireTeam(teamID); err != nil {
		return nil, err
	}
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	var (
		cond  *models.Condominium
		agent *models.Agent
	)
	err := s.transact(ctx, opUpdateCondominium, func(tx Tx) error {
		var err error
		cond, err = loadCondominium(ctx, tx, teamID, id, pkgerrors.CodeForbidden)
		if err != nil {
			return err
		}
		applyUpdate(cond, input)

		switch {
		case input.PrimaryAgentName != nil && !isPrimaryAgent(cond, strings.TrimSpace(*input.PrimaryAgentName)):
			blockRange := ""
			if input.PrimaryBlockRange != nil {
				blockRange = *input.PrimaryBlockRange
			}
			agent, err = s.replaceAgents(ctx, tx, cond, strings.TrimSpace(*input.PrimaryAgentName), blockRange)
			return err
		case input.PrimaryBlockRange != nil:
			if len(cond.Assignments) == 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "primary block range requires an assigned agent")
			}
			cond.Assignments[0].BlockRange = *input.PrimaryBlockRange
			applyCoverage(cond)
			if err := tx.PutCondominium(ctx, cond); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save condominium")
			}
			agent, err = attachAgent(ctx, tx, teamID, cond.Assignments[0].AgentName, *input.PrimaryBlockRange, cond.ID)
			return err
		default:
			applyCoverage(cond)
			if err := tx.PutCondominium(ctx, cond); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save condominium")
			}
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logContext(ctx, teamID, id, ""), "territory.condominium.updated")
	return &Result{Condominium: FromCondominium(cond), Agent: FromAgent(agent)}, nil
}

func (s *service) DeleteCondominium(ctx context.Context, teamID string, id uint) error {
	if err := requireTeam(teamID); err != nil {
		return err
	}
	err := s.transact(ctx, opDeleteCondominium, func(tx Tx) error {
		if _, err := loadCondominium(ctx, tx, teamID, id, pkgerrors.CodeForbidden); err != nil {
			return err
		}
		if err := tx.DeleteCondominium(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete condominium")
		}
		agents, err := tx.ListAgents(ctx, teamID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agents")
		}
		for i := range agents {
			agent := &agents[i]
			if !agent.CondominiumIDs.Contains(id) {
				continue
			}
			agent.CondominiumIDs = agent.CondominiumIDs.Remove(id)
			if err := tx.PutAgent(ctx, agent); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save agent")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logContext(ctx, teamID, id, ""), "territory.condominium.deleted")
	return nil
}

func (s *service) AddAssignment(ctx context.Context, teamID string, condominiumID uint, input AddAssignmentInput) (*Result, error) {
	if err := requireTeam(teamID); err != nil {
		return nil, err
	}
	agentName := strings.TrimSpace(input.AgentName)
	if agentName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent name is required")
	}

	var (
		cond  *models.Condominium
		agent *models.Agent
	)
	err := s.transact(ctx, opAddAssignment, func(tx Tx) error {
		var err error
		cond, err = loadCondominium(ctx, tx, teamID, condominiumID, pkgerrors.CodeNotFound)
		if err != nil {
			return err
		}

		cond.Assignments = append(cond.Assignments, models.Assignment{
			CondominiumID: cond.ID,
			Position:      len(cond.Assignments),
			AgentName:     agentName,
			BlockRange:    input.BlockRange,
			StartDate:     s.startDate(input.StartDate),
		})
		applyCoverage(cond)
		if err := tx.PutCondominium(ctx, cond); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save condominium")
		}

		agent, err = attachAgent(ctx, tx, teamID, agentName, input.BlockRange, cond.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logContext(ctx, teamID, condominiumID, agentName), "territory.assignment.added")
	return &Result{Condominium: FromCondominium(cond), Agent: FromAgent(agent)}, nil
}

func (s *service) RemoveAssignment(ctx context.Context, teamID string, condominiumID uint, agentName string) (*Result, error) {
	if err := requireTeam(teamID); err != nil {
		return nil, err
	}
	agentName = strings.TrimSpace(agentName)
	if agentName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent name is required")
	}

	var (
		cond  *models.Condominium
		agent *models.Agent
	)
	err := s.transact(ctx, opRemoveAssignment, func(tx Tx) error {
		var err error
		cond, err = loadCondominium(ctx, tx, teamID, condominiumID, pkgerrors.CodeNotFound)
		if err != nil {
			return err
		}
		if !cond.HasAgent(agentName) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		}

		kept := cond.Assignments[:0]
		for _, a := range cond.Assignments {
			if a.AgentName != agentName {
				kept = append(kept, a)
			}
		}
		cond.Assignments = kept
		applyCoverage(cond)
		if err := tx.PutCondominium(ctx, cond); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save condominium")
		}

		agent, err = detachAgent(ctx, tx, teamID, agentName, cond.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logContext(ctx, teamID, condominiumID, agentName), "territory.assignment.removed")
	return &Result{Condominium: FromCondominium(cond), Agent: FromAgent(agent)}, nil
}

func (s *service) ReplaceAgentOnCondominium(ctx context.Context, teamID string, condominiumID uint, agentName, blockRange string) (*Result, error) {
	if err := requireTeam(teamID); err != nil {
		return nil, err
	}
	agentName = strings.TrimSpace(agentName)

	var (
		cond  *models.Condominium
		agent *models.Agent
	)
	err := s.transact(ctx, opReplaceAgent, func(tx Tx) error {
		var err error
		cond, err = loadCondominium(ctx, tx, teamID, condominiumID, pkgerrors.CodeForbidden)
		if err != nil {
			return err
		}
		agent, err = s.replaceAgents(ctx, tx, cond, agentName, blockRange)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logContext(ctx, teamID, condominiumID, agentName), "territory.agent.replaced")
	return &Result{Condominium: FromCondominium(cond), Agent: FromAgent(agent)}, nil
}

func (s *service) ListAgents(ctx context.Context, teamID string) ([]AgentDTO, error) {
	if err := requireTeam(teamID); err != nil {
		return nil, err
	}
	var agents []models.Agent
	err := s.transact(ctx, opListAgents, func(tx Tx) error {
		var err error
		agents, err = tx.ListAgents(ctx, teamID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agents")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]AgentDTO, 0, len(agents))
	for i := range agents {
		out = append(out, *FromAgent(&agents[i]))
	}
	return out, nil
}

// replaceAgents detaches every agent currently on cond, replaces the
// assignment list with a single one for agentName (none when blank), saves
// cond and attaches the new agent.
func (s *service) replaceAgents(ctx context.Context, tx Tx, cond *models.Condominium, agentName, blockRange string) (*models.Agent, error) {
	for _, previous := range cond.AgentNames() {
		if _, err := detachAgent(ctx, tx, cond.TeamID, previous, cond.ID); err != nil {
			return nil, err
		}
	}

	cond.Assignments = nil
	if agentName != "" {
		cond.Assignments = []models.Assignment{{
			CondominiumID: cond.ID,
			AgentName:     agentName,
			BlockRange:    blockRange,
			StartDate:     s.startDate(time.Time{}),
		}}
	}
	applyCoverage(cond)
	if err := tx.PutCondominium(ctx, cond); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save condominium")
	}

	if agentName == "" {
		return nil, nil
	}
	return attachAgent(ctx, tx, cond.TeamID, agentName, blockRange, cond.ID)
}

// loadCondominium fetches id and checks it belongs to teamID. crossTeam
// selects the code returned when it belongs to another team.
func loadCondominium(ctx context.Context, tx Tx, teamID string, id uint, crossTeam pkgerrors.Code) (*models.Condominium, error) {
	cond, err := tx.GetCondominium(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "condominium not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load condominium")
	}
	if cond.TeamID != teamID {
		if crossTeam == pkgerrors.CodeForbidden {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "condominium belongs to another team")
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "condominium not found")
	}
	return cond, nil
}

// attachAgent upserts (teamID, name), links condominiumID and mirrors blockRange.
func attachAgent(ctx context.Context, tx Tx, teamID, name, blockRange string, condominiumID uint) (*models.Agent, error) {
	agent, err := tx.GetAgent(ctx, teamID, name)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		agent = &models.Agent{TeamID: teamID, Name: name, CondominiumIDs: types.IDSet{}}
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
	}
	agent.CondominiumIDs = agent.CondominiumIDs.Add(condominiumID)
	agent.BlockRange = blockRange
	if err := tx.PutAgent(ctx, agent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save agent")
	}
	return agent, nil
}

// detachAgent unlinks condominiumID from (teamID, name). A missing agent is not an error.
func detachAgent(ctx context.Context, tx Tx, teamID, name string, condominiumID uint) (*models.Agent, error) {
	agent, err := tx.GetAgent(ctx, teamID, name)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
	}
	if !agent.CondominiumIDs.Contains(condominiumID) {
		return agent, nil
	}
	agent.CondominiumIDs = agent.CondominiumIDs.Remove(condominiumID)
	if err := tx.PutAgent(ctx, agent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save agent")
	}
	return agent, nil
}

// isPrimaryAgent reports whether name already holds the first assignment, or
// whether both are empty. Resending the current agent must not touch the
// other assignments.
func isPrimaryAgent(cond *models.Condominium, name string) bool {
	if len(cond.Assignments) == 0 {
		return name == ""
	}
	return cond.Assignments[0].AgentName == name
}

// applyCoverage renumbers assignments and rederives coverage and the legacy mirrors.
func applyCoverage(cond *models.Condominium) {
	ranges := make([]string, 0, len(cond.Assignments))
	for i := range cond.Assignments {
		cond.Assignments[i].Position = i
		cond.Assignments[i].CondominiumID = cond.ID
		ranges = append(ranges, cond.Assignments[i].BlockRange)
	}

	result := coverage.ForAssignments(ranges, cond.BlockCount)
	cond.CoveredBlocks = result.Covered
	cond.UncoveredBlocks = result.Uncovered
	cond.CoveragePercent = result.Percent
	cond.CoverageStatus = result.Status

	if len(cond.Assignments) == 0 {
		cond.PrimaryAgentName = nil
		cond.PrimaryBlockRange = nil
		return
	}
	first := cond.Assignments[0]
	cond.PrimaryAgentName = &first.AgentName
	cond.PrimaryBlockRange = &first.BlockRange
}

func applyUpdate(cond *models.Condominium, input UpdateCondominiumInput) {
	if input.Name != nil {
		cond.Name = strings.TrimSpace(*input.Name)
	}
	if input.BlockCount != nil {
		cond.BlockCount = *input.BlockCount
	}
	if input.Apartments != nil {
		cond.Apartments = *input.Apartments
	}
	if input.Residents != nil {
		cond.Residents = *input.Residents
	}
	if input.Hypertensive != nil {
		cond.Hypertensive = *input.Hypertensive
	}
	if input.Diabetic != nil {
		cond.Diabetic = *input.Diabetic
	}
	if input.Pregnant != nil {
		cond.Pregnant = *input.Pregnant
	}
	if input.Priority != nil {
		cond.Priority = *input.Priority
	}
	if input.LastVisit != nil {
		cond.LastVisit = dateOnly(input.LastVisit)
	}
}

func validateBlockCount(n int) error {
	if n <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "block count must be positive")
	}
	if n > coverage.MaxBlockCount {
		return pkgerrors.New(pkgerrors.CodeValidation, "block count is too large").
			WithDetails(map[string]any{"block_count": n, "max": coverage.MaxBlockCount})
	}
	return nil
}

func validateUpdate(input UpdateCondominiumInput) error {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "condominium name is required")
	}
	if input.BlockCount != nil {
		if err := validateBlockCount(*input.BlockCount); err != nil {
			return err
		}
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
	}
	return validateCounts(
		derefInt(input.Apartments),
		derefInt(input.Residents),
		derefInt(input.Hypertensive),
		derefInt(input.Diabetic),
		derefInt(input.Pregnant),
	)
}

func validateCounts(values ...int) error {
	for _, v := range values {
		if v < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "counts must not be negative")
		}
	}
	return nil
}

func requireTeam(teamID string) error {
	if strings.TrimSpace(teamID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "team not selected")
	}
	return nil
}

func (s *service) startDate(t time.Time) time.Time {
	if t.IsZero() {
		t = s.now()
	}
	return *dateOnly(&t)
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	d := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func (s *service) logContext(ctx context.Context, teamID string, condominiumID uint, agentName string) context.Context {
	fields := map[string]any{
		"team_id":        teamID,
		"condominium_id": condominiumID,
	}
	if agentName != "" {
		fields["agent_name"] = agentName
	}
	return s.logg.WithFields(ctx, fields)
}
