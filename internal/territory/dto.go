package territory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/usf-territorio/territorio-backend/pkg/db/models"
	"github.com/usf-territorio/territorio-backend/pkg/enums"
	"github.com/usf-territorio/territorio-backend/pkg/types"
)

const dateLayout = "2006-01-02"

// AssignmentDTO is the API shape of an assignment.
type AssignmentDTO struct {
	AgentName  string `json:"agent_name"`
	BlockRange string `json:"block_range"`
	StartDate  string `json:"start_date"`
}

// CondominiumDTO exposes a condominium with its derived coverage.
type CondominiumDTO struct {
	ID                uint                 `json:"id"`
	TeamID            string               `json:"team_id"`
	Name              string               `json:"name"`
	BlockCount        int                  `json:"block_count"`
	CoveredBlocks     int                  `json:"covered_blocks"`
	UncoveredBlocks   int                  `json:"uncovered_blocks"`
	CoveragePercent   int                  `json:"coverage_percent"`
	CoverageStatus    enums.CoverageStatus `json:"coverage_status"`
	Assignments       []AssignmentDTO      `json:"assignments"`
	PrimaryAgentName  *string              `json:"primary_agent_name,omitempty"`
	PrimaryBlockRange *string              `json:"primary_block_range,omitempty"`
	Apartments        int                  `json:"apartments"`
	Residents         int                  `json:"residents"`
	Hypertensive      int                  `json:"hypertensive"`
	Diabetic          int                  `json:"diabetic"`
	Pregnant          int                  `json:"pregnant"`
	Priority          enums.Priority       `json:"priority"`
	LastVisit         *string              `json:"last_visit,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// AgentDTO exposes an agent and the condominiums it serves.
type AgentDTO struct {
	ID             uint        `json:"id"`
	TeamID         string      `json:"team_id"`
	Name           string      `json:"name"`
	CondominiumIDs types.IDSet `json:"condominium_ids"`
	BlockRange     string      `json:"block_range"`
}

// Result is returned by every assignment mutation. Agent is nil when no agent
// record was touched.
type Result struct {
	Condominium *CondominiumDTO `json:"condominium"`
	Agent       *AgentDTO       `json:"agent,omitempty"`
}

// AddAssignmentInput describes a new assignment. A zero StartDate means today.
type AddAssignmentInput struct {
	AgentName  string
	BlockRange string
	StartDate  time.Time
}

// CreateCondominiumInput captures a new condominium with at most one initial assignment.
type CreateCondominiumInput struct {
	Name         string
	BlockCount   int
	Apartments   int
	Residents    int
	Hypertensive int
	Diabetic     int
	Pregnant     int
	Priority     enums.Priority
	LastVisit    *time.Time
	AgentName    string
	BlockRange   string
	StartDate    time.Time
}

// UpdateCondominiumInput lists the mutable fields; nil leaves a field untouched.
// Setting PrimaryAgentName to a different agent replaces the assigned agents;
// resending the current one leaves the other assignments alone.
type UpdateCondominiumInput struct {
	Name              *string
	BlockCount        *int
	Apartments        *int
	Residents         *int
	Hypertensive      *int
	Diabetic          *int
	Pregnant          *int
	Priority          *enums.Priority
	LastVisit         *time.Time
	PrimaryAgentName  *string
	PrimaryBlockRange *string
}

// Summary aggregates the dashboard metrics of one team.
type Summary struct {
	TeamID              string                       `json:"team_id"`
	Condominiums        int                          `json:"condominiums"`
	Agents              int                          `json:"agents"`
	TotalResidents      int                          `json:"total_residents"`
	TotalHypertensive   int                          `json:"total_hypertensive"`
	TotalDiabetic       int                          `json:"total_diabetic"`
	TotalPregnant       int                          `json:"total_pregnant"`
	MeanCoveragePercent decimal.Decimal              `json:"mean_coverage_percent"`
	ByStatus            map[enums.CoverageStatus]int `json:"by_status"`
}

// ReconcileReport describes what a reconcile pass repaired.
type ReconcileReport struct {
	TeamID             string `json:"team_id"`
	Condominiums       int    `json:"condominiums"`
	CoverageRepaired   int    `json:"coverage_repaired"`
	AgentsCreated      int    `json:"agents_created"`
	AgentLinksRepaired int    `json:"agent_links_repaired"`
}

// FromCondominium maps a persisted condominium into its DTO.
func FromCondominium(m *models.Condominium) *CondominiumDTO {
	if m == nil {
		return nil
	}
	dto := &CondominiumDTO{
		ID:                m.ID,
		TeamID:            m.TeamID,
		Name:              m.Name,
		BlockCount:        m.BlockCount,
		CoveredBlocks:     m.CoveredBlocks,
		UncoveredBlocks:   m.UncoveredBlocks,
		CoveragePercent:   m.CoveragePercent,
		CoverageStatus:    m.CoverageStatus,
		Assignments:       make([]AssignmentDTO, 0, len(m.Assignments)),
		PrimaryAgentName:  cloneStringPtr(m.PrimaryAgentName),
		PrimaryBlockRange: cloneStringPtr(m.PrimaryBlockRange),
		Apartments:        m.Apartments,
		Residents:         m.Residents,
		Hypertensive:      m.Hypertensive,
		Diabetic:          m.Diabetic,
		Pregnant:          m.Pregnant,
		Priority:          m.Priority,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	for _, a := range m.Assignments {
		dto.Assignments = append(dto.Assignments, AssignmentDTO{
			AgentName:  a.AgentName,
			BlockRange: a.BlockRange,
			StartDate:  a.StartDate.Format(dateLayout),
		})
	}
	if m.LastVisit != nil {
		visit := m.LastVisit.Format(dateLayout)
		dto.LastVisit = &visit
	}
	return dto
}

// FromAgent maps a persisted agent into its DTO.
func FromAgent(m *models.Agent) *AgentDTO {
	if m == nil {
		return nil
	}
	return &AgentDTO{
		ID:             m.ID,
		TeamID:         m.TeamID,
		Name:           m.Name,
		CondominiumIDs: m.CondominiumIDs.Clone(),
		BlockRange:     m.BlockRange,
	}
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
