package models

import (
	"time"

	"github.com/usf-territorio/territorio-backend/pkg/enums"
)

// Condominium is a residential complex tracked as one coverage unit.
// Coverage columns are derived from Assignments and never client supplied.
type Condominium struct {
	ID         uint   `gorm:"column:id;primaryKey;autoIncrement"`
	TeamID     string `gorm:"column:team_id;not null;index"`
	Name       string `gorm:"column:name;not null"`
	BlockCount int    `gorm:"column:block_count;not null"`

	CoveredBlocks   int                  `gorm:"column:covered_blocks;not null;default:0"`
	UncoveredBlocks int                  `gorm:"column:uncovered_blocks;not null;default:0"`
	CoveragePercent int                  `gorm:"column:coverage_percent;not null;default:0"`
	CoverageStatus  enums.CoverageStatus `gorm:"column:coverage_status;not null;default:'UNCOVERED'"`

	// Legacy mirrors of Assignments[0].
	PrimaryAgentName  *string `gorm:"column:primary_agent_name"`
	PrimaryBlockRange *string `gorm:"column:primary_block_range"`

	Apartments   int            `gorm:"column:apartments;not null;default:0"`
	Residents    int            `gorm:"column:residents;not null;default:0"`
	Hypertensive int            `gorm:"column:hypertensive;not null;default:0"`
	Diabetic     int            `gorm:"column:diabetic;not null;default:0"`
	Pregnant     int            `gorm:"column:pregnant;not null;default:0"`
	Priority     enums.Priority `gorm:"column:priority;not null;default:'media'"`
	LastVisit    *time.Time     `gorm:"column:last_visit"`

	Assignments []Assignment `gorm:"foreignKey:CondominiumID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Condominium) TableName() string { return "condominiums" }

// AgentNames returns the distinct agent names referenced by the assignments, in order.
func (c *Condominium) AgentNames() []string {
	seen := make(map[string]struct{}, len(c.Assignments))
	names := make([]string, 0, len(c.Assignments))
	for _, a := range c.Assignments {
		if _, ok := seen[a.AgentName]; ok {
			continue
		}
		seen[a.AgentName] = struct{}{}
		names = append(names, a.AgentName)
	}
	return names
}

// HasAgent reports whether any assignment references name.
func (c *Condominium) HasAgent(name string) bool {
	for _, a := range c.Assignments {
		if a.AgentName == name {
			return true
		}
	}
	return false
}

// Clone deep copies the condominium including its assignments.
func (c *Condominium) Clone() *Condominium {
	if c == nil {
		return nil
	}
	out := *c
	out.PrimaryAgentName = cloneString(c.PrimaryAgentName)
	out.PrimaryBlockRange = cloneString(c.PrimaryBlockRange)
	if c.LastVisit != nil {
		visit := *c.LastVisit
		out.LastVisit = &visit
	}
	if c.Assignments != nil {
		out.Assignments = make([]Assignment, len(c.Assignments))
		copy(out.Assignments, c.Assignments)
	}
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
