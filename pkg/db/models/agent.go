package models

import (
	"time"

	"github.com/usf-territorio/territorio-backend/pkg/types"
)

// Agent is a community health agent (ACS). (TeamID, Name) is its identity.
type Agent struct {
	ID             uint        `gorm:"column:id;primaryKey;autoIncrement"`
	TeamID         string      `gorm:"column:team_id;not null;uniqueIndex:ux_agents_team_name"`
	Name           string      `gorm:"column:name;not null;uniqueIndex:ux_agents_team_name"`
	CondominiumIDs types.IDSet `gorm:"column:condominium_ids;type:text;not null;default:'[]'"`
	BlockRange     string      `gorm:"column:block_range;not null;default:''"`
	CreatedAt      time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (Agent) TableName() string { return "agents" }

// Clone returns a copy with an independent condominium set.
func (a *Agent) Clone() *Agent {
	if a == nil {
		return nil
	}
	out := *a
	out.CondominiumIDs = a.CondominiumIDs.Clone()
	return &out
}
