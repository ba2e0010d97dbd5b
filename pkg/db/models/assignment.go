package models

import "time"

// Assignment attaches an agent and a free-text block range to a condominium.
type Assignment struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement"`
	CondominiumID uint      `gorm:"column:condominium_id;not null;index"`
	Position      int       `gorm:"column:position;not null"`
	AgentName     string    `gorm:"column:agent_name;not null"`
	BlockRange    string    `gorm:"column:block_range;not null;default:''"`
	StartDate     time.Time `gorm:"column:start_date;not null"`
}

func (Assignment) TableName() string { return "condominium_assignments" }
