package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/usf-territorio/territorio-backend/pkg/types"
)

func TestCondominiumAgentNamesDeduplicates(t *testing.T) {
	c := &Condominium{Assignments: []Assignment{
		{AgentName: "Maria"}, {AgentName: "Joao"}, {AgentName: "Maria"},
	}}
	assert.Equal(t, []string{"Maria", "Joao"}, c.AgentNames())
	assert.True(t, c.HasAgent("Joao"))
	assert.False(t, c.HasAgent("Ana"))
}

func TestCondominiumCloneIsDeep(t *testing.T) {
	name := "Maria"
	visit := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c := &Condominium{
		ID:               1,
		PrimaryAgentName: &name,
		LastVisit:        &visit,
		Assignments:      []Assignment{{AgentName: "Maria", BlockRange: "1-2"}},
	}
	clone := c.Clone()
	clone.Assignments[0].BlockRange = "9"
	*clone.PrimaryAgentName = "Joao"
	*clone.LastVisit = visit.AddDate(1, 0, 0)

	assert.Equal(t, "1-2", c.Assignments[0].BlockRange)
	assert.Equal(t, "Maria", *c.PrimaryAgentName)
	assert.Equal(t, visit, *c.LastVisit)
	assert.Nil(t, (*Condominium)(nil).Clone())
}

func TestAgentCloneCopiesSet(t *testing.T) {
	a := &Agent{Name: "Maria", CondominiumIDs: types.NewIDSet(1, 2)}
	clone := a.Clone()
	clone.CondominiumIDs = clone.CondominiumIDs.Remove(1)
	clone.CondominiumIDs[0] = 42

	assert.Equal(t, types.IDSet{1, 2}, a.CondominiumIDs)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "condominiums", Condominium{}.TableName())
	assert.Equal(t, "condominium_assignments", Assignment{}.TableName())
	assert.Equal(t, "agents", Agent{}.TableName())
}
