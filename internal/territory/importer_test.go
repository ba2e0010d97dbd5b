package territory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usf-territorio/territorio-backend/internal/legacy"
	"github.com/usf-territorio/territorio-backend/pkg/types"
)

func TestImportRecordsIntoRepository(t *testing.T) {
	ctx := context.Background()
	doc, err := legacy.Decode(strings.NewReader(legacyFixture))
	require.NoError(t, err)
	conds, agents, err := legacy.ToModels(doc)
	require.Error(t, err)
	require.Len(t, conds, 1)

	repo, _ := newTestRepository(t)
	svc := newTestService(t, repo)
	existing := createCondominium(t, svc, "equipe1", "Ja Existente", 2)

	report, err := ImportRecords(ctx, repo, conds, agents)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Condominiums)
	assert.Equal(t, []string{"equipe1"}, report.Teams)

	for _, team := range report.Teams {
		_, err := svc.Reconcile(ctx, team)
		require.NoError(t, err)
	}

	list, err := svc.ListCondominiums(ctx, "equipe1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	imported := list[1]
	assert.Greater(t, imported.ID, existing.ID)
	assert.Equal(t, "Residencial Jardim", imported.Name)
	assert.Equal(t, 50, imported.CoveragePercent)

	maria := agentByName(t, svc, "equipe1", "Maria")
	require.NotNil(t, maria)
	assert.Equal(t, types.IDSet{imported.ID}, maria.CondominiumIDs)
}

func TestImportRecordsMergesExistingAgents(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := newTestService(t, store)

	first := createCondominium(t, svc, "equipe1", "Primeiro", 4)
	_, err := svc.AddAssignment(ctx, "equipe1", first.ID, AddAssignmentInput{AgentName: "Maria", BlockRange: "1-2"})
	require.NoError(t, err)

	doc, err := legacy.Decode(strings.NewReader(legacyFixture))
	require.NoError(t, err)
	conds, agents, _ := legacy.ToModels(doc)

	report, err := ImportRecords(ctx, store, conds, agents)
	require.NoError(t, err)
	_, err = svc.Reconcile(ctx, "equipe1")
	require.NoError(t, err)

	maria := agentByName(t, svc, "equipe1", "Maria")
	require.NotNil(t, maria)
	assert.Len(t, maria.CondominiumIDs, 2)
	assert.True(t, maria.CondominiumIDs.Contains(first.ID))
	assert.Equal(t, 1, report.Condominiums)
}

func TestImportRecordsRequiresStore(t *testing.T) {
	_, err := ImportRecords(context.Background(), nil, nil, nil)
	assert.Error(t, err)
}
