package legacy

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/usf-territorio/territorio-backend/pkg/db/models"
	"github.com/usf-territorio/territorio-backend/pkg/enums"
	"github.com/usf-territorio/territorio-backend/pkg/types"
)

const oldDocument = `{
  "condominios": [
    {"id": 1, "nome": "Parque Verde", "equipe": "equipe1", "torres": 3, "moradores": 420,
     "cobertura": 85, "prioridade": "alta", "ultima_visita": "2024-01-15",
     "acs_responsavel": "Maria", "blocos_ativos": "1-2"},
    {"id": 2, "nome": "São José", "equipe": "equipe1", "torres": "2", "cobertura": 90.4,
     "acs_responsavel": "", "blocos_ativos": ""},
    {"id": 3, "nome": "Central Park", "equipe": "equipe2", "torres": 4,
     "acs_responsavel": "Joao", "acs_multiplos": [{"nome": "Ana", "blocos": "1", "data_inicio": "2024-02-01"}]},
    {"id": 4, "nome": "Sem Blocos", "equipe": "equipe2", "torres": 0}
  ],
  "acs": [
    {"id": 1, "nome": "Maria", "equipe": "equipe1", "condominios": [1, 1, 0], "blocos_ativos": "1-2"},
    {"id": 2, "nome": "", "equipe": "equipe1", "condominios": []}
  ]
}`

func TestDecodeAndMigrate(t *testing.T) {
	doc, err := Decode(strings.NewReader(oldDocument))
	require.NoError(t, err)
	require.Len(t, doc.Condominiums, 4)
	assert.Equal(t, Int(2), doc.Condominiums[1].Towers)
	assert.Equal(t, Int(90), doc.Condominiums[1].Coverage)

	assert.Equal(t, 2, Migrate(doc))

	first := doc.Condominiums[0]
	require.NotNil(t, first.Assignments)
	assert.Equal(t, []Assignment{{Name: "Maria", Blocks: "1-2", StartDate: "2024-01-15"}}, *first.Assignments)

	second := doc.Condominiums[1]
	require.NotNil(t, second.Assignments)
	assert.Empty(t, *second.Assignments)

	third := doc.Condominiums[2]
	assert.Equal(t, "Ana", (*third.Assignments)[0].Name, "existing multi-agent list is kept")

	assert.Equal(t, 0, Migrate(doc), "migration is one-time")
}

func TestMigrateDefaultsStartDate(t *testing.T) {
	name := "Maria"
	doc := &Document{Condominiums: []Condominium{{ID: 1, PrimaryAgent: &name}}}
	Migrate(doc)
	assert.Equal(t, DefaultStartDate, (*doc.Condominiums[0].Assignments)[0].StartDate)
}

func TestToModelsSkipsInvalidRecords(t *testing.T) {
	doc, err := Decode(strings.NewReader(oldDocument))
	require.NoError(t, err)

	conds, agents, err := ToModels(doc)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)

	require.Len(t, conds, 3)
	maria := conds[0]
	assert.Equal(t, uint(1), maria.ID)
	assert.Equal(t, "equipe1", maria.TeamID)
	assert.Equal(t, enums.PriorityHigh, maria.Priority)
	require.Len(t, maria.Assignments, 1)
	assert.Equal(t, "Maria", maria.Assignments[0].AgentName)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), maria.Assignments[0].StartDate)
	assert.Equal(t, enums.CoverageStatusPartial, maria.CoverageStatus, "status falls back to the stored percent")

	assert.Equal(t, enums.PriorityMedium, conds[1].Priority)
	assert.Empty(t, conds[1].Assignments)

	require.Len(t, agents, 1)
	assert.Equal(t, types.IDSet{1}, agents[0].CondominiumIDs)
}

func TestFromModelsRoundTrip(t *testing.T) {
	name, blocks := "Maria", "1-2"
	visit := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	conds := []models.Condominium{{
		ID: 7, TeamID: "equipe1", Name: "Vista Alegre", BlockCount: 2,
		CoveredBlocks: 2, CoveragePercent: 100, CoverageStatus: enums.CoverageStatusComplete,
		PrimaryAgentName: &name, PrimaryBlockRange: &blocks, Priority: enums.PriorityLow, LastVisit: &visit,
		Assignments: []models.Assignment{{AgentName: "Maria", BlockRange: "1-2", StartDate: visit}},
	}}
	agents := []models.Agent{{ID: 3, TeamID: "equipe1", Name: "Maria", CondominiumIDs: types.NewIDSet(7), BlockRange: "1-2"}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FromModels(conds, agents)))
	assert.Contains(t, buf.String(), `"status_cobertura": "completo"`)
	assert.Contains(t, buf.String(), `"acs_multiplos": [`)

	doc, err := Decode(&buf)
	require.NoError(t, err)
	gotConds, gotAgents, err := ToModels(doc)
	require.NoError(t, err)
	require.Len(t, gotConds, 1)
	assert.Equal(t, conds[0].Assignments[0].StartDate, gotConds[0].Assignments[0].StartDate)
	assert.Equal(t, "Vista Alegre", gotConds[0].Name)
	assert.Equal(t, enums.CoverageStatusComplete, gotConds[0].CoverageStatus)
	assert.Equal(t, &visit, gotConds[0].LastVisit)
	require.Len(t, gotAgents, 1)
	assert.Equal(t, uint(3), gotAgents[0].ID)
	assert.Equal(t, types.IDSet{7}, gotAgents[0].CondominiumIDs)
}

func TestDecodeEmptyInput(t *testing.T) {
	doc, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, doc.Condominiums)

	doc, err = Decode(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, doc.Condominiums)
	assert.NotNil(t, doc.Agents)

	_, err = Decode(strings.NewReader(`{"condominios": [{"torres": "três"}]}`))
	assert.Error(t, err)
}

func TestSeedDocumentConverts(t *testing.T) {
	conds, agents, err := ToModels(SeedDocument())
	require.NoError(t, err)
	assert.Len(t, conds, 6)
	assert.Empty(t, agents)
	for _, c := range conds {
		assert.Empty(t, c.Assignments)
	}
}
