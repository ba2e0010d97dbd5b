package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usf-territorio/territorio-backend/api/middleware"
	"github.com/usf-territorio/territorio-backend/internal/territory"
	"github.com/usf-territorio/territorio-backend/pkg/config"
	"github.com/usf-territorio/territorio-backend/pkg/enums"
	"github.com/usf-territorio/territorio-backend/pkg/types"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	svc, err := territory.NewService(territory.NewMemoryStore(), nil, nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/condominiums", CondominiumsList(svc, nil))
	r.Post("/condominiums", CondominiumCreate(svc, nil))
	r.Get("/condominiums/{id}", CondominiumGet(svc, nil))
	r.Put("/condominiums/{id}", CondominiumUpdate(svc, nil))
	r.Delete("/condominiums/{id}", CondominiumDelete(svc, nil))
	r.Post("/condominiums/{id}/agents", AssignmentAdd(svc, nil))
	r.Delete("/condominiums/{id}/agents/{agentName}", AssignmentRemove(svc, nil))
	r.Get("/agents", AgentsList(svc, nil))
	r.Get("/summary", TeamSummary(svc, nil))
	return r
}

func do(t *testing.T, h http.Handler, teamID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(middleware.WithTeamID(req.Context(), teamID))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope.Data
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope.Error.Code
}

func TestCondominiumLifecycle(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, "equipe1", http.MethodPost, "/condominiums", map[string]any{
		"name":        "Residencial Jardim",
		"block_count": 10,
		"residents":   120,
		"agent_name":  "Maria",
		"block_range": "1-5",
		"start_date":  "2025-03-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData[territory.Result](t, rec)
	require.NotNil(t, created.Agent)
	assert.Equal(t, 50, created.Condominium.CoveragePercent)
	assert.Equal(t, "2025-03-10", created.Condominium.Assignments[0].StartDate)
	id := created.Condominium.ID

	rec = do(t, h, "equipe1", http.MethodPost, pathf("/condominiums/%d/agents", id), map[string]any{
		"agent_name":  "Joao",
		"block_range": "4-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	added := decodeData[territory.Result](t, rec)
	assert.Equal(t, 100, added.Condominium.CoveragePercent)
	assert.Equal(t, enums.CoverageStatusComplete, added.Condominium.CoverageStatus)

	rec = do(t, h, "equipe1", http.MethodDelete, pathf("/condominiums/%d/agents/Maria", id), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	removed := decodeData[territory.Result](t, rec)
	assert.Equal(t, 70, removed.Condominium.CoveragePercent)

	rec = do(t, h, "equipe1", http.MethodGet, "/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roster := decodeData[struct {
		Agents []territory.AgentDTO `json:"agents"`
	}](t, rec)
	assert.Len(t, roster.Agents, 2)

	rec = do(t, h, "equipe1", http.MethodPut, pathf("/condominiums/%d", id), map[string]any{
		"block_count": 20,
		"priority":    "alta",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[territory.Result](t, rec)
	assert.Equal(t, 35, updated.Condominium.CoveragePercent)
	assert.Equal(t, enums.PriorityHigh, updated.Condominium.Priority)

	rec = do(t, h, "equipe1", http.MethodGet, "/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeData[territory.Summary](t, rec)
	assert.Equal(t, 1, summary.Condominiums)
	assert.Equal(t, 120, summary.TotalResidents)

	rec = do(t, h, "equipe1", http.MethodDelete, pathf("/condominiums/%d", id), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, "equipe1", http.MethodGet, pathf("/condominiums/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCondominiumCreateValidation(t *testing.T) {
	h := newTestHandler(t)

	cases := []map[string]any{
		{"block_count": 4},
		{"name": "A", "block_count": 0},
		{"name": "A", "block_count": 3000000000},
		{"name": "A", "block_count": 4, "priority": "urgente"},
		{"name": "A", "block_count": 4, "agent_name": "Maria"},
		{"name": "A", "block_count": 4, "last_visit": "ontem"},
		{"name": "A", "block_count": 4, "coverage_percent": 100},
	}
	for _, body := range cases {
		rec := do(t, h, "equipe1", http.MethodPost, "/condominiums", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec), body)
	}
}

func TestCondominiumCrossTeamAccess(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, "equipe1", http.MethodPost, "/condominiums", map[string]any{"name": "A", "block_count": 4})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeData[territory.Result](t, rec).Condominium.ID

	rec = do(t, h, "equipe2", http.MethodGet, pathf("/condominiums/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, "equipe2", http.MethodPut, pathf("/condominiums/%d", id), map[string]any{"name": "B"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, "equipe2", http.MethodGet, "/condominiums", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeData[struct {
		Condominiums []territory.CondominiumDTO `json:"condominiums"`
	}](t, rec)
	assert.Empty(t, list.Condominiums)
}

func TestAssignmentHandlersRejectBadPaths(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, "equipe1", http.MethodPost, "/condominiums/abc/agents", map[string]any{"agent_name": "Maria", "block_range": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, "equipe1", http.MethodDelete, "/condominiums/99/agents/Maria", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNilServiceIsInternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	CondominiumsList(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, stubPinger{}, nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get(envHeader))

	rec = httptest.NewRecorder()
	HealthReady(cfg, stubPinger{}, stubPinger{err: errors.New("down")}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func pathf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

func TestCondominiumUpdateReplacesAgent(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, "equipe1", http.MethodPost, "/condominiums", map[string]any{
		"name": "Parque", "block_count": 4, "agent_name": "Maria", "block_range": "1-4",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeData[territory.Result](t, rec).Condominium.ID

	rec = do(t, h, "equipe1", http.MethodPut, pathf("/condominiums/%d", id), map[string]any{
		"primary_agent_name":  "Joao",
		"primary_block_range": "1-2",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[territory.Result](t, rec)
	require.Len(t, updated.Condominium.Assignments, 1)
	assert.Equal(t, "Joao", updated.Condominium.Assignments[0].AgentName)
	assert.Equal(t, 50, updated.Condominium.CoveragePercent)

	rec = do(t, h, "equipe1", http.MethodGet, "/agents", nil)
	roster := decodeData[struct {
		Agents []territory.AgentDTO `json:"agents"`
	}](t, rec)
	for _, agent := range roster.Agents {
		if agent.Name == "Maria" {
			assert.Empty(t, agent.CondominiumIDs)
		}
	}
}

func TestCondominiumUpdateWithSamePrimaryAgentKeepsTeam(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, "equipe1", http.MethodPost, "/condominiums", map[string]any{
		"name": "Residencial Jardim", "block_count": 10, "agent_name": "Maria", "block_range": "1-5",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeData[territory.Result](t, rec).Condominium.ID

	rec = do(t, h, "equipe1", http.MethodPost, pathf("/condominiums/%d/agents", id), map[string]any{
		"agent_name": "Joao", "block_range": "6-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, "equipe1", http.MethodPut, pathf("/condominiums/%d", id), map[string]any{
		"name":               "Residencial Jardim",
		"block_count":        10,
		"residents":          250,
		"primary_agent_name": "Maria",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[territory.Result](t, rec)
	require.Len(t, updated.Condominium.Assignments, 2)
	assert.Equal(t, 100, updated.Condominium.CoveragePercent)
	assert.Equal(t, enums.CoverageStatusComplete, updated.Condominium.CoverageStatus)
	assert.Equal(t, 250, updated.Condominium.Residents)

	rec = do(t, h, "equipe1", http.MethodGet, "/agents", nil)
	roster := decodeData[struct {
		Agents []territory.AgentDTO `json:"agents"`
	}](t, rec)
	require.Len(t, roster.Agents, 2)
	for _, agent := range roster.Agents {
		assert.Equal(t, types.IDSet{id}, agent.CondominiumIDs, agent.Name)
	}
}
