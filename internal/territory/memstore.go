package territory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/usf-territorio/territorio-backend/pkg/db/models"
)

const (
	memOpPutCondominium    = "put_condominium"
	memOpPutAgent          = "put_agent"
	memOpDeleteCondominium = "delete_condominium"
)

type agentKey struct {
	teamID string
	name   string
}

// memState is an immutable snapshot; records are never mutated once stored.
type memState struct {
	conds            map[uint]*models.Condominium
	agents           map[agentKey]*models.Agent
	nextCondID       uint
	nextAgentID      uint
	nextAssignmentID uint
}

func emptyState() *memState {
	return &memState{
		conds:            map[uint]*models.Condominium{},
		agents:           map[agentKey]*models.Agent{},
		nextCondID:       1,
		nextAgentID:      1,
		nextAssignmentID: 1,
	}
}

// MemoryStore is a RecordStore kept in process memory. One mutex serializes
// every transaction; writes are staged and applied only when fn succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
	now   func() time.Time

	// beforeCommit sees the next state before it replaces the current one; an
	// error aborts the commit.
	beforeCommit func(next *memState) error
	// fail injects store failures per write operation.
	fail func(op string) error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: emptyState(), now: time.Now}
}

// Transact implements RecordStore.
func (s *MemoryStore) Transact(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:            s,
		base:             s.state,
		conds:            map[uint]*models.Condominium{},
		agents:           map[agentKey]*models.Agent{},
		nextCondID:       s.state.nextCondID,
		nextAgentID:      s.state.nextAgentID,
		nextAssignmentID: s.state.nextAssignmentID,
	}
	if err := fn(tx); err != nil {
		return err
	}

	next := tx.merged()
	if s.beforeCommit != nil {
		if err := s.beforeCommit(next); err != nil {
			return err
		}
	}
	s.state = next
	return nil
}

// load replaces the whole state, validating ids and agent identities.
func (s *MemoryStore) load(conds []models.Condominium, agents []models.Agent) error {
	state := emptyState()
	for i := range conds {
		c := conds[i].Clone()
		if c.ID == 0 {
			return fmt.Errorf("condominium %q has no id", c.Name)
		}
		if _, dup := state.conds[c.ID]; dup {
			return fmt.Errorf("duplicate condominium id %d", c.ID)
		}
		for j := range c.Assignments {
			c.Assignments[j].CondominiumID = c.ID
			c.Assignments[j].Position = j
			if c.Assignments[j].ID == 0 {
				c.Assignments[j].ID = state.nextAssignmentID
			}
			state.nextAssignmentID = max(state.nextAssignmentID, c.Assignments[j].ID+1)
		}
		state.conds[c.ID] = c
		state.nextCondID = max(state.nextCondID, c.ID+1)
	}
	for i := range agents {
		a := agents[i].Clone()
		key := agentKey{teamID: a.TeamID, name: a.Name}
		if _, dup := state.agents[key]; dup {
			return fmt.Errorf("duplicate agent %q in team %q", a.Name, a.TeamID)
		}
		if a.ID == 0 {
			a.ID = state.nextAgentID
		}
		state.agents[key] = a
		state.nextAgentID = max(state.nextAgentID, a.ID+1)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return nil
}

type memTx struct {
	store *MemoryStore
	base  *memState

	// staged writes; a nil condominium marks a delete.
	conds  map[uint]*models.Condominium
	agents map[agentKey]*models.Agent

	nextCondID       uint
	nextAgentID      uint
	nextAssignmentID uint
}

func (tx *memTx) injected(op string) error {
	if tx.store.fail == nil {
		return nil
	}
	return tx.store.fail(op)
}

func (tx *memTx) condominium(id uint) (*models.Condominium, bool) {
	if staged, ok := tx.conds[id]; ok {
		return staged, staged != nil
	}
	c, ok := tx.base.conds[id]
	return c, ok
}

func (tx *memTx) agent(key agentKey) (*models.Agent, bool) {
	if staged, ok := tx.agents[key]; ok {
		return staged, true
	}
	a, ok := tx.base.agents[key]
	return a, ok
}

func (tx *memTx) GetCondominium(_ context.Context, id uint) (*models.Condominium, error) {
	c, ok := tx.condominium(id)
	if !ok {
		return nil, ErrRecordNotFound
	}
	return c.Clone(), nil
}

func (tx *memTx) ListCondominiums(_ context.Context, teamID string) ([]models.Condominium, error) {
	ids := make(map[uint]struct{}, len(tx.base.conds)+len(tx.conds))
	for id := range tx.base.conds {
		ids[id] = struct{}{}
	}
	for id := range tx.conds {
		ids[id] = struct{}{}
	}

	out := make([]models.Condominium, 0)
	for id := range ids {
		c, ok := tx.condominium(id)
		if !ok || c.TeamID != teamID {
			continue
		}
		out = append(out, *c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (tx *memTx) GetAgent(_ context.Context, teamID, name string) (*models.Agent, error) {
	a, ok := tx.agent(agentKey{teamID: teamID, name: name})
	if !ok {
		return nil, ErrRecordNotFound
	}
	return a.Clone(), nil
}

func (tx *memTx) ListAgents(_ context.Context, teamID string) ([]models.Agent, error) {
	seen := map[agentKey]struct{}{}
	out := make([]models.Agent, 0)
	collect := func(key agentKey) {
		if _, ok := seen[key]; ok || key.teamID != teamID {
			return
		}
		seen[key] = struct{}{}
		if a, ok := tx.agent(key); ok {
			out = append(out, *a.Clone())
		}
	}
	for key := range tx.agents {
		collect(key)
	}
	for key := range tx.base.agents {
		collect(key)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (tx *memTx) PutCondominium(_ context.Context, c *models.Condominium) error {
	if err := tx.injected(memOpPutCondominium); err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("condominium is required")
	}

	now := tx.store.now()
	if c.ID == 0 {
		c.ID = tx.nextCondID
		tx.nextCondID++
		c.CreatedAt = now
	} else if existing, ok := tx.condominium(c.ID); ok && c.CreatedAt.IsZero() {
		c.CreatedAt = existing.CreatedAt
	}
	c.UpdatedAt = now

	for i := range c.Assignments {
		c.Assignments[i].CondominiumID = c.ID
		c.Assignments[i].Position = i
		if c.Assignments[i].ID == 0 {
			c.Assignments[i].ID = tx.nextAssignmentID
			tx.nextAssignmentID++
		}
	}
	tx.conds[c.ID] = c.Clone()
	return nil
}

func (tx *memTx) PutAgent(_ context.Context, a *models.Agent) error {
	if err := tx.injected(memOpPutAgent); err != nil {
		return err
	}
	if a == nil {
		return fmt.Errorf("agent is required")
	}

	key := agentKey{teamID: a.TeamID, name: a.Name}
	existing, exists := tx.agent(key)
	now := tx.store.now()
	switch {
	case a.ID == 0 && exists:
		return fmt.Errorf("agent %q already exists in team %q", a.Name, a.TeamID)
	case a.ID == 0:
		a.ID = tx.nextAgentID
		tx.nextAgentID++
		a.CreatedAt = now
	case exists && existing.ID != a.ID:
		return fmt.Errorf("agent %q already exists in team %q", a.Name, a.TeamID)
	}
	a.UpdatedAt = now
	tx.agents[key] = a.Clone()
	return nil
}

func (tx *memTx) DeleteCondominium(_ context.Context, id uint) error {
	if err := tx.injected(memOpDeleteCondominium); err != nil {
		return err
	}
	if _, ok := tx.condominium(id); !ok {
		return ErrRecordNotFound
	}
	tx.conds[id] = nil
	return nil
}

// merged builds the next snapshot from base plus staged writes. Unchanged
// records are shared with base.
func (tx *memTx) merged() *memState {
	next := &memState{
		conds:            make(map[uint]*models.Condominium, len(tx.base.conds)+len(tx.conds)),
		agents:           make(map[agentKey]*models.Agent, len(tx.base.agents)+len(tx.agents)),
		nextCondID:       tx.nextCondID,
		nextAgentID:      tx.nextAgentID,
		nextAssignmentID: tx.nextAssignmentID,
	}
	for id, c := range tx.base.conds {
		next.conds[id] = c
	}
	for id, c := range tx.conds {
		if c == nil {
			delete(next.conds, id)
			continue
		}
		next.conds[id] = c
	}
	for key, a := range tx.base.agents {
		next.agents[key] = a
	}
	for key, a := range tx.agents {
		next.agents[key] = a
	}
	return next
}

// sortedRecords returns every record of the snapshot ordered by id.
func (st *memState) sortedRecords() ([]models.Condominium, []models.Agent) {
	conds := make([]models.Condominium, 0, len(st.conds))
	for _, c := range st.conds {
		conds = append(conds, *c.Clone())
	}
	sort.Slice(conds, func(i, j int) bool { return conds[i].ID < conds[j].ID })

	agents := make([]models.Agent, 0, len(st.agents))
	for _, a := range st.agents {
		agents = append(agents, *a.Clone())
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })
	return conds, agents
}
