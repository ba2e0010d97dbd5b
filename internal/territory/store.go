package territory

import (
	"context"

	"gorm.io/gorm"

	"github.com/usf-territorio/territorio-backend/pkg/db/models"
)

// ErrRecordNotFound is returned by Tx lookups for a missing condominium or agent.
// Every RecordStore implementation shares gorm's sentinel.
var ErrRecordNotFound = gorm.ErrRecordNotFound

// Tx is the view of the store available inside one transaction. Reads observe
// writes already made in the same transaction.
type Tx interface {
	GetCondominium(ctx context.Context, id uint) (*models.Condominium, error)
	ListCondominiums(ctx context.Context, teamID string) ([]models.Condominium, error)
	GetAgent(ctx context.Context, teamID, name string) (*models.Agent, error)
	ListAgents(ctx context.Context, teamID string) ([]models.Agent, error)
	// PutCondominium upserts c with its assignments, assigning c.ID on insert.
	PutCondominium(ctx context.Context, c *models.Condominium) error
	// PutAgent upserts a, assigning a.ID on insert.
	PutAgent(ctx context.Context, a *models.Agent) error
	DeleteCondominium(ctx context.Context, id uint) error
}

// RecordStore persists condominiums and agents. All writes made through the
// Tx passed to fn commit together when fn returns nil, and none do otherwise.
type RecordStore interface {
	Transact(ctx context.Context, fn func(tx Tx) error) error
}
