package territory

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/usf-territorio/territorio-backend/pkg/db"
	"github.com/usf-territorio/territorio-backend/pkg/db/models"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Repository is the SQL RecordStore. Each Transact call is one database
// transaction; on Postgres, rows read inside it are locked FOR UPDATE.
type Repository struct {
	db       txRunner
	rowLocks bool
}

// NewRepository binds the database client to the record store contract.
func NewRepository(client *db.Client) *Repository {
	return &Repository{db: client, rowLocks: client.SupportsRowLocks()}
}

// Transact implements RecordStore.
func (r *Repository) Transact(ctx context.Context, fn func(tx Tx) error) error {
	return r.db.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx, rowLocks: r.rowLocks})
	})
}

type gormTx struct {
	db       *gorm.DB
	rowLocks bool
}

func (t *gormTx) query(ctx context.Context) *gorm.DB {
	q := t.db.WithContext(ctx)
	if t.rowLocks {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func orderedAssignments(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (t *gormTx) GetCondominium(ctx context.Context, id uint) (*models.Condominium, error) {
	var cond models.Condominium
	if err := t.query(ctx).
		Preload("Assignments", orderedAssignments).
		Where("id = ?", id).
		First(&cond).Error; err != nil {
		return nil, err
	}
	return &cond, nil
}

func (t *gormTx) ListCondominiums(ctx context.Context, teamID string) ([]models.Condominium, error) {
	var conds []models.Condominium
	if err := t.query(ctx).
		Preload("Assignments", orderedAssignments).
		Where("team_id = ?", teamID).
		Order("id ASC").
		Find(&conds).Error; err != nil {
		return nil, err
	}
	return conds, nil
}

func (t *gormTx) GetAgent(ctx context.Context, teamID, name string) (*models.Agent, error) {
	var agent models.Agent
	if err := t.query(ctx).
		Where("team_id = ? AND name = ?", teamID, name).
		First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (t *gormTx) ListAgents(ctx context.Context, teamID string) ([]models.Agent, error) {
	var agents []models.Agent
	if err := t.query(ctx).
		Where("team_id = ?", teamID).
		Order("id ASC").
		Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

// PutCondominium saves the row and rewrites its assignment list.
func (t *gormTx) PutCondominium(ctx context.Context, c *models.Condominium) error {
	if c == nil {
		return fmt.Errorf("condominium is required")
	}
	conn := t.db.WithContext(ctx)
	assignments := c.Assignments

	var err error
	if c.ID == 0 {
		err = conn.Omit(clause.Associations).Create(c).Error
	} else {
		err = conn.Omit(clause.Associations).Save(c).Error
	}
	if err != nil {
		return fmt.Errorf("save condominium: %w", err)
	}

	if err := conn.Where("condominium_id = ?", c.ID).Delete(&models.Assignment{}).Error; err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	for i := range assignments {
		assignments[i].ID = 0
		assignments[i].CondominiumID = c.ID
		assignments[i].Position = i
	}
	if len(assignments) > 0 {
		if err := conn.Create(&assignments).Error; err != nil {
			return fmt.Errorf("save assignments: %w", err)
		}
	}
	c.Assignments = assignments
	return nil
}

func (t *gormTx) PutAgent(ctx context.Context, a *models.Agent) error {
	if a == nil {
		return fmt.Errorf("agent is required")
	}
	conn := t.db.WithContext(ctx)
	var err error
	if a.ID == 0 {
		err = conn.Create(a).Error
	} else {
		err = conn.Save(a).Error
	}
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return fmt.Errorf("agent %q already exists in team %q: %w", a.Name, a.TeamID, err)
		}
		return fmt.Errorf("save agent: %w", err)
	}
	return nil
}

func (t *gormTx) DeleteCondominium(ctx context.Context, id uint) error {
	conn := t.db.WithContext(ctx)
	if err := conn.Where("condominium_id = ?", id).Delete(&models.Assignment{}).Error; err != nil {
		return fmt.Errorf("delete assignments: %w", err)
	}
	res := conn.Where("id = ?", id).Delete(&models.Condominium{})
	if res.Error != nil {
		return fmt.Errorf("delete condominium: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
