package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"freeze_dryer/internal/models"
)

// ErrNotFound is returned when a keyed row does not exist.
var ErrNotFound = errors.New("not found")

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// StatusRecord is the last persisted status. A zero UpdatedAt means nothing was saved yet.
type StatusRecord struct {
	Status    models.DryerStatus
	UpdatedAt time.Time
}

type StateRepo interface {
	Save(ctx context.Context, s models.DryerStatus, at time.Time) error
	Load(ctx context.Context) (StatusRecord, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.DeviceEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.DeviceEvent, error)
}

type RecipeRepo interface {
	Save(ctx context.Context, r models.Recipe) error
	Get(ctx context.Context, id string) (models.Recipe, error)
	List(ctx context.Context) ([]models.Recipe, error)
	Delete(ctx context.Context, id string) error
}

type BatchRepo interface {
	Create(ctx context.Context, b models.Batch) error
	Get(ctx context.Context, id string) (models.Batch, error)
	List(ctx context.Context) ([]models.Batch, error)
	SetResultNotes(ctx context.Context, id, notes string) error
}

type Repository struct {
	StateRepo  StateRepo
	EventRepo  EventRepo
	RecipeRepo RecipeRepo
	BatchRepo  BatchRepo
	Auth       Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo:  NewStateSQLite(db),
		EventRepo:  NewEventSQLite(db),
		RecipeRepo: NewRecipeSQLite(db),
		BatchRepo:  NewBatchSQLite(db),
		Auth:       NewUserRepository(db),
	}
}
