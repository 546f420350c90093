package service

import (
	"context"
	"errors"
	"time"

	"freeze_dryer/internal/logger"
	"freeze_dryer/internal/models"
	"freeze_dryer/internal/repository"
)

// Errors returned to the HTTP layer.
var (
	ErrNoDevice          = errors.New("no device connected")
	ErrUnknownConnection = errors.New("unknown connection type")
	ErrNotConnected      = errors.New("device is not connected")
	ErrProcessActive     = errors.New("a process is already active")
	ErrRecipeNotFound    = errors.New("recipe not found")
	ErrBatchNotFound     = errors.New("batch not found")
	ErrInvalidTrayType   = errors.New("unknown tray type")
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Dryer drives the active device.
type Dryer interface {
	Connect(ctx context.Context, kind models.ConnectionType) error
	Disconnect(ctx context.Context) error
	Start(ctx context.Context, req StartRequest) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, data string) error
	Close(ctx context.Context) error
}

// Monitoring exposes the current dryer status.
type Monitoring interface {
	GetState(ctx context.Context) (StateView, error)
}

// EventLog exposes the device event history.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error)
}

type Recipes interface {
	List(ctx context.Context) ([]models.Recipe, error)
	Get(ctx context.Context, id string) (models.Recipe, error)
	Create(ctx context.Context, r models.Recipe) (models.Recipe, error)
	Delete(ctx context.Context, id string) error
	EnsureDefaults(ctx context.Context, extra []models.Recipe) error
}

type Batches interface {
	List(ctx context.Context) ([]models.Batch, error)
	Get(ctx context.Context, id string) (models.Batch, error)
	SetResultNotes(ctx context.Context, id, notes string) error
}

// Terminal exposes raw device text.
type Terminal interface {
	Tail() string
	// SubscribeWithTail snapshots the tail and registers fn atomically.
	SubscribeWithTail(fn func(string)) (tail string, unsubscribe func())
}

// StartRequest names the recipe to run and the batch details recorded when it finishes.
type StartRequest struct {
	RecipeID string
	Quantity float64
	TrayType string
	Notes    string
	WashInfo models.WashInfo
}

// StateView is a status snapshot and where it came from.
type StateView struct {
	models.DryerStatus
	Source    string    `json:"source"` // live | persisted | baseline
	UpdatedAt time.Time `json:"updated_at"`
}

// LogFilter selects events by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "CONNECT", "START", "STEP_CHANGE", "FINISH", ...
}

type Service struct {
	Dryer
	Monitoring
	EventLog
	Recipes
	Batches
	Terminal
	Authorization
}

// Deps carries what the services need beyond the repositories.
type Deps struct {
	Devices DeviceFactory
	Auth    AuthConfig
	Log     *logger.Logger
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	terminal := NewTerminalService(defaultTerminalLimit)
	recipes := NewRecipeService(repos.RecipeRepo, log.Named("recipes"))
	dryer := NewDryerService(deps.Devices, DryerRepos{
		Recipes: repos.RecipeRepo,
		State:   repos.StateRepo,
		Events:  repos.EventRepo,
		Batches: repos.BatchRepo,
	}, terminal, log.Named("dryer"))

	return &Service{
		Dryer:         dryer,
		Monitoring:    NewMonitoringService(dryer, repos.StateRepo),
		EventLog:      NewEventLogService(repos.EventRepo),
		Recipes:       recipes,
		Batches:       NewBatchService(repos.BatchRepo),
		Terminal:      terminal,
		Authorization: NewAuthService(repos.Auth, deps.Auth),
	}
}
