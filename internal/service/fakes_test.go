package service

import (
	"context"
	"sync"
	"time"

	"freeze_dryer/internal/models"
	"freeze_dryer/internal/repository"
)

type memRecipes struct {
	mu      sync.Mutex
	byID    map[string]models.Recipe
	order   []string
	saveErr error
	getErr  error
}

func newMemRecipes(rs ...models.Recipe) *memRecipes {
	m := &memRecipes{byID: map[string]models.Recipe{}}
	for _, r := range rs {
		_ = m.Save(context.Background(), r)
	}
	return m
}

func (m *memRecipes) Save(_ context.Context, r models.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.byID[r.ID]; !ok {
		m.order = append(m.order, r.ID)
	}
	m.byID[r.ID] = r.Clone()
	return nil
}

func (m *memRecipes) Get(_ context.Context, id string) (models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return models.Recipe{}, m.getErr
	}
	r, ok := m.byID[id]
	if !ok {
		return models.Recipe{}, repository.ErrNotFound
	}
	return r.Clone(), nil
}

func (m *memRecipes) List(_ context.Context) ([]models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Recipe, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id].Clone())
	}
	return out, nil
}

func (m *memRecipes) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

type memState struct {
	mu      sync.Mutex
	rec     repository.StatusRecord
	saves   int
	loadErr error
}

func (m *memState) Save(_ context.Context, s models.DryerStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = repository.StatusRecord{Status: s.Clone(), UpdatedAt: at}
	m.saves++
	return nil
}

func (m *memState) Load(_ context.Context) (repository.StatusRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, m.loadErr
}

type memEvents struct {
	mu     sync.Mutex
	events []models.DeviceEvent

	// last List arguments
	from, to time.Time
	typ      string
}

func (m *memEvents) Append(_ context.Context, e models.DeviceEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memEvents) List(_ context.Context, from, to time.Time, typ string) ([]models.DeviceEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.from, m.to, m.typ = from, to, typ
	return append([]models.DeviceEvent(nil), m.events...), nil
}

func (m *memEvents) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

type memBatches struct {
	mu      sync.Mutex
	batches []models.Batch
}

func (m *memBatches) Create(_ context.Context, b models.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = "batch-test"
	}
	m.batches = append(m.batches, b)
	return nil
}

func (m *memBatches) Get(_ context.Context, id string) (models.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.batches {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Batch{}, repository.ErrNotFound
}

func (m *memBatches) List(_ context.Context) ([]models.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Batch(nil), m.batches...), nil
}

func (m *memBatches) SetResultNotes(_ context.Context, id, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.batches {
		if m.batches[i].ID == id {
			m.batches[i].ResultNotes = notes
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memBatches) all() []models.Batch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Batch(nil), m.batches...)
}
