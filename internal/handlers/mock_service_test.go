package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"freeze_dryer/internal/models"
	"freeze_dryer/internal/service"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockDryer struct {
	connectErr error
	startErr   error
	controlErr error
	sendErr    error

	lastKind  models.ConnectionType
	lastStart service.StartRequest
	lastSend  string
	calls     []string
}

func (m *mockDryer) Connect(_ context.Context, kind models.ConnectionType) error {
	m.calls = append(m.calls, "connect")
	m.lastKind = kind
	return m.connectErr
}
func (m *mockDryer) Disconnect(context.Context) error {
	m.calls = append(m.calls, "disconnect")
	return nil
}
func (m *mockDryer) Start(_ context.Context, req service.StartRequest) error {
	m.calls = append(m.calls, "start")
	m.lastStart = req
	return m.startErr
}
func (m *mockDryer) Pause(context.Context) error {
	m.calls = append(m.calls, "pause")
	return m.controlErr
}
func (m *mockDryer) Resume(context.Context) error {
	m.calls = append(m.calls, "resume")
	return m.controlErr
}
func (m *mockDryer) Stop(context.Context) error {
	m.calls = append(m.calls, "stop")
	return m.controlErr
}
func (m *mockDryer) Send(_ context.Context, data string) error {
	m.calls = append(m.calls, "send")
	m.lastSend = data
	return m.sendErr
}
func (m *mockDryer) Close(context.Context) error { return nil }

type mockMonitoring struct {
	mu    sync.Mutex
	state service.StateView
	err   error
	calls int
}

func (m *mockMonitoring) GetState(context.Context) (service.StateView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.state, m.err
}

type mockEventLog struct {
	resp     []models.DeviceEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.DeviceEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

type mockRecipes struct {
	list      []models.Recipe
	getErr    error
	createErr error
	deleteErr error
	created   models.Recipe
}

func (m *mockRecipes) List(context.Context) ([]models.Recipe, error) { return m.list, nil }
func (m *mockRecipes) Get(_ context.Context, id string) (models.Recipe, error) {
	if m.getErr != nil {
		return models.Recipe{}, m.getErr
	}
	for _, r := range m.list {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Recipe{}, service.ErrRecipeNotFound
}
func (m *mockRecipes) Create(_ context.Context, r models.Recipe) (models.Recipe, error) {
	if m.createErr != nil {
		return models.Recipe{}, m.createErr
	}
	if r.ID == "" {
		r.ID = "rec_new"
	}
	m.created = r
	return r, nil
}
func (m *mockRecipes) Delete(context.Context, string) error { return m.deleteErr }
func (m *mockRecipes) EnsureDefaults(context.Context, []models.Recipe) error {
	return nil
}

type mockBatches struct {
	list      []models.Batch
	notesErr  error
	lastID    string
	lastNotes string
}

func (m *mockBatches) List(context.Context) ([]models.Batch, error) { return m.list, nil }
func (m *mockBatches) Get(_ context.Context, id string) (models.Batch, error) {
	for _, b := range m.list {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Batch{}, service.ErrBatchNotFound
}
func (m *mockBatches) SetResultNotes(_ context.Context, id, notes string) error {
	m.lastID, m.lastNotes = id, notes
	return m.notesErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
