package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"freeze_dryer/internal/device"
	"freeze_dryer/internal/logger"
	"freeze_dryer/internal/models"
	"freeze_dryer/internal/repository"
)

const persistTimeout = 2 * time.Second

// DryerRepos are the stores written by the status pipeline.
type DryerRepos struct {
	Recipes repository.RecipeRepo
	State   repository.StateRepo
	Events  repository.EventRepo
	Batches repository.BatchRepo
}

// DryerService owns the active device and records what it reports.
type DryerService struct {
	log      *logger.Logger
	factory  DeviceFactory
	repos    DryerRepos
	terminal *TerminalService
	now      func() time.Time

	mu    sync.Mutex // guards dev, kind and unsub
	dev   device.Service
	kind  models.ConnectionType
	unsub []func()

	liveMu  sync.Mutex
	live    models.DryerStatus
	liveAt  time.Time
	hasLive bool
	prev    models.DryerStatus
	pending StartRequest
}

func NewDryerService(factory DeviceFactory, repos DryerRepos, terminal *TerminalService, log *logger.Logger) *DryerService {
	if log == nil {
		log = logger.Nop()
	}
	return &DryerService{
		log:      log,
		factory:  factory,
		repos:    repos,
		terminal: terminal,
		now:      time.Now,
	}
}

// Connect attaches a new device of the given kind, replacing the current one.
func (s *DryerService) Connect(ctx context.Context, kind models.ConnectionType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dev != nil {
		s.detachLocked(ctx)
	}
	if s.factory == nil {
		return fmt.Errorf("%w: %q", ErrUnknownConnection, kind)
	}

	dev, err := s.factory(kind)
	if err != nil {
		return err
	}

	s.liveMu.Lock()
	s.prev = dev.Status()
	s.liveMu.Unlock()

	s.unsub = append(s.unsub, dev.OnStatusUpdate(s.onStatus))
	if s.terminal != nil {
		s.unsub = append(s.unsub, dev.OnData(s.terminal.Append))
	}
	s.dev = dev
	s.kind = kind

	if err := dev.Connect(ctx); err != nil {
		s.log.Warnw("device_connect_failed", "kind", kind, "err", err)
		s.detachLocked(ctx)
		return err
	}
	s.log.Infow("device_connected", "kind", kind)
	return nil
}

// Disconnect releases the active device. Without one it does nothing.
func (s *DryerService) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev != nil {
		s.detachLocked(ctx)
	}
	return nil
}

// Close is Disconnect for shutdown paths.
func (s *DryerService) Close(ctx context.Context) error {
	return s.Disconnect(ctx)
}

func (s *DryerService) detachLocked(ctx context.Context) {
	if err := s.dev.Disconnect(ctx); err != nil {
		s.log.Warnw("device_disconnect_failed", "kind", s.kind, "err", err)
	}
	for _, fn := range s.unsub {
		fn()
	}
	s.unsub = nil
	s.dev = nil
	s.kind = ""
}

// Start runs a stored recipe. The device must be connected and idle.
func (s *DryerService) Start(ctx context.Context, req StartRequest) error {
	if !models.ValidTrayType(req.TrayType) {
		return fmt.Errorf("%w: %q", ErrInvalidTrayType, req.TrayType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return ErrNoDevice
	}

	st := s.dev.Status()
	if !st.IsConnected {
		return ErrNotConnected
	}
	if st.ProcessState != models.StateIdle {
		return ErrProcessActive
	}

	recipe, err := s.repos.Recipes.Get(ctx, req.RecipeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %q", ErrRecipeNotFound, req.RecipeID)
		}
		return err
	}
	if err := recipe.Validate(); err != nil {
		return err
	}

	s.liveMu.Lock()
	s.pending = req
	s.liveMu.Unlock()

	s.dev.StartProcess(recipe)
	return nil
}

func (s *DryerService) Pause(_ context.Context) error {
	return s.withDevice(func(d device.Service) { d.PauseProcess() })
}

func (s *DryerService) Resume(_ context.Context) error {
	return s.withDevice(func(d device.Service) { d.ResumeProcess() })
}

func (s *DryerService) Stop(_ context.Context) error {
	return s.withDevice(func(d device.Service) { d.StopProcess() })
}

// Send writes raw text to the device link.
func (s *DryerService) Send(ctx context.Context, data string) error {
	return s.withDevice(func(d device.Service) { d.SendData(ctx, data) })
}

func (s *DryerService) withDevice(fn func(device.Service)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return ErrNoDevice
	}
	fn(s.dev)
	return nil
}

// Live returns the last status reported by the attached device.
func (s *DryerService) Live() (models.DryerStatus, time.Time, bool) {
	s.mu.Lock()
	attached := s.dev != nil
	s.mu.Unlock()

	s.liveMu.Lock()
	defer s.liveMu.Unlock()
	if !attached || !s.hasLive {
		return models.DryerStatus{}, time.Time{}, false
	}
	return s.live.Clone(), s.liveAt, true
}

// onStatus runs on the device's notification path, in mutation order.
func (s *DryerService) onStatus(st models.DryerStatus) {
	now := s.now()

	s.liveMu.Lock()
	prev := s.prev
	s.prev = st
	s.live = st
	s.liveAt = now
	s.hasLive = true
	pending := s.pending
	s.liveMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if s.repos.State != nil {
		if err := s.repos.State.Save(ctx, st, now); err != nil {
			s.log.Errorw("state_persist_failed", "err", err)
		}
	}

	for _, ev := range transitionEvents(prev, st, now) {
		if s.repos.Events == nil {
			break
		}
		if err := s.repos.Events.Append(ctx, ev); err != nil {
			s.log.Errorw("event_append_failed", "type", ev.Type, "err", err)
		}
	}

	if st.ProcessState == models.StateFinished && prev.ProcessState != models.StateFinished && st.ActiveRecipe != nil {
		s.recordBatch(ctx, st, pending, now)
	}
}

func (s *DryerService) recordBatch(ctx context.Context, st models.DryerStatus, req StartRequest, now time.Time) {
	if s.repos.Batches == nil {
		return
	}
	b := models.Batch{
		Name:      st.ActiveRecipe.Name + " Run",
		Quantity:  req.Quantity,
		Recipe:    st.ActiveRecipe.Clone(),
		StartTime: now.Add(-time.Duration(st.ElapsedTime) * time.Second),
		EndTime:   now,
		WashInfo:  req.WashInfo,
		TrayType:  req.TrayType,
		Notes:     req.Notes,
	}
	if err := s.repos.Batches.Create(ctx, b); err != nil {
		s.log.Errorw("batch_create_failed", "recipe_id", st.ActiveRecipe.ID, "err", err)
		return
	}
	s.log.Infow("batch_recorded", "recipe_id", st.ActiveRecipe.ID, "elapsed_s", st.ElapsedTime)
}

// transitionEvents derives the log entries for one status change.
func transitionEvents(prev, st models.DryerStatus, at time.Time) []models.DeviceEvent {
	var out []models.DeviceEvent
	add := func(typ, desc string, meta map[string]any) {
		out = append(out, models.DeviceEvent{OccurredAt: at, Type: typ, Description: desc, Metadata: meta})
	}
	recipeMeta := func() map[string]any {
		if st.ActiveRecipe == nil {
			return nil
		}
		return map[string]any{"recipe_id": st.ActiveRecipe.ID, "recipe_name": st.ActiveRecipe.Name}
	}

	if !prev.IsConnected && st.IsConnected {
		add(models.EventConnect, "Device connected", nil)
	}

	switch {
	case prev.ProcessState == st.ProcessState:
		if st.ProcessState == models.StateRunning && prev.CurrentStepIndex != st.CurrentStepIndex {
			if step, ok := st.CurrentStep(); ok {
				add(models.EventStepChange, "Entered step "+step.Name, map[string]any{"step_index": st.CurrentStepIndex, "step_id": step.ID})
			}
		}
	case st.ProcessState == models.StateRunning && prev.ProcessState == models.StatePaused:
		add(models.EventResume, "Process resumed", recipeMeta())
	case st.ProcessState == models.StateRunning:
		add(models.EventStart, "Process started", recipeMeta())
	case st.ProcessState == models.StatePaused:
		add(models.EventPause, "Process paused", map[string]any{"elapsed_s": st.ElapsedTime})
	case st.ProcessState == models.StateFinished:
		add(models.EventFinish, "Process finished", recipeMeta())
	case st.ProcessState == models.StateError:
		add(models.EventError, "Device reported an error", nil)
	case st.ProcessState == models.StateIdle:
		desc := "Process stopped"
		if prev.ProcessState == models.StateFinished {
			desc = "Finished run cleared"
		}
		add(models.EventStop, desc, map[string]any{"elapsed_s": prev.ElapsedTime})
	}

	if prev.IsConnected && !st.IsConnected {
		add(models.EventDisconnect, "Device disconnected", nil)
	}
	return out
}
