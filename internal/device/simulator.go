package device

import (
	"context"
	"time"

	"freeze_dryer/internal/clock"
	"freeze_dryer/internal/logger"
	"freeze_dryer/internal/models"
)

// Simulator defaults.
const (
	DefaultTick         = 1 * time.Second
	DefaultConnectDelay = 500 * time.Millisecond
	DefaultFinishDelay  = 5 * time.Second
	TempRatePerTick     = 0.5    // °C
	PressureRatePerTick = 5000.0 // mTorr
)

// SimOption configures a Simulator.
type SimOption func(*Simulator)

func WithClock(c clock.Clock) SimOption { return func(s *Simulator) { s.clk = c } }

func WithTick(d time.Duration) SimOption {
	return func(s *Simulator) {
		if d > 0 {
			s.tickEvery = d
		}
	}
}

// WithConnectDelay sets the artificial connect latency. Zero connects at once.
func WithConnectDelay(d time.Duration) SimOption {
	return func(s *Simulator) {
		if d >= 0 {
			s.connectDelay = d
		}
	}
}

// WithFinishDelay sets how long a finished run stays visible before it is reset.
func WithFinishDelay(d time.Duration) SimOption {
	return func(s *Simulator) {
		if d >= 0 {
			s.finishDelay = d
		}
	}
}

// WithRates overrides the per-tick convergence rates.
func WithRates(tempPerTick, pressurePerTick float64) SimOption {
	return func(s *Simulator) {
		if tempPerTick > 0 {
			s.tempRate = tempPerTick
		}
		if pressurePerTick > 0 {
			s.pressureRate = pressurePerTick
		}
	}
}

// Simulator is a self-contained chamber model advanced one second of
// process time per tick.
type Simulator struct {
	log  *logger.Logger
	clk  clock.Clock
	cell *statusCell
	data hub[string]

	tickEvery    time.Duration
	connectDelay time.Duration
	finishDelay  time.Duration
	tempRate     float64
	pressureRate float64

	// guarded by cell.mu
	tick      clock.Timer
	finish    clock.Timer
	tickGen   uint64
	runID     uint64
	stepStart int
	total     time.Duration
}

var _ Service = (*Simulator)(nil)

func NewSimulator(log *logger.Logger, opts ...SimOption) *Simulator {
	if log == nil {
		log = logger.Nop()
	}
	s := &Simulator{
		log:          log,
		clk:          clock.Real(),
		cell:         newStatusCell(),
		tickEvery:    DefaultTick,
		connectDelay: DefaultConnectDelay,
		finishDelay:  DefaultFinishDelay,
		tempRate:     TempRatePerTick,
		pressureRate: PressureRatePerTick,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) OnStatusUpdate(fn func(models.DryerStatus)) func() {
	return s.cell.observers.add(fn)
}

// OnData registers a raw-data observer. The simulator never produces raw data.
func (s *Simulator) OnData(fn func(string)) func() {
	return s.data.add(fn)
}

func (s *Simulator) Status() models.DryerStatus {
	return s.cell.get()
}

// Connect waits out the connect delay, then reports the chamber as connected.
func (s *Simulator) Connect(ctx context.Context) error {
	if s.connectDelay > 0 {
		ready := make(chan struct{})
		t := s.clk.AfterFunc(s.connectDelay, func() { close(ready) })
		select {
		case <-ready:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}

	s.cell.update(func(st *models.DryerStatus) bool {
		st.IsConnected = true
		return true
	})
	s.log.Infow("sim_connected")
	return nil
}

func (s *Simulator) Disconnect(_ context.Context) error {
	s.cell.update(func(st *models.DryerStatus) bool {
		s.cancelTimersLocked()
		st.ResetProcess()
		st.IsConnected = false
		return true
	})
	s.log.Infow("sim_disconnected")
	return nil
}

func (s *Simulator) StartProcess(recipe models.Recipe) {
	var reason error
	started := s.cell.update(func(st *models.DryerStatus) bool {
		if reason = canStart(*st, recipe); reason != nil {
			return false
		}
		s.cancelTimersLocked()
		s.runID++
		s.stepStart = 0
		s.total = recipe.TotalDuration()
		beginRun(st, recipe)
		s.startTickLocked()
		return true
	})
	if !started {
		s.log.Debugw("sim_start_ignored", "recipe_id", recipe.ID, "reason", reason)
		return
	}
	s.log.Infow("sim_started", "recipe_id", recipe.ID, "steps", len(recipe.Steps), "total", recipe.TotalDuration())
}

func (s *Simulator) PauseProcess() {
	s.cell.update(func(st *models.DryerStatus) bool {
		if st.ProcessState != models.StateRunning {
			return false
		}
		s.stopTickLocked()
		st.ProcessState = models.StatePaused
		return true
	})
}

// ResumeProcess restarts ticking at the same cadence and notifies immediately.
func (s *Simulator) ResumeProcess() {
	s.cell.update(func(st *models.DryerStatus) bool {
		if st.ProcessState != models.StatePaused {
			return false
		}
		st.ProcessState = models.StateRunning
		s.startTickLocked()
		return true
	})
}

// StopProcess resets the run from any state and always notifies.
func (s *Simulator) StopProcess() {
	s.cell.update(func(st *models.DryerStatus) bool {
		s.cancelTimersLocked()
		st.ResetProcess()
		return true
	})
}

// SendData has no effect on the simulated chamber.
func (s *Simulator) SendData(_ context.Context, text string) {
	s.log.Debugw("sim_send_data", "bytes", len(text))
}

// RunDuration is the planned length of the current or last started run.
func (s *Simulator) RunDuration() time.Duration {
	s.cell.mu.Lock()
	defer s.cell.mu.Unlock()
	return s.total
}

func (s *Simulator) onTick(gen uint64) {
	s.cell.update(func(st *models.DryerStatus) bool {
		if gen != s.tickGen || st.ProcessState != models.StateRunning {
			return false
		}
		step, ok := st.CurrentStep()
		if !ok {
			return false
		}

		st.ElapsedTime++
		st.CurrentTemperature = Approach(st.CurrentTemperature, step.Temperature, s.tempRate)
		st.CurrentPressure = Approach(st.CurrentPressure, step.Pressure, s.pressureRate)

		if float64(st.ElapsedTime-s.stepStart) >= step.DurationSeconds() {
			if st.CurrentStepIndex < len(st.ActiveRecipe.Steps)-1 {
				st.CurrentStepIndex++
				s.stepStart = st.ElapsedTime
			} else {
				s.finishLocked(st)
			}
		}
		return true
	})
}

func (s *Simulator) finishLocked(st *models.DryerStatus) {
	s.stopTickLocked()
	st.ProcessState = models.StateFinished
	run := s.runID
	s.finish = s.clk.AfterFunc(s.finishDelay, func() { s.onFinishDelay(run) })
}

// onFinishDelay resets the run only if it is still the same finished run.
func (s *Simulator) onFinishDelay(run uint64) {
	s.cell.update(func(st *models.DryerStatus) bool {
		if run != s.runID || st.ProcessState != models.StateFinished {
			return false
		}
		s.finish = nil
		st.ResetProcess()
		return true
	})
}

func (s *Simulator) startTickLocked() {
	s.stopTickLocked()
	gen := s.tickGen
	s.tick = s.clk.Every(s.tickEvery, func() { s.onTick(gen) })
}

// stopTickLocked cancels the tick and invalidates any tick already in flight.
func (s *Simulator) stopTickLocked() {
	s.tickGen++
	if s.tick != nil {
		s.tick.Stop()
		s.tick = nil
	}
}

func (s *Simulator) cancelTimersLocked() {
	s.stopTickLocked()
	if s.finish != nil {
		s.finish.Stop()
		s.finish = nil
	}
}
