package models

// ProcessState is the lifecycle position of a drying run.
type ProcessState string

const (
	StateIdle     ProcessState = "idle"
	StateRunning  ProcessState = "running"
	StatePaused   ProcessState = "paused"
	StateFinished ProcessState = "finished"
	StateError    ProcessState = "error" // reserved, not produced by the controllers
)

// Baseline readings for a chamber at rest.
const (
	AmbientTempC             = 20.0
	AtmosphericPressureMTorr = 760000.0
	NoStep                   = -1
)

// DryerStatus is the complete observable snapshot of the dryer.
// Field names double as the payload keys of inbound device status lines.
type DryerStatus struct {
	IsConnected        bool         `json:"isConnected"`
	CurrentStepIndex   int          `json:"currentStepIndex"`
	CurrentTemperature float64      `json:"currentTemperature"` // °C
	CurrentPressure    float64      `json:"currentPressure"`    // mTorr
	ElapsedTime        int          `json:"elapsedTime"`        // seconds since process start
	ProcessState       ProcessState `json:"processState"`
	ActiveRecipe       *Recipe      `json:"activeRecipe"`
}

// BaselineStatus is the status every controller starts from.
func BaselineStatus() DryerStatus {
	return DryerStatus{
		IsConnected:        false,
		CurrentStepIndex:   NoStep,
		CurrentTemperature: AmbientTempC,
		CurrentPressure:    AtmosphericPressureMTorr,
		ElapsedTime:        0,
		ProcessState:       StateIdle,
		ActiveRecipe:       nil,
	}
}

// Clone returns a deep copy; observers only ever receive clones.
func (s DryerStatus) Clone() DryerStatus {
	out := s
	if s.ActiveRecipe != nil {
		r := s.ActiveRecipe.Clone()
		out.ActiveRecipe = &r
	}
	return out
}

// CurrentStep returns the active step, if the step index points into the active recipe.
func (s DryerStatus) CurrentStep() (RecipeStep, bool) {
	if s.ActiveRecipe == nil || s.CurrentStepIndex < 0 || s.CurrentStepIndex >= len(s.ActiveRecipe.Steps) {
		return RecipeStep{}, false
	}
	return s.ActiveRecipe.Steps[s.CurrentStepIndex], true
}

// ResetProcess clears every process field, leaving connection and sensor readings as they are.
func (s *DryerStatus) ResetProcess() {
	s.ProcessState = StateIdle
	s.CurrentStepIndex = NoStep
	s.ActiveRecipe = nil
	s.ElapsedTime = 0
}

// ConnectionType selects which device implementation backs the dryer.
type ConnectionType string

const (
	ConnectionMock   ConnectionType = "mock"
	ConnectionSerial ConnectionType = "serial"
)
