// Package device implements the dryer controllers: a simulated chamber and a
// serial link to the controller board. Both expose the same Service surface.
package device

import (
	"context"
	"math"

	"freeze_dryer/internal/models"
)

// Service is the capability set shared by every dryer controller.
//
// Observers receive snapshots in mutation order and may call Status from the
// callback. They must not call the mutating operations synchronously.
type Service interface {
	OnStatusUpdate(fn func(models.DryerStatus)) (unregister func())
	OnData(fn func(string)) (unregister func())

	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	// Process control never fails. Transitions that are not permitted from
	// the current state are ignored.
	StartProcess(recipe models.Recipe)
	PauseProcess()
	ResumeProcess()
	StopProcess()

	SendData(ctx context.Context, text string)
	Status() models.DryerStatus
}

// Approach moves current toward target by at most maxStep, landing exactly on
// target once it is within one step.
func Approach(current, target, maxStep float64) float64 {
	diff := target - current
	if math.Abs(diff) <= maxStep {
		return target
	}
	if diff > 0 {
		return current + maxStep
	}
	return current - maxStep
}

// canStart reports whether a run may begin from st.
func canStart(st models.DryerStatus, r models.Recipe) error {
	if !st.IsConnected {
		return errNotConnected
	}
	if st.ProcessState != models.StateIdle {
		return errBusy
	}
	return r.Validate()
}

func beginRun(st *models.DryerStatus, r models.Recipe) {
	rc := r.Clone()
	st.ActiveRecipe = &rc
	st.ProcessState = models.StateRunning
	st.CurrentStepIndex = 0
	st.ElapsedTime = 0
}
