package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRecipe is wrapped by every Recipe.Validate failure.
var ErrInvalidRecipe = errors.New("invalid recipe")

// RecipeStep is one stage of a drying program.
type RecipeStep struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Temperature float64 `json:"temperature" yaml:"temperature"` // °C
	Pressure    float64 `json:"pressure" yaml:"pressure"`       // mTorr
	Duration    float64 `json:"duration" yaml:"duration"`       // minutes
}

// DurationSeconds is the step length in seconds of simulated time.
func (s RecipeStep) DurationSeconds() float64 {
	return s.Duration * 60
}

// Recipe is an ordered drying program. Step order defines process order.
type Recipe struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Steps       []RecipeStep `json:"steps" yaml:"steps"`
}

// Validate checks the structural rules a recipe must satisfy before it can run.
func (r Recipe) Validate() error {
	if len(r.Steps) == 0 {
		return fmt.Errorf("%w: recipe %q has no steps", ErrInvalidRecipe, r.Name)
	}
	seen := make(map[string]struct{}, len(r.Steps))
	for i, st := range r.Steps {
		if strings.TrimSpace(st.ID) == "" {
			return fmt.Errorf("%w: step %d (%s) has no id", ErrInvalidRecipe, i, st.Name)
		}
		if _, dup := seen[st.ID]; dup {
			return fmt.Errorf("%w: duplicate step id %q", ErrInvalidRecipe, st.ID)
		}
		seen[st.ID] = struct{}{}
		// NaN fails every comparison, so test for the valid range.
		if !(st.Duration > 0) {
			return fmt.Errorf("%w: step %d (%s) duration must be > 0, got %v", ErrInvalidRecipe, i, st.Name, st.Duration)
		}
		if !(st.Pressure >= 0) {
			return fmt.Errorf("%w: step %d (%s) pressure must be >= 0, got %v", ErrInvalidRecipe, i, st.Name, st.Pressure)
		}
	}
	return nil
}

// TotalDuration sums the duration of every step.
func (r Recipe) TotalDuration() time.Duration {
	var total float64
	for _, st := range r.Steps {
		total += st.DurationSeconds()
	}
	return time.Duration(total * float64(time.Second))
}

// Clone returns a copy that shares no memory with r.
func (r Recipe) Clone() Recipe {
	out := r
	if r.Steps != nil {
		out.Steps = make([]RecipeStep, len(r.Steps))
		copy(out.Steps, r.Steps)
	}
	return out
}

// DefaultRecipes returns the built-in drying programs.
func DefaultRecipes() []Recipe {
	return []Recipe{
		{
			ID:          "rec_default_1",
			Name:        "Standard Bubble Hash Cycle",
			Description: "A balanced cycle for most bubble hash, based on Harvest Right standards.",
			Steps: []RecipeStep{
				{ID: "step1", Name: "Freezing", Temperature: -30, Pressure: 500, Duration: 120},
				{ID: "step2", Name: "Initial Dry", Temperature: -10, Pressure: 500, Duration: 360},
				{ID: "step3", Name: "Main Dry", Temperature: 4, Pressure: 500, Duration: 480},
				{ID: "step4", Name: "Final Dry", Temperature: 15, Pressure: 500, Duration: 240},
			},
		},
		{
			ID:          "rec_default_2",
			Name:        "Cold & Low Temp Cycle",
			Description: "Preserves terpenes with a colder, longer drying process.",
			Steps: []RecipeStep{
				{ID: "step1", Name: "Deep Freeze", Temperature: -35, Pressure: 500, Duration: 180},
				{ID: "step2", Name: "Sub-Zero Dry", Temperature: -15, Pressure: 400, Duration: 480},
				{ID: "step3", Name: "Cold Dry", Temperature: 0, Pressure: 400, Duration: 600},
				{ID: "step4", Name: "Ramp to Finish", Temperature: 10, Pressure: 600, Duration: 120},
			},
		},
	}
}
