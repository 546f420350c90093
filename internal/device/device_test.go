package device

import (
	"math"
	"testing"

	"freeze_dryer/internal/models"
)

func TestApproach(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                    string
		current, target, maxStp float64
		want                    float64
	}{
		{"snaps when within step", 20, 19.7, 0.5, 19.7},
		{"snaps at exactly one step", -9.5, -10, 0.5, -10},
		{"moves down by step", 20, -10, 0.5, 19.5},
		{"moves up by step", 500, 760000, 5000, 5500},
		{"already at target", 4, 4, 0.5, 4},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Approach(tt.current, tt.target, tt.maxStp); got != tt.want {
				t.Fatalf("Approach(%v, %v, %v) = %v, want %v", tt.current, tt.target, tt.maxStp, got, tt.want)
			}
		})
	}
}

func TestApproach_NeverOvershoots(t *testing.T) {
	for cur := -50.0; cur <= 50; cur += 0.7 {
		for _, target := range []float64{-35, -10, 0, 4, 15} {
			got := Approach(cur, target, 0.5)
			if math.Abs(target-cur) <= 0.5 {
				if got != target {
					t.Fatalf("cur=%v target=%v: expected snap, got %v", cur, target, got)
				}
				continue
			}
			if got == target {
				t.Fatalf("cur=%v target=%v: reached target early", cur, target)
			}
			if math.Abs(math.Abs(got-cur)-0.5) > 1e-9 {
				t.Fatalf("cur=%v target=%v: moved %v", cur, target, got-cur)
			}
			if math.Abs(target-got) >= math.Abs(target-cur) {
				t.Fatalf("cur=%v target=%v: moved away to %v", cur, target, got)
			}
		}
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	var h hub[int]
	var a, b []int
	unA := h.add(func(v int) { a = append(a, v) })
	unB := h.add(func(v int) { b = append(b, v) })

	h.publish(1)
	unA()
	unA()
	h.publish(2)
	unB()
	h.publish(3)

	if len(a) != 1 || a[0] != 1 {
		t.Fatalf("a = %v", a)
	}
	if len(b) != 2 || b[1] != 2 {
		t.Fatalf("b = %v", b)
	}
	if h.len() != 0 {
		t.Fatalf("expected empty registry, got %d", h.len())
	}
	h.add(nil)()
}

func TestStatusCell_ObserversGetPrivateSnapshots(t *testing.T) {
	c := newStatusCell()
	var got []models.DryerStatus
	c.observers.add(func(st models.DryerStatus) {
		if st.ActiveRecipe != nil {
			st.ActiveRecipe.Name = "tampered"
		}
		got = append(got, st)
	})
	c.observers.add(func(st models.DryerStatus) { got = append(got, st) })

	r := models.DefaultRecipes()[0]
	c.update(func(st *models.DryerStatus) bool {
		beginRun(st, r)
		return true
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[1].ActiveRecipe.Name != r.Name || c.get().ActiveRecipe.Name != r.Name {
		t.Fatalf("an observer mutated shared state")
	}
	if c.update(func(*models.DryerStatus) bool { return false }) {
		t.Fatalf("unchanged update must report false")
	}
	if len(got) != 2 {
		t.Fatalf("unchanged update must not notify")
	}
}

func TestStatusCell_ObserverMayReadStatus(t *testing.T) {
	c := newStatusCell()
	var seen models.ProcessState
	c.observers.add(func(models.DryerStatus) { seen = c.get().ProcessState })
	c.update(func(st *models.DryerStatus) bool {
		st.ProcessState = models.StatePaused
		return true
	})
	if seen != models.StatePaused {
		t.Fatalf("observer saw %q", seen)
	}
}
