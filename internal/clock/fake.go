package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a virtual clock. Time only moves through Advance, which runs due
// callbacks synchronously on the calling goroutine.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	tasks []*fakeTask
}

type fakeTask struct {
	c      *Fake
	at     time.Time
	period time.Duration
	seq    uint64
	fn     func()
	done   bool
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	return f.schedule(d, 0, fn)
}

func (f *Fake) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		panic("clock: non-positive period")
	}
	return f.schedule(d, d, fn)
}

func (f *Fake) schedule(d, period time.Duration, fn func()) *fakeTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d < 0 {
		d = 0
	}
	f.seq++
	t := &fakeTask{c: f, at: f.now.Add(d), period: period, seq: f.seq, fn: fn}
	f.tasks = append(f.tasks, t)
	return t
}

// Advance moves virtual time forward by d, running every callback that falls
// due on the way in time order. Callbacks may schedule or stop other tasks.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		t := f.nextDueLocked(target)
		if t == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		f.now = t.at
		if t.period > 0 {
			t.at = t.at.Add(t.period)
		} else {
			t.done = true
			f.removeLocked(t)
		}
		fn := t.fn
		f.mu.Unlock()

		fn()
	}
}

// Pending reports how many tasks are still scheduled.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

func (f *Fake) nextDueLocked(target time.Time) *fakeTask {
	sort.SliceStable(f.tasks, func(i, j int) bool {
		if f.tasks[i].at.Equal(f.tasks[j].at) {
			return f.tasks[i].seq < f.tasks[j].seq
		}
		return f.tasks[i].at.Before(f.tasks[j].at)
	})
	if len(f.tasks) == 0 || f.tasks[0].at.After(target) {
		return nil
	}
	return f.tasks[0]
}

func (f *Fake) removeLocked(t *fakeTask) {
	for i, x := range f.tasks {
		if x == t {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return
		}
	}
}

func (t *fakeTask) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.c.removeLocked(t)
	return true
}
