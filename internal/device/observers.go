package device

import (
	"sync"

	"freeze_dryer/internal/models"
)

// hub is an ordered set of callbacks.
type hub[T any] struct {
	mu   sync.Mutex
	next uint64
	subs []subscriber[T]
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// add registers fn and returns an idempotent unregister func.
func (h *hub[T]) add(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}
	h.mu.Lock()
	h.next++
	id := h.next
	h.subs = append(h.subs, subscriber[T]{id: id, fn: fn})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *hub[T]) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
			return
		}
	}
}

// publish calls every subscriber outside the registry lock.
func (h *hub[T]) publish(v T) {
	h.publishEach(func() T { return v })
}

// publishEach hands every subscriber its own value built by mk.
func (h *hub[T]) publishEach(mk func() T) {
	h.mu.Lock()
	subs := make([]subscriber[T], len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	for _, s := range subs {
		s.fn(mk())
	}
}

func (h *hub[T]) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// statusCell owns a controller's DryerStatus. Mutations run under mu, and the
// dispatch lock is taken before mu is released so snapshots reach observers in
// mutation order.
type statusCell struct {
	mu        sync.Mutex
	dispatch  sync.Mutex
	status    models.DryerStatus
	observers hub[models.DryerStatus]
}

func newStatusCell() *statusCell {
	return &statusCell{status: models.BaselineStatus()}
}

func (c *statusCell) get() models.DryerStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status.Clone()
}

// update applies fn to the status. When fn reports a change the resulting
// snapshot is published.
func (c *statusCell) update(fn func(st *models.DryerStatus) bool) bool {
	c.mu.Lock()
	if !fn(&c.status) {
		c.mu.Unlock()
		return false
	}
	snap := c.status.Clone()
	c.dispatch.Lock()
	c.mu.Unlock()

	c.observers.publishEach(snap.Clone)
	c.dispatch.Unlock()
	return true
}
