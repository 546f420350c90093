package service

import (
	"sync"
	"unicode/utf8"
)

const defaultTerminalLimit = 64 * 1024

// TerminalService keeps a bounded tail of raw device text and fans it out to subscribers.
type TerminalService struct {
	limit int

	mu   sync.Mutex
	buf  []byte
	next int
	subs map[int]func(string)
}

func NewTerminalService(limit int) *TerminalService {
	if limit <= 0 {
		limit = defaultTerminalLimit
	}
	return &TerminalService{limit: limit, subs: make(map[int]func(string))}
}

// Append records text and delivers it to every subscriber.
// Subscribers run on the device read path and must not block.
func (t *TerminalService) Append(text string) {
	if text == "" {
		return
	}
	t.mu.Lock()
	t.buf = append(t.buf, text...)
	if over := len(t.buf) - t.limit; over > 0 {
		for over < len(t.buf) && !utf8.RuneStart(t.buf[over]) {
			over++
		}
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	subs := make([]func(string), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(text)
	}
}

func (t *TerminalService) Tail() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

func (t *TerminalService) Subscribe(fn func(string)) func() {
	_, unsubscribe := t.SubscribeWithTail(fn)
	return unsubscribe
}

// SubscribeWithTail returns the current tail and registers fn in one step, so
// every chunk lands in exactly one of the two.
func (t *TerminalService) SubscribeWithTail(fn func(string)) (string, func()) {
	t.mu.Lock()
	t.next++
	id := t.next
	t.subs[id] = fn
	tail := string(t.buf)
	t.mu.Unlock()

	return tail, func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}
