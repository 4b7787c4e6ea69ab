// Package notify turns backend error codes into user-facing messages and
// fans them out to whoever renders them. The bus is an explicitly
// constructed object rather than package-level state so it can be wired and
// torn down per process, and tested in isolation.
package notify

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTitle heads error notices that do not set their own.
const DefaultTitle = "Aviso"

// dedupWindow suppresses identical notices raised nearly simultaneously,
// e.g. overlapping poll fetches failing with the same error.
const dedupWindow = 1200 * time.Millisecond

// Notice is one error surfaced to the user.
type Notice struct {
	Title   string
	Message string
}

type Listener func(Notice)

// Bus carries error notices from any layer to the frontend. Identical
// (title, message) pairs within the dedup window collapse into one notice.
type Bus struct {
	clock clockwork.Clock

	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
	lastKey   string
	lastAt    time.Time
}

func NewBus(clock clockwork.Clock) *Bus {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Bus{
		clock:     clock,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers a listener and returns its unsubscribe func.
func (b *Bus) Subscribe(fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Publish normalizes the raw error value and notifies listeners under the
// default title.
func (b *Bus) Publish(value string) {
	b.PublishTitled(DefaultTitle, value)
}

// PublishTitled normalizes the raw error value and notifies listeners.
func (b *Bus) PublishTitled(title, value string) {
	message := NormalizeMessage(value)
	now := b.clock.Now()
	key := title + "::" + message

	b.mu.Lock()
	if b.lastKey == key && now.Sub(b.lastAt) < dedupWindow {
		b.mu.Unlock()
		return
	}
	b.lastKey = key
	b.lastAt = now

	targets := make([]Listener, 0, len(b.listeners))
	for _, fn := range b.listeners {
		targets = append(targets, fn)
	}
	b.mu.Unlock()

	notice := Notice{Title: title, Message: message}
	for _, fn := range targets {
		fn(notice)
	}
}
