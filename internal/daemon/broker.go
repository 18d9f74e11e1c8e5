package daemon

import (
	"sync"
	"time"
)

// broker numbers events, keeps the most recent ones and fans each out to
// stream subscribers. Slow subscribers miss events rather than block.
type broker struct {
	mu     sync.Mutex
	limit  int
	lastID int64
	ring   []Event

	lastSub int
	subs    map[int]chan Event
}

func newBroker(limit int) *broker {
	return &broker{limit: max(limit, 1), subs: make(map[int]chan Event)}
}

func (b *broker) emit(typ string, at time.Time, snap Snapshot, d Delta) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastID++
	ev := Event{ID: b.lastID, Type: typ, Timestamp: at, Snapshot: snap, Delta: d}
	b.ring = append(b.ring, ev)
	if over := len(b.ring) - b.limit; over > 0 {
		b.ring = append(b.ring[:0:0], b.ring[over:]...)
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev
}

// recent returns a copy of the buffered events, oldest first.
func (b *broker) recent() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.ring...)
}

// subscribe registers a buffered channel. The returned func unregisters it.
func (b *broker) subscribe(buf int) (<-chan Event, func()) {
	ch := make(chan Event, buf)
	b.mu.Lock()
	b.lastSub++
	id := b.lastSub
	b.subs[id] = ch
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *broker) counts() (events, subscribers int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ring), len(b.subs)
}
