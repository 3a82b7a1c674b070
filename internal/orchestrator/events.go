package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/GriffinCanCode/aiba/internal/trace"
)

// EventType names a handler outcome.
type EventType string

const (
	EventMemoryIngested   EventType = "memory.ingested"
	EventTextAnalyzed     EventType = "text.analyzed"
	EventAudioTranscribed EventType = "audio.transcribed"
	EventScreenRecorded   EventType = "screen.recorded"
)

// Event is one handler outcome published to subscribers.
type Event struct {
	Type    EventType `json:"type"`
	TraceID string    `json:"trace_id,omitempty"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

// Bus fans events out to subscribers. Publishing never blocks: a subscriber
// whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// cancel func unregisters it and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish sends an event of type t carrying payload to every subscriber.
func (b *Bus) Publish(ctx context.Context, t EventType, payload any) {
	ev := Event{Type: t, TraceID: trace.ID(ctx), Time: time.Now(), Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			trace.Logger(ctx).Debug("event dropped, subscriber full", "type", t)
		}
	}
}
