package events

import (
	"encoding/json"
	"sync"

	pkgerrors "github.com/pkg/errors"
)

const defaultBuffer = 16

// Hub fans daemon events out to websocket sessions. A session that falls
// behind loses its oldest pending events, so the last one it reads always
// reflects the current engine.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
}

// Subscription receives events on C until Close is called.
type Subscription struct {
	C <-chan Event

	ch   chan Event
	hub  *Hub
	once sync.Once
}

// NewHub returns a hub whose subscriptions buffer up to buffer events.
// A non-positive buffer selects the default.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{subs: make(map[*Subscription]struct{}), buffer: buffer}
}

func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Event, h.buffer)
	s := &Subscription{C: ch, ch: ch, hub: h}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Close detaches the subscription and closes C. It is safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		close(s.ch)
		s.hub.mu.Unlock()
	})
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish encodes payload and delivers it to every subscription without
// blocking. A nil hub discards the event.
func (h *Hub) Publish(name string, payload any) error {
	if h == nil {
		return nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode %s event", name)
	}
	msg := Event{Name: name, Data: b}

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		for delivered := false; !delivered; {
			select {
			case s.ch <- msg:
				delivered = true
			default:
				// Full: make room by discarding the oldest event.
				select {
				case <-s.ch:
				default:
				}
			}
		}
	}
	return nil
}
