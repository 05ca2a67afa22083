package server

import (
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/metrics"
)

// SSEEvent is the payload pushed to a visitor's open progress streams.
type SSEEvent struct {
	Type       string             `json:"type"` // "progress" or "celebrated"
	MapID      string             `json:"mapId"`
	Progress   *eventmap.Progress `json:"progress,omitempty"`
	Percentage int                `json:"percentage"`
	Complete   bool               `json:"complete"`
}

func progressEvent(mapID string, p eventmap.Progress) SSEEvent {
	return SSEEvent{Type: "progress", MapID: mapID, Progress: &p, Percentage: p.Percentage(), Complete: p.Complete()}
}

// Broker is an in-process pub/sub for SSE events, keyed by visitor and map.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

func topic(email, mapID string) string {
	return strings.ToLower(strings.TrimSpace(email)) + "|" + mapID
}

// Subscribe returns a channel that receives JSON-encoded events for the
// visitor on the given map.
func (b *Broker) Subscribe(email, mapID string) chan []byte {
	ch := make(chan []byte, 16)
	key := topic(email, mapID)
	b.mu.Lock()
	if b.subs[key] == nil {
		b.subs[key] = make(map[chan []byte]struct{})
	}
	b.subs[key][ch] = struct{}{}
	b.mu.Unlock()
	metrics.ProgressSubscribers.Inc()
	return ch
}

func (b *Broker) Unsubscribe(email, mapID string, ch chan []byte) {
	key := topic(email, mapID)
	b.mu.Lock()
	delete(b.subs[key], ch)
	if len(b.subs[key]) == 0 {
		delete(b.subs, key)
	}
	b.mu.Unlock()
	metrics.ProgressSubscribers.Dec()
}

// Publish sends an event to every stream of the visitor on event.MapID.
func (b *Broker) Publish(email string, event SSEEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[topic(email, event.MapID)] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
