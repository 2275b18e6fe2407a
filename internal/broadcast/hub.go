package broadcast

import (
	"log/slog"
	"sync"

	"eeg-replay/internal/platform/metrics"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// DefaultSendBuffer is the per-subscriber queue length used when none is given.
const DefaultSendBuffer = 64

// Hub is the set of live subscribers. Broadcast serializes an event once and
// offers the frame to every subscriber; there is no retry and no backlog
// beyond each subscriber's send buffer.
type Hub struct {
	mu         sync.RWMutex
	subs       map[uuid.UUID]*subscriber
	closed     bool
	clock      clockwork.Clock
	log        *slog.Logger
	metrics    *metrics.Metrics
	bufferSize int
}

// NewHub returns an empty Hub. m may be nil to disable metric recording.
// bufferSize <= 0 selects DefaultSendBuffer.
func NewHub(clock clockwork.Clock, log *slog.Logger, m *metrics.Metrics, bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultSendBuffer
	}
	return &Hub{
		subs:       make(map[uuid.UUID]*subscriber),
		clock:      clock,
		log:        log,
		metrics:    m,
		bufferSize: bufferSize,
	}
}

// Subscribe registers conn and returns its identity. The greeting frames are
// queued before the subscriber becomes visible to Broadcast, so they are the
// first frames written to the connection.
func (h *Hub) Subscribe(conn Conn, greeting ...[]byte) uuid.UUID {
	id := uuid.New()
	sub := newSubscriber(conn, h.clock, h.bufferSize, greeting)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.stop()
		return id
	}
	h.subs[id] = sub
	n := len(h.subs)
	h.mu.Unlock()

	h.log.Info("subscriber connected", slog.String("subscriber_id", id.String()), slog.Int("subscribers", n))
	return id
}

// Unsubscribe removes the subscriber and closes its connection.
// Unknown ids are ignored.
func (h *Hub) Unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	delete(h.subs, id)
	n := len(h.subs)
	h.mu.Unlock()

	if !ok {
		return
	}
	sub.stop()
	h.log.Info("subscriber disconnected", slog.String("subscriber_id", id.String()), slog.Int("subscribers", n))
}

// Broadcast serializes event and delivers it to every ready subscriber.
func (h *Hub) Broadcast(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("broadcast marshal failed", slog.String("error", err.Error()))
		return
	}
	h.Publish(data)
}

// Publish delivers an already serialized frame. It returns the number of
// subscribers that accepted it.
func (h *Hub) Publish(data []byte) int {
	h.mu.RLock()
	snapshot := make([]*subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	sent, dropped := 0, 0
	for _, sub := range snapshot {
		if sub.offer(data) {
			sent++
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		h.log.Debug("frames dropped", slog.Int("dropped", dropped))
		if h.metrics != nil {
			h.metrics.AddFramesDropped(dropped)
		}
	}
	return sent
}

// Count returns the number of registered subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber. Later subscriptions are closed immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := h.subs
	h.subs = make(map[uuid.UUID]*subscriber)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
	h.log.Info("hub closed", slog.Int("disconnected", len(subs)))
}
