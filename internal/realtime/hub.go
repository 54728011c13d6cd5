// Package realtime pushes lifecycle events to connected browsers over
// server-sent events.
package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"cardhub/internal/logger"
	"cardhub/internal/models"
	"cardhub/internal/notify"
)

const EventContractsDeactivated = "contracts.deactivated"

type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// CascadeEvent is the payload of EventContractsDeactivated.
type CascadeEvent struct {
	Cause         models.Kind `json:"cause"`
	EntityID      int64       `json:"entity_id"`
	EffectiveDate models.Date `json:"effective_date"`
	ContractIDs   []int64     `json:"contract_ids"`
}

type Subscriber struct {
	ID       uuid.UUID
	Outbound chan Event
}

// Hub fans events out to subscribers. A subscriber whose buffer is full
// misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscriber]struct{}
	buffer int
	log    *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{
		subs:   make(map[*Subscriber]struct{}),
		buffer: 16,
		log:    log.With("component", "realtime"),
	}
}

func (h *Hub) Subscribe() *Subscriber {
	s := &Subscriber{ID: uuid.New(), Outbound: make(chan Event, h.buffer)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("[realtime] subscribed", "subscriber", s.ID)
	return s
}

// Unsubscribe removes s and closes its channel. Calling it twice is safe.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.Outbound)
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		select {
		case s.Outbound <- ev:
		default:
			h.log.Warn("[realtime] dropping event, outbound buffer full", "subscriber", s.ID, "event", ev.Name)
		}
	}
}

// NotifyCascade lets the hub sit next to the other notifiers.
func (h *Hub) NotifyCascade(_ context.Context, notice notify.CascadeNotice) error {
	ids := make([]int64, 0, len(notice.Contracts))
	for _, c := range notice.Contracts {
		ids = append(ids, c.ID)
	}
	h.Broadcast(Event{Name: EventContractsDeactivated, Data: CascadeEvent{
		Cause:         notice.Cause,
		EntityID:      notice.EntityID,
		EffectiveDate: notice.EffectiveDate,
		ContractIDs:   ids,
	}})
	return nil
}
