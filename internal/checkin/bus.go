package checkin

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventplanner/backend/internal/clock"
	"github.com/eventplanner/backend/internal/models"
)

// Message is the envelope delivered to live-feed subscribers.
type Message struct {
	Event string          `json:"event"`
	Data  *models.CheckIn `json:"data,omitempty"`
}

const (
	// MessageReady is sent once on subscribe, before any check-ins, so a
	// client can tell "connected, no events yet" from "never connected".
	MessageReady = "ready"
	// MessageCheckIn carries one check-in record.
	MessageCheckIn = "checkin"
)

// Subscription is one live-feed consumer registered under an event id.
type Subscription struct {
	ID      string
	EventID uuid.UUID
	ch      chan Message
}

// Messages returns the subscriber's delivery channel. It is closed when the
// subscription is removed from the bus.
func (s *Subscription) Messages() <-chan Message {
	return s.ch
}

// SubmitInput carries one check-in submission.
type SubmitInput struct {
	Scope      models.CheckInScope
	ScopeRef   *string
	AttendeeID *string
	Name       string
	Code       string
}

// Archiver receives every accepted submission for out-of-band persistence.
// Implementations must never fail the submitter.
type Archiver interface {
	Archive(ctx context.Context, rec models.CheckIn)
}

// Bus multiplexes check-in submissions to the live subscribers of each event.
// The registry is partitioned per event id: the bus-level lock only guards the
// room map, and each room serializes its own membership and broadcasts, so
// traffic on one event never contends with another's.
type Bus struct {
	mu       sync.RWMutex
	rooms    map[uuid.UUID]*room
	seq      atomic.Uint64
	buffer   int
	clock    clock.Clock
	archiver Archiver
	logger   *zap.Logger
}

type room struct {
	mu sync.Mutex
	// closed is set when the room is removed from the bus map. A subscriber
	// that raced the removal must not join it: nothing resolves the room
	// anymore, so its messages would never arrive.
	closed bool
	subs   map[string]*Subscription
}

// NewBus creates a check-in bus. buffer is the per-subscriber channel
// capacity; archiver may be nil (live-only mode).
func NewBus(buffer int, clk clock.Clock, archiver Archiver, logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer < 1 {
		buffer = 64
	}
	return &Bus{
		rooms:    make(map[uuid.UUID]*room),
		buffer:   buffer,
		clock:    clk,
		archiver: archiver,
		logger:   logger,
	}
}

// Subscribe registers a new subscriber under eventID. The ready sentinel is
// queued before Subscribe returns.
func (b *Bus) Subscribe(eventID uuid.UUID) *Subscription {
	sub := &Subscription{
		ID:      uuid.New().String(),
		EventID: eventID,
		ch:      make(chan Message, b.buffer),
	}

	for {
		b.mu.Lock()
		r := b.rooms[eventID]
		if r == nil {
			r = &room{subs: make(map[string]*Subscription)}
			b.rooms[eventID] = r
		}
		b.mu.Unlock()

		r.mu.Lock()
		if r.closed {
			// lost a race with the empty-room cleanup; the next pass
			// installs a fresh room
			r.mu.Unlock()
			continue
		}
		r.subs[sub.ID] = sub
		sub.ch <- Message{Event: MessageReady} // fresh buffered channel, cannot block
		r.mu.Unlock()
		break
	}

	b.logger.Debug("subscriber joined", zap.String("subscriber_id", sub.ID), zap.String("event_id", eventID.String()))
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Idempotent; driven
// by the transport's completion, error or timeout signal.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.RLock()
	r := b.rooms[sub.EventID]
	b.mu.RUnlock()
	if r == nil {
		return
	}

	r.mu.Lock()
	if _, ok := r.subs[sub.ID]; ok {
		delete(r.subs, sub.ID)
		close(sub.ch)
	}
	empty := len(r.subs) == 0
	r.mu.Unlock()

	if empty {
		b.mu.Lock()
		if cur := b.rooms[sub.EventID]; cur == r {
			cur.mu.Lock()
			if len(cur.subs) == 0 {
				cur.closed = true
				delete(b.rooms, sub.EventID)
			}
			cur.mu.Unlock()
		}
		b.mu.Unlock()
	}

	b.logger.Debug("subscriber left", zap.String("subscriber_id", sub.ID), zap.String("event_id", sub.EventID.String()))
}

// Submit records a check-in and broadcasts it to the event's current
// subscribers. Delivery is best-effort, at most once per subscriber; a
// subscriber that cannot accept the message is pruned. Errors never reach the
// submitter.
func (b *Bus) Submit(ctx context.Context, eventID uuid.UUID, in SubmitInput) models.CheckIn {
	scope := in.Scope
	if scope == "" {
		scope = models.ScopeEvent
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = in.Code
	}

	rec := models.CheckIn{
		ID:         b.seq.Add(1),
		EventID:    eventID,
		Scope:      scope,
		ScopeRef:   in.ScopeRef,
		AttendeeID: in.AttendeeID,
		Name:       name,
		Code:       in.Code,
		At:         b.clock.Now(),
	}

	if b.archiver != nil {
		b.archiver.Archive(ctx, rec)
	}
	b.broadcast(eventID, Message{Event: MessageCheckIn, Data: &rec})
	return rec
}

// SubscriberCount returns the number of live subscribers for an event.
func (b *Bus) SubscriberCount(eventID uuid.UUID) int {
	b.mu.RLock()
	r := b.rooms[eventID]
	b.mu.RUnlock()
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// broadcast fans one message out to a room. The room lock is held across the
// fan-out, which serializes broadcasts per event and keeps each subscriber's
// stream in submission order.
func (b *Bus) broadcast(eventID uuid.UUID, msg Message) {
	b.mu.RLock()
	r := b.rooms[eventID]
	b.mu.RUnlock()
	if r == nil {
		return
	}

	r.mu.Lock()
	var dead []*Subscription
	for _, sub := range r.subs {
		select {
		case sub.ch <- msg:
		default:
			// full buffer means the consumer stopped draining; treat as dead
			dead = append(dead, sub)
		}
	}
	for _, sub := range dead {
		delete(r.subs, sub.ID)
		close(sub.ch)
		b.logger.Warn("pruned dead subscriber",
			zap.String("subscriber_id", sub.ID),
			zap.String("event_id", eventID.String()))
	}
	r.mu.Unlock()
}
