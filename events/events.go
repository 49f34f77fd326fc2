// Package events carries domain events to downstream consumers. Events are
// published only after the state change they describe has been committed.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobmatrimony/domain"
	"jobmatrimony/metrics"
)

const (
	TypeInterestSent         = "interest.sent"
	TypeInterestAccepted     = "interest.accepted"
	TypeInterestRejected     = "interest.rejected"
	TypeMatchCreated         = "match.created"
	TypeApplicationSubmitted = "application.submitted"
	TypeMessageSent          = "message.sent"
)

// Event is one committed domain fact.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Actor      domain.Identity `json:"actor"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    map[string]any  `json:"payload"`
}

// New stamps an event with a fresh id.
func New(eventType string, actor domain.Identity, at time.Time, payload map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Actor:      actor,
		OccurredAt: at.UTC(),
		Payload:    payload,
	}
}

// Publisher ships events to a broker.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types lists the recorded event types in publication order.
func (r *Recorder) Types() []string {
	evs := r.Events()
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type
	}
	return out
}

// Emitter publishes events on behalf of services. A failed publication is
// logged and counted; it never fails the call that produced the event.
type Emitter struct {
	pub    Publisher
	logger *zap.Logger
}

func NewEmitter(pub Publisher, logger *zap.Logger) *Emitter {
	if pub == nil {
		pub = Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{pub: pub, logger: logger.Named("events")}
}

func (e *Emitter) Emit(ctx context.Context, evs ...Event) {
	for _, ev := range evs {
		if err := e.pub.Publish(ctx, ev); err != nil {
			metrics.EventsPublished.WithLabelValues(ev.Type, metrics.OutcomeError).Inc()
			e.logger.Warn("event publication failed",
				zap.String("event_id", ev.ID),
				zap.String("type", ev.Type),
				zap.Error(err),
			)
			continue
		}
		metrics.EventsPublished.WithLabelValues(ev.Type, metrics.OutcomeOK).Inc()
	}
}
