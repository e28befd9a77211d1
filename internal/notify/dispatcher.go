package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/skillswap/skillswap-server/internal/model"
	"go.uber.org/zap"
)

// Session lifecycle events emitted toward the notification subsystem.
const (
	EventSessionCreated   = "session.created"
	EventSessionAccepted  = "session.accepted"
	EventSessionRejected  = "session.rejected"
	EventSessionCancelled = "session.cancelled"
	EventSessionCompleted = "session.completed"
)

// envelope is the wire shape of a session event.
type envelope struct {
	Event      string         `json:"event"`
	OccurredAt time.Time      `json:"occurred_at"`
	Session    *model.Session `json:"session"`
}

// OutboxStore parks events whose publish failed.
type OutboxStore interface {
	Enqueue(ctx context.Context, event string, payload []byte) error
}

// Dispatcher emits session events fire-and-forget: a publish failure
// is logged and parked in the outbox for the retry scheduler, never
// surfaced to the caller, so a broken broker cannot roll back a
// session transition.
type Dispatcher struct {
	publisher Publisher
	outbox    OutboxStore
	logger    *zap.Logger
}

func NewDispatcher(publisher Publisher, outbox OutboxStore, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		publisher: publisher,
		outbox:    outbox,
		logger:    logger,
	}
}

// Emit publishes one event with a snapshot of the session.
func (d *Dispatcher) Emit(ctx context.Context, event string, sess *model.Session) {
	body, err := json.Marshal(envelope{
		Event:      event,
		OccurredAt: time.Now().UTC(),
		Session:    sess,
	})
	if err != nil {
		d.logger.Error("Failed to encode session event",
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}

	if err := d.publisher.Publish(ctx, event, body); err != nil {
		d.logger.Warn("Failed to publish session event, parking in outbox",
			zap.String("event", event),
			zap.String("session_id", sess.ID.String()),
			zap.Error(err),
		)
		if d.outbox == nil {
			return
		}
		if err := d.outbox.Enqueue(ctx, event, body); err != nil {
			d.logger.Error("Failed to enqueue session event",
				zap.String("event", event),
				zap.Error(err),
			)
		}
	}
}
