package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/skillswap/skillswap-server/internal/model"
	"github.com/skillswap/skillswap-server/internal/repository"
)

// SessionStore is the durable session record. Transition and
// Reschedule are conditional writes keyed on the expected current
// status; false means the row moved underneath the caller.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	List(ctx context.Context, f repository.ListFilter) ([]*model.Session, error)
	ListSlotHolding(ctx context.Context, userID uuid.UUID, statuses []model.SessionStatus) ([]*model.Session, error)
	CountByStatus(ctx context.Context, userID uuid.UUID) (map[model.SessionStatus]int, error)
	Transition(ctx context.Context, id uuid.UUID, from, to model.SessionStatus, upd repository.TransitionUpdate) (bool, error)
	Reschedule(ctx context.Context, id uuid.UUID, scheduledAt time.Time, note *string) (bool, error)
	AppendFeedback(ctx context.Context, fb *model.Feedback) error
	ListFeedback(ctx context.Context, sessionID uuid.UUID) ([]model.Feedback, error)
}

// UserDirectory resolves marketplace users. The core never writes
// user data.
type UserDirectory interface {
	Resolve(ctx context.Context, id uuid.UUID) (*model.DirectoryUser, error)
}

// ReviewStore is the external review subsystem, told about completed
// sessions so it can create the public Review record. Best effort: a
// failure here never undoes a completion.
type ReviewStore interface {
	RecordCompletion(ctx context.Context, s *model.Session) error
}
