package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/skillswap/skillswap-server/internal/model"
	"github.com/skillswap/skillswap-server/internal/notify"
	"github.com/skillswap/skillswap-server/internal/repository"
	"go.uber.org/zap"
)

type BookingService struct {
	store      SessionStore
	directory  UserDirectory
	dispatcher *notify.Dispatcher
	logger     *zap.Logger
}

func NewBookingService(
	store SessionStore,
	directory UserDirectory,
	dispatcher *notify.Dispatcher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		store:      store,
		directory:  directory,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

type CreateSessionInput struct {
	RequesterID     uuid.UUID
	ProviderID      uuid.UUID
	Skill           model.SkillSnapshot
	ScheduledAt     time.Time
	DurationMinutes int
	SessionType     model.SessionType
	MeetingLink     string
	Location        string
	Message         string
}

// CreateSession validates a booking request and persists it as
// pending. Conflict checking is deliberately not part of creation: the
// overlap report is advisory and requested separately, and a provider
// may accept a session despite an overlap on the requester's side.
func (s *BookingService) CreateSession(ctx context.Context, in CreateSessionInput) (*model.Session, error) {
	if in.RequesterID == in.ProviderID {
		return nil, model.NewValidationError("cannot book a session with yourself")
	}
	if in.Skill.Name == "" {
		return nil, model.NewValidationError("skill name is required")
	}
	if in.DurationMinutes < model.MinDurationMinutes || in.DurationMinutes > model.MaxDurationMinutes {
		return nil, model.NewValidationError(fmt.Sprintf(
			"session duration must be between %d and %d minutes",
			model.MinDurationMinutes, model.MaxDurationMinutes,
		))
	}
	if !in.ScheduledAt.After(time.Now()) {
		return nil, model.NewValidationError("session must be scheduled in the future")
	}
	if len(in.Message) > model.MaxMessageLength {
		return nil, model.NewValidationError("request message is too long")
	}

	venue, err := model.NewVenue(in.SessionType, in.MeetingLink, in.Location)
	if err != nil {
		return nil, err
	}

	if err := s.resolveActive(ctx, in.RequesterID, "requester"); err != nil {
		return nil, err
	}
	if err := s.resolveActive(ctx, in.ProviderID, "provider"); err != nil {
		return nil, err
	}

	sess := &model.Session{
		RequesterID:     in.RequesterID,
		ProviderID:      in.ProviderID,
		Skill:           in.Skill,
		ScheduledAt:     in.ScheduledAt,
		DurationMinutes: in.DurationMinutes,
		Venue:           venue,
		Status:          model.SessionStatusPending,
		RequestMessage:  in.Message,
	}

	if err := s.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("Session requested",
		zap.String("session_id", sess.ID.String()),
		zap.String("requester_id", sess.RequesterID.String()),
		zap.String("provider_id", sess.ProviderID.String()),
		zap.String("skill", sess.Skill.Name),
		zap.Time("scheduled_at", sess.ScheduledAt),
	)

	s.dispatcher.Emit(ctx, notify.EventSessionCreated, sess)

	return sess, nil
}

// resolveActive checks that a party exists and is in good standing.
func (s *BookingService) resolveActive(ctx context.Context, id uuid.UUID, party string) error {
	user, err := s.directory.Resolve(ctx, id)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", party, err)
	}
	if user == nil {
		return model.NewNotFoundError(party + " not found")
	}
	if !user.Active() {
		return model.NewValidationError(party + " account is not active")
	}
	return nil
}

// GetSession returns a session visible to the caller. Sessions the
// caller does not participate in come back as not-found rather than
// forbidden, so ids cannot be probed for existence.
func (s *BookingService) GetSession(ctx context.Context, sessionID, callerID uuid.UUID) (*model.Session, error) {
	sess, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil || !sess.IsParticipant(callerID) {
		return nil, model.NewNotFoundError("session not found")
	}

	feedback, err := s.store.ListFeedback(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}
	sess.Feedback = feedback

	return sess, nil
}

type ListSessionsInput struct {
	CallerID     uuid.UUID
	Role         model.Role // RoleRequester = requested, RoleProvider = received
	Status       model.SessionStatus
	UpcomingOnly bool
	Limit        int
	Offset       int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListSessions lists the caller's sessions with filters and
// pagination.
func (s *BookingService) ListSessions(ctx context.Context, in ListSessionsInput) ([]*model.Session, error) {
	if in.Status != "" && !model.ValidStatus(in.Status) {
		return nil, model.NewValidationError("unknown status: " + string(in.Status))
	}
	if in.Limit <= 0 {
		in.Limit = defaultPageSize
	}
	if in.Limit > maxPageSize {
		in.Limit = maxPageSize
	}
	if in.Offset < 0 {
		in.Offset = 0
	}

	sessions, err := s.store.List(ctx, repository.ListFilter{
		UserID:       in.CallerID,
		Role:         in.Role,
		Status:       in.Status,
		UpcomingOnly: in.UpcomingOnly,
		Limit:        in.Limit,
		Offset:       in.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return sessions, nil
}

// Stats returns the caller's session counts by status.
func (s *BookingService) Stats(ctx context.Context, userID uuid.UUID) (*model.SessionStats, error) {
	counts, err := s.store.CountByStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	stats := &model.SessionStats{ByStatus: counts}
	for _, n := range counts {
		stats.Total += n
	}

	return stats, nil
}
