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

// raceMessage is returned when a conditional write loses to a
// concurrent transition on the same session. The caller re-fetches and
// retries at its own layer; the core does not.
const raceMessage = "session was updated concurrently, please retry"

// ResponseService applies every mutation after creation: the
// provider's response, rescheduling, cancellation, completion, the
// administrative no-show mark and post-completion feedback.
type ResponseService struct {
	store      SessionStore
	dispatcher *notify.Dispatcher
	reviews    ReviewStore
	logger     *zap.Logger
}

func NewResponseService(
	store SessionStore,
	dispatcher *notify.Dispatcher,
	reviews ReviewStore,
	logger *zap.Logger,
) *ResponseService {
	return &ResponseService{
		store:      store,
		dispatcher: dispatcher,
		reviews:    reviews,
		logger:     logger,
	}
}

// fetchParticipant loads a session on behalf of a participant.
// Non-participants get not-found, never forbidden.
func (s *ResponseService) fetchParticipant(ctx context.Context, sessionID, callerID uuid.UUID) (*model.Session, error) {
	sess, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil || !sess.IsParticipant(callerID) {
		return nil, model.NewNotFoundError("session not found")
	}
	return sess, nil
}

// Respond applies the provider's accept or decline to a pending
// session.
func (s *ResponseService) Respond(ctx context.Context, sessionID, callerID uuid.UUID, accept bool, message string) (*model.Session, error) {
	if len(message) > model.MaxMessageLength {
		return nil, model.NewValidationError("response message is too long")
	}

	sess, err := s.fetchParticipant(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}

	action := model.ActionAccept
	event := notify.EventSessionAccepted
	if !accept {
		action = model.ActionDecline
		event = notify.EventSessionRejected
	}

	if err := model.AuthorizeAction(sess, action, callerID); err != nil {
		return nil, err
	}

	to, err := model.NextStatus(sess.Status, action)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	upd := repository.TransitionUpdate{RespondedAt: &now}
	if message != "" {
		upd.ResponseMessage = &message
	}

	ok, err := s.store.Transition(ctx, sess.ID, sess.Status, to, upd)
	if err != nil {
		return nil, fmt.Errorf("apply response: %w", err)
	}
	if !ok {
		return nil, model.NewConflictError(raceMessage)
	}

	sess.Status = to
	sess.RespondedAt = &now
	if message != "" {
		sess.ResponseMessage = message
	}

	s.logger.Info("Session response applied",
		zap.String("session_id", sess.ID.String()),
		zap.String("provider_id", callerID.String()),
		zap.String("status", string(to)),
	)

	s.dispatcher.Emit(ctx, event, sess)

	return sess, nil
}

// ProposeAlternative lets the provider counter a pending request with
// a different time. The session stays pending; the requester may
// cancel if the new time does not suit.
func (s *ResponseService) ProposeAlternative(ctx context.Context, sessionID, callerID uuid.UUID, scheduledAt time.Time, message string) (*model.Session, error) {
	if len(message) > model.MaxMessageLength {
		return nil, model.NewValidationError("response message is too long")
	}
	if !scheduledAt.After(time.Now()) {
		return nil, model.NewValidationError("alternative time must be in the future")
	}

	sess, err := s.fetchParticipant(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}

	if callerID != sess.ProviderID {
		return nil, model.NewAuthorizationError("Only the session provider can propose an alternative time")
	}
	if sess.Status != model.SessionStatusPending {
		return nil, model.NewConflictError(fmt.Sprintf("Cannot propose an alternative time for a %s session", sess.Status))
	}

	var note *string
	if message != "" {
		note = &message
	}

	ok, err := s.store.Reschedule(ctx, sess.ID, scheduledAt, note)
	if err != nil {
		return nil, fmt.Errorf("reschedule session: %w", err)
	}
	if !ok {
		return nil, model.NewConflictError(raceMessage)
	}

	sess.ScheduledAt = scheduledAt
	if message != "" {
		sess.ResponseMessage = message
	}

	s.logger.Info("Alternative time proposed",
		zap.String("session_id", sess.ID.String()),
		zap.String("provider_id", callerID.String()),
		zap.Time("scheduled_at", scheduledAt),
	)

	return sess, nil
}

// Cancel cancels a pending or accepted session with at least the
// minimum notice.
func (s *ResponseService) Cancel(ctx context.Context, sessionID, callerID uuid.UUID, reason string) (*model.Session, error) {
	if len(reason) > model.MaxMessageLength {
		return nil, model.NewValidationError("cancellation reason is too long")
	}

	sess, err := s.fetchParticipant(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}

	if err := model.AuthorizeAction(sess, model.ActionCancel, callerID); err != nil {
		return nil, err
	}

	to, err := model.NextStatus(sess.Status, model.ActionCancel)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if sess.TimeUntil(now) < model.MinCancellationNotice {
		return nil, model.NewConflictError("cancelling with less than 2 hours notice is not allowed")
	}

	upd := repository.TransitionUpdate{
		CancelledAt: &now,
		CancelledBy: &callerID,
	}
	if reason != "" {
		upd.CancellationReason = &reason
	}

	ok, err := s.store.Transition(ctx, sess.ID, sess.Status, to, upd)
	if err != nil {
		return nil, fmt.Errorf("cancel session: %w", err)
	}
	if !ok {
		return nil, model.NewConflictError(raceMessage)
	}

	sess.Status = to
	sess.CancelledAt = &now
	sess.CancelledBy = &callerID
	if reason != "" {
		sess.CancellationReason = reason
	}

	s.logger.Info("Session cancelled",
		zap.String("session_id", sess.ID.String()),
		zap.String("cancelled_by", callerID.String()),
		zap.String("role", string(sess.RoleOf(callerID))),
	)

	s.dispatcher.Emit(ctx, notify.EventSessionCancelled, sess)

	return sess, nil
}

// Complete marks an accepted session as held once its scheduled window
// has fully elapsed, and optionally records the caller's note.
func (s *ResponseService) Complete(ctx context.Context, sessionID, callerID uuid.UUID, note string) (*model.Session, error) {
	if len(note) > model.MaxMessageLength {
		return nil, model.NewValidationError("completion note is too long")
	}

	sess, err := s.fetchParticipant(ctx, sessionID, callerID)
	if err != nil {
		return nil, err
	}

	if err := model.AuthorizeAction(sess, model.ActionComplete, callerID); err != nil {
		return nil, err
	}

	to, err := model.NextStatus(sess.Status, model.ActionComplete)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if now.Before(sess.EndTime()) {
		return nil, model.NewConflictError("session has not ended yet")
	}

	upd := repository.TransitionUpdate{CompletedAt: &now}
	if note != "" {
		switch sess.RoleOf(callerID) {
		case model.RoleRequester:
			upd.RequesterNote = &note
			sess.RequesterNote = note
		case model.RoleProvider:
			upd.ProviderNote = &note
			sess.ProviderNote = note
		}
	}

	ok, err := s.store.Transition(ctx, sess.ID, sess.Status, to, upd)
	if err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}
	if !ok {
		return nil, model.NewConflictError(raceMessage)
	}

	sess.Status = to
	sess.CompletedAt = &now

	s.logger.Info("Session completed",
		zap.String("session_id", sess.ID.String()),
		zap.String("completed_by", callerID.String()),
	)

	s.dispatcher.Emit(ctx, notify.EventSessionCompleted, sess)

	if s.reviews != nil {
		if err := s.reviews.RecordCompletion(ctx, sess); err != nil {
			s.logger.Warn("Failed to record completion with review store",
				zap.String("session_id", sess.ID.String()),
				zap.Error(err),
			)
		}
	}

	return sess, nil
}

// MarkNoShow is the administrative edge for accepted sessions where a
// party never appeared. It is not reachable through Respond; callers
// are expected to be vetted by the admin routing layer.
func (s *ResponseService) MarkNoShow(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	sess, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return nil, model.NewNotFoundError("session not found")
	}

	to, err := model.NextStatus(sess.Status, model.ActionMarkNoShow)
	if err != nil {
		return nil, err
	}

	ok, err := s.store.Transition(ctx, sess.ID, sess.Status, to, repository.TransitionUpdate{})
	if err != nil {
		return nil, fmt.Errorf("mark no-show: %w", err)
	}
	if !ok {
		return nil, model.NewConflictError(raceMessage)
	}

	sess.Status = to

	s.logger.Info("Session marked as no-show",
		zap.String("session_id", sess.ID.String()),
	)

	return sess, nil
}

// SubmitFeedback appends a participant's feedback to a completed
// session.
func (s *ResponseService) SubmitFeedback(ctx context.Context, sessionID, authorID uuid.UUID, rating int, comment string) (*model.Feedback, error) {
	if rating < model.MinRating || rating > model.MaxRating {
		return nil, model.NewValidationError(fmt.Sprintf(
			"rating must be between %d and %d", model.MinRating, model.MaxRating,
		))
	}
	if len(comment) > model.MaxMessageLength {
		return nil, model.NewValidationError("feedback comment is too long")
	}

	sess, err := s.fetchParticipant(ctx, sessionID, authorID)
	if err != nil {
		return nil, err
	}

	if sess.Status != model.SessionStatusCompleted {
		return nil, model.NewConflictError("feedback is only allowed on completed sessions")
	}

	fb := &model.Feedback{
		SessionID: sess.ID,
		AuthorID:  authorID,
		Rating:    rating,
		Comment:   comment,
	}

	if err := s.store.AppendFeedback(ctx, fb); err != nil {
		if model.KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("append feedback: %w", err)
	}

	s.logger.Info("Feedback recorded",
		zap.String("session_id", sess.ID.String()),
		zap.String("author_id", authorID.String()),
		zap.Int("rating", rating),
	)

	return fb, nil
}
