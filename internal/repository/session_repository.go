package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skillswap/skillswap-server/internal/model"
	"github.com/skillswap/skillswap-server/internal/repository/base"
)

const sessionColumns = `
	id, requester_id, provider_id,
	skill_name, skill_category, skill_level,
	scheduled_at, duration_minutes,
	session_type, meeting_link, location,
	status, request_message, response_message, cancellation_reason,
	responded_at, cancelled_at, cancelled_by, completed_at,
	requester_note, provider_note,
	created_at, updated_at`

type SessionRepository struct {
	*base.Repository
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{Repository: base.NewRepository(pool)}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*model.Session, error) {
	var s model.Session
	err := row.Scan(
		&s.ID, &s.RequesterID, &s.ProviderID,
		&s.Skill.Name, &s.Skill.Category, &s.Skill.Level,
		&s.ScheduledAt, &s.DurationMinutes,
		&s.Venue.Type, &s.Venue.MeetingLink, &s.Venue.Location,
		&s.Status, &s.RequestMessage, &s.ResponseMessage, &s.CancellationReason,
		&s.RespondedAt, &s.CancelledAt, &s.CancelledBy, &s.CompletedAt,
		&s.RequesterNote, &s.ProviderNote,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persists a new session and fills in the generated timestamps.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	query := `
		INSERT INTO sessions (
			id, requester_id, provider_id,
			skill_name, skill_category, skill_level,
			scheduled_at, duration_minutes,
			session_type, meeting_link, location,
			status, request_message
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		s.ID, s.RequesterID, s.ProviderID,
		s.Skill.Name, s.Skill.Category, s.Skill.Level,
		s.ScheduledAt, s.DurationMinutes,
		s.Venue.Type, s.Venue.MeetingLink, s.Venue.Location,
		s.Status, s.RequestMessage,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// GetByID fetches a session, returning (nil, nil) when it does not exist.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	query := `SELECT` + sessionColumns + ` FROM sessions WHERE id = $1`

	s, err := scanSession(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return s, nil
}

// ListFilter narrows a session listing. Role scopes to sessions the
// user requested or received; zero value means both.
type ListFilter struct {
	UserID       uuid.UUID
	Role         model.Role
	Status       model.SessionStatus
	UpcomingOnly bool
	Limit        int
	Offset       int
}

// List returns the user's sessions, newest first, honoring the filter.
func (r *SessionRepository) List(ctx context.Context, f ListFilter) ([]*model.Session, error) {
	query := `SELECT` + sessionColumns + ` FROM sessions`
	args := []any{f.UserID}

	switch f.Role {
	case model.RoleRequester:
		query += ` WHERE requester_id = $1`
	case model.RoleProvider:
		query += ` WHERE provider_id = $1`
	default:
		query += ` WHERE (requester_id = $1 OR provider_id = $1)`
	}

	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if f.UpcomingOnly {
		query += ` AND scheduled_at > now()`
	}

	query += ` ORDER BY scheduled_at DESC`

	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// ListSlotHolding returns the user's sessions in a status that holds a
// calendar slot, for conflict scanning.
func (r *SessionRepository) ListSlotHolding(ctx context.Context, userID uuid.UUID, statuses []model.SessionStatus) ([]*model.Session, error) {
	raw := make([]string, len(statuses))
	for i, s := range statuses {
		raw[i] = string(s)
	}

	query := `SELECT` + sessionColumns + `
		FROM sessions
		WHERE (requester_id = $1 OR provider_id = $1)
		  AND status = ANY($2)
		ORDER BY scheduled_at
	`

	rows, err := r.Query(ctx, query, userID, raw)
	if err != nil {
		return nil, fmt.Errorf("list slot-holding sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// CountByStatus returns how many sessions the user participates in,
// per status.
func (r *SessionRepository) CountByStatus(ctx context.Context, userID uuid.UUID) (map[model.SessionStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM sessions
		WHERE requester_id = $1 OR provider_id = $1
		GROUP BY status
	`

	rows, err := r.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("count sessions by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.SessionStatus]int)
	for rows.Next() {
		var status model.SessionStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

// TransitionUpdate carries the fields a lifecycle edge writes together
// with the status. Nil fields are left untouched.
type TransitionUpdate struct {
	ResponseMessage    *string
	RespondedAt        *time.Time
	CancellationReason *string
	CancelledAt        *time.Time
	CancelledBy        *uuid.UUID
	CompletedAt        *time.Time
	RequesterNote      *string
	ProviderNote       *string
}

// Transition moves a session from one status to another in a single
// conditional update. It returns false when the session is no longer
// in the expected status, which is how a lost race between two
// concurrent callers surfaces.
func (r *SessionRepository) Transition(ctx context.Context, id uuid.UUID, from, to model.SessionStatus, upd TransitionUpdate) (bool, error) {
	query := `
		UPDATE sessions
		SET status = $3,
		    response_message    = COALESCE($4, response_message),
		    responded_at        = COALESCE($5, responded_at),
		    cancellation_reason = COALESCE($6, cancellation_reason),
		    cancelled_at        = COALESCE($7, cancelled_at),
		    cancelled_by        = COALESCE($8, cancelled_by),
		    completed_at        = COALESCE($9, completed_at),
		    requester_note      = COALESCE($10, requester_note),
		    provider_note       = COALESCE($11, provider_note),
		    updated_at          = now()
		WHERE id = $1 AND status = $2
	`

	affected, err := r.ExecAffected(
		ctx, query,
		id, from, to,
		upd.ResponseMessage, upd.RespondedAt,
		upd.CancellationReason, upd.CancelledAt, upd.CancelledBy,
		upd.CompletedAt,
		upd.RequesterNote, upd.ProviderNote,
	)
	if err != nil {
		return false, fmt.Errorf("transition session: %w", err)
	}

	return affected > 0, nil
}

// Reschedule moves a pending session to a new time, conditional on it
// still being pending.
func (r *SessionRepository) Reschedule(ctx context.Context, id uuid.UUID, scheduledAt time.Time, note *string) (bool, error) {
	query := `
		UPDATE sessions
		SET scheduled_at = $2,
		    response_message = COALESCE($3, response_message),
		    updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`

	affected, err := r.ExecAffected(ctx, query, id, scheduledAt, note)
	if err != nil {
		return false, fmt.Errorf("reschedule session: %w", err)
	}

	return affected > 0, nil
}

// AppendFeedback adds one participant's feedback entry. A second entry
// from the same author trips the unique constraint and comes back as a
// conflict.
func (r *SessionRepository) AppendFeedback(ctx context.Context, fb *model.Feedback) error {
	query := `
		INSERT INTO session_feedback (session_id, author_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.QueryRow(ctx, query, fb.SessionID, fb.AuthorID, fb.Rating, fb.Comment).Scan(&fb.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.NewConflictError("feedback already submitted for this session")
		}
		return fmt.Errorf("append feedback: %w", err)
	}

	return nil
}

// ListFeedback returns a session's feedback entries, oldest first.
func (r *SessionRepository) ListFeedback(ctx context.Context, sessionID uuid.UUID) ([]model.Feedback, error) {
	query := `
		SELECT session_id, author_id, rating, comment, created_at
		FROM session_feedback
		WHERE session_id = $1
		ORDER BY created_at
	`

	rows, err := r.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var entries []model.Feedback
	for rows.Next() {
		var fb model.Feedback
		if err := rows.Scan(&fb.SessionID, &fb.AuthorID, &fb.Rating, &fb.Comment, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		entries = append(entries, fb)
	}

	return entries, rows.Err()
}
