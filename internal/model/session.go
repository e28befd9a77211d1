package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"   // waiting for the provider to respond
	SessionStatusAccepted  SessionStatus = "accepted"  // provider confirmed the slot
	SessionStatusRejected  SessionStatus = "rejected"  // provider declined
	SessionStatusCancelled SessionStatus = "cancelled" // cancelled by either participant
	SessionStatusCompleted SessionStatus = "completed" // session took place
	SessionStatusNoShow    SessionStatus = "no-show"   // administrative mark, one party never appeared
)

// ValidStatus reports whether s is one of the known session statuses.
func ValidStatus(s SessionStatus) bool {
	switch s {
	case SessionStatusPending, SessionStatusAccepted, SessionStatusRejected,
		SessionStatusCancelled, SessionStatusCompleted, SessionStatusNoShow:
		return true
	}
	return false
}

const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 480

	MaxMessageLength = 1000

	MinRating = 1
	MaxRating = 5
)

// SkillSnapshot is the skill as it looked when the session was requested.
// It is copied onto the session, not referenced, so later edits to the
// skill catalog do not rewrite history.
type SkillSnapshot struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Level    string `json:"level"`
}

type Role string

const (
	RoleRequester Role = "requester"
	RoleProvider  Role = "provider"
	RoleNone      Role = "none"
)

// Feedback is a lightweight post-session note left by a participant.
// It is embedded in the session and separate from the public Review
// entity owned by the review subsystem.
type Feedback struct {
	SessionID uuid.UUID `json:"session_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	ID              uuid.UUID     `json:"id"`
	RequesterID     uuid.UUID     `json:"requester_id"`
	ProviderID      uuid.UUID     `json:"provider_id"`
	Skill           SkillSnapshot `json:"skill"`
	ScheduledAt     time.Time     `json:"scheduled_at"`
	DurationMinutes int           `json:"duration_minutes"`
	Venue           Venue         `json:"venue"`
	Status          SessionStatus `json:"status"`

	RequestMessage     string `json:"request_message,omitempty"`
	ResponseMessage    string `json:"response_message,omitempty"`
	CancellationReason string `json:"cancellation_reason,omitempty"`

	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy *uuid.UUID `json:"cancelled_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	RequesterNote string `json:"requester_note,omitempty"`
	ProviderNote  string `json:"provider_note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Loaded on demand, not part of the row itself.
	Feedback []Feedback `json:"feedback,omitempty"`
}

// EndTime is the instant the session finishes.
func (s *Session) EndTime() time.Time {
	return s.ScheduledAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// DurationHours is the session length in hours.
func (s *Session) DurationHours() float64 {
	return float64(s.DurationMinutes) / 60
}

// TimeUntil is how long until the session starts; negative once it has.
func (s *Session) TimeUntil(now time.Time) time.Duration {
	return s.ScheduledAt.Sub(now)
}

// Participants returns both user ids, requester first.
func (s *Session) Participants() []uuid.UUID {
	return []uuid.UUID{s.RequesterID, s.ProviderID}
}

// IsParticipant reports whether userID is the requester or the provider.
func (s *Session) IsParticipant(userID uuid.UUID) bool {
	return userID == s.RequesterID || userID == s.ProviderID
}

// RoleOf returns the caller's role on this session.
func (s *Session) RoleOf(userID uuid.UUID) Role {
	switch userID {
	case s.RequesterID:
		return RoleRequester
	case s.ProviderID:
		return RoleProvider
	}
	return RoleNone
}

// Overlaps reports whether the session overlaps the half-open interval
// [start, end). Back-to-back sessions do not overlap.
func (s *Session) Overlaps(start, end time.Time) bool {
	return s.ScheduledAt.Before(end) && start.Before(s.EndTime())
}

// SessionStats are per-user counters returned by the stats endpoint.
type SessionStats struct {
	Total    int                   `json:"total"`
	ByStatus map[SessionStatus]int `json:"by_status"`
}

// ConflictReport is the advisory result of a double-booking check.
// The two lists are kept separate so a caller can tell "I'm
// double-booked" apart from "they're double-booked".
type ConflictReport struct {
	HasConflicts         bool       `json:"has_conflicts"`
	UserConflicts        []*Session `json:"user_conflicts"`
	CounterpartConflicts []*Session `json:"counterpart_conflicts,omitempty"`
}
