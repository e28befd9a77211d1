package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/skillswap/skillswap-server/internal/model"
)

// sessionView is the wire representation of a session: the stored
// fields plus the derived ones, computed at read time relative to the
// caller.
type sessionView struct {
	*model.Session
	EndTime          time.Time   `json:"end_time"`
	DurationHours    float64     `json:"duration_hours"`
	TimeUntilMinutes int64       `json:"time_until_minutes"`
	Participants     []uuid.UUID `json:"participants"`
	UserRole         model.Role  `json:"user_role"`
}

func newSessionView(s *model.Session, caller uuid.UUID) sessionView {
	return sessionView{
		Session:          s,
		EndTime:          s.EndTime(),
		DurationHours:    s.DurationHours(),
		TimeUntilMinutes: int64(s.TimeUntil(time.Now()).Minutes()),
		Participants:     s.Participants(),
		UserRole:         s.RoleOf(caller),
	}
}

func newSessionViews(sessions []*model.Session, caller uuid.UUID) []sessionView {
	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, newSessionView(s, caller))
	}
	return views
}
