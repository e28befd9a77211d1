package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/skillswap/skillswap-server/internal/model"
	"github.com/skillswap/skillswap-server/internal/notify"
	"github.com/skillswap/skillswap-server/internal/repository"
	"go.uber.org/zap"
)

// memStore is an in-memory SessionStore honoring the same conditional-
// write contract as the Postgres repository.
type memStore struct {
	sessions map[uuid.UUID]*model.Session
	feedback map[uuid.UUID][]model.Feedback

	// transitionFails simulates losing a race: the conditional write
	// reports zero rows no matter what.
	transitionFails bool
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[uuid.UUID]*model.Session),
		feedback: make(map[uuid.UUID][]model.Feedback),
	}
}

func (m *memStore) put(s *model.Session) *model.Session {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	c := *s
	m.sessions[s.ID] = &c
	return s
}

func (m *memStore) Create(_ context.Context, s *model.Session) error {
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.put(s)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*model.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (m *memStore) List(_ context.Context, f repository.ListFilter) ([]*model.Session, error) {
	var out []*model.Session
	for _, s := range m.sessions {
		switch f.Role {
		case model.RoleRequester:
			if s.RequesterID != f.UserID {
				continue
			}
		case model.RoleProvider:
			if s.ProviderID != f.UserID {
				continue
			}
		default:
			if !s.IsParticipant(f.UserID) {
				continue
			}
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.UpcomingOnly && !s.ScheduledAt.After(time.Now()) {
			continue
		}
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memStore) ListSlotHolding(_ context.Context, userID uuid.UUID, statuses []model.SessionStatus) ([]*model.Session, error) {
	holding := make(map[model.SessionStatus]bool)
	for _, st := range statuses {
		holding[st] = true
	}
	var out []*model.Session
	for _, s := range m.sessions {
		if s.IsParticipant(userID) && holding[s.Status] {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memStore) CountByStatus(_ context.Context, userID uuid.UUID) (map[model.SessionStatus]int, error) {
	counts := make(map[model.SessionStatus]int)
	for _, s := range m.sessions {
		if s.IsParticipant(userID) {
			counts[s.Status]++
		}
	}
	return counts, nil
}

func (m *memStore) Transition(_ context.Context, id uuid.UUID, from, to model.SessionStatus, upd repository.TransitionUpdate) (bool, error) {
	if m.transitionFails {
		return false, nil
	}
	s, ok := m.sessions[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	if upd.ResponseMessage != nil {
		s.ResponseMessage = *upd.ResponseMessage
	}
	if upd.RespondedAt != nil {
		s.RespondedAt = upd.RespondedAt
	}
	if upd.CancellationReason != nil {
		s.CancellationReason = *upd.CancellationReason
	}
	if upd.CancelledAt != nil {
		s.CancelledAt = upd.CancelledAt
	}
	if upd.CancelledBy != nil {
		s.CancelledBy = upd.CancelledBy
	}
	if upd.CompletedAt != nil {
		s.CompletedAt = upd.CompletedAt
	}
	if upd.RequesterNote != nil {
		s.RequesterNote = *upd.RequesterNote
	}
	if upd.ProviderNote != nil {
		s.ProviderNote = *upd.ProviderNote
	}
	s.UpdatedAt = time.Now()
	return true, nil
}

func (m *memStore) Reschedule(_ context.Context, id uuid.UUID, scheduledAt time.Time, note *string) (bool, error) {
	if m.transitionFails {
		return false, nil
	}
	s, ok := m.sessions[id]
	if !ok || s.Status != model.SessionStatusPending {
		return false, nil
	}
	s.ScheduledAt = scheduledAt
	if note != nil {
		s.ResponseMessage = *note
	}
	s.UpdatedAt = time.Now()
	return true, nil
}

func (m *memStore) AppendFeedback(_ context.Context, fb *model.Feedback) error {
	for _, existing := range m.feedback[fb.SessionID] {
		if existing.AuthorID == fb.AuthorID {
			return model.NewConflictError("feedback already submitted for this session")
		}
	}
	fb.CreatedAt = time.Now()
	m.feedback[fb.SessionID] = append(m.feedback[fb.SessionID], *fb)
	return nil
}

func (m *memStore) ListFeedback(_ context.Context, sessionID uuid.UUID) ([]model.Feedback, error) {
	return m.feedback[sessionID], nil
}

// memDirectory is an in-memory UserDirectory.
type memDirectory struct {
	users map[uuid.UUID]*model.DirectoryUser
}

func newMemDirectory() *memDirectory {
	return &memDirectory{users: make(map[uuid.UUID]*model.DirectoryUser)}
}

func (m *memDirectory) addActive(id uuid.UUID) {
	m.users[id] = &model.DirectoryUser{ID: id, Status: model.UserStatusActive, Role: "user"}
}

func (m *memDirectory) Resolve(_ context.Context, id uuid.UUID) (*model.DirectoryUser, error) {
	return m.users[id], nil
}

// memReviews records RecordCompletion calls.
type memReviews struct {
	recorded []uuid.UUID
	err      error
}

func (m *memReviews) RecordCompletion(_ context.Context, s *model.Session) error {
	if m.err != nil {
		return m.err
	}
	m.recorded = append(m.recorded, s.ID)
	return nil
}

// capturePublisher records emitted events.
type capturePublisher struct {
	events []string
}

func (p *capturePublisher) Publish(_ context.Context, event string, _ []byte) error {
	p.events = append(p.events, event)
	return nil
}

func newTestDispatcher(pub notify.Publisher) *notify.Dispatcher {
	return notify.NewDispatcher(pub, nil, zap.NewNop())
}
