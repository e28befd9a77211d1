package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/skillswap/skillswap-server/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubQueue struct {
	due       []model.OutboxEntry
	delivered []uuid.UUID
	failed    []uuid.UUID
}

func (q *stubQueue) ListDue(_ context.Context, _ int) ([]model.OutboxEntry, error) {
	return q.due, nil
}

func (q *stubQueue) MarkDelivered(_ context.Context, id uuid.UUID) error {
	q.delivered = append(q.delivered, id)
	return nil
}

func (q *stubQueue) RecordFailure(_ context.Context, id uuid.UUID, _ time.Time) error {
	q.failed = append(q.failed, id)
	return nil
}

type stubPublisher struct {
	err    error
	events []string
}

func (p *stubPublisher) Publish(_ context.Context, event string, _ []byte) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func TestDrainDeliversDueEntries(t *testing.T) {
	entry := model.OutboxEntry{ID: uuid.New(), Event: "session.created", Payload: []byte(`{}`)}
	queue := &stubQueue{due: []model.OutboxEntry{entry}}
	pub := &stubPublisher{}

	s := NewScheduler(queue, pub, time.Minute, zap.NewNop())
	s.drain(context.Background())

	assert.Equal(t, []string{"session.created"}, pub.events)
	require.Len(t, queue.delivered, 1)
	assert.Equal(t, entry.ID, queue.delivered[0])
	assert.Empty(t, queue.failed)
}

func TestDrainRecordsFailures(t *testing.T) {
	entry := model.OutboxEntry{ID: uuid.New(), Event: "session.cancelled", Payload: []byte(`{}`)}
	queue := &stubQueue{due: []model.OutboxEntry{entry}}
	pub := &stubPublisher{err: errors.New("broker down")}

	s := NewScheduler(queue, pub, time.Minute, zap.NewNop())
	s.drain(context.Background())

	assert.Empty(t, queue.delivered)
	require.Len(t, queue.failed, 1)
	assert.Equal(t, entry.ID, queue.failed[0])
}

func TestRetryDelayDoublesAndCaps(t *testing.T) {
	assert.Equal(t, time.Minute, retryDelay(1))
	assert.Equal(t, 2*time.Minute, retryDelay(2))
	assert.Equal(t, 8*time.Minute, retryDelay(4))
	assert.Equal(t, maxRetryDelay, retryDelay(20))
}
