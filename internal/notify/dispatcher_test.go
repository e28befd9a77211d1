package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/skillswap/skillswap-server/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPublisher struct {
	err    error
	events []string
	bodies [][]byte
}

func (p *stubPublisher) Publish(_ context.Context, event string, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	p.bodies = append(p.bodies, body)
	return nil
}

type stubOutbox struct {
	entries []model.OutboxEntry
}

func (o *stubOutbox) Enqueue(_ context.Context, event string, payload []byte) error {
	o.entries = append(o.entries, model.OutboxEntry{Event: event, Payload: payload})
	return nil
}

func TestDispatcherPublishes(t *testing.T) {
	pub := &stubPublisher{}
	outbox := &stubOutbox{}
	d := NewDispatcher(pub, outbox, zap.NewNop())

	sess := &model.Session{Status: model.SessionStatusPending}
	d.Emit(context.Background(), EventSessionCreated, sess)

	require.Len(t, pub.events, 1)
	assert.Equal(t, EventSessionCreated, pub.events[0])
	assert.Empty(t, outbox.entries)

	var env envelope
	require.NoError(t, json.Unmarshal(pub.bodies[0], &env))
	assert.Equal(t, EventSessionCreated, env.Event)
	require.NotNil(t, env.Session)
	assert.Equal(t, model.SessionStatusPending, env.Session.Status)
}

func TestDispatcherParksFailedPublish(t *testing.T) {
	pub := &stubPublisher{err: errors.New("broker down")}
	outbox := &stubOutbox{}
	d := NewDispatcher(pub, outbox, zap.NewNop())

	// Emit never surfaces the failure to the caller
	d.Emit(context.Background(), EventSessionCancelled, &model.Session{})

	require.Len(t, outbox.entries, 1)
	assert.Equal(t, EventSessionCancelled, outbox.entries[0].Event)
	assert.NotEmpty(t, outbox.entries[0].Payload)
}

func TestDispatcherWithoutOutbox(t *testing.T) {
	pub := &stubPublisher{err: errors.New("broker down")}
	d := NewDispatcher(pub, nil, zap.NewNop())

	// must not panic
	d.Emit(context.Background(), EventSessionCompleted, &model.Session{})
}

func TestReviewBridge(t *testing.T) {
	pub := &stubPublisher{}
	bridge := NewReviewBridge(pub)

	sess := &model.Session{Skill: model.SkillSnapshot{Name: "Go"}}
	require.NoError(t, bridge.RecordCompletion(context.Background(), sess))

	require.Len(t, pub.events, 1)
	assert.Equal(t, reviewRoutingKey, pub.events[0])

	pub.err = errors.New("broker down")
	require.Error(t, bridge.RecordCompletion(context.Background(), sess))
}
