package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatusLegalEdges(t *testing.T) {
	cases := []struct {
		from   SessionStatus
		action Action
		to     SessionStatus
	}{
		{SessionStatusPending, ActionAccept, SessionStatusAccepted},
		{SessionStatusPending, ActionDecline, SessionStatusRejected},
		{SessionStatusPending, ActionCancel, SessionStatusCancelled},
		{SessionStatusAccepted, ActionCancel, SessionStatusCancelled},
		{SessionStatusAccepted, ActionComplete, SessionStatusCompleted},
		{SessionStatusAccepted, ActionMarkNoShow, SessionStatusNoShow},
	}

	for _, tc := range cases {
		to, err := NextStatus(tc.from, tc.action)
		require.NoError(t, err, "%s/%s", tc.from, tc.action)
		assert.Equal(t, tc.to, to)
	}
}

func TestNextStatusTerminalStatesHaveNoEdges(t *testing.T) {
	terminals := []SessionStatus{
		SessionStatusRejected,
		SessionStatusCancelled,
		SessionStatusCompleted,
		SessionStatusNoShow,
	}
	actions := []Action{ActionAccept, ActionDecline, ActionCancel, ActionComplete, ActionMarkNoShow}

	for _, from := range terminals {
		assert.True(t, IsTerminal(from), "%s should be terminal", from)
		for _, action := range actions {
			_, err := NextStatus(from, action)
			require.Error(t, err, "%s/%s", from, action)
			assert.Equal(t, KindConflict, KindOf(err))
		}
	}
}

func TestNextStatusConflictNamesCurrentStatus(t *testing.T) {
	_, err := NextStatus(SessionStatusAccepted, ActionAccept)
	require.Error(t, err)
	assert.Equal(t, "Cannot respond to a accepted session", err.Error())

	_, err = NextStatus(SessionStatusCompleted, ActionCancel)
	require.Error(t, err)
	assert.Equal(t, "Cannot cancel a completed session", err.Error())
}

func TestAuthorizeAction(t *testing.T) {
	requester := uuid.New()
	provider := uuid.New()
	stranger := uuid.New()

	s := &Session{
		RequesterID: requester,
		ProviderID:  provider,
		Status:      SessionStatusPending,
		ScheduledAt: time.Now().Add(24 * time.Hour),
	}

	require.NoError(t, AuthorizeAction(s, ActionAccept, provider))
	require.NoError(t, AuthorizeAction(s, ActionDecline, provider))

	err := AuthorizeAction(s, ActionAccept, requester)
	require.Error(t, err)
	assert.Equal(t, KindAuthorization, KindOf(err))
	assert.Equal(t, "Only the session provider can respond", err.Error())

	require.NoError(t, AuthorizeAction(s, ActionCancel, requester))
	require.NoError(t, AuthorizeAction(s, ActionCancel, provider))
	require.NoError(t, AuthorizeAction(s, ActionComplete, provider))

	err = AuthorizeAction(s, ActionCancel, stranger)
	require.Error(t, err)
	assert.Equal(t, KindAuthorization, KindOf(err))

	// mark-no-show never passes participant authorization
	err = AuthorizeAction(s, ActionMarkNoShow, provider)
	require.Error(t, err)
	assert.Equal(t, KindAuthorization, KindOf(err))
}
