package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action is a request to move a session along one edge of its
// lifecycle.
type Action string

const (
	ActionAccept     Action = "accept"
	ActionDecline    Action = "decline"
	ActionCancel     Action = "cancel"
	ActionComplete   Action = "complete"
	ActionMarkNoShow Action = "mark-no-show"
)

// MinCancellationNotice is how far ahead of the start a session can
// still be cancelled.
const MinCancellationNotice = 2 * time.Hour

// transitions is the full table of legal lifecycle edges. Statuses
// absent from the table are terminal.
var transitions = map[SessionStatus]map[Action]SessionStatus{
	SessionStatusPending: {
		ActionAccept:  SessionStatusAccepted,
		ActionDecline: SessionStatusRejected,
		ActionCancel:  SessionStatusCancelled,
	},
	SessionStatusAccepted: {
		ActionCancel:     SessionStatusCancelled,
		ActionComplete:   SessionStatusCompleted,
		ActionMarkNoShow: SessionStatusNoShow,
	},
}

// actionVerb phrases the conflict message for an illegal edge.
var actionVerb = map[Action]string{
	ActionAccept:     "respond to",
	ActionDecline:    "respond to",
	ActionCancel:     "cancel",
	ActionComplete:   "complete",
	ActionMarkNoShow: "mark no-show on",
}

// NextStatus resolves the target status for an action from the current
// status, or a ConflictError when no such edge exists.
func NextStatus(from SessionStatus, action Action) (SessionStatus, error) {
	if to, ok := transitions[from][action]; ok {
		return to, nil
	}
	return "", NewConflictError(fmt.Sprintf("Cannot %s a %s session", actionVerb[action], from))
}

// IsTerminal reports whether a status has no outgoing edges.
func IsTerminal(status SessionStatus) bool {
	return len(transitions[status]) == 0
}

// AuthorizeAction enforces who may perform an action on a session.
// Callers that are not participants at all should be rejected upstream
// with a not-found, before this check. Mark-no-show is administrative
// and never authorized through participant identity.
func AuthorizeAction(s *Session, action Action, actor uuid.UUID) error {
	switch action {
	case ActionAccept, ActionDecline:
		if actor != s.ProviderID {
			return NewAuthorizationError("Only the session provider can respond")
		}
	case ActionCancel, ActionComplete:
		if !s.IsParticipant(actor) {
			return NewAuthorizationError("Only a session participant can " + string(action))
		}
	case ActionMarkNoShow:
		return NewAuthorizationError("mark-no-show is an administrative action")
	default:
		return NewValidationError("unknown action: " + string(action))
	}
	return nil
}
