package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/skillswap/skillswap-server/internal/model"
	"go.uber.org/zap"
)

// callerHeader carries the authenticated user id, set by the auth
// gateway in front of this service.
const callerHeader = "X-User-ID"

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain error kinds onto status codes. Anything
// without a kind is an internal failure and stays opaque to the
// client.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	kind := model.KindOf(err)

	var status int
	switch kind {
	case model.KindValidation:
		status = http.StatusBadRequest
	case model.KindNotFound:
		status = http.StatusNotFound
	case model.KindAuthorization:
		status = http.StatusForbidden
	case model.KindConflict:
		status = http.StatusConflict
	default:
		logger.Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: string(kind)})
}

// callerID extracts the authenticated user from the request.
func callerID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(callerHeader)
	if raw == "" {
		return uuid.Nil, model.NewValidationError(callerHeader + " header is required")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewValidationError(callerHeader + " is not a valid user id")
	}

	return id, nil
}

// pathID extracts the session id from the route.
func pathID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewNotFoundError("session not found")
	}
	return id, nil
}
