package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/skillswap/skillswap-server/internal/model"
	"github.com/skillswap/skillswap-server/internal/service"
	"go.uber.org/zap"
)

type Handler struct {
	booking   *service.BookingService
	responses *service.ResponseService
	conflicts *service.ConflictDetector
	logger    *zap.Logger
}

func NewHandler(
	booking *service.BookingService,
	responses *service.ResponseService,
	conflicts *service.ConflictDetector,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		booking:   booking,
		responses: responses,
		conflicts: conflicts,
		logger:    logger,
	}
}

type createSessionRequest struct {
	ProviderID      uuid.UUID           `json:"provider_id"`
	Skill           model.SkillSnapshot `json:"skill"`
	ScheduledAt     time.Time           `json:"scheduled_at"`
	DurationMinutes int                 `json:"duration_minutes"`
	SessionType     model.SessionType   `json:"session_type"`
	MeetingLink     string              `json:"meeting_link"`
	Location        string              `json:"location"`
	Message         string              `json:"message"`
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, model.NewValidationError("invalid request body"))
		return
	}

	sess, err := h.booking.CreateSession(r.Context(), service.CreateSessionInput{
		RequesterID:     caller,
		ProviderID:      req.ProviderID,
		Skill:           req.Skill,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		SessionType:     req.SessionType,
		MeetingLink:     req.MeetingLink,
		Location:        req.Location,
		Message:         req.Message,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newSessionView(sess, caller))
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	q := r.URL.Query()

	var role model.Role
	switch q.Get("role") {
	case "requested":
		role = model.RoleRequester
	case "received":
		role = model.RoleProvider
	case "":
	default:
		writeError(w, h.logger, model.NewValidationError("role must be requested or received"))
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	sessions, err := h.booking.ListSessions(r.Context(), service.ListSessionsInput{
		CallerID:     caller,
		Role:         role,
		Status:       model.SessionStatus(q.Get("status")),
		UpcomingOnly: q.Get("upcoming") == "true",
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionViews(sessions, caller))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	sess, err := h.booking.GetSession(r.Context(), id, caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionView(sess, caller))
}

type respondRequest struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, model.NewValidationError("invalid request body"))
		return
	}

	var accept bool
	switch req.Action {
	case "accept":
		accept = true
	case "decline":
		accept = false
	default:
		writeError(w, h.logger, model.NewValidationError("action must be accept or decline"))
		return
	}

	sess, err := h.responses.Respond(r.Context(), id, caller, accept, req.Message)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionView(sess, caller))
}

type rescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
	Message     string    `json:"message"`
}

func (h *Handler) ProposeAlternative(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, model.NewValidationError("invalid request body"))
		return
	}

	sess, err := h.responses.ProposeAlternative(r.Context(), id, caller, req.ScheduledAt, req.Message)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionView(sess, caller))
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, model.NewValidationError("invalid request body"))
		return
	}

	sess, err := h.responses.Cancel(r.Context(), id, caller, req.Reason)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionView(sess, caller))
}

type completeRequest struct {
	Note string `json:"note"`
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, model.NewValidationError("invalid request body"))
		return
	}

	sess, err := h.responses.Complete(r.Context(), id, caller, req.Note)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionView(sess, caller))
}

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, model.NewValidationError("invalid request body"))
		return
	}

	fb, err := h.responses.SubmitFeedback(r.Context(), id, caller, req.Rating, req.Comment)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, fb)
}

func (h *Handler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	q := r.URL.Query()

	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		writeError(w, h.logger, model.NewValidationError("start must be an RFC 3339 timestamp"))
		return
	}

	duration, err := strconv.Atoi(q.Get("duration"))
	if err != nil {
		writeError(w, h.logger, model.NewValidationError("duration must be minutes as an integer"))
		return
	}

	var counterpart *uuid.UUID
	if raw := q.Get("counterpart_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, h.logger, model.NewValidationError("counterpart_id is not a valid user id"))
			return
		}
		counterpart = &id
	}

	report, err := h.conflicts.CheckConflicts(r.Context(), caller, start, duration, counterpart)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	stats, err := h.booking.Stats(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	sess, err := h.responses.MarkNoShow(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionView(sess, caller))
}
