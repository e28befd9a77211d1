package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter mounts the session endpoints. The fixed /sessions routes
// are registered before the {id} routes so mux resolves them first.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions", h.ListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/conflicts", h.CheckConflicts).Methods(http.MethodGet)
	api.HandleFunc("/sessions/stats", h.Stats).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/respond", h.Respond).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/reschedule", h.ProposeAlternative).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/cancel", h.Cancel).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/complete", h.Complete).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/feedback", h.SubmitFeedback).Methods(http.MethodPost)

	api.HandleFunc("/admin/sessions/{id}/no-show", h.MarkNoShow).Methods(http.MethodPost)

	return r
}
