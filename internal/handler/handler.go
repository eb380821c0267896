// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"eventgate/internal/apperr"
	"eventgate/internal/auth"
	"eventgate/internal/model"
	"eventgate/internal/service"
)

// Handler holds all HTTP handlers for the platform API.
type Handler struct {
	users         *service.UserService
	events        *service.EventService
	registrations *service.RegistrationService
	entry         *service.EntryService
	sessions      *auth.Manager
}

// New constructs a Handler.
func New(
	users *service.UserService,
	events *service.EventService,
	registrations *service.RegistrationService,
	entry *service.EntryService,
	sessions *auth.Manager,
) *Handler {
	return &Handler{
		users:         users,
		events:        events,
		registrations: registrations,
		entry:         entry,
		sessions:      sessions,
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to HTTP statuses. Internal failures
// are logged and masked.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()

	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict, apperr.KindCapacityExceeded:
		status = http.StatusConflict
	case apperr.KindInvalidState, apperr.KindInvalidArgument:
		status = http.StatusBadRequest
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindUnauthenticated:
		status = http.StatusUnauthorized
	default:
		log.Printf("internal error: %v", err)
		msg = "internal server error"
	}
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.InvalidArgument("invalid request body: " + err.Error())
	}
	return nil
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
