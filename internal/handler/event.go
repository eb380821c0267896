package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventgate/internal/model"
)

// ListPublicEvents handles GET /api/events/public
// Returns upcoming active events with confirmed registration counts.
func (h *Handler) ListPublicEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListPublic(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []model.EventWithCount{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /api/events/public/{id}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// ListMyEvents handles GET /api/events/my-events (organizer)
func (h *Handler) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListMine(r.Context(), actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []model.EventWithCount{}
	}
	writeJSON(w, http.StatusOK, events)
}

// CreateEvent handles POST /api/events (organizer)
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	event, err := h.events.Create(r.Context(), actorFrom(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// UpdateEvent handles PUT /api/events/{id} (owning organizer)
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	event, err := h.events.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /api/events/{id} (owning organizer)
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

// EventStats handles GET /api/events/{id}/stats (owning organizer)
func (h *Handler) EventStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.events.Stats(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
