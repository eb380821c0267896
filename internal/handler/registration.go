package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventgate/internal/model"
)

// CreateRegistration handles POST /api/registrations
// Performs the concurrency-safe, capacity-bounded registration.
func (h *Handler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	var req model.CreateRegistrationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	reg, err := h.registrations.Create(r.Context(), actorFrom(r), req.EventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// ListMyRegistrations handles GET /api/registrations/my
func (h *Handler) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registrations.ListMine(r.Context(), actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// GetRegistration handles GET /api/registrations/{id}
// Returns the owner's registration including the token used as QR payload.
func (h *Handler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	reg, err := h.registrations.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// CancelRegistration handles DELETE /api/registrations/{id}
func (h *Handler) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	if err := h.registrations.Cancel(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "registration cancelled"})
}

// UploadPaymentProof handles PUT /api/registrations/{id}/payment-proof
func (h *Handler) UploadPaymentProof(w http.ResponseWriter, r *http.Request) {
	var req model.UploadProofRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	reg, err := h.registrations.UploadProof(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.PaymentProof)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// ValidatePayment handles PUT /api/registrations/{id}/validate-payment
// (owning organizer)
func (h *Handler) ValidatePayment(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentDecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	reg, err := h.registrations.DecidePayment(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Action)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// ListEventRegistrations handles GET /api/registrations/event/{eventId}
// (owning organizer)
func (h *Handler) ListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registrations.ListForEvent(r.Context(), actorFrom(r), chi.URLParam(r, "eventId"))
	if err != nil {
		writeError(w, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// ValidateEntry handles POST /api/registrations/validate-entry (validator)
// The response status mirrors the decision: unknown tokens are 404, a scan
// on the wrong day is 400, everything else is 200 with the decision body.
func (h *Handler) ValidateEntry(w http.ResponseWriter, r *http.Request) {
	var req model.ValidateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	decision, err := h.entry.ValidateEntry(r.Context(), actorFrom(r), req.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	switch decision.Status {
	case model.EntryStatusInvalid:
		status = http.StatusNotFound
	case model.EntryStatusWrongDate:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, decision)
}
