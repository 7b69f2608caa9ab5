package web

import (
	"net/http"

	"despensa/internal/core"
)

func (h *Handler) listRecipients(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListRecipients(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) getRecipient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetRecipient(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) createRecipient(w http.ResponseWriter, r *http.Request) {
	var req core.RecipientInput
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateRecipient(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

func (h *Handler) updateRecipient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req core.RecipientInput
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateRecipient(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) deleteRecipient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteRecipient(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recipientStatus handles GET /api/recipients/status/check. The summary lets the
// frontend warn when alerts exist but there is no one to send them to.
func (h *Handler) recipientStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.GetRecipientStatus(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, status)
}
