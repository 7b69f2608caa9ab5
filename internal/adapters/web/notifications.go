package web

import (
	"net/http"
)

// getAlerts handles GET /api/items/alerts. The alert sets are rebuilt from current
// item state on every call; nothing is cached between rounds.
func (h *Handler) getAlerts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetAlerts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// confirmAlerts handles POST /api/items/alerts/confirm. Called after the caller has
// actually sent the WhatsApp messages; the current alert round is re-derived
// server-side and every alerted item is marked notified. Items whose state
// moved on since the round was shown simply fall out of the re-derived set.
func (h *Handler) confirmAlerts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetAlerts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.svc.ConfirmDispatch(r.Context(), result.Plan); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// whatsappLinks handles POST /api/whatsapp/send. Turns a phone list and a
// message into wa.me deep links without touching any stored state.
func (h *Handler) whatsappLinks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phones  []string `json:"phones"`
		Message string   `json:"message"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.BuildWhatsAppLinks(req.Phones, req.Message)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, result)
}
