package web

import (
	"net/http"
	"time"

	"despensa/internal/core"
)

// itemPayload is the JSON body for item create/update requests. Quantities
// accept loose numeric inputs; expiry_date accepts "2006-01-02" or RFC 3339.
// On update, nil fields are left untouched and clear_expiry removes the date.
type itemPayload struct {
	Name           *string        `json:"name"`
	Unit           *string        `json:"unit"`
	QuantityIn     *core.Quantity `json:"quantity_in"`
	QuantityOut    *core.Quantity `json:"quantity_out"`
	StockThreshold *core.Quantity `json:"stock_threshold"`
	ExpiryDate     *string        `json:"expiry_date"`
	ClearExpiry    bool           `json:"clear_expiry"`
}

// parseExpiryDate accepts a bare date or a full timestamp.
func parseExpiryDate(s string) (*time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListItems(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req itemPayload
	if !decodeJSON(w, r, &req) {
		return
	}

	input := core.ItemInput{}
	if req.Name != nil {
		input.Name = *req.Name
	}
	if req.Unit != nil {
		input.Unit = *req.Unit
	}
	if req.QuantityIn != nil {
		input.QuantityIn = *req.QuantityIn
	}
	if req.QuantityOut != nil {
		input.QuantityOut = *req.QuantityOut
	}
	if req.StockThreshold != nil {
		input.StockThreshold = *req.StockThreshold
	}
	if req.ExpiryDate != nil && *req.ExpiryDate != "" {
		t, err := parseExpiryDate(*req.ExpiryDate)
		if err != nil {
			writeError(w, r, "invalid expiry_date, use YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		input.ExpiryDate = t
	}

	result, err := h.svc.CreateItem(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req itemPayload
	if !decodeJSON(w, r, &req) {
		return
	}

	upd := core.ItemUpdate{
		Name:           req.Name,
		Unit:           req.Unit,
		QuantityIn:     req.QuantityIn,
		QuantityOut:    req.QuantityOut,
		StockThreshold: req.StockThreshold,
		ClearExpiry:    req.ClearExpiry,
	}
	if req.ExpiryDate != nil && *req.ExpiryDate != "" {
		t, err := parseExpiryDate(*req.ExpiryDate)
		if err != nil {
			writeError(w, r, "invalid expiry_date, use YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		upd.ExpiryDate = t
	}

	result, err := h.svc.UpdateItem(r.Context(), id, upd)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// markItemNotified handles POST /api/items/{id}/notified. The body names
// which alert dimension was dispatched: {"kind": "stock"} or {"kind": "expiry"}.
func (h *Handler) markItemNotified(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Kind string `json:"kind"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	kind := core.AlertKind(req.Kind)
	if kind != core.AlertStock && kind != core.AlertExpiry {
		writeError(w, r, "kind must be 'stock' or 'expiry'", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.MarkItemNotified(r.Context(), id, kind)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
