package web

import (
	"net/http"
	"strconv"

	"fieldstock/internal/app"
)

// listTransfers handles GET /api/orgs/{org}/transfers.
// Query: status, location_type + location_id (matched against either end).
func (h *Handler) listTransfers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := app.TransferListRequest{
		Status:       q.Get("status"),
		LocationType: q.Get("location_type"),
	}
	if v := q.Get("location_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, "invalid location_id", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.LocationID = &id
	}
	result, err := h.svc.ListTransfers(r.Context(), orgCode(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result.Transfers)
}

// createTransfer handles POST /api/orgs/{org}/transfers.
func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	var req app.CreateTransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateTransfer(r.Context(), orgCode(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Transfer)
}

// getTransfer handles GET /api/orgs/{org}/transfers/{id}.
func (h *Handler) getTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetTransfer(r.Context(), orgCode(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result.Transfer)
}

// transitionTransfer handles POST /api/orgs/{org}/transfers/{id}/status.
// Body: { status, performed_by }.
func (h *Handler) transitionTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var body struct {
		Status      string `json:"status"`
		PerformedBy int    `json:"performed_by"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.TransitionTransfer(r.Context(), orgCode(r), id, body.Status, body.PerformedBy)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result.Transfer)
}

// getTransferItems handles GET /api/orgs/{org}/transfers/{id}/items.
func (h *Handler) getTransferItems(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetTransferItems(r.Context(), orgCode(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result.Items)
}
