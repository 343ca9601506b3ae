package web

import (
	"net/http"
	"strconv"

	"fieldstock/internal/app"
)

// listItems handles GET /api/orgs/{org}/items.
// Query: search, category, status, include_inactive.
func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := app.ItemListRequest{
		Search:          q.Get("search"),
		Category:        q.Get("category"),
		Status:          q.Get("status"),
		IncludeInactive: q.Get("include_inactive") == "true",
	}
	result, err := h.svc.ListItems(r.Context(), orgCode(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result.Items)
}

// getItem handles GET /api/orgs/{org}/items/{id}.
func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetItem(r.Context(), orgCode(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result.Item)
}

// createItem handles POST /api/orgs/{org}/items.
func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req app.CreateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateItem(r.Context(), orgCode(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Item)
}

// updateItem handles PUT /api/orgs/{org}/items/{id}.
func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req app.UpdateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateItem(r.Context(), orgCode(r), id, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result.Item)
}

// deactivateItem handles DELETE /api/orgs/{org}/items/{id}.
// Query: performed_by (acting user id).
func (h *Handler) deactivateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	actingUser, _ := strconv.Atoi(r.URL.Query().Get("performed_by"))
	if err := h.svc.DeactivateItem(r.Context(), orgCode(r), id, actingUser); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// adjustStock handles POST /api/orgs/{org}/adjustments.
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req app.AdjustStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.AdjustStock(r.Context(), orgCode(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// listAdjustments handles GET /api/orgs/{org}/adjustments.
// Query: item_id, reason, transfer_id, limit.
func (h *Handler) listAdjustments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := app.AdjustmentListRequest{Reason: q.Get("reason")}
	if v := q.Get("item_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, "invalid item_id", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.ItemID = &id
	}
	if v := q.Get("transfer_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, "invalid transfer_id", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.TransferID = &id
	}
	if v := q.Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}
	result, err := h.svc.ListAdjustments(r.Context(), orgCode(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result.Adjustments)
}
