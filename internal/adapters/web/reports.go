package web

import "net/http"

// inventorySummary handles GET /api/orgs/{org}/summary.
func (h *Handler) inventorySummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetInventorySummary(r.Context(), orgCode(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result)
}
