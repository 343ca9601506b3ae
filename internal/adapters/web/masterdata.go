package web

import (
	"net/http"

	"fieldstock/internal/app"
)

// listLocations handles GET /api/orgs/{org}/locations.
// Query: type (warehouse | vehicle; empty = both).
func (h *Handler) listLocations(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListLocations(r.Context(), orgCode(r), r.URL.Query().Get("type"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result.Locations)
}

// createLocation handles POST /api/orgs/{org}/locations.
func (h *Handler) createLocation(w http.ResponseWriter, r *http.Request) {
	var req app.CreateLocationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	loc, err := h.svc.CreateLocation(r.Context(), orgCode(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, loc)
}

// listVendors handles GET /api/orgs/{org}/vendors.
func (h *Handler) listVendors(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListVendors(r.Context(), orgCode(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result.Vendors)
}

// listUsers handles GET /api/orgs/{org}/users.
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListUsers(r.Context(), orgCode(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, result.Users)
}

// createVendor handles POST /api/orgs/{org}/vendors.
func (h *Handler) createVendor(w http.ResponseWriter, r *http.Request) {
	var req app.CreateVendorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	vendor, err := h.svc.CreateVendor(r.Context(), orgCode(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, vendor)
}
