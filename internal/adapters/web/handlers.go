package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"fieldstock/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	// 1 MB body limit to prevent unbounded request abuse.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20))

		r.Route("/api/orgs/{org}", func(r chi.Router) {
			// Catalog
			r.Get("/items", h.listItems)
			r.Post("/items", h.createItem)
			r.Get("/items/{id}", h.getItem)
			r.Put("/items/{id}", h.updateItem)
			r.Delete("/items/{id}", h.deactivateItem)

			// Stock ledger
			r.Get("/adjustments", h.listAdjustments)
			r.Post("/adjustments", h.adjustStock)

			// Transfers
			r.Get("/transfers", h.listTransfers)
			r.Post("/transfers", h.createTransfer)
			r.Get("/transfers/{id}", h.getTransfer)
			r.Post("/transfers/{id}/status", h.transitionTransfer)
			r.Get("/transfers/{id}/items", h.getTransferItems)

			// Reporting
			r.Get("/summary", h.inventorySummary)

			// Master data
			r.Get("/locations", h.listLocations)
			r.Post("/locations", h.createLocation)
			r.Get("/vendors", h.listVendors)
			r.Post("/vendors", h.createVendor)
			r.Get("/users", h.listUsers)
		})
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// orgCode extracts the {org} URL parameter.
func orgCode(r *http.Request) string {
	return chi.URLParam(r, "org")
}

// urlID extracts a numeric {id} URL parameter. Returns false and writes a 400
// when the parameter is not a positive integer.
func urlID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id in URL", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
