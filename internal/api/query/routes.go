package query

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the question answering endpoint
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/api", h.Answer)
	r.Post("/api/", h.Answer)
}
