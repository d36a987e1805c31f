package gateway

import "github.com/go-chi/chi/v5"

// MountRoutes registers the gateway admin endpoints on the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/gateway", func(r chi.Router) {
		r.Get("/", h.Status)
		r.Post("/simulate-failures", h.SetSimulateFailures)
	})
}
