package recurring

import "github.com/go-chi/chi/v5"

// MountRoutes attaches scheduler endpoints under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/plans", h.ListPlans)
	r.Post("/plans", h.SetupPlan)
	r.Post("/plans/{id}/pause", h.PausePlan)
	r.Post("/plans/{id}/resume", h.ResumePlan)
	r.Post("/plans/{id}/cancel", h.CancelPlan)
	r.Post("/plans/{id}/run", h.RunNow)
	r.Post("/plans/run-due", h.RunAllDue)

	r.Get("/payment-methods", h.ListMethods)
	r.Post("/payment-methods", h.AddMethod)
	r.Post("/payment-methods/{id}/default", h.SetDefaultMethod)
}
