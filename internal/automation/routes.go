package automation

import "github.com/go-chi/chi/v5"

// MountRoutes attaches automation endpoints under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/automations", h.List)
	r.Post("/automations", h.Create)
	r.Post("/automations/{id}/activate", h.Activate)
	r.Post("/automations/{id}/pause", h.Pause)
	r.Delete("/automations/{id}", h.Delete)
	r.Post("/automations/{id}/enroll", h.Enroll)

	r.Get("/enrollments", h.ListEnrollments)
	r.Post("/enrollments/{id}/unenroll", h.Unenroll)
	r.Post("/enrollments/{id}/execute", h.ExecuteStep)
	r.Post("/enrollments/{id}/retry", h.RetryStep)

	r.Get("/automation-logs", h.ListLogs)
}
