package ledger

import "github.com/go-chi/chi/v5"

// MountRoutes attaches ledger endpoints under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts", h.ListAccounts)
	r.Post("/accounts", h.CreateAccount)
	r.Get("/accounts/{id}", h.GetAccount)
	r.Patch("/accounts/{id}", h.UpdateAccount)
	r.Get("/transactions", h.ListTransactions)
	r.Post("/journal-entries", h.PostJournal)
}
