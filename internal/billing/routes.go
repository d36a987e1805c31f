package billing

import "github.com/go-chi/chi/v5"

// MountRoutes attaches billing endpoints under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.ListInvoices)
	r.Post("/invoices", h.CreateInvoice)
	r.Post("/invoices/{id}/payments", h.ApplyPayment)

	r.Get("/bills", h.ListBills)
	r.Post("/bills", h.CreateBill)
	r.Post("/bills/{id}/approve", h.ApproveBill)
	r.Post("/bills/{id}/pay", h.PayBill)

	r.Get("/payments", h.ListPayments)
	r.Post("/payments/{id}/refund", h.RefundPayment)
	r.Post("/payments/{id}/void", h.VoidPayment)
	r.Post("/payments/settle-ach", h.ClearAllPendingACH)

	r.Get("/deposits", h.ListDeposits)
	r.Post("/deposits", h.CreateDeposit)
	r.Post("/deposits/{id}/release", h.ReleaseDeposit)

	r.Get("/statements", h.ListStatements)
	r.Post("/statements", h.CreateStatement)
	r.Post("/statements/{id}/generate", h.GenerateStatement)
	r.Post("/statements/{id}/send", h.SendStatement)
}
