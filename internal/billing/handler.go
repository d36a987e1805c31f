package billing

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rentledger/rentledger/internal/shared"
)

// Handler exposes billing operations over JSON endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a billing Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		shared.WriteError(w, http.StatusBadRequest, shared.ErrValidation)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, shared.Fail(err.Error()))
		return false
	}
	return true
}

func (h *Handler) writeServiceErr(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		shared.WriteError(w, http.StatusNotFound, err)
		return
	}
	h.logger.Warn(op, slog.Any("error", err))
	shared.WriteResult(w, shared.FailErr(err))
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() (any, error) { return h.service.ListInvoices(r.Context()) })
}

func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() (any, error) { return h.service.ListBills(r.Context()) })
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() (any, error) { return h.service.ListPayments(r.Context()) })
}

func (h *Handler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() (any, error) { return h.service.ListDeposits(r.Context()) })
}

func (h *Handler) ListStatements(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() (any, error) { return h.service.ListStatements(r.Context()) })
}

func (h *Handler) list(w http.ResponseWriter, _ *http.Request, load func() (any, error)) {
	items, err := load()
	if err != nil {
		h.logger.Error("list billing collection", slog.Any("error", err))
		shared.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	total, err := decimal.NewFromString(req.Total)
	if err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, shared.Fail("invalid total amount"))
		return
	}
	inv, err := h.service.CreateInvoice(r.Context(), Invoice{
		ID:       req.ID,
		Tenant:   req.Tenant,
		Property: req.Property,
		Total:    total,
		DueDate:  req.DueDate,
	}, req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "create invoice", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, inv)
}

func (h *Handler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	var req ApplyPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, shared.Fail("invalid payment amount"))
		return
	}
	pay, err := h.service.ApplyPayment(r.Context(), chi.URLParam(r, "id"), amount, PayMethod(req.Method), req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "apply payment", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, pay)
}

func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req CreateBillRequest
	if !h.decode(w, r, &req) {
		return
	}
	total, err := decimal.NewFromString(req.Total)
	if err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, shared.Fail("invalid total amount"))
		return
	}
	bill, err := h.service.CreateBill(r.Context(), Bill{
		ID:       req.ID,
		Vendor:   req.Vendor,
		Property: req.Property,
		Category: req.Category,
		Total:    total,
		Is1099:   req.Is1099,
	}, req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "create bill", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, bill)
}

func (h *Handler) ApproveBill(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if !h.decode(w, r, &req) {
		return
	}
	bill, err := h.service.ApproveBill(r.Context(), chi.URLParam(r, "id"), req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "approve bill", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, bill)
}

func (h *Handler) PayBill(w http.ResponseWriter, r *http.Request) {
	var req PayBillRequest
	if !h.decode(w, r, &req) {
		return
	}
	pay, err := h.service.PayBill(r.Context(), chi.URLParam(r, "id"), PayMethod(req.Method), req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "pay bill", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, pay)
}

func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	var req CreateDepositRequest
	if !h.decode(w, r, &req) {
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, shared.Fail("invalid deposit amount"))
		return
	}
	dep, err := h.service.CreateDeposit(r.Context(), SecurityDeposit{
		ID:         req.ID,
		Tenant:     req.Tenant,
		Property:   req.Property,
		Unit:       req.Unit,
		Amount:     amount,
		MoveInDate: req.MoveInDate,
	}, req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "create deposit", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, dep)
}

func (h *Handler) ReleaseDeposit(w http.ResponseWriter, r *http.Request) {
	var req ReleaseDepositRequest
	if !h.decode(w, r, &req) {
		return
	}
	deductions := make([]decimal.Decimal, 0, len(req.Deductions))
	for _, raw := range req.Deductions {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			shared.WriteJSON(w, http.StatusBadRequest, shared.Fail("invalid deduction amount"))
			return
		}
		deductions = append(deductions, d)
	}
	refund, err := h.service.ReleaseDeposit(r.Context(), chi.URLParam(r, "id"), deductions, req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "release deposit", err)
		return
	}
	resp := map[string]any{"success": true}
	if refund != nil {
		resp["refund_payment"] = refund
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateStatement(w http.ResponseWriter, r *http.Request) {
	var req CreateStatementRequest
	if !h.decode(w, r, &req) {
		return
	}
	gross, err1 := decimal.NewFromString(req.GrossIncome)
	expenses, err2 := decimal.NewFromString(req.Expenses)
	fee, err3 := decimal.NewFromString(req.ManagementFee)
	if err1 != nil || err2 != nil || err3 != nil {
		shared.WriteJSON(w, http.StatusBadRequest, shared.Fail("invalid statement amounts"))
		return
	}
	st, err := h.service.CreateStatement(r.Context(), OwnerStatement{
		ID:            req.ID,
		Owner:         req.Owner,
		Property:      req.Property,
		Period:        req.Period,
		GrossIncome:   gross,
		Expenses:      expenses,
		ManagementFee: fee,
	}, req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "create statement", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, st)
}

func (h *Handler) GenerateStatement(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := h.service.GenerateStatement(r.Context(), chi.URLParam(r, "id"), req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "generate statement", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) SendStatement(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := h.service.SendStatement(r.Context(), chi.URLParam(r, "id"), req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "send statement", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if !h.decode(w, r, &req) {
		return
	}
	pay, err := h.service.RefundPayment(r.Context(), chi.URLParam(r, "id"), req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "refund payment", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, pay)
}

func (h *Handler) VoidPayment(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if !h.decode(w, r, &req) {
		return
	}
	pay, err := h.service.VoidPayment(r.Context(), chi.URLParam(r, "id"), req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "void payment", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, pay)
}

func (h *Handler) ClearAllPendingACH(w http.ResponseWriter, r *http.Request) {
	var req ActorRequest
	if !h.decode(w, r, &req) {
		return
	}
	cleared, err := h.service.ClearAllPendingACH(r.Context(), req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "settle ach", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "cleared": cleared})
}
