package recurring

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/rentledger/rentledger/internal/shared"
)

// Handler exposes the scheduler over JSON endpoints. Concurrent manual sweep
// triggers collapse into a single run via singleflight; the service mutex is
// the real serialization guarantee, this just avoids queueing redundant
// sweeps behind one another.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	sweeps   singleflight.Group
}

// NewHandler builds a scheduler Handler.
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

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		h.logger.Error("list plans", slog.Any("error", err))
		shared.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, plans)
}

func (h *Handler) ListMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.ListMethods(r.Context())
	if err != nil {
		h.logger.Error("list methods", slog.Any("error", err))
		shared.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, methods)
}

func (h *Handler) SetupPlan(w http.ResponseWriter, r *http.Request) {
	var req SetupPlanRequest
	if !h.decode(w, r, &req) {
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, shared.Fail("invalid amount"))
		return
	}
	plan, err := h.service.SetupRecurringPayment(r.Context(), SetupInput{
		TenantName:      req.TenantName,
		Property:        req.Property,
		Unit:            req.Unit,
		Amount:          amount,
		Frequency:       Frequency(req.Frequency),
		PaymentMethodID: req.PaymentMethodID,
		FirstChargeDate: req.FirstChargeDate,
		Actor:           req.Actor,
		ActorRole:       req.ActorRole,
	})
	if err != nil {
		h.writeServiceErr(w, "setup plan", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, plan)
}

func (h *Handler) PausePlan(w http.ResponseWriter, r *http.Request) {
	h.planAction(w, r, h.service.PauseRecurringPlan)
}

func (h *Handler) ResumePlan(w http.ResponseWriter, r *http.Request) {
	h.planAction(w, r, h.service.ResumeRecurringPlan)
}

func (h *Handler) CancelPlan(w http.ResponseWriter, r *http.Request) {
	h.planAction(w, r, h.service.CancelRecurringPayment)
}

func (h *Handler) planAction(w http.ResponseWriter, r *http.Request, op func(context.Context, string, string, string) (RecurringPlan, error)) {
	var req PlanActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	plan, err := op(r.Context(), chi.URLParam(r, "id"), req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "plan action", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, plan)
}

func (h *Handler) RunNow(w http.ResponseWriter, r *http.Request) {
	var req PlanActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.service.RunRecurringNow(r.Context(), chi.URLParam(r, "id"), req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "run plan", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) RunAllDue(w http.ResponseWriter, r *http.Request) {
	var req PlanActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	v, err, _ := h.sweeps.Do("sweep", func() (any, error) {
		return h.service.RunAllDueRecurring(r.Context(), req.Actor, req.ActorRole)
	})
	if err != nil {
		h.writeServiceErr(w, "run sweep", err)
		return
	}
	results := v.([]RunResult)
	resp := SweepResponse{Success: true, Ran: len(results), Results: results}
	for _, res := range results {
		if res.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) AddMethod(w http.ResponseWriter, r *http.Request) {
	var req AddMethodRequest
	if !h.decode(w, r, &req) {
		return
	}
	method, err := h.service.AddPaymentMethod(r.Context(), MethodKind(req.Type), req.Last4, req.IsDefault, req.Actor, req.ActorRole)
	if err != nil {
		h.writeServiceErr(w, "add method", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, method)
}

func (h *Handler) SetDefaultMethod(w http.ResponseWriter, r *http.Request) {
	var req PlanActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.SetDefaultPaymentMethod(r.Context(), chi.URLParam(r, "id"), req.Actor, req.ActorRole); err != nil {
		h.writeServiceErr(w, "set default method", err)
		return
	}
	shared.WriteResult(w, shared.OK("default payment method updated"))
}

func (h *Handler) writeServiceErr(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		shared.WriteError(w, http.StatusNotFound, err)
		return
	}
	h.logger.Warn(op, slog.Any("error", err))
	shared.WriteResult(w, shared.FailErr(err))
}
