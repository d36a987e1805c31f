package automation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rentledger/rentledger/internal/shared"
)

// Handler exposes the automation engine over JSON endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds an automation Handler.
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	automations, err := h.service.ListAutomations(r.Context())
	if err != nil {
		h.logger.Error("list automations", slog.Any("error", err))
		shared.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, automations)
}

func (h *Handler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.service.ListEnrollments(r.Context())
	if err != nil {
		h.logger.Error("list enrollments", slog.Any("error", err))
		shared.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, enrollments)
}

func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.service.ListLogs(r.Context())
	if err != nil {
		h.logger.Error("list automation logs", slog.Any("error", err))
		shared.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, logs)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAutomationRequest
	if !h.decode(w, r, &req) {
		return
	}
	steps := make([]Step, 0, len(req.Steps))
	for _, s := range req.Steps {
		steps = append(steps, Step{Name: s.Name, Kind: StepKind(s.Kind)})
	}
	a, err := h.service.CreateAutomation(r.Context(), CreateInput{
		Name:              req.Name,
		TriggerType:       req.TriggerType,
		TriggerEvent:      req.TriggerEvent,
		AllowMultipleRuns: req.AllowMultipleRuns,
		CooldownHours:     req.CooldownHours,
		Steps:             steps,
	})
	if err != nil {
		h.writeServiceErr(w, "create automation", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Activate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceErr(w, "activate automation", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Pause(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceErr(w, "pause automation", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceErr(w, "delete automation", err)
		return
	}
	shared.WriteResult(w, shared.OK("automation deleted"))
}

func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req EnrollRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.service.ManualEnroll(r.Context(), chi.URLParam(r, "id"), req.LeadID)
	if err != nil {
		h.writeServiceErr(w, "enroll lead", err)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	shared.WriteJSON(w, status, res)
}

func (h *Handler) Unenroll(w http.ResponseWriter, r *http.Request) {
	var req UnenrollRequest
	if r.ContentLength > 0 && !h.decode(w, r, &req) {
		return
	}
	res, err := h.service.ManualUnenroll(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		h.writeServiceErr(w, "unenroll lead", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) ExecuteStep(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ExecuteNextStep(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceErr(w, "execute step", err)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	shared.WriteJSON(w, status, res)
}

func (h *Handler) RetryStep(w http.ResponseWriter, r *http.Request) {
	var req RetryStepRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.service.RetryEnrollmentStep(r.Context(), chi.URLParam(r, "id"), req.StepID)
	if err != nil {
		h.writeServiceErr(w, "retry step", err)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	shared.WriteJSON(w, status, res)
}

func (h *Handler) writeServiceErr(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		shared.WriteError(w, http.StatusNotFound, err)
		return
	}
	h.logger.Warn(op, slog.Any("error", err))
	shared.WriteResult(w, shared.FailErr(err))
}
