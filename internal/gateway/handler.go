package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/rentledger/rentledger/internal/shared"
)

// SimulateFailuresRequest flips the process-wide failure-injection toggle.
// Enabled is a pointer so an explicit false is distinguishable from an
// absent field.
type SimulateFailuresRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// Handler exposes the simulator's administrative toggle over JSON.
type Handler struct {
	logger    *slog.Logger
	simulator *Simulator
	validate  *validator.Validate
}

// NewHandler builds a gateway Handler.
func NewHandler(logger *slog.Logger, simulator *Simulator) *Handler {
	return &Handler{logger: logger, simulator: simulator, validate: validator.New()}
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"simulate_failures": h.simulator.SimulateFailures(),
	})
}

func (h *Handler) SetSimulateFailures(w http.ResponseWriter, r *http.Request) {
	var req SimulateFailuresRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, shared.Fail(err.Error()))
		return
	}
	h.simulator.SetSimulateFailures(*req.Enabled)
	h.logger.Info("gateway failure injection toggled", slog.Bool("enabled", *req.Enabled))
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"simulate_failures": *req.Enabled,
	})
}
