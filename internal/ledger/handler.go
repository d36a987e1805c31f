package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rentledger/rentledger/internal/shared"
)

// Handler exposes the ledger over JSON endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a ledger Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		shared.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, accounts)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, shared.ErrValidation)
		return
	}
	acct, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		shared.WriteError(w, http.StatusNotFound, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, acct)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, shared.Fail(err.Error()))
		return
	}
	acct, err := h.service.CreateAccount(r.Context(), CreateAccountInput{
		Name:          req.Name,
		Type:          AccountType(req.Type),
		NormalBalance: NormalBalance(req.NormalBalance),
		ParentID:      req.ParentID,
		Actor:         req.Actor,
		ActorRole:     req.ActorRole,
	})
	if err != nil {
		h.logger.Warn("create account", slog.Any("error", err))
		shared.WriteResult(w, shared.FailErr(err))
		return
	}
	shared.WriteJSON(w, http.StatusCreated, acct)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, shared.ErrValidation)
		return
	}
	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, shared.Fail(err.Error()))
		return
	}
	input := UpdateAccountInput{Name: req.Name, ParentID: req.ParentID, Actor: req.Actor, ActorRole: req.ActorRole}
	if req.Status != nil {
		status := AccountStatus(*req.Status)
		input.Status = &status
	}
	acct, err := h.service.UpdateAccount(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			shared.WriteError(w, http.StatusNotFound, err)
			return
		}
		shared.WriteResult(w, shared.FailErr(err))
		return
	}
	shared.WriteJSON(w, http.StatusOK, acct)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.ListTransactions(r.Context())
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		shared.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, lines)
}

func (h *Handler) PostJournal(w http.ResponseWriter, r *http.Request) {
	var req PostJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, shared.Fail(err.Error()))
		return
	}
	input := PostingInput{Property: req.Property, Actor: req.Actor, ActorRole: req.ActorRole}
	if req.Date != nil {
		input.Date = *req.Date
	}
	for _, line := range req.Lines {
		debit, err := parseAmount(line.Debit)
		if err != nil {
			shared.WriteJSON(w, http.StatusBadRequest, shared.Fail("invalid debit amount"))
			return
		}
		credit, err := parseAmount(line.Credit)
		if err != nil {
			shared.WriteJSON(w, http.StatusBadRequest, shared.Fail("invalid credit amount"))
			return
		}
		input.Lines = append(input.Lines, PostingLine{
			AccountID:   line.AccountID,
			Debit:       debit,
			Credit:      credit,
			Description: line.Description,
		})
	}
	ref, rows, err := h.service.PostJournalEntry(r.Context(), input)
	if err != nil {
		h.logger.Warn("post journal", slog.Any("error", err))
		shared.WriteJSON(w, http.StatusUnprocessableEntity, PostJournalResponse{Error: shared.UserSafeMessage(err)})
		return
	}
	shared.WriteJSON(w, http.StatusCreated, PostJournalResponse{Success: true, Ref: ref, Lines: rows})
}

func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
