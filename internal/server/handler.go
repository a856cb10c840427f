package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/ledger"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/models"
)

const maxBodyBytes = 1 << 20

// Ledger is the part of *ledger.Ledger the handlers use.
type Ledger interface {
	GetBalance(ctx context.Context, ownerID string) (ledger.Balance, error)
	Record(ctx context.Context, ownerID string, amount decimal.Decimal, description string, kind models.MovementKind) (models.Movement, error)
	Transfer(ctx context.Context, senderID, receiverID string, amount decimal.Decimal, description string) (ledger.TransferResult, error)
	Find(ctx context.Context, ownerID, movementID string) (models.Movement, error)
}

type Handler struct {
	ledger   Ledger
	accounts interfaces.AccountRegistry
	logger   *zap.Logger
}

func NewHandler(l Ledger, accounts interfaces.AccountRegistry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{ledger: l, accounts: accounts, logger: logger}
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type movementRequest struct {
	Type        models.MovementKind `json:"type"`
	Amount      decimal.Decimal     `json:"amount"`
	Description string              `json:"description"`
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || !strings.Contains(req.Email, "@") {
		Error(w, http.StatusBadRequest, "name and a valid email are required")
		return
	}

	acct, err := h.accounts.Create(r.Context(), req.Name, req.Email)
	if errors.Is(err, interfaces.ErrEmailTaken) {
		Error(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		h.internal(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, acct)
}

func (h *Handler) ShowUser(w http.ResponseWriter, r *http.Request) {
	acct, err := h.accounts.Resolve(r.Context(), chi.URLParam(r, "user_id"))
	if errors.Is(err, interfaces.ErrAccountNotFound) {
		h.writeError(w, r, ledger.ErrUserNotFound)
		return
	}
	if err != nil {
		h.internal(w, r, err)
		return
	}
	JSON(w, http.StatusOK, acct)
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	b, err := h.ledger.GetBalance(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if b.Movements == nil {
		b.Movements = []models.Movement{}
	}
	JSON(w, http.StatusOK, b)
}

// RecordMovement handles the generic statement route where the kind comes
// from the body.
func (h *Handler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if !decode(w, r, &req) {
		return
	}
	h.record(w, r, req.Type, req)
}

// RecordKind returns a handler for a route that fixes the movement kind.
func (h *Handler) RecordKind(kind models.MovementKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req movementRequest
		if !decode(w, r, &req) {
			return
		}
		h.record(w, r, kind, req)
	}
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request, kind models.MovementKind, req movementRequest) {
	m, err := h.ledger.Record(r.Context(), chi.URLParam(r, "user_id"), req.Amount, req.Description, kind)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, m)
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.ledger.Transfer(r.Context(), chi.URLParam(r, "user_id"), chi.URLParam(r, "receiver_id"), req.Amount, req.Description)
	if errors.Is(err, context.DeadlineExceeded) {
		Error(w, http.StatusGatewayTimeout, "transfer timed out, outcome unknown: check the statement history before retrying")
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, res)
}

func (h *Handler) FindStatement(w http.ResponseWriter, r *http.Request) {
	m, err := h.ledger.Find(r.Context(), chi.URLParam(r, "user_id"), chi.URLParam(r, "statement_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, m)
}

func statusFor(kind ledger.ErrorKind) int {
	switch kind {
	case ledger.KindUserNotFound, ledger.KindSenderNotFound, ledger.KindReceiverNotFound, ledger.KindStatementNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if kind := ledger.KindOf(err); kind != "" {
		Error(w, statusFor(kind), err.Error())
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		Error(w, http.StatusGatewayTimeout, "request timed out")
		return
	}
	h.internal(w, r, err)
}

func (h *Handler) internal(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	Error(w, http.StatusInternalServerError, "internal error")
}
