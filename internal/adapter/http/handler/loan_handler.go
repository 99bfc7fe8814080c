package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/adapter/http/dto"
	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

// LoanPaymentService defines the behavior needed by LoanHandler.
type LoanPaymentService interface {
	ApplyPayment(ctx context.Context, loanID string, amount decimal.Decimal, paymentDate time.Time, actor domain.Actor) (*usecase.PaymentResult, error)
}

// LoanHandler handles loan payment requests.
type LoanHandler struct {
	paymentUC LoanPaymentService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(paymentUC LoanPaymentService) *LoanHandler {
	return &LoanHandler{paymentUC: paymentUC}
}

// ApplyPayment applies a member payment to loan {id}.
func (h *LoanHandler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.ApplyPaymentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, "invalid request body", err)
		return
	}

	amount, paymentDate, err := req.Parse()
	if err != nil {
		respondError(w, r, "invalid payment", err)
		return
	}

	result, err := h.paymentUC.ApplyPayment(r.Context(), chi.URLParam(r, "id"), amount, paymentDate, actorFrom(r))
	if err != nil {
		respondError(w, r, "failed to apply payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentFromUseCase(result))
}
