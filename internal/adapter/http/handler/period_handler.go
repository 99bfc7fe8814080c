package handler

import (
	"context"
	"net/http"

	"github.com/iho/coopledger/internal/adapter/http/dto"
	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

// PeriodService defines the behavior needed by PeriodHandler.
type PeriodService interface {
	CloseMonth(ctx context.Context, month, year int, actor domain.Actor) (*usecase.CloseSummary, error)
	ConfirmPeriod(ctx context.Context, month, year int, actor domain.Actor) (*usecase.ConfirmSummary, error)
	GetPeriod(ctx context.Context, month, year int) (*domain.FiscalPeriod, error)
	ListPeriods(ctx context.Context, limit, offset int) ([]*domain.FiscalPeriod, error)
}

// PeriodHandler handles fiscal period requests.
type PeriodHandler struct {
	periodUC PeriodService
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(periodUC PeriodService) *PeriodHandler {
	return &PeriodHandler{periodUC: periodUC}
}

// Close runs the month-end close.
func (h *PeriodHandler) Close(w http.ResponseWriter, r *http.Request) {
	month, year, err := periodParams(r)
	if err != nil {
		respondError(w, r, "invalid period", err)
		return
	}

	summary, err := h.periodUC.CloseMonth(r.Context(), month, year, actorFrom(r))
	if err != nil {
		respondError(w, r, "failed to close period", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CloseSummaryFromUseCase(summary))
}

// Confirm freezes the snapshots of a closed period.
func (h *PeriodHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	month, year, err := periodParams(r)
	if err != nil {
		respondError(w, r, "invalid period", err)
		return
	}

	summary, err := h.periodUC.ConfirmPeriod(r.Context(), month, year, actorFrom(r))
	if err != nil {
		respondError(w, r, "failed to confirm period", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConfirmSummaryFromUseCase(summary))
}

// Get returns one fiscal period.
func (h *PeriodHandler) Get(w http.ResponseWriter, r *http.Request) {
	month, year, err := periodParams(r)
	if err != nil {
		respondError(w, r, "invalid period", err)
		return
	}

	period, err := h.periodUC.GetPeriod(r.Context(), month, year)
	if err != nil {
		respondError(w, r, "failed to get period", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
}

// List returns fiscal periods, newest first.
func (h *PeriodHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 24)

	periods, err := h.periodUC.ListPeriods(r.Context(), limit, offset)
	if err != nil {
		respondError(w, r, "failed to list periods", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodsFromDomain(periods))
}
