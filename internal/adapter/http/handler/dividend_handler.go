package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/adapter/http/dto"
	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

// DividendService defines the behavior needed by DividendHandler.
type DividendService interface {
	CalculateDividends(ctx context.Context, year int, dividendRate, averageReturnRate decimal.Decimal, actor domain.Actor) (*usecase.DividendDraft, error)
	DistributeDividends(ctx context.Context, year int, actor domain.Actor) (*usecase.DistributionResult, error)
	GetDistribution(ctx context.Context, year int) (*domain.DividendDistribution, error)
}

// DividendHandler handles yearly dividend requests.
type DividendHandler struct {
	dividendUC DividendService
}

// NewDividendHandler creates a new DividendHandler.
func NewDividendHandler(dividendUC DividendService) *DividendHandler {
	return &DividendHandler{dividendUC: dividendUC}
}

// Calculate creates the PENDING distribution for {year}.
func (h *DividendHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year")
	if err != nil {
		respondError(w, r, "invalid year", err)
		return
	}

	var req dto.CalculateDividendsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, "invalid request body", err)
		return
	}
	dividendRate, averageReturnRate, err := req.Rates()
	if err != nil {
		respondError(w, r, "invalid rate", err)
		return
	}

	draft, err := h.dividendUC.CalculateDividends(r.Context(), year, dividendRate, averageReturnRate, actorFrom(r))
	if err != nil {
		respondError(w, r, "failed to calculate dividends", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.DividendDraftFromUseCase(draft))
}

// Distribute pays out the calculated distribution for {year}.
func (h *DividendHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year")
	if err != nil {
		respondError(w, r, "invalid year", err)
		return
	}

	result, err := h.dividendUC.DistributeDividends(r.Context(), year, actorFrom(r))
	if err != nil {
		respondError(w, r, "failed to distribute dividends", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DistributionResultFromUseCase(result))
}

// Get returns the distribution for {year}.
func (h *DividendHandler) Get(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year")
	if err != nil {
		respondError(w, r, "invalid year", err)
		return
	}

	dist, err := h.dividendUC.GetDistribution(r.Context(), year)
	if err != nil {
		respondError(w, r, "failed to get distribution", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DistributionFromDomain(dist))
}
