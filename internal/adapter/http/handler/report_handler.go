package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coopledger/internal/adapter/http/dto"
	"github.com/iho/coopledger/internal/usecase"
)

// TrialBalanceService defines the trial balance check.
type TrialBalanceService interface {
	GetTrialBalance(ctx context.Context, periodKey string) (*usecase.TrialBalance, error)
}

// ReportService defines the read-only financial views.
type ReportService interface {
	GetTrialBalanceReport(ctx context.Context, periodKey string) (*usecase.TrialBalanceReport, error)
	GenerateIncomeExpenseReport(ctx context.Context, start, end time.Time) (*usecase.IncomeExpenseReport, error)
	GenerateBalanceSheet(ctx context.Context, asOf time.Time) (*usecase.BalanceSheet, error)
}

// ReportHandler handles trial balance and report requests.
type ReportHandler struct {
	trialBalanceUC TrialBalanceService
	reportUC       ReportService
	now            func() time.Time
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(trialBalanceUC TrialBalanceService, reportUC ReportService) *ReportHandler {
	return &ReportHandler{
		trialBalanceUC: trialBalanceUC,
		reportUC:       reportUC,
		now:            time.Now,
	}
}

// TrialBalance returns the debit/credit verdict for {periodKey}. An
// unbalanced period is a normal 200 answer here; only closing rejects it.
func (h *ReportHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	tb, err := h.trialBalanceUC.GetTrialBalance(r.Context(), chi.URLParam(r, "periodKey"))
	if err != nil {
		respondError(w, r, "failed to compute trial balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TrialBalanceFromUseCase(tb))
}

// TrialBalanceReport returns per-account totals for {periodKey}.
func (h *ReportHandler) TrialBalanceReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportUC.GetTrialBalanceReport(r.Context(), chi.URLParam(r, "periodKey"))
	if err != nil {
		respondError(w, r, "failed to build trial balance report", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TrialBalanceReportFromUseCase(report))
}

// IncomeExpense returns the income statement for ?start=&end=.
func (h *ReportHandler) IncomeExpense(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("start") == "" || q.Get("end") == "" {
		writeError(w, http.StatusBadRequest, "invalid date range", "start and end are required")
		return
	}

	start, err := dto.ParseDate(q.Get("start"))
	if err != nil {
		respondError(w, r, "invalid start date", err)
		return
	}
	end, err := dto.ParseDate(q.Get("end"))
	if err != nil {
		respondError(w, r, "invalid end date", err)
		return
	}

	report, err := h.reportUC.GenerateIncomeExpenseReport(r.Context(), start, end)
	if err != nil {
		respondError(w, r, "failed to build income statement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.IncomeExpenseFromUseCase(report))
}

// BalanceSheet returns the position at ?as_of=, defaulting to today.
func (h *ReportHandler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := dto.ParseDate(r.URL.Query().Get("as_of"))
	if err != nil {
		respondError(w, r, "invalid as_of date", err)
		return
	}
	if asOf.IsZero() {
		asOf = h.now().UTC()
	}

	sheet, err := h.reportUC.GenerateBalanceSheet(r.Context(), asOf)
	if err != nil {
		respondError(w, r, "failed to build balance sheet", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceSheetFromUseCase(sheet))
}
