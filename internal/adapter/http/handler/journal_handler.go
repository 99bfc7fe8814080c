package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coopledger/internal/adapter/http/dto"
	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

// JournalService defines the behavior needed by JournalHandler.
type JournalService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput, actor domain.Actor) (*domain.LedgerAccount, []string, error)
	DeleteAccount(ctx context.Context, code string, actor domain.Actor) ([]string, error)
	ListAccounts(ctx context.Context) ([]*domain.LedgerAccount, error)
	PostEntries(ctx context.Context, input usecase.PostEntriesInput, actor domain.Actor) (*usecase.PostResult, error)
}

// JournalHandler handles the chart of accounts and manual postings.
type JournalHandler struct {
	journalUC JournalService
}

// NewJournalHandler creates a new JournalHandler.
func NewJournalHandler(journalUC JournalService) *JournalHandler {
	return &JournalHandler{journalUC: journalUC}
}

// CreateAccount adds a ledger account.
func (h *JournalHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLedgerAccountRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, "invalid request body", err)
		return
	}

	account, warnings, err := h.journalUC.CreateAccount(r.Context(), req.ToUseCaseInput(), actorFrom(r))
	if err != nil {
		respondError(w, r, "failed to create ledger account", err)
		return
	}

	resp := dto.LedgerAccountFromDomain(account)
	resp.Warnings = warnings
	writeJSON(w, http.StatusCreated, resp)
}

// ListAccounts returns the chart of accounts ordered by code.
func (h *JournalHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.journalUC.ListAccounts(r.Context())
	if err != nil {
		respondError(w, r, "failed to list ledger accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerAccountsFromDomain(accounts))
}

// DeleteAccount removes an unused ledger account.
func (h *JournalHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	warnings, err := h.journalUC.DeleteAccount(r.Context(), code, actorFrom(r))
	if err != nil {
		respondError(w, r, "failed to delete ledger account", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"code":     code,
		"deleted":  true,
		"warnings": warnings,
	})
}

// PostEntries posts a balanced manual journal.
func (h *JournalHandler) PostEntries(w http.ResponseWriter, r *http.Request) {
	var req dto.PostJournalRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, "invalid request body", err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		respondError(w, r, "invalid journal", err)
		return
	}

	result, err := h.journalUC.PostEntries(r.Context(), input, actorFrom(r))
	if err != nil {
		respondError(w, r, "failed to post journal", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PostJournalFromUseCase(result))
}
