package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/ledgerbook/internal/adapter/http/dto"
	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

// HistoryService lists committed transaction records.
type HistoryService interface {
	ListAll(ctx context.Context, page usecase.Page) ([]*domain.Transaction, error)
	ListForAccount(ctx context.Context, accountNumber string, page usecase.Page) ([]*domain.Transaction, error)
}

// HistoryHandler handles transaction history requests.
type HistoryHandler struct {
	history HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List lists all transactions, newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	txs, err := h.history.ListAll(r.Context(), parsePage(r).ToPage())
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}

// ListByAccount lists transactions touching one account, newest first.
func (h *HistoryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	txs, err := h.history.ListForAccount(r.Context(), chi.URLParam(r, "number"), parsePage(r).ToPage())
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}
