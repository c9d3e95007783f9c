package handler

import (
	"bytes"
	"context"
	"net/http"

	"github.com/iho/ledgerbook/internal/adapter/http/dto"
	"github.com/iho/ledgerbook/internal/adapter/xmldoc"
	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

// maxImportSize bounds an uploaded import document.
const maxImportSize = 10 << 20

// ExchangeService exports and imports clients with their accounts.
type ExchangeService interface {
	Export(ctx context.Context) ([]*domain.ClientAccounts, error)
	Import(ctx context.Context, clients []usecase.ImportClient) (*usecase.ImportSummary, error)
}

// ExchangeHandler serves the XML exchange document.
type ExchangeHandler struct {
	exchange ExchangeService
}

// NewExchangeHandler creates a new ExchangeHandler.
func NewExchangeHandler(exchange ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{exchange: exchange}
}

// Export writes every client and account as a BankData document.
func (h *ExchangeHandler) Export(w http.ResponseWriter, r *http.Request) {
	clients, err := h.exchange.Export(r.Context())
	if err != nil {
		writeDomainError(w, "failed to export", err)
		return
	}

	// Encode into a buffer so a failure can still produce an error status.
	var buf bytes.Buffer
	if err := xmldoc.Encode(&buf, clients); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode export", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Import loads a BankData document in one all-or-nothing unit.
func (h *ExchangeHandler) Import(w http.ResponseWriter, r *http.Request) {
	clients, err := xmldoc.Decode(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		writeDomainError(w, "invalid import document", err)
		return
	}

	summary, err := h.exchange.Import(r.Context(), clients)
	if err != nil {
		writeDomainError(w, "failed to import", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ImportSummaryResponse{
		Clients:  summary.Clients,
		Accounts: summary.Accounts,
	})
}
