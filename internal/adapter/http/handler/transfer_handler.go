package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/ledgerbook/internal/adapter/http/dto"
	"github.com/iho/ledgerbook/internal/usecase"
)

// TransferService posts transfers.
type TransferService interface {
	Post(ctx context.Context, input usecase.PostInput) (*usecase.PostingResult, error)
}

// TransferHandler handles transfer requests.
type TransferHandler struct {
	posting TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(posting TransferService) *TransferHandler {
	return &TransferHandler{posting: posting}
}

// Create posts a transfer between two accounts.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.posting.Post(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create transfer", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromResult(result))
}
