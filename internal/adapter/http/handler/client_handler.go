package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iho/ledgerbook/internal/adapter/http/dto"
	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

// ClientService is the registry surface used for clients.
type ClientService interface {
	CreateClient(ctx context.Context, input usecase.CreateClientInput) (*domain.Client, error)
	GetClient(ctx context.Context, id int64) (*domain.ClientAccounts, error)
	ListClients(ctx context.Context) ([]*domain.ClientAccounts, error)
	DeleteClient(ctx context.Context, id int64) error
}

// ClientHandler handles client-related HTTP requests.
type ClientHandler struct {
	clients ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clients ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// Create creates a new client.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	client, err := h.clients.CreateClient(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create client", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ClientFromDomain(client))
}

// Get returns a client with its accounts.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := clientIDParam(w, r)
	if !ok {
		return
	}

	client, err := h.clients.GetClient(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get client", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClientAccountsFromDomain(client))
}

// List lists all clients with their accounts.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.ListClients(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list clients", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClientsFromDomain(clients))
}

// Delete removes a client and its accounts.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := clientIDParam(w, r)
	if !ok {
		return
	}

	if err := h.clients.DeleteClient(r.Context(), id); err != nil {
		writeDomainError(w, "failed to delete client", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func clientIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid client ID", chi.URLParam(r, "id"))
		return 0, false
	}
	return id, true
}
