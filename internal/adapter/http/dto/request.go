package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/usecase"
)

// CreateClientRequest represents a request to create a client. ID is
// optional; the store assigns one when it is omitted.
type CreateClientRequest struct {
	ID   *int64 `json:"id,omitempty"`
	Name string `json:"name"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateClientRequest) ToUseCaseInput() usecase.CreateClientInput {
	return usecase.CreateClientInput{
		ID:   r.ID,
		Name: r.Name,
	}
}

// CreateAccountRequest represents a request to open an account.
type CreateAccountRequest struct {
	ClientID       int64           `json:"client_id"`
	Number         string          `json:"number"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		ClientID:       r.ClientID,
		Number:         r.Number,
		InitialBalance: r.InitialBalance,
	}
}

// CreateTransferRequest represents a request to move money between accounts.
type CreateTransferRequest struct {
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() usecase.PostInput {
	return usecase.PostInput{
		FromAccount: r.FromAccount,
		ToAccount:   r.ToAccount,
		Amount:      r.Amount,
	}
}

// PaginationRequest represents pagination parameters. A zero Limit lists
// everything.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ToPage converts to a history page.
func (r PaginationRequest) ToPage() usecase.Page {
	return usecase.Page{Limit: r.Limit, Offset: r.Offset}
}
