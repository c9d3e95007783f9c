package dto

import (
	"time"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

// ClientResponse represents a client in API responses.
type ClientResponse struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	CreatedAt time.Time          `json:"created_at"`
	Accounts  []*AccountResponse `json:"accounts"`
}

// ClientFromDomain converts a domain client without its accounts.
func ClientFromDomain(c *domain.Client) *ClientResponse {
	return &ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		Accounts:  []*AccountResponse{},
	}
}

// ClientAccountsFromDomain converts a client together with its accounts.
func ClientAccountsFromDomain(ca *domain.ClientAccounts) *ClientResponse {
	resp := ClientFromDomain(ca.Client)
	resp.Accounts = AccountsFromDomain(ca.Accounts)
	return resp
}

// ClientsFromDomain converts clients with their accounts to responses.
func ClientsFromDomain(clients []*domain.ClientAccounts) []*ClientResponse {
	result := make([]*ClientResponse, len(clients))
	for i, c := range clients {
		result[i] = ClientAccountsFromDomain(c)
	}
	return result
}

// AccountResponse represents an account in API responses. Money is
// rendered with two decimal places.
type AccountResponse struct {
	Number         string    `json:"number"`
	ClientID       int64     `json:"client_id"`
	Balance        string    `json:"balance"`
	OpeningBalance string    `json:"opening_balance"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		Number:         a.Number,
		ClientID:       a.ClientID,
		Balance:        a.Balance.StringFixed(2),
		OpeningBalance: a.OpeningBalance.StringFixed(2),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// TransactionResponse represents a transaction record in API responses.
type TransactionResponse struct {
	ID          int64     `json:"id"`
	Reference   string    `json:"reference"`
	FromAccount string    `json:"from_account"`
	ToAccount   string    `json:"to_account"`
	Amount      string    `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		Reference:   t.Reference,
		FromAccount: t.FromAccount,
		ToAccount:   t.ToAccount,
		Amount:      t.Amount.StringFixed(2),
		CreatedAt:   t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// TransferResponse is returned for a committed transfer.
type TransferResponse struct {
	Transaction *TransactionResponse `json:"transaction"`
	FromBalance string               `json:"from_balance"`
	ToBalance   string               `json:"to_balance"`
}

// TransferFromResult converts a posting result to response.
func TransferFromResult(r *usecase.PostingResult) *TransferResponse {
	return &TransferResponse{
		Transaction: TransactionFromDomain(r.Transaction),
		FromBalance: r.FromBalance.StringFixed(2),
		ToBalance:   r.ToBalance.StringFixed(2),
	}
}

// ReconciliationResponse reports how a recorded balance compares with the
// one recomputed from history.
type ReconciliationResponse struct {
	AccountNumber     string    `json:"account_number"`
	RecordedBalance   string    `json:"recorded_balance"`
	CalculatedBalance string    `json:"calculated_balance"`
	Difference        string    `json:"difference"`
	IsReconciled      bool      `json:"is_reconciled"`
	LastChecked       time.Time `json:"last_checked"`
}

// ReconciliationFromResult converts a reconciliation result to response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountNumber:     r.AccountNumber,
		RecordedBalance:   r.RecordedBalance.StringFixed(2),
		CalculatedBalance: r.CalculatedBalance.StringFixed(2),
		Difference:        r.Difference.StringFixed(2),
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
}

// ReconciliationReportResponse represents a full reconciliation report.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	LedgerConsistent   bool                      `json:"ledger_consistent"`
	RemovedTransfers   string                    `json:"removed_transfers"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReportFromDomain converts a reconciliation report to response.
func ReportFromDomain(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromResult(d)
	}

	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		LedgerConsistent:   r.LedgerConsistent,
		RemovedTransfers:   r.RemovedTransfers.StringFixed(2),
		CheckedAt:          r.CheckedAt,
	}
}

// ImportSummaryResponse counts what an import created.
type ImportSummaryResponse struct {
	Clients  int `json:"clients"`
	Accounts int `json:"accounts"`
}

// ErrorResponse represents an error in API responses. Kind is the ledger
// error kind, when the failure has one.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}
