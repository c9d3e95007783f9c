package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

func TestAccountFromDomain(t *testing.T) {
	now := time.Now()
	account := &domain.Account{
		Number:         "40817",
		ClientID:       1,
		Balance:        decimal.NewFromInt(1000),
		OpeningBalance: decimal.RequireFromString("123.4"),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	resp := AccountFromDomain(account)
	if resp.Number != "40817" || resp.Balance != "1000.00" || resp.OpeningBalance != "123.40" {
		t.Fatalf("unexpected account response: %+v", resp)
	}

	list := AccountsFromDomain([]*domain.Account{account})
	if len(list) != 1 || list[0].Number != account.Number {
		t.Fatalf("AccountsFromDomain returned %+v", list)
	}
}

func TestClientsFromDomain(t *testing.T) {
	clients := []*domain.ClientAccounts{
		{Client: &domain.Client{ID: 1, Name: "Alice"}, Accounts: []*domain.Account{{Number: "A", ClientID: 1}}},
		{Client: &domain.Client{ID: 2, Name: "Bob"}},
	}

	resp := ClientsFromDomain(clients)
	if len(resp) != 2 || resp[0].Name != "Alice" || len(resp[0].Accounts) != 1 {
		t.Fatalf("unexpected clients response: %+v", resp)
	}
	if resp[1].Accounts == nil || len(resp[1].Accounts) != 0 {
		t.Fatalf("expected empty account list for Bob, got %v", resp[1].Accounts)
	}
}

func TestTransferFromResult(t *testing.T) {
	now := time.Now()
	result := &usecase.PostingResult{
		Transaction: &domain.Transaction{
			ID:          5,
			Reference:   "01HZ",
			FromAccount: "A",
			ToAccount:   "B",
			Amount:      decimal.NewFromInt(300),
			CreatedAt:   now,
		},
		FromBalance: decimal.NewFromInt(700),
		ToBalance:   decimal.NewFromInt(800),
	}

	resp := TransferFromResult(result)
	if resp.Transaction.ID != 5 || resp.Transaction.Amount != "300.00" {
		t.Fatalf("unexpected transaction: %+v", resp.Transaction)
	}
	if resp.FromBalance != "700.00" || resp.ToBalance != "800.00" {
		t.Fatalf("unexpected balances: %s/%s", resp.FromBalance, resp.ToBalance)
	}
}

func TestReportFromDomain(t *testing.T) {
	report := &usecase.ReconciliationReport{
		TotalAccounts:      2,
		ReconciledAccounts: 1,
		Discrepancies: []*usecase.ReconciliationResult{{
			AccountNumber:     "A",
			RecordedBalance:   decimal.NewFromInt(90),
			CalculatedBalance: decimal.NewFromInt(95),
			Difference:        decimal.NewFromInt(-5),
		}},
	}

	resp := ReportFromDomain(report)
	if len(resp.Discrepancies) != 1 || resp.Discrepancies[0].Difference != "-5.00" {
		t.Fatalf("unexpected report: %+v", resp)
	}
	if resp.RemovedTransfers != "0.00" {
		t.Errorf("expected removed transfers 0.00, got %q", resp.RemovedTransfers)
	}
}
