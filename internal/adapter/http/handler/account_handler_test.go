package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/ledgerbook/internal/adapter/http/dto"
	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

type accountServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn    func(ctx context.Context, number string) (*domain.Account, error)
	listFn   func(ctx context.Context) ([]*domain.Account, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, number string) (*domain.Account, error) {
	return s.getFn(ctx, number)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.listFn(ctx)
}

func TestAccountHandler_Create(t *testing.T) {
	var captured usecase.CreateAccountInput
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return &domain.Account{
				Number:         input.Number,
				ClientID:       input.ClientID,
				Balance:        input.InitialBalance,
				OpeningBalance: input.InitialBalance,
			}, nil
		},
	})

	body := `{"client_id":1,"number":"40817","initial_balance":"250.5"}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "40817", captured.Number)
	assert.True(t, captured.InitialBalance.Equal(decimal.RequireFromString("250.5")))

	var resp dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "250.50", resp.Balance)
	assert.Equal(t, "250.50", resp.OpeningBalance)
}

func TestAccountHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		expected int
	}{
		{name: "invalid body", body: "[]", expected: http.StatusBadRequest},
		{name: "negative balance", body: `{"client_id":1,"number":"1","initial_balance":"-1"}`, err: domain.ErrInvalidBalance, expected: http.StatusBadRequest},
		{name: "duplicate number", body: `{"client_id":1,"number":"1","initial_balance":"0"}`, err: domain.ErrConstraintViolation, expected: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAccountHandler(&accountServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
					return nil, tt.err
				},
			})

			rec := httptest.NewRecorder()
			h.Create(rec, httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestAccountHandler_Get(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, number string) (*domain.Account, error) {
			if number != "A" {
				return nil, domain.ErrAccountNotFound
			}
			return &domain.Account{Number: "A", Balance: decimal.NewFromInt(1000)}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Get(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/accounts/A", nil), "number", "A"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1000.00", resp.Balance)

	rec = httptest.NewRecorder()
	h.Get(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/accounts/Z", nil), "number", "Z"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domain.KindAccountNotFound, decodeError(t, rec).Kind)

	rec = httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/accounts/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountHandler_List(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context) ([]*domain.Account, error) {
			return []*domain.Account{{Number: "A"}, {Number: "B"}}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/accounts", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}
