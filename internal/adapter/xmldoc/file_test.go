package xmldoc

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/ledgerbook/internal/domain"
)

func TestWriteFileReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients_export.xml")

	require.NoError(t, WriteFile(path, []*domain.ClientAccounts{{
		Client:   &domain.Client{ID: 3, Name: "Alice"},
		Accounts: []*domain.Account{{Number: "A", Balance: decimal.NewFromInt(5)}},
	}}))

	clients, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, int64(3), clients[0].ID)
	assert.True(t, clients[0].Accounts[0].Balance.Equal(decimal.NewFromInt(5)))
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.xml"))
	assert.Error(t, err)
}
