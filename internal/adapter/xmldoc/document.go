// Package xmldoc reads and writes the BankData exchange document.
package xmldoc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

// ErrInvalidDocument is returned when an import document cannot be read.
var ErrInvalidDocument = errors.New("invalid exchange document")

type bankData struct {
	XMLName xml.Name    `xml:"BankData"`
	Clients []clientDoc `xml:"Client"`
}

type clientDoc struct {
	ID       string      `xml:"ID"`
	Name     string      `xml:"Name"`
	Accounts accountList `xml:"Accounts"`
}

type accountList struct {
	Accounts []accountDoc `xml:"Account"`
}

type accountDoc struct {
	Number  string `xml:"Number"`
	Balance string `xml:"Balance"`
}

// Encode writes clients and their accounts as an indented BankData document.
// Every client gets an Accounts element, empty or not.
func Encode(w io.Writer, clients []*domain.ClientAccounts) error {
	doc := bankData{Clients: make([]clientDoc, 0, len(clients))}
	for _, ca := range clients {
		c := clientDoc{
			ID:   strconv.FormatInt(ca.Client.ID, 10),
			Name: ca.Client.Name,
		}
		for _, a := range ca.Accounts {
			c.Accounts.Accounts = append(c.Accounts.Accounts, accountDoc{
				Number:  a.Number,
				Balance: a.Balance.StringFixed(2),
			})
		}
		doc.Clients = append(doc.Clients, c)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\n")
	return err
}

// Decode reads a BankData document. An empty or missing ID lets the store
// assign one. Values are trimmed; validation of names, numbers and balances
// is left to the exchange use case.
func Decode(r io.Reader) ([]usecase.ImportClient, error) {
	var doc bankData
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	clients := make([]usecase.ImportClient, 0, len(doc.Clients))
	for i, c := range doc.Clients {
		client := usecase.ImportClient{
			Name:     strings.TrimSpace(c.Name),
			Accounts: make([]usecase.ImportAccount, 0, len(c.Accounts.Accounts)),
		}

		if id := strings.TrimSpace(c.ID); id != "" {
			parsed, err := strconv.ParseInt(id, 10, 64)
			if err != nil || parsed <= 0 {
				return nil, fmt.Errorf("%w: client %d: bad ID %q", ErrInvalidDocument, i+1, id)
			}
			client.ID = parsed
		}

		for _, a := range c.Accounts.Accounts {
			number := strings.TrimSpace(a.Number)
			balance, err := decimal.NewFromString(strings.TrimSpace(a.Balance))
			if err != nil {
				return nil, fmt.Errorf("%w: account %q: bad balance %q", ErrInvalidDocument, number, a.Balance)
			}
			client.Accounts = append(client.Accounts, usecase.ImportAccount{
				Number:  number,
				Balance: balance,
			})
		}

		clients = append(clients, client)
	}

	return clients, nil
}
