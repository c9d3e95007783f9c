// Package console implements the interactive ledger menu.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/adapter/xmldoc"
	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

const historyTimeLayout = "2006-01-02 15:04"

// Registry lists clients with their accounts.
type Registry interface {
	ListClients(ctx context.Context) ([]*domain.ClientAccounts, error)
}

// Poster moves money between accounts.
type Poster interface {
	Post(ctx context.Context, input usecase.PostInput) (*usecase.PostingResult, error)
}

// History lists committed transaction records.
type History interface {
	ListAll(ctx context.Context, page usecase.Page) ([]*domain.Transaction, error)
	ListForAccount(ctx context.Context, accountNumber string, page usecase.Page) ([]*domain.Transaction, error)
}

// Exchange exports and imports the BankData document.
type Exchange interface {
	Export(ctx context.Context) ([]*domain.ClientAccounts, error)
	Import(ctx context.Context, clients []usecase.ImportClient) (*usecase.ImportSummary, error)
}

// Config names the default exchange files.
type Config struct {
	ExportFile string
	ImportFile string
}

// Menu is the interactive console. Every failure is reported and the menu
// is shown again; only EOF, context cancellation or "0" end Run.
type Menu struct {
	registry Registry
	posting  Poster
	history  History
	exchange Exchange
	cfg      Config
	logger   zerolog.Logger

	in  *bufio.Scanner
	out io.Writer
}

// NewMenu creates a Menu reading from in and writing to out.
func NewMenu(registry Registry, posting Poster, history History, exchange Exchange, cfg Config, logger zerolog.Logger, in io.Reader, out io.Writer) *Menu {
	if cfg.ExportFile == "" {
		cfg.ExportFile = "clients_export.xml"
	}
	if cfg.ImportFile == "" {
		cfg.ImportFile = "import.xml"
	}

	return &Menu{
		registry: registry,
		posting:  posting,
		history:  history,
		exchange: exchange,
		cfg:      cfg,
		logger:   logger,
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// Run shows the menu until the user exits.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printMenu()
		choice, ok := m.prompt("\nChoose an action: ")
		if !ok {
			m.println("\nExiting...")
			return m.in.Err()
		}

		switch choice {
		case "1":
			m.showClients(ctx)
		case "2":
			m.transfer(ctx)
		case "3":
			m.exportFile(ctx)
		case "4":
			m.importFile(ctx)
		case "5":
			m.showHistory(ctx)
		case "0":
			m.println("\nExiting...")
			return nil
		default:
			m.println("Invalid choice, try again")
		}
	}
}

func (m *Menu) printMenu() {
	m.println("\nMenu:")
	m.println("1 - List clients and their accounts")
	m.println("2 - Transfer between accounts")
	m.println("3 - Export clients with accounts to XML")
	m.println("4 - Import clients with accounts from XML")
	m.println("5 - Transaction history")
	m.println("0 - Exit")
}

func (m *Menu) showClients(ctx context.Context) {
	clients, err := m.registry.ListClients(ctx)
	if err != nil {
		m.fail("Failed to list clients", err)
		return
	}

	if len(clients) == 0 {
		m.println("No clients in the ledger.")
		return
	}

	m.println("\nClients and their accounts:")
	for _, ca := range clients {
		m.printf("Client %d: %s\n", ca.Client.ID, ca.Client.Name)
		if len(ca.Accounts) == 0 {
			m.println("----No accounts")
			continue
		}
		for _, a := range ca.Accounts {
			m.printf("----Account: %s, balance: %s\n", a.Number, a.Balance.StringFixed(2))
		}
	}
}

// transfer collects all input before the posting call, so no store unit
// is open while the user types.
func (m *Menu) transfer(ctx context.Context) {
	clients, err := m.registry.ListClients(ctx)
	if err != nil {
		m.fail("Failed to list accounts", err)
		return
	}

	var lines []string
	for _, ca := range clients {
		for _, a := range ca.Accounts {
			lines = append(lines, fmt.Sprintf("- %s (%s): %s", a.Number, ca.Client.Name, a.Balance.StringFixed(2)))
		}
	}
	if len(lines) < 2 {
		m.println("A transfer needs at least 2 accounts")
		return
	}

	m.println("\nAvailable accounts:")
	for _, line := range lines {
		m.println(line)
	}

	from, ok := m.prompt("\nDebit account (number): ")
	if !ok {
		return
	}
	to, ok := m.prompt("Credit account (number): ")
	if !ok {
		return
	}
	rawAmount, ok := m.prompt("Amount: ")
	if !ok {
		return
	}

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		m.println("Invalid amount")
		return
	}

	result, err := m.posting.Post(ctx, usecase.PostInput{
		FromAccount: from,
		ToAccount:   to,
		Amount:      amount,
	})
	if err != nil {
		m.printPostingError(err)
		return
	}

	m.println("\nTransfer completed!")
	m.printf("Debited from %s: %s\n", result.Transaction.FromAccount, result.Transaction.Amount.StringFixed(2))
	m.printf("Credited to %s: %s\n", result.Transaction.ToAccount, result.Transaction.Amount.StringFixed(2))
	m.println("Balances:")
	m.printf("- %s: %s\n", result.Transaction.FromAccount, result.FromBalance.StringFixed(2))
	m.printf("- %s: %s\n", result.Transaction.ToAccount, result.ToBalance.StringFixed(2))
}

func (m *Menu) printPostingError(err error) {
	var insufficient *domain.InsufficientFundsError

	switch {
	case errors.As(err, &insufficient):
		m.printf("Insufficient funds. Available: %s\n", insufficient.Available.StringFixed(2))
	case errors.Is(err, domain.ErrInvalidAmount):
		m.println("Amount must be positive")
	case errors.Is(err, domain.ErrSameAccount):
		m.println("Cannot transfer to the same account")
	case errors.Is(err, domain.ErrAccountNotFound):
		m.println("One of the accounts was not found")
	default:
		m.fail("Transfer failed", err)
	}
}

func (m *Menu) exportFile(ctx context.Context) {
	clients, err := m.exchange.Export(ctx)
	if err != nil {
		m.fail("Export failed", err)
		return
	}

	if err := xmldoc.WriteFile(m.cfg.ExportFile, clients); err != nil {
		m.fail("Export failed", err)
		return
	}

	m.printf("Data exported to %s\n", m.cfg.ExportFile)
}

func (m *Menu) importFile(ctx context.Context) {
	name, ok := m.prompt(fmt.Sprintf("File name (default %s): ", m.cfg.ImportFile))
	if !ok {
		return
	}
	if name == "" {
		name = m.cfg.ImportFile
	}

	clients, err := xmldoc.ReadFile(name)
	if err != nil {
		m.fail("Import failed", err)
		return
	}

	summary, err := m.exchange.Import(ctx, clients)
	if err != nil {
		m.fail("Import failed", err)
		return
	}

	m.printf("Imported %d clients and %d accounts from %s\n", summary.Clients, summary.Accounts, name)
}

func (m *Menu) showHistory(ctx context.Context) {
	m.println("\nTransaction history:")
	m.println("1 - For one account")
	m.println("2 - All transactions")

	choice, ok := m.prompt("Choose an option: ")
	if !ok {
		return
	}

	var (
		txs []*domain.Transaction
		err error
	)
	switch choice {
	case "1":
		number, ok := m.prompt("Account number: ")
		if !ok {
			return
		}
		txs, err = m.history.ListForAccount(ctx, number, usecase.Page{})
	case "2":
		txs, err = m.history.ListAll(ctx, usecase.Page{})
	default:
		m.println("Invalid choice")
		return
	}
	if err != nil {
		m.fail("Failed to load history", err)
		return
	}

	if len(txs) == 0 {
		m.println("No transactions found")
		return
	}

	m.println("")
	tw := tabwriter.NewWriter(m.out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tFrom\tTo\tAmount")
	fmt.Fprintln(tw, "----\t----\t--\t------")
	for _, t := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.CreatedAt.Local().Format(historyTimeLayout), t.FromAccount, t.ToAccount, t.Amount.StringFixed(2))
	}
	tw.Flush()
}

func (m *Menu) fail(message string, err error) {
	m.logger.Debug().Err(err).Str("kind", domain.Kind(err)).Msg(message)
	m.printf("%s (%s): %v\n", message, domain.Kind(err), err)
}

// prompt prints label and reads one trimmed line. ok is false on EOF.
func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}
