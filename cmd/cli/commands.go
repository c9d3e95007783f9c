package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/ledgerbook/internal/adapter/xmldoc"
	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/infrastructure/config"
	"github.com/iho/ledgerbook/internal/usecase"
)

const historyTimeLayout = "2006-01-02 15:04"

func migrateCmd(cfg *config.Config, log zerolog.Logger) *cobra.Command {
	var down, yes bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if down {
				if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "This drops every table and all ledger data. Type 'yes' to continue: ") {
					return errors.New("rollback aborted")
				}
				if err := runMigrationsDown(cfg.DatabaseURL, log); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations rolled back")
				return nil
			}

			if err := runMigrations(cfg.DatabaseURL, log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "Roll back all migrations")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask before rolling back")
	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}

	return strings.EqualFold(strings.TrimSpace(scanner.Text()), "yes")
}

func clientsCmd(connect connectFunc) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List clients and their accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			clients, err := svc.registry.ListClients(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), clients)
			}
			printClients(cmd.OutOrStdout(), clients)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func transferCmd(connect connectFunc) *cobra.Command {
	var from, to, amount string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money from one account to another",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q", amount)
			}

			svc, closeFn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := svc.posting.Post(cmd.Context(), usecase.PostInput{
				FromAccount: from,
				ToAccount:   to,
				Amount:      value,
			})
			if err != nil {
				return describePostingError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Transfer %s completed\n", result.Transaction.Reference)
			fmt.Fprintf(out, "- %s: %s\n", result.Transaction.FromAccount, result.FromBalance.StringFixed(2))
			fmt.Fprintf(out, "- %s: %s\n", result.Transaction.ToAccount, result.ToBalance.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Debit account number")
	cmd.Flags().StringVar(&to, "to", "", "Credit account number")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to transfer")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func historyCmd(connect connectFunc) *cobra.Command {
	var (
		account string
		page    usecase.Page
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show transaction history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			var txs []*domain.Transaction
			if account != "" {
				txs, err = svc.history.ListForAccount(cmd.Context(), account, page)
			} else {
				txs, err = svc.history.ListAll(cmd.Context(), page)
			}
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), txs)
			}
			printHistory(cmd.OutOrStdout(), txs)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Only show transactions touching this account")
	cmd.Flags().IntVar(&page.Limit, "limit", 0, "Maximum number of records (0 for all)")
	cmd.Flags().IntVar(&page.Offset, "offset", 0, "Number of records to skip")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func exportCmd(cfg *config.Config, connect connectFunc) *cobra.Command {
	file := cfg.ExportFile

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export clients with accounts to XML",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			clients, err := svc.exchange.Export(cmd.Context())
			if err != nil {
				return err
			}
			if err := xmldoc.WriteFile(file, clients); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d clients to %s\n", len(clients), file)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", file, "Output file")
	return cmd
}

func importCmd(cfg *config.Config, connect connectFunc) *cobra.Command {
	file := cfg.ImportFile

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import clients with accounts from XML in one unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			clients, err := xmldoc.ReadFile(file)
			if err != nil {
				return err
			}

			svc, closeFn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			summary, err := svc.exchange.Import(cmd.Context(), clients)
			if err != nil {
				return fmt.Errorf("import failed, nothing was written: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d clients and %d accounts from %s\n", summary.Clients, summary.Accounts, file)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", file, "Input file")
	return cmd
}

func ledgerCmd(connect connectFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check that balances add up to opening balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := svc.reconciliation.CheckLedgerConsistency(cmd.Context()); err != nil {
				return fmt.Errorf("consistency check FAILED: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Consistency check PASSED")
			return nil
		},
	}

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Reconcile every account against its history",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			report, err := svc.reconciliation.GenerateReconciliationReport(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Accounts reconciled: %d/%d\n", report.ReconciledAccounts, report.TotalAccounts)
			fmt.Fprintf(out, "Ledger consistent: %v\n", report.LedgerConsistent)
			if !report.RemovedTransfers.IsZero() {
				fmt.Fprintf(out, "Net transfers from deleted accounts: %s\n", report.RemovedTransfers.StringFixed(2))
			}
			for _, d := range report.Discrepancies {
				fmt.Fprintf(out, "- %s: recorded %s, calculated %s\n", d.AccountNumber, d.RecordedBalance.StringFixed(2), d.CalculatedBalance.StringFixed(2))
			}
			return nil
		},
	}

	cmd.AddCommand(consistencyCmd, reportCmd)
	return cmd
}

func describePostingError(err error) error {
	var insufficient *domain.InsufficientFundsError
	if errors.As(err, &insufficient) {
		return fmt.Errorf("%s: available %s", domain.KindInsufficientFunds, insufficient.Available.StringFixed(2))
	}
	return fmt.Errorf("%s: %w", domain.Kind(err), err)
}

func printClients(w io.Writer, clients []*domain.ClientAccounts) {
	if len(clients) == 0 {
		fmt.Fprintln(w, "No clients in the ledger.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "CLIENT\tNAME\tACCOUNT\tBALANCE")
	for _, ca := range clients {
		if len(ca.Accounts) == 0 {
			fmt.Fprintf(tw, "%d\t%s\t-\t-\n", ca.Client.ID, ca.Client.Name)
			continue
		}
		for _, a := range ca.Accounts {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", ca.Client.ID, ca.Client.Name, a.Number, a.Balance.StringFixed(2))
		}
	}
	tw.Flush()
}

func printHistory(w io.Writer, txs []*domain.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tFROM\tTO\tAMOUNT")
	for _, t := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.CreatedAt.Local().Format(historyTimeLayout), t.FromAccount, t.ToAccount, t.Amount.StringFixed(2))
	}
	tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
