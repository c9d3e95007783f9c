package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/ledgerbook/internal/adapter/console"
	"github.com/iho/ledgerbook/internal/app"
	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/infrastructure/config"
	"github.com/iho/ledgerbook/internal/infrastructure/logger"
	"github.com/iho/ledgerbook/internal/infrastructure/postgres"
	"github.com/iho/ledgerbook/internal/usecase"
)

// Migration runners, swapped out in tests.
var (
	runMigrations     = postgres.RunMigrations
	runMigrationsDown = postgres.RunMigrationsDown
)

// clientLister lists clients with their accounts.
type clientLister interface {
	ListClients(ctx context.Context) ([]*domain.ClientAccounts, error)
}

// reconciler checks the ledger.
type reconciler interface {
	CheckLedgerConsistency(ctx context.Context) error
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// services is what the commands need from an open ledger.
type services struct {
	registry       clientLister
	posting        console.Poster
	history        console.History
	exchange       console.Exchange
	reconciliation reconciler
}

// connectFunc opens the ledger. The returned func releases it.
type connectFunc func(ctx context.Context) (*services, func(), error)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(cfg, log, connectPostgres(cfg, log))
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func connectPostgres(cfg *config.Config, log zerolog.Logger) connectFunc {
	return func(ctx context.Context) (*services, func(), error) {
		ledger, pool, err := app.Connect(ctx, cfg, app.Options{
			Logger:         log,
			RetryConflicts: cfg.PostingRetryConflicts,
		})
		if err != nil {
			return nil, nil, err
		}

		return &services{
			registry:       ledger.Registry,
			posting:        ledger.Posting,
			history:        ledger.History,
			exchange:       ledger.Exchange,
			reconciliation: ledger.Reconciliation,
		}, pool.Close, nil
	}
}

func newRootCmd(cfg *config.Config, log zerolog.Logger, connect connectFunc) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ledgerbook",
		Short: "Ledgerbook client and account ledger",
		Long: `Ledgerbook keeps clients, their accounts and an append-only history of
transfers between accounts. Without a subcommand it starts the interactive menu.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			menu := console.NewMenu(
				svc.registry, svc.posting, svc.history, svc.exchange,
				console.Config{ExportFile: cfg.ExportFile, ImportFile: cfg.ImportFile},
				log, cmd.InOrStdin(), cmd.OutOrStdout(),
			)
			return menu.Run(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL connection URL")

	rootCmd.AddCommand(
		migrateCmd(cfg, log),
		clientsCmd(connect),
		transferCmd(connect),
		historyCmd(connect),
		exportCmd(cfg, connect),
		importCmd(cfg, connect),
		ledgerCmd(connect),
	)

	return rootCmd
}
