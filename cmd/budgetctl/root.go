package main

import (
	"context"
	"fmt"
	"os"

	"budgetbook/internal/backend"
	"budgetbook/internal/cli"
	"budgetbook/internal/config"
	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
	"budgetbook/internal/log"
	"budgetbook/internal/sheets"
	gsheet "budgetbook/internal/sheets/google"

	"github.com/spf13/cobra"
)

// app holds the persistent flags and the lazily opened adapters shared by
// every subcommand.
type app struct {
	cfg      *config.Config
	dbPath   string
	key      string
	logLevel string

	logger *log.Logger
	res    *backend.BackendResult
	// workbooks overrides the configured mirror; tests set it.
	workbooks sheets.WorkbookStore
}

func newRootCmd() *cobra.Command {
	return (&app{}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cfg := config.Load()
	a.cfg = cfg
	root := &cobra.Command{
		Use:           "budgetctl",
		Short:         "Household budget ledger maintenance",
		Long:          "Export, import, apply recurring expenses and print reports for the budgetbook ledger.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.logger = log.NewText(cmd.ErrOrStderr(), log.ParseLevel(a.logLevel), log.ComponentCLI)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.dbPath, "db", cfg.SQLiteDBPath, "SQLite database path")
	root.PersistentFlags().StringVar(&a.key, "key", cfg.StoreKey, "Blob key the document is stored under")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		a.exportCmd(),
		a.importCmd(),
		a.applyRecurringCmd(),
		a.analyticsCmd(),
		a.statsCmd(),
		a.sheetsExportCmd(),
		a.sheetsImportCmd(),
		a.resetCmd(),
	)
	return root
}

// open builds the backend the server would use, pinned to SQLite at --db.
// With AMQP_URL set, every save is announced to the sync worker.
func (a *app) open(ctx context.Context) (*backend.BackendResult, error) {
	if a.res != nil {
		return a.res, nil
	}
	appCfg := *a.cfg
	appCfg.DataBackend = config.BackendSQLite
	appCfg.SQLiteDBPath = a.dbPath
	bcfg, err := backend.FromAppConfig(&appCfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(a.logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", a.dbPath, err)
	}
	a.res = res
	return res, nil
}

// openLedger loads the document. Missing or unreadable documents fall
// back to the defaults, like the server does.
func (a *app) openLedger(ctx context.Context) (*ledger.Ledger, error) {
	res, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Open(ctx, res.Store, ledger.WithKey(a.key), ledger.WithLogger(a.logger)), nil
}

// sheets returns the configured mirror. With SHEETS_BACKEND=none the
// Google client is still built from the environment for one-off runs.
func (a *app) sheets(ctx context.Context) (sheets.WorkbookStore, error) {
	if a.workbooks != nil {
		return a.workbooks, nil
	}
	res, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	if res.Sheets != nil {
		return res.Sheets, nil
	}
	client, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("google sheets: %w", err)
	}
	return client, nil
}

func (a *app) close() error {
	if a.res == nil {
		return nil
	}
	err := a.res.Close()
	a.res = nil
	return err
}

func userFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "user", "", "User id (tal or ron)")
	_ = cmd.MarkFlagRequired("user")
}

func parseUser(s string) (core.UserID, error) {
	id, err := core.ParseUserID(s)
	if err != nil {
		return "", fmt.Errorf("--user %q: %w", s, err)
	}
	return id, nil
}

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
