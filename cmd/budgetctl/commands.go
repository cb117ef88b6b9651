package main

import (
	"errors"
	"fmt"
	"os"

	"budgetbook/internal/core"

	"github.com/spf13/cobra"
)

func (a *app) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole document as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			data, err := l.ExportJSON()
			if err != nil {
				return err
			}
			if out == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d bytes to %s\n", len(data), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file (default: stdout)")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the whole document with a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := l.ImportJSON(cmd.Context(), data)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("import rejected: not a budgetbook export")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Import complete")
			return nil
		},
	}
}

func (a *app) applyRecurringCmd() *cobra.Command {
	var (
		user        string
		year, month int
	)
	cmd := &cobra.Command{
		Use:   "apply-recurring",
		Short: "Add every recurring template as an expense of a month",
		Long:  "Add every recurring template as an expense dated the 1st of the month.\nRunning it twice for the same month adds the expenses twice.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parseUser(user)
			if err != nil {
				return err
			}
			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			n, err := l.ApplyRecurringToMonth(cmd.Context(), id, year, month)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d recurring expenses to %s\n", n, core.MonthKey(year, month))
			return nil
		},
	}
	userFlag(cmd, &user)
	cmd.Flags().IntVar(&year, "year", 0, "Year")
	cmd.Flags().IntVar(&month, "month", 0, "Month (1-12)")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

func (a *app) sheetsExportCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "sheets-export",
		Short: "Write a user's tabular view to the spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parseUser(user)
			if err != nil {
				return err
			}
			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			wb, err := l.ExportWorkbook(id)
			if err != nil {
				return err
			}
			ws, err := a.sheets(cmd.Context())
			if err != nil {
				return err
			}
			if err := ws.WriteWorkbook(cmd.Context(), id, wb); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d sheets for %s\n", len(wb.Sheets), id)
			return nil
		},
	}
	userFlag(cmd, &user)
	return cmd
}

func (a *app) sheetsImportCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "sheets-import",
		Short: "Merge a user's spreadsheet tabs into the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parseUser(user)
			if err != nil {
				return err
			}
			ws, err := a.sheets(cmd.Context())
			if err != nil {
				return err
			}
			wb, err := ws.ReadWorkbook(cmd.Context(), id)
			if err != nil {
				return err
			}
			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			res, err := l.ImportWorkbook(cmd.Context(), id, wb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d categories, %d forecasts, %d expenses (%d rows skipped)\n",
				res.Categories, res.Forecasts, res.Expenses, res.Skipped)
			return nil
		},
	}
	userFlag(cmd, &user)
	return cmd
}

func (a *app) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the document with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("reset erases every user's data; pass --yes to confirm")
			}
			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			if err := l.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Ledger reset to defaults")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}
