package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"budgetbook/internal/core"

	"github.com/spf13/cobra"
)

func (a *app) analyticsCmd() *cobra.Command {
	var (
		user   string
		year   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Print the yearly analytics of a user",
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
			if year == 0 {
				year = l.Now().Year()
			}
			an, err := l.YearlyAnalytics(id, year)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, an)
			}

			fmt.Fprintf(out, "Analytics %s %d\n\n", id, year)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "Month\tIncome\tBudget\tSpent\tOverrun\tSavings\tBank\tPension\tLost\t")
			for _, m := range an.Months {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
					core.MonthString(m.Month),
					money(m.Income), money(m.Budget), money(m.Spent), money(m.Overrun),
					money(m.Savings), money(m.Bank), money(m.Pension), money(m.LostMoney))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\nIncome %s  Spent %s  Saved %s  Lost %s  Goals met %d/12\n",
				money(an.YearlyIncome), money(an.YearlySpent), money(an.YearlySavings), money(an.YearlyLost), an.GoalsMet)
			if an.WorstOverrun.Month != 0 {
				fmt.Fprintf(out, "Worst overrun: %s (%s)\n", core.MonthString(an.WorstOverrun.Month), money(an.WorstOverrun.Amount))
			}
			if an.WorstCategory.Category != "" {
				fmt.Fprintf(out, "Worst category: %s (%s)\n", an.WorstCategory.Category, money(an.WorstCategory.Amount))
			}
			return nil
		},
	}
	userFlag(cmd, &user)
	cmd.Flags().IntVar(&year, "year", 0, "Year (default: current year)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	var (
		user   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print per-category monthly statistics of a user",
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
			stats := l.CategoryStatsAll(id)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, stats)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Category\tMonths\tAverage\tMedian\tTotal")
			for _, s := range stats {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", s.Category, s.Months, money(s.Average), money(s.Median), money(s.Total))
			}
			return tw.Flush()
		},
	}
	userFlag(cmd, &user)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
