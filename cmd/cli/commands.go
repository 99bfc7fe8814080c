package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"
)

func newPeriodCmd(opts *rootOptions) *cobra.Command {
	var (
		month, year    int
		idempotencyKey string
	)

	periodCmd := &cobra.Command{
		Use:   "period",
		Short: "Fiscal period operations",
	}
	periodCmd.PersistentFlags().IntVar(&month, "month", 0, "Month (1-12)")
	periodCmd.PersistentFlags().IntVar(&year, "year", 0, "Year")
	_ = periodCmd.MarkPersistentFlagRequired("month")
	_ = periodCmd.MarkPersistentFlagRequired("year")

	action := func(verb string) *cobra.Command {
		cmd := &cobra.Command{
			Use:   verb,
			Short: verb + " a fiscal period",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path := fmt.Sprintf("/api/v1/periods/%d/%d/%s", year, month, verb)
				raw, err := opts.client().post(cmd.Context(), path, nil, idempotencyKey)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), raw)
			},
		}
		cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key (random when empty)")
		return cmd
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show a fiscal period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := opts.client().get(cmd.Context(), fmt.Sprintf("/api/v1/periods/%d/%d", year, month))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), raw)
		},
	}

	periodCmd.AddCommand(action("close"), action("confirm"), showCmd)
	return periodCmd
}

func newTrialBalanceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trial-balance YYYY-MM",
		Short: "Check the trial balance of a period; exits non-zero when it is out of balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkTrialBalance(cmd.Context(), opts.client(), args[0], cmd.OutOrStdout())
		},
	}
}

func checkTrialBalance(ctx context.Context, client *apiClient, periodKey string, out io.Writer) error {
	raw, err := client.get(ctx, "/api/v1/trial-balance/"+url.PathEscape(periodKey))
	if err != nil {
		return err
	}
	if err := printJSON(out, raw); err != nil {
		return err
	}

	var tb struct {
		Balanced bool   `json:"balanced"`
		Variance string `json:"variance"`
	}
	if err := json.Unmarshal(raw, &tb); err != nil {
		return fmt.Errorf("decode trial balance: %w", err)
	}
	if !tb.Balanced {
		return fmt.Errorf("trial balance for %s is out of balance by %s", periodKey, tb.Variance)
	}
	return nil
}

func newDividendsCmd(opts *rootOptions) *cobra.Command {
	var (
		year                            int
		dividendRate, averageReturnRate string
		idempotencyKey                  string
	)

	dividendsCmd := &cobra.Command{
		Use:   "dividends",
		Short: "Annual dividend operations",
	}
	dividendsCmd.PersistentFlags().IntVar(&year, "year", 0, "Dividend year")
	_ = dividendsCmd.MarkPersistentFlagRequired("year")

	calculateCmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate (or recalculate) the dividend draft for a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body := map[string]string{
				"dividend_rate":       dividendRate,
				"average_return_rate": averageReturnRate,
			}
			raw, err := opts.client().post(cmd.Context(), fmt.Sprintf("/api/v1/dividends/%d/calculate", year), body, idempotencyKey)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), raw)
		},
	}
	calculateCmd.Flags().StringVar(&dividendRate, "dividend-rate", "", "Dividend rate in percent")
	calculateCmd.Flags().StringVar(&averageReturnRate, "average-return-rate", "", "Average return rate in percent")
	calculateCmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key (random when empty)")
	_ = calculateCmd.MarkFlagRequired("dividend-rate")
	_ = calculateCmd.MarkFlagRequired("average-return-rate")

	distributeCmd := &cobra.Command{
		Use:   "distribute",
		Short: "Pay out an approved dividend distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := opts.client().post(cmd.Context(), fmt.Sprintf("/api/v1/dividends/%d/distribute", year), nil, idempotencyKey)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), raw)
		},
	}
	distributeCmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key (random when empty)")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the distribution for a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := opts.client().get(cmd.Context(), fmt.Sprintf("/api/v1/dividends/%d", year))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), raw)
		},
	}

	dividendsCmd.AddCommand(calculateCmd, distributeCmd, showCmd)
	return dividendsCmd
}

func newReportsCmd(opts *rootOptions) *cobra.Command {
	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "Financial reports",
	}

	var asOf string
	balanceSheetCmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Balance sheet as of a date (today when omitted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := "/api/v1/reports/balance-sheet"
			if asOf != "" {
				path += "?" + url.Values{"as_of": {asOf}}.Encode()
			}
			raw, err := opts.client().get(cmd.Context(), path)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), raw)
		},
	}
	balanceSheetCmd.Flags().StringVar(&asOf, "as-of", "", "Report date (YYYY-MM-DD)")

	var start, end string
	incomeExpenseCmd := &cobra.Command{
		Use:   "income-expense",
		Short: "Income and expense report for a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := url.Values{"start": {start}, "end": {end}}
			raw, err := opts.client().get(cmd.Context(), "/api/v1/reports/income-expense?"+query.Encode())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), raw)
		},
	}
	incomeExpenseCmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	incomeExpenseCmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	_ = incomeExpenseCmd.MarkFlagRequired("start")
	_ = incomeExpenseCmd.MarkFlagRequired("end")

	reportsCmd.AddCommand(balanceSheetCmd, incomeExpenseCmd)
	return reportsCmd
}
