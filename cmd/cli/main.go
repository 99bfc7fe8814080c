package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every API command.
type rootOptions struct {
	baseURL string
	timeout time.Duration
	actor   string
	role    string
	token   string
}

func (o *rootOptions) client() *apiClient {
	return newAPIClient(o.baseURL, o.actor, o.role, o.token, o.timeout)
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "coopledger",
		Short:         "Coopledger CLI tool",
		Long:          `A command line interface for closing periods, checking trial balances and distributing dividends through the coopledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the coopledger API")
	flags.DurationVar(&opts.timeout, "timeout", 3*time.Minute, "Request timeout")
	flags.StringVar(&opts.actor, "actor", os.Getenv("COOPLEDGER_ACTOR"), "Actor ID sent when the server runs without JWT auth")
	flags.StringVar(&opts.role, "role", "", "Actor role sent with --actor (admin, accountant, viewer)")
	flags.StringVar(&opts.token, "token", os.Getenv("COOPLEDGER_TOKEN"), "Bearer token for servers with JWT auth enabled")

	rootCmd.AddCommand(
		newPeriodCmd(opts),
		newTrialBalanceCmd(opts),
		newDividendsCmd(opts),
		newReportsCmd(opts),
		newMigrateCmd(),
		newSweepOverdueCmd(),
	)

	return rootCmd
}
