// Package main provides payoutctl, the operator CLI for the payout ledger.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "payoutctl",
		Short: "Operator tooling for the payout ledger",
		Long: `payoutctl issues bearer tokens for ledger callers and normalizes
addresses for the role bootstrap environment variables.

Signing parameters are read from JWT_SIGNING_KEY, JWT_ISSUER and
JWT_AUDIENCE, the same variables the server validates against.`,
		SilenceUsage: true,
	}
	root.AddCommand(newTokenCmd(), newAddressCmd())
	return root
}
