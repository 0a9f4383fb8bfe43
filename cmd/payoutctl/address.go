package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"payout/pkg/domain"
	pstrings "payout/pkg/platform/strings"
)

func newAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address <addr>[,<addr>...]",
		Short: "Normalize a comma separated address list",
		Long: `Address parses each address, drops duplicates and prints the list in
checksummed form, ready for the *_ADDRESSES bootstrap variables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := normalizeAddresses(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func normalizeAddresses(raw string) (string, error) {
	parts := pstrings.SplitList(raw, ",")
	if len(parts) == 0 {
		return "", fmt.Errorf("no addresses given")
	}
	out := make([]string, 0, len(parts))
	seen := make(map[domain.Address]bool, len(parts))
	for _, p := range parts {
		addr, err := domain.ParseAddress(p)
		if err != nil {
			return "", fmt.Errorf("invalid address %q: %w", p, err)
		}
		if addr.IsZero() {
			return "", fmt.Errorf("zero address is not allowed")
		}
		if seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr.Hex())
	}
	return strings.Join(out, ","), nil
}
