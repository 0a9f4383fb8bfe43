package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"payout/internal/access"
	jwttoken "payout/internal/jwt_token"
	"payout/internal/platform/config"
	"payout/pkg/domain"
)

type tokenOptions struct {
	address string
	role    string
	ttl     time.Duration
}

func newTokenCmd() *cobra.Command {
	opts := &tokenOptions{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an address",
		Long: `Token signs an access token whose subject is the given address.

The role flag is recorded in the token for operators reading it back; the
server always checks permissions against its role registry.

Example:
  payoutctl token --address 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed --role funder
  payoutctl token --address 0x5aAe... --ttl 1h`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := issueToken(config.FromEnv().Auth, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.address, "address", "", "caller address (required)")
	cmd.Flags().StringVar(&opts.role, "role", "", "role to record in the token")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 15*time.Minute, "token lifetime")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func issueToken(auth config.Auth, opts *tokenOptions) (string, error) {
	caller, err := domain.ParseAddress(opts.address)
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", opts.address, err)
	}
	if opts.role != "" {
		if _, err := access.ParseRole(opts.role); err != nil {
			return "", fmt.Errorf("invalid role %q: %w", opts.role, err)
		}
	}
	svc := jwttoken.NewJWTService(auth.JWTSigningKey, auth.Issuer, auth.Audience)
	return svc.GenerateAccessToken(caller, opts.role, opts.ttl)
}
