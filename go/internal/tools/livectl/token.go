package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mcdev12/liveworkshop/go/internal/live/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd(o *options) *cobra.Command {
	defaults := auth.DefaultConfig()
	var (
		secret  string
		subject string
		issuer  string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a controller token",
		Long:  "Sign a controller token with the server's secret. Export it as LIVE_TOKEN for the other commands.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			authorizer, err := auth.NewAuthorizer(auth.Config{
				Secret:   secret,
				Issuer:   issuer,
				TokenTTL: ttl,
			}, o.clock)
			if err != nil {
				return fmt.Errorf("create authorizer (is LIVE_JWT_SECRET set?): %w", err)
			}

			token, err := authorizer.IssueToken(subject)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("LIVE_JWT_SECRET"), "signing secret")
	cmd.Flags().StringVar(&subject, "subject", envOr("USER", "facilitator"), "token subject")
	cmd.Flags().StringVar(&issuer, "issuer", defaults.Issuer, "token issuer")
	cmd.Flags().DurationVar(&ttl, "ttl", defaults.TokenTTL, "token lifetime")
	return cmd
}
