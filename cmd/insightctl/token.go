package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"insight-profile/internal/service"
)

func tokenCMD() *cobra.Command {
	var (
		secret  string
		issuer  string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin bearer token for cache invalidation",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens := service.NewAdminTokenService(secret, issuer)
			token, err := tokens.Issue(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", getenv("ADMIN_JWT_SECRET", ""), "signing secret")
	cmd.Flags().StringVar(&issuer, "issuer", getenv("ADMIN_JWT_ISSUER", "insight-profile"), "token issuer")
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
