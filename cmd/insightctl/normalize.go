package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"insight-profile/internal/identity"
)

func normalizeCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <url>...",
		Short: "Print the canonical cache key for each profile URL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, raw := range args {
				key, err := identity.Normalize(raw)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s\tinvalid: %s\n", raw, identity.Reason(err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", raw, key)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d urls are invalid", failed, len(args))
			}
			return nil
		},
	}
}
