package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"insight-profile/internal/db"
	"insight-profile/internal/repository"
	"insight-profile/internal/service"
)

func renormalizeCMD() *cobra.Command {
	var (
		dsn    string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "renormalize",
		Short: "Re-canonicalize every stored profile key",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := requireDatabaseURL(dsn)
			if err != nil {
				return err
			}
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()

			pool, err := db.NewPool(cmd.Context(), url)
			if err != nil {
				return err
			}
			defer pool.Close()

			renormalizer := service.NewKeyRenormalizer(repository.NewPgProfileRepository(pool), logger)
			report, err := renormalizer.Run(cmd.Context(), dryRun)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVar(&dsn, "database-url", getenv("DATABASE_URL", ""), "postgres connection string")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing them")
	return cmd
}
