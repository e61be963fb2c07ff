package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"insight-profile/internal/db"
)

func migrateCMD() *cobra.Command {
	var (
		dsn       string
		direction string
		steps     int
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := requireDatabaseURL(dsn)
			if err != nil {
				return err
			}
			if err := db.Migrate(url, direction, steps); err != nil {
				return err
			}
			version, dirty, err := db.Version(url)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%v)\n", version, dirty)
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "database-url", getenv("DATABASE_URL", ""), "postgres connection string")
	cmd.Flags().StringVar(&direction, "direction", db.DirectionUp, "up or down")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")
	return cmd
}
