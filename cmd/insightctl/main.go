package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "insightctl",
		Short:         "Administrative tasks for the insight-profile service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCMD(), renormalizeCMD(), normalizeCMD(), tokenCMD())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func requireDatabaseURL(dsn string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("database url not configured (DATABASE_URL or --database-url)")
	}
	return dsn, nil
}
