package cmd

import (
	"fmt"
	"log"

	"socios/internal/app"
	"socios/internal/config"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Creates or updates the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		db, err := app.OpenDatabase(cfg.Database)
		if err != nil {
			return err
		}
		if err := app.Migrate(db); err != nil {
			return err
		}
		log.Printf("Schema of %s database is up to date", cfg.Database.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
