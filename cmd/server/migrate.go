package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/arkham-companion/internal/config"
	"github.com/mcoot/arkham-companion/internal/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Database.Driver != config.DriverPostgres {
			return fmt.Errorf("migrate needs database.driver=%s, got %q", config.DriverPostgres, cfg.Database.Driver)
		}

		st, err := postgres.Open(cfg.Database.URL)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}
		logger.Info("database migrated")
		return nil
	},
}
