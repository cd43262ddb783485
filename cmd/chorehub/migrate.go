package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/chorehub/internal/config"
	"github.com/dukerupert/chorehub/internal/database"
	"github.com/dukerupert/chorehub/internal/logging"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the sqlite or postgres backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel, cfg.LogFormat)

			if cfg.Backend == config.BackendREST {
				return fmt.Errorf("the rest backend manages its own schema")
			}
			db, driver, err := openSQL(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			v, err := database.Version(db, driver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version %d\n", driver, v)
			return nil
		},
	}
}
