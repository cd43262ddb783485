package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/chorehub/internal/config"
	"github.com/dukerupert/chorehub/internal/logging"
	"github.com/dukerupert/chorehub/internal/mutation"
	"github.com/dukerupert/chorehub/internal/remote"
	"github.com/dukerupert/chorehub/internal/session"
)

func repairCmd() *cobra.Command {
	var household string
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Strip dangling assignee and category references from a household",
		RunE: func(cmd *cobra.Command, args []string) error {
			code := session.NormalizeCode(household)
			if code == "" {
				return fmt.Errorf("--household required")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

			backend, closeBackend, err := openBackend(cfg)
			if err != nil {
				return err
			}
			defer closeBackend()

			report, err := mutation.Repair(cmd.Context(), remote.NewAdapter(backend), code, logger)
			if err != nil {
				return fmt.Errorf("repair %s: %w", code, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "household %s: %d chores and %d categories repaired\n", code, report.Chores, report.Categories)
			return nil
		},
	}
	cmd.Flags().StringVar(&household, "household", "", "Household code (required)")
	_ = cmd.MarkFlagRequired("household")
	return cmd
}
