package main

import (
	"fmt"

	"garage_backend/internal/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long:  "Creates any missing tables and indexes. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema applied")
			return nil
		},
	}
}
