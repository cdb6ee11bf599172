package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/segyhp/gym-membership/internal/app"
	"github.com/segyhp/gym-membership/internal/repository"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long: `Create the admins, members, payments and alerts tables and their indexes.

The schema is idempotent; running it twice is safe.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, zl, err := loadEnv()
	if err != nil {
		return err
	}
	defer zl.Sync()

	db, err := app.OpenDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := repository.Migrate(cmd.Context(), db); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Schema applied")
	return nil
}
