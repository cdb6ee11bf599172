package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/segyhp/gym-membership/internal/app"
)

func seedAdminCmd() *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an admin account or reset its password",
		Long: `Create the admin with the given email. When the email already exists
its password is replaced instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 6 {
				return errors.New("password must be at least 6 characters")
			}

			cfg, zl, err := loadEnv()
			if err != nil {
				return err
			}
			defer zl.Sync()

			c, err := app.New(cmd.Context(), cfg, zl)
			if err != nil {
				return err
			}
			defer c.Close()

			admin, err := c.Auth.SeedAdmin(cmd.Context(), email, name, password)
			if err != nil {
				return fmt.Errorf("failed to seed admin: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s (%s) ready\n", admin.Email, admin.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email (required)")
	cmd.Flags().StringVar(&name, "name", "Administrator", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Admin password, at least 6 characters (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
