// gymctl runs back-office maintenance tasks against the gym membership database.
//
// Usage:
//
//	gymctl migrate
//	gymctl sweep
//	gymctl seed-admin --email admin@gym.test --name Admin --password secret
//	gymctl next-due --registration 2024-01-31 --type MONTHLY --as-of 2024-02-05
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/segyhp/gym-membership/internal/config"
	"github.com/segyhp/gym-membership/pkg/logger"
)

var (
	version   = "dev"
	outputFmt string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gymctl",
		Short: "Maintenance commands for the gym membership back office",
		Long: `gymctl talks to the same Postgres and Redis as the API server.

Configuration is read from the environment and an optional .env file,
exactly as the server does.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json")

	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(sweepCmd())
	cmd.AddCommand(seedAdminCmd())
	cmd.AddCommand(nextDueCmd())

	return cmd
}

// loadEnv reads configuration and builds a console logger for interactive use
func loadEnv() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	format := cfg.Logging.Format
	if format == "json" {
		format = "console"
	}
	zl, err := logger.New(cfg.Logging.Level, format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, zl, nil
}

// printResult writes v as indented JSON, or calls text when the output is text
func printResult(w io.Writer, v interface{}, text func(io.Writer)) error {
	switch outputFmt {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "text", "":
		text(w)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", outputFmt)
	}
}
