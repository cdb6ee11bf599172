package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/segyhp/gym-membership/internal/app"
	"github.com/segyhp/gym-membership/internal/domain"
)

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run the alert sweep once",
		Long: `Rebuild today's PAYMENT_DUE_SOON and PAYMENT_OVERDUE alerts.

The run takes the same redis lock as the scheduler, so it is skipped
when a scheduled sweep is in progress.

Examples:
  # Sweep and print a summary
  gymctl sweep

  # Output as JSON
  gymctl sweep -o json`,
		Args: cobra.NoArgs,
		RunE: runSweep,
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
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

	result, err := c.Sweeper.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	return printResult(cmd.OutOrStdout(), result, func(w io.Writer) {
		writeSweep(w, result)
	})
}

func writeSweep(w io.Writer, result *domain.SweepResult) {
	if result.Skipped {
		fmt.Fprintln(w, "Sweep skipped: another run holds the lock")
		return
	}
	fmt.Fprintf(w, "Day:       %s\n", result.Day.Format(time.DateOnly))
	fmt.Fprintf(w, "Horizon:   %s\n", result.Horizon.Format(time.DateOnly))
	fmt.Fprintf(w, "Due soon:  %d\n", result.DueSoon)
	fmt.Fprintf(w, "Overdue:   %d\n", result.Overdue)
	fmt.Fprintf(w, "Created:   %d\n", result.Created)
}
