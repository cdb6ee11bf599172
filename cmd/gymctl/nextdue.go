package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/segyhp/gym-membership/internal/billing"
	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/pkg/utils"
)

type nextDueOptions struct {
	registration   string
	membershipType string
	asOf           string
	timezone       string
	count          int
}

type nextDueResult struct {
	Registration   string                `json:"registrationDate"`
	MembershipType domain.MembershipType `json:"membershipType"`
	AsOf           string                `json:"asOf"`
	Upcoming       []string              `json:"upcoming"`
}

func nextDueCmd() *cobra.Command {
	opts := &nextDueOptions{}

	cmd := &cobra.Command{
		Use:   "next-due",
		Short: "Compute upcoming payment due dates for a registration date",
		Long: `Print the next due dates of a membership without touching the database.

Due dates fall on the registration day of the month; months without that
day use their last day instead.

Examples:
  # First due date after a payment made on 2024-02-05
  gymctl next-due --registration 2024-01-31 --as-of 2024-02-05

  # Next three annual renewals
  gymctl next-due --registration 2020-02-29 --type ANNUAL -n 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNextDue(cmd.OutOrStdout(), opts, time.Now())
		},
	}

	cmd.Flags().StringVar(&opts.registration, "registration", "", "Registration date, YYYY-MM-DD (required)")
	cmd.Flags().StringVarP(&opts.membershipType, "type", "t", string(domain.MembershipMonthly), "Membership type: MONTHLY, ANNUAL")
	cmd.Flags().StringVar(&opts.asOf, "as-of", "", "Reference date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "UTC", "IANA zone used for today")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 1, "Number of due dates to print")
	_ = cmd.MarkFlagRequired("registration")

	return cmd
}

func runNextDue(w io.Writer, opts *nextDueOptions, now time.Time) error {
	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	registration, err := utils.ParseDate(opts.registration, time.UTC)
	if err != nil {
		return err
	}

	asOf := utils.CivilDate(now, loc)
	if opts.asOf != "" {
		if asOf, err = utils.ParseDate(opts.asOf, time.UTC); err != nil {
			return err
		}
	}

	membershipType := domain.MembershipType(strings.ToUpper(opts.membershipType))
	result := nextDueResult{
		Registration:   registration.Format(time.DateOnly),
		MembershipType: membershipType,
		AsOf:           asOf.Format(time.DateOnly),
	}

	cursor := asOf
	for i := 0; i < max(1, opts.count); i++ {
		next, err := billing.NextDueDate(registration, membershipType, cursor)
		if err != nil {
			return err
		}
		result.Upcoming = append(result.Upcoming, next.Format(time.DateOnly))
		cursor = next
	}

	return printResult(w, result, func(w io.Writer) {
		for _, day := range result.Upcoming {
			fmt.Fprintln(w, day)
		}
	})
}
