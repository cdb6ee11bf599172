// Package billing computes membership due dates.
//
// Every period is measured from the registration anchor, never chained from the
// previous due date. Month arithmetic keeps the anchor's day-of-month and clamps
// it to the last day of shorter months, so a member registered on January 31
// falls due on Feb 29 (leap year), Mar 31, Apr 30 and so on. Annual cycles
// anchored on February 29 fall due on February 28 in common years.
package billing

import (
	"time"

	"github.com/segyhp/gym-membership/internal/domain"
	customError "github.com/segyhp/gym-membership/pkg/errors"
)

// maxPeriods bounds the search so a corrupt asOf far in the future cannot spin forever.
const maxPeriods = 12 * 500

// AddMonthsClamped adds n calendar months to t, clamping the day to the target month's length.
// Time of day and location are preserved.
func AddMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	total := int(m) - 1 + n
	ty := y + floorDiv(total, 12)
	tm := time.Month(floorMod(total, 12) + 1)

	if last := daysIn(ty, tm, t.Location()); d > last {
		d = last
	}
	return time.Date(ty, tm, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// AddPeriods advances anchor by n whole billing periods of the given cadence.
func AddPeriods(anchor time.Time, membershipType domain.MembershipType, n int) (time.Time, error) {
	switch membershipType {
	case domain.MembershipMonthly:
		return AddMonthsClamped(anchor, n), nil
	case domain.MembershipAnnual:
		return AddMonthsClamped(anchor, 12*n), nil
	default:
		return time.Time{}, customError.WrapUnsupportedMembershipType(string(membershipType))
	}
}

// NextDueDate returns the first anniversary of registration, on the cadence of
// membershipType, that is strictly after asOf. Both inputs are read as calendar
// dates in registration's location.
func NextDueDate(registration time.Time, membershipType domain.MembershipType, asOf time.Time) (time.Time, error) {
	if registration.IsZero() {
		return time.Time{}, customError.WrapInvalidDate("registrationDate", "")
	}
	if asOf.IsZero() {
		return time.Time{}, customError.WrapInvalidDate("asOfDate", "")
	}
	if !membershipType.IsValid() {
		return time.Time{}, customError.WrapUnsupportedMembershipType(string(membershipType))
	}

	loc := registration.Location()
	anchor := dateOnly(registration, loc)
	limit := dateOnly(asOf, loc)

	step := 1
	if membershipType == domain.MembershipAnnual {
		step = 12
	}

	// Jump close to asOf instead of walking one period at a time from registration.
	n := 1
	if months := monthsBetween(anchor, limit); months > step {
		n = months/step - 1
		if n < 1 {
			n = 1
		}
	}

	for ; n <= maxPeriods; n++ {
		next := AddMonthsClamped(anchor, n*step)
		if next.After(limit) {
			return next, nil
		}
	}
	return time.Time{}, customError.WrapInvalidDate("asOfDate", asOf.Format(time.DateOnly))
}

// ValidateRegistrationDate rejects zero dates and dates after today.
func ValidateRegistrationDate(registration, today time.Time) error {
	if registration.IsZero() {
		return customError.WrapInvalidDate("registrationDate", "")
	}
	loc := today.Location()
	if dateOnly(registration, loc).After(dateOnly(today, loc)) {
		return customError.WrapInvalidDate("registrationDate", registration.Format(time.DateOnly))
	}
	return nil
}

func dateOnly(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func monthsBetween(from, to time.Time) int {
	fy, fm, _ := from.Date()
	ty, tm, _ := to.Date()
	return (ty-fy)*12 + int(tm) - int(fm)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
