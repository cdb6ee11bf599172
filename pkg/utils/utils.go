package utils

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// StartOfDay returns midnight of t's calendar day in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// MonthRange returns [start, end) of the given month in loc
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// DaysBetween returns the number of calendar days from `from` to `to`, rounded up.
// Both instants are read in from's location so DST shifts never add a day.
func DaysBetween(from, to time.Time) int {
	loc := from.Location()
	fy, fm, fd := from.Date()
	ty, tm, td := to.In(loc).Date()

	fromDay := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	toDay := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	days := int(toDay.Sub(fromDay).Hours() / 24)

	// Partial days left over after the calendar difference count as one more day
	fromClock := from.Sub(StartOfDay(from, loc))
	toClock := to.In(loc).Sub(StartOfDay(to, loc))
	if toClock > fromClock {
		days++
	}
	return days
}

// CivilDate returns the calendar day of t as seen in loc, encoded as UTC midnight.
// All stored dates use this representation so comparisons never depend on zones.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts "2006-01-02" or RFC3339 and returns the civil date, reading
// RFC3339 instants in loc
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return CivilDate(t, loc), nil
}

// NormalizePage clamps page/limit query values to sane defaults
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Offset returns the row offset for a 1-based page
func Offset(page, limit int) int {
	return (page - 1) * limit
}

// AtoiDefault parses s, falling back to def when s is empty or malformed
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// ParsePrefixes reads IP addresses and CIDR ranges. A bare address becomes a
// single-host prefix. Blank entries are skipped.
func ParsePrefixes(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			prefix, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid CIDR %q: %w", raw, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid IP %q: %w", raw, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
