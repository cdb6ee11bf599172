package utils

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBetween(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		from     time.Time
		to       time.Time
		expected int
	}{
		{
			name:     "same day",
			from:     today,
			to:       today,
			expected: 0,
		},
		{
			name:     "three days ahead",
			from:     today,
			to:       today.AddDate(0, 0, 3),
			expected: 3,
		},
		{
			name:     "ten days behind",
			from:     today.AddDate(0, 0, -10),
			to:       today,
			expected: 10,
		},
		{
			name:     "partial day rounds up",
			from:     today,
			to:       today.Add(30 * time.Hour),
			expected: 2,
		},
		{
			name:     "across month boundary",
			from:     time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC),
			to:       time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysBetween(tt.from, tt.to))
		})
	}
}

func TestDaysBetween_IgnoresDSTShift(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 2024-03-10 is 23 hours long in New York
	from := time.Date(2024, 3, 9, 0, 0, 0, 0, loc)
	to := time.Date(2024, 3, 12, 0, 0, 0, 0, loc)
	assert.Equal(t, 3, DaysBetween(from, to))
}

func TestParseDate(t *testing.T) {
	loc := time.UTC

	d, err := ParseDate("2024-01-31", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, loc), d)

	d, err = ParseDate("2024-01-31T18:45:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, loc), d)

	_, err = ParseDate("2024-02-30", loc)
	assert.Error(t, err)

	_, err = ParseDate("", loc)
	assert.Error(t, err)
}

func TestCivilDate(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 02:00 UTC on the 1st is still the previous evening at UTC-5
	ts := time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), CivilDate(ts, loc))

	d, err := ParseDate("2024-03-01T02:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2024, 5, 17, 13, 22, 1, 5, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC), StartOfDay(ts, time.UTC))

	loc := time.FixedZone("UTC+9", 9*3600)
	assert.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, loc), StartOfDay(ts, loc))
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name          string
		page, limit   int
		expectedPage  int
		expectedLimit int
	}{
		{"defaults", 0, 0, 1, 10},
		{"passthrough", 3, 25, 3, 25},
		{"limit capped", 1, 1000, 1, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := NormalizePage(tt.page, tt.limit)
			assert.Equal(t, tt.expectedPage, page)
			assert.Equal(t, tt.expectedLimit, limit)
		})
	}

	assert.Equal(t, 20, Offset(3, 10))
}

func TestParsePrefixes(t *testing.T) {
	prefixes, err := ParsePrefixes([]string{"10.0.0.0/8", " 192.168.1.7 ", "", "::ffff:172.16.0.1", "fd00::/8"})
	require.NoError(t, err)

	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.7/32"),
		netip.MustParsePrefix("172.16.0.1/32"),
		netip.MustParsePrefix("fd00::/8"),
	}, prefixes)

	_, err = ParsePrefixes([]string{"10.0.0.0/40"})
	assert.Error(t, err)
	_, err = ParsePrefixes([]string{"proxy.internal"})
	assert.Error(t, err)
}
