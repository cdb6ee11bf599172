package service

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/gym-membership/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Scheduler: config.SchedulerConfig{Timezone: "UTC", SweepTime: "09:00", LockTTL: time.Minute},
		Alerts:    config.AlertsConfig{DaysBefore: 5, Locale: "es"},
		Cache:     config.CacheConfig{DashboardTTL: time.Minute},
	}
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

// sameDay matches a time.Time argument on the same instant as want
func sameDay(want time.Time) interface{} {
	return mock.MatchedBy(func(got time.Time) bool { return got.Equal(want) })
}

// dayPtr matches a *time.Time argument; a nil want matches only nil
func dayPtr(want *time.Time) interface{} {
	return mock.MatchedBy(func(got *time.Time) bool {
		if want == nil || got == nil {
			return want == nil && got == nil
		}
		return got.Equal(*want)
	})
}
