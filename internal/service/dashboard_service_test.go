package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segyhp/gym-membership/internal/cache"
	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/internal/mocks"
	customError "github.com/segyhp/gym-membership/pkg/errors"
)

type dashboardFixture struct {
	stats    *mocks.MockStatsRepository
	members  *mocks.MockMemberRepository
	payments *mocks.MockPaymentRepository
	alerts   *mocks.MockAlertRepository
}

func newDashboardFixture() *dashboardFixture {
	return &dashboardFixture{
		stats:    &mocks.MockStatsRepository{},
		members:  &mocks.MockMemberRepository{},
		payments: &mocks.MockPaymentRepository{},
		alerts:   &mocks.MockAlertRepository{},
	}
}

func (f *dashboardFixture) service(c cache.Cache, now time.Time) *DashboardService {
	s := NewDashboardService(f.stats, f.members, f.payments, f.alerts, c, testConfig(), zap.NewNop())
	s.now = fixedClock(now)
	return s
}

func manyMembers(n int) []*domain.Member {
	members := make([]*domain.Member, n)
	for i := range members {
		members[i] = dueMember("M", fmt.Sprint(i), fmt.Sprint(i), datePtr(2024, time.June, 12))
	}
	return members
}

func (f *dashboardFixture) expectAggregates(today time.Time) {
	f.stats.On("MemberCounts", mock.Anything, sameDay(today), sameDay(today.AddDate(0, 0, 5))).
		Return(&domain.DashboardStats{TotalMembers: 20, ActiveMembers: 18, InactiveMembers: 2, MembersWithPaymentsDue: 12, MembersWithOverduePayments: 1}, nil)
	f.payments.On("SumBetween", mock.Anything, sameDay(date(2024, time.June, 1)), sameDay(date(2024, time.July, 1))).
		Return(decimal.NewFromInt(640000), 8, nil)
	f.alerts.On("Summary", mock.Anything).Return(&domain.AlertSummary{Total: 9, Unread: 4}, nil)
	f.payments.On("TotalsByType", mock.Anything, mock.Anything, mock.Anything).
		Return([]*domain.PaymentTypeTotal{{Type: domain.PaymentMonthly, Amount: decimal.NewFromInt(640000), Count: 8}}, nil)
	f.members.On("ListActiveDueBetween", mock.Anything, sameDay(today), sameDay(today.AddDate(0, 0, 5))).Return(manyMembers(12), nil)
	f.members.On("ListActiveOverdue", mock.Anything, sameDay(today)).Return(manyMembers(1), nil)
	f.payments.On("ListRecent", mock.Anything, 5).Return([]*domain.Payment{{ID: uuid.New()}}, nil)
}

func TestDashboardService_Get_ComputesAndCaches(t *testing.T) {
	today := date(2024, time.June, 10)
	f := newDashboardFixture()
	f.expectAggregates(today)

	c := &mocks.MockCache{}
	c.On("Get", mock.Anything, "dashboard:2024-06-10", mock.Anything).Return(false, nil)
	c.On("Set", mock.Anything, "dashboard:2024-06-10", mock.AnythingOfType("*domain.Dashboard"), time.Minute).Return(nil)

	dashboard, err := f.service(c, today.Add(10*time.Hour)).Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 20, dashboard.Stats.TotalMembers)
	assert.True(t, decimal.NewFromInt(640000).Equal(dashboard.Stats.MonthlyRevenue))
	assert.Equal(t, 8, dashboard.Stats.TotalPaymentsThisMonth)
	assert.Equal(t, 4, dashboard.Stats.UnreadAlerts)
	assert.Len(t, dashboard.Alerts.MembersDueSoon, 10)
	assert.Len(t, dashboard.Alerts.MembersOverdue, 1)
	assert.Len(t, dashboard.RecentPayments, 1)
	require.Len(t, dashboard.PaymentsByType, 1)
	c.AssertExpectations(t)
}

func TestDashboardService_Get_CacheHit(t *testing.T) {
	f := newDashboardFixture()
	cached := domain.Dashboard{Stats: domain.DashboardStats{TotalMembers: 42}}

	c := &mocks.MockCache{}
	c.On("Get", mock.Anything, "dashboard:2024-06-10", mock.AnythingOfType("*domain.Dashboard")).
		Run(func(args mock.Arguments) { *args.Get(2).(*domain.Dashboard) = cached }).
		Return(true, nil)

	dashboard, err := f.service(c, date(2024, time.June, 10)).Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 42, dashboard.Stats.TotalMembers)
	f.stats.AssertNotCalled(t, "MemberCounts", mock.Anything, mock.Anything, mock.Anything)
}

func TestDashboardService_Get_CacheFailuresAreIgnored(t *testing.T) {
	today := date(2024, time.June, 10)
	f := newDashboardFixture()
	f.expectAggregates(today)

	c := &mocks.MockCache{}
	c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
	c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	dashboard, err := f.service(c, today).Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 20, dashboard.Stats.TotalMembers)
}

func TestDashboardService_Get_StoreFailure(t *testing.T) {
	f := newDashboardFixture()
	f.stats.On("MemberCounts", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	_, err := f.service(nil, date(2024, time.June, 10)).Get(context.Background())

	var bizErr *customError.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, customError.ErrCodeDatabaseError, bizErr.Code)
}

func TestDashboardService_MonthlyStats(t *testing.T) {
	months := make([]*domain.MonthStats, 12)
	for i := range months {
		months[i] = &domain.MonthStats{Month: i + 1, Revenue: decimal.Zero}
	}
	months[2].Revenue = decimal.NewFromInt(100)
	months[2].PaymentsCount = 1

	tests := []struct {
		locale    string
		january   string
		september string
	}{
		{locale: "es", january: "Enero", september: "Septiembre"},
		{locale: "en", january: "January", september: "September"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			f := newDashboardFixture()
			f.stats.On("MonthlyTotals", mock.Anything, 2024).Return(months, nil)

			cfg := testConfig()
			cfg.Alerts.Locale = tt.locale
			s := NewDashboardService(f.stats, f.members, f.payments, f.alerts, nil, cfg, zap.NewNop())

			stats, err := s.MonthlyStats(context.Background(), 2024)

			require.NoError(t, err)
			assert.Equal(t, 2024, stats.Year)
			require.Len(t, stats.MonthlyStats, 12)
			assert.Equal(t, tt.january, stats.MonthlyStats[0].MonthName)
			assert.Equal(t, tt.september, stats.MonthlyStats[8].MonthName)
			assert.Equal(t, 1, stats.MonthlyStats[2].PaymentsCount)
		})
	}
}
