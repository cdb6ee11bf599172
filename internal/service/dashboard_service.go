package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/segyhp/gym-membership/internal/cache"
	"github.com/segyhp/gym-membership/internal/config"
	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/internal/repository"
	"github.com/segyhp/gym-membership/pkg/utils"
)

const (
	dashboardListSize   = 10
	dashboardRecentSize = 5
)

var monthNames = map[string][12]string{
	"es": {"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre"},
	"en": {"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
}

type DashboardService struct {
	statsRepo   repository.StatsRepository
	memberRepo  repository.MemberRepository
	paymentRepo repository.PaymentRepository
	alertRepo   repository.AlertRepository
	cache       cache.Cache
	ttl         time.Duration
	daysBefore  int
	locale      string
	loc         *time.Location
	now         Clock
	logger      *zap.Logger
}

// NewDashboardService builds the service. c may be nil to disable caching.
func NewDashboardService(
	statsRepo repository.StatsRepository,
	memberRepo repository.MemberRepository,
	paymentRepo repository.PaymentRepository,
	alertRepo repository.AlertRepository,
	c cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		statsRepo:   statsRepo,
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
		alertRepo:   alertRepo,
		cache:       c,
		ttl:         cfg.Cache.DashboardTTL,
		daysBefore:  cfg.Alerts.DaysBefore,
		locale:      cfg.Alerts.Locale,
		loc:         cfg.Location(),
		now:         time.Now,
		logger:      logger.Named("dashboard"),
	}
}

// Get returns the landing page aggregates for today
func (s *DashboardService) Get(ctx context.Context) (*domain.Dashboard, error) {
	today := utils.CivilDate(s.now(), s.loc)
	key := dashboardKey(today)

	var cached domain.Dashboard
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	horizon := today.AddDate(0, 0, s.daysBefore)
	monthStart, monthEnd := utils.MonthRange(today.Year(), today.Month(), time.UTC)

	stats, err := s.statsRepo.MemberCounts(ctx, today, horizon)
	if err != nil {
		return nil, storeError(err, "dashboard", "")
	}

	revenue, count, err := s.paymentRepo.SumBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, storeError(err, "dashboard", "")
	}
	stats.MonthlyRevenue = revenue
	stats.TotalPaymentsThisMonth = count

	summary, err := s.alertRepo.Summary(ctx)
	if err != nil {
		return nil, storeError(err, "dashboard", "")
	}
	stats.UnreadAlerts = summary.Unread

	byType, err := s.paymentRepo.TotalsByType(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, storeError(err, "dashboard", "")
	}

	dueSoon, err := s.memberRepo.ListActiveDueBetween(ctx, today, horizon)
	if err != nil {
		return nil, storeError(err, "dashboard", "")
	}

	overdue, err := s.memberRepo.ListActiveOverdue(ctx, today)
	if err != nil {
		return nil, storeError(err, "dashboard", "")
	}

	recent, err := s.paymentRepo.ListRecent(ctx, dashboardRecentSize)
	if err != nil {
		return nil, storeError(err, "dashboard", "")
	}

	dashboard := &domain.Dashboard{
		Stats:          *stats,
		PaymentsByType: byType,
		Alerts: domain.DashboardAlerts{
			MembersDueSoon: lo.Map(lo.Slice(dueSoon, 0, dashboardListSize), toSummary),
			MembersOverdue: lo.Map(lo.Slice(overdue, 0, dashboardListSize), toSummary),
		},
		RecentPayments: recent,
	}

	s.store(ctx, key, dashboard)
	return dashboard, nil
}

// MonthlyStats returns revenue, payment count and new members for every month of year
func (s *DashboardService) MonthlyStats(ctx context.Context, year int) (*domain.YearStats, error) {
	key := monthlyStatsKey(year)

	var cached domain.YearStats
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	months, err := s.statsRepo.MonthlyTotals(ctx, year)
	if err != nil {
		return nil, storeError(err, "dashboard", "")
	}

	names, ok := monthNames[s.locale]
	if !ok {
		names = monthNames["es"]
	}
	for _, m := range months {
		if m.Month >= 1 && m.Month <= 12 {
			m.MonthName = names[m.Month-1]
		}
	}

	stats := &domain.YearStats{Year: year, MonthlyStats: months}
	s.store(ctx, key, stats)
	return stats, nil
}

func (s *DashboardService) lookup(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *DashboardService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func dashboardKey(day time.Time) string {
	return "dashboard:" + day.Format(utils.DateLayout)
}

func monthlyStatsKey(year int) string {
	return fmt.Sprintf("monthly-stats:%d", year)
}

// invalidateDashboard drops today's dashboard and the monthly stats of years after a
// write that changes them. A nil cache is a no-op and failures only log.
func invalidateDashboard(ctx context.Context, c cache.Cache, logger *zap.Logger, today time.Time, years ...int) {
	if c == nil {
		return
	}
	keys := []string{dashboardKey(today)}
	for _, year := range lo.Uniq(years) {
		keys = append(keys, monthlyStatsKey(year))
	}
	if err := c.Delete(ctx, keys...); err != nil {
		logger.Warn("dashboard cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func toSummary(m *domain.Member, _ int) *domain.MemberSummary {
	return summarize(m)
}
