package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/segyhp/gym-membership/internal/cache"
	"github.com/segyhp/gym-membership/internal/config"
	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/internal/repository"
	customError "github.com/segyhp/gym-membership/pkg/errors"
	"github.com/segyhp/gym-membership/pkg/utils"
)

const sweepLockKey = "alert-sweep"

// AlertSweeper rebuilds today's payment alerts from the members' next payment dates.
// Members and payments are only read.
type AlertSweeper struct {
	memberRepo repository.MemberRepository
	alertRepo  repository.AlertRepository
	tx         repository.Transactor
	locker     cache.Locker
	lockTTL    time.Duration
	daysBefore int
	messages   Messages
	loc        *time.Location
	now        Clock
	logger     *zap.Logger
	created    metric.Int64Counter
}

// NewAlertSweeper builds a sweeper. locker may be nil, in which case runs are not
// serialised across processes.
func NewAlertSweeper(
	memberRepo repository.MemberRepository,
	alertRepo repository.AlertRepository,
	tx repository.Transactor,
	locker cache.Locker,
	cfg *config.Config,
	logger *zap.Logger,
) *AlertSweeper {
	logger = logger.Named("sweeper")

	created, err := otel.Meter("gym-membership/service").Int64Counter(
		"gym.alerts.created",
		metric.WithDescription("Alerts created by the daily sweep"),
	)
	if err != nil {
		logger.Warn("alert counter unavailable", zap.Error(err))
		created = noop.Int64Counter{}
	}

	return &AlertSweeper{
		memberRepo: memberRepo,
		alertRepo:  alertRepo,
		tx:         tx,
		locker:     locker,
		lockTTL:    cfg.Scheduler.LockTTL,
		daysBefore: cfg.Alerts.DaysBefore,
		messages:   MessagesFor(cfg.Alerts.Locale),
		loc:        cfg.Location(),
		now:        time.Now,
		logger:     logger,
		created:    created,
	}
}

// Run performs one sweep: today's payment alerts are deleted, then one PAYMENT_DUE_SOON
// alert is created per active member due within the lookahead window and one
// PAYMENT_OVERDUE alert per active member past due. Everything happens in a single
// transaction; any failure leaves the previous alerts in place.
func (s *AlertSweeper) Run(ctx context.Context) (*domain.SweepResult, error) {
	ctx, span := tracer.Start(ctx, "alerts.sweep")
	defer span.End()

	today := utils.CivilDate(s.now(), s.loc)
	horizon := today.AddDate(0, 0, s.daysBefore)
	result := &domain.SweepResult{Day: today, Horizon: horizon}

	span.SetAttributes(
		attribute.String("sweep.day", today.Format(utils.DateLayout)),
		attribute.String("sweep.horizon", horizon.Format(utils.DateLayout)),
	)

	if s.locker != nil {
		token, acquired, err := s.locker.TryLock(ctx, sweepLockKey, s.lockTTL)
		switch {
		case err != nil:
			s.logger.Warn("sweep lock unavailable, running unguarded", zap.Error(err))
		case !acquired:
			s.logger.Info("sweep skipped, another run holds the lock")
			span.SetAttributes(attribute.Bool("sweep.skipped", true))
			result.Skipped = true
			return result, nil
		default:
			defer func() {
				if err := s.locker.Unlock(context.WithoutCancel(ctx), sweepLockKey, token); err != nil {
					s.logger.Warn("failed to release sweep lock", zap.Error(err))
				}
			}()
		}
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		_, err := s.alertRepo.DeleteByDateRange(ctx, today, today.AddDate(0, 0, 1),
			domain.AlertPaymentDueSoon, domain.AlertPaymentOverdue)
		if err != nil {
			return err
		}

		dueSoon, err := s.memberRepo.ListActiveDueBetween(ctx, today, horizon)
		if err != nil {
			return err
		}

		overdue, err := s.memberRepo.ListActiveOverdue(ctx, today)
		if err != nil {
			return err
		}

		alerts := s.derive(today, dueSoon, overdue)
		if err := s.alertRepo.CreateBatch(ctx, alerts); err != nil {
			return err
		}

		result.DueSoon = len(dueSoon)
		result.Overdue = len(overdue)
		result.Created = len(alerts)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "alert sweep failed")
		s.logger.Error("alert sweep failed", zap.Error(err))
		return nil, customError.WrapStoreUnavailable(err)
	}

	s.created.Add(ctx, int64(result.DueSoon),
		metric.WithAttributes(attribute.String("alert.type", string(domain.AlertPaymentDueSoon))))
	s.created.Add(ctx, int64(result.Overdue),
		metric.WithAttributes(attribute.String("alert.type", string(domain.AlertPaymentOverdue))))

	span.SetAttributes(
		attribute.Int("sweep.due_soon", result.DueSoon),
		attribute.Int("sweep.overdue", result.Overdue),
	)
	s.logger.Info("alert sweep completed",
		zap.String("day", today.Format(utils.DateLayout)),
		zap.Int("due_soon", result.DueSoon),
		zap.Int("overdue", result.Overdue),
		zap.Int("created", result.Created),
	)

	return result, nil
}

func (s *AlertSweeper) derive(today time.Time, dueSoon, overdue []*domain.Member) []*domain.Alert {
	now := s.now()
	hasDueDate := func(m *domain.Member, _ int) bool { return m.NextPaymentDate != nil }
	build := func(m *domain.Member, alertType domain.AlertType, message string) *domain.Alert {
		return &domain.Alert{
			ID:        uuid.New(),
			MemberID:  m.ID,
			AlertType: alertType,
			Message:   message,
			AlertDate: today,
			CreatedAt: now,
		}
	}

	alerts := lo.Map(lo.Filter(dueSoon, hasDueDate), func(m *domain.Member, _ int) *domain.Alert {
		days := utils.DaysBetween(today, utils.CivilDate(*m.NextPaymentDate, time.UTC))
		return build(m, domain.AlertPaymentDueSoon, s.messages.dueSoon(m, days))
	})

	return append(alerts, lo.Map(lo.Filter(overdue, hasDueDate), func(m *domain.Member, _ int) *domain.Alert {
		days := utils.DaysBetween(utils.CivilDate(*m.NextPaymentDate, time.UTC), today)
		return build(m, domain.AlertPaymentOverdue, s.messages.overdue(m, days))
	})...)
}
