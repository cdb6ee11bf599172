package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/internal/repository"
	customError "github.com/segyhp/gym-membership/pkg/errors"
	"github.com/segyhp/gym-membership/pkg/utils"
)

// AlertService serves the alert inbox. Alerts are produced by AlertSweeper and
// by member deactivation.
type AlertService struct {
	alertRepo repository.AlertRepository
	logger    *zap.Logger
}

func NewAlertService(alertRepo repository.AlertRepository, logger *zap.Logger) *AlertService {
	return &AlertService{
		alertRepo: alertRepo,
		logger:    logger.Named("alerts"),
	}
}

func (s *AlertService) List(ctx context.Context, filter domain.AlertFilter) ([]*domain.Alert, domain.Pagination, error) {
	filter.Page, filter.Limit = utils.NormalizePage(filter.Page, filter.Limit)

	alerts, total, err := s.alertRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, storeError(err, "alert", "")
	}

	return alerts, domain.NewPagination(total, filter.Page, filter.Limit), nil
}

func (s *AlertService) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Alert, error) {
	alerts, err := s.alertRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, storeError(err, "alert", "")
	}
	return alerts, nil
}

func (s *AlertService) Summary(ctx context.Context) (*domain.AlertSummary, error) {
	summary, err := s.alertRepo.Summary(ctx)
	if err != nil {
		return nil, storeError(err, "alert", "")
	}
	return summary, nil
}

func (s *AlertService) MarkRead(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	alert, err := s.alertRepo.MarkRead(ctx, id)
	if err != nil {
		return nil, storeError(notFound(err, customError.WrapAlertNotFound, id.String()), "alert", id.String())
	}
	return alert, nil
}

func (s *AlertService) MarkAllRead(ctx context.Context) (int64, error) {
	n, err := s.alertRepo.MarkAllRead(ctx)
	if err != nil {
		return 0, storeError(err, "alert", "")
	}
	return n, nil
}

func (s *AlertService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.alertRepo.Delete(ctx, id)
	if err != nil {
		return storeError(err, "alert", id.String())
	}
	if n == 0 {
		return customError.WrapAlertNotFound(id.String())
	}
	return nil
}

// DeleteRead purges every alert already marked as read
func (s *AlertService) DeleteRead(ctx context.Context) (int64, error) {
	n, err := s.alertRepo.DeleteRead(ctx)
	if err != nil {
		return 0, storeError(err, "alert", "")
	}

	s.logger.Info("read alerts deleted", zap.Int64("count", n))
	return n, nil
}
