package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/segyhp/gym-membership/internal/billing"
	"github.com/segyhp/gym-membership/internal/cache"
	"github.com/segyhp/gym-membership/internal/config"
	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/internal/repository"
	customError "github.com/segyhp/gym-membership/pkg/errors"
	"github.com/segyhp/gym-membership/pkg/utils"
)

type PaymentService struct {
	paymentRepo repository.PaymentRepository
	memberRepo  repository.MemberRepository
	tx          repository.Transactor
	cache       cache.Cache
	loc         *time.Location
	now         Clock
	logger      *zap.Logger
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	memberRepo repository.MemberRepository,
	tx repository.Transactor,
	c cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		memberRepo:  memberRepo,
		tx:          tx,
		cache:       c,
		loc:         cfg.Location(),
		now:         time.Now,
		logger:      logger.Named("payments"),
	}
}

func (s *PaymentService) today() time.Time {
	return utils.CivilDate(s.now(), s.loc)
}

// Post records a payment. A MONTHLY or ANNUAL payment also moves the member's
// last and next payment dates; the payment type picks the cadence.
func (s *PaymentService) Post(ctx context.Context, req *domain.CreatePaymentRequest) (*domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "payments.post",
		trace.WithAttributes(
			attribute.String("member.id", req.MemberID.String()),
			attribute.String("payment.type", string(req.PaymentType)),
		),
	)
	defer span.End()

	if !req.Amount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(req.Amount.String())
	}

	paymentType := req.PaymentType
	if paymentType == "" {
		paymentType = domain.PaymentMonthly
	}

	paymentDate := s.today()
	if req.PaymentDate != "" {
		d, err := utils.ParseDate(req.PaymentDate, s.loc)
		if err != nil {
			return nil, customError.WrapInvalidDate("paymentDate", req.PaymentDate)
		}
		paymentDate = d
	}

	now := s.now()
	payment := &domain.Payment{
		ID:          uuid.New(),
		MemberID:    req.MemberID,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		PaymentType: paymentType,
		Description: optionalString(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.memberRepo.GetByIDForUpdate(ctx, req.MemberID)
		if err != nil {
			return notFound(err, customError.WrapMemberNotFound, req.MemberID.String())
		}

		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}
		payment.Member = summarize(member)

		if !paymentType.IsQualifying() {
			return nil
		}

		next, err := billing.NextDueDate(member.RegistrationDate, paymentType.Cycle(), paymentDate)
		if err != nil {
			return err
		}
		last := paymentDate
		if err := s.memberRepo.UpdatePaymentDates(ctx, member.ID, member.Version, &last, &next); err != nil {
			return err
		}

		payment.Member.NextPaymentDate = &next
		span.SetAttributes(attribute.String("member.next_payment_date", next.Format(utils.DateLayout)))
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "post payment failed")
		return nil, storeError(err, "member", req.MemberID.String())
	}

	s.logger.Info("payment posted",
		zap.String("payment_id", payment.ID.String()),
		zap.String("member_id", payment.MemberID.String()),
		zap.String("payment_type", string(paymentType)),
		zap.String("amount", payment.Amount.String()),
	)
	invalidateDashboard(ctx, s.cache, s.logger, s.today(), paymentDate.Year())

	return payment, nil
}

// Update changes amount, type or description and recomputes the member's due dates
// when a qualifying payment is involved
func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdatePaymentRequest) (*domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "payments.update", trace.WithAttributes(attribute.String("payment.id", id.String())))
	defer span.End()

	var updated *domain.Payment

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		payment, err := s.paymentRepo.GetByID(ctx, id)
		if err != nil {
			return notFound(err, customError.WrapPaymentNotFound, id.String())
		}

		member, err := s.memberRepo.GetByIDForUpdate(ctx, payment.MemberID)
		if err != nil {
			return notFound(err, customError.WrapMemberNotFound, payment.MemberID.String())
		}

		wasQualifying := payment.PaymentType.IsQualifying()

		if req.Amount != nil {
			if !req.Amount.IsPositive() {
				return customError.WrapInvalidPaymentAmount(req.Amount.String())
			}
			payment.Amount = *req.Amount
		}
		if req.PaymentType != "" {
			payment.PaymentType = req.PaymentType
		}
		if req.Description != nil {
			payment.Description = optionalString(*req.Description)
		}

		if err := s.paymentRepo.Update(ctx, payment); err != nil {
			return notFound(err, customError.WrapPaymentNotFound, id.String())
		}

		if wasQualifying || payment.PaymentType.IsQualifying() {
			if err := s.recalculate(ctx, member); err != nil {
				return err
			}
		}

		updated = payment
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update payment failed")
		return nil, storeError(err, "payment", id.String())
	}

	invalidateDashboard(ctx, s.cache, s.logger, s.today(), updated.PaymentDate.Year())
	return updated, nil
}

// Delete removes a payment and recomputes the member's due dates from the most recent
// qualifying payment left, clearing both dates when none remain
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "payments.delete", trace.WithAttributes(attribute.String("payment.id", id.String())))
	defer span.End()

	var paidOn time.Time

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		payment, err := s.paymentRepo.GetByID(ctx, id)
		if err != nil {
			return notFound(err, customError.WrapPaymentNotFound, id.String())
		}
		paidOn = payment.PaymentDate

		member, err := s.memberRepo.GetByIDForUpdate(ctx, payment.MemberID)
		if err != nil {
			return notFound(err, customError.WrapMemberNotFound, payment.MemberID.String())
		}

		n, err := s.paymentRepo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return customError.WrapPaymentNotFound(id.String())
		}

		if payment.PaymentType.IsQualifying() {
			return s.recalculate(ctx, member)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete payment failed")
		return storeError(err, "payment", id.String())
	}

	s.logger.Info("payment deleted", zap.String("payment_id", id.String()))
	invalidateDashboard(ctx, s.cache, s.logger, s.today(), paidOn.Year())
	return nil
}

// recalculate re-derives last/next payment dates from the member's latest qualifying payment
func (s *PaymentService) recalculate(ctx context.Context, member *domain.Member) error {
	latest, err := s.paymentRepo.GetLatestQualifying(ctx, member.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return s.memberRepo.UpdatePaymentDates(ctx, member.ID, member.Version, nil, nil)
	}
	if err != nil {
		return err
	}

	last := utils.CivilDate(latest.PaymentDate, time.UTC)
	next, err := billing.NextDueDate(member.RegistrationDate, latest.PaymentType.Cycle(), last)
	if err != nil {
		return err
	}

	return s.memberRepo.UpdatePaymentDates(ctx, member.ID, member.Version, &last, &next)
}

func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(notFound(err, customError.WrapPaymentNotFound, id.String()), "payment", id.String())
	}
	return payment, nil
}

func (s *PaymentService) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, domain.Pagination, error) {
	filter.Page, filter.Limit = utils.NormalizePage(filter.Page, filter.Limit)

	payments, total, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, storeError(err, "payment", "")
	}

	return payments, domain.NewPagination(total, filter.Page, filter.Limit), nil
}

// MonthlyReport totals the payments of a whole year, or of one month when month is 1..12
func (s *PaymentService) MonthlyReport(ctx context.Context, year, month int) (*domain.MonthlyReport, error) {
	if year == 0 {
		year = s.today().Year()
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	if month >= 1 && month <= 12 {
		from, to = utils.MonthRange(year, time.Month(month), time.UTC)
	}

	payments, err := s.paymentRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, storeError(err, "payment", "")
	}

	report := &domain.MonthlyReport{
		TotalAmount:    decimal.Zero,
		PaymentsByType: map[domain.PaymentType]int{},
		Payments:       payments,
	}
	for _, p := range payments {
		report.TotalAmount = report.TotalAmount.Add(p.Amount)
		report.PaymentsByType[p.PaymentType]++
	}
	report.TotalPayments = len(payments)

	return report, nil
}

func summarize(m *domain.Member) *domain.MemberSummary {
	return &domain.MemberSummary{
		ID:              m.ID,
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		Document:        m.Document,
		NextPaymentDate: m.NextPaymentDate,
		MonthlyFee:      m.MonthlyFee,
	}
}
