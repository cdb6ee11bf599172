package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/segyhp/gym-membership/internal/billing"
	"github.com/segyhp/gym-membership/internal/cache"
	"github.com/segyhp/gym-membership/internal/config"
	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/internal/repository"
	customError "github.com/segyhp/gym-membership/pkg/errors"
	"github.com/segyhp/gym-membership/pkg/utils"
)

type MemberService struct {
	memberRepo  repository.MemberRepository
	paymentRepo repository.PaymentRepository
	alertRepo   repository.AlertRepository
	tx          repository.Transactor
	cache       cache.Cache
	messages    Messages
	loc         *time.Location
	now         Clock
	logger      *zap.Logger
}

func NewMemberService(
	memberRepo repository.MemberRepository,
	paymentRepo repository.PaymentRepository,
	alertRepo repository.AlertRepository,
	tx repository.Transactor,
	c cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) *MemberService {
	return &MemberService{
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
		alertRepo:   alertRepo,
		tx:          tx,
		cache:       c,
		messages:    MessagesFor(cfg.Alerts.Locale),
		loc:         cfg.Location(),
		now:         time.Now,
		logger:      logger.Named("members"),
	}
}

func (s *MemberService) today() time.Time {
	return utils.CivilDate(s.now(), s.loc)
}

// List returns a page of members, each with its latest payment and payment count
func (s *MemberService) List(ctx context.Context, filter domain.MemberFilter) ([]*domain.MemberListItem, domain.Pagination, error) {
	filter.Page, filter.Limit = utils.NormalizePage(filter.Page, filter.Limit)

	members, total, err := s.memberRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, storeError(err, "member", "")
	}

	items := make([]*domain.MemberListItem, 0, len(members))
	for _, m := range members {
		payments, err := s.paymentRepo.ListByMember(ctx, m.ID)
		if err != nil {
			return nil, domain.Pagination{}, storeError(err, "member", m.ID.String())
		}

		item := &domain.MemberListItem{Member: m, PaymentCount: len(payments)}
		if len(payments) > 0 {
			item.LatestPayment = payments[0]
		}
		items = append(items, item)
	}

	return items, domain.NewPagination(total, filter.Page, filter.Limit), nil
}

// Get returns a member with its full payment history
func (s *MemberService) Get(ctx context.Context, id uuid.UUID) (*domain.MemberDetailResponse, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(notFound(err, customError.WrapMemberNotFound, id.String()), "member", id.String())
	}

	payments, err := s.paymentRepo.ListByMember(ctx, id)
	if err != nil {
		return nil, storeError(err, "member", id.String())
	}

	return &domain.MemberDetailResponse{Member: member, Payments: payments}, nil
}

// Create registers a member. The first due date is one period after registration.
func (s *MemberService) Create(ctx context.Context, req *domain.CreateMemberRequest) (*domain.Member, error) {
	today := s.today()

	registration := today
	if req.RegistrationDate != "" {
		reg, err := utils.ParseDate(req.RegistrationDate, s.loc)
		if err != nil {
			return nil, customError.WrapInvalidDate("registrationDate", req.RegistrationDate)
		}
		registration = reg
	}
	if err := billing.ValidateRegistrationDate(registration, today); err != nil {
		return nil, err
	}

	membershipType := req.MembershipType
	if membershipType == "" {
		membershipType = domain.MembershipMonthly
	}

	next, err := billing.NextDueDate(registration, membershipType, registration)
	if err != nil {
		return nil, err
	}

	birthDate, err := optionalDate("birthDate", req.BirthDate, s.loc)
	if err != nil {
		return nil, err
	}

	now := s.now()
	member := &domain.Member{
		ID:               uuid.New(),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Document:         req.Document,
		Email:            optionalString(req.Email),
		Phone:            optionalString(req.Phone),
		Address:          optionalString(req.Address),
		BirthDate:        birthDate,
		RegistrationDate: registration,
		MembershipType:   membershipType,
		MonthlyFee:       req.MonthlyFee,
		NextPaymentDate:  &next,
		IsActive:         true,
		Notes:            optionalString(req.Notes),
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, storeError(err, "member", member.ID.String())
	}

	s.logger.Info("member created",
		zap.String("member_id", member.ID.String()),
		zap.String("membership_type", string(membershipType)),
		zap.String("next_payment_date", next.Format(utils.DateLayout)),
	)
	invalidateDashboard(ctx, s.cache, s.logger, today, registration.Year())

	return member, nil
}

// Update applies the fields present in req. Changing the registration date or the
// membership type re-projects the next due date from the last payment. Deactivating
// a member here raises the same MEMBER_INACTIVE alert as ToggleStatus.
func (s *MemberService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateMemberRequest) (*domain.Member, error) {
	var (
		updated *domain.Member
		years   []int
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.memberRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, customError.WrapMemberNotFound, id.String())
		}
		wasActive := member.IsActive
		years = append(years, member.RegistrationDate.Year())

		recompute, err := s.apply(member, req)
		if err != nil {
			return err
		}

		if recompute {
			asOf := member.RegistrationDate
			if member.LastPaymentDate != nil {
				asOf = *member.LastPaymentDate
			}
			next, err := billing.NextDueDate(member.RegistrationDate, member.MembershipType, asOf)
			if err != nil {
				return err
			}
			member.NextPaymentDate = &next
		}

		if err := s.memberRepo.Update(ctx, member); err != nil {
			return err
		}

		if wasActive && !member.IsActive {
			if err := s.alertRepo.Create(ctx, s.inactiveAlert(member)); err != nil {
				return err
			}
		}

		updated = member
		years = append(years, member.RegistrationDate.Year())
		return nil
	})
	if err != nil {
		return nil, storeError(err, "member", id.String())
	}

	invalidateDashboard(ctx, s.cache, s.logger, s.today(), years...)
	return updated, nil
}

// apply copies request fields onto member and reports whether the billing anchor changed
func (s *MemberService) apply(member *domain.Member, req *domain.UpdateMemberRequest) (bool, error) {
	recompute := false

	if req.FirstName != nil {
		member.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		member.LastName = *req.LastName
	}
	if req.Document != nil {
		member.Document = *req.Document
	}
	if req.Email != nil {
		member.Email = optionalString(*req.Email)
	}
	if req.Phone != nil {
		member.Phone = optionalString(*req.Phone)
	}
	if req.Address != nil {
		member.Address = optionalString(*req.Address)
	}
	if req.Notes != nil {
		member.Notes = optionalString(*req.Notes)
	}
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}
	if req.MonthlyFee != nil {
		if req.MonthlyFee.IsNegative() {
			return false, customError.WrapValidation(fmt.Errorf("monthlyFee must not be negative"))
		}
		member.MonthlyFee = *req.MonthlyFee
	}
	if req.BirthDate != nil {
		birthDate, err := optionalDate("birthDate", *req.BirthDate, s.loc)
		if err != nil {
			return false, err
		}
		member.BirthDate = birthDate
	}

	if req.RegistrationDate != nil {
		registration, err := utils.ParseDate(*req.RegistrationDate, s.loc)
		if err != nil {
			return false, customError.WrapInvalidDate("registrationDate", *req.RegistrationDate)
		}
		if err := billing.ValidateRegistrationDate(registration, s.today()); err != nil {
			return false, err
		}
		if !registration.Equal(utils.CivilDate(member.RegistrationDate, time.UTC)) {
			member.RegistrationDate = registration
			recompute = true
		}
	}

	if req.MembershipType != nil && *req.MembershipType != member.MembershipType {
		if !req.MembershipType.IsValid() {
			return false, customError.WrapUnsupportedMembershipType(string(*req.MembershipType))
		}
		member.MembershipType = *req.MembershipType
		recompute = true
	}

	return recompute, nil
}

// ToggleStatus flips isActive. Deactivation raises a MEMBER_INACTIVE alert.
func (s *MemberService) ToggleStatus(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	var toggled *domain.Member

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.memberRepo.ToggleActive(ctx, id)
		if err != nil {
			return notFound(err, customError.WrapMemberNotFound, id.String())
		}

		if !member.IsActive {
			if err := s.alertRepo.Create(ctx, s.inactiveAlert(member)); err != nil {
				return err
			}
		}

		toggled = member
		return nil
	})
	if err != nil {
		return nil, storeError(err, "member", id.String())
	}

	s.logger.Info("member status changed",
		zap.String("member_id", id.String()),
		zap.Bool("is_active", toggled.IsActive),
	)
	invalidateDashboard(ctx, s.cache, s.logger, s.today())

	return toggled, nil
}

func (s *MemberService) inactiveAlert(member *domain.Member) *domain.Alert {
	return &domain.Alert{
		ID:        uuid.New(),
		MemberID:  member.ID,
		AlertType: domain.AlertMemberInactive,
		Message:   s.messages.inactive(member),
		AlertDate: s.today(),
		CreatedAt: s.now(),
	}
}

// Delete removes a member together with its payments and alerts
func (s *MemberService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.memberRepo.Delete(ctx, id)
	if err != nil {
		return storeError(err, "member", id.String())
	}
	if n == 0 {
		return customError.WrapMemberNotFound(id.String())
	}

	s.logger.Info("member deleted", zap.String("member_id", id.String()))
	// payments go with the member, so the current year's stats are dropped as well
	invalidateDashboard(ctx, s.cache, s.logger, s.today(), s.today().Year())
	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalDate(field, value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(value, loc)
	if err != nil {
		return nil, customError.WrapInvalidDate(field, value)
	}
	return &t, nil
}
