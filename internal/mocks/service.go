package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/gym-membership/internal/domain"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoginResponse), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockAuthService) Verify(ctx context.Context, adminID uuid.UUID) (*domain.Admin, error) {
	args := m.Called(ctx, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, adminID uuid.UUID, req *domain.ChangePasswordRequest) error {
	args := m.Called(ctx, adminID, req)
	return args.Error(0)
}

type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) List(ctx context.Context, filter domain.MemberFilter) ([]*domain.MemberListItem, domain.Pagination, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, domain.Pagination{}, args.Error(2)
	}
	return args.Get(0).([]*domain.MemberListItem), args.Get(1).(domain.Pagination), args.Error(2)
}

func (m *MockMemberService) Get(ctx context.Context, id uuid.UUID) (*domain.MemberDetailResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MemberDetailResponse), args.Error(1)
}

func (m *MockMemberService) Create(ctx context.Context, req *domain.CreateMemberRequest) (*domain.Member, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateMemberRequest) (*domain.Member, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberService) ToggleStatus(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, domain.Pagination, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, domain.Pagination{}, args.Error(2)
	}
	return args.Get(0).([]*domain.Payment), args.Get(1).(domain.Pagination), args.Error(2)
}

func (m *MockPaymentService) Get(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) Post(ctx context.Context, req *domain.CreatePaymentRequest) (*domain.Payment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdatePaymentRequest) (*domain.Payment, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentService) MonthlyReport(ctx context.Context, year, month int) (*domain.MonthlyReport, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MonthlyReport), args.Error(1)
}

type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) List(ctx context.Context, filter domain.AlertFilter) ([]*domain.Alert, domain.Pagination, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, domain.Pagination{}, args.Error(2)
	}
	return args.Get(0).([]*domain.Alert), args.Get(1).(domain.Pagination), args.Error(2)
}

func (m *MockAlertService) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Alert, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Alert), args.Error(1)
}

func (m *MockAlertService) Summary(ctx context.Context) (*domain.AlertSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AlertSummary), args.Error(1)
}

func (m *MockAlertService) MarkRead(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Alert), args.Error(1)
}

func (m *MockAlertService) MarkAllRead(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAlertService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAlertService) DeleteRead(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) Run(ctx context.Context) (*domain.SweepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SweepResult), args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Get(ctx context.Context) (*domain.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}

func (m *MockDashboardService) MonthlyStats(ctx context.Context, year int) (*domain.YearStats, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.YearStats), args.Error(1)
}
