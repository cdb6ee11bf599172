package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/internal/mocks"
	"github.com/segyhp/gym-membership/internal/repository"
	customError "github.com/segyhp/gym-membership/pkg/errors"
)

type paymentFixture struct {
	payments *mocks.MockPaymentRepository
	members  *mocks.MockMemberRepository
	tx       *mocks.MockTransactor
	cache    *mocks.MockCache
	service  *PaymentService
}

func newPaymentFixture(now time.Time) *paymentFixture {
	f := &paymentFixture{
		payments: &mocks.MockPaymentRepository{},
		members:  &mocks.MockMemberRepository{},
		tx:       &mocks.MockTransactor{},
		cache:    &mocks.MockCache{},
	}
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.cache.On("Delete", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.service = NewPaymentService(f.payments, f.members, f.tx, f.cache, testConfig(), zap.NewNop())
	f.service.now = fixedClock(now)
	return f
}

func registeredMember(reg time.Time, membershipType domain.MembershipType) *domain.Member {
	return &domain.Member{
		ID:               uuid.New(),
		FirstName:        "Ana",
		LastName:         "Pérez",
		Document:         "1001",
		RegistrationDate: reg,
		MembershipType:   membershipType,
		MonthlyFee:       decimal.NewFromInt(80000),
		IsActive:         true,
		Version:          3,
	}
}

func TestPaymentService_Post_MovesDueDates(t *testing.T) {
	tests := []struct {
		name         string
		registration time.Time
		paymentType  domain.PaymentType
		paymentDate  string
		expectedNext time.Time
	}{
		{
			name:         "monthly payment clamps to end of february",
			registration: date(2024, time.January, 31),
			paymentType:  domain.PaymentMonthly,
			paymentDate:  "2024-02-05",
			expectedNext: date(2024, time.February, 29),
		},
		{
			name:         "monthly payment on the due date moves one period",
			registration: date(2024, time.January, 15),
			paymentType:  domain.PaymentMonthly,
			paymentDate:  "2024-03-15",
			expectedNext: date(2024, time.April, 15),
		},
		{
			name:         "annual payment one day early keeps the anniversary",
			registration: date(2023, time.March, 10),
			paymentType:  domain.PaymentAnnual,
			paymentDate:  "2024-03-09",
			expectedNext: date(2024, time.March, 10),
		},
		{
			name:         "annual payment on a leap day anchor",
			registration: date(2024, time.February, 29),
			paymentType:  domain.PaymentAnnual,
			paymentDate:  "2024-03-01",
			expectedNext: date(2025, time.February, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newPaymentFixture(time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC))
			m := registeredMember(tt.registration, domain.MembershipMonthly)
			paid, err := time.Parse("2006-01-02", tt.paymentDate)
			require.NoError(t, err)

			f.members.On("GetByIDForUpdate", mock.Anything, m.ID).Return(m, nil)
			f.payments.On("Create", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil)
			f.members.On("UpdatePaymentDates", mock.Anything, m.ID, m.Version, dayPtr(&paid), dayPtr(&tt.expectedNext)).Return(nil)

			req := &domain.CreatePaymentRequest{
				MemberID:    m.ID,
				Amount:      decimal.NewFromInt(80000),
				PaymentType: tt.paymentType,
				PaymentDate: tt.paymentDate,
			}

			// Act
			payment, err := f.service.Post(context.Background(), req)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.paymentType, payment.PaymentType)
			assert.True(t, payment.PaymentDate.Equal(paid))
			require.NotNil(t, payment.Member)
			require.NotNil(t, payment.Member.NextPaymentDate)
			assert.True(t, payment.Member.NextPaymentDate.Equal(tt.expectedNext),
				"next = %s", payment.Member.NextPaymentDate.Format("2006-01-02"))
			f.members.AssertExpectations(t)
			f.payments.AssertExpectations(t)
		})
	}
}

func TestPaymentService_Post_Defaults(t *testing.T) {
	f := newPaymentFixture(time.Date(2024, time.June, 10, 18, 30, 0, 0, time.UTC))
	m := registeredMember(date(2024, time.May, 10), domain.MembershipMonthly)
	today := date(2024, time.June, 10)
	next := date(2024, time.July, 10)

	f.members.On("GetByIDForUpdate", mock.Anything, m.ID).Return(m, nil)
	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil)
	f.members.On("UpdatePaymentDates", mock.Anything, m.ID, m.Version, dayPtr(&today), dayPtr(&next)).Return(nil)

	payment, err := f.service.Post(context.Background(), &domain.CreatePaymentRequest{
		MemberID: m.ID,
		Amount:   decimal.NewFromInt(50000),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentMonthly, payment.PaymentType)
	assert.True(t, payment.PaymentDate.Equal(today))
	assert.Nil(t, payment.Description)
}

func TestPaymentService_Post_NonQualifyingLeavesDates(t *testing.T) {
	for _, paymentType := range []domain.PaymentType{domain.PaymentRegistration, domain.PaymentPenalty, domain.PaymentOther} {
		t.Run(string(paymentType), func(t *testing.T) {
			f := newPaymentFixture(time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC))
			m := registeredMember(date(2024, time.May, 10), domain.MembershipMonthly)

			f.members.On("GetByIDForUpdate", mock.Anything, m.ID).Return(m, nil)
			f.payments.On("Create", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil)

			payment, err := f.service.Post(context.Background(), &domain.CreatePaymentRequest{
				MemberID:    m.ID,
				Amount:      decimal.NewFromInt(10000),
				PaymentType: paymentType,
				Description: "locker",
			})

			require.NoError(t, err)
			require.NotNil(t, payment.Description)
			assert.Equal(t, "locker", *payment.Description)
			f.members.AssertNotCalled(t, "UpdatePaymentDates", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPaymentService_Post_Errors(t *testing.T) {
	memberID := uuid.New()

	tests := []struct {
		name        string
		req         *domain.CreatePaymentRequest
		setup       func(f *paymentFixture)
		expectedErr error
	}{
		{
			name:        "zero amount",
			req:         &domain.CreatePaymentRequest{MemberID: memberID, Amount: decimal.Zero},
			setup:       func(f *paymentFixture) {},
			expectedErr: customError.ErrInvalidPaymentAmount,
		},
		{
			name:        "negative amount",
			req:         &domain.CreatePaymentRequest{MemberID: memberID, Amount: decimal.NewFromInt(-5)},
			setup:       func(f *paymentFixture) {},
			expectedErr: customError.ErrInvalidPaymentAmount,
		},
		{
			name:        "malformed date",
			req:         &domain.CreatePaymentRequest{MemberID: memberID, Amount: decimal.NewFromInt(5), PaymentDate: "10/06/2024"},
			setup:       func(f *paymentFixture) {},
			expectedErr: customError.ErrInvalidDate,
		},
		{
			name: "unknown member",
			req:  &domain.CreatePaymentRequest{MemberID: memberID, Amount: decimal.NewFromInt(5)},
			setup: func(f *paymentFixture) {
				f.members.On("GetByIDForUpdate", mock.Anything, memberID).Return(nil, sql.ErrNoRows)
			},
			expectedErr: customError.ErrMemberNotFound,
		},
		{
			name: "member changed concurrently",
			req:  &domain.CreatePaymentRequest{MemberID: memberID, Amount: decimal.NewFromInt(5), PaymentDate: "2024-06-10"},
			setup: func(f *paymentFixture) {
				m := registeredMember(date(2024, time.May, 10), domain.MembershipMonthly)
				m.ID = memberID
				f.members.On("GetByIDForUpdate", mock.Anything, memberID).Return(m, nil)
				f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
				f.members.On("UpdatePaymentDates", mock.Anything, memberID, m.Version, mock.Anything, mock.Anything).
					Return(repository.ErrVersionConflict)
			},
			expectedErr: customError.ErrConcurrentModification,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC))
			tt.setup(f)

			payment, err := f.service.Post(context.Background(), tt.req)

			assert.Nil(t, payment)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestPaymentService_Delete_OnlyQualifyingPaymentClearsDates(t *testing.T) {
	f := newPaymentFixture(time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC))
	m := registeredMember(date(2024, time.May, 10), domain.MembershipMonthly)
	m.LastPaymentDate = datePtr(2024, time.June, 1)
	m.NextPaymentDate = datePtr(2024, time.July, 10)
	payment := &domain.Payment{ID: uuid.New(), MemberID: m.ID, PaymentType: domain.PaymentMonthly, PaymentDate: date(2024, time.June, 1)}

	f.payments.On("GetByID", mock.Anything, payment.ID).Return(payment, nil)
	f.members.On("GetByIDForUpdate", mock.Anything, m.ID).Return(m, nil)
	f.payments.On("Delete", mock.Anything, payment.ID).Return(int64(1), nil)
	f.payments.On("GetLatestQualifying", mock.Anything, m.ID).Return(nil, sql.ErrNoRows)
	f.members.On("UpdatePaymentDates", mock.Anything, m.ID, m.Version, dayPtr(nil), dayPtr(nil)).Return(nil)

	err := f.service.Delete(context.Background(), payment.ID)

	require.NoError(t, err)
	f.members.AssertExpectations(t)
	f.payments.AssertExpectations(t)
}

func TestPaymentService_WritesInvalidateDashboard(t *testing.T) {
	f := newPaymentFixture(time.Date(2025, time.January, 3, 12, 0, 0, 0, time.UTC))
	m := registeredMember(date(2024, time.May, 10), domain.MembershipMonthly)
	penalty := &domain.Payment{ID: uuid.New(), MemberID: m.ID, PaymentType: domain.PaymentPenalty, PaymentDate: date(2024, time.December, 20)}

	f.payments.On("GetByID", mock.Anything, penalty.ID).Return(penalty, nil)
	f.members.On("GetByIDForUpdate", mock.Anything, m.ID).Return(m, nil)
	f.payments.On("Delete", mock.Anything, penalty.ID).Return(int64(1), nil)
	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil)

	require.NoError(t, f.service.Delete(context.Background(), penalty.ID))
	f.cache.AssertCalled(t, "Delete", mock.Anything, []string{"dashboard:2025-01-03", "monthly-stats:2024"})

	_, err := f.service.Post(context.Background(), &domain.CreatePaymentRequest{
		MemberID:    m.ID,
		Amount:      decimal.NewFromInt(5000),
		PaymentType: domain.PaymentPenalty,
	})
	require.NoError(t, err)
	f.cache.AssertCalled(t, "Delete", mock.Anything, []string{"dashboard:2025-01-03", "monthly-stats:2025"})
}

func TestPaymentService_FailedDeleteKeepsCache(t *testing.T) {
	f := newPaymentFixture(time.Now())
	id := uuid.New()
	f.payments.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows)

	require.Error(t, f.service.Delete(context.Background(), id))
	f.cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestPaymentService_Delete_RecomputesFromRemainingPayment(t *testing.T) {
	f := newPaymentFixture(time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC))
	m := registeredMember(date(2024, time.January, 31), domain.MembershipMonthly)
	deleted := &domain.Payment{ID: uuid.New(), MemberID: m.ID, PaymentType: domain.PaymentMonthly, PaymentDate: date(2024, time.April, 30)}
	remaining := &domain.Payment{ID: uuid.New(), MemberID: m.ID, PaymentType: domain.PaymentMonthly, PaymentDate: date(2024, time.March, 15)}
	last := date(2024, time.March, 15)
	next := date(2024, time.March, 31)

	f.payments.On("GetByID", mock.Anything, deleted.ID).Return(deleted, nil)
	f.members.On("GetByIDForUpdate", mock.Anything, m.ID).Return(m, nil)
	f.payments.On("Delete", mock.Anything, deleted.ID).Return(int64(1), nil)
	f.payments.On("GetLatestQualifying", mock.Anything, m.ID).Return(remaining, nil)
	f.members.On("UpdatePaymentDates", mock.Anything, m.ID, m.Version, dayPtr(&last), dayPtr(&next)).Return(nil)

	require.NoError(t, f.service.Delete(context.Background(), deleted.ID))
	f.members.AssertExpectations(t)
}

func TestPaymentService_Delete_NonQualifyingSkipsRecompute(t *testing.T) {
	f := newPaymentFixture(time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC))
	m := registeredMember(date(2024, time.May, 10), domain.MembershipMonthly)
	penalty := &domain.Payment{ID: uuid.New(), MemberID: m.ID, PaymentType: domain.PaymentPenalty}

	f.payments.On("GetByID", mock.Anything, penalty.ID).Return(penalty, nil)
	f.members.On("GetByIDForUpdate", mock.Anything, m.ID).Return(m, nil)
	f.payments.On("Delete", mock.Anything, penalty.ID).Return(int64(1), nil)

	require.NoError(t, f.service.Delete(context.Background(), penalty.ID))
	f.payments.AssertNotCalled(t, "GetLatestQualifying", mock.Anything, mock.Anything)
	f.members.AssertNotCalled(t, "UpdatePaymentDates", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_Delete_NotFound(t *testing.T) {
	f := newPaymentFixture(time.Now())
	id := uuid.New()
	f.payments.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows)

	err := f.service.Delete(context.Background(), id)

	assert.ErrorIs(t, err, customError.ErrPaymentNotFound)
}

func TestPaymentService_Update_TypeChangeRecomputes(t *testing.T) {
	f := newPaymentFixture(time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC))
	m := registeredMember(date(2024, time.May, 10), domain.MembershipMonthly)
	payment := &domain.Payment{ID: uuid.New(), MemberID: m.ID, PaymentType: domain.PaymentMonthly, Amount: decimal.NewFromInt(80000)}
	newType := domain.PaymentPenalty

	f.payments.On("GetByID", mock.Anything, payment.ID).Return(payment, nil)
	f.members.On("GetByIDForUpdate", mock.Anything, m.ID).Return(m, nil)
	f.payments.On("Update", mock.Anything, payment).Return(nil)
	f.payments.On("GetLatestQualifying", mock.Anything, m.ID).Return(nil, sql.ErrNoRows)
	f.members.On("UpdatePaymentDates", mock.Anything, m.ID, m.Version, dayPtr(nil), dayPtr(nil)).Return(nil)

	updated, err := f.service.Update(context.Background(), payment.ID, &domain.UpdatePaymentRequest{PaymentType: newType})

	require.NoError(t, err)
	assert.Equal(t, newType, updated.PaymentType)
	f.members.AssertExpectations(t)
}

func TestPaymentService_Update_DescriptionOnly(t *testing.T) {
	f := newPaymentFixture(time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC))
	m := registeredMember(date(2024, time.May, 10), domain.MembershipMonthly)
	payment := &domain.Payment{ID: uuid.New(), MemberID: m.ID, PaymentType: domain.PaymentOther}
	note := "towel"

	f.payments.On("GetByID", mock.Anything, payment.ID).Return(payment, nil)
	f.members.On("GetByIDForUpdate", mock.Anything, m.ID).Return(m, nil)
	f.payments.On("Update", mock.Anything, payment).Return(nil)

	updated, err := f.service.Update(context.Background(), payment.ID, &domain.UpdatePaymentRequest{Description: &note})

	require.NoError(t, err)
	assert.Equal(t, "towel", *updated.Description)
	f.payments.AssertNotCalled(t, "GetLatestQualifying", mock.Anything, mock.Anything)
}

func TestPaymentService_MonthlyReport(t *testing.T) {
	f := newPaymentFixture(time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC))
	payments := []*domain.Payment{
		{ID: uuid.New(), Amount: decimal.RequireFromString("80000.50"), PaymentType: domain.PaymentMonthly},
		{ID: uuid.New(), Amount: decimal.NewFromInt(20000), PaymentType: domain.PaymentPenalty},
		{ID: uuid.New(), Amount: decimal.NewFromInt(80000), PaymentType: domain.PaymentMonthly},
	}
	f.payments.On("ListBetween", mock.Anything, sameDay(date(2024, time.March, 1)), sameDay(date(2024, time.April, 1))).
		Return(payments, nil)

	report, err := f.service.MonthlyReport(context.Background(), 2024, 3)

	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalPayments)
	assert.True(t, decimal.RequireFromString("180000.50").Equal(report.TotalAmount))
	assert.Equal(t, 2, report.PaymentsByType[domain.PaymentMonthly])
	assert.Equal(t, 1, report.PaymentsByType[domain.PaymentPenalty])
}

func TestPaymentService_MonthlyReport_WholeCurrentYear(t *testing.T) {
	f := newPaymentFixture(time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC))
	f.payments.On("ListBetween", mock.Anything, sameDay(date(2024, time.January, 1)), sameDay(date(2025, time.January, 1))).
		Return([]*domain.Payment{}, nil)

	report, err := f.service.MonthlyReport(context.Background(), 0, 0)

	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalPayments)
	assert.True(t, report.TotalAmount.IsZero())
}
