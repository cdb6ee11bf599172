package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/gym-membership/internal/domain"
)

// Transactor runs fn inside a single database transaction. Repositories called with the
// context handed to fn take part in that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	// Create creates a new member
	Create(ctx context.Context, member *domain.Member) error

	// GetByID retrieves a member by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)

	// GetByIDForUpdate retrieves a member and row-locks it until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Member, error)

	// Update writes profile fields and due dates, failing with ErrVersionConflict when
	// member.Version no longer matches the stored row
	Update(ctx context.Context, member *domain.Member) error

	// UpdatePaymentDates sets last/next payment dates under the same version check as Update
	UpdatePaymentDates(ctx context.Context, id uuid.UUID, version int, last, next *time.Time) error

	// ToggleActive flips is_active and returns the updated member
	ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Member, error)

	// Delete removes a member; payments and alerts cascade
	Delete(ctx context.Context, id uuid.UUID) (int64, error)

	// List returns a page of members and the total matching the filter
	List(ctx context.Context, filter domain.MemberFilter) ([]*domain.Member, int, error)

	// ListActiveDueBetween returns active members whose next payment date is within [from, to]
	ListActiveDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Member, error)

	// ListActiveOverdue returns active members whose next payment date is before `before`
	ListActiveOverdue(ctx context.Context, before time.Time) ([]*domain.Member, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create creates a new payment record
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment with its member summary
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// Update writes amount, type and description
	Update(ctx context.Context, payment *domain.Payment) error

	// Delete removes a payment
	Delete(ctx context.Context, id uuid.UUID) (int64, error)

	// List returns a page of payments and the total matching the filter
	List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, int, error)

	// ListByMember returns every payment of a member, newest first
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Payment, error)

	// GetLatestQualifying returns the most recent MONTHLY or ANNUAL payment of a member
	GetLatestQualifying(ctx context.Context, memberID uuid.UUID) (*domain.Payment, error)

	// ListBetween returns payments dated within [from, to)
	ListBetween(ctx context.Context, from, to time.Time) ([]*domain.Payment, error)

	// ListRecent returns the latest n payments
	ListRecent(ctx context.Context, n int) ([]*domain.Payment, error)

	// TotalsByType aggregates amount and count per payment type within [from, to)
	TotalsByType(ctx context.Context, from, to time.Time) ([]*domain.PaymentTypeTotal, error)

	// SumBetween returns the total amount and count of payments within [from, to)
	SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, int, error)
}

// AlertRepository defines the interface for alert data operations
type AlertRepository interface {
	// Create stores a single alert
	Create(ctx context.Context, alert *domain.Alert) error

	// CreateBatch stores all alerts in one statement
	CreateBatch(ctx context.Context, alerts []*domain.Alert) error

	// DeleteByDateRange removes alerts of the given types whose alert_date is within [from, to)
	DeleteByDateRange(ctx context.Context, from, to time.Time, types ...domain.AlertType) (int64, error)

	// List returns a page of alerts and the total matching the filter
	List(ctx context.Context, filter domain.AlertFilter) ([]*domain.Alert, int, error)

	// ListByMember returns a member's alerts, newest first
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Alert, error)

	// MarkRead flags one alert as read and returns it
	MarkRead(ctx context.Context, id uuid.UUID) (*domain.Alert, error)

	// MarkAllRead flags every unread alert as read
	MarkAllRead(ctx context.Context) (int64, error)

	// Delete removes one alert
	Delete(ctx context.Context, id uuid.UUID) (int64, error)

	// DeleteRead removes every read alert
	DeleteRead(ctx context.Context) (int64, error)

	// Summary counts all alerts, unread alerts and unread alerts by type
	Summary(ctx context.Context) (*domain.AlertSummary, error)
}

// AdminRepository defines the interface for admin data operations
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// StatsRepository serves the dashboard aggregates
type StatsRepository interface {
	// MemberCounts returns total/active/inactive counts and due-soon/overdue counts relative to today
	MemberCounts(ctx context.Context, today, horizon time.Time) (*domain.DashboardStats, error)

	// MonthlyTotals returns revenue, payment count and new members per month of a year
	MonthlyTotals(ctx context.Context, year int) ([]*domain.MonthStats, error)
}
