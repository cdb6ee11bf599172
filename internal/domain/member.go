package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MembershipType is the billing cadence a member is enrolled in.
type MembershipType string

const (
	MembershipMonthly MembershipType = "MONTHLY"
	MembershipAnnual  MembershipType = "ANNUAL"
)

// IsValid reports whether t is a cadence the billing calculator supports.
func (t MembershipType) IsValid() bool {
	return t == MembershipMonthly || t == MembershipAnnual
}

// Member represents a gym member
type Member struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	FirstName        string          `json:"firstName" db:"first_name"`
	LastName         string          `json:"lastName" db:"last_name"`
	Document         string          `json:"document" db:"document"`
	Email            *string         `json:"email,omitempty" db:"email"`
	Phone            *string         `json:"phone,omitempty" db:"phone"`
	Address          *string         `json:"address,omitempty" db:"address"`
	BirthDate        *time.Time      `json:"birthDate,omitempty" db:"birth_date"`
	RegistrationDate time.Time       `json:"registrationDate" db:"registration_date"`
	MembershipType   MembershipType  `json:"membershipType" db:"membership_type"`
	MonthlyFee       decimal.Decimal `json:"monthlyFee" db:"monthly_fee"`
	LastPaymentDate  *time.Time      `json:"lastPaymentDate,omitempty" db:"last_payment_date"`
	NextPaymentDate  *time.Time      `json:"nextPaymentDate,omitempty" db:"next_payment_date"`
	IsActive         bool            `json:"isActive" db:"is_active"`
	Notes            *string         `json:"notes,omitempty" db:"notes"`
	Version          int             `json:"version" db:"version"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time       `json:"updatedAt" db:"updated_at"`
}

// FullName returns "first last".
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// MemberSummary is the short member projection embedded in payments and dashboard lists.
type MemberSummary struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	FirstName       string          `json:"firstName" db:"first_name"`
	LastName        string          `json:"lastName" db:"last_name"`
	Document        string          `json:"document" db:"document"`
	NextPaymentDate *time.Time      `json:"nextPaymentDate,omitempty" db:"next_payment_date"`
	MonthlyFee      decimal.Decimal `json:"monthlyFee" db:"monthly_fee"`
}

// MemberFilter narrows member listings.
type MemberFilter struct {
	Search   string
	IsActive *bool
	Page     int
	Limit    int
}

// DTOs for requests and responses

type CreateMemberRequest struct {
	FirstName        string          `json:"firstName" validate:"required"`
	LastName         string          `json:"lastName" validate:"required"`
	Document         string          `json:"document" validate:"required"`
	Email            string          `json:"email" validate:"omitempty,email"`
	Phone            string          `json:"phone"`
	Address          string          `json:"address"`
	BirthDate        string          `json:"birthDate"`
	RegistrationDate string          `json:"registrationDate"`
	MembershipType   MembershipType  `json:"membershipType" validate:"omitempty,oneof=MONTHLY ANNUAL"`
	MonthlyFee       decimal.Decimal `json:"monthlyFee" validate:"gte=0"`
	Notes            string          `json:"notes"`
}

// UpdateMemberRequest applies only the fields present in the body.
type UpdateMemberRequest struct {
	FirstName        *string          `json:"firstName" validate:"omitempty,min=1"`
	LastName         *string          `json:"lastName" validate:"omitempty,min=1"`
	Document         *string          `json:"document" validate:"omitempty,min=1"`
	Email            *string          `json:"email" validate:"omitempty,email"`
	Phone            *string          `json:"phone"`
	Address          *string          `json:"address"`
	BirthDate        *string          `json:"birthDate"`
	RegistrationDate *string          `json:"registrationDate"`
	MembershipType   *MembershipType  `json:"membershipType" validate:"omitempty,oneof=MONTHLY ANNUAL"`
	MonthlyFee       *decimal.Decimal `json:"monthlyFee"`
	IsActive         *bool            `json:"isActive"`
	Notes            *string          `json:"notes"`
}

type MemberDetailResponse struct {
	*Member
	Payments []*Payment `json:"payments"`
}

type MemberListItem struct {
	*Member
	LatestPayment *Payment `json:"latestPayment,omitempty"`
	PaymentCount  int      `json:"paymentCount"`
}
