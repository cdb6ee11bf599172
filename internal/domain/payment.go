package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentMonthly      PaymentType = "MONTHLY"
	PaymentAnnual       PaymentType = "ANNUAL"
	PaymentRegistration PaymentType = "REGISTRATION"
	PaymentPenalty      PaymentType = "PENALTY"
	PaymentOther        PaymentType = "OTHER"
)

// QualifyingPaymentTypes are the payment types that move a member's due dates.
var QualifyingPaymentTypes = []PaymentType{PaymentMonthly, PaymentAnnual}

// IsQualifying reports whether the payment type advances the billing cycle.
func (t PaymentType) IsQualifying() bool {
	return t == PaymentMonthly || t == PaymentAnnual
}

// Cycle maps a qualifying payment type to the cadence used to project the next due date.
func (t PaymentType) Cycle() MembershipType {
	return MembershipType(t)
}

// Payment represents a payment received from a member
type Payment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	MemberID    uuid.UUID       `json:"memberId" db:"member_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate time.Time       `json:"paymentDate" db:"payment_date"`
	PaymentType PaymentType     `json:"paymentType" db:"payment_type"`
	Description *string         `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`

	Member *MemberSummary `json:"member,omitempty" db:"-"`
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	MemberID  *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

type CreatePaymentRequest struct {
	MemberID    uuid.UUID       `json:"memberId" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required,gt=0"`
	PaymentType PaymentType     `json:"paymentType" validate:"omitempty,oneof=MONTHLY ANNUAL REGISTRATION PENALTY OTHER"`
	PaymentDate string          `json:"paymentDate"`
	Description string          `json:"description"`
}

type UpdatePaymentRequest struct {
	Amount      *decimal.Decimal `json:"amount" validate:"omitempty,gt=0"`
	PaymentType PaymentType      `json:"paymentType" validate:"omitempty,oneof=MONTHLY ANNUAL REGISTRATION PENALTY OTHER"`
	Description *string          `json:"description"`
}

// MonthlyReport summarises the payments of a year or a single month.
type MonthlyReport struct {
	TotalAmount    decimal.Decimal     `json:"totalAmount"`
	TotalPayments  int                 `json:"totalPayments"`
	PaymentsByType map[PaymentType]int `json:"paymentsByType"`
	Payments       []*Payment          `json:"payments"`
}
