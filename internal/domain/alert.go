package domain

import (
	"time"

	"github.com/google/uuid"
)

type AlertType string

const (
	AlertPaymentDueSoon AlertType = "PAYMENT_DUE_SOON"
	AlertPaymentOverdue AlertType = "PAYMENT_OVERDUE"
	AlertMemberInactive AlertType = "MEMBER_INACTIVE"
)

// Alert is a notice derived from a member's payment state
type Alert struct {
	ID        uuid.UUID `json:"id" db:"id"`
	MemberID  uuid.UUID `json:"memberId" db:"member_id"`
	AlertType AlertType `json:"alertType" db:"alert_type"`
	Message   string    `json:"message" db:"message"`
	IsRead    bool      `json:"isRead" db:"is_read"`
	AlertDate time.Time `json:"alertDate" db:"alert_date"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type AlertFilter struct {
	IsRead *bool
	Page   int
	Limit  int
}

type AlertSummary struct {
	Total  int               `json:"total"`
	Unread int               `json:"unread"`
	ByType map[AlertType]int `json:"byType"`
}

// SweepResult reports what a single alert sweep produced.
type SweepResult struct {
	Day     time.Time `json:"day"`
	Horizon time.Time `json:"horizon"`
	DueSoon int       `json:"dueSoon"`
	Overdue int       `json:"overdue"`
	Created int       `json:"created"`
	Skipped bool      `json:"skipped"`
}
