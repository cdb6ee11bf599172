package domain

import "github.com/shopspring/decimal"

type DashboardStats struct {
	TotalMembers               int             `json:"totalMembers"`
	ActiveMembers              int             `json:"activeMembers"`
	InactiveMembers            int             `json:"inactiveMembers"`
	MembersWithPaymentsDue     int             `json:"membersWithPaymentsDue"`
	MembersWithOverduePayments int             `json:"membersWithOverduePayments"`
	MonthlyRevenue             decimal.Decimal `json:"monthlyRevenue"`
	TotalPaymentsThisMonth     int             `json:"totalPaymentsThisMonth"`
	UnreadAlerts               int             `json:"unreadAlerts"`
}

type PaymentTypeTotal struct {
	Type   PaymentType     `json:"type" db:"payment_type"`
	Amount decimal.Decimal `json:"amount" db:"amount"`
	Count  int             `json:"count" db:"count"`
}

type DashboardAlerts struct {
	MembersDueSoon []*MemberSummary `json:"membersDueSoon"`
	MembersOverdue []*MemberSummary `json:"membersOverdue"`
}

type Dashboard struct {
	Stats          DashboardStats      `json:"stats"`
	PaymentsByType []*PaymentTypeTotal `json:"paymentsByType"`
	Alerts         DashboardAlerts     `json:"alerts"`
	RecentPayments []*Payment          `json:"recentPayments"`
}

type MonthStats struct {
	Month         int             `json:"month"`
	MonthName     string          `json:"monthName"`
	Revenue       decimal.Decimal `json:"revenue"`
	PaymentsCount int             `json:"paymentsCount"`
	NewMembers    int             `json:"newMembers"`
}

type YearStats struct {
	Year         int           `json:"year"`
	MonthlyStats []*MonthStats `json:"monthlyStats"`
}

// Pagination mirrors the list metadata returned by every paginated endpoint.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes total pages for the given page window.
func NewPagination(total, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: pages}
}
