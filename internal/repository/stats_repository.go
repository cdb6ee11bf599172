package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/gym-membership/internal/domain"
)

type statsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) MemberCounts(ctx context.Context, today, horizon time.Time) (*domain.DashboardStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_active) AS active,
			COUNT(*) FILTER (WHERE NOT is_active) AS inactive,
			COUNT(*) FILTER (WHERE is_active AND next_payment_date >= $1 AND next_payment_date <= $2) AS due_soon,
			COUNT(*) FILTER (WHERE is_active AND next_payment_date < $1) AS overdue
		FROM members
	`

	var counts struct {
		Total    int `db:"total"`
		Active   int `db:"active"`
		Inactive int `db:"inactive"`
		DueSoon  int `db:"due_soon"`
		Overdue  int `db:"overdue"`
	}
	if err := conn(ctx, r.db).GetContext(ctx, &counts, query, today, horizon); err != nil {
		return nil, err
	}

	return &domain.DashboardStats{
		TotalMembers:               counts.Total,
		ActiveMembers:              counts.Active,
		InactiveMembers:            counts.Inactive,
		MembersWithPaymentsDue:     counts.DueSoon,
		MembersWithOverduePayments: counts.Overdue,
	}, nil
}

func (r *statsRepository) MonthlyTotals(ctx context.Context, year int) ([]*domain.MonthStats, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	stats := make([]*domain.MonthStats, 12)
	for i := range stats {
		stats[i] = &domain.MonthStats{Month: i + 1, Revenue: decimal.Zero}
	}

	q := conn(ctx, r.db)

	var payments []struct {
		Month   int             `db:"month"`
		Revenue decimal.Decimal `db:"revenue"`
		Count   int             `db:"count"`
	}
	paymentQuery := `
		SELECT EXTRACT(MONTH FROM payment_date)::int AS month, SUM(amount) AS revenue, COUNT(*) AS count
		FROM payments
		WHERE payment_date >= $1 AND payment_date < $2
		GROUP BY 1
	`
	if err := q.SelectContext(ctx, &payments, paymentQuery, from, to); err != nil {
		return nil, err
	}
	for _, p := range payments {
		stats[p.Month-1].Revenue = p.Revenue
		stats[p.Month-1].PaymentsCount = p.Count
	}

	var members []struct {
		Month int `db:"month"`
		Count int `db:"count"`
	}
	memberQuery := `
		SELECT EXTRACT(MONTH FROM registration_date)::int AS month, COUNT(*) AS count
		FROM members
		WHERE registration_date >= $1 AND registration_date < $2
		GROUP BY 1
	`
	if err := q.SelectContext(ctx, &members, memberQuery, from, to); err != nil {
		return nil, err
	}
	for _, m := range members {
		stats[m.Month-1].NewMembers = m.Count
	}

	return stats, nil
}
