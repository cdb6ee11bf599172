package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/pkg/utils"
)

const paymentSelect = `
	SELECT p.id, p.member_id, p.amount, p.payment_date, p.payment_type, p.description,
		p.created_at, p.updated_at,
		m.first_name AS member_first_name, m.last_name AS member_last_name,
		m.document AS member_document
	FROM payments p
	JOIN members m ON m.id = p.member_id
`

// paymentRow is a payment joined with the owning member's summary columns
type paymentRow struct {
	domain.Payment
	MemberFirstName string `db:"member_first_name"`
	MemberLastName  string `db:"member_last_name"`
	MemberDocument  string `db:"member_document"`
}

func (row *paymentRow) toDomain() *domain.Payment {
	p := row.Payment
	p.Member = &domain.MemberSummary{
		ID:        p.MemberID,
		FirstName: row.MemberFirstName,
		LastName:  row.MemberLastName,
		Document:  row.MemberDocument,
	}
	return &p
}

func toPayments(rows []*paymentRow) []*domain.Payment {
	return lo.Map(rows, func(row *paymentRow, _ int) *domain.Payment {
		return row.toDomain()
	})
}

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, member_id, amount, payment_date, payment_type, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		payment.ID,
		payment.MemberID,
		payment.Amount,
		payment.PaymentDate,
		payment.PaymentType,
		payment.Description,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	return err
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var row paymentRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, paymentSelect+` WHERE p.id = $1`, id); err != nil {
		return nil, err
	}

	return row.toDomain(), nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET amount = $2, payment_type = $3, description = $4, updated_at = NOW()
		WHERE id = $1
	`

	n, err := rowsAffected(conn(ctx, r.db).ExecContext(ctx, query,
		payment.ID,
		payment.Amount,
		payment.PaymentType,
		payment.Description,
	))
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *paymentRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	return rowsAffected(conn(ctx, r.db).ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id))
}

func (r *paymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, int, error) {
	var (
		where []string
		args  []interface{}
	)

	if filter.MemberID != nil {
		args = append(args, *filter.MemberID)
		where = append(where, fmt.Sprintf("p.member_id = $%d", len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where = append(where, fmt.Sprintf("p.payment_date >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where = append(where, fmt.Sprintf("p.payment_date <= $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	q := conn(ctx, r.db)

	var total int
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM payments p`+clause, args...); err != nil {
		return nil, 0, err
	}

	page, limit := utils.NormalizePage(filter.Page, filter.Limit)
	args = append(args, limit, utils.Offset(page, limit))
	query := fmt.Sprintf(`%s%s ORDER BY p.payment_date DESC, p.created_at DESC LIMIT $%d OFFSET $%d`,
		paymentSelect, clause, len(args)-1, len(args))

	rows := []*paymentRow{}
	if err := q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	return toPayments(rows), total, nil
}

func (r *paymentRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Payment, error) {
	query := paymentSelect + ` WHERE p.member_id = $1 ORDER BY p.payment_date DESC, p.created_at DESC`

	rows := []*paymentRow{}
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, memberID); err != nil {
		return nil, err
	}

	return toPayments(rows), nil
}

func (r *paymentRepository) GetLatestQualifying(ctx context.Context, memberID uuid.UUID) (*domain.Payment, error) {
	query := paymentSelect + `
		WHERE p.member_id = $1 AND p.payment_type IN ('MONTHLY', 'ANNUAL')
		ORDER BY p.payment_date DESC, p.created_at DESC
		LIMIT 1
	`

	var row paymentRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, memberID); err != nil {
		return nil, err
	}

	return row.toDomain(), nil
}

func (r *paymentRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.Payment, error) {
	query := paymentSelect + ` WHERE p.payment_date >= $1 AND p.payment_date < $2 ORDER BY p.payment_date DESC`

	rows := []*paymentRow{}
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, err
	}

	return toPayments(rows), nil
}

func (r *paymentRepository) ListRecent(ctx context.Context, n int) ([]*domain.Payment, error) {
	query := paymentSelect + ` ORDER BY p.payment_date DESC, p.created_at DESC LIMIT $1`

	rows := []*paymentRow{}
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, n); err != nil {
		return nil, err
	}

	return toPayments(rows), nil
}

func (r *paymentRepository) TotalsByType(ctx context.Context, from, to time.Time) ([]*domain.PaymentTypeTotal, error) {
	query := `
		SELECT payment_type, COALESCE(SUM(amount), 0) AS amount, COUNT(*) AS count
		FROM payments
		WHERE payment_date >= $1 AND payment_date < $2
		GROUP BY payment_type
		ORDER BY payment_type
	`

	totals := []*domain.PaymentTypeTotal{}
	if err := conn(ctx, r.db).SelectContext(ctx, &totals, query, from, to); err != nil {
		return nil, err
	}

	return totals, nil
}

func (r *paymentRepository) SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, int, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count
		FROM payments
		WHERE payment_date >= $1 AND payment_date < $2
	`

	var result struct {
		Total decimal.Decimal `db:"total"`
		Count int             `db:"count"`
	}
	if err := conn(ctx, r.db).GetContext(ctx, &result, query, from, to); err != nil {
		return decimal.Zero, 0, err
	}

	return result.Total, result.Count, nil
}
