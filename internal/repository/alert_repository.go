package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/pkg/utils"
)

const alertColumns = `id, member_id, alert_type, message, is_read, alert_date, created_at`

const insertAlert = `
	INSERT INTO alerts (id, member_id, alert_type, message, is_read, alert_date, created_at)
	VALUES (:id, :member_id, :alert_type, :message, :is_read, :alert_date, :created_at)
`

type alertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	_, err := conn(ctx, r.db).NamedExecContext(ctx, insertAlert, alert)
	return err
}

func (r *alertRepository) CreateBatch(ctx context.Context, alerts []*domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	// sqlx expands a slice of structs into a single multi-row VALUES list
	rows := lo.Map(alerts, func(a *domain.Alert, _ int) domain.Alert { return *a })
	_, err := conn(ctx, r.db).NamedExecContext(ctx, insertAlert, rows)
	return err
}

func (r *alertRepository) DeleteByDateRange(ctx context.Context, from, to time.Time, types ...domain.AlertType) (int64, error) {
	query := `DELETE FROM alerts WHERE alert_date >= $1 AND alert_date < $2`
	args := []interface{}{from, to}
	if len(types) > 0 {
		query += ` AND alert_type = ANY($3)`
		args = append(args, pq.Array(lo.Map(types, func(t domain.AlertType, _ int) string { return string(t) })))
	}
	return rowsAffected(conn(ctx, r.db).ExecContext(ctx, query, args...))
}

func (r *alertRepository) List(ctx context.Context, filter domain.AlertFilter) ([]*domain.Alert, int, error) {
	clause := ""
	var args []interface{}
	if filter.IsRead != nil {
		clause = ` WHERE is_read = $1`
		args = append(args, *filter.IsRead)
	}

	q := conn(ctx, r.db)

	var total int
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM alerts`+clause, args...); err != nil {
		return nil, 0, err
	}

	page, limit := utils.NormalizePage(filter.Page, filter.Limit)
	query := `SELECT ` + alertColumns + ` FROM alerts` + clause + ` ORDER BY alert_date DESC, created_at DESC`
	if filter.IsRead != nil {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, utils.Offset(page, limit))

	alerts := []*domain.Alert{}
	if err := q.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, 0, err
	}

	return alerts, total, nil
}

func (r *alertRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE member_id = $1 ORDER BY alert_date DESC`

	alerts := []*domain.Alert{}
	if err := conn(ctx, r.db).SelectContext(ctx, &alerts, query, memberID); err != nil {
		return nil, err
	}

	return alerts, nil
}

func (r *alertRepository) MarkRead(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	query := `UPDATE alerts SET is_read = TRUE WHERE id = $1 RETURNING ` + alertColumns

	var alert domain.Alert
	if err := conn(ctx, r.db).GetContext(ctx, &alert, query, id); err != nil {
		return nil, err
	}

	return &alert, nil
}

func (r *alertRepository) MarkAllRead(ctx context.Context) (int64, error) {
	return rowsAffected(conn(ctx, r.db).ExecContext(ctx, `UPDATE alerts SET is_read = TRUE WHERE is_read = FALSE`))
}

func (r *alertRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	return rowsAffected(conn(ctx, r.db).ExecContext(ctx, `DELETE FROM alerts WHERE id = $1`, id))
}

func (r *alertRepository) DeleteRead(ctx context.Context) (int64, error) {
	return rowsAffected(conn(ctx, r.db).ExecContext(ctx, `DELETE FROM alerts WHERE is_read = TRUE`))
}

func (r *alertRepository) Summary(ctx context.Context) (*domain.AlertSummary, error) {
	q := conn(ctx, r.db)

	summary := &domain.AlertSummary{ByType: map[domain.AlertType]int{}}
	countQuery := `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE is_read = FALSE) AS unread FROM alerts`
	var counts struct {
		Total  int `db:"total"`
		Unread int `db:"unread"`
	}
	if err := q.GetContext(ctx, &counts, countQuery); err != nil {
		return nil, err
	}
	summary.Total = counts.Total
	summary.Unread = counts.Unread

	var byType []struct {
		AlertType domain.AlertType `db:"alert_type"`
		Count     int              `db:"count"`
	}
	typeQuery := `SELECT alert_type, COUNT(*) AS count FROM alerts WHERE is_read = FALSE GROUP BY alert_type`
	if err := q.SelectContext(ctx, &byType, typeQuery); err != nil {
		return nil, err
	}
	for _, t := range byType {
		summary.ByType[t.AlertType] = t.Count
	}

	return summary, nil
}
