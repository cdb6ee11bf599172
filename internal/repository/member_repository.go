package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/pkg/utils"
)

const memberColumns = `id, first_name, last_name, document, email, phone, address, birth_date,
	registration_date, membership_type, monthly_fee, last_payment_date, next_payment_date,
	is_active, notes, version, created_at, updated_at`

type memberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (id, first_name, last_name, document, email, phone, address, birth_date,
			registration_date, membership_type, monthly_fee, last_payment_date, next_payment_date,
			is_active, notes, version, created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :document, :email, :phone, :address, :birth_date,
			:registration_date, :membership_type, :monthly_fee, :last_payment_date, :next_payment_date,
			:is_active, :notes, :version, :created_at, :updated_at)
	`

	_, err := conn(ctx, r.db).NamedExecContext(ctx, query, member)
	return err
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	var member domain.Member
	if err := conn(ctx, r.db).GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 FOR UPDATE`

	var member domain.Member
	if err := conn(ctx, r.db).GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	query := `
		UPDATE members
		SET first_name = :first_name, last_name = :last_name, document = :document, email = :email,
			phone = :phone, address = :address, birth_date = :birth_date,
			registration_date = :registration_date, membership_type = :membership_type,
			monthly_fee = :monthly_fee, last_payment_date = :last_payment_date,
			next_payment_date = :next_payment_date, is_active = :is_active, notes = :notes,
			version = version + 1, updated_at = NOW()
		WHERE id = :id AND version = :version
	`

	n, err := rowsAffected(conn(ctx, r.db).NamedExecContext(ctx, query, member))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}

	member.Version++
	return nil
}

func (r *memberRepository) UpdatePaymentDates(ctx context.Context, id uuid.UUID, version int, last, next *time.Time) error {
	query := `
		UPDATE members
		SET last_payment_date = $3, next_payment_date = $4, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`

	n, err := rowsAffected(conn(ctx, r.db).ExecContext(ctx, query, id, version, last, next))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}

	return nil
}

func (r *memberRepository) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `
		UPDATE members
		SET is_active = NOT is_active, version = version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + memberColumns

	var member domain.Member
	if err := conn(ctx, r.db).GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	return rowsAffected(conn(ctx, r.db).ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id))
}

func (r *memberRepository) List(ctx context.Context, filter domain.MemberFilter) ([]*domain.Member, int, error) {
	var (
		where []string
		args  []interface{}
	)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := fmt.Sprintf("$%d", len(args))
		where = append(where, fmt.Sprintf(
			"(first_name ILIKE %[1]s OR last_name ILIKE %[1]s OR document ILIKE %[1]s OR email ILIKE %[1]s)", p))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	q := conn(ctx, r.db)

	var total int
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM members`+clause, args...); err != nil {
		return nil, 0, err
	}

	page, limit := utils.NormalizePage(filter.Page, filter.Limit)
	args = append(args, limit, utils.Offset(page, limit))
	query := fmt.Sprintf(`SELECT %s FROM members%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		memberColumns, clause, len(args)-1, len(args))

	members := []*domain.Member{}
	if err := q.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

func (r *memberRepository) ListActiveDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE is_active = TRUE AND next_payment_date >= $1 AND next_payment_date <= $2
		ORDER BY next_payment_date
	`

	members := []*domain.Member{}
	if err := conn(ctx, r.db).SelectContext(ctx, &members, query, from, to); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *memberRepository) ListActiveOverdue(ctx context.Context, before time.Time) ([]*domain.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE is_active = TRUE AND next_payment_date < $1
		ORDER BY next_payment_date
	`

	members := []*domain.Member{}
	if err := conn(ctx, r.db).SelectContext(ctx, &members, query, before); err != nil {
		return nil, err
	}

	return members, nil
}
