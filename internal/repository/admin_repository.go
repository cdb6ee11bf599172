package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/gym-membership/internal/domain"
)

type adminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	query := `
		INSERT INTO admins (id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		admin.ID,
		admin.Email,
		admin.Name,
		admin.PasswordHash,
		admin.CreatedAt,
		admin.UpdatedAt,
	)

	return err
}

func (r *adminRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	query := `SELECT id, email, name, password_hash, created_at, updated_at FROM admins WHERE id = $1`

	var admin domain.Admin
	if err := conn(ctx, r.db).GetContext(ctx, &admin, query, id); err != nil {
		return nil, err
	}

	return &admin, nil
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	query := `SELECT id, email, name, password_hash, created_at, updated_at FROM admins WHERE email = $1`

	var admin domain.Admin
	if err := conn(ctx, r.db).GetContext(ctx, &admin, query, email); err != nil {
		return nil, err
	}

	return &admin, nil
}

func (r *adminRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE admins SET password_hash = $2, updated_at = NOW() WHERE id = $1`

	n, err := rowsAffected(conn(ctx, r.db).ExecContext(ctx, query, id, passwordHash))
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}
