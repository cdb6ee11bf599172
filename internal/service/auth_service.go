package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/segyhp/gym-membership/internal/auth"
	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/internal/repository"
	customError "github.com/segyhp/gym-membership/pkg/errors"
)

type AuthService struct {
	adminRepo repository.AdminRepository
	tokens    *auth.TokenManager
	now       Clock
	logger    *zap.Logger
}

func NewAuthService(adminRepo repository.AdminRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		adminRepo: adminRepo,
		tokens:    tokens,
		now:       time.Now,
		logger:    logger.Named("auth"),
	}
}

// Login checks the admin's password and issues a token
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapInvalidCredentials()
	}
	if err != nil {
		return nil, storeError(err, "admin", "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", zap.String("email", req.Email))
		return nil, customError.WrapInvalidCredentials()
	}

	token, err := s.tokens.Issue(admin.ID)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResponse{Token: token, Admin: admin}, nil
}

// Authenticate resolves a bearer token to an existing admin id
func (s *AuthService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	adminID, err := s.tokens.Parse(token)
	if err != nil {
		return uuid.Nil, err
	}

	if _, err := s.adminRepo.GetByID(ctx, adminID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, customError.WrapInvalidCredentials()
		}
		return uuid.Nil, storeError(err, "admin", adminID.String())
	}

	return adminID, nil
}

func (s *AuthService) Verify(ctx context.Context, adminID uuid.UUID) (*domain.Admin, error) {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, storeError(notFound(err, customError.WrapAdminNotFound, adminID.String()), "admin", adminID.String())
	}
	return admin, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, adminID uuid.UUID, req *domain.ChangePasswordRequest) error {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return storeError(notFound(err, customError.WrapAdminNotFound, adminID.String()), "admin", adminID.String())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return customError.WrapInvalidCredentials()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.adminRepo.UpdatePassword(ctx, adminID, string(hash)); err != nil {
		return storeError(notFound(err, customError.WrapAdminNotFound, adminID.String()), "admin", adminID.String())
	}

	s.logger.Info("admin password changed", zap.String("admin_id", adminID.String()))
	return nil
}

// SeedAdmin creates the admin account, or resets its password when the email already exists
func (s *AuthService) SeedAdmin(ctx context.Context, email, name, password string) (*domain.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	existing, err := s.adminRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.adminRepo.UpdatePassword(ctx, existing.ID, string(hash)); err != nil {
			return nil, storeError(err, "admin", existing.ID.String())
		}
		existing.PasswordHash = string(hash)
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, storeError(err, "admin", "")
	}

	now := s.now()
	admin := &domain.Admin{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, storeError(err, "admin", admin.ID.String())
	}

	s.logger.Info("admin seeded", zap.String("email", email))
	return admin, nil
}
