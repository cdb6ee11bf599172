package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/pkg/response"
)

type AuthService interface {
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	Verify(ctx context.Context, adminID uuid.UUID) (*domain.Admin, error)
	ChangePassword(ctx context.Context, adminID uuid.UUID, req *domain.ChangePasswordRequest) error
}

type AuthHandler struct {
	service   AuthService
	validator *validator.Validate
}

func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: newValidator(),
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, resp)
}

// Verify returns the admin behind the current token
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	adminID, ok := AdminIDFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Access token required")
		return
	}

	admin, err := h.service.Verify(r.Context(), adminID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, admin)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	adminID, ok := AdminIDFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Access token required")
		return
	}

	var req domain.ChangePasswordRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), adminID, &req); err != nil {
		response.FromError(w, err)
		return
	}

	response.Message(w, "Password updated", nil)
}
