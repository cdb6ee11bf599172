package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/internal/mocks"
	customError "github.com/segyhp/gym-membership/pkg/errors"
)

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*mocks.MockAuthService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "valid credentials",
			requestBody: map[string]string{"email": "admin@gym.test", "password": "s3cret"},
			setupMock: func(s *mocks.MockAuthService) {
				s.On("Login", mock.Anything, &domain.LoginRequest{Email: "admin@gym.test", Password: "s3cret"}).
					Return(&domain.LoginResponse{Token: "jwt", Admin: &domain.Admin{Email: "admin@gym.test"}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":"jwt"`,
		},
		{
			name:        "wrong password",
			requestBody: map[string]string{"email": "admin@gym.test", "password": "nope"},
			setupMock: func(s *mocks.MockAuthService) {
				s.On("Login", mock.Anything, mock.Anything).Return(nil, customError.WrapInvalidCredentials())
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed email",
			requestBody:    map[string]string{"email": "admin", "password": "x"},
			setupMock:      func(s *mocks.MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mocks.MockAuthService{}
			tt.setupMock(service)
			w := httptest.NewRecorder()

			NewAuthHandler(service).Login(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", jsonBody(t, tt.requestBody)))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			service.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	adminID := uuid.New()
	service := &mocks.MockAuthService{}
	service.On("ChangePassword", mock.Anything, adminID, &domain.ChangePasswordRequest{CurrentPassword: "old", NewPassword: "new-pass"}).Return(nil)
	h := NewAuthHandler(service)

	authed := func(body interface{}) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/change-password", jsonBody(t, body))
		return req.WithContext(context.WithValue(req.Context(), adminKey{}, adminID))
	}

	w := httptest.NewRecorder()
	h.ChangePassword(w, authed(map[string]string{"currentPassword": "old", "newPassword": "new-pass"}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ChangePassword(w, authed(map[string]string{"currentPassword": "old", "newPassword": "short"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.ChangePassword(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/change-password", jsonBody(t, map[string]string{})))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	service.AssertNumberOfCalls(t, "ChangePassword", 1)
}
