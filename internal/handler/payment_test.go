package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/internal/mocks"
	customError "github.com/segyhp/gym-membership/pkg/errors"
)

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	var body bytes.Buffer
	if s, ok := v.(string); ok {
		body.WriteString(s)
		return &body
	}
	require.NoError(t, json.NewEncoder(&body).Encode(v))
	return &body
}

func TestPaymentHandler_Post(t *testing.T) {
	memberID := uuid.New()
	next := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*mocks.MockPaymentService)
		expectedStatus int
		expectedBody   string
		checkResponse  func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "monthly payment posted",
			requestBody: map[string]interface{}{
				"memberId":    memberID,
				"amount":      "80000",
				"paymentType": "MONTHLY",
				"paymentDate": "2024-02-05",
			},
			setupMock: func(s *mocks.MockPaymentService) {
				s.On("Post", mock.Anything, mock.MatchedBy(func(req *domain.CreatePaymentRequest) bool {
					return req.MemberID == memberID &&
						req.Amount.Equal(decimal.NewFromInt(80000)) &&
						req.PaymentType == domain.PaymentMonthly &&
						req.PaymentDate == "2024-02-05"
				})).Return(&domain.Payment{
					ID:          uuid.New(),
					MemberID:    memberID,
					Amount:      decimal.NewFromInt(80000),
					PaymentType: domain.PaymentMonthly,
					Member:      &domain.MemberSummary{ID: memberID, NextPaymentDate: &next},
				}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var wrapper struct {
					Success bool           `json:"success"`
					Data    domain.Payment `json:"data"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wrapper))
				assert.True(t, wrapper.Success)
				require.NotNil(t, wrapper.Data.Member)
				assert.True(t, wrapper.Data.Member.NextPaymentDate.Equal(next))
			},
		},
		{
			name:           "invalid JSON payload",
			requestBody:    "invalid json",
			setupMock:      func(s *mocks.MockPaymentService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid JSON payload",
		},
		{
			name:           "validation error - zero amount",
			requestBody:    map[string]interface{}{"memberId": memberID, "amount": "0"},
			setupMock:      func(s *mocks.MockPaymentService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Validation failed",
		},
		{
			name:           "validation error - missing member",
			requestBody:    map[string]interface{}{"amount": "1000"},
			setupMock:      func(s *mocks.MockPaymentService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Validation failed",
		},
		{
			name:           "validation error - unknown payment type",
			requestBody:    map[string]interface{}{"memberId": memberID, "amount": "1000", "paymentType": "WEEKLY"},
			setupMock:      func(s *mocks.MockPaymentService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Validation failed",
		},
		{
			name:        "member not found",
			requestBody: map[string]interface{}{"memberId": memberID, "amount": "1000"},
			setupMock: func(s *mocks.MockPaymentService) {
				s.On("Post", mock.Anything, mock.Anything).Return(nil, customError.WrapMemberNotFound(memberID.String())).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "not found",
		},
		{
			name:        "concurrent modification",
			requestBody: map[string]interface{}{"memberId": memberID, "amount": "1000"},
			setupMock: func(s *mocks.MockPaymentService) {
				s.On("Post", mock.Anything, mock.Anything).Return(nil, customError.WrapConcurrentModification("member", memberID.String())).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   customError.ErrCodeConcurrentModification,
		},
		{
			name:        "store unavailable",
			requestBody: map[string]interface{}{"memberId": memberID, "amount": "1000"},
			setupMock: func(s *mocks.MockPaymentService) {
				s.On("Post", mock.Anything, mock.Anything).Return(nil, customError.WrapStoreUnavailable(assert.AnError)).Once()
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mocks.MockPaymentService{}
			tt.setupMock(service)
			h := NewPaymentHandler(service)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", jsonBody(t, tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			h.Post(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
			service.AssertExpectations(t)
		})
	}
}

func TestPaymentHandler_List_ParsesFilters(t *testing.T) {
	memberID := uuid.New()
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	service := &mocks.MockPaymentService{}
	service.On("List", mock.Anything, mock.MatchedBy(func(f domain.PaymentFilter) bool {
		return f.Page == 2 && f.Limit == 20 &&
			f.MemberID != nil && *f.MemberID == memberID &&
			f.StartDate != nil && f.StartDate.Equal(start) &&
			f.EndDate == nil
	})).Return([]*domain.Payment{}, domain.NewPagination(25, 2, 20), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments?page=2&limit=20&memberId="+memberID.String()+"&startDate=2024-01-01", nil)
	w := httptest.NewRecorder()

	NewPaymentHandler(service).List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalPages":2`)
	service.AssertExpectations(t)
}

func TestPaymentHandler_List_RejectsBadQuery(t *testing.T) {
	for _, query := range []string{"memberId=nope", "startDate=yesterday", "endDate=2024-13-01"} {
		t.Run(query, func(t *testing.T) {
			service := &mocks.MockPaymentService{}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/payments?"+query, nil)
			w := httptest.NewRecorder()

			NewPaymentHandler(service).List(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			service.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
		})
	}
}

func TestPaymentHandler_Delete(t *testing.T) {
	id := uuid.New()
	service := &mocks.MockPaymentService{}
	service.On("Delete", mock.Anything, id).Return(nil).Once()

	router := mux.NewRouter()
	router.HandleFunc("/payments/{id}", NewPaymentHandler(service).Delete).Methods(http.MethodDelete)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/payments/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/payments/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	service.AssertExpectations(t)
}

func TestPaymentHandler_MonthlyReport(t *testing.T) {
	service := &mocks.MockPaymentService{}
	service.On("MonthlyReport", mock.Anything, 2024, 3).Return(&domain.MonthlyReport{TotalPayments: 4, TotalAmount: decimal.NewFromInt(320000)}, nil)
	h := NewPaymentHandler(service)

	w := httptest.NewRecorder()
	h.MonthlyReport(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/reports/monthly?year=2024&month=3", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalPayments":4`)

	w = httptest.NewRecorder()
	h.MonthlyReport(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/reports/monthly?month=13", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
