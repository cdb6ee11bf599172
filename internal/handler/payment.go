package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/pkg/response"
	"github.com/segyhp/gym-membership/pkg/utils"
)

type PaymentService interface {
	List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, domain.Pagination, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	Post(ctx context.Context, req *domain.CreatePaymentRequest) (*domain.Payment, error)
	Update(ctx context.Context, id uuid.UUID, req *domain.UpdatePaymentRequest) (*domain.Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MonthlyReport(ctx context.Context, year, month int) (*domain.MonthlyReport, error)
}

type PaymentHandler struct {
	service   PaymentService
	validator *validator.Validate
}

func NewPaymentHandler(service PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service:   service,
		validator: newValidator(),
	}
}

// List handles GET /payments?page=&limit=&memberId=&startDate=&endDate=
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.PaymentFilter{
		Page:  utils.AtoiDefault(query.Get("page"), utils.DefaultPage),
		Limit: utils.AtoiDefault(query.Get("limit"), utils.DefaultLimit),
	}

	if raw := query.Get("memberId"); raw != "" {
		memberID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid memberId", err)
			return
		}
		filter.MemberID = &memberID
	}

	var err error
	if filter.StartDate, err = queryDate(r, "startDate"); err != nil {
		response.BadRequest(w, "Invalid startDate", err)
		return
	}
	if filter.EndDate, err = queryDate(r, "endDate"); err != nil {
		response.BadRequest(w, "Invalid endDate", err)
		return
	}

	payments, page, err := h.service.List(r.Context(), filter)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Paginated(w, payments, page)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	payment, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payment)
}

// Post records a payment and returns it with the member's new due date
func (h *PaymentHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePaymentRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	payment, err := h.service.Post(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, payment)
}

func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdatePaymentRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	payment, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payment)
}

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}

	response.Message(w, "Payment deleted", nil)
}

// MonthlyReport handles GET /payments/reports/monthly?year=&month=
func (h *PaymentHandler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	year := utils.AtoiDefault(query.Get("year"), 0)
	month := utils.AtoiDefault(query.Get("month"), 0)
	if month < 0 || month > 12 {
		response.BadRequest(w, "month must be between 1 and 12", nil)
		return
	}

	report, err := h.service.MonthlyReport(r.Context(), year, month)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, report)
}
