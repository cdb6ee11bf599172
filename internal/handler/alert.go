package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/pkg/response"
	"github.com/segyhp/gym-membership/pkg/utils"
)

type AlertService interface {
	List(ctx context.Context, filter domain.AlertFilter) ([]*domain.Alert, domain.Pagination, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Alert, error)
	Summary(ctx context.Context) (*domain.AlertSummary, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	MarkAllRead(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteRead(ctx context.Context) (int64, error)
}

type Sweeper interface {
	Run(ctx context.Context) (*domain.SweepResult, error)
}

type AlertHandler struct {
	service AlertService
	sweeper Sweeper
}

func NewAlertHandler(service AlertService, sweeper Sweeper) *AlertHandler {
	return &AlertHandler{
		service: service,
		sweeper: sweeper,
	}
}

// List handles GET /alerts?page=&limit=&isRead=
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.AlertFilter{
		IsRead: queryBool(r, "isRead"),
		Page:   utils.AtoiDefault(query.Get("page"), utils.DefaultPage),
		Limit:  utils.AtoiDefault(query.Get("limit"), utils.DefaultLimit),
	}

	alerts, page, err := h.service.List(r.Context(), filter)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Paginated(w, alerts, page)
}

func (h *AlertHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	alerts, err := h.service.ListByMember(r.Context(), memberID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, alerts)
}

func (h *AlertHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, summary)
}

func (h *AlertHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	alert, err := h.service.MarkRead(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, alert)
}

func (h *AlertHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkAllRead(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Message(w, "Alerts marked as read", map[string]int64{"updated": n})
}

func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}

	response.Message(w, "Alert deleted", nil)
}

func (h *AlertHandler) DeleteRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.DeleteRead(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Message(w, "Read alerts deleted", map[string]int64{"deleted": n})
}

// Sweep runs the alert sweep immediately
func (h *AlertHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.sweeper.Run(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}
