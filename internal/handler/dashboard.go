package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/segyhp/gym-membership/internal/domain"
	"github.com/segyhp/gym-membership/pkg/response"
)

type DashboardService interface {
	Get(ctx context.Context) (*domain.Dashboard, error)
	MonthlyStats(ctx context.Context, year int) (*domain.YearStats, error)
}

type DashboardHandler struct {
	service DashboardService
}

func NewDashboardHandler(service DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Get(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, dashboard)
}

// MonthlyStats handles GET /dashboard/monthly-stats/{year}
func (h *DashboardHandler) MonthlyStats(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil || year < 1900 || year > 9999 {
		response.BadRequest(w, "Invalid year", err)
		return
	}

	stats, err := h.service.MonthlyStats(r.Context(), year)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, stats)
}
