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

type MemberService interface {
	List(ctx context.Context, filter domain.MemberFilter) ([]*domain.MemberListItem, domain.Pagination, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.MemberDetailResponse, error)
	Create(ctx context.Context, req *domain.CreateMemberRequest) (*domain.Member, error)
	Update(ctx context.Context, id uuid.UUID, req *domain.UpdateMemberRequest) (*domain.Member, error)
	ToggleStatus(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MemberHandler struct {
	service   MemberService
	validator *validator.Validate
}

func NewMemberHandler(service MemberService) *MemberHandler {
	return &MemberHandler{
		service:   service,
		validator: newValidator(),
	}
}

// List handles GET /members?page=&limit=&search=&isActive=
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.MemberFilter{
		Search:   query.Get("search"),
		IsActive: queryBool(r, "isActive"),
		Page:     utils.AtoiDefault(query.Get("page"), utils.DefaultPage),
		Limit:    utils.AtoiDefault(query.Get("limit"), utils.DefaultLimit),
	}

	members, page, err := h.service.List(r.Context(), filter)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Paginated(w, members, page)
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	member, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, member)
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMemberRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	member, err := h.service.Create(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, member)
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateMemberRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	member, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, member)
}

func (h *MemberHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	member, err := h.service.ToggleStatus(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, member)
}

func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}

	response.Message(w, "Member deleted", nil)
}
