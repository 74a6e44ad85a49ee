package user

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/echo-era/echo-era-api/internal/middleware"
	"github.com/echo-era/echo-era-api/internal/pkg/response"
	"github.com/echo-era/echo-era-api/internal/pkg/validator"
)

// Handler handles user HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates user handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetMe handles GET /users/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	u, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		switch err {
		case ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, UserResponseFromEntity(u))
}

// UpdateMe handles PUT /users/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	userID := middleware.GetUserID(r.Context())
	u, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		switch err {
		case ErrUserNotFound:
			response.NotFound(w, "User not found")
		case ErrUsernameTaken:
			response.Conflict(w, "Username already taken")
		case ErrEmailAlreadyExists:
			response.Conflict(w, "Email already in use")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, UserResponseFromEntity(u))
}

// ChangePassword handles PUT /users/me/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.ChangePassword(r.Context(), userID, &req); err != nil {
		switch err {
		case ErrUserNotFound:
			response.NotFound(w, "User not found")
		case ErrInvalidCredentials:
			response.BadRequest(w, "Current password is incorrect")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]string{"message": "Password changed"})
}

// DeleteMe handles DELETE /users/me
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	var req DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.DeleteAccount(r.Context(), userID, &req); err != nil {
		switch err {
		case ErrUserNotFound:
			response.NotFound(w, "User not found")
		case ErrInvalidCredentials:
			response.BadRequest(w, "Password is incorrect")
		default:
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}

// GetWarnings handles GET /users/me/warnings
func (h *Handler) GetWarnings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	warnings, err := h.service.GetWarnings(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, warnings)
}

// Search handles GET /users/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		response.BadRequest(w, "Query parameter q is required")
		return
	}

	page, limit := pagination(r)
	users, total, err := h.service.Search(r.Context(), query, page, limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*PublicUserResponse, len(users))
	for i, u := range users {
		items[i] = PublicUserResponseFromEntity(u)
	}

	response.WithMeta(w, items, response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   (total + limit - 1) / limit,
		HasNext: page*limit < total,
		HasPrev: page > 1,
	})
}

// GetByID handles GET /users/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	u, err := h.service.GetPublicProfile(r.Context(), id)
	if err != nil {
		switch err {
		case ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, PublicUserResponseFromEntity(u))
}

func pagination(r *http.Request) (page, limit int) {
	page, limit = 1, 20
	if p := r.URL.Query().Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	return page, limit
}
