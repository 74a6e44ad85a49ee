package auth

import (
	"encoding/json"
	"net/http"

	"github.com/echo-era/echo-era-api/internal/middleware"
	"github.com/echo-era/echo-era-api/internal/pkg/response"
	"github.com/echo-era/echo-era-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		switch err {
		case ErrUsernameTaken:
			response.Conflict(w, "Username already taken")
		case ErrEmailAlreadyExists:
			response.Conflict(w, "Email already registered")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, resp)
}

// VerifyEmail handles POST /auth/verify
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	if err := h.service.VerifyEmail(r.Context(), req.Code); err != nil {
		switch err {
		case ErrInvalidCode:
			response.BadRequest(w, "Invalid or expired verification code")
		case ErrAlreadyVerified:
			response.Conflict(w, "Email already verified")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]string{"message": "Email verified"})
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			response.Unauthorized(w, "Invalid login or password")
		case ErrUserBanned:
			response.Forbidden(w, "Account is banned")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, resp)
}

// Refresh handles POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch err {
		case ErrRefreshTokenRequired, ErrInvalidRefreshToken:
			response.Unauthorized(w, "Invalid refresh token")
		case ErrUserNotFound:
			response.Unauthorized(w, "User not found")
		case ErrUserBanned:
			response.Forbidden(w, "Account is banned")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, resp)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	userID := middleware.GetUserID(r.Context())
	if err := h.service.Logout(r.Context(), userID, req.RefreshToken); err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"message": "Logged out"})
}

// ForgotPassword handles POST /auth/password/forgot
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		response.InternalError(w)
		return
	}

	// Same answer whether or not the account exists
	response.OK(w, map[string]string{"message": "If the account exists, a reset code was sent"})
}

// ResetPassword handles POST /auth/password/reset
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		switch err {
		case ErrInvalidCode:
			response.BadRequest(w, "Invalid or expired reset code")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]string{"message": "Password reset"})
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	resp, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		switch err {
		case ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, resp)
}
