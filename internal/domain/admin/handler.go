package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/echo-era/echo-era-api/internal/domain/chat"
	"github.com/echo-era/echo-era-api/internal/domain/moderation"
	"github.com/echo-era/echo-era-api/internal/domain/user"
	"github.com/echo-era/echo-era-api/internal/middleware"
	"github.com/echo-era/echo-era-api/internal/pkg/response"
	"github.com/echo-era/echo-era-api/internal/pkg/validator"
)

// Handler handles admin HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates admin handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeAdminError(w http.ResponseWriter, err error) {
	switch err {
	case ErrUserNotFound:
		response.NotFound(w, "User not found")
	case ErrAlreadyModerator:
		response.Conflict(w, "User is already a moderator")
	case ErrNotModerator:
		response.Conflict(w, "User is not a moderator")
	case ErrTargetIsAdmin:
		response.Forbidden(w, "Admin accounts cannot be managed here")
	case moderation.ErrReasonNotFound:
		response.NotFound(w, "Report reason not found")
	case chat.ErrChatNotFound:
		response.NotFound(w, "Chat not found")
	case chat.ErrNotParticipant, chat.ErrForbidden:
		response.Forbidden(w, "Not allowed to manage this chat")
	case chat.ErrPrivateChatImmutable:
		response.Forbidden(w, "Private chats cannot be modified")
	default:
		response.InternalError(w)
	}
}

// AddModerator handles POST /admin/moderators/{id}
func (h *Handler) AddModerator(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	adminID := middleware.GetUserID(r.Context())
	if err := h.service.AddModerator(r.Context(), adminID, targetID); err != nil {
		h.writeAdminError(w, err)
		return
	}
	response.NoContent(w)
}

// RemoveModerator handles DELETE /admin/moderators/{id}
func (h *Handler) RemoveModerator(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	adminID := middleware.GetUserID(r.Context())
	if err := h.service.RemoveModerator(r.Context(), adminID, targetID); err != nil {
		h.writeAdminError(w, err)
		return
	}
	response.NoContent(w)
}

// CreateChat handles POST /admin/chats
func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req chat.CreatePublicChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	adminID := middleware.GetUserID(r.Context())
	role := user.Role(middleware.GetRole(r.Context()))
	c, err := h.service.CreateGlobalChat(r.Context(), adminID, role, req.Name, req.Description)
	if err != nil {
		h.writeAdminError(w, err)
		return
	}
	response.Created(w, chat.ChatResponseFromEntity(c))
}

// UpdateChat handles PUT /admin/chats/{id}
func (h *Handler) UpdateChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	var req chat.UpdateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	adminID := middleware.GetUserID(r.Context())
	c, err := h.service.UpdateGlobalChat(r.Context(), adminID, chatID, req.Name, req.Description, req.AvatarURL)
	if err != nil {
		h.writeAdminError(w, err)
		return
	}
	response.OK(w, chat.ChatResponseFromEntity(c))
}

// DeleteChat handles DELETE /admin/chats/{id}
func (h *Handler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	adminID := middleware.GetUserID(r.Context())
	if err := h.service.DeleteGlobalChat(r.Context(), adminID, chatID); err != nil {
		h.writeAdminError(w, err)
		return
	}
	response.NoContent(w)
}

// ListLogs handles GET /admin/logs
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	logs, total, err := h.service.ListLogs(r.Context(), page, limit)
	if err != nil {
		h.writeAdminError(w, err)
		return
	}

	items := make([]*moderation.LogResponse, len(logs))
	for i, l := range logs {
		items[i] = moderation.LogResponseFromEntity(l)
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

// CreateReportReason handles POST /admin/report-reasons
func (h *Handler) CreateReportReason(w http.ResponseWriter, r *http.Request) {
	var req moderation.CreateReasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	reason, err := h.service.CreateReportReason(r.Context(), req)
	if err != nil {
		h.writeAdminError(w, err)
		return
	}
	response.Created(w, moderation.ReasonResponseFromEntity(reason))
}

// DeleteReportReason handles DELETE /admin/report-reasons/{id}
func (h *Handler) DeleteReportReason(w http.ResponseWriter, r *http.Request) {
	reasonID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid reason ID")
		return
	}

	if err := h.service.DeleteReportReason(r.Context(), reasonID); err != nil {
		h.writeAdminError(w, err)
		return
	}
	response.NoContent(w)
}

func pagination(r *http.Request) (page, limit int) {
	page, limit = 1, 50
	if p := r.URL.Query().Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	return page, limit
}
