package chat

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/echo-era/echo-era-api/internal/domain/user"
	"github.com/echo-era/echo-era-api/internal/middleware"
	"github.com/echo-era/echo-era-api/internal/pkg/response"
	"github.com/echo-era/echo-era-api/internal/pkg/validator"
)

// Handler handles chat HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates chat handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeChatError(w http.ResponseWriter, err error) {
	switch err {
	case ErrChatNotFound:
		response.NotFound(w, "Chat not found")
	case ErrUserNotFound:
		response.NotFound(w, "User not found")
	case ErrRequestNotFound:
		response.NotFound(w, "Join request not found")
	case ErrNotParticipant:
		response.Forbidden(w, "Not a participant of this chat")
	case ErrAlreadyParticipant:
		response.Conflict(w, "Already a participant")
	case ErrRequestPending:
		response.Conflict(w, "Join request already pending")
	case ErrNotInvited, ErrNotInviter:
		response.Forbidden(w, "Not allowed to act on this request")
	case ErrChatBlocked:
		response.Forbidden(w, "User has blocked this chat")
	case ErrForbidden:
		response.Forbidden(w, "Insufficient chat role")
	case ErrAdminUnremovable:
		response.Forbidden(w, "Admins cannot be removed")
	case ErrModeratorProtected:
		response.Forbidden(w, "Moderators can only be removed by admins")
	case ErrLastAdmin:
		response.Conflict(w, "Chat must keep at least one admin")
	case ErrPrivateChatImmutable:
		response.Forbidden(w, "Private chats cannot be modified")
	case ErrPublicRequiresAdmin:
		response.Forbidden(w, "Only platform admins can create public chats")
	case ErrTooFewInvitees:
		response.BadRequest(w, "Group chats require at least two invited users")
	case ErrSelfInvite:
		response.BadRequest(w, "Creator cannot invite themselves")
	case ErrInvalidChatType:
		response.BadRequest(w, "Invalid chat type for this operation")
	default:
		response.InternalError(w)
	}
}

// CreateGroup handles POST /chats/group
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	invitees := make([]uuid.UUID, len(req.InviteeIDs))
	for i, raw := range req.InviteeIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid invitee ID")
			return
		}
		invitees[i] = id
	}

	userID := middleware.GetUserID(r.Context())
	chat, err := h.service.CreateGroupChat(r.Context(), userID, req.Name, req.Description, invitees)
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	response.Created(w, ChatResponseFromEntity(chat))
}

// CreatePublic handles POST /chats/public
func (h *Handler) CreatePublic(w http.ResponseWriter, r *http.Request) {
	var req CreatePublicChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	userID := middleware.GetUserID(r.Context())
	role := user.Role(middleware.GetRole(r.Context()))
	chat, err := h.service.CreatePublicChat(r.Context(), userID, role, req.Name, req.Description)
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	response.Created(w, ChatResponseFromEntity(chat))
}

// Update handles PUT /chats/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	var req UpdateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	userID := middleware.GetUserID(r.Context())
	chat, err := h.service.UpdateChat(r.Context(), userID, chatID, req.Name, req.Description, req.AvatarURL)
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	response.OK(w, ChatResponseFromEntity(chat))
}

// List handles GET /chats
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	summaries, err := h.service.ListMyChats(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*ChatSummaryResponse, len(summaries))
	for i, s := range summaries {
		items[i] = ChatSummaryResponseFromEntity(s)
	}
	response.OK(w, items)
}

// Info handles GET /chats/{id}
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	chat, participants, err := h.service.GetChatInfo(r.Context(), userID, chatID)
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	response.OK(w, &ChatInfoResponse{
		ChatResponse: ChatResponseFromEntity(chat),
		Participants: participants,
	})
}

// Search handles GET /chats/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		response.BadRequest(w, "Query parameter q is required")
		return
	}

	page, limit := pagination(r)
	chats, total, err := h.service.SearchPublicChats(r.Context(), query, page, limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]ChatResponse, len(chats))
	for i, c := range chats {
		items[i] = ChatResponseFromEntity(c)
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

// RequestJoin handles POST /chats/{id}/requests
func (h *Handler) RequestJoin(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	var req JoinRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	targetID, _ := uuid.Parse(req.UserID)
	userID := middleware.GetUserID(r.Context())

	created, err := h.service.RequestJoin(r.Context(), userID, chatID, targetID)
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	response.Created(w, created)
}

// ListChatRequests handles GET /chats/{id}/requests
func (h *Handler) ListChatRequests(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	reqs, err := h.service.ListChatInvitations(r.Context(), userID, chatID)
	if err != nil {
		h.writeChatError(w, err)
		return
	}
	response.OK(w, reqs)
}

// ListMyInvitations handles GET /chats/invitations
func (h *Handler) ListMyInvitations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reqs, err := h.service.ListMyInvitations(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, reqs)
}

// AcceptJoin handles POST /chats/requests/{requestId}/accept
func (h *Handler) AcceptJoin(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "requestId"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.AcceptJoin(r.Context(), userID, requestID); err != nil {
		h.writeChatError(w, err)
		return
	}
	response.OK(w, map[string]string{"message": "Joined chat"})
}

// DeclineJoin handles POST /chats/requests/{requestId}/decline
func (h *Handler) DeclineJoin(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "requestId"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.DeclineJoin(r.Context(), userID, requestID); err != nil {
		h.writeChatError(w, err)
		return
	}
	response.OK(w, map[string]string{"message": "Invitation declined"})
}

// CancelJoin handles DELETE /chats/requests/{requestId}
func (h *Handler) CancelJoin(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "requestId"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.CancelJoin(r.Context(), userID, requestID); err != nil {
		h.writeChatError(w, err)
		return
	}
	response.NoContent(w)
}

// ChangeRole handles PUT /chats/{id}/participants/{userId}/role
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}
	targetID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.ChangeParticipantRole(r.Context(), userID, chatID, targetID, req.Role); err != nil {
		h.writeChatError(w, err)
		return
	}
	response.OK(w, map[string]string{"message": "Role updated"})
}

// RemoveParticipant handles DELETE /chats/{id}/participants/{userId}
func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}
	targetID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.RemoveParticipant(r.Context(), userID, chatID, targetID); err != nil {
		h.writeChatError(w, err)
		return
	}
	response.NoContent(w)
}

// Leave handles POST /chats/{id}/leave
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.Leave(r.Context(), userID, chatID); err != nil {
		h.writeChatError(w, err)
		return
	}
	response.OK(w, map[string]string{"message": "Left chat"})
}

// Delete handles DELETE /chats/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.DeleteChat(r.Context(), userID, chatID); err != nil {
		h.writeChatError(w, err)
		return
	}
	response.NoContent(w)
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
