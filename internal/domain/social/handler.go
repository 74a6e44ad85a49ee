package social

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/echo-era/echo-era-api/internal/domain/user"
	"github.com/echo-era/echo-era-api/internal/middleware"
	"github.com/echo-era/echo-era-api/internal/pkg/response"
	"github.com/echo-era/echo-era-api/internal/pkg/validator"
)

// Handler handles social HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates social handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeSocialError(w http.ResponseWriter, err error) {
	switch err {
	case ErrSelfAction:
		response.BadRequest(w, "Action cannot target yourself")
	case ErrUserNotFound:
		response.NotFound(w, "User not found")
	case ErrRequestNotFound:
		response.NotFound(w, "Friend request not found")
	case ErrRequestNotPending:
		response.Conflict(w, "Friend request already resolved")
	case ErrNotRecipient, ErrNotSender:
		response.Forbidden(w, "Not allowed to act on this request")
	case ErrRequestPending:
		response.Conflict(w, "Friend request already pending")
	case ErrAlreadyFriends:
		response.Conflict(w, "Already friends")
	case ErrNotFriends:
		response.Conflict(w, "Not friends")
	case ErrBlocked:
		response.Forbidden(w, "Blocked by or blocking this user")
	case ErrAlreadyBlocked:
		response.Conflict(w, "User already blocked")
	case ErrNotBlocked:
		response.Conflict(w, "User is not blocked")
	case ErrChatBlocked:
		response.Conflict(w, "Chat already blocked")
	case ErrChatNotBlocked:
		response.Conflict(w, "Chat is not blocked")
	default:
		response.InternalError(w)
	}
}

// SendRequest handles POST /social/requests
func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	var req SendRequestRequest
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

	created, err := h.service.SendFriendRequest(r.Context(), userID, targetID)
	if err != nil {
		h.writeSocialError(w, err)
		return
	}

	response.Created(w, FriendRequestResponseFromEntity(created))
}

// AcceptRequest handles POST /social/requests/{id}/accept
func (h *Handler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.AcceptFriendRequest(r.Context(), userID, requestID); err != nil {
		h.writeSocialError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "Friend request accepted"})
}

// DeclineRequest handles POST /social/requests/{id}/decline
func (h *Handler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.DeclineFriendRequest(r.Context(), userID, requestID); err != nil {
		h.writeSocialError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "Friend request declined"})
}

// CancelRequest handles DELETE /social/requests/{id}
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.CancelFriendRequest(r.Context(), userID, requestID); err != nil {
		h.writeSocialError(w, err)
		return
	}

	response.NoContent(w)
}

// ListRequests handles GET /social/requests
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var (
		reqs []*FriendRequest
		err  error
	)
	if r.URL.Query().Get("direction") == "outgoing" {
		reqs, err = h.service.ListOutgoingRequests(r.Context(), userID)
	} else {
		reqs, err = h.service.ListIncomingRequests(r.Context(), userID)
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*FriendRequestResponse, len(reqs))
	for i, req := range reqs {
		items[i] = FriendRequestResponseFromEntity(req)
	}
	response.OK(w, items)
}

// ListFriends handles GET /social/friends
func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	friends, err := h.service.ListFriends(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*user.PublicUserResponse, len(friends))
	for i, f := range friends {
		items[i] = user.PublicUserResponseFromEntity(f)
	}
	response.OK(w, &FriendListResponse{Friends: items, Total: len(items)})
}

// RemoveFriend handles DELETE /social/friends/{id}
func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	friendID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.RemoveFriend(r.Context(), userID, friendID); err != nil {
		h.writeSocialError(w, err)
		return
	}

	response.NoContent(w)
}

// BlockUser handles POST /social/blocks/{id}
func (h *Handler) BlockUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.BlockUser(r.Context(), userID, targetID); err != nil {
		h.writeSocialError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "User blocked"})
}

// UnblockUser handles DELETE /social/blocks/{id}
func (h *Handler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.UnblockUser(r.Context(), userID, targetID); err != nil {
		h.writeSocialError(w, err)
		return
	}

	response.NoContent(w)
}

// ListBlocks handles GET /social/blocks
func (h *Handler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	blocks, err := h.service.ListBlockedUsers(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, blocks)
}

// BlockChat handles POST /social/blocked-chats/{id}
func (h *Handler) BlockChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.BlockChat(r.Context(), userID, chatID); err != nil {
		h.writeSocialError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "Chat blocked"})
}

// UnblockChat handles DELETE /social/blocked-chats/{id}
func (h *Handler) UnblockChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.UnblockChat(r.Context(), userID, chatID); err != nil {
		h.writeSocialError(w, err)
		return
	}

	response.NoContent(w)
}

// ListBlockedChats handles GET /social/blocked-chats
func (h *Handler) ListBlockedChats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	blocks, err := h.service.ListBlockedChats(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, blocks)
}

// ReportUser handles POST /social/reports
func (h *Handler) ReportUser(w http.ResponseWriter, r *http.Request) {
	var req ReportUserRequest
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

	if err := h.service.ReportUser(r.Context(), userID, targetID, req.Reason); err != nil {
		h.writeSocialError(w, err)
		return
	}

	response.Created(w, map[string]string{"message": "Report submitted"})
}
