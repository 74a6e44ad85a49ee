package message

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

// Handler handles message HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates message handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeMessageError(w http.ResponseWriter, err error) {
	switch err {
	case ErrMessageNotFound:
		response.NotFound(w, "Message not found")
	case ErrNotParticipant:
		response.Forbidden(w, "Not a participant of this chat")
	case ErrNotSender:
		response.Forbidden(w, "Only the sender can modify this message")
	case ErrSenderMuted:
		response.Forbidden(w, "You are muted")
	case ErrAlreadyDeleted, ErrMessageDeleted:
		response.Conflict(w, "Message already deleted")
	case ErrAlreadyFlagged:
		response.Conflict(w, "You already reported this message")
	case ErrNotFlagged:
		response.Conflict(w, "Message is not flagged")
	default:
		response.InternalError(w)
	}
}

// Send handles POST /messages/chat/{chatId}
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "chatId"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	userID := middleware.GetUserID(r.Context())
	m, err := h.service.Send(r.Context(), userID, chatID, req.Content)
	if err != nil {
		h.writeMessageError(w, err)
		return
	}
	response.Created(w, MessageResponseFromEntity(m))
}

// List handles GET /messages/chat/{chatId}
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "chatId"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	page, limit := pagination(r)
	messages, total, err := h.service.ListChatMessages(r.Context(), userID, chatID, page, limit)
	if err != nil {
		h.writeMessageError(w, err)
		return
	}
	response.WithMeta(w, MessageListFromEntities(messages), response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   (total + limit - 1) / limit,
		HasNext: page*limit < total,
		HasPrev: page > 1,
	})
}

// Search handles GET /messages/chat/{chatId}/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "chatId"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		response.BadRequest(w, "Query parameter q is required")
		return
	}

	userID := middleware.GetUserID(r.Context())
	page, limit := pagination(r)
	messages, total, err := h.service.SearchChatMessages(r.Context(), userID, chatID, query, page, limit)
	if err != nil {
		h.writeMessageError(w, err)
		return
	}
	response.WithMeta(w, MessageListFromEntities(messages), response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   (total + limit - 1) / limit,
		HasNext: page*limit < total,
		HasPrev: page > 1,
	})
}

// MarkRead handles POST /messages/chat/{chatId}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "chatId"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.MarkChatRead(r.Context(), userID, chatID); err != nil {
		h.writeMessageError(w, err)
		return
	}
	response.NoContent(w)
}

// Edit handles PUT /messages/{id}
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	messageID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid message ID")
		return
	}

	var req EditMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	userID := middleware.GetUserID(r.Context())
	m, err := h.service.Edit(r.Context(), userID, messageID, req.Content)
	if err != nil {
		h.writeMessageError(w, err)
		return
	}
	response.OK(w, MessageResponseFromEntity(m))
}

// Delete handles DELETE /messages/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	messageID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid message ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.Delete(r.Context(), userID, messageID); err != nil {
		h.writeMessageError(w, err)
		return
	}
	response.NoContent(w)
}

// EditHistory handles GET /messages/{id}/history
func (h *Handler) EditHistory(w http.ResponseWriter, r *http.Request) {
	messageID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid message ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	edits, err := h.service.EditHistory(r.Context(), userID, messageID)
	if err != nil {
		h.writeMessageError(w, err)
		return
	}

	items := make([]*EditResponse, len(edits))
	for i, e := range edits {
		items[i] = EditResponseFromEntity(e)
	}
	response.OK(w, items)
}

// Report handles POST /messages/{id}/report
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	messageID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid message ID")
		return
	}

	var req ReportMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.Report(r.Context(), userID, messageID, req.Reason); err != nil {
		h.writeMessageError(w, err)
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
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	return page, limit
}
