package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/echo-era/echo-era-api/internal/domain/message"
	"github.com/echo-era/echo-era-api/internal/middleware"
	"github.com/echo-era/echo-era-api/internal/pkg/response"
	"github.com/echo-era/echo-era-api/internal/pkg/validator"
)

// Handler handles moderation HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates moderation handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeModerationError(w http.ResponseWriter, err error) {
	switch err {
	case ErrUserNotFound:
		response.NotFound(w, "User not found")
	case ErrWarningNotFound:
		response.NotFound(w, "Warning not found")
	case ErrAlreadyMuted:
		response.Conflict(w, "User is already muted")
	case ErrNotMuted:
		response.Conflict(w, "User is not muted")
	case ErrAlreadyBanned:
		response.Conflict(w, "User is already banned")
	case ErrNotBanned:
		response.Conflict(w, "User is not banned")
	case ErrReportNotFound:
		response.NotFound(w, "Report not found")
	case ErrReasonNotFound:
		response.NotFound(w, "Report reason not found")
	case ErrInvalidFilter:
		response.BadRequest(w, "Invalid user filter")
	case message.ErrMessageNotFound:
		response.NotFound(w, "Message not found")
	case message.ErrAlreadyDeleted:
		response.Conflict(w, "Message already deleted")
	case message.ErrNotFlagged:
		response.Conflict(w, "Message is not flagged")
	default:
		response.InternalError(w)
	}
}

func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

// ListUsers handles GET /moderation/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter := UserFilter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = FilterAll
	}
	search := r.URL.Query().Get("q")

	page, limit := pagination(r)
	users, total, err := h.service.ListUsers(r.Context(), filter, search, page, limit)
	if err != nil {
		h.writeModerationError(w, err)
		return
	}

	items := make([]*ModeratedUserResponse, len(users))
	for i, u := range users {
		items[i] = ModeratedUserFromEntity(u)
	}
	response.WithMeta(w, items, meta(total, page, limit))
}

// UserWarnings handles GET /moderation/users/{id}/warnings
func (h *Handler) UserWarnings(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	warnings, err := h.service.GetUserWarnings(r.Context(), targetID)
	if err != nil {
		h.writeModerationError(w, err)
		return
	}
	response.OK(w, warnings)
}

// UserSanctions handles GET /moderation/users/{id}/sanctions
func (h *Handler) UserSanctions(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	reasons, err := h.service.GetUserSanctionReasons(r.Context(), targetID)
	if err != nil {
		h.writeModerationError(w, err)
		return
	}
	response.OK(w, reasons)
}

// Warn handles POST /moderation/users/{id}/warn
func (h *Handler) Warn(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req WarnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	moderatorID := middleware.GetUserID(r.Context())
	warning, err := h.service.Warn(r.Context(), moderatorID, targetID, req.Reason)
	if err != nil {
		h.writeModerationError(w, err)
		return
	}
	response.Created(w, warning)
}

// Unwarn handles DELETE /moderation/users/{id}/warnings/{warningId}
func (h *Handler) Unwarn(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid user ID")
		return
	}
	warningID, ok := pathID(r, "warningId")
	if !ok {
		response.BadRequest(w, "Invalid warning ID")
		return
	}

	// Reason body is optional on unwarn
	var req UnwarnRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	moderatorID := middleware.GetUserID(r.Context())
	if err := h.service.Unwarn(r.Context(), moderatorID, targetID, warningID, req.Reason); err != nil {
		h.writeModerationError(w, err)
		return
	}
	response.NoContent(w)
}

// Mute handles POST /moderation/users/{id}/mute
func (h *Handler) Mute(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req MuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	moderatorID := middleware.GetUserID(r.Context())
	if err := h.service.Mute(r.Context(), moderatorID, targetID, req.Reason, req.DurationMinutes); err != nil {
		h.writeModerationError(w, err)
		return
	}
	response.NoContent(w)
}

// Unmute handles POST /moderation/users/{id}/unmute
func (h *Handler) Unmute(w http.ResponseWriter, r *http.Request) {
	h.liftSanction(w, r, h.service.Unmute)
}

// Ban handles POST /moderation/users/{id}/ban
func (h *Handler) Ban(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req BanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	moderatorID := middleware.GetUserID(r.Context())
	if err := h.service.Ban(r.Context(), moderatorID, targetID, req.Reason, req.DurationHours); err != nil {
		h.writeModerationError(w, err)
		return
	}
	response.NoContent(w)
}

// Unban handles POST /moderation/users/{id}/unban
func (h *Handler) Unban(w http.ResponseWriter, r *http.Request) {
	h.liftSanction(w, r, h.service.Unban)
}

func (h *Handler) liftSanction(w http.ResponseWriter, r *http.Request, lift func(ctx context.Context, moderatorID, targetID uuid.UUID, reason string) error) {
	targetID, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req LiftSanctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	moderatorID := middleware.GetUserID(r.Context())
	if err := lift(r.Context(), moderatorID, targetID, req.Reason); err != nil {
		h.writeModerationError(w, err)
		return
	}
	response.NoContent(w)
}

// ListReports handles GET /moderation/reports
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	var status *ReportStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := ReportStatus(raw)
		if s != ReportPending && s != ReportResolved && s != ReportRejected {
			response.BadRequest(w, "Invalid report status")
			return
		}
		status = &s
	}

	page, limit := pagination(r)
	reports, total, err := h.service.ListReports(r.Context(), status, page, limit)
	if err != nil {
		h.writeModerationError(w, err)
		return
	}
	response.WithMeta(w, reportList(reports), meta(total, page, limit))
}

// SearchReports handles GET /moderation/reports/search
func (h *Handler) SearchReports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		response.BadRequest(w, "Query parameter q is required")
		return
	}

	page, limit := pagination(r)
	reports, total, err := h.service.SearchReports(r.Context(), query, page, limit)
	if err != nil {
		h.writeModerationError(w, err)
		return
	}
	response.WithMeta(w, reportList(reports), meta(total, page, limit))
}

// GetReport handles GET /moderation/reports/{id}
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	reportID, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid report ID")
		return
	}

	report, err := h.service.GetReport(r.Context(), reportID)
	if err != nil {
		h.writeModerationError(w, err)
		return
	}
	response.OK(w, ReportResponseFromEntity(report))
}

// ChangeReportStatus handles PUT /moderation/reports/{id}/status
func (h *Handler) ChangeReportStatus(w http.ResponseWriter, r *http.Request) {
	reportID, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid report ID")
		return
	}

	var req ChangeReportStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	moderatorID := middleware.GetUserID(r.Context())
	if err := h.service.ChangeReportStatus(r.Context(), moderatorID, reportID, ReportStatus(req.Status)); err != nil {
		h.writeModerationError(w, err)
		return
	}
	response.NoContent(w)
}

// ListReportedMessages handles GET /moderation/messages/reported
func (h *Handler) ListReportedMessages(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	messages, total, err := h.service.ListReportedMessages(r.Context(), page, limit)
	if err != nil {
		h.writeModerationError(w, err)
		return
	}
	response.WithMeta(w, message.MessageListFromEntities(messages), meta(total, page, limit))
}

// SearchReportedMessages handles GET /moderation/messages/reported/search
func (h *Handler) SearchReportedMessages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		response.BadRequest(w, "Query parameter q is required")
		return
	}

	page, limit := pagination(r)
	messages, total, err := h.service.SearchReportedMessages(r.Context(), query, page, limit)
	if err != nil {
		h.writeModerationError(w, err)
		return
	}
	response.WithMeta(w, message.MessageListFromEntities(messages), meta(total, page, limit))
}

// DeleteReportedMessage handles DELETE /moderation/messages/{id}
func (h *Handler) DeleteReportedMessage(w http.ResponseWriter, r *http.Request) {
	messageID, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid message ID")
		return
	}

	var req DeleteMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	moderatorID := middleware.GetUserID(r.Context())
	if err := h.service.DeleteReportedMessage(r.Context(), moderatorID, messageID, req.Reason); err != nil {
		h.writeModerationError(w, err)
		return
	}
	response.NoContent(w)
}

// ListReasons handles GET /moderation/reasons
func (h *Handler) ListReasons(w http.ResponseWriter, r *http.Request) {
	reasons, err := h.service.ListReportReasons(r.Context())
	if err != nil {
		h.writeModerationError(w, err)
		return
	}

	items := make([]*ReasonResponse, len(reasons))
	for i, reason := range reasons {
		items[i] = ReasonResponseFromEntity(reason)
	}
	response.OK(w, items)
}

func reportList(reports []*Report) []*ReportResponse {
	out := make([]*ReportResponse, len(reports))
	for i, r := range reports {
		out[i] = ReportResponseFromEntity(r)
	}
	return out
}

func meta(total, page, limit int) response.Meta {
	return response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   (total + limit - 1) / limit,
		HasNext: page*limit < total,
		HasPrev: page > 1,
	}
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
