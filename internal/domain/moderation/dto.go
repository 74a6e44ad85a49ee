package moderation

import (
	"time"

	"github.com/echo-era/echo-era-api/internal/domain/user"
)

// WarnRequest for POST /moderation/users/{id}/warn
type WarnRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// UnwarnRequest for DELETE /moderation/users/{id}/warnings/{warningId}
type UnwarnRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// MuteRequest for POST /moderation/users/{id}/mute
type MuteRequest struct {
	Reason          string `json:"reason" validate:"required,min=3,max=500"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=1,max=525600"`
}

// BanRequest for POST /moderation/users/{id}/ban
type BanRequest struct {
	Reason        string `json:"reason" validate:"required,min=3,max=500"`
	DurationHours int    `json:"duration_hours" validate:"required,min=1,max=8760"`
}

// LiftSanctionRequest for POST /moderation/users/{id}/unmute and unban
type LiftSanctionRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// ChangeReportStatusRequest for PUT /moderation/reports/{id}/status
type ChangeReportStatusRequest struct {
	Status string `json:"status" validate:"required,report_status"`
}

// DeleteMessageRequest for DELETE /moderation/messages/{id}
type DeleteMessageRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// CreateReasonRequest for POST /admin/report-reasons
type CreateReasonRequest struct {
	Category string `json:"category" validate:"required,min=2,max=60"`
	Title    string `json:"title" validate:"required,min=3,max=120"`
	Priority int    `json:"priority" validate:"min=0,max=10"`
}

// ReportResponse is the API shape of a report
type ReportResponse struct {
	ID           string       `json:"id"`
	ReporterID   string       `json:"reporter_id"`
	TargetUserID *string      `json:"target_user_id,omitempty"`
	MessageID    *string      `json:"message_id,omitempty"`
	Reason       string       `json:"reason"`
	Status       ReportStatus `json:"status"`
	ResolvedBy   *string      `json:"resolved_by,omitempty"`
	CreatedAt    string       `json:"created_at"`
}

// ReportResponseFromEntity converts entity to response
func ReportResponseFromEntity(r *Report) *ReportResponse {
	resp := &ReportResponse{
		ID:         r.ID.String(),
		ReporterID: r.ReporterID.String(),
		Reason:     r.Reason,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
	if r.TargetUserID.Valid {
		v := r.TargetUserID.UUID.String()
		resp.TargetUserID = &v
	}
	if r.MessageID.Valid {
		v := r.MessageID.UUID.String()
		resp.MessageID = &v
	}
	if r.ResolvedBy.Valid {
		v := r.ResolvedBy.UUID.String()
		resp.ResolvedBy = &v
	}
	return resp
}

// LogResponse is the API shape of an audit entry
type LogResponse struct {
	ID              string    `json:"id"`
	ModeratorID     string    `json:"moderator_id"`
	Action          LogAction `json:"action"`
	TargetUserID    *string   `json:"target_user_id,omitempty"`
	TargetMessageID *string   `json:"target_message_id,omitempty"`
	TargetChatID    *string   `json:"target_chat_id,omitempty"`
	ReportID        *string   `json:"report_id,omitempty"`
	Reason          string    `json:"reason"`
	CreatedAt       string    `json:"created_at"`
}

// LogResponseFromEntity converts entity to response
func LogResponseFromEntity(l *ModerationLog) *LogResponse {
	resp := &LogResponse{
		ID:          l.ID.String(),
		ModeratorID: l.ModeratorID.String(),
		Action:      l.Action,
		Reason:      l.Reason,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
	if l.TargetUserID.Valid {
		v := l.TargetUserID.UUID.String()
		resp.TargetUserID = &v
	}
	if l.TargetMessageID.Valid {
		v := l.TargetMessageID.UUID.String()
		resp.TargetMessageID = &v
	}
	if l.TargetChatID.Valid {
		v := l.TargetChatID.UUID.String()
		resp.TargetChatID = &v
	}
	if l.ReportID.Valid {
		v := l.ReportID.UUID.String()
		resp.ReportID = &v
	}
	return resp
}

// ReasonResponse is the API shape of a canned report reason
type ReasonResponse struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Priority  int    `json:"priority"`
	CreatedAt string `json:"created_at"`
}

// ReasonResponseFromEntity converts entity to response
func ReasonResponseFromEntity(r *ReportReason) *ReasonResponse {
	return &ReasonResponse{
		ID:        r.ID.String(),
		Category:  r.Category,
		Title:     r.Title,
		Priority:  r.Priority,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

// ModeratedUserResponse is the user shape shown in the moderation
// console, sanction state included
type ModeratedUserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        user.Role `json:"role"`
	ReportCount int       `json:"report_count"`
	IsMuted     bool      `json:"is_muted"`
	MuteExpires *string   `json:"mute_expires_at,omitempty"`
	IsBanned    bool      `json:"is_banned"`
	BanExpires  *string   `json:"ban_expires_at,omitempty"`
	CreatedAt   string    `json:"created_at"`
}

// ModeratedUserFromEntity converts entity to response
func ModeratedUserFromEntity(u *user.User) *ModeratedUserResponse {
	resp := &ModeratedUserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		ReportCount: u.ReportCount,
		IsMuted:     u.IsMuted,
		IsBanned:    u.IsBanned,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
	if u.MuteExpiresAt.Valid {
		v := u.MuteExpiresAt.Time.Format(time.RFC3339)
		resp.MuteExpires = &v
	}
	if u.BanExpiresAt.Valid {
		v := u.BanExpiresAt.Time.Format(time.RFC3339)
		resp.BanExpires = &v
	}
	return resp
}
