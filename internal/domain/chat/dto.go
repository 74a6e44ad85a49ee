package chat

import (
	"time"

	"github.com/google/uuid"
)

// CreateGroupChatRequest for POST /chats/group
type CreateGroupChatRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	InviteeIDs  []string `json:"invitee_ids" validate:"required,min=2,dive,uuid"`
}

// CreatePublicChatRequest for POST /chats/public
type CreatePublicChatRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// UpdateChatRequest for PUT /chats/{id}
type UpdateChatRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url,max=500"`
}

// JoinRequestRequest for POST /chats/{id}/requests
type JoinRequestRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// ChangeRoleRequest for PUT /chats/{id}/participants/{userId}/role
type ChangeRoleRequest struct {
	Role ChatRole `json:"role" validate:"required,chat_role"`
}

// ChatResponse is the API shape of a chat
type ChatResponse struct {
	ID          uuid.UUID `json:"id"`
	Type        ChatType  `json:"type"`
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChatSummaryResponse is one entry of the chat list
type ChatSummaryResponse struct {
	ChatResponse
	LastMessage   *string    `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	UnreadCount   int        `json:"unread_count"`
}

// ChatInfoResponse is the chat detail view
type ChatInfoResponse struct {
	ChatResponse
	Participants []Participant `json:"participants"`
}

// ChatResponseFromEntity converts entity to response
func ChatResponseFromEntity(c *Chat) ChatResponse {
	resp := ChatResponse{
		ID:        c.ID,
		Type:      c.Type,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
	}
	if c.Name.Valid {
		resp.Name = &c.Name.String
	}
	if c.Description.Valid {
		resp.Description = &c.Description.String
	}
	if c.AvatarURL.Valid {
		resp.AvatarURL = &c.AvatarURL.String
	}
	return resp
}

// ChatSummaryResponseFromEntity converts a summary row to response
func ChatSummaryResponseFromEntity(s *ChatSummary) *ChatSummaryResponse {
	resp := &ChatSummaryResponse{
		ChatResponse: ChatResponseFromEntity(&s.Chat),
		UnreadCount:  s.UnreadCount,
	}
	if s.LastMessageContent.Valid {
		resp.LastMessage = &s.LastMessageContent.String
	}
	if s.LastMessageAt.Valid {
		resp.LastMessageAt = &s.LastMessageAt.Time
	}
	return resp
}
