package message

import "time"

// SendMessageRequest for POST /messages/chat/{chatId}
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// EditMessageRequest for PUT /messages/{id}
type EditMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// ReportMessageRequest for POST /messages/{id}/report
type ReportMessageRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// MessageResponse is the API shape of a message
type MessageResponse struct {
	ID               string           `json:"id"`
	ChatID           string           `json:"chat_id"`
	SenderID         string           `json:"sender_id"`
	Content          string           `json:"content"`
	ModerationStatus ModerationStatus `json:"moderation_status"`
	IsDeleted        bool             `json:"is_deleted"`
	CreatedAt        string           `json:"created_at"`
	UpdatedAt        *string          `json:"updated_at,omitempty"`
}

// MessageResponseFromEntity converts entity to response
func MessageResponseFromEntity(m *Message) *MessageResponse {
	resp := &MessageResponse{
		ID:               m.ID.String(),
		ChatID:           m.ChatID.String(),
		SenderID:         m.SenderID.String(),
		Content:          m.Content,
		ModerationStatus: m.ModerationStatus,
		IsDeleted:        m.IsDeleted,
		CreatedAt:        m.CreatedAt.Format(time.RFC3339),
	}
	if m.UpdatedAt.Valid {
		updated := m.UpdatedAt.Time.Format(time.RFC3339)
		resp.UpdatedAt = &updated
	}
	return resp
}

// MessageListFromEntities converts a page of messages
func MessageListFromEntities(messages []*Message) []*MessageResponse {
	out := make([]*MessageResponse, len(messages))
	for i, m := range messages {
		out[i] = MessageResponseFromEntity(m)
	}
	return out
}

// EditResponse is one edit-history entry
type EditResponse struct {
	ID           string     `json:"id"`
	PriorContent string     `json:"prior_content"`
	EditorID     string     `json:"editor_id"`
	EditorRole   EditorRole `json:"editor_role"`
	CreatedAt    string     `json:"created_at"`
}

// EditResponseFromEntity converts entity to response
func EditResponseFromEntity(e *Edit) *EditResponse {
	return &EditResponse{
		ID:           e.ID.String(),
		PriorContent: e.PriorContent,
		EditorID:     e.EditorID.String(),
		EditorRole:   e.EditorRole,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
	}
}
