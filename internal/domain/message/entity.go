package message

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ModerationStatus tracks the moderation lifecycle of a message
type ModerationStatus string

const (
	StatusNone       ModerationStatus = "none"
	StatusFlagged    ModerationStatus = "flagged"
	StatusUnapproved ModerationStatus = "unapproved"
	StatusApproved   ModerationStatus = "approved"
)

// EditorRole records in what capacity a message was edited or wiped
type EditorRole string

const (
	EditorSender    EditorRole = "sender"
	EditorModerator EditorRole = "moderator"
	EditorChatOwner EditorRole = "chatOwner"
)

// Message represents a chat message (matches messages table)
type Message struct {
	ID               uuid.UUID        `db:"id"`
	ChatID           uuid.UUID        `db:"chat_id"`
	SenderID         uuid.UUID        `db:"sender_id"`
	Content          string           `db:"content"`
	ModerationStatus ModerationStatus `db:"moderation_status"`
	IsDeleted        bool             `db:"is_deleted"`
	DeletedBy        pq.StringArray   `db:"deleted_by"`
	CreatedAt        time.Time        `db:"created_at"`
	UpdatedAt        sql.NullTime     `db:"updated_at"`
}

// Edit is one append-only edit-history entry
type Edit struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	MessageID    uuid.UUID  `db:"message_id" json:"message_id"`
	PriorContent string     `db:"prior_content" json:"prior_content"`
	EditorID     uuid.UUID  `db:"editor_id" json:"editor_id"`
	EditorRole   EditorRole `db:"editor_role" json:"editor_role"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Flag records that a user reported a message, at most once per user
type Flag struct {
	MessageID uuid.UUID `db:"message_id" json:"message_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Read marks a message as seen by a user
type Read struct {
	MessageID uuid.UUID `db:"message_id" json:"message_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ReadAt    time.Time `db:"read_at" json:"read_at"`
}
