package chat

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ChatType classifies a chat (matches chat_type enum)
type ChatType string

const (
	TypePublic  ChatType = "public"
	TypePrivate ChatType = "private"
	TypeGroup   ChatType = "group"
)

// Valid reports whether t is a known chat type
func (t ChatType) Valid() bool {
	switch t {
	case TypePublic, TypePrivate, TypeGroup:
		return true
	}
	return false
}

// ChatRole is a participant's role inside one chat, unrelated to the
// global account role
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleModerator ChatRole = "moderator"
	RoleAdmin     ChatRole = "admin"
)

var chatRoleLevel = map[ChatRole]int{
	RoleUser:      0,
	RoleModerator: 1,
	RoleAdmin:     2,
}

// Valid reports whether r is a known chat role
func (r ChatRole) Valid() bool {
	_, ok := chatRoleLevel[r]
	return ok
}

// AtLeast reports whether r ranks at or above other
func (r ChatRole) AtLeast(other ChatRole) bool {
	return chatRoleLevel[r] >= chatRoleLevel[other]
}

// Chat represents a chat room (matches chats table)
type Chat struct {
	ID          uuid.UUID      `db:"id"`
	Type        ChatType       `db:"type"`
	Name        sql.NullString `db:"name"`
	Description sql.NullString `db:"description"`
	AvatarURL   sql.NullString `db:"avatar_url"`
	CreatedBy   uuid.UUID      `db:"created_by"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   sql.NullTime   `db:"updated_at"`
	DeletedAt   sql.NullTime   `db:"deleted_at"`
}

// IsDeleted returns true if the chat was soft-deleted
func (c *Chat) IsDeleted() bool {
	return c.DeletedAt.Valid
}

// Participant is one (user, role, joinedAt) tuple of a chat's
// membership list
type Participant struct {
	ChatID   uuid.UUID `db:"chat_id" json:"chat_id"`
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	Role     ChatRole  `db:"role" json:"role"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

// JoinRequest is a pending invitation linking a chat and a candidate
// user, consumed on accept or decline
type JoinRequest struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ChatID    uuid.UUID `db:"chat_id" json:"chat_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	InvitedBy uuid.UUID `db:"invited_by" json:"invited_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
