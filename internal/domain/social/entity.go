package social

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of a friend request
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// FriendRequest represents a pending or resolved friend request
type FriendRequest struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	SenderID    uuid.UUID     `db:"sender_id" json:"sender_id"`
	RecipientID uuid.UUID     `db:"recipient_id" json:"recipient_id"`
	Status      RequestStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	RespondedAt sql.NullTime  `db:"responded_at" json:"-"`
}

// Friendship links two users. One row per pair, user_id < friend_id
// is not enforced, queries match both directions.
type Friendship struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	FriendID  uuid.UUID `db:"friend_id" json:"friend_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BlockRelation represents a user-to-user block
type BlockRelation struct {
	ID            uuid.UUID `db:"id" json:"id"`
	BlockerUserID uuid.UUID `db:"blocker_user_id" json:"blocker_user_id"`
	BlockedUserID uuid.UUID `db:"blocked_user_id" json:"blocked_user_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ChatBlock hides a chat from the blocking user
type ChatBlock struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ChatID    uuid.UUID `db:"chat_id" json:"chat_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
