package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User represents a user account (matches users table)
type User struct {
	ID           uuid.UUID      `db:"id"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	PasswordHash sql.NullString `db:"password_hash"`
	Role         Role           `db:"role"`

	// Profile
	AvatarURL   sql.NullString `db:"avatar_url"`
	Description sql.NullString `db:"description"`
	Birthday    sql.NullTime   `db:"birthday"`
	Location    sql.NullString `db:"location"`

	// Account lifecycle
	IsActive         bool           `db:"is_active"`
	IsVerified       bool           `db:"is_verified"`
	VerificationCode sql.NullString `db:"verification_code"`

	// Password reset
	IsPasswordReset         bool           `db:"is_password_reset"`
	PasswordResetCode       sql.NullString `db:"password_reset_code"`
	PasswordResetCodeExpiry sql.NullTime   `db:"password_reset_code_expires_at"`

	// Sanction state. Expiry timestamps are advisory, nothing lifts a
	// sanction automatically.
	ReportCount   int          `db:"report_count"`
	IsMuted       bool         `db:"is_muted"`
	MuteDuration  int          `db:"mute_duration"` // minutes
	MuteExpiresAt sql.NullTime `db:"mute_expires_at"`
	IsBanned      bool         `db:"is_banned"`
	BanDuration   int          `db:"ban_duration"` // hours
	BanExpiresAt  sql.NullTime `db:"ban_expires_at"`

	// Soft delete keeps the original identity for the audit trail
	UsernameOnDelete sql.NullString `db:"username_on_delete"`
	EmailOnDelete    sql.NullString `db:"email_on_delete"`

	LastLogout sql.NullTime `db:"last_logout"`

	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
	DeletedAt sql.NullTime `db:"deleted_at"`
}

// IsDeleted returns true if the account was soft-deleted
func (u *User) IsDeleted() bool {
	return u.DeletedAt.Valid
}

// IsModerator returns true for moderator rank and above
func (u *User) IsModerator() bool {
	return u.Role.AtLeast(RoleModerator)
}

// IsAdmin returns true for admin rank and above
func (u *User) IsAdmin() bool {
	return u.Role.AtLeast(RoleAdmin)
}

// Warning represents a single warning issued against a user
type Warning struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Reason    string    `db:"reason" json:"reason"`
	IssuedBy  uuid.UUID `db:"issued_by" json:"issued_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SanctionReason is the audit copy of a sanction with the duration
// baked into the reason text
type SanctionReason struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Reason    string    `db:"reason" json:"reason"`
	Type      string    `db:"type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NameHistoryKind distinguishes username and email history entries
type NameHistoryKind string

const (
	NameHistoryUsername NameHistoryKind = "username"
	NameHistoryEmail    NameHistoryKind = "email"
)

// NameHistoryEntry records a previous username or email
type NameHistoryEntry struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Kind      NameHistoryKind `db:"kind" json:"kind"`
	Value     string          `db:"value" json:"value"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
