package moderation

import (
	"time"

	"github.com/google/uuid"
)

// ReportStatus is the workflow state of a report
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportResolved ReportStatus = "resolved"
	ReportRejected ReportStatus = "rejected"
)

// LogAction identifies the kind of moderator action recorded in the
// audit trail
type LogAction string

const (
	ActionWarn            LogAction = "warn"
	ActionUnwarn          LogAction = "unwarn"
	ActionMute            LogAction = "mute"
	ActionUnmute          LogAction = "unmute"
	ActionBan             LogAction = "ban"
	ActionUnban           LogAction = "unban"
	ActionReportStatus    LogAction = "report_status"
	ActionDeleteMessage   LogAction = "delete_message"
	ActionAddModerator    LogAction = "add_moderator"
	ActionRemoveModerator LogAction = "remove_moderator"
	ActionCreateChat      LogAction = "create_chat"
	ActionUpdateChat      LogAction = "update_chat"
	ActionDeleteChat      LogAction = "delete_chat"
)

// Report is one filed report. Exactly one of TargetUserID and
// MessageID is set, depending on what was reported. Rows are never
// deduplicated, the per-user flag list on the message is.
type Report struct {
	ID           uuid.UUID     `db:"id"`
	ReporterID   uuid.UUID     `db:"reporter_id"`
	TargetUserID uuid.NullUUID `db:"target_user_id"`
	MessageID    uuid.NullUUID `db:"message_id"`
	Reason       string        `db:"reason"`
	Status       ReportStatus  `db:"status"`
	ResolvedBy   uuid.NullUUID `db:"resolved_by"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

// ModerationLog is one append-only audit entry
type ModerationLog struct {
	ID              uuid.UUID     `db:"id"`
	ModeratorID     uuid.UUID     `db:"moderator_id"`
	Action          LogAction     `db:"action"`
	TargetUserID    uuid.NullUUID `db:"target_user_id"`
	TargetMessageID uuid.NullUUID `db:"target_message_id"`
	TargetChatID    uuid.NullUUID `db:"target_chat_id"`
	ReportID        uuid.NullUUID `db:"report_id"`
	Reason          string        `db:"reason"`
	CreatedAt       time.Time     `db:"created_at"`
}

// ReportReason is a canned reason offered to reporters
type ReportReason struct {
	ID        uuid.UUID `db:"id"`
	Category  string    `db:"category"`
	Title     string    `db:"title"`
	Priority  int       `db:"priority"`
	CreatedAt time.Time `db:"created_at"`
}

// UserFilter narrows moderator user listings
type UserFilter string

const (
	FilterAll    UserFilter = "all"
	FilterWarned UserFilter = "warned"
	FilterMuted  UserFilter = "muted"
	FilterBanned UserFilter = "banned"
)

// Valid reports whether f is a known filter
func (f UserFilter) Valid() bool {
	switch f {
	case FilterAll, FilterWarned, FilterMuted, FilterBanned:
		return true
	}
	return false
}
