package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines message data access
type Repository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
	SetModerationStatus(ctx context.Context, id uuid.UUID, status ModerationStatus) error
	SoftDelete(ctx context.Context, id, deleterID uuid.UUID, status ModerationStatus) error

	AddEdit(ctx context.Context, e *Edit) error
	ListEdits(ctx context.Context, messageID uuid.UUID) ([]*Edit, error)

	AddFlag(ctx context.Context, f *Flag) error
	HasFlagged(ctx context.Context, messageID, userID uuid.UUID) (bool, error)

	MarkChatRead(ctx context.Context, chatID, userID uuid.UUID) error

	ListByChat(ctx context.Context, chatID uuid.UUID, offset, limit int) ([]*Message, int, error)
	SearchInChat(ctx context.Context, chatID uuid.UUID, query string, offset, limit int) ([]*Message, int, error)
	ListByStatus(ctx context.Context, status ModerationStatus, offset, limit int) ([]*Message, int, error)
	SearchByStatus(ctx context.Context, status ModerationStatus, query string, offset, limit int) ([]*Message, int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates message repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *Message) error {
	query := `
		INSERT INTO messages (id, chat_id, sender_id, content, moderation_status, is_deleted, deleted_by, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, '{}', $6)
	`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.ChatID, m.SenderID, m.Content, m.ModerationStatus, m.CreatedAt)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Message, error) {
	var m Message
	err := r.db.GetContext(ctx, &m, `SELECT * FROM messages WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	query := `UPDATE messages SET content = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, content)
	return err
}

func (r *repository) SetModerationStatus(ctx context.Context, id uuid.UUID, status ModerationStatus) error {
	query := `UPDATE messages SET moderation_status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}

func (r *repository) SoftDelete(ctx context.Context, id, deleterID uuid.UUID, status ModerationStatus) error {
	query := `
		UPDATE messages
		SET is_deleted = TRUE,
		    deleted_by = array_append(deleted_by, $2),
		    moderation_status = $3,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, deleterID, status)
	return err
}

func (r *repository) AddEdit(ctx context.Context, e *Edit) error {
	query := `
		INSERT INTO message_edits (id, message_id, prior_content, editor_id, editor_role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.MessageID, e.PriorContent, e.EditorID, e.EditorRole, e.CreatedAt)
	return err
}

func (r *repository) ListEdits(ctx context.Context, messageID uuid.UUID) ([]*Edit, error) {
	query := `SELECT * FROM message_edits WHERE message_id = $1 ORDER BY created_at ASC`
	var edits []*Edit
	err := r.db.SelectContext(ctx, &edits, query, messageID)
	return edits, err
}

func (r *repository) AddFlag(ctx context.Context, f *Flag) error {
	query := `
		INSERT INTO message_flags (message_id, user_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, f.MessageID, f.UserID, f.CreatedAt)
	return err
}

func (r *repository) HasFlagged(ctx context.Context, messageID, userID uuid.UUID) (bool, error) {
	query := `SELECT COUNT(*) FROM message_flags WHERE message_id = $1 AND user_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, messageID, userID); err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkChatRead records a read receipt for every unseen message in the
// chat
func (r *repository) MarkChatRead(ctx context.Context, chatID, userID uuid.UUID) error {
	query := `
		INSERT INTO message_reads (message_id, user_id, read_at)
		SELECT m.id, $2, NOW()
		FROM messages m
		WHERE m.chat_id = $1 AND m.sender_id <> $2
		ON CONFLICT (message_id, user_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, chatID, userID)
	return err
}

func (r *repository) listPage(ctx context.Context, where string, args []interface{}, offset, limit int) ([]*Message, int, error) {
	query := fmt.Sprintf(
		`SELECT * FROM messages WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
	var messages []*Message
	pageArgs := append(append([]interface{}{}, args...), limit, offset)
	if err := r.db.SelectContext(ctx, &messages, query, pageArgs...); err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM messages WHERE ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (r *repository) ListByChat(ctx context.Context, chatID uuid.UUID, offset, limit int) ([]*Message, int, error) {
	return r.listPage(ctx, `chat_id = $1`, []interface{}{chatID}, offset, limit)
}

func (r *repository) SearchInChat(ctx context.Context, chatID uuid.UUID, search string, offset, limit int) ([]*Message, int, error) {
	where := `chat_id = $1 AND is_deleted = FALSE AND content ILIKE '%' || $2 || '%'`
	return r.listPage(ctx, where, []interface{}{chatID, search}, offset, limit)
}

func (r *repository) ListByStatus(ctx context.Context, status ModerationStatus, offset, limit int) ([]*Message, int, error) {
	return r.listPage(ctx, `moderation_status = $1`, []interface{}{status}, offset, limit)
}

func (r *repository) SearchByStatus(ctx context.Context, status ModerationStatus, search string, offset, limit int) ([]*Message, int, error) {
	where := `moderation_status = $1 AND content ILIKE '%' || $2 || '%'`
	return r.listPage(ctx, where, []interface{}{status, search}, offset, limit)
}
