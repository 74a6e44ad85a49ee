package chat

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ChatSummary is one row of a user's chat list
type ChatSummary struct {
	Chat
	LastMessageContent sql.NullString `db:"last_message_content"`
	LastMessageAt      sql.NullTime   `db:"last_message_at"`
	UnreadCount        int            `db:"unread_count"`
}

// Repository defines chat data access
type Repository interface {
	Create(ctx context.Context, chat *Chat, participants []Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Chat, error)
	Update(ctx context.Context, chat *Chat) error
	DeleteCascade(ctx context.Context, chatID, actorID uuid.UUID) error

	GetParticipants(ctx context.Context, chatID uuid.UUID) ([]Participant, error)
	ReplaceParticipants(ctx context.Context, chatID uuid.UUID, participants []Participant) error
	AddParticipant(ctx context.Context, p Participant) error

	CreateJoinRequest(ctx context.Context, req *JoinRequest) error
	GetJoinRequest(ctx context.Context, id uuid.UUID) (*JoinRequest, error)
	GetPendingJoinRequest(ctx context.Context, chatID, userID uuid.UUID) (*JoinRequest, error)
	DeleteJoinRequest(ctx context.Context, id uuid.UUID) error
	ListJoinRequestsForChat(ctx context.Context, chatID uuid.UUID) ([]*JoinRequest, error)
	ListJoinRequestsForUser(ctx context.Context, userID uuid.UUID) ([]*JoinRequest, error)

	FindPrivateChatBetween(ctx context.Context, a, b uuid.UUID) (*Chat, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*ChatSummary, error)
	ListChatIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	SearchPublic(ctx context.Context, query string, offset, limit int) ([]*Chat, int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates chat repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create inserts the chat and its initial participant set in one
// transaction
func (r *repository) Create(ctx context.Context, chat *Chat, participants []Participant) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO chats (id, type, name, description, avatar_url, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.ExecContext(ctx, query,
		chat.ID, chat.Type, chat.Name, chat.Description, chat.AvatarURL, chat.CreatedBy, chat.CreatedAt,
	); err != nil {
		return err
	}

	for _, p := range participants {
		if err := insertParticipant(ctx, tx, p); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertParticipant(ctx context.Context, tx *sqlx.Tx, p Participant) error {
	query := `
		INSERT INTO chat_participants (chat_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.ExecContext(ctx, query, p.ChatID, p.UserID, p.Role, p.JoinedAt)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Chat, error) {
	var chat Chat
	err := r.db.GetContext(ctx, &chat, `SELECT * FROM chats WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

func (r *repository) Update(ctx context.Context, chat *Chat) error {
	query := `
		UPDATE chats SET name = $2, description = $3, avatar_url = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, chat.ID, chat.Name, chat.Description, chat.AvatarURL)
	return err
}

// DeleteCascade soft-deletes the chat and its messages, records a
// system edit entry per message, and clears join requests and chat
// blocks, all in one transaction
func (r *repository) DeleteCascade(ctx context.Context, chatID, actorID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE chats SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1`, chatID); err != nil {
		return err
	}

	// Every live message gets an audit trail entry before the wipe
	editQuery := `
		INSERT INTO message_edits (id, message_id, prior_content, editor_id, editor_role, created_at)
		SELECT gen_random_uuid(), m.id, m.content, $2, 'chatOwner', NOW()
		FROM messages m
		WHERE m.chat_id = $1 AND m.is_deleted = FALSE
	`
	if _, err := tx.ExecContext(ctx, editQuery, chatID, actorID); err != nil {
		return err
	}

	deleteMessages := `
		UPDATE messages
		SET is_deleted = TRUE, deleted_by = array_append(deleted_by, $2), updated_at = NOW()
		WHERE chat_id = $1 AND is_deleted = FALSE
	`
	if _, err := tx.ExecContext(ctx, deleteMessages, chatID, actorID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chat_join_requests WHERE chat_id = $1`, chatID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_blocked_chats WHERE chat_id = $1`, chatID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chat_participants WHERE chat_id = $1`, chatID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) GetParticipants(ctx context.Context, chatID uuid.UUID) ([]Participant, error) {
	query := `SELECT chat_id, user_id, role, joined_at FROM chat_participants WHERE chat_id = $1 ORDER BY joined_at ASC`
	var participants []Participant
	err := r.db.SelectContext(ctx, &participants, query, chatID)
	return participants, err
}

// ReplaceParticipants persists a full membership value computed by a
// transition function
func (r *repository) ReplaceParticipants(ctx context.Context, chatID uuid.UUID, participants []Participant) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_participants WHERE chat_id = $1`, chatID); err != nil {
		return err
	}
	for _, p := range participants {
		if err := insertParticipant(ctx, tx, p); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) AddParticipant(ctx context.Context, p Participant) error {
	query := `
		INSERT INTO chat_participants (chat_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, p.ChatID, p.UserID, p.Role, p.JoinedAt)
	return err
}

func (r *repository) CreateJoinRequest(ctx context.Context, req *JoinRequest) error {
	query := `
		INSERT INTO chat_join_requests (id, chat_id, user_id, invited_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, req.ID, req.ChatID, req.UserID, req.InvitedBy, req.CreatedAt)
	return err
}

func (r *repository) GetJoinRequest(ctx context.Context, id uuid.UUID) (*JoinRequest, error) {
	var req JoinRequest
	err := r.db.GetContext(ctx, &req, `SELECT * FROM chat_join_requests WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *repository) GetPendingJoinRequest(ctx context.Context, chatID, userID uuid.UUID) (*JoinRequest, error) {
	var req JoinRequest
	query := `SELECT * FROM chat_join_requests WHERE chat_id = $1 AND user_id = $2`
	err := r.db.GetContext(ctx, &req, query, chatID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *repository) DeleteJoinRequest(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chat_join_requests WHERE id = $1`, id)
	return err
}

func (r *repository) ListJoinRequestsForChat(ctx context.Context, chatID uuid.UUID) ([]*JoinRequest, error) {
	query := `SELECT * FROM chat_join_requests WHERE chat_id = $1 ORDER BY created_at ASC`
	var reqs []*JoinRequest
	err := r.db.SelectContext(ctx, &reqs, query, chatID)
	return reqs, err
}

func (r *repository) ListJoinRequestsForUser(ctx context.Context, userID uuid.UUID) ([]*JoinRequest, error) {
	query := `SELECT * FROM chat_join_requests WHERE user_id = $1 ORDER BY created_at ASC`
	var reqs []*JoinRequest
	err := r.db.SelectContext(ctx, &reqs, query, userID)
	return reqs, err
}

func (r *repository) FindPrivateChatBetween(ctx context.Context, a, b uuid.UUID) (*Chat, error) {
	query := `
		SELECT c.* FROM chats c
		WHERE c.type = 'private' AND c.deleted_at IS NULL
		  AND EXISTS (SELECT 1 FROM chat_participants p WHERE p.chat_id = c.id AND p.user_id = $1)
		  AND EXISTS (SELECT 1 FROM chat_participants p WHERE p.chat_id = c.id AND p.user_id = $2)
		LIMIT 1
	`
	var chat Chat
	err := r.db.GetContext(ctx, &chat, query, a, b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

// ListForUser returns the user's chats with the last message preview
// and the count of messages the user has not read yet. Chats the user
// has blocked are excluded.
func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*ChatSummary, error) {
	query := `
		SELECT c.*,
		       lm.content AS last_message_content,
		       lm.created_at AS last_message_at,
		       COALESCE(un.unread, 0) AS unread_count
		FROM chats c
		JOIN chat_participants cp ON cp.chat_id = c.id AND cp.user_id = $1
		LEFT JOIN LATERAL (
			SELECT m.content, m.created_at
			FROM messages m
			WHERE m.chat_id = c.id AND m.is_deleted = FALSE
			ORDER BY m.created_at DESC
			LIMIT 1
		) lm ON TRUE
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS unread
			FROM messages m
			WHERE m.chat_id = c.id
			  AND m.is_deleted = FALSE
			  AND m.sender_id <> $1
			  AND NOT EXISTS (
				SELECT 1 FROM message_reads mr WHERE mr.message_id = m.id AND mr.user_id = $1
			  )
		) un ON TRUE
		WHERE c.deleted_at IS NULL
		  AND NOT EXISTS (
			SELECT 1 FROM user_blocked_chats b WHERE b.chat_id = c.id AND b.user_id = $1
		  )
		ORDER BY COALESCE(lm.created_at, c.created_at) DESC
	`
	var summaries []*ChatSummary
	err := r.db.SelectContext(ctx, &summaries, query, userID)
	return summaries, err
}

func (r *repository) ListChatIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT c.id FROM chats c
		JOIN chat_participants cp ON cp.chat_id = c.id
		WHERE cp.user_id = $1 AND c.deleted_at IS NULL
	`
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, query, userID)
	return ids, err
}

func (r *repository) SearchPublic(ctx context.Context, search string, offset, limit int) ([]*Chat, int, error) {
	query := `
		SELECT * FROM chats
		WHERE type = 'public' AND deleted_at IS NULL
		  AND name ILIKE '%' || $1 || '%'
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	var chats []*Chat
	if err := r.db.SelectContext(ctx, &chats, query, search, limit, offset); err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := `
		SELECT COUNT(*) FROM chats
		WHERE type = 'public' AND deleted_at IS NULL AND name ILIKE '%' || $1 || '%'
	`
	if err := r.db.GetContext(ctx, &total, countQuery, search); err != nil {
		return nil, 0, err
	}

	return chats, total, nil
}
