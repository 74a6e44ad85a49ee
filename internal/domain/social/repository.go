package social

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/echo-era/echo-era-api/internal/domain/user"
)

// Repository defines social graph data access
type Repository interface {
	CreateRequest(ctx context.Context, req *FriendRequest) error
	GetRequestByID(ctx context.Context, id uuid.UUID) (*FriendRequest, error)
	GetPendingBetween(ctx context.Context, a, b uuid.UUID) (*FriendRequest, error)
	ResolveRequest(ctx context.Context, id uuid.UUID, status RequestStatus) error
	DeleteRequest(ctx context.Context, id uuid.UUID) error
	ListIncoming(ctx context.Context, userID uuid.UUID) ([]*FriendRequest, error)
	ListOutgoing(ctx context.Context, userID uuid.UUID) ([]*FriendRequest, error)

	CreateFriendship(ctx context.Context, f *Friendship) error
	DeleteFriendship(ctx context.Context, a, b uuid.UUID) error
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]*user.User, error)

	CreateBlock(ctx context.Context, block *BlockRelation) error
	DeleteBlock(ctx context.Context, blockerID, blockedID uuid.UUID) error
	HasBlocked(ctx context.Context, blockerID, blockedID uuid.UUID) (bool, error)
	ListBlocks(ctx context.Context, userID uuid.UUID) ([]*BlockRelation, error)

	CreateChatBlock(ctx context.Context, block *ChatBlock) error
	DeleteChatBlock(ctx context.Context, userID, chatID uuid.UUID) error
	HasBlockedChat(ctx context.Context, userID, chatID uuid.UUID) (bool, error)
	ListChatBlocks(ctx context.Context, userID uuid.UUID) ([]*ChatBlock, error)

	PurgeUser(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates social repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateRequest(ctx context.Context, req *FriendRequest) error {
	query := `
		INSERT INTO friend_requests (id, sender_id, recipient_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, req.ID, req.SenderID, req.RecipientID, req.Status, req.CreatedAt)
	return err
}

func (r *repository) GetRequestByID(ctx context.Context, id uuid.UUID) (*FriendRequest, error) {
	var req FriendRequest
	err := r.db.GetContext(ctx, &req, `SELECT * FROM friend_requests WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *repository) GetPendingBetween(ctx context.Context, a, b uuid.UUID) (*FriendRequest, error) {
	query := `
		SELECT * FROM friend_requests
		WHERE status = 'pending'
		  AND ((sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1))
		LIMIT 1
	`
	var req FriendRequest
	err := r.db.GetContext(ctx, &req, query, a, b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *repository) ResolveRequest(ctx context.Context, id uuid.UUID, status RequestStatus) error {
	query := `UPDATE friend_requests SET status = $2, responded_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}

func (r *repository) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM friend_requests WHERE id = $1`, id)
	return err
}

func (r *repository) ListIncoming(ctx context.Context, userID uuid.UUID) ([]*FriendRequest, error) {
	query := `SELECT * FROM friend_requests WHERE recipient_id = $1 AND status = 'pending' ORDER BY created_at DESC`
	var reqs []*FriendRequest
	err := r.db.SelectContext(ctx, &reqs, query, userID)
	return reqs, err
}

func (r *repository) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]*FriendRequest, error) {
	query := `SELECT * FROM friend_requests WHERE sender_id = $1 AND status = 'pending' ORDER BY created_at DESC`
	var reqs []*FriendRequest
	err := r.db.SelectContext(ctx, &reqs, query, userID)
	return reqs, err
}

func (r *repository) CreateFriendship(ctx context.Context, f *Friendship) error {
	query := `
		INSERT INTO user_friends (id, user_id, friend_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, f.ID, f.UserID, f.FriendID, f.CreatedAt)
	return err
}

func (r *repository) DeleteFriendship(ctx context.Context, a, b uuid.UUID) error {
	query := `
		DELETE FROM user_friends
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`
	_, err := r.db.ExecContext(ctx, query, a, b)
	return err
}

func (r *repository) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	query := `
		SELECT COUNT(*) FROM user_friends
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, a, b); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListFriends(ctx context.Context, userID uuid.UUID) ([]*user.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.role,
		       u.avatar_url, u.description, u.birthday, u.location,
		       u.is_active, u.is_verified, u.verification_code,
		       u.is_password_reset, u.password_reset_code, u.password_reset_code_expires_at,
		       u.report_count, u.is_muted, u.mute_duration, u.mute_expires_at,
		       u.is_banned, u.ban_duration, u.ban_expires_at,
		       u.username_on_delete, u.email_on_delete, u.last_logout,
		       u.created_at, u.updated_at, u.deleted_at
		FROM users u
		JOIN user_friends f
		  ON (f.user_id = $1 AND f.friend_id = u.id)
		  OR (f.friend_id = $1 AND f.user_id = u.id)
		WHERE u.deleted_at IS NULL
		ORDER BY u.username ASC
	`
	var friends []*user.User
	err := r.db.SelectContext(ctx, &friends, query, userID)
	return friends, err
}

func (r *repository) CreateBlock(ctx context.Context, block *BlockRelation) error {
	query := `
		INSERT INTO user_blocked_users (id, blocker_user_id, blocked_user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, block.ID, block.BlockerUserID, block.BlockedUserID, block.CreatedAt)
	return err
}

func (r *repository) DeleteBlock(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	query := `DELETE FROM user_blocked_users WHERE blocker_user_id = $1 AND blocked_user_id = $2`
	_, err := r.db.ExecContext(ctx, query, blockerID, blockedID)
	return err
}

func (r *repository) HasBlocked(ctx context.Context, blockerID, blockedID uuid.UUID) (bool, error) {
	query := `SELECT COUNT(*) FROM user_blocked_users WHERE blocker_user_id = $1 AND blocked_user_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, blockerID, blockedID); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListBlocks(ctx context.Context, userID uuid.UUID) ([]*BlockRelation, error) {
	query := `SELECT * FROM user_blocked_users WHERE blocker_user_id = $1 ORDER BY created_at DESC`
	var blocks []*BlockRelation
	err := r.db.SelectContext(ctx, &blocks, query, userID)
	return blocks, err
}

func (r *repository) CreateChatBlock(ctx context.Context, block *ChatBlock) error {
	query := `
		INSERT INTO user_blocked_chats (id, user_id, chat_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, block.ID, block.UserID, block.ChatID, block.CreatedAt)
	return err
}

func (r *repository) DeleteChatBlock(ctx context.Context, userID, chatID uuid.UUID) error {
	query := `DELETE FROM user_blocked_chats WHERE user_id = $1 AND chat_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, chatID)
	return err
}

func (r *repository) HasBlockedChat(ctx context.Context, userID, chatID uuid.UUID) (bool, error) {
	query := `SELECT COUNT(*) FROM user_blocked_chats WHERE user_id = $1 AND chat_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, chatID); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListChatBlocks(ctx context.Context, userID uuid.UUID) ([]*ChatBlock, error) {
	query := `SELECT * FROM user_blocked_chats WHERE user_id = $1 ORDER BY created_at DESC`
	var blocks []*ChatBlock
	err := r.db.SelectContext(ctx, &blocks, query, userID)
	return blocks, err
}

// PurgeUser removes every social tie of a deleted account in one
// transaction
func (r *repository) PurgeUser(ctx context.Context, userID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM user_friends WHERE user_id = $1 OR friend_id = $1`,
		`DELETE FROM friend_requests WHERE (sender_id = $1 OR recipient_id = $1) AND status = 'pending'`,
		`DELETE FROM user_blocked_users WHERE blocker_user_id = $1 OR blocked_user_id = $1`,
		`DELETE FROM user_blocked_chats WHERE user_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return err
		}
	}

	return tx.Commit()
}
