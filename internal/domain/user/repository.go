package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines user data access interface
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByVerificationCode(ctx context.Context, code string) (*User, error)
	GetByPasswordResetCode(ctx context.Context, code string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateLastLogout(ctx context.Context, id uuid.UUID) error
	UpdateRole(ctx context.Context, id uuid.UUID, role Role) error

	AddNameHistory(ctx context.Context, entry *NameHistoryEntry) error
	ListWarnings(ctx context.Context, userID uuid.UUID) ([]*Warning, error)
	ListSanctionReasons(ctx context.Context, userID uuid.UUID) ([]*SanctionReason, error)

	Search(ctx context.Context, query string, offset, limit int) ([]*User, int, error)
}

// repository implements Repository
type repository struct {
	db *sqlx.DB
}

// NewRepository creates new user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, username, email, password_hash, role,
	avatar_url, description, birthday, location,
	is_active, is_verified, verification_code,
	is_password_reset, password_reset_code, password_reset_code_expires_at,
	report_count, is_muted, mute_duration, mute_expires_at,
	is_banned, ban_duration, ban_expires_at,
	username_on_delete, email_on_delete, last_logout,
	created_at, updated_at, deleted_at
`

// Create creates a new user
func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, role, is_active, is_verified, verification_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.IsVerified,
		user.VerificationCode,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("user repository create: %w", err)
	}
	return nil
}

func (r *repository) getOne(ctx context.Context, where string, arg interface{}) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	var user User
	err := r.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByID returns user by ID
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetByUsername returns user by username
func (r *repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, `username = $1`, username)
}

// GetByEmail returns user by email
func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `email = $1`, email)
}

// GetByVerificationCode returns the unverified user holding the code
func (r *repository) GetByVerificationCode(ctx context.Context, code string) (*User, error) {
	return r.getOne(ctx, `verification_code = $1`, code)
}

// GetByPasswordResetCode returns the user holding the reset code
func (r *repository) GetByPasswordResetCode(ctx context.Context, code string) (*User, error) {
	return r.getOne(ctx, `password_reset_code = $1`, code)
}

// Update persists the full user row
func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users SET
			username = $2, email = $3, password_hash = $4, role = $5,
			avatar_url = $6, description = $7, birthday = $8, location = $9,
			is_active = $10, is_verified = $11, verification_code = $12,
			is_password_reset = $13, password_reset_code = $14, password_reset_code_expires_at = $15,
			report_count = $16, is_muted = $17, mute_duration = $18, mute_expires_at = $19,
			is_banned = $20, ban_duration = $21, ban_expires_at = $22,
			username_on_delete = $23, email_on_delete = $24, last_logout = $25,
			deleted_at = $26, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.AvatarURL,
		user.Description,
		user.Birthday,
		user.Location,
		user.IsActive,
		user.IsVerified,
		user.VerificationCode,
		user.IsPasswordReset,
		user.PasswordResetCode,
		user.PasswordResetCodeExpiry,
		user.ReportCount,
		user.IsMuted,
		user.MuteDuration,
		user.MuteExpiresAt,
		user.IsBanned,
		user.BanDuration,
		user.BanExpiresAt,
		user.UsernameOnDelete,
		user.EmailOnDelete,
		user.LastLogout,
		user.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("user repository update: %w", err)
	}
	return nil
}

// UpdateLastLogout stamps last_logout to now
func (r *repository) UpdateLastLogout(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET last_logout = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// UpdateRole changes the user's global role and stamps last_logout so
// outstanding tokens stop matching the stored role
func (r *repository) UpdateRole(ctx context.Context, id uuid.UUID, role Role) error {
	query := `UPDATE users SET role = $2, last_logout = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, role)
	return err
}

// AddNameHistory records a previous username or email
func (r *repository) AddNameHistory(ctx context.Context, entry *NameHistoryEntry) error {
	query := `
		INSERT INTO user_name_history (id, user_id, kind, value, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.UserID, entry.Kind, entry.Value, entry.CreatedAt)
	return err
}

// ListWarnings returns all warnings of a user, newest first
func (r *repository) ListWarnings(ctx context.Context, userID uuid.UUID) ([]*Warning, error) {
	query := `SELECT * FROM user_warnings WHERE user_id = $1 ORDER BY created_at DESC`
	var warnings []*Warning
	err := r.db.SelectContext(ctx, &warnings, query, userID)
	return warnings, err
}

// ListSanctionReasons returns the sanction audit list of a user
func (r *repository) ListSanctionReasons(ctx context.Context, userID uuid.UUID) ([]*SanctionReason, error) {
	query := `SELECT * FROM user_sanction_reasons WHERE user_id = $1 ORDER BY created_at DESC`
	var reasons []*SanctionReason
	err := r.db.SelectContext(ctx, &reasons, query, userID)
	return reasons, err
}

// Search matches the query against username, description and location
func (r *repository) Search(ctx context.Context, search string, offset, limit int) ([]*User, int, error) {
	where := `(username ILIKE '%' || $1 || '%'
			OR description ILIKE '%' || $1 || '%'
			OR location ILIKE '%' || $1 || '%')
		AND deleted_at IS NULL`

	query := `SELECT ` + userColumns + `
		FROM users
		WHERE ` + where + `
		ORDER BY username ASC
		LIMIT $2 OFFSET $3`
	var users []*User
	if err := r.db.SelectContext(ctx, &users, query, search, limit, offset); err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM users WHERE ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, search); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
