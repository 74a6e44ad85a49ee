package moderation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/echo-era/echo-era-api/internal/domain/user"
)

// Repository defines moderation data access. Every sanction mutation
// commits together with its audit row in one transaction, a failed
// log write rolls the sanction back.
type Repository interface {
	ApplyWarning(ctx context.Context, w *user.Warning, entry *ModerationLog) error
	GetWarning(ctx context.Context, userID, warningID uuid.UUID) (*user.Warning, error)
	DeleteWarning(ctx context.Context, warningID uuid.UUID, entry *ModerationLog) error

	SetMute(ctx context.Context, userID uuid.UUID, muted bool, duration int, expires sql.NullTime, reason *user.SanctionReason, entry *ModerationLog) error
	SetBan(ctx context.Context, userID uuid.UUID, banned bool, duration int, expires sql.NullTime, reason *user.SanctionReason, entry *ModerationLog) error

	CreateReport(ctx context.Context, r *Report) error
	GetReportByID(ctx context.Context, id uuid.UUID) (*Report, error)
	UpdateReportStatus(ctx context.Context, id uuid.UUID, status ReportStatus, resolvedBy uuid.UUID, entry *ModerationLog) error
	ListReports(ctx context.Context, status *ReportStatus, offset, limit int) ([]*Report, int, error)
	SearchReports(ctx context.Context, query string, offset, limit int) ([]*Report, int, error)

	AddLog(ctx context.Context, entry *ModerationLog) error
	ListLogs(ctx context.Context, offset, limit int) ([]*ModerationLog, int, error)

	CreateReason(ctx context.Context, reason *ReportReason) error
	ListReasons(ctx context.Context) ([]*ReportReason, error)
	DeleteReason(ctx context.Context, id uuid.UUID) error

	ListUsers(ctx context.Context, filter UserFilter, search string, offset, limit int) ([]*user.User, int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates moderation repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const insertLog = `
	INSERT INTO moderation_logs (id, moderator_id, action, target_user_id, target_message_id, target_chat_id, report_id, reason, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

func execLog(ctx context.Context, tx sqlx.ExtContext, entry *ModerationLog) error {
	_, err := tx.ExecContext(ctx, insertLog,
		entry.ID, entry.ModeratorID, entry.Action, entry.TargetUserID, entry.TargetMessageID,
		entry.TargetChatID, entry.ReportID, entry.Reason, entry.CreatedAt)
	return err
}

func (r *repository) ApplyWarning(ctx context.Context, w *user.Warning, entry *ModerationLog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO user_warnings (id, user_id, reason, issued_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, query, w.ID, w.UserID, w.Reason, w.IssuedBy, w.CreatedAt); err != nil {
		return err
	}
	if err := execLog(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repository) GetWarning(ctx context.Context, userID, warningID uuid.UUID) (*user.Warning, error) {
	var w user.Warning
	query := `SELECT * FROM user_warnings WHERE id = $1 AND user_id = $2`
	err := r.db.GetContext(ctx, &w, query, warningID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *repository) DeleteWarning(ctx context.Context, warningID uuid.UUID, entry *ModerationLog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_warnings WHERE id = $1`, warningID); err != nil {
		return err
	}
	if err := execLog(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repository) SetMute(ctx context.Context, userID uuid.UUID, muted bool, duration int, expires sql.NullTime, reason *user.SanctionReason, entry *ModerationLog) error {
	query := `
		UPDATE users
		SET is_muted = $2, mute_duration = $3, mute_expires_at = $4, updated_at = NOW()
		WHERE id = $1
	`
	return r.applySanction(ctx, query, userID, muted, duration, expires, reason, entry)
}

func (r *repository) SetBan(ctx context.Context, userID uuid.UUID, banned bool, duration int, expires sql.NullTime, reason *user.SanctionReason, entry *ModerationLog) error {
	query := `
		UPDATE users
		SET is_banned = $2, ban_duration = $3, ban_expires_at = $4, updated_at = NOW()
		WHERE id = $1
	`
	return r.applySanction(ctx, query, userID, banned, duration, expires, reason, entry)
}

func (r *repository) applySanction(ctx context.Context, query string, userID uuid.UUID, active bool, duration int, expires sql.NullTime, reason *user.SanctionReason, entry *ModerationLog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, userID, active, duration, expires); err != nil {
		return err
	}
	if reason != nil {
		insertReason := `
			INSERT INTO user_sanction_reasons (id, user_id, reason, type, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.ExecContext(ctx, insertReason, reason.ID, reason.UserID, reason.Reason, reason.Type, reason.CreatedAt); err != nil {
			return err
		}
	}
	if err := execLog(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repository) CreateReport(ctx context.Context, report *Report) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reports (id, reporter_id, target_user_id, message_id, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`
	if _, err := tx.ExecContext(ctx, query,
		report.ID, report.ReporterID, report.TargetUserID, report.MessageID,
		report.Reason, report.Status, report.CreatedAt); err != nil {
		return err
	}

	if report.TargetUserID.Valid {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET report_count = report_count + 1 WHERE id = $1`,
			report.TargetUserID.UUID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *repository) GetReportByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	var report Report
	err := r.db.GetContext(ctx, &report, `SELECT * FROM reports WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *repository) UpdateReportStatus(ctx context.Context, id uuid.UUID, status ReportStatus, resolvedBy uuid.UUID, entry *ModerationLog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE reports SET status = $2, resolved_by = $3, updated_at = NOW() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id, status, resolvedBy); err != nil {
		return err
	}
	if err := execLog(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repository) ListReports(ctx context.Context, status *ReportStatus, offset, limit int) ([]*Report, int, error) {
	where := `TRUE`
	args := []interface{}{}
	if status != nil {
		where = `status = $1`
		args = append(args, *status)
	}
	return r.reportPage(ctx, where, args, offset, limit)
}

func (r *repository) SearchReports(ctx context.Context, query string, offset, limit int) ([]*Report, int, error) {
	where := `reason ILIKE '%' || $1 || '%'`
	return r.reportPage(ctx, where, []interface{}{query}, offset, limit)
}

func (r *repository) reportPage(ctx context.Context, where string, args []interface{}, offset, limit int) ([]*Report, int, error) {
	query := fmt.Sprintf(
		`SELECT * FROM reports WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
	var reports []*Report
	pageArgs := append(append([]interface{}{}, args...), limit, offset)
	if err := r.db.SelectContext(ctx, &reports, query, pageArgs...); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reports WHERE `+where, args...); err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *repository) AddLog(ctx context.Context, entry *ModerationLog) error {
	return execLog(ctx, r.db, entry)
}

func (r *repository) ListLogs(ctx context.Context, offset, limit int) ([]*ModerationLog, int, error) {
	query := `SELECT * FROM moderation_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	var logs []*ModerationLog
	if err := r.db.SelectContext(ctx, &logs, query, limit, offset); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM moderation_logs`); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *repository) CreateReason(ctx context.Context, reason *ReportReason) error {
	query := `INSERT INTO report_reasons (id, category, title, priority, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, reason.ID, reason.Category, reason.Title, reason.Priority, reason.CreatedAt)
	return err
}

func (r *repository) ListReasons(ctx context.Context) ([]*ReportReason, error) {
	var reasons []*ReportReason
	err := r.db.SelectContext(ctx, &reasons, `SELECT * FROM report_reasons ORDER BY priority DESC, category ASC, title ASC`)
	return reasons, err
}

func (r *repository) DeleteReason(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM report_reasons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReasonNotFound
	}
	return nil
}

func (r *repository) ListUsers(ctx context.Context, filter UserFilter, search string, offset, limit int) ([]*user.User, int, error) {
	where := `deleted_at IS NULL`
	switch filter {
	case FilterWarned:
		where += ` AND EXISTS (SELECT 1 FROM user_warnings w WHERE w.user_id = users.id)`
	case FilterMuted:
		where += ` AND is_muted = TRUE`
	case FilterBanned:
		where += ` AND is_banned = TRUE`
	}

	args := []interface{}{}
	if search != "" {
		args = append(args, search)
		where += ` AND username ILIKE '%' || $1 || '%'`
	}

	query := fmt.Sprintf(
		`SELECT * FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
	var users []*user.User
	pageArgs := append(append([]interface{}{}, args...), limit, offset)
	if err := r.db.SelectContext(ctx, &users, query, pageArgs...); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users WHERE `+where, args...); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
