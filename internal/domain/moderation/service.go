package moderation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/echo-era/echo-era-api/internal/domain/message"
	"github.com/echo-era/echo-era-api/internal/domain/user"
)

// MessageModerator is the slice of the message service used by
// moderators, wired from main.
type MessageModerator interface {
	ListByStatus(ctx context.Context, status message.ModerationStatus, page, limit int) ([]*message.Message, int, error)
	SearchByStatus(ctx context.Context, status message.ModerationStatus, query string, page, limit int) ([]*message.Message, int, error)
	DeleteAsModerator(ctx context.Context, moderatorID, messageID uuid.UUID) (*message.Message, error)
}

// Service applies and lifts sanctions and runs the report workflow.
// Warn carries no idempotency guard, mute and ban do. Expiry
// timestamps are advisory, nothing lifts a sanction automatically.
type Service struct {
	repo     Repository
	userRepo user.Repository
	messages MessageModerator
}

// NewService creates moderation service
func NewService(repo Repository, userRepo user.Repository, messages MessageModerator) *Service {
	return &Service{repo: repo, userRepo: userRepo, messages: messages}
}

func (s *Service) getTarget(ctx context.Context, targetID uuid.UUID) (*user.User, error) {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil || target.IsDeleted() {
		return nil, ErrUserNotFound
	}
	return target, nil
}

func newLog(moderatorID uuid.UUID, action LogAction, reason string) *ModerationLog {
	return &ModerationLog{
		ID:          uuid.New(),
		ModeratorID: moderatorID,
		Action:      action,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}
}

func targetUser(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: true}
}

// Warn issues a warning. Warnings stack freely, there is no guard
// against warning the same user twice.
func (s *Service) Warn(ctx context.Context, moderatorID, targetID uuid.UUID, reason string) (*user.Warning, error) {
	if _, err := s.getTarget(ctx, targetID); err != nil {
		return nil, err
	}

	w := &user.Warning{
		ID:        uuid.New(),
		UserID:    targetID,
		Reason:    reason,
		IssuedBy:  moderatorID,
		CreatedAt: time.Now(),
	}
	entry := newLog(moderatorID, ActionWarn, reason)
	entry.TargetUserID = targetUser(targetID)
	if err := s.repo.ApplyWarning(ctx, w, entry); err != nil {
		return nil, err
	}
	return w, nil
}

// Unwarn removes a single warning. When no reason is supplied the
// original warning's reason goes into the audit entry.
func (s *Service) Unwarn(ctx context.Context, moderatorID, targetID, warningID uuid.UUID, reason string) error {
	if _, err := s.getTarget(ctx, targetID); err != nil {
		return err
	}
	w, err := s.repo.GetWarning(ctx, targetID, warningID)
	if err != nil {
		return err
	}
	if w == nil {
		return ErrWarningNotFound
	}

	if reason == "" {
		reason = w.Reason
	}
	entry := newLog(moderatorID, ActionUnwarn, reason)
	entry.TargetUserID = targetUser(targetID)
	return s.repo.DeleteWarning(ctx, warningID, entry)
}

// Mute silences a user for the given number of minutes. An active
// mute is never stacked or extended.
func (s *Service) Mute(ctx context.Context, moderatorID, targetID uuid.UUID, reason string, durationMinutes int) error {
	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if target.IsMuted {
		return ErrAlreadyMuted
	}

	expires := sql.NullTime{Time: time.Now().Add(time.Duration(durationMinutes) * time.Minute), Valid: true}
	sanction := &user.SanctionReason{
		ID:        uuid.New(),
		UserID:    targetID,
		Reason:    fmt.Sprintf("%s (muted for %d minutes)", reason, durationMinutes),
		Type:      string(ActionMute),
		CreatedAt: time.Now(),
	}
	entry := newLog(moderatorID, ActionMute, sanction.Reason)
	entry.TargetUserID = targetUser(targetID)
	return s.repo.SetMute(ctx, targetID, true, durationMinutes, expires, sanction, entry)
}

// Unmute lifts an active mute
func (s *Service) Unmute(ctx context.Context, moderatorID, targetID uuid.UUID, reason string) error {
	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if !target.IsMuted {
		return ErrNotMuted
	}

	entry := newLog(moderatorID, ActionUnmute, reason)
	entry.TargetUserID = targetUser(targetID)
	return s.repo.SetMute(ctx, targetID, false, 0, sql.NullTime{}, nil, entry)
}

// Ban locks a user out for the given number of hours. An active ban
// is never stacked or extended.
func (s *Service) Ban(ctx context.Context, moderatorID, targetID uuid.UUID, reason string, durationHours int) error {
	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if target.IsBanned {
		return ErrAlreadyBanned
	}

	expires := sql.NullTime{Time: time.Now().Add(time.Duration(durationHours) * time.Hour), Valid: true}
	sanction := &user.SanctionReason{
		ID:        uuid.New(),
		UserID:    targetID,
		Reason:    fmt.Sprintf("%s (banned for %d hours)", reason, durationHours),
		Type:      string(ActionBan),
		CreatedAt: time.Now(),
	}
	entry := newLog(moderatorID, ActionBan, sanction.Reason)
	entry.TargetUserID = targetUser(targetID)
	return s.repo.SetBan(ctx, targetID, true, durationHours, expires, sanction, entry)
}

// Unban lifts an active ban
func (s *Service) Unban(ctx context.Context, moderatorID, targetID uuid.UUID, reason string) error {
	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if !target.IsBanned {
		return ErrNotBanned
	}

	entry := newLog(moderatorID, ActionUnban, reason)
	entry.TargetUserID = targetUser(targetID)
	return s.repo.SetBan(ctx, targetID, false, 0, sql.NullTime{}, nil, entry)
}

// SubmitUserReport files a report against a user. Called by the
// social service.
func (s *Service) SubmitUserReport(ctx context.Context, reporterID, targetID uuid.UUID, reason string) error {
	report := &Report{
		ID:           uuid.New(),
		ReporterID:   reporterID,
		TargetUserID: targetUser(targetID),
		Reason:       reason,
		Status:       ReportPending,
		CreatedAt:    time.Now(),
	}
	return s.repo.CreateReport(ctx, report)
}

// SubmitMessageReport files a report against a message. Called by the
// message service after the flag bookkeeping passed.
func (s *Service) SubmitMessageReport(ctx context.Context, reporterID, messageID uuid.UUID, reason string) error {
	report := &Report{
		ID:         uuid.New(),
		ReporterID: reporterID,
		MessageID:  uuid.NullUUID{UUID: messageID, Valid: true},
		Reason:     reason,
		Status:     ReportPending,
		CreatedAt:  time.Now(),
	}
	return s.repo.CreateReport(ctx, report)
}

// GetReport fetches one report
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	report, err := s.repo.GetReportByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return report, nil
}

// ListReports pages reports, optionally narrowed to one status
func (s *Service) ListReports(ctx context.Context, status *ReportStatus, page, limit int) ([]*Report, int, error) {
	return s.repo.ListReports(ctx, status, (page-1)*limit, limit)
}

// SearchReports searches report reasons
func (s *Service) SearchReports(ctx context.Context, query string, page, limit int) ([]*Report, int, error) {
	return s.repo.SearchReports(ctx, query, (page-1)*limit, limit)
}

// ChangeReportStatus moves a report to a new workflow state. Any
// transition is allowed, resolved reports can be reopened.
func (s *Service) ChangeReportStatus(ctx context.Context, moderatorID, reportID uuid.UUID, status ReportStatus) error {
	report, err := s.GetReport(ctx, reportID)
	if err != nil {
		return err
	}

	entry := newLog(moderatorID, ActionReportStatus, fmt.Sprintf("%s -> %s", report.Status, status))
	entry.ReportID = uuid.NullUUID{UUID: report.ID, Valid: true}
	entry.TargetUserID = report.TargetUserID
	entry.TargetMessageID = report.MessageID
	return s.repo.UpdateReportStatus(ctx, report.ID, status, moderatorID, entry)
}

// ListReportedMessages pages messages currently flagged by reporters
func (s *Service) ListReportedMessages(ctx context.Context, page, limit int) ([]*message.Message, int, error) {
	return s.messages.ListByStatus(ctx, message.StatusFlagged, page, limit)
}

// SearchReportedMessages searches content of flagged messages
func (s *Service) SearchReportedMessages(ctx context.Context, query string, page, limit int) ([]*message.Message, int, error) {
	return s.messages.SearchByStatus(ctx, message.StatusFlagged, query, page, limit)
}

// DeleteReportedMessage wipes a flagged message and records the action
func (s *Service) DeleteReportedMessage(ctx context.Context, moderatorID, messageID uuid.UUID, reason string) error {
	m, err := s.messages.DeleteAsModerator(ctx, moderatorID, messageID)
	if err != nil {
		return err
	}

	entry := newLog(moderatorID, ActionDeleteMessage, reason)
	entry.TargetMessageID = uuid.NullUUID{UUID: m.ID, Valid: true}
	entry.TargetUserID = targetUser(m.SenderID)
	return s.repo.AddLog(ctx, entry)
}

// ListUsers pages user accounts for the moderation console
func (s *Service) ListUsers(ctx context.Context, filter UserFilter, search string, page, limit int) ([]*user.User, int, error) {
	if !filter.Valid() {
		return nil, 0, ErrInvalidFilter
	}
	return s.repo.ListUsers(ctx, filter, search, (page-1)*limit, limit)
}

// GetUserWarnings lists a user's active warnings
func (s *Service) GetUserWarnings(ctx context.Context, targetID uuid.UUID) ([]*user.Warning, error) {
	if _, err := s.getTarget(ctx, targetID); err != nil {
		return nil, err
	}
	return s.userRepo.ListWarnings(ctx, targetID)
}

// GetUserSanctionReasons lists the audit copies of a user's sanctions
func (s *Service) GetUserSanctionReasons(ctx context.Context, targetID uuid.UUID) ([]*user.SanctionReason, error) {
	if _, err := s.getTarget(ctx, targetID); err != nil {
		return nil, err
	}
	return s.userRepo.ListSanctionReasons(ctx, targetID)
}

// RecordAction writes a standalone audit entry, used by the admin
// service for role and global chat changes
func (s *Service) RecordAction(ctx context.Context, entry *ModerationLog) error {
	return s.repo.AddLog(ctx, entry)
}

// ListLogs pages the audit trail
func (s *Service) ListLogs(ctx context.Context, page, limit int) ([]*ModerationLog, int, error) {
	return s.repo.ListLogs(ctx, (page-1)*limit, limit)
}

// CreateReportReason adds a canned report reason
func (s *Service) CreateReportReason(ctx context.Context, req CreateReasonRequest) (*ReportReason, error) {
	reason := &ReportReason{
		ID:        uuid.New(),
		Category:  req.Category,
		Title:     req.Title,
		Priority:  req.Priority,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateReason(ctx, reason); err != nil {
		return nil, err
	}
	return reason, nil
}

// ListReportReasons lists the canned report reasons
func (s *Service) ListReportReasons(ctx context.Context) ([]*ReportReason, error) {
	return s.repo.ListReasons(ctx)
}

// DeleteReportReason removes a canned report reason
func (s *Service) DeleteReportReason(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteReason(ctx, id)
}
