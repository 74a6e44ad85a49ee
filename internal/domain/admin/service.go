package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/echo-era/echo-era-api/internal/domain/chat"
	"github.com/echo-era/echo-era-api/internal/domain/moderation"
	"github.com/echo-era/echo-era-api/internal/domain/user"
)

// ChatManager is the slice of the chat service used for global chats
type ChatManager interface {
	CreatePublicChat(ctx context.Context, creatorID uuid.UUID, creatorRole user.Role, name, description string) (*chat.Chat, error)
	UpdateChat(ctx context.Context, actorID, chatID uuid.UUID, name, description, avatarURL *string) (*chat.Chat, error)
	DeleteChat(ctx context.Context, actorID, chatID uuid.UUID) error
}

// Auditor is the slice of the moderation service the admin surface
// writes its audit trail through
type Auditor interface {
	RecordAction(ctx context.Context, entry *moderation.ModerationLog) error
	ListLogs(ctx context.Context, page, limit int) ([]*moderation.ModerationLog, int, error)
	CreateReportReason(ctx context.Context, req moderation.CreateReasonRequest) (*moderation.ReportReason, error)
	DeleteReportReason(ctx context.Context, id uuid.UUID) error
}

// Service is the admin-only surface: moderator appointments, global
// chats, audit trail and canned report reasons
type Service struct {
	userRepo user.Repository
	chats    ChatManager
	audit    Auditor
}

// NewService creates admin service
func NewService(userRepo user.Repository, chats ChatManager, audit Auditor) *Service {
	return &Service{userRepo: userRepo, chats: chats, audit: audit}
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

func (s *Service) record(ctx context.Context, entry *moderation.ModerationLog) {
	if err := s.audit.RecordAction(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", string(entry.Action)).Msg("failed to write admin audit entry")
	}
}

// AddModerator promotes a plain user to moderator. The role change
// stamps last_logout so existing tokens with the old role die.
func (s *Service) AddModerator(ctx context.Context, adminID, targetID uuid.UUID) error {
	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Role == user.RoleModerator {
		return ErrAlreadyModerator
	}
	if target.IsAdmin() {
		return ErrTargetIsAdmin
	}

	if err := s.userRepo.UpdateRole(ctx, targetID, user.RoleModerator); err != nil {
		return err
	}
	s.record(ctx, &moderation.ModerationLog{
		ID:           uuid.New(),
		ModeratorID:  adminID,
		Action:       moderation.ActionAddModerator,
		TargetUserID: uuid.NullUUID{UUID: targetID, Valid: true},
		Reason:       "promoted to moderator",
		CreatedAt:    time.Now(),
	})
	return nil
}

// RemoveModerator demotes a moderator back to plain user
func (s *Service) RemoveModerator(ctx context.Context, adminID, targetID uuid.UUID) error {
	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		return ErrTargetIsAdmin
	}
	if target.Role != user.RoleModerator {
		return ErrNotModerator
	}

	if err := s.userRepo.UpdateRole(ctx, targetID, user.RoleUser); err != nil {
		return err
	}
	s.record(ctx, &moderation.ModerationLog{
		ID:           uuid.New(),
		ModeratorID:  adminID,
		Action:       moderation.ActionRemoveModerator,
		TargetUserID: uuid.NullUUID{UUID: targetID, Valid: true},
		Reason:       "demoted to user",
		CreatedAt:    time.Now(),
	})
	return nil
}

// CreateGlobalChat opens a platform-wide public chat
func (s *Service) CreateGlobalChat(ctx context.Context, adminID uuid.UUID, adminRole user.Role, name, description string) (*chat.Chat, error) {
	c, err := s.chats.CreatePublicChat(ctx, adminID, adminRole, name, description)
	if err != nil {
		return nil, err
	}
	s.record(ctx, &moderation.ModerationLog{
		ID:           uuid.New(),
		ModeratorID:  adminID,
		Action:       moderation.ActionCreateChat,
		TargetChatID: uuid.NullUUID{UUID: c.ID, Valid: true},
		Reason:       name,
		CreatedAt:    time.Now(),
	})
	return c, nil
}

// UpdateGlobalChat edits a public chat's metadata
func (s *Service) UpdateGlobalChat(ctx context.Context, adminID, chatID uuid.UUID, name, description, avatarURL *string) (*chat.Chat, error) {
	c, err := s.chats.UpdateChat(ctx, adminID, chatID, name, description, avatarURL)
	if err != nil {
		return nil, err
	}
	s.record(ctx, &moderation.ModerationLog{
		ID:           uuid.New(),
		ModeratorID:  adminID,
		Action:       moderation.ActionUpdateChat,
		TargetChatID: uuid.NullUUID{UUID: chatID, Valid: true},
		Reason:       "chat settings updated",
		CreatedAt:    time.Now(),
	})
	return c, nil
}

// DeleteGlobalChat removes a public chat and everything in it
func (s *Service) DeleteGlobalChat(ctx context.Context, adminID, chatID uuid.UUID) error {
	if err := s.chats.DeleteChat(ctx, adminID, chatID); err != nil {
		return err
	}
	s.record(ctx, &moderation.ModerationLog{
		ID:           uuid.New(),
		ModeratorID:  adminID,
		Action:       moderation.ActionDeleteChat,
		TargetChatID: uuid.NullUUID{UUID: chatID, Valid: true},
		Reason:       "chat deleted",
		CreatedAt:    time.Now(),
	})
	return nil
}

// ListLogs pages the moderation audit trail
func (s *Service) ListLogs(ctx context.Context, page, limit int) ([]*moderation.ModerationLog, int, error) {
	return s.audit.ListLogs(ctx, page, limit)
}

// CreateReportReason adds a canned report reason
func (s *Service) CreateReportReason(ctx context.Context, req moderation.CreateReasonRequest) (*moderation.ReportReason, error) {
	return s.audit.CreateReportReason(ctx, req)
}

// DeleteReportReason removes a canned report reason
func (s *Service) DeleteReportReason(ctx context.Context, id uuid.UUID) error {
	return s.audit.DeleteReportReason(ctx, id)
}
