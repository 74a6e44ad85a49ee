package chat

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/echo-era/echo-era-api/internal/domain/user"
)

// BlockChecker answers whether a user has blocked a chat. Backed by
// the social service.
type BlockChecker interface {
	HasBlockedChat(ctx context.Context, userID, chatID uuid.UUID) (bool, error)
}

// Service handles chat membership business logic. State rules live in
// the pure transition functions in membership.go; this layer loads,
// applies and persists.
type Service struct {
	repo     Repository
	userRepo user.Repository
	blocks   BlockChecker
}

// NewService creates chat service
func NewService(repo Repository, userRepo user.Repository, blocks BlockChecker) *Service {
	return &Service{repo: repo, userRepo: userRepo, blocks: blocks}
}

func (s *Service) getChat(ctx context.Context, chatID uuid.UUID) (*Chat, error) {
	chat, err := s.repo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	return chat, nil
}

func (s *Service) requireUser(ctx context.Context, userID uuid.UUID) error {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil || u.IsDeleted() {
		return ErrUserNotFound
	}
	return nil
}

// CreateGroupChat creates a group chat with the creator as admin and
// every invitee as a plain participant. At least two invitees are
// required and the creator cannot appear among them.
func (s *Service) CreateGroupChat(ctx context.Context, creatorID uuid.UUID, name, description string, inviteeIDs []uuid.UUID) (*Chat, error) {
	if len(inviteeIDs) < 2 {
		return nil, ErrTooFewInvitees
	}
	seen := map[uuid.UUID]bool{creatorID: true}
	for _, id := range inviteeIDs {
		if id == creatorID {
			return nil, ErrSelfInvite
		}
		if seen[id] {
			return nil, ErrAlreadyParticipant
		}
		seen[id] = true
		if err := s.requireUser(ctx, id); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	chat := &Chat{
		ID:          uuid.New(),
		Type:        TypeGroup,
		Name:        sql.NullString{String: name, Valid: name != ""},
		Description: sql.NullString{String: description, Valid: description != ""},
		CreatedBy:   creatorID,
		CreatedAt:   now,
	}

	participants := []Participant{{ChatID: chat.ID, UserID: creatorID, Role: RoleAdmin, JoinedAt: now}}
	for _, id := range inviteeIDs {
		participants = append(participants, Participant{ChatID: chat.ID, UserID: id, Role: RoleUser, JoinedAt: now})
	}

	if err := s.repo.Create(ctx, chat, participants); err != nil {
		return nil, err
	}
	return chat, nil
}

// CreatePublicChat creates a public chat. Only platform admins may do
// this.
func (s *Service) CreatePublicChat(ctx context.Context, creatorID uuid.UUID, creatorRole user.Role, name, description string) (*Chat, error) {
	if !creatorRole.Permits(user.ActionManagePublicChat) {
		return nil, ErrPublicRequiresAdmin
	}

	now := time.Now()
	chat := &Chat{
		ID:          uuid.New(),
		Type:        TypePublic,
		Name:        sql.NullString{String: name, Valid: name != ""},
		Description: sql.NullString{String: description, Valid: description != ""},
		CreatedBy:   creatorID,
		CreatedAt:   now,
	}
	participants := []Participant{{ChatID: chat.ID, UserID: creatorID, Role: RoleAdmin, JoinedAt: now}}

	if err := s.repo.Create(ctx, chat, participants); err != nil {
		return nil, err
	}
	return chat, nil
}

// CreatePrivateChat opens the direct chat between two users. Called
// when a friendship forms, never through the chat creation endpoint.
// Returns the existing chat when one is already open.
func (s *Service) CreatePrivateChat(ctx context.Context, a, b uuid.UUID) (uuid.UUID, error) {
	existing, err := s.repo.FindPrivateChatBetween(ctx, a, b)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	now := time.Now()
	chat := &Chat{
		ID:        uuid.New(),
		Type:      TypePrivate,
		CreatedBy: a,
		CreatedAt: now,
	}
	participants := []Participant{
		{ChatID: chat.ID, UserID: a, Role: RoleUser, JoinedAt: now},
		{ChatID: chat.ID, UserID: b, Role: RoleUser, JoinedAt: now},
	}

	if err := s.repo.Create(ctx, chat, participants); err != nil {
		return uuid.Nil, err
	}
	return chat.ID, nil
}

// UpdateChat changes name, description or avatar of a group or
// public chat. Actor must hold the chat admin role.
func (s *Service) UpdateChat(ctx context.Context, actorID, chatID uuid.UUID, name, description, avatarURL *string) (*Chat, error) {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.Type == TypePrivate {
		return nil, ErrPrivateChatImmutable
	}

	participants, err := s.repo.GetParticipants(ctx, chatID)
	if err != nil {
		return nil, err
	}
	actor, ok := FindParticipant(participants, actorID)
	if !ok {
		return nil, ErrNotParticipant
	}
	if actor.Role != RoleAdmin {
		return nil, ErrForbidden
	}

	if name != nil {
		chat.Name = sql.NullString{String: *name, Valid: *name != ""}
	}
	if description != nil {
		chat.Description = sql.NullString{String: *description, Valid: *description != ""}
	}
	if avatarURL != nil {
		chat.AvatarURL = sql.NullString{String: *avatarURL, Valid: *avatarURL != ""}
	}

	if err := s.repo.Update(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// RequestJoin files a join invitation for targetID. Participants may
// invite others; any user may request to join a public chat
// themselves.
func (s *Service) RequestJoin(ctx context.Context, actorID, chatID, targetID uuid.UUID) (*JoinRequest, error) {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.Type == TypePrivate {
		return nil, ErrPrivateChatImmutable
	}
	if err := s.requireUser(ctx, targetID); err != nil {
		return nil, err
	}

	participants, err := s.repo.GetParticipants(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if actorID != targetID {
		if _, ok := FindParticipant(participants, actorID); !ok {
			return nil, ErrNotParticipant
		}
	} else if chat.Type != TypePublic {
		// Self-requests only make sense for public chats
		return nil, ErrForbidden
	}

	if s.blocks != nil {
		blocked, err := s.blocks.HasBlockedChat(ctx, targetID, chatID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, ErrChatBlocked
		}
	}

	if _, ok := FindParticipant(participants, targetID); ok {
		return nil, ErrAlreadyParticipant
	}
	pending, err := s.repo.GetPendingJoinRequest(ctx, chatID, targetID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, ErrRequestPending
	}

	req := &JoinRequest{
		ID:        uuid.New(),
		ChatID:    chatID,
		UserID:    targetID,
		InvitedBy: actorID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateJoinRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// AcceptJoin consumes the invitation and adds the invited user as a
// plain participant
func (s *Service) AcceptJoin(ctx context.Context, actorID, requestID uuid.UUID) error {
	req, err := s.repo.GetJoinRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.UserID != actorID {
		return ErrNotInvited
	}

	participants, err := s.repo.GetParticipants(ctx, req.ChatID)
	if err != nil {
		return err
	}
	if _, ok := FindParticipant(participants, actorID); ok {
		// Race between two accepts: the request still gets consumed
		_ = s.repo.DeleteJoinRequest(ctx, requestID)
		return ErrAlreadyParticipant
	}

	if err := s.repo.AddParticipant(ctx, Participant{
		ChatID:   req.ChatID,
		UserID:   actorID,
		Role:     RoleUser,
		JoinedAt: time.Now(),
	}); err != nil {
		return err
	}
	return s.repo.DeleteJoinRequest(ctx, requestID)
}

// DeclineJoin consumes the invitation without joining
func (s *Service) DeclineJoin(ctx context.Context, actorID, requestID uuid.UUID) error {
	req, err := s.repo.GetJoinRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.UserID != actorID {
		return ErrNotInvited
	}
	return s.repo.DeleteJoinRequest(ctx, requestID)
}

// CancelJoin withdraws an invitation the actor sent
func (s *Service) CancelJoin(ctx context.Context, actorID, requestID uuid.UUID) error {
	req, err := s.repo.GetJoinRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.InvitedBy != actorID {
		return ErrNotInviter
	}
	return s.repo.DeleteJoinRequest(ctx, requestID)
}

// ListMyInvitations returns pending invitations addressed to the user
func (s *Service) ListMyInvitations(ctx context.Context, userID uuid.UUID) ([]*JoinRequest, error) {
	return s.repo.ListJoinRequestsForUser(ctx, userID)
}

// ListChatInvitations returns pending invitations of a chat, visible
// to its moderators and admins
func (s *Service) ListChatInvitations(ctx context.Context, actorID, chatID uuid.UUID) ([]*JoinRequest, error) {
	if _, err := s.getChat(ctx, chatID); err != nil {
		return nil, err
	}
	participants, err := s.repo.GetParticipants(ctx, chatID)
	if err != nil {
		return nil, err
	}
	actor, ok := FindParticipant(participants, actorID)
	if !ok {
		return nil, ErrNotParticipant
	}
	if !actor.Role.AtLeast(RoleModerator) {
		return nil, ErrForbidden
	}
	return s.repo.ListJoinRequestsForChat(ctx, chatID)
}

// ChangeParticipantRole promotes or demotes a participant
func (s *Service) ChangeParticipantRole(ctx context.Context, actorID, chatID, targetID uuid.UUID, newRole ChatRole) error {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return err
	}
	if chat.Type == TypePrivate {
		return ErrPrivateChatImmutable
	}
	if !newRole.Valid() {
		return ErrInvalidChatType
	}

	participants, err := s.repo.GetParticipants(ctx, chatID)
	if err != nil {
		return err
	}
	next, err := ChangeRole(participants, actorID, targetID, newRole)
	if err != nil {
		return err
	}
	return s.repo.ReplaceParticipants(ctx, chatID, next)
}

// RemoveParticipant kicks a participant out of the chat
func (s *Service) RemoveParticipant(ctx context.Context, actorID, chatID, targetID uuid.UUID) error {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return err
	}
	if chat.Type == TypePrivate {
		return ErrPrivateChatImmutable
	}

	participants, err := s.repo.GetParticipants(ctx, chatID)
	if err != nil {
		return err
	}
	next, err := Remove(participants, actorID, targetID)
	if err != nil {
		return err
	}
	return s.repo.ReplaceParticipants(ctx, chatID, next)
}

// Leave removes the actor from the chat, running admin succession
// when needed. A chat emptied by the last participant leaving is
// deleted.
func (s *Service) Leave(ctx context.Context, actorID, chatID uuid.UUID) error {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return err
	}
	if chat.Type == TypePrivate {
		return ErrPrivateChatImmutable
	}

	participants, err := s.repo.GetParticipants(ctx, chatID)
	if err != nil {
		return err
	}
	outcome, err := Leave(participants, actorID)
	if err != nil {
		return err
	}

	if outcome.DeleteChat {
		return s.repo.DeleteCascade(ctx, chatID, actorID)
	}
	if outcome.Promoted != nil {
		log.Info().
			Str("chat_id", chatID.String()).
			Str("successor_id", outcome.Promoted.String()).
			Msg("chat admin succession")
	}
	return s.repo.ReplaceParticipants(ctx, chatID, outcome.Participants)
}

// DeleteChat removes the chat and everything hanging off it. Actor
// must hold the chat admin role.
func (s *Service) DeleteChat(ctx context.Context, actorID, chatID uuid.UUID) error {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return err
	}
	if chat.Type == TypePrivate {
		return ErrPrivateChatImmutable
	}

	participants, err := s.repo.GetParticipants(ctx, chatID)
	if err != nil {
		return err
	}
	actor, ok := FindParticipant(participants, actorID)
	if !ok {
		return ErrNotParticipant
	}
	if actor.Role != RoleAdmin {
		return ErrForbidden
	}

	return s.repo.DeleteCascade(ctx, chatID, actorID)
}

// ListMyChats returns the user's chat list with previews and unread
// counts
func (s *Service) ListMyChats(ctx context.Context, userID uuid.UUID) ([]*ChatSummary, error) {
	return s.repo.ListForUser(ctx, userID)
}

// GetChatInfo returns a chat and its membership. Actor must be a
// participant unless the chat is public.
func (s *Service) GetChatInfo(ctx context.Context, actorID, chatID uuid.UUID) (*Chat, []Participant, error) {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	participants, err := s.repo.GetParticipants(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	if chat.Type != TypePublic {
		if _, ok := FindParticipant(participants, actorID); !ok {
			return nil, nil, ErrNotParticipant
		}
	}
	return chat, participants, nil
}

// SearchPublicChats finds public chats by name
func (s *Service) SearchPublicChats(ctx context.Context, query string, page, limit int) ([]*Chat, int, error) {
	offset := (page - 1) * limit
	return s.repo.SearchPublic(ctx, query, offset, limit)
}

// IsParticipant reports membership, used by the message service
func (s *Service) IsParticipant(ctx context.Context, userID, chatID uuid.UUID) (bool, error) {
	chat, err := s.repo.GetByID(ctx, chatID)
	if err != nil || chat == nil {
		return false, err
	}
	participants, err := s.repo.GetParticipants(ctx, chatID)
	if err != nil {
		return false, err
	}
	_, ok := FindParticipant(participants, userID)
	return ok, nil
}

// CleanupDeletedUser walks the deleted account out of every chat.
// Private chats collapse entirely; elsewhere the normal leave rules
// apply, succession included.
func (s *Service) CleanupDeletedUser(ctx context.Context, userID uuid.UUID) error {
	chatIDs, err := s.repo.ListChatIDsForUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, chatID := range chatIDs {
		chat, err := s.repo.GetByID(ctx, chatID)
		if err != nil || chat == nil {
			continue
		}
		if chat.Type == TypePrivate {
			if err := s.repo.DeleteCascade(ctx, chatID, userID); err != nil {
				log.Error().Err(err).Str("chat_id", chatID.String()).Msg("failed to drop private chat of deleted user")
			}
			continue
		}

		participants, err := s.repo.GetParticipants(ctx, chatID)
		if err != nil {
			continue
		}
		outcome, err := Leave(participants, userID)
		if err != nil {
			continue
		}
		if outcome.DeleteChat {
			if err := s.repo.DeleteCascade(ctx, chatID, userID); err != nil {
				log.Error().Err(err).Str("chat_id", chatID.String()).Msg("failed to delete emptied chat")
			}
			continue
		}
		if err := s.repo.ReplaceParticipants(ctx, chatID, outcome.Participants); err != nil {
			log.Error().Err(err).Str("chat_id", chatID.String()).Msg("failed to update membership for deleted user")
		}
	}
	return nil
}
