package social

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/echo-era/echo-era-api/internal/domain/user"
)

// PrivateChatCreator opens a direct chat between two users. Backed by
// the chat service, wired from main.
type PrivateChatCreator interface {
	CreatePrivateChat(ctx context.Context, a, b uuid.UUID) (uuid.UUID, error)
}

// ReportSink accepts user reports. Backed by the moderation service.
type ReportSink interface {
	SubmitUserReport(ctx context.Context, reporterID, targetID uuid.UUID, reason string) error
}

// Service handles the social graph: friendships, requests and blocks
type Service struct {
	repo     Repository
	userRepo user.Repository
	chats    PrivateChatCreator
	reports  ReportSink
}

// NewService creates social service
func NewService(repo Repository, userRepo user.Repository) *Service {
	return &Service{repo: repo, userRepo: userRepo}
}

// SetChatCreator wires the private chat opener (avoids a package cycle)
func (s *Service) SetChatCreator(c PrivateChatCreator) { s.chats = c }

// SetReportSink wires the report sink
func (s *Service) SetReportSink(r ReportSink) { s.reports = r }

func (s *Service) getTarget(ctx context.Context, actorID, targetID uuid.UUID) (*user.User, error) {
	if actorID == targetID {
		return nil, ErrSelfAction
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil || target.IsDeleted() {
		return nil, ErrUserNotFound
	}
	return target, nil
}

// SendFriendRequest creates a pending request toward the target user
func (s *Service) SendFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (*FriendRequest, error) {
	if _, err := s.getTarget(ctx, senderID, recipientID); err != nil {
		return nil, err
	}

	for _, pair := range [][2]uuid.UUID{{senderID, recipientID}, {recipientID, senderID}} {
		blocked, err := s.repo.HasBlocked(ctx, pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, ErrBlocked
		}
	}

	friends, err := s.repo.AreFriends(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, ErrAlreadyFriends
	}

	pending, err := s.repo.GetPendingBetween(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, ErrRequestPending
	}

	req := &FriendRequest{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      RequestPending,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// AcceptFriendRequest resolves the request, creates the friendship
// and opens the private chat between the two users
func (s *Service) AcceptFriendRequest(ctx context.Context, userID, requestID uuid.UUID) error {
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.RecipientID != userID {
		return ErrNotRecipient
	}
	if req.Status != RequestPending {
		return ErrRequestNotPending
	}

	if err := s.repo.ResolveRequest(ctx, requestID, RequestAccepted); err != nil {
		return err
	}
	if err := s.repo.CreateFriendship(ctx, &Friendship{
		ID:        uuid.New(),
		UserID:    req.SenderID,
		FriendID:  req.RecipientID,
		CreatedAt: time.Now(),
	}); err != nil {
		return err
	}

	if s.chats != nil {
		if _, err := s.chats.CreatePrivateChat(ctx, req.SenderID, req.RecipientID); err != nil {
			log.Error().Err(err).
				Str("sender_id", req.SenderID.String()).
				Str("recipient_id", req.RecipientID.String()).
				Msg("failed to open private chat for new friendship")
		}
	}
	return nil
}

// DeclineFriendRequest resolves the request without creating a
// friendship
func (s *Service) DeclineFriendRequest(ctx context.Context, userID, requestID uuid.UUID) error {
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.RecipientID != userID {
		return ErrNotRecipient
	}
	if req.Status != RequestPending {
		return ErrRequestNotPending
	}
	return s.repo.ResolveRequest(ctx, requestID, RequestDeclined)
}

// CancelFriendRequest removes the sender's own pending request
func (s *Service) CancelFriendRequest(ctx context.Context, userID, requestID uuid.UUID) error {
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.SenderID != userID {
		return ErrNotSender
	}
	if req.Status != RequestPending {
		return ErrRequestNotPending
	}
	return s.repo.DeleteRequest(ctx, requestID)
}

// ListIncomingRequests returns pending requests sent to the user
func (s *Service) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]*FriendRequest, error) {
	return s.repo.ListIncoming(ctx, userID)
}

// ListOutgoingRequests returns pending requests sent by the user
func (s *Service) ListOutgoingRequests(ctx context.Context, userID uuid.UUID) ([]*FriendRequest, error) {
	return s.repo.ListOutgoing(ctx, userID)
}

// ListFriends returns the user's friends
func (s *Service) ListFriends(ctx context.Context, userID uuid.UUID) ([]*user.User, error) {
	return s.repo.ListFriends(ctx, userID)
}

// RemoveFriend severs the friendship
func (s *Service) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	if userID == friendID {
		return ErrSelfAction
	}
	friends, err := s.repo.AreFriends(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if !friends {
		return ErrNotFriends
	}
	return s.repo.DeleteFriendship(ctx, userID, friendID)
}

// BlockUser blocks a user. An existing friendship is severed and
// pending requests between the two are dropped.
func (s *Service) BlockUser(ctx context.Context, blockerID, targetID uuid.UUID) error {
	if _, err := s.getTarget(ctx, blockerID, targetID); err != nil {
		return err
	}

	blocked, err := s.repo.HasBlocked(ctx, blockerID, targetID)
	if err != nil {
		return err
	}
	if blocked {
		return ErrAlreadyBlocked
	}

	if err := s.repo.CreateBlock(ctx, &BlockRelation{
		ID:            uuid.New(),
		BlockerUserID: blockerID,
		BlockedUserID: targetID,
		CreatedAt:     time.Now(),
	}); err != nil {
		return err
	}

	if err := s.repo.DeleteFriendship(ctx, blockerID, targetID); err != nil {
		return err
	}
	if pending, err := s.repo.GetPendingBetween(ctx, blockerID, targetID); err == nil && pending != nil {
		_ = s.repo.DeleteRequest(ctx, pending.ID)
	}
	return nil
}

// UnblockUser removes the block
func (s *Service) UnblockUser(ctx context.Context, blockerID, targetID uuid.UUID) error {
	blocked, err := s.repo.HasBlocked(ctx, blockerID, targetID)
	if err != nil {
		return err
	}
	if !blocked {
		return ErrNotBlocked
	}
	return s.repo.DeleteBlock(ctx, blockerID, targetID)
}

// ListBlockedUsers returns all users blocked by the given user
func (s *Service) ListBlockedUsers(ctx context.Context, userID uuid.UUID) ([]*BlockRelation, error) {
	return s.repo.ListBlocks(ctx, userID)
}

// HasBlocked checks a single block direction
func (s *Service) HasBlocked(ctx context.Context, blockerID, targetID uuid.UUID) (bool, error) {
	return s.repo.HasBlocked(ctx, blockerID, targetID)
}

// HasBlockedChat checks whether the user hid the chat
func (s *Service) HasBlockedChat(ctx context.Context, userID, chatID uuid.UUID) (bool, error) {
	return s.repo.HasBlockedChat(ctx, userID, chatID)
}

// BlockChat hides a chat for the user
func (s *Service) BlockChat(ctx context.Context, userID, chatID uuid.UUID) error {
	blocked, err := s.repo.HasBlockedChat(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if blocked {
		return ErrChatBlocked
	}
	return s.repo.CreateChatBlock(ctx, &ChatBlock{
		ID:        uuid.New(),
		UserID:    userID,
		ChatID:    chatID,
		CreatedAt: time.Now(),
	})
}

// UnblockChat unhides a chat for the user
func (s *Service) UnblockChat(ctx context.Context, userID, chatID uuid.UUID) error {
	blocked, err := s.repo.HasBlockedChat(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if !blocked {
		return ErrChatNotBlocked
	}
	return s.repo.DeleteChatBlock(ctx, userID, chatID)
}

// ListBlockedChats returns chats the user has blocked
func (s *Service) ListBlockedChats(ctx context.Context, userID uuid.UUID) ([]*ChatBlock, error) {
	return s.repo.ListChatBlocks(ctx, userID)
}

// ReportUser files a report against another user
func (s *Service) ReportUser(ctx context.Context, reporterID, targetID uuid.UUID, reason string) error {
	if _, err := s.getTarget(ctx, reporterID, targetID); err != nil {
		return err
	}
	if s.reports == nil {
		return nil
	}
	return s.reports.SubmitUserReport(ctx, reporterID, targetID, reason)
}

// CleanupDeletedUser removes the social ties of a deleted account
func (s *Service) CleanupDeletedUser(ctx context.Context, userID uuid.UUID) error {
	return s.repo.PurgeUser(ctx, userID)
}
