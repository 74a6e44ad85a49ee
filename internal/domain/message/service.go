package message

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/echo-era/echo-era-api/internal/domain/user"
)

// ParticipantChecker reports chat membership. Backed by the chat
// service, wired from main.
type ParticipantChecker interface {
	IsParticipant(ctx context.Context, userID, chatID uuid.UUID) (bool, error)
}

// BlockChecker answers whether one user has blocked another. Backed by
// the social service, used to mask content from blocked senders.
type BlockChecker interface {
	HasBlocked(ctx context.Context, blockerID, targetID uuid.UUID) (bool, error)
}

// ReportSink accepts message reports. Backed by the moderation service.
type ReportSink interface {
	SubmitMessageReport(ctx context.Context, reporterID, messageID uuid.UUID, reason string) error
}

// Placeholder content shown instead of hidden message bodies.
const (
	maskDeleted = "Message deleted"
	maskBlocked = "Blocked user"
)

// Service handles chat messages
type Service struct {
	repo     Repository
	userRepo user.Repository
	chats    ParticipantChecker
	blocks   BlockChecker
	reports  ReportSink
}

// NewService creates message service
func NewService(repo Repository, userRepo user.Repository, chats ParticipantChecker, blocks BlockChecker) *Service {
	return &Service{repo: repo, userRepo: userRepo, chats: chats, blocks: blocks}
}

// SetReportSink wires the report sink (avoids a package cycle)
func (s *Service) SetReportSink(r ReportSink) { s.reports = r }

func (s *Service) requireParticipant(ctx context.Context, userID, chatID uuid.UUID) error {
	ok, err := s.chats.IsParticipant(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotParticipant
	}
	return nil
}

func (s *Service) getMessage(ctx context.Context, id uuid.UUID) (*Message, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMessageNotFound
	}
	return m, nil
}

// Send posts a message to a chat. The sender must be a participant and
// must not be muted. Mute expiry is advisory, the flag alone decides.
func (s *Service) Send(ctx context.Context, senderID, chatID uuid.UUID, content string) (*Message, error) {
	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if sender == nil || sender.IsDeleted() {
		return nil, ErrNotParticipant
	}
	if sender.IsMuted {
		return nil, ErrSenderMuted
	}
	if err := s.requireParticipant(ctx, senderID, chatID); err != nil {
		return nil, err
	}

	m := &Message{
		ID:               uuid.New(),
		ChatID:           chatID,
		SenderID:         senderID,
		Content:          content,
		ModerationStatus: StatusNone,
		DeletedBy:        []string{},
		CreatedAt:        time.Now(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Edit replaces the content of the sender's own message. The prior
// content goes into the append-only edit history first.
func (s *Service) Edit(ctx context.Context, editorID, messageID uuid.UUID, content string) (*Message, error) {
	m, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if m.SenderID != editorID {
		return nil, ErrNotSender
	}
	if m.IsDeleted {
		return nil, ErrMessageDeleted
	}

	edit := &Edit{
		ID:           uuid.New(),
		MessageID:    m.ID,
		PriorContent: m.Content,
		EditorID:     editorID,
		EditorRole:   EditorSender,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.AddEdit(ctx, edit); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateContent(ctx, m.ID, content); err != nil {
		return nil, err
	}
	m.Content = content
	return m, nil
}

// Delete soft-deletes the sender's own message. The moderation status
// is left untouched, only moderators mark messages unapproved.
func (s *Service) Delete(ctx context.Context, actorID, messageID uuid.UUID) error {
	m, err := s.getMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if m.SenderID != actorID {
		return ErrNotSender
	}
	if m.IsDeleted {
		return ErrAlreadyDeleted
	}
	return s.repo.SoftDelete(ctx, m.ID, actorID, m.ModerationStatus)
}

// ListChatMessages returns a page of chat history for a participant.
// Deleted messages and messages from blocked senders come back with
// placeholder content.
func (s *Service) ListChatMessages(ctx context.Context, viewerID, chatID uuid.UUID, page, limit int) ([]*Message, int, error) {
	if err := s.requireParticipant(ctx, viewerID, chatID); err != nil {
		return nil, 0, err
	}
	messages, total, err := s.repo.ListByChat(ctx, chatID, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	if err := s.maskForViewer(ctx, viewerID, messages); err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// SearchChatMessages searches live message content within a chat
func (s *Service) SearchChatMessages(ctx context.Context, viewerID, chatID uuid.UUID, query string, page, limit int) ([]*Message, int, error) {
	if err := s.requireParticipant(ctx, viewerID, chatID); err != nil {
		return nil, 0, err
	}
	messages, total, err := s.repo.SearchInChat(ctx, chatID, query, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	if err := s.maskForViewer(ctx, viewerID, messages); err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (s *Service) maskForViewer(ctx context.Context, viewerID uuid.UUID, messages []*Message) error {
	blocked := make(map[uuid.UUID]bool)
	for _, m := range messages {
		if m.IsDeleted {
			m.Content = maskDeleted
			continue
		}
		if s.blocks == nil || m.SenderID == viewerID {
			continue
		}
		b, seen := blocked[m.SenderID]
		if !seen {
			var err error
			b, err = s.blocks.HasBlocked(ctx, viewerID, m.SenderID)
			if err != nil {
				return err
			}
			blocked[m.SenderID] = b
		}
		if b {
			m.Content = maskBlocked
		}
	}
	return nil
}

// MarkChatRead records read receipts for every unseen message in the
// chat on behalf of the viewer
func (s *Service) MarkChatRead(ctx context.Context, viewerID, chatID uuid.UUID) error {
	if err := s.requireParticipant(ctx, viewerID, chatID); err != nil {
		return err
	}
	return s.repo.MarkChatRead(ctx, chatID, viewerID)
}

// EditHistory returns the append-only edit log of a message, visible
// to chat participants only
func (s *Service) EditHistory(ctx context.Context, viewerID, messageID uuid.UUID) ([]*Edit, error) {
	m, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, viewerID, m.ChatID); err != nil {
		return nil, err
	}
	return s.repo.ListEdits(ctx, m.ID)
}

// Report flags a message on behalf of the reporter. The flag list is
// deduplicated per user; the report rows are not, every call that gets
// past the duplicate-flag check files a fresh report.
func (s *Service) Report(ctx context.Context, reporterID, messageID uuid.UUID, reason string) error {
	m, err := s.getMessage(ctx, messageID)
	if err != nil {
		return err
	}
	flagged, err := s.repo.HasFlagged(ctx, m.ID, reporterID)
	if err != nil {
		return err
	}
	if flagged {
		return ErrAlreadyFlagged
	}

	flag := &Flag{MessageID: m.ID, UserID: reporterID, CreatedAt: time.Now()}
	if err := s.repo.AddFlag(ctx, flag); err != nil {
		return err
	}
	if m.ModerationStatus == StatusNone {
		if err := s.repo.SetModerationStatus(ctx, m.ID, StatusFlagged); err != nil {
			return err
		}
	}

	if s.reports == nil {
		log.Warn().Str("message_id", m.ID.String()).Msg("no report sink wired, message report dropped")
		return nil
	}
	return s.reports.SubmitMessageReport(ctx, reporterID, m.ID, reason)
}

// Get fetches a single message, used by the moderation service
func (s *Service) Get(ctx context.Context, messageID uuid.UUID) (*Message, error) {
	return s.getMessage(ctx, messageID)
}

// ListByStatus pages messages in a given moderation state, used by the
// moderation service
func (s *Service) ListByStatus(ctx context.Context, status ModerationStatus, page, limit int) ([]*Message, int, error) {
	return s.repo.ListByStatus(ctx, status, (page-1)*limit, limit)
}

// SearchByStatus searches message content within a moderation state
func (s *Service) SearchByStatus(ctx context.Context, status ModerationStatus, query string, page, limit int) ([]*Message, int, error) {
	return s.repo.SearchByStatus(ctx, status, query, (page-1)*limit, limit)
}

// DeleteAsModerator wipes a flagged message. The prior content is kept
// in the edit history with moderator context and the message is marked
// unapproved.
func (s *Service) DeleteAsModerator(ctx context.Context, moderatorID, messageID uuid.UUID) (*Message, error) {
	m, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if m.IsDeleted {
		return nil, ErrAlreadyDeleted
	}
	if m.ModerationStatus != StatusFlagged {
		return nil, ErrNotFlagged
	}

	edit := &Edit{
		ID:           uuid.New(),
		MessageID:    m.ID,
		PriorContent: m.Content,
		EditorID:     moderatorID,
		EditorRole:   EditorModerator,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.AddEdit(ctx, edit); err != nil {
		return nil, err
	}
	if err := s.repo.SoftDelete(ctx, m.ID, moderatorID, StatusUnapproved); err != nil {
		return nil, err
	}
	m.IsDeleted = true
	m.ModerationStatus = StatusUnapproved
	return m, nil
}
