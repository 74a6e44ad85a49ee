package message

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/echo-era/echo-era-api/internal/domain/user"
)

type fakeRepo struct {
	messages map[uuid.UUID]*Message
	edits    []*Edit
	flags    []*Flag
	reads    []Read
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{messages: map[uuid.UUID]*Message{}}
}

func (f *fakeRepo) Create(ctx context.Context, m *Message) error {
	f.messages[m.ID] = m
	return nil
}
func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Message, error) {
	return f.messages[id], nil
}
func (f *fakeRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	if m, ok := f.messages[id]; ok {
		m.Content = content
	}
	return nil
}
func (f *fakeRepo) SetModerationStatus(ctx context.Context, id uuid.UUID, status ModerationStatus) error {
	if m, ok := f.messages[id]; ok {
		m.ModerationStatus = status
	}
	return nil
}
func (f *fakeRepo) SoftDelete(ctx context.Context, id, deleterID uuid.UUID, status ModerationStatus) error {
	if m, ok := f.messages[id]; ok {
		m.IsDeleted = true
		m.DeletedBy = append(m.DeletedBy, deleterID.String())
		m.ModerationStatus = status
	}
	return nil
}
func (f *fakeRepo) AddEdit(ctx context.Context, e *Edit) error {
	f.edits = append(f.edits, e)
	return nil
}
func (f *fakeRepo) ListEdits(ctx context.Context, messageID uuid.UUID) ([]*Edit, error) {
	var out []*Edit
	for _, e := range f.edits {
		if e.MessageID == messageID {
			out = append(out, e)
		}
	}
	return out, nil
}
func (f *fakeRepo) AddFlag(ctx context.Context, flag *Flag) error {
	f.flags = append(f.flags, flag)
	return nil
}
func (f *fakeRepo) HasFlagged(ctx context.Context, messageID, userID uuid.UUID) (bool, error) {
	for _, flag := range f.flags {
		if flag.MessageID == messageID && flag.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}
func (f *fakeRepo) MarkChatRead(ctx context.Context, chatID, userID uuid.UUID) error {
	for _, m := range f.messages {
		if m.ChatID == chatID && m.SenderID != userID {
			f.reads = append(f.reads, Read{MessageID: m.ID, UserID: userID, ReadAt: time.Now()})
		}
	}
	return nil
}
func (f *fakeRepo) ListByChat(ctx context.Context, chatID uuid.UUID, offset, limit int) ([]*Message, int, error) {
	var out []*Message
	for _, m := range f.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, len(out), nil
}
func (f *fakeRepo) SearchInChat(ctx context.Context, chatID uuid.UUID, query string, offset, limit int) ([]*Message, int, error) {
	var out []*Message
	for _, m := range f.messages {
		if m.ChatID == chatID && !m.IsDeleted && strings.Contains(m.Content, query) {
			out = append(out, m)
		}
	}
	return out, len(out), nil
}
func (f *fakeRepo) ListByStatus(ctx context.Context, status ModerationStatus, offset, limit int) ([]*Message, int, error) {
	var out []*Message
	for _, m := range f.messages {
		if m.ModerationStatus == status {
			out = append(out, m)
		}
	}
	return out, len(out), nil
}
func (f *fakeRepo) SearchByStatus(ctx context.Context, status ModerationStatus, query string, offset, limit int) ([]*Message, int, error) {
	var out []*Message
	for _, m := range f.messages {
		if m.ModerationStatus == status && strings.Contains(m.Content, query) {
			out = append(out, m)
		}
	}
	return out, len(out), nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*user.User
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error { return nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return f.users[id], nil
}
func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) GetByVerificationCode(ctx context.Context, code string) (*user.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) GetByPasswordResetCode(ctx context.Context, code string) (*user.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) Update(ctx context.Context, u *user.User) error           { return nil }
func (f *fakeUserRepo) UpdateLastLogout(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role user.Role) error {
	return nil
}
func (f *fakeUserRepo) AddNameHistory(ctx context.Context, entry *user.NameHistoryEntry) error {
	return nil
}
func (f *fakeUserRepo) ListWarnings(ctx context.Context, userID uuid.UUID) ([]*user.Warning, error) {
	return nil, nil
}
func (f *fakeUserRepo) ListSanctionReasons(ctx context.Context, userID uuid.UUID) ([]*user.SanctionReason, error) {
	return nil, nil
}
func (f *fakeUserRepo) Search(ctx context.Context, query string, offset, limit int) ([]*user.User, int, error) {
	return nil, 0, nil
}

type fakeParticipants struct {
	members map[uuid.UUID][]uuid.UUID
}

func (f *fakeParticipants) IsParticipant(ctx context.Context, userID, chatID uuid.UUID) (bool, error) {
	for _, id := range f.members[chatID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeBlocks struct {
	pairs [][2]uuid.UUID
}

func (f *fakeBlocks) HasBlocked(ctx context.Context, blockerID, targetID uuid.UUID) (bool, error) {
	for _, p := range f.pairs {
		if p[0] == blockerID && p[1] == targetID {
			return true, nil
		}
	}
	return false, nil
}

type submittedReport struct {
	reporterID uuid.UUID
	messageID  uuid.UUID
	reason     string
}

type fakeSink struct {
	reports []submittedReport
}

func (f *fakeSink) SubmitMessageReport(ctx context.Context, reporterID, messageID uuid.UUID, reason string) error {
	f.reports = append(f.reports, submittedReport{reporterID, messageID, reason})
	return nil
}

type msgFixture struct {
	svc    *Service
	repo   *fakeRepo
	users  *fakeUserRepo
	blocks *fakeBlocks
	sink   *fakeSink
	chatID uuid.UUID
	alice  uuid.UUID
	bob    uuid.UUID
	carol  uuid.UUID
}

func newFixture() *msgFixture {
	f := &msgFixture{
		repo:   newFakeRepo(),
		users:  &fakeUserRepo{users: map[uuid.UUID]*user.User{}},
		blocks: &fakeBlocks{},
		sink:   &fakeSink{},
		chatID: uuid.New(),
		alice:  uuid.New(),
		bob:    uuid.New(),
		carol:  uuid.New(),
	}
	for _, id := range []uuid.UUID{f.alice, f.bob, f.carol} {
		f.users.users[id] = &user.User{ID: id, Role: user.RoleUser}
	}
	chats := &fakeParticipants{members: map[uuid.UUID][]uuid.UUID{
		f.chatID: {f.alice, f.bob, f.carol},
	}}
	f.svc = NewService(f.repo, f.users, chats, f.blocks)
	f.svc.SetReportSink(f.sink)
	return f
}

func (f *msgFixture) seedMessage(senderID uuid.UUID, content string) *Message {
	m := &Message{
		ID:               uuid.New(),
		ChatID:           f.chatID,
		SenderID:         senderID,
		Content:          content,
		ModerationStatus: StatusNone,
		CreatedAt:        time.Now(),
	}
	f.repo.messages[m.ID] = m
	return m
}

func TestSendRequiresParticipant(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	outsider := uuid.New()
	f.users.users[outsider] = &user.User{ID: outsider, Role: user.RoleUser}

	if _, err := f.svc.Send(ctx, outsider, f.chatID, "hi"); err != ErrNotParticipant {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}

	m, err := f.svc.Send(ctx, f.alice, f.chatID, "hi")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if m.ModerationStatus != StatusNone {
		t.Errorf("new message status = %s, want none", m.ModerationStatus)
	}
}

func TestSendMutedSenderRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.users.users[f.alice].IsMuted = true
	if _, err := f.svc.Send(ctx, f.alice, f.chatID, "hi"); err != ErrSenderMuted {
		t.Fatalf("expected ErrSenderMuted, got %v", err)
	}
}

func TestEditKeepsHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	m := f.seedMessage(f.alice, "first")
	if _, err := f.svc.Edit(ctx, f.bob, m.ID, "hacked"); err != ErrNotSender {
		t.Fatalf("expected ErrNotSender for foreign edit, got %v", err)
	}

	edited, err := f.svc.Edit(ctx, f.alice, m.ID, "second")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if edited.Content != "second" {
		t.Errorf("content = %q, want %q", edited.Content, "second")
	}
	if len(f.repo.edits) != 1 {
		t.Fatalf("expected 1 edit entry, got %d", len(f.repo.edits))
	}
	entry := f.repo.edits[0]
	if entry.PriorContent != "first" || entry.EditorRole != EditorSender {
		t.Errorf("edit entry = %q/%s, want first/sender", entry.PriorContent, entry.EditorRole)
	}

	m.IsDeleted = true
	if _, err := f.svc.Edit(ctx, f.alice, m.ID, "third"); err != ErrMessageDeleted {
		t.Fatalf("expected ErrMessageDeleted, got %v", err)
	}
}

func TestDeleteSenderOnlyAndIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	m := f.seedMessage(f.alice, "gone soon")
	if err := f.svc.Delete(ctx, f.bob, m.ID); err != ErrNotSender {
		t.Fatalf("expected ErrNotSender, got %v", err)
	}
	if err := f.svc.Delete(ctx, f.alice, m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !m.IsDeleted || m.ModerationStatus != StatusNone {
		t.Errorf("after sender delete: deleted=%v status=%s, want true/none", m.IsDeleted, m.ModerationStatus)
	}
	if err := f.svc.Delete(ctx, f.alice, m.ID); err != ErrAlreadyDeleted {
		t.Fatalf("expected ErrAlreadyDeleted on second delete, got %v", err)
	}
}

func TestListMasksDeletedAndBlockedContent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	plain := f.seedMessage(f.bob, "visible")
	deleted := f.seedMessage(f.bob, "secret")
	deleted.IsDeleted = true
	fromBlocked := f.seedMessage(f.carol, "spam")
	f.blocks.pairs = append(f.blocks.pairs, [2]uuid.UUID{f.alice, f.carol})

	messages, _, err := f.svc.ListChatMessages(ctx, f.alice, f.chatID, 1, 50)
	if err != nil {
		t.Fatalf("ListChatMessages: %v", err)
	}
	byID := map[uuid.UUID]string{}
	for _, m := range messages {
		byID[m.ID] = m.Content
	}
	if byID[plain.ID] != "visible" {
		t.Errorf("plain message masked: %q", byID[plain.ID])
	}
	if byID[deleted.ID] != "Message deleted" {
		t.Errorf("deleted message not masked: %q", byID[deleted.ID])
	}
	if byID[fromBlocked.ID] != "Blocked user" {
		t.Errorf("blocked sender not masked: %q", byID[fromBlocked.ID])
	}
}

func TestReportFlagsOncePerUserButFilesEveryReport(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	m := f.seedMessage(f.alice, "offensive")

	if err := f.svc.Report(ctx, f.bob, m.ID, "rude"); err != nil {
		t.Fatalf("first report: %v", err)
	}
	if m.ModerationStatus != StatusFlagged {
		t.Errorf("status after first flag = %s, want flagged", m.ModerationStatus)
	}
	if len(f.sink.reports) != 1 {
		t.Fatalf("expected 1 report filed, got %d", len(f.sink.reports))
	}

	if err := f.svc.Report(ctx, f.bob, m.ID, "still rude"); err != ErrAlreadyFlagged {
		t.Fatalf("expected ErrAlreadyFlagged, got %v", err)
	}
	if len(f.sink.reports) != 1 {
		t.Errorf("duplicate flag filed a report, got %d rows", len(f.sink.reports))
	}

	if err := f.svc.Report(ctx, f.carol, m.ID, "agree"); err != nil {
		t.Fatalf("second reporter: %v", err)
	}
	if m.ModerationStatus != StatusFlagged {
		t.Errorf("status after second flag = %s, want flagged", m.ModerationStatus)
	}
	if len(f.flagsFor(m.ID)) != 2 {
		t.Errorf("expected 2 flags, got %d", len(f.flagsFor(m.ID)))
	}
	if len(f.sink.reports) != 2 {
		t.Errorf("expected 2 reports filed, got %d", len(f.sink.reports))
	}
}

func (f *msgFixture) flagsFor(messageID uuid.UUID) []*Flag {
	var out []*Flag
	for _, flag := range f.repo.flags {
		if flag.MessageID == messageID {
			out = append(out, flag)
		}
	}
	return out
}

func TestModeratorDeleteRequiresFlaggedState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	moderator := uuid.New()

	m := f.seedMessage(f.alice, "offensive")
	if _, err := f.svc.DeleteAsModerator(ctx, moderator, m.ID); err != ErrNotFlagged {
		t.Fatalf("expected ErrNotFlagged, got %v", err)
	}

	m.ModerationStatus = StatusFlagged
	wiped, err := f.svc.DeleteAsModerator(ctx, moderator, m.ID)
	if err != nil {
		t.Fatalf("DeleteAsModerator: %v", err)
	}
	if !wiped.IsDeleted || wiped.ModerationStatus != StatusUnapproved {
		t.Errorf("after wipe: deleted=%v status=%s, want true/unapproved", wiped.IsDeleted, wiped.ModerationStatus)
	}
	if len(m.DeletedBy) != 1 || m.DeletedBy[0] != moderator.String() {
		t.Errorf("deletedBy = %v, want [%s]", m.DeletedBy, moderator)
	}
	if len(f.repo.edits) != 1 || f.repo.edits[0].EditorRole != EditorModerator {
		t.Fatalf("expected one moderator edit entry, got %+v", f.repo.edits)
	}

	if _, err := f.svc.DeleteAsModerator(ctx, moderator, m.ID); err != ErrAlreadyDeleted {
		t.Fatalf("expected ErrAlreadyDeleted, got %v", err)
	}
}

func TestMarkChatReadSkipsOwnMessages(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedMessage(f.alice, "mine")
	f.seedMessage(f.bob, "theirs")

	if err := f.svc.MarkChatRead(ctx, f.alice, f.chatID); err != nil {
		t.Fatalf("MarkChatRead: %v", err)
	}
	if len(f.repo.reads) != 1 {
		t.Fatalf("expected 1 read receipt, got %d", len(f.repo.reads))
	}
	if f.repo.reads[0].UserID != f.alice {
		t.Errorf("receipt user = %s, want %s", f.repo.reads[0].UserID, f.alice)
	}
}
