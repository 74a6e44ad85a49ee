package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/echo-era/echo-era-api/internal/domain/user"
)

type fakeRepo struct {
	chats        map[uuid.UUID]*Chat
	participants map[uuid.UUID][]Participant
	requests     map[uuid.UUID]*JoinRequest
	deleted      []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		chats:        map[uuid.UUID]*Chat{},
		participants: map[uuid.UUID][]Participant{},
		requests:     map[uuid.UUID]*JoinRequest{},
	}
}

func (f *fakeRepo) Create(ctx context.Context, chat *Chat, participants []Participant) error {
	f.chats[chat.ID] = chat
	f.participants[chat.ID] = participants
	return nil
}
func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Chat, error) {
	c, ok := f.chats[id]
	if !ok || c.IsDeleted() {
		return nil, nil
	}
	return c, nil
}
func (f *fakeRepo) Update(ctx context.Context, chat *Chat) error {
	f.chats[chat.ID] = chat
	return nil
}
func (f *fakeRepo) DeleteCascade(ctx context.Context, chatID, actorID uuid.UUID) error {
	delete(f.chats, chatID)
	delete(f.participants, chatID)
	for id, req := range f.requests {
		if req.ChatID == chatID {
			delete(f.requests, id)
		}
	}
	f.deleted = append(f.deleted, chatID)
	return nil
}
func (f *fakeRepo) GetParticipants(ctx context.Context, chatID uuid.UUID) ([]Participant, error) {
	return f.participants[chatID], nil
}
func (f *fakeRepo) ReplaceParticipants(ctx context.Context, chatID uuid.UUID, participants []Participant) error {
	f.participants[chatID] = participants
	return nil
}
func (f *fakeRepo) AddParticipant(ctx context.Context, p Participant) error {
	f.participants[p.ChatID] = append(f.participants[p.ChatID], p)
	return nil
}
func (f *fakeRepo) CreateJoinRequest(ctx context.Context, req *JoinRequest) error {
	f.requests[req.ID] = req
	return nil
}
func (f *fakeRepo) GetJoinRequest(ctx context.Context, id uuid.UUID) (*JoinRequest, error) {
	return f.requests[id], nil
}
func (f *fakeRepo) GetPendingJoinRequest(ctx context.Context, chatID, userID uuid.UUID) (*JoinRequest, error) {
	for _, req := range f.requests {
		if req.ChatID == chatID && req.UserID == userID {
			return req, nil
		}
	}
	return nil, nil
}
func (f *fakeRepo) DeleteJoinRequest(ctx context.Context, id uuid.UUID) error {
	delete(f.requests, id)
	return nil
}
func (f *fakeRepo) ListJoinRequestsForChat(ctx context.Context, chatID uuid.UUID) ([]*JoinRequest, error) {
	var out []*JoinRequest
	for _, req := range f.requests {
		if req.ChatID == chatID {
			out = append(out, req)
		}
	}
	return out, nil
}
func (f *fakeRepo) ListJoinRequestsForUser(ctx context.Context, userID uuid.UUID) ([]*JoinRequest, error) {
	var out []*JoinRequest
	for _, req := range f.requests {
		if req.UserID == userID {
			out = append(out, req)
		}
	}
	return out, nil
}
func (f *fakeRepo) FindPrivateChatBetween(ctx context.Context, a, b uuid.UUID) (*Chat, error) {
	for id, c := range f.chats {
		if c.Type != TypePrivate || c.IsDeleted() {
			continue
		}
		_, hasA := FindParticipant(f.participants[id], a)
		_, hasB := FindParticipant(f.participants[id], b)
		if hasA && hasB {
			return c, nil
		}
	}
	return nil, nil
}
func (f *fakeRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*ChatSummary, error) {
	return nil, nil
}
func (f *fakeRepo) ListChatIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, parts := range f.participants {
		if _, ok := FindParticipant(parts, userID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
func (f *fakeRepo) SearchPublic(ctx context.Context, query string, offset, limit int) ([]*Chat, int, error) {
	return nil, 0, nil
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

type fakeBlockChecker struct {
	blocked map[uuid.UUID]map[uuid.UUID]bool
}

func (f *fakeBlockChecker) HasBlockedChat(ctx context.Context, userID, chatID uuid.UUID) (bool, error) {
	return f.blocked[userID][chatID], nil
}

type chatFixture struct {
	svc    *Service
	repo   *fakeRepo
	users  *fakeUserRepo
	blocks *fakeBlockChecker
}

func newFixture(userIDs ...uuid.UUID) *chatFixture {
	repo := newFakeRepo()
	users := &fakeUserRepo{users: map[uuid.UUID]*user.User{}}
	for _, id := range userIDs {
		users.users[id] = &user.User{ID: id, Username: id.String()[:8], Role: user.RoleUser, CreatedAt: time.Now()}
	}
	blocks := &fakeBlockChecker{blocked: map[uuid.UUID]map[uuid.UUID]bool{}}
	return &chatFixture{
		svc:    NewService(repo, users, blocks),
		repo:   repo,
		users:  users,
		blocks: blocks,
	}
}

func TestCreateGroupChat_Rules(t *testing.T) {
	creator, a, b := uuid.New(), uuid.New(), uuid.New()
	fx := newFixture(creator, a, b)
	ctx := context.Background()

	// Too few invitees
	if _, err := fx.svc.CreateGroupChat(ctx, creator, "team", "", []uuid.UUID{a}); err != ErrTooFewInvitees {
		t.Fatalf("expected ErrTooFewInvitees, got %v", err)
	}
	// Self-invite
	if _, err := fx.svc.CreateGroupChat(ctx, creator, "team", "", []uuid.UUID{a, creator}); err != ErrSelfInvite {
		t.Fatalf("expected ErrSelfInvite, got %v", err)
	}
	// Unknown invitee
	if _, err := fx.svc.CreateGroupChat(ctx, creator, "team", "", []uuid.UUID{a, uuid.New()}); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	chat, err := fx.svc.CreateGroupChat(ctx, creator, "team", "workspace", []uuid.UUID{a, b})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	participants := fx.repo.participants[chat.ID]
	if len(participants) != 3 {
		t.Fatalf("expected 3 participants, got %d", len(participants))
	}
	p, _ := FindParticipant(participants, creator)
	if p.Role != RoleAdmin {
		t.Fatalf("creator role = %s, want admin", p.Role)
	}
	if AdminCount(participants) != 1 {
		t.Fatalf("expected exactly one admin, got %d", AdminCount(participants))
	}
}

func TestCreatePublicChat_RequiresPlatformAdmin(t *testing.T) {
	creator := uuid.New()
	fx := newFixture(creator)
	ctx := context.Background()

	if _, err := fx.svc.CreatePublicChat(ctx, creator, user.RoleUser, "lobby", ""); err != ErrPublicRequiresAdmin {
		t.Fatalf("expected ErrPublicRequiresAdmin for user, got %v", err)
	}
	if _, err := fx.svc.CreatePublicChat(ctx, creator, user.RoleModerator, "lobby", ""); err != ErrPublicRequiresAdmin {
		t.Fatalf("expected ErrPublicRequiresAdmin for moderator, got %v", err)
	}
	if _, err := fx.svc.CreatePublicChat(ctx, creator, user.RoleAdmin, "lobby", ""); err != nil {
		t.Fatalf("admin create public: %v", err)
	}
}

func TestCreatePrivateChat_Idempotent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	fx := newFixture(a, b)
	ctx := context.Background()

	first, err := fx.svc.CreatePrivateChat(ctx, a, b)
	if err != nil {
		t.Fatalf("create private: %v", err)
	}
	second, err := fx.svc.CreatePrivateChat(ctx, b, a)
	if err != nil {
		t.Fatalf("second create private: %v", err)
	}
	if first != second {
		t.Fatal("second call must return the existing chat")
	}

	participants := fx.repo.participants[first]
	if len(participants) != 2 {
		t.Fatalf("private chat must have exactly 2 participants, got %d", len(participants))
	}
	for _, p := range participants {
		if p.Role != RoleUser {
			t.Fatalf("private chat participant role = %s, want user", p.Role)
		}
	}
}

func TestJoinRoundTrip(t *testing.T) {
	creator, a, b, invitee := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	fx := newFixture(creator, a, b, invitee)
	ctx := context.Background()

	chat, err := fx.svc.CreateGroupChat(ctx, creator, "team", "", []uuid.UUID{a, b})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	req, err := fx.svc.RequestJoin(ctx, creator, chat.ID, invitee)
	if err != nil {
		t.Fatalf("request join: %v", err)
	}

	// Duplicate pending request
	if _, err := fx.svc.RequestJoin(ctx, creator, chat.ID, invitee); err != ErrRequestPending {
		t.Fatalf("expected ErrRequestPending, got %v", err)
	}
	// Inviting an existing participant
	if _, err := fx.svc.RequestJoin(ctx, creator, chat.ID, a); err != ErrAlreadyParticipant {
		t.Fatalf("expected ErrAlreadyParticipant, got %v", err)
	}

	// Only the invited user may accept
	if err := fx.svc.AcceptJoin(ctx, a, req.ID); err != ErrNotInvited {
		t.Fatalf("expected ErrNotInvited, got %v", err)
	}

	if err := fx.svc.AcceptJoin(ctx, invitee, req.ID); err != nil {
		t.Fatalf("accept join: %v", err)
	}
	participants := fx.repo.participants[chat.ID]
	p, ok := FindParticipant(participants, invitee)
	if !ok || p.Role != RoleUser {
		t.Fatalf("invitee not added as plain participant: %+v", p)
	}
	if len(fx.repo.requests) != 0 {
		t.Fatal("request must be consumed on accept")
	}
}

func TestDeclineJoin_LeavesMembershipUnchanged(t *testing.T) {
	creator, a, b, invitee := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	fx := newFixture(creator, a, b, invitee)
	ctx := context.Background()

	chat, _ := fx.svc.CreateGroupChat(ctx, creator, "team", "", []uuid.UUID{a, b})
	req, _ := fx.svc.RequestJoin(ctx, creator, chat.ID, invitee)

	before := len(fx.repo.participants[chat.ID])
	if err := fx.svc.DeclineJoin(ctx, invitee, req.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}
	if len(fx.repo.participants[chat.ID]) != before {
		t.Fatal("membership must be unchanged after decline")
	}
	if len(fx.repo.requests) != 0 {
		t.Fatal("request must be consumed on decline")
	}
}

func TestRequestJoin_BlockedChat(t *testing.T) {
	creator, a, b, target := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	fx := newFixture(creator, a, b, target)
	ctx := context.Background()

	chat, _ := fx.svc.CreateGroupChat(ctx, creator, "team", "", []uuid.UUID{a, b})
	fx.blocks.blocked[target] = map[uuid.UUID]bool{chat.ID: true}

	if _, err := fx.svc.RequestJoin(ctx, creator, chat.ID, target); err != ErrChatBlocked {
		t.Fatalf("expected ErrChatBlocked, got %v", err)
	}
}

func TestLeaveService_SuccessionAndDeletion(t *testing.T) {
	creator, a, b := uuid.New(), uuid.New(), uuid.New()
	fx := newFixture(creator, a, b)
	ctx := context.Background()

	chat, _ := fx.svc.CreateGroupChat(ctx, creator, "team", "", []uuid.UUID{a, b})

	// Promote a to moderator so succession prefers them
	if err := fx.svc.ChangeParticipantRole(ctx, creator, chat.ID, a, RoleModerator); err != nil {
		t.Fatalf("promote: %v", err)
	}

	if err := fx.svc.Leave(ctx, creator, chat.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	participants := fx.repo.participants[chat.ID]
	p, _ := FindParticipant(participants, a)
	if p.Role != RoleAdmin {
		t.Fatalf("moderator must inherit admin, got %s", p.Role)
	}

	// Remaining two leave; the last one out deletes the chat
	if err := fx.svc.Leave(ctx, b, chat.ID); err != nil {
		t.Fatalf("leave b: %v", err)
	}
	if err := fx.svc.Leave(ctx, a, chat.ID); err != nil {
		t.Fatalf("leave a: %v", err)
	}
	if len(fx.repo.deleted) != 1 || fx.repo.deleted[0] != chat.ID {
		t.Fatalf("chat must be deleted when emptied, deleted=%v", fx.repo.deleted)
	}
}

func TestPrivateChatImmutability(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	fx := newFixture(a, b)
	ctx := context.Background()

	chatID, _ := fx.svc.CreatePrivateChat(ctx, a, b)

	if err := fx.svc.Leave(ctx, a, chatID); err != ErrPrivateChatImmutable {
		t.Fatalf("expected ErrPrivateChatImmutable on leave, got %v", err)
	}
	if _, err := fx.svc.RequestJoin(ctx, a, chatID, uuid.New()); err != ErrPrivateChatImmutable {
		t.Fatalf("expected ErrPrivateChatImmutable on invite, got %v", err)
	}
	if err := fx.svc.ChangeParticipantRole(ctx, a, chatID, b, RoleAdmin); err != ErrPrivateChatImmutable {
		t.Fatalf("expected ErrPrivateChatImmutable on role change, got %v", err)
	}
	if err := fx.svc.RemoveParticipant(ctx, a, chatID, b); err != ErrPrivateChatImmutable {
		t.Fatalf("expected ErrPrivateChatImmutable on remove, got %v", err)
	}
}

func TestDeleteChat_AdminOnly(t *testing.T) {
	creator, a, b := uuid.New(), uuid.New(), uuid.New()
	fx := newFixture(creator, a, b)
	ctx := context.Background()

	chat, _ := fx.svc.CreateGroupChat(ctx, creator, "team", "", []uuid.UUID{a, b})

	if err := fx.svc.DeleteChat(ctx, a, chat.ID); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := fx.svc.DeleteChat(ctx, creator, chat.ID); err != nil {
		t.Fatalf("delete by admin: %v", err)
	}
	if _, _, err := fx.svc.GetChatInfo(ctx, creator, chat.ID); err != ErrChatNotFound {
		t.Fatalf("expected ErrChatNotFound after delete, got %v", err)
	}
}

func TestCleanupDeletedUser(t *testing.T) {
	creator, a, b := uuid.New(), uuid.New(), uuid.New()
	fx := newFixture(creator, a, b)
	ctx := context.Background()

	group, _ := fx.svc.CreateGroupChat(ctx, creator, "team", "", []uuid.UUID{a, b})
	private, _ := fx.svc.CreatePrivateChat(ctx, creator, a)

	if err := fx.svc.CleanupDeletedUser(ctx, creator); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	// Group chat survives with a successor admin
	participants := fx.repo.participants[group.ID]
	if len(participants) != 2 {
		t.Fatalf("expected 2 remaining participants, got %d", len(participants))
	}
	if AdminCount(participants) != 1 {
		t.Fatalf("group chat lost its admin, count=%d", AdminCount(participants))
	}

	// Private chat is dropped
	if _, ok := fx.repo.chats[private]; ok {
		t.Fatal("private chat of deleted user must be removed")
	}
}
