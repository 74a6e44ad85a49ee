package social

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/echo-era/echo-era-api/internal/domain/user"
)

type fakeRepo struct {
	requests    map[uuid.UUID]*FriendRequest
	friendships []*Friendship
	blocks      []*BlockRelation
	chatBlocks  []*ChatBlock
	purged      []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{requests: map[uuid.UUID]*FriendRequest{}}
}

func (f *fakeRepo) CreateRequest(ctx context.Context, req *FriendRequest) error {
	f.requests[req.ID] = req
	return nil
}
func (f *fakeRepo) GetRequestByID(ctx context.Context, id uuid.UUID) (*FriendRequest, error) {
	return f.requests[id], nil
}
func (f *fakeRepo) GetPendingBetween(ctx context.Context, a, b uuid.UUID) (*FriendRequest, error) {
	for _, req := range f.requests {
		if req.Status != RequestPending {
			continue
		}
		if (req.SenderID == a && req.RecipientID == b) || (req.SenderID == b && req.RecipientID == a) {
			return req, nil
		}
	}
	return nil, nil
}
func (f *fakeRepo) ResolveRequest(ctx context.Context, id uuid.UUID, status RequestStatus) error {
	if req, ok := f.requests[id]; ok {
		req.Status = status
	}
	return nil
}
func (f *fakeRepo) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	delete(f.requests, id)
	return nil
}
func (f *fakeRepo) ListIncoming(ctx context.Context, userID uuid.UUID) ([]*FriendRequest, error) {
	var out []*FriendRequest
	for _, req := range f.requests {
		if req.RecipientID == userID && req.Status == RequestPending {
			out = append(out, req)
		}
	}
	return out, nil
}
func (f *fakeRepo) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]*FriendRequest, error) {
	var out []*FriendRequest
	for _, req := range f.requests {
		if req.SenderID == userID && req.Status == RequestPending {
			out = append(out, req)
		}
	}
	return out, nil
}
func (f *fakeRepo) CreateFriendship(ctx context.Context, fr *Friendship) error {
	f.friendships = append(f.friendships, fr)
	return nil
}
func (f *fakeRepo) DeleteFriendship(ctx context.Context, a, b uuid.UUID) error {
	var kept []*Friendship
	for _, fr := range f.friendships {
		if (fr.UserID == a && fr.FriendID == b) || (fr.UserID == b && fr.FriendID == a) {
			continue
		}
		kept = append(kept, fr)
	}
	f.friendships = kept
	return nil
}
func (f *fakeRepo) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	for _, fr := range f.friendships {
		if (fr.UserID == a && fr.FriendID == b) || (fr.UserID == b && fr.FriendID == a) {
			return true, nil
		}
	}
	return false, nil
}
func (f *fakeRepo) ListFriends(ctx context.Context, userID uuid.UUID) ([]*user.User, error) {
	return nil, nil
}
func (f *fakeRepo) CreateBlock(ctx context.Context, block *BlockRelation) error {
	f.blocks = append(f.blocks, block)
	return nil
}
func (f *fakeRepo) DeleteBlock(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	var kept []*BlockRelation
	for _, b := range f.blocks {
		if b.BlockerUserID == blockerID && b.BlockedUserID == blockedID {
			continue
		}
		kept = append(kept, b)
	}
	f.blocks = kept
	return nil
}
func (f *fakeRepo) HasBlocked(ctx context.Context, blockerID, blockedID uuid.UUID) (bool, error) {
	for _, b := range f.blocks {
		if b.BlockerUserID == blockerID && b.BlockedUserID == blockedID {
			return true, nil
		}
	}
	return false, nil
}
func (f *fakeRepo) ListBlocks(ctx context.Context, userID uuid.UUID) ([]*BlockRelation, error) {
	return f.blocks, nil
}
func (f *fakeRepo) CreateChatBlock(ctx context.Context, block *ChatBlock) error {
	f.chatBlocks = append(f.chatBlocks, block)
	return nil
}
func (f *fakeRepo) DeleteChatBlock(ctx context.Context, userID, chatID uuid.UUID) error {
	var kept []*ChatBlock
	for _, b := range f.chatBlocks {
		if b.UserID == userID && b.ChatID == chatID {
			continue
		}
		kept = append(kept, b)
	}
	f.chatBlocks = kept
	return nil
}
func (f *fakeRepo) HasBlockedChat(ctx context.Context, userID, chatID uuid.UUID) (bool, error) {
	for _, b := range f.chatBlocks {
		if b.UserID == userID && b.ChatID == chatID {
			return true, nil
		}
	}
	return false, nil
}
func (f *fakeRepo) ListChatBlocks(ctx context.Context, userID uuid.UUID) ([]*ChatBlock, error) {
	return f.chatBlocks, nil
}
func (f *fakeRepo) PurgeUser(ctx context.Context, userID uuid.UUID) error {
	f.purged = append(f.purged, userID)
	return nil
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

type fakeChatCreator struct {
	opened [][2]uuid.UUID
}

func (f *fakeChatCreator) CreatePrivateChat(ctx context.Context, a, b uuid.UUID) (uuid.UUID, error) {
	f.opened = append(f.opened, [2]uuid.UUID{a, b})
	return uuid.New(), nil
}

func setup() (*Service, *fakeRepo, *fakeChatCreator, uuid.UUID, uuid.UUID) {
	repo := newFakeRepo()
	alice := uuid.New()
	bob := uuid.New()
	users := &fakeUserRepo{users: map[uuid.UUID]*user.User{
		alice: {ID: alice, Username: "alice", Role: user.RoleUser, CreatedAt: time.Now()},
		bob:   {ID: bob, Username: "bob", Role: user.RoleUser, CreatedAt: time.Now()},
	}}
	svc := NewService(repo, users)
	chats := &fakeChatCreator{}
	svc.SetChatCreator(chats)
	return svc, repo, chats, alice, bob
}

func TestSendFriendRequest_Self(t *testing.T) {
	svc, _, _, alice, _ := setup()
	if _, err := svc.SendFriendRequest(context.Background(), alice, alice); err != ErrSelfAction {
		t.Fatalf("expected ErrSelfAction, got %v", err)
	}
}

func TestSendFriendRequest_DuplicatePending(t *testing.T) {
	svc, _, _, alice, bob := setup()
	ctx := context.Background()

	if _, err := svc.SendFriendRequest(ctx, alice, bob); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.SendFriendRequest(ctx, alice, bob); err != ErrRequestPending {
		t.Fatalf("expected ErrRequestPending, got %v", err)
	}
	// Reverse direction is also blocked by the same pending request
	if _, err := svc.SendFriendRequest(ctx, bob, alice); err != ErrRequestPending {
		t.Fatalf("expected ErrRequestPending for reverse, got %v", err)
	}
}

func TestSendFriendRequest_Blocked(t *testing.T) {
	svc, _, _, alice, bob := setup()
	ctx := context.Background()

	if err := svc.BlockUser(ctx, bob, alice); err != nil {
		t.Fatalf("block: %v", err)
	}
	if _, err := svc.SendFriendRequest(ctx, alice, bob); err != ErrBlocked {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
}

func TestAcceptFriendRequest_OpensPrivateChat(t *testing.T) {
	svc, repo, chats, alice, bob := setup()
	ctx := context.Background()

	req, err := svc.SendFriendRequest(ctx, alice, bob)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	// Only the recipient may accept
	if err := svc.AcceptFriendRequest(ctx, alice, req.ID); err != ErrNotRecipient {
		t.Fatalf("expected ErrNotRecipient, got %v", err)
	}

	if err := svc.AcceptFriendRequest(ctx, bob, req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	friends, _ := repo.AreFriends(ctx, alice, bob)
	if !friends {
		t.Fatal("friendship not created")
	}
	if len(chats.opened) != 1 {
		t.Fatalf("expected one private chat, got %d", len(chats.opened))
	}

	// Second accept fails, the request is resolved
	if err := svc.AcceptFriendRequest(ctx, bob, req.ID); err != ErrRequestNotPending {
		t.Fatalf("expected ErrRequestNotPending, got %v", err)
	}
}

func TestCancelFriendRequest_SenderOnly(t *testing.T) {
	svc, repo, _, alice, bob := setup()
	ctx := context.Background()

	req, err := svc.SendFriendRequest(ctx, alice, bob)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := svc.CancelFriendRequest(ctx, bob, req.ID); err != ErrNotSender {
		t.Fatalf("expected ErrNotSender, got %v", err)
	}
	if err := svc.CancelFriendRequest(ctx, alice, req.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(repo.requests) != 0 {
		t.Fatal("request not removed")
	}
}

func TestBlockUser_SeversFriendship(t *testing.T) {
	svc, repo, _, alice, bob := setup()
	ctx := context.Background()

	req, _ := svc.SendFriendRequest(ctx, alice, bob)
	if err := svc.AcceptFriendRequest(ctx, bob, req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if err := svc.BlockUser(ctx, alice, bob); err != nil {
		t.Fatalf("block: %v", err)
	}
	friends, _ := repo.AreFriends(ctx, alice, bob)
	if friends {
		t.Fatal("friendship must be severed on block")
	}

	if err := svc.BlockUser(ctx, alice, bob); err != ErrAlreadyBlocked {
		t.Fatalf("expected ErrAlreadyBlocked, got %v", err)
	}
}

func TestUnblockUser_NotBlocked(t *testing.T) {
	svc, _, _, alice, bob := setup()
	if err := svc.UnblockUser(context.Background(), alice, bob); err != ErrNotBlocked {
		t.Fatalf("expected ErrNotBlocked, got %v", err)
	}
}

func TestRemoveFriend_NotFriends(t *testing.T) {
	svc, _, _, alice, bob := setup()
	if err := svc.RemoveFriend(context.Background(), alice, bob); err != ErrNotFriends {
		t.Fatalf("expected ErrNotFriends, got %v", err)
	}
}

func TestBlockChat_Twice(t *testing.T) {
	svc, _, _, alice, _ := setup()
	ctx := context.Background()
	chatID := uuid.New()

	if err := svc.BlockChat(ctx, alice, chatID); err != nil {
		t.Fatalf("block chat: %v", err)
	}
	if err := svc.BlockChat(ctx, alice, chatID); err != ErrChatBlocked {
		t.Fatalf("expected ErrChatBlocked, got %v", err)
	}
	if err := svc.UnblockChat(ctx, alice, chatID); err != nil {
		t.Fatalf("unblock chat: %v", err)
	}
	if err := svc.UnblockChat(ctx, alice, chatID); err != ErrChatNotBlocked {
		t.Fatalf("expected ErrChatNotBlocked, got %v", err)
	}
}
