package user

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/echo-era/echo-era-api/internal/pkg/password"
)

type fakeRepo struct {
	users   map[uuid.UUID]*User
	history []*NameHistoryEntry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[uuid.UUID]*User{}}
}

func (f *fakeRepo) Create(ctx context.Context, u *User) error {
	f.users[u.ID] = u
	return nil
}
func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return f.users[id], nil
}
func (f *fakeRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeRepo) GetByVerificationCode(ctx context.Context, code string) (*User, error) {
	return nil, nil
}
func (f *fakeRepo) GetByPasswordResetCode(ctx context.Context, code string) (*User, error) {
	return nil, nil
}
func (f *fakeRepo) Update(ctx context.Context, u *User) error {
	f.users[u.ID] = u
	return nil
}
func (f *fakeRepo) UpdateLastLogout(ctx context.Context, id uuid.UUID) error {
	if u, ok := f.users[id]; ok {
		u.LastLogout = sql.NullTime{Time: time.Now(), Valid: true}
	}
	return nil
}
func (f *fakeRepo) UpdateRole(ctx context.Context, id uuid.UUID, role Role) error {
	if u, ok := f.users[id]; ok {
		u.Role = role
	}
	return nil
}
func (f *fakeRepo) AddNameHistory(ctx context.Context, entry *NameHistoryEntry) error {
	f.history = append(f.history, entry)
	return nil
}
func (f *fakeRepo) ListWarnings(ctx context.Context, userID uuid.UUID) ([]*Warning, error) {
	return nil, nil
}
func (f *fakeRepo) ListSanctionReasons(ctx context.Context, userID uuid.UUID) ([]*SanctionReason, error) {
	return nil, nil
}
func (f *fakeRepo) Search(ctx context.Context, query string, offset, limit int) ([]*User, int, error) {
	var out []*User
	for _, u := range f.users {
		if strings.Contains(u.Username, query) && !u.IsDeleted() {
			out = append(out, u)
		}
	}
	return out, len(out), nil
}

func seedUser(t *testing.T, repo *fakeRepo, username, email, pass string) *User {
	t.Helper()
	hash, err := password.Hash(pass)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: sql.NullString{String: hash, Valid: true},
		Role:         RoleUser,
		IsActive:     true,
		IsVerified:   true,
		CreatedAt:    time.Now(),
	}
	repo.users[u.ID] = u
	return u
}

func TestUpdateProfile_UsernameTaken(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	alice := seedUser(t, repo, "alice", "alice@example.com", "secret123")
	seedUser(t, repo, "bob", "bob@example.com", "secret123")

	taken := "bob"
	_, err := svc.UpdateProfile(context.Background(), alice.ID, &UpdateProfileRequest{Username: &taken})
	if err != ErrUsernameTaken {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestUpdateProfile_RecordsNameHistory(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	alice := seedUser(t, repo, "alice", "alice@example.com", "secret123")

	newName := "alice2"
	newEmail := "alice2@example.com"
	updated, err := svc.UpdateProfile(context.Background(), alice.ID, &UpdateProfileRequest{
		Username: &newName,
		Email:    &newEmail,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Username != "alice2" || updated.Email != "alice2@example.com" {
		t.Fatalf("profile not updated: %s %s", updated.Username, updated.Email)
	}
	if len(repo.history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(repo.history))
	}
	if repo.history[0].Kind != NameHistoryUsername || repo.history[0].Value != "alice" {
		t.Errorf("unexpected username history entry: %+v", repo.history[0])
	}
	if repo.history[1].Kind != NameHistoryEmail || repo.history[1].Value != "alice@example.com" {
		t.Errorf("unexpected email history entry: %+v", repo.history[1])
	}
}

func TestUpdateProfile_SameUsernameNoHistory(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	alice := seedUser(t, repo, "alice", "alice@example.com", "secret123")

	same := "alice"
	if _, err := svc.UpdateProfile(context.Background(), alice.ID, &UpdateProfileRequest{Username: &same}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if len(repo.history) != 0 {
		t.Fatalf("expected no history entries, got %d", len(repo.history))
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	alice := seedUser(t, repo, "alice", "alice@example.com", "secret123")

	err := svc.ChangePassword(context.Background(), alice.ID, &ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newsecret123",
	})
	if err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

type recordingCleaner struct {
	called []uuid.UUID
}

func (c *recordingCleaner) CleanupDeletedUser(ctx context.Context, userID uuid.UUID) error {
	c.called = append(c.called, userID)
	return nil
}

func TestDeleteAccount_AnonymizesAndCleansUp(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	cleaner := &recordingCleaner{}
	svc.RegisterCleaner(cleaner)
	alice := seedUser(t, repo, "alice", "alice@example.com", "secret123")

	err := svc.DeleteAccount(context.Background(), alice.ID, &DeleteAccountRequest{Password: "secret123"})
	if err != nil {
		t.Fatalf("delete account: %v", err)
	}

	stored := repo.users[alice.ID]
	if !stored.IsDeleted() {
		t.Fatal("expected account to be soft-deleted")
	}
	if stored.UsernameOnDelete.String != "alice" || stored.EmailOnDelete.String != "alice@example.com" {
		t.Errorf("original identity not preserved: %+v", stored)
	}
	if stored.Username == "alice" || stored.Email == "alice@example.com" {
		t.Error("live identity columns must be anonymized")
	}
	if len(cleaner.called) != 1 || cleaner.called[0] != alice.ID {
		t.Errorf("cleaner not invoked: %v", cleaner.called)
	}

	// Deleted account no longer resolves
	if _, err := svc.GetProfile(context.Background(), alice.ID); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound for deleted account, got %v", err)
	}
}

func TestDeleteAccount_WrongPassword(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	alice := seedUser(t, repo, "alice", "alice@example.com", "secret123")

	err := svc.DeleteAccount(context.Background(), alice.ID, &DeleteAccountRequest{Password: "nope"})
	if err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if repo.users[alice.ID].IsDeleted() {
		t.Fatal("account must not be deleted on wrong password")
	}
}
