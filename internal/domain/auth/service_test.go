package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/echo-era/echo-era-api/internal/domain/user"
	"github.com/echo-era/echo-era-api/internal/pkg/jwt"
	"github.com/echo-era/echo-era-api/internal/pkg/password"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*user.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	f.users[u.ID] = u
	return nil
}
func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return f.users[id], nil
}
func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeUserRepo) GetByVerificationCode(ctx context.Context, code string) (*user.User, error) {
	for _, u := range f.users {
		if u.VerificationCode.Valid && u.VerificationCode.String == code {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeUserRepo) GetByPasswordResetCode(ctx context.Context, code string) (*user.User, error) {
	for _, u := range f.users {
		if u.PasswordResetCode.Valid && u.PasswordResetCode.String == code {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeUserRepo) Update(ctx context.Context, u *user.User) error {
	f.users[u.ID] = u
	return nil
}
func (f *fakeUserRepo) UpdateLastLogout(ctx context.Context, id uuid.UUID) error {
	if u, ok := f.users[id]; ok {
		u.LastLogout = sql.NullTime{Time: time.Now(), Valid: true}
	}
	return nil
}
func (f *fakeUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role user.Role) error {
	if u, ok := f.users[id]; ok {
		u.Role = role
	}
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

type fakeSender struct {
	verifications []string
	resets        []string
	welcomes      []string
}

func (f *fakeSender) SendVerificationCode(to, toName, code string) {
	f.verifications = append(f.verifications, code)
}
func (f *fakeSender) SendPasswordReset(to, toName, code string) {
	f.resets = append(f.resets, code)
}
func (f *fakeSender) SendWelcome(to, toName string) {
	f.welcomes = append(f.welcomes, to)
}

func newTestService() (*Service, *fakeUserRepo, *fakeSender) {
	repo := newFakeUserRepo()
	sender := &fakeSender{}
	jwtSvc := jwt.NewService("test-secret", 15*time.Minute, 7*24*time.Hour)
	return NewService(repo, jwtSvc, nil, sender), repo, sender
}

func TestRegister_SendsVerificationCode(t *testing.T) {
	svc, repo, sender := newTestService()

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !resp.VerificationSent {
		t.Error("expected verification_sent to be true")
	}
	if len(sender.verifications) != 1 || len(sender.verifications[0]) != 6 {
		t.Fatalf("expected one 6-digit code, got %v", sender.verifications)
	}

	stored, _ := repo.GetByUsername(context.Background(), "alice")
	if stored == nil {
		t.Fatal("user not stored")
	}
	if stored.Email != "alice@example.com" {
		t.Errorf("email not normalized: %s", stored.Email)
	}
	if stored.IsVerified {
		t.Error("new account must not be verified")
	}
	if stored.Role != user.RoleUser {
		t.Errorf("new account role = %s, want user", stored.Role)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Email: "a@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Email: "b@example.com", Password: "secret123"})
	if err != ErrUsernameTaken {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	_, err = svc.Register(ctx, &RegisterRequest{Username: "alice2", Email: "a@example.com", Password: "secret123"})
	if err != ErrEmailAlreadyExists {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestVerifyEmail(t *testing.T) {
	svc, repo, sender := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Email: "a@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	code := sender.verifications[0]

	if err := svc.VerifyEmail(ctx, code); err != nil {
		t.Fatalf("verify: %v", err)
	}
	stored, _ := repo.GetByUsername(ctx, "alice")
	if !stored.IsVerified {
		t.Error("account must be verified")
	}
	if len(sender.welcomes) != 1 {
		t.Error("welcome email not sent")
	}

	// Second use of the code fails
	if err := svc.VerifyEmail(ctx, code); err != ErrInvalidCode {
		t.Fatalf("expected ErrInvalidCode on reuse, got %v", err)
	}
}

func TestLogin_ByUsernameAndEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Email: "a@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, login := range []string{"alice", "a@example.com"} {
		resp, err := svc.Login(ctx, &LoginRequest{Login: login, Password: "secret123"})
		if err != nil {
			t.Fatalf("login with %q: %v", login, err)
		}
		if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
			t.Fatalf("login with %q returned empty tokens", login)
		}
	}

	if _, err := svc.Login(ctx, &LoginRequest{Login: "alice", Password: "wrong"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_BannedRejected(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Email: "a@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	u, _ := repo.GetByUsername(ctx, "alice")
	u.IsBanned = true

	if _, err := svc.Login(ctx, &LoginRequest{Login: "alice", Password: "secret123"}); err != ErrUserBanned {
		t.Fatalf("expected ErrUserBanned, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	svc, repo, sender := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Email: "a@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ForgotPassword(ctx, "a@example.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if len(sender.resets) != 1 {
		t.Fatalf("expected one reset code, got %d", len(sender.resets))
	}
	code := sender.resets[0]

	if err := svc.ResetPassword(ctx, &ResetPasswordRequest{Code: code, NewPassword: "newsecret123"}); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	u, _ := repo.GetByUsername(ctx, "alice")
	if !u.PasswordHash.Valid || !password.Verify("newsecret123", u.PasswordHash.String) {
		t.Fatal("password not updated")
	}
	if u.PasswordResetCode.Valid {
		t.Error("reset code must be cleared")
	}
	if !u.LastLogout.Valid {
		t.Error("sessions must be revoked after reset")
	}

	// Code is single use
	if err := svc.ResetPassword(ctx, &ResetPasswordRequest{Code: code, NewPassword: "another123"}); err != ErrInvalidCode {
		t.Fatalf("expected ErrInvalidCode on reuse, got %v", err)
	}
}

func TestForgotPassword_UnknownEmailSilent(t *testing.T) {
	svc, _, sender := newTestService()

	if err := svc.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("forgot password for unknown email must not error, got %v", err)
	}
	if len(sender.resets) != 0 {
		t.Error("no reset code should be sent for unknown email")
	}
}
