package auth

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/echo-era/echo-era-api/internal/domain/user"
	"github.com/echo-era/echo-era-api/internal/pkg/email"
	"github.com/echo-era/echo-era-api/internal/pkg/jwt"
	"github.com/echo-era/echo-era-api/internal/pkg/password"
)

const resetCodeTTL = time.Hour

// Service handles authentication business logic
type Service struct {
	userRepo   user.Repository
	jwtService *jwt.Service
	redis      *redis.Client // nil if Redis disabled
	emails     email.Sender
}

// NewService creates auth service
func NewService(userRepo user.Repository, jwtService *jwt.Service, redisClient *redis.Client, emails email.Sender) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtService: jwtService,
		redis:      redisClient,
		emails:     emails,
	}
}

// Register creates a new user account and queues the verification email
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	req.Email = normalizeEmail(req.Email)

	if existing, _ := s.userRepo.GetByUsername(ctx, req.Username); existing != nil {
		return nil, ErrUsernameTaken
	}
	if existing, _ := s.userRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	code := generateNumericCode(verificationCodeLength)
	u := &user.User{
		ID:               uuid.New(),
		Username:         req.Username,
		Email:            req.Email,
		PasswordHash:     sql.NullString{String: hash, Valid: true},
		Role:             user.RoleUser,
		IsActive:         true,
		IsVerified:       false,
		VerificationCode: sql.NullString{String: code, Valid: true},
		CreatedAt:        time.Now(),
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.emails.SendVerificationCode(u.Email, u.Username, code)

	return &RegisterResponse{
		User:             user.UserResponseFromEntity(u),
		VerificationSent: true,
	}, nil
}

// VerifyEmail confirms the account holding the verification code
func (s *Service) VerifyEmail(ctx context.Context, code string) error {
	u, err := s.userRepo.GetByVerificationCode(ctx, code)
	if err != nil {
		return err
	}
	if u == nil || u.IsDeleted() {
		return ErrInvalidCode
	}
	if u.IsVerified {
		return ErrAlreadyVerified
	}

	u.IsVerified = true
	u.VerificationCode = sql.NullString{}
	if err := s.userRepo.Update(ctx, u); err != nil {
		return err
	}

	s.emails.SendWelcome(u.Email, u.Username)
	return nil
}

// Login authenticates by username or email. Banned accounts are
// rejected outright.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	u, err := s.findByLogin(ctx, req.Login)
	if err != nil || u == nil || u.IsDeleted() {
		return nil, ErrInvalidCredentials
	}

	if !u.PasswordHash.Valid || !password.Verify(req.Password, u.PasswordHash.String) {
		return nil, ErrInvalidCredentials
	}

	if u.IsBanned {
		return nil, ErrUserBanned
	}

	return s.generateTokens(ctx, u)
}

// Refresh rotates the refresh token and issues a fresh token pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	refreshHash := jwt.HashRefreshToken(refreshToken)
	userID, err := s.getRefreshToken(ctx, refreshHash)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || u == nil || u.IsDeleted() {
		return nil, ErrUserNotFound
	}
	if u.IsBanned {
		return nil, ErrUserBanned
	}

	// Rotation: the presented token is single use
	_ = s.deleteRefreshToken(ctx, refreshHash)

	return s.generateTokens(ctx, u)
}

// Logout revokes the refresh token and stamps last_logout so access
// tokens issued before this point can be treated as stale
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	if refreshToken != "" {
		refreshHash := jwt.HashRefreshToken(refreshToken)
		_ = s.deleteRefreshToken(ctx, refreshHash)
	}
	return s.userRepo.UpdateLastLogout(ctx, userID)
}

// ForgotPassword issues a reset code to the account's email. Always
// succeeds from the caller's perspective so email enumeration is not
// possible.
func (s *Service) ForgotPassword(ctx context.Context, reqEmail string) error {
	u, err := s.userRepo.GetByEmail(ctx, normalizeEmail(reqEmail))
	if err != nil {
		return err
	}
	if u == nil || u.IsDeleted() {
		return nil
	}

	code := generateNumericCode(verificationCodeLength)
	u.IsPasswordReset = true
	u.PasswordResetCode = sql.NullString{String: code, Valid: true}
	u.PasswordResetCodeExpiry = sql.NullTime{Time: time.Now().Add(resetCodeTTL), Valid: true}
	if err := s.userRepo.Update(ctx, u); err != nil {
		return err
	}

	s.emails.SendPasswordReset(u.Email, u.Username, code)
	return nil
}

// ResetPassword sets a new password for the account holding a live
// reset code and revokes all sessions
func (s *Service) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	u, err := s.userRepo.GetByPasswordResetCode(ctx, req.Code)
	if err != nil {
		return err
	}
	if u == nil || u.IsDeleted() || !u.IsPasswordReset {
		return ErrInvalidCode
	}
	if u.PasswordResetCodeExpiry.Valid && time.Now().After(u.PasswordResetCodeExpiry.Time) {
		return ErrInvalidCode
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	u.PasswordHash = sql.NullString{String: hash, Valid: true}
	u.IsPasswordReset = false
	u.PasswordResetCode = sql.NullString{}
	u.PasswordResetCodeExpiry = sql.NullTime{}
	if err := s.userRepo.Update(ctx, u); err != nil {
		return err
	}

	return s.userRepo.UpdateLastLogout(ctx, u.ID)
}

// GetCurrentUser returns the authenticated account
func (s *Service) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*user.UserResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || u == nil || u.IsDeleted() {
		return nil, ErrUserNotFound
	}
	return user.UserResponseFromEntity(u), nil
}

func (s *Service) findByLogin(ctx context.Context, login string) (*user.User, error) {
	if strings.Contains(login, "@") {
		return s.userRepo.GetByEmail(ctx, normalizeEmail(login))
	}
	return s.userRepo.GetByUsername(ctx, login)
}

// generateTokens creates the access/refresh pair and stores the
// refresh hash in Redis
func (s *Service) generateTokens(ctx context.Context, u *user.User) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(u.ID, string(u.Role), u.IsBanned)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	refreshHash := jwt.HashRefreshToken(refreshToken)
	if err := s.storeRefreshToken(ctx, refreshHash, u.ID); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User: user.UserResponseFromEntity(u),
		Tokens: TokensResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(s.jwtService.GetAccessTTL().Seconds()),
			TokenType:    "Bearer",
		},
	}, nil
}

// Redis helpers (handle nil redis gracefully)

func (s *Service) storeRefreshToken(ctx context.Context, tokenHash string, userID uuid.UUID) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Set(ctx, "refresh:"+tokenHash, userID.String(), s.jwtService.GetRefreshTTL()).Err()
}

func (s *Service) getRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	if s.redis == nil {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	val, err := s.redis.Get(ctx, "refresh:"+tokenHash).Result()
	if err != nil {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	return uuid.Parse(val)
}

func (s *Service) deleteRefreshToken(ctx context.Context, tokenHash string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, "refresh:"+tokenHash).Err()
}
