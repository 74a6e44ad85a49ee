package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/echo-era/echo-era-api/internal/pkg/password"
)

// Cleaner severs a deleted user's remaining ties (friendships, chat
// memberships, pending requests). Implementations are registered from
// main to avoid package cycles.
type Cleaner interface {
	CleanupDeletedUser(ctx context.Context, userID uuid.UUID) error
}

// Service handles user profile business logic
type Service struct {
	repo     Repository
	cleaners []Cleaner
}

// NewService creates user service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterCleaner adds a cleanup hook run on account deletion
func (s *Service) RegisterCleaner(c Cleaner) {
	s.cleaners = append(s.cleaners, c)
}

// GetProfile returns the account of the given user
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.IsDeleted() {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// GetPublicProfile returns another user's account for public display
func (s *Service) GetPublicProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.GetProfile(ctx, userID)
}

// UpdateProfile applies the requested profile changes. Username and
// email changes are checked for uniqueness and the previous value is
// kept in the name history.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if req.Username != nil && *req.Username != u.Username {
		existing, err := s.repo.GetByUsername(ctx, *req.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != u.ID {
			return nil, ErrUsernameTaken
		}
		if err := s.repo.AddNameHistory(ctx, &NameHistoryEntry{
			ID:        uuid.New(),
			UserID:    u.ID,
			Kind:      NameHistoryUsername,
			Value:     u.Username,
			CreatedAt: now,
		}); err != nil {
			return nil, err
		}
		u.Username = *req.Username
	}

	if req.Email != nil && *req.Email != u.Email {
		existing, err := s.repo.GetByEmail(ctx, *req.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != u.ID {
			return nil, ErrEmailAlreadyExists
		}
		if err := s.repo.AddNameHistory(ctx, &NameHistoryEntry{
			ID:        uuid.New(),
			UserID:    u.ID,
			Kind:      NameHistoryEmail,
			Value:     u.Email,
			CreatedAt: now,
		}); err != nil {
			return nil, err
		}
		u.Email = *req.Email
	}

	if req.AvatarURL != nil {
		u.AvatarURL = sql.NullString{String: *req.AvatarURL, Valid: *req.AvatarURL != ""}
	}
	if req.Description != nil {
		u.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.Location != nil {
		u.Location = sql.NullString{String: *req.Location, Valid: *req.Location != ""}
	}
	if req.Birthday != nil {
		if *req.Birthday == "" {
			u.Birthday = sql.NullTime{}
		} else {
			birthday, err := time.Parse("2006-01-02", *req.Birthday)
			if err != nil {
				return nil, fmt.Errorf("parse birthday: %w", err)
			}
			u.Birthday = sql.NullTime{Time: birthday, Valid: true}
		}
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword verifies the current password and stores the new hash
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if !u.PasswordHash.Valid || !password.Verify(req.CurrentPassword, u.PasswordHash.String) {
		return ErrInvalidCredentials
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = sql.NullString{String: hash, Valid: true}

	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}
	// Invalidate outstanding sessions
	return s.repo.UpdateLastLogout(ctx, userID)
}

// DeleteAccount soft-deletes the account. The original username and
// email move to the *_on_delete columns so moderation can still trace
// the identity, and the live columns are anonymized to free them up
// for re-registration.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID, req *DeleteAccountRequest) error {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if !u.PasswordHash.Valid || !password.Verify(req.Password, u.PasswordHash.String) {
		return ErrInvalidCredentials
	}

	now := time.Now()
	u.UsernameOnDelete = sql.NullString{String: u.Username, Valid: true}
	u.EmailOnDelete = sql.NullString{String: u.Email, Valid: true}
	u.Username = "deleted_" + u.ID.String()[:8]
	u.Email = "deleted_" + u.ID.String() + "@deleted.invalid"
	u.IsActive = false
	u.DeletedAt = sql.NullTime{Time: now, Valid: true}
	u.LastLogout = sql.NullTime{Time: now, Valid: true}

	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	for _, cleaner := range s.cleaners {
		if err := cleaner.CleanupDeletedUser(ctx, userID); err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("cleanup after account deletion failed")
		}
	}
	return nil
}

// Search finds active users by username, description or location
func (s *Service) Search(ctx context.Context, query string, page, limit int) ([]*User, int, error) {
	offset := (page - 1) * limit
	return s.repo.Search(ctx, query, offset, limit)
}

// GetWarnings returns the user's warning list
func (s *Service) GetWarnings(ctx context.Context, userID uuid.UUID) ([]*Warning, error) {
	return s.repo.ListWarnings(ctx, userID)
}
