package user

import (
	"time"

	"github.com/google/uuid"
)

// UpdateProfileRequest is the payload for updating own profile
type UpdateProfileRequest struct {
	Username    *string `json:"username" validate:"omitempty,min=3,max=30,alphanum"`
	Email       *string `json:"email" validate:"omitempty,email"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url,max=500"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Birthday    *string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Location    *string `json:"location" validate:"omitempty,max=100"`
}

// ChangePasswordRequest is the payload for changing own password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// DeleteAccountRequest confirms account deletion with the password
type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// UserResponse is the owner's view of an account
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	Description *string    `json:"description,omitempty"`
	Birthday    *string    `json:"birthday,omitempty"`
	Location    *string    `json:"location,omitempty"`
	IsVerified  bool       `json:"is_verified"`
	IsMuted     bool       `json:"is_muted"`
	MuteExpires *time.Time `json:"mute_expires_at,omitempty"`
	IsBanned    bool       `json:"is_banned"`
	BanExpires  *time.Time `json:"ban_expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PublicUserResponse is what other users see
type PublicUserResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Role        Role      `json:"role"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserResponseFromEntity converts entity to owner response
func UserResponseFromEntity(u *User) *UserResponse {
	resp := &UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		IsMuted:    u.IsMuted,
		IsBanned:   u.IsBanned,
		CreatedAt:  u.CreatedAt,
	}
	if u.AvatarURL.Valid {
		resp.AvatarURL = &u.AvatarURL.String
	}
	if u.Description.Valid {
		resp.Description = &u.Description.String
	}
	if u.Birthday.Valid {
		birthday := u.Birthday.Time.Format("2006-01-02")
		resp.Birthday = &birthday
	}
	if u.Location.Valid {
		resp.Location = &u.Location.String
	}
	if u.MuteExpiresAt.Valid {
		resp.MuteExpires = &u.MuteExpiresAt.Time
	}
	if u.BanExpiresAt.Valid {
		resp.BanExpires = &u.BanExpiresAt.Time
	}
	return resp
}

// PublicUserResponseFromEntity converts entity to public response
func PublicUserResponseFromEntity(u *User) *PublicUserResponse {
	resp := &PublicUserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
	if u.AvatarURL.Valid {
		resp.AvatarURL = &u.AvatarURL.String
	}
	if u.Description.Valid {
		resp.Description = &u.Description.String
	}
	if u.Location.Valid {
		resp.Location = &u.Location.String
	}
	return resp
}
