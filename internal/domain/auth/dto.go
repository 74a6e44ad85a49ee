package auth

import "github.com/echo-era/echo-era-api/internal/domain/user"

// RegisterRequest for POST /auth/register
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest for POST /auth/login. Login accepts either username
// or email.
type LoginRequest struct {
	Login    string `json:"login" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// VerifyEmailRequest for POST /auth/verify
type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// RefreshRequest for POST /auth/refresh and /auth/logout
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ForgotPasswordRequest for POST /auth/password/forgot
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest for POST /auth/password/reset
type ResetPasswordRequest struct {
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// RegisterResponse returned after registration
type RegisterResponse struct {
	User             *user.UserResponse `json:"user"`
	VerificationSent bool               `json:"verification_sent"`
}

// AuthResponse returned after login/refresh
type AuthResponse struct {
	User   *user.UserResponse `json:"user"`
	Tokens TokensResponse     `json:"tokens"`
}

// TokensResponse represents tokens in API response
type TokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}
