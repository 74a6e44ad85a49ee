package auth

import "errors"

var (
	ErrUsernameTaken        = errors.New("username already taken")
	ErrEmailAlreadyExists   = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid login or password")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrRefreshTokenRequired = errors.New("refresh token is required")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserBanned           = errors.New("user is banned")
	ErrInvalidCode          = errors.New("invalid or expired code")
	ErrAlreadyVerified      = errors.New("email already verified")
)
