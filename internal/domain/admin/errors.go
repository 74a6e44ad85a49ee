package admin

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrAlreadyModerator = errors.New("user is already a moderator")
	ErrNotModerator     = errors.New("user is not a moderator")
	ErrTargetIsAdmin    = errors.New("admins cannot be managed through this endpoint")
)
