package moderation

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrWarningNotFound = errors.New("warning not found")
	ErrAlreadyMuted    = errors.New("user already muted")
	ErrNotMuted        = errors.New("user is not muted")
	ErrAlreadyBanned   = errors.New("user already banned")
	ErrNotBanned       = errors.New("user is not banned")
	ErrReportNotFound  = errors.New("report not found")
	ErrReasonNotFound  = errors.New("report reason not found")
	ErrInvalidFilter   = errors.New("invalid user filter")
)
