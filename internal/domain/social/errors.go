package social

import "errors"

var (
	ErrSelfAction        = errors.New("action cannot target yourself")
	ErrUserNotFound      = errors.New("user not found")
	ErrRequestNotFound   = errors.New("friend request not found")
	ErrRequestNotPending = errors.New("friend request already resolved")
	ErrNotRecipient      = errors.New("only the recipient can respond to the request")
	ErrNotSender         = errors.New("only the sender can cancel the request")
	ErrRequestPending    = errors.New("friend request already pending")
	ErrAlreadyFriends    = errors.New("users are already friends")
	ErrNotFriends        = errors.New("users are not friends")
	ErrBlocked           = errors.New("blocked by or blocking the target user")
	ErrAlreadyBlocked    = errors.New("user already blocked")
	ErrNotBlocked        = errors.New("user is not blocked")
	ErrChatBlocked       = errors.New("chat already blocked")
	ErrChatNotBlocked    = errors.New("chat is not blocked")
)
