package chat

import "errors"

var (
	ErrChatNotFound         = errors.New("chat not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrRequestNotFound      = errors.New("join request not found")
	ErrNotParticipant       = errors.New("user is not a participant of the chat")
	ErrAlreadyParticipant   = errors.New("user is already a participant")
	ErrRequestPending       = errors.New("join request already pending")
	ErrNotInvited           = errors.New("only the invited user can respond")
	ErrNotInviter           = errors.New("only the inviter can cancel the request")
	ErrChatBlocked          = errors.New("user has blocked this chat")
	ErrForbidden            = errors.New("insufficient chat role")
	ErrAdminUnremovable     = errors.New("admins cannot be removed")
	ErrModeratorProtected   = errors.New("moderators can only be removed by admins")
	ErrLastAdmin            = errors.New("chat must keep at least one admin")
	ErrPrivateChatImmutable = errors.New("private chats have a fixed membership")
	ErrPublicRequiresAdmin  = errors.New("public chats can only be created by platform admins")
	ErrTooFewInvitees       = errors.New("group chats require at least two invited users")
	ErrSelfInvite           = errors.New("creator cannot invite themselves")
	ErrInvalidChatType      = errors.New("invalid chat type for this operation")
	ErrPrivateChatExists    = errors.New("private chat between these users already exists")
)
