package message

import "errors"

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotParticipant  = errors.New("user is not a participant of the chat")
	ErrNotSender       = errors.New("only the sender can modify the message")
	ErrSenderMuted     = errors.New("sender is muted")
	ErrAlreadyDeleted  = errors.New("message already deleted")
	ErrAlreadyFlagged  = errors.New("message already flagged by this user")
	ErrNotFlagged      = errors.New("message is not flagged")
	ErrMessageDeleted  = errors.New("message was deleted")
)
