package social

import (
	"time"

	"github.com/echo-era/echo-era-api/internal/domain/user"
)

// SendRequestRequest for POST /social/requests
type SendRequestRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// ReportUserRequest for POST /social/reports
type ReportUserRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// FriendRequestResponse is the API shape of a friend request
type FriendRequestResponse struct {
	ID          string        `json:"id"`
	SenderID    string        `json:"sender_id"`
	RecipientID string        `json:"recipient_id"`
	Status      RequestStatus `json:"status"`
	CreatedAt   string        `json:"created_at"`
}

// FriendRequestResponseFromEntity converts entity to response
func FriendRequestResponseFromEntity(req *FriendRequest) *FriendRequestResponse {
	return &FriendRequestResponse{
		ID:          req.ID.String(),
		SenderID:    req.SenderID.String(),
		RecipientID: req.RecipientID.String(),
		Status:      req.Status,
		CreatedAt:   req.CreatedAt.Format(time.RFC3339),
	}
}

// FriendListResponse wraps the friend list
type FriendListResponse struct {
	Friends []*user.PublicUserResponse `json:"friends"`
	Total   int                        `json:"total"`
}
