package social

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns social router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/requests", h.SendRequest)
		r.Get("/requests", h.ListRequests)
		r.Post("/requests/{id}/accept", h.AcceptRequest)
		r.Post("/requests/{id}/decline", h.DeclineRequest)
		r.Delete("/requests/{id}", h.CancelRequest)

		r.Get("/friends", h.ListFriends)
		r.Delete("/friends/{id}", h.RemoveFriend)

		r.Get("/blocks", h.ListBlocks)
		r.Post("/blocks/{id}", h.BlockUser)
		r.Delete("/blocks/{id}", h.UnblockUser)

		r.Get("/blocked-chats", h.ListBlockedChats)
		r.Post("/blocked-chats/{id}", h.BlockChat)
		r.Delete("/blocked-chats/{id}", h.UnblockChat)

		r.Post("/reports", h.ReportUser)
	})

	return r
}
