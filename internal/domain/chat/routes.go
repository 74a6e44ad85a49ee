package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns chat router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.List)
		r.Get("/search", h.Search)
		r.Get("/invitations", h.ListMyInvitations)

		r.Post("/group", h.CreateGroup)
		r.Post("/public", h.CreatePublic)

		r.Post("/requests/{requestId}/accept", h.AcceptJoin)
		r.Post("/requests/{requestId}/decline", h.DeclineJoin)
		r.Delete("/requests/{requestId}", h.CancelJoin)

		r.Get("/{id}", h.Info)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/leave", h.Leave)

		r.Post("/{id}/requests", h.RequestJoin)
		r.Get("/{id}/requests", h.ListChatRequests)

		r.Put("/{id}/participants/{userId}/role", h.ChangeRole)
		r.Delete("/{id}/participants/{userId}", h.RemoveParticipant)
	})

	return r
}
