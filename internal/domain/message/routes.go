package message

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns message router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/chat/{chatId}", h.Send)
		r.Get("/chat/{chatId}", h.List)
		r.Get("/chat/{chatId}/search", h.Search)
		r.Post("/chat/{chatId}/read", h.MarkRead)

		r.Put("/{id}", h.Edit)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/history", h.EditHistory)
		r.Post("/{id}/report", h.Report)
	})

	return r
}
