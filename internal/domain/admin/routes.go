package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns admin router, every endpoint requires admin rank
func (h *Handler) Routes(authMiddleware, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(requireAdmin)

		r.Post("/moderators/{id}", h.AddModerator)
		r.Delete("/moderators/{id}", h.RemoveModerator)

		r.Post("/chats", h.CreateChat)
		r.Put("/chats/{id}", h.UpdateChat)
		r.Delete("/chats/{id}", h.DeleteChat)

		r.Get("/logs", h.ListLogs)

		r.Post("/report-reasons", h.CreateReportReason)
		r.Delete("/report-reasons/{id}", h.DeleteReportReason)
	})

	return r
}
