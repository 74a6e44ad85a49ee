package moderation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns moderation router, every endpoint requires moderator
// rank or above
func (h *Handler) Routes(authMiddleware, requireModerator func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(requireModerator)

		r.Get("/users", h.ListUsers)
		r.Get("/users/{id}/warnings", h.UserWarnings)
		r.Get("/users/{id}/sanctions", h.UserSanctions)
		r.Post("/users/{id}/warn", h.Warn)
		r.Delete("/users/{id}/warnings/{warningId}", h.Unwarn)
		r.Post("/users/{id}/mute", h.Mute)
		r.Post("/users/{id}/unmute", h.Unmute)
		r.Post("/users/{id}/ban", h.Ban)
		r.Post("/users/{id}/unban", h.Unban)

		r.Get("/reports", h.ListReports)
		r.Get("/reports/search", h.SearchReports)
		r.Get("/reports/{id}", h.GetReport)
		r.Put("/reports/{id}/status", h.ChangeReportStatus)

		r.Get("/messages/reported", h.ListReportedMessages)
		r.Get("/messages/reported/search", h.SearchReportedMessages)
		r.Delete("/messages/{id}", h.DeleteReportedMessage)

		r.Get("/reasons", h.ListReasons)
	})

	return r
}
