package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns user router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/me", h.GetMe)
		r.Put("/me", h.UpdateMe)
		r.Put("/me/password", h.ChangePassword)
		r.Delete("/me", h.DeleteMe)
		r.Get("/me/warnings", h.GetWarnings)

		r.Get("/search", h.Search)
		r.Get("/{id}", h.GetByID)
	})

	return r
}
