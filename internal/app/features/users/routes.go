// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/missionhub/internal/app/system/auth"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for user management, mounted at /users. All
// routes require an admin session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireSignedIn)
	r.Use(auth.RequireRole(models.RoleAdmin))

	r.Get("/", h.HandleListUsers)
	r.Post("/", h.HandleCreateUser)
	r.Get("/{id}", h.HandleGetUser)

	return r
}
