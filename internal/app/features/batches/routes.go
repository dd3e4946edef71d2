// internal/app/features/batches/routes.go
package batches

import (
	"github.com/dalemusser/missionhub/internal/app/system/auth"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for batch membership management, mounted at
// /batches. All routes require an admin session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireSignedIn)
	r.Use(auth.RequireRole(models.RoleAdmin))

	r.Route("/{batchID}/members", func(r chi.Router) {
		r.Post("/", h.HandleSetMembership)
		r.Get("/{studentID}", h.HandleGetMembership)
	})

	return r
}
