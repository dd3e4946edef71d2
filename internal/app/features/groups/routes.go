// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/missionhub/internal/app/system/auth"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for mentorship group management, mounted at
// /groups. All routes require an admin session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireSignedIn)
	r.Use(auth.RequireRole(models.RoleAdmin))

	r.Get("/", h.HandleListGroups)
	r.Post("/", h.HandleCreateGroup)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.HandleGetGroup)
		r.Post("/", h.HandleUpdateGroup)
		r.Post("/delete", h.HandleDeleteGroup)

		r.Post("/students", h.HandleAddStudents)
		r.Post("/mentors", h.HandleAddMentors)
		r.Post("/members/{userID}/remove", h.HandleRemoveMember)
	})

	return r
}
