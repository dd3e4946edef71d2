// internal/app/features/mentors/routes.go
package mentors

import (
	"github.com/dalemusser/missionhub/internal/app/system/auth"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for mentor assignment and workload tracking,
// mounted at /mentors. Every path starts with the mission the assignment
// belongs to. All routes require an admin session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireSignedIn)
	r.Use(auth.RequireRole(models.RoleAdmin))

	r.Route("/{missionID}", func(r chi.Router) {
		r.Get("/", h.HandleListMentors)
		r.Post("/", h.HandleAssignMentor)
		r.Post("/bulk", h.HandleBulkAssignMentors)

		r.Route("/{mentorID}", func(r chi.Router) {
			r.Get("/", h.HandleGetMentor)
			r.Get("/workload", h.HandleGetWorkload)
			r.Post("/status", h.HandleSetMentorStatus)
			r.Post("/recompute", h.HandleRecomputeWorkload)
			r.Post("/unassign", h.HandleUnassignMentor)
			r.Post("/students/{studentID}", h.HandleSetStudentMentor)
			r.Post("/students/{studentID}/clear", h.HandleClearStudentMentor)
		})
	})

	return r
}
