// internal/app/features/missions/routes.go
package missions

import (
	"github.com/dalemusser/missionhub/internal/app/system/auth"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Everything under /missions requires an authenticated admin.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleAdmin))

		// CRUD
		pr.Get("/", h.HandleListMissions)
		pr.Post("/", h.HandleCreateMission)
		pr.Get("/{id}", h.HandleGetMission)
		pr.Post("/{id}/status", h.HandleSetMissionStatus)
		pr.Post("/{id}/delete", h.HandleDeleteMission)

		// Enrollment
		pr.Get("/{id}/roster", h.HandleGetRoster)
		pr.Post("/{id}/students", h.HandleEnrollStudents)
		pr.Post("/{id}/students/remove", h.HandleRemoveStudents)
		pr.Post("/{id}/students/{studentID}/status", h.HandleSetStudentStatus)
		pr.Post("/{id}/students/bulk-status", h.HandleBulkStudentStatus)

		// Reconciliation
		pr.Post("/{id}/reconcile/fix", h.HandleReconcileFix)
		pr.Post("/{id}/reconcile/sync", h.HandleReconcileSync)
		pr.Post("/{id}/reconcile/clear", h.HandleReconcileClear)
		pr.Get("/{id}/reconcile/runs", h.HandleListReconcileRuns)
	})

	return r
}
