// internal/app/features/missions/missions.go
package missions

import (
	"context"
	"net/http"

	"github.com/dalemusser/missionhub/internal/app/store/enrollments"
	groupstore "github.com/dalemusser/missionhub/internal/app/store/groups"
	missionstore "github.com/dalemusser/missionhub/internal/app/store/missions"
	"github.com/dalemusser/missionhub/internal/app/store/queries/missionroster"
	"github.com/dalemusser/missionhub/internal/app/system/apierrors"
	"github.com/dalemusser/missionhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/missionhub/internal/app/system/timeouts"
	"github.com/dalemusser/missionhub/internal/app/system/validate"
	"github.com/dalemusser/missionhub/internal/app/system/webjson"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleCreateMission creates a mission.
// POST /missions
func (h *Handler) HandleCreateMission(w http.ResponseWriter, r *http.Request) {
	var req createMissionRequest
	if err := webjson.Decode(r, &req); err != nil {
		apierrors.Validation(w, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		apierrors.Validation(w, err.Error(), nil)
		return
	}
	batchOID, err := primitive.ObjectIDFromHex(req.BatchID)
	if err != nil {
		apierrors.Validation(w, "invalid batch id", nil)
		return
	}

	courses := make([]models.MissionCourse, 0, len(req.Courses))
	for _, c := range req.Courses {
		cid, err := primitive.ObjectIDFromHex(c.CourseID)
		if err != nil {
			apierrors.Validation(w, "invalid course id: "+c.CourseID, nil)
			return
		}
		courses = append(courses, models.MissionCourse{
			CourseID:    cid,
			Title:       htmlsanitize.Clean(c.Title),
			Weight:      c.Weight,
			MinProgress: c.MinProgress,
		})
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	mission, err := missionstore.New(h.DB).Create(ctx, models.Mission{
		Code:        req.Code,
		Title:       htmlsanitize.Clean(req.Title),
		Description: htmlsanitize.Clean(req.Description),
		BatchID:     batchOID,
		MaxStudents: req.MaxStudents,
		Courses:     courses,
	})
	switch {
	case err == missionstore.ErrBadWeights:
		apierrors.Validation(w, err.Error(), nil)
		return
	case err == missionstore.ErrDuplicateCode:
		apierrors.Conflict(w, err.Error())
		return
	case err != nil:
		apierrors.Internal(w, h.Log, "database error creating mission", err, "Failed to create mission.")
		return
	}

	webjson.Write(w, http.StatusCreated, mission)
}

// HandleListMissions lists missions, optionally filtered by ?batch_id= and
// ?status=.
// GET /missions
func (h *Handler) HandleListMissions(w http.ResponseWriter, r *http.Request) {
	var batchOID *primitive.ObjectID
	if v := r.URL.Query().Get("batch_id"); v != "" {
		oid, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			apierrors.Validation(w, "invalid batch id", nil)
			return
		}
		batchOID = &oid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	missions, err := missionstore.New(h.DB).List(ctx, batchOID, r.URL.Query().Get("status"))
	if err != nil {
		apierrors.Internal(w, h.Log, "database error listing missions", err, "Failed to list missions.")
		return
	}
	webjson.Write(w, http.StatusOK, missions)
}

// HandleGetMission returns one mission along with its current roster.
// GET /missions/{id}
func (h *Handler) HandleGetMission(w http.ResponseWriter, r *http.Request) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	mission, err := missionstore.New(h.DB).GetByID(ctx, missionOID)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Mission not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error loading mission", err, "Failed to load mission.")
		return
	}

	roster, err := missionroster.ListMissionRoster(ctx, h.DB, missionOID, missionroster.Filter{})
	if err != nil {
		apierrors.Internal(w, h.Log, "database error loading roster", err, "Failed to load mission.")
		return
	}
	webjson.Write(w, http.StatusOK, missionDetail{Mission: mission, Roster: roster})
}

// HandleSetMissionStatus assigns a mission status. Transitions are
// free-form.
// POST /missions/{id}/status
func (h *Handler) HandleSetMissionStatus(w http.ResponseWriter, r *http.Request) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return
	}
	var req setStatusRequest
	if err := webjson.Decode(r, &req); err != nil {
		apierrors.Validation(w, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		apierrors.Validation(w, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := missionstore.New(h.DB).SetStatus(ctx, missionOID, req.Status)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Mission not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error updating mission status", err, "Failed to update mission.")
		return
	}
	webjson.Write(w, http.StatusOK, map[string]string{"status": req.Status})
}

// HandleDeleteMission hard-deletes a mission and its dependent documents.
// Enrollments and groups go first; a failure partway through is reported
// as CASCADE_DELETE_FAILED with what completed.
// POST /missions/{id}/delete
func (h *Handler) HandleDeleteMission(w http.ResponseWriter, r *http.Request) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	enrollStore := enrollmentstore.New(h.DB)
	cleared, err := enrollStore.Clear(ctx, missionOID)
	if err != nil {
		apierrors.CascadeDeleteFailed(w, "Failed while dropping enrollments.", map[string]any{
			"enrollments_dropped": cleared,
		})
		return
	}

	groups, err := groupstore.New(h.DB).ListByMission(ctx, missionOID)
	if err != nil {
		apierrors.CascadeDeleteFailed(w, "Failed while loading groups.", map[string]any{
			"enrollments_dropped": cleared,
		})
		return
	}
	deletedGroups := 0
	for _, g := range groups {
		if _, err := groupstore.New(h.DB).Delete(ctx, g.ID); err != nil {
			apierrors.CascadeDeleteFailed(w, "Failed while deleting groups.", map[string]any{
				"enrollments_dropped": cleared,
				"groups_deleted":      deletedGroups,
			})
			return
		}
		deletedGroups++
	}

	n, err := missionstore.New(h.DB).Delete(ctx, missionOID)
	if err != nil {
		apierrors.CascadeDeleteFailed(w, "Failed while deleting the mission.", map[string]any{
			"enrollments_dropped": cleared,
			"groups_deleted":      deletedGroups,
		})
		return
	}
	if n == 0 {
		apierrors.NotFound(w, "Mission not found.")
		return
	}

	h.Log.Info("mission deleted",
		zap.String("mission_id", missionOID.Hex()),
		zap.Int64("enrollments_dropped", cleared),
		zap.Int("groups_deleted", deletedGroups))
	webjson.Write(w, http.StatusOK, map[string]any{
		"deleted":             true,
		"enrollments_dropped": cleared,
		"groups_deleted":      deletedGroups,
	})
}

// missionID parses the {id} URL parameter, writing the validation error
// itself so callers can simply return on !ok.
func (h *Handler) missionID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.Validation(w, "invalid mission id", nil)
		return primitive.NilObjectID, false
	}
	return oid, true
}
