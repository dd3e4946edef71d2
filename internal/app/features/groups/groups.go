// internal/app/features/groups/groups.go
package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/missionhub/internal/app/store/enrollments"
	groupstore "github.com/dalemusser/missionhub/internal/app/store/groups"
	missionstore "github.com/dalemusser/missionhub/internal/app/store/missions"
	"github.com/dalemusser/missionhub/internal/app/store/queries/mentorworkload"
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

// HandleCreateGroup creates a mentorship group within a mission,
// optionally pre-seeding students and mentors. Seed students count
// against max_students, get their enrollment's group pointer set, and
// seed mentors get their workload recomputed.
// POST /groups
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := webjson.Decode(r, &req); err != nil {
		apierrors.Validation(w, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		apierrors.Validation(w, err.Error(), nil)
		return
	}
	missionOID, err := primitive.ObjectIDFromHex(req.MissionID)
	if err != nil {
		apierrors.Validation(w, "invalid mission id", nil)
		return
	}
	studentIDs, ok := parseUserIDs(w, req.StudentIDs)
	if !ok {
		return
	}
	mentorIDs, ok := parseUserIDs(w, req.MentorIDs)
	if !ok {
		return
	}
	if req.MaxStudents > 0 && len(studentIDs) > req.MaxStudents {
		apierrors.CapacityExceeded(w, "The seed student list exceeds max_students.", map[string]any{
			"max_students": req.MaxStudents,
			"requested":    len(studentIDs),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	mission, err := missionstore.New(h.DB).GetByID(ctx, missionOID)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Mission not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error loading mission", err, "Failed to create group.")
		return
	}

	name := htmlsanitize.Clean(req.Name)
	if name == "" {
		apierrors.Validation(w, "name must not be empty", nil)
		return
	}

	group, err := groupstore.New(h.DB).Create(ctx, models.MentorshipGroup{
		Name:        name,
		Description: htmlsanitize.Clean(req.Description),
		MissionID:   mission.ID,
		BatchID:     mission.BatchID,
		MaxStudents: req.MaxStudents,
		GroupType:   req.GroupType,
		SkillLevel:  req.SkillLevel,
		Channel:     req.Channel,
		Meeting:     req.Meeting,
		Students:    studentIDs,
		Mentors:     mentorIDs,
	})
	if err != nil {
		apierrors.Internal(w, h.Log, "database error creating group", err, "Failed to create group.")
		return
	}

	h.afterMembershipChange(ctx, group, studentIDs, &group.ID)

	h.Log.Info("group created",
		zap.String("group_id", group.ID.Hex()),
		zap.String("mission_id", mission.ID.Hex()),
		zap.Int("students", len(studentIDs)),
		zap.Int("mentors", len(mentorIDs)))
	webjson.Write(w, http.StatusCreated, group)
}

// HandleListGroups lists a mission's groups; ?mission_id= is required,
// ?mentor_id= narrows to groups the mentor belongs to.
// GET /groups
func (h *Handler) HandleListGroups(w http.ResponseWriter, r *http.Request) {
	missionOID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("mission_id"))
	if err != nil {
		apierrors.Validation(w, "mission_id query parameter is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var list []models.MentorshipGroup
	if v := r.URL.Query().Get("mentor_id"); v != "" {
		mentorOID, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			apierrors.Validation(w, "invalid mentor id", nil)
			return
		}
		list, err = groupstore.New(h.DB).ListWithMentor(ctx, missionOID, mentorOID)
		if err != nil {
			apierrors.Internal(w, h.Log, "database error listing groups", err, "Failed to list groups.")
			return
		}
	} else {
		list, err = groupstore.New(h.DB).ListByMission(ctx, missionOID)
		if err != nil {
			apierrors.Internal(w, h.Log, "database error listing groups", err, "Failed to list groups.")
			return
		}
	}
	webjson.Write(w, http.StatusOK, list)
}

// HandleGetGroup returns one group.
// GET /groups/{id}
func (h *Handler) HandleGetGroup(w http.ResponseWriter, r *http.Request) {
	groupOID, ok := h.groupID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	group, err := groupstore.New(h.DB).GetByID(ctx, groupOID)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Group not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error loading group", err, "Failed to load group.")
		return
	}
	webjson.Write(w, http.StatusOK, group)
}

// HandleUpdateGroup edits group metadata. Membership is managed through
// the dedicated add and remove calls, never here.
// POST /groups/{id}
func (h *Handler) HandleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	groupOID, ok := h.groupID(w, r)
	if !ok {
		return
	}
	var req updateGroupRequest
	if err := webjson.Decode(r, &req); err != nil {
		apierrors.Validation(w, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		apierrors.Validation(w, err.Error(), nil)
		return
	}

	edit := groupstore.GroupEdit{
		GroupType:   req.GroupType,
		SkillLevel:  req.SkillLevel,
		Status:      req.Status,
		Channel:     req.Channel,
		Meeting:     req.Meeting,
		MaxStudents: req.MaxStudents,
	}
	if req.Name != nil {
		clean := htmlsanitize.Clean(*req.Name)
		edit.Name = &clean
	}
	if req.Description != nil {
		clean := htmlsanitize.Clean(*req.Description)
		edit.Description = &clean
	}
	if req.PrimaryMentorID != nil {
		oid, err := primitive.ObjectIDFromHex(*req.PrimaryMentorID)
		if err != nil {
			apierrors.Validation(w, "invalid primary mentor id", nil)
			return
		}
		edit.PrimaryMentorID = &oid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := groupstore.New(h.DB)
	if err := store.UpdateInfo(ctx, groupOID, edit); err != nil {
		if err == mongo.ErrNoDocuments {
			apierrors.NotFound(w, "Group not found.")
			return
		}
		apierrors.Internal(w, h.Log, "database error updating group", err, "Failed to update group.")
		return
	}
	group, err := store.GetByID(ctx, groupOID)
	if err != nil {
		apierrors.Internal(w, h.Log, "database error reloading group", err, "Updated, but failed to reload group.")
		return
	}
	webjson.Write(w, http.StatusOK, group)
}

// HandleDeleteGroup deletes a group. Member enrollments lose their group
// pointer and the group's mentors get their workload recomputed first; a
// failure in that cleanup reports CASCADE_DELETE_FAILED and leaves the
// group in place for a retry.
// POST /groups/{id}/delete
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupOID, ok := h.groupID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	store := groupstore.New(h.DB)
	group, err := store.GetByID(ctx, groupOID)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Group not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error loading group", err, "Failed to delete group.")
		return
	}

	if len(group.Students) > 0 {
		err := enrollmentstore.New(h.DB).SetGroupPointer(ctx, group.MissionID, group.Students, nil)
		if err != nil {
			apierrors.CascadeDeleteFailed(w, "Failed while clearing enrollment group pointers.", map[string]any{
				"group_id": group.ID.Hex(),
			})
			return
		}
	}

	n, err := store.Delete(ctx, groupOID)
	if err != nil {
		apierrors.CascadeDeleteFailed(w, "Failed while deleting the group.", map[string]any{
			"group_id":         group.ID.Hex(),
			"pointers_cleared": len(group.Students),
		})
		return
	}
	if n == 0 {
		apierrors.NotFound(w, "Group not found.")
		return
	}

	// Workload shrinks once the group is gone, so recompute after.
	mentorworkload.RecomputeForMentors(ctx, h.DB, group.MissionID, group.Mentors)

	h.Log.Info("group deleted",
		zap.String("group_id", group.ID.Hex()),
		zap.String("mission_id", group.MissionID.Hex()),
		zap.Int("students", len(group.Students)))
	webjson.Write(w, http.StatusOK, map[string]any{
		"deleted":          true,
		"pointers_cleared": len(group.Students),
	})
}

func (h *Handler) groupID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.Validation(w, "invalid group id", nil)
		return primitive.NilObjectID, false
	}
	return oid, true
}

func parseUserIDs(w http.ResponseWriter, ids []string) ([]primitive.ObjectID, bool) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			apierrors.Validation(w, "invalid user id: "+id, nil)
			return nil, false
		}
		out = append(out, oid)
	}
	return out, true
}
