// internal/app/features/groups/members.go
package groups

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/missionhub/internal/app/store/enrollments"
	groupstore "github.com/dalemusser/missionhub/internal/app/store/groups"
	"github.com/dalemusser/missionhub/internal/app/store/queries/mentorworkload"
	userstore "github.com/dalemusser/missionhub/internal/app/store/users"
	"github.com/dalemusser/missionhub/internal/app/system/apierrors"
	"github.com/dalemusser/missionhub/internal/app/system/timeouts"
	"github.com/dalemusser/missionhub/internal/app/system/validate"
	"github.com/dalemusser/missionhub/internal/app/system/webjson"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleAddStudents adds students to the group. The whole batch is
// rejected with CAPACITY_EXCEEDED when it would push the group past
// max_students; ids already in the group are deduplicated and don't
// count toward the increase.
// POST /groups/{id}/students
func (h *Handler) HandleAddStudents(w http.ResponseWriter, r *http.Request) {
	groupOID, ok := h.groupID(w, r)
	if !ok {
		return
	}
	userIDs, ok := h.decodeMemberIDs(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if missing, err := userstore.New(h.DB).ExistAll(ctx, userIDs); err != nil {
		apierrors.Internal(w, h.Log, "database error checking users", err, "Failed to add students.")
		return
	} else if len(missing) > 0 {
		apierrors.Validation(w, "unknown user ids", map[string]any{"user_ids": hexIDs(missing)})
		return
	}

	store := groupstore.New(h.DB)
	group, err := store.AddStudents(ctx, groupOID, userIDs)
	switch {
	case err == mongo.ErrNoDocuments:
		apierrors.NotFound(w, "Group not found.")
		return
	case err == groupstore.ErrCapacityExceeded:
		apierrors.CapacityExceeded(w, "Adding these students would exceed the group's capacity.", map[string]any{
			"requested": len(userIDs),
		})
		return
	case err != nil:
		apierrors.Internal(w, h.Log, "database error adding students", err, "Failed to add students.")
		return
	}

	h.afterMembershipChange(ctx, group, userIDs, &group.ID)
	warnings := h.multiGroupWarnings(ctx, store, group.MissionID, userIDs)

	h.Log.Info("students added to group",
		zap.String("group_id", group.ID.Hex()),
		zap.Int("requested", len(userIDs)),
		zap.Int("current_students", group.CurrentStudents))
	webjson.Write(w, http.StatusOK, addStudentsResponse{
		MentorshipGroup: group,
		Warnings:        warnings,
	})
}

// multiGroupWarnings reports students who now sit in more than one of the
// mission's groups. Group membership in at most one group per mission is
// a soft invariant: the add still succeeds, the caller gets told.
func (h *Handler) multiGroupWarnings(ctx context.Context, store *groupstore.Store, missionID primitive.ObjectID, studentIDs []primitive.ObjectID) []string {
	var warnings []string
	for _, sid := range studentIDs {
		groupIDs, err := store.GroupsOfStudent(ctx, missionID, sid)
		if err != nil {
			h.Log.Warn("failed to check group membership",
				zap.String("student_id", sid.Hex()),
				zap.Error(err))
			continue
		}
		if len(groupIDs) > 1 {
			warnings = append(warnings,
				fmt.Sprintf("student %s is in %d groups for this mission", sid.Hex(), len(groupIDs)))
		}
	}
	return warnings
}

// HandleAddMentors adds mentors to the group and recomputes their
// workload, which now includes the group's students.
// POST /groups/{id}/mentors
func (h *Handler) HandleAddMentors(w http.ResponseWriter, r *http.Request) {
	groupOID, ok := h.groupID(w, r)
	if !ok {
		return
	}
	userIDs, ok := h.decodeMemberIDs(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if missing, err := userstore.New(h.DB).ExistAll(ctx, userIDs); err != nil {
		apierrors.Internal(w, h.Log, "database error checking users", err, "Failed to add mentors.")
		return
	} else if len(missing) > 0 {
		apierrors.Validation(w, "unknown user ids", map[string]any{"user_ids": hexIDs(missing)})
		return
	}

	group, err := groupstore.New(h.DB).AddMentors(ctx, groupOID, userIDs)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Group not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error adding mentors", err, "Failed to add mentors.")
		return
	}

	mentorworkload.RecomputeForMentors(ctx, h.DB, group.MissionID, userIDs)

	h.Log.Info("mentors added to group",
		zap.String("group_id", group.ID.Hex()),
		zap.Int("requested", len(userIDs)))
	webjson.Write(w, http.StatusOK, group)
}

// HandleRemoveMember removes one user from the group, whichever list
// they are in. Removing an absent user is a no-op. When a student
// leaves, their enrollment's group pointer is cleared if it still points
// at this group; mentor workloads are recomputed either way.
// POST /groups/{id}/members/{userID}/remove
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	groupOID, ok := h.groupID(w, r)
	if !ok {
		return
	}
	userOID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		apierrors.Validation(w, "invalid user id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	store := groupstore.New(h.DB)
	before, err := store.GetByID(ctx, groupOID)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Group not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error loading group", err, "Failed to remove member.")
		return
	}
	wasStudent := containsID(before.Students, userOID)
	wasMentor := containsID(before.Mentors, userOID)

	group, err := store.RemoveUser(ctx, groupOID, userOID)
	if err != nil {
		apierrors.Internal(w, h.Log, "database error removing member", err, "Failed to remove member.")
		return
	}

	if wasStudent {
		err := enrollmentstore.New(h.DB).SetGroupPointer(ctx, group.MissionID, []primitive.ObjectID{userOID}, nil)
		if err != nil {
			h.Log.Warn("failed to clear enrollment group pointer",
				zap.String("group_id", group.ID.Hex()),
				zap.String("student_id", userOID.Hex()),
				zap.Error(err))
		}
		mentorworkload.RecomputeForMentors(ctx, h.DB, group.MissionID, group.Mentors)
	}
	if wasMentor {
		if _, err := mentorworkload.Recompute(ctx, h.DB, group.MissionID, userOID); err != nil {
			h.Log.Warn("failed to recompute mentor workload",
				zap.String("mentor_id", userOID.Hex()),
				zap.Error(err))
		}
	}

	webjson.Write(w, http.StatusOK, group)
}

// afterMembershipChange runs the bookkeeping shared by student adds:
// point the students' enrollments at the group and refresh the group's
// mentor workloads. Both halves are best-effort; the reconcile jobs mop
// up anything a crash leaves behind.
func (h *Handler) afterMembershipChange(ctx context.Context, group models.MentorshipGroup, studentIDs []primitive.ObjectID, groupID *primitive.ObjectID) {
	if len(studentIDs) > 0 {
		err := enrollmentstore.New(h.DB).SetGroupPointer(ctx, group.MissionID, studentIDs, groupID)
		if err != nil {
			h.Log.Warn("failed to set enrollment group pointers",
				zap.String("group_id", group.ID.Hex()),
				zap.Int("students", len(studentIDs)),
				zap.Error(err))
		}
	}
	if len(group.Mentors) > 0 {
		mentorworkload.RecomputeForMentors(ctx, h.DB, group.MissionID, group.Mentors)
	}
}

func (h *Handler) decodeMemberIDs(w http.ResponseWriter, r *http.Request) ([]primitive.ObjectID, bool) {
	var req memberIDsRequest
	if err := webjson.Decode(r, &req); err != nil {
		apierrors.Validation(w, "invalid JSON body", nil)
		return nil, false
	}
	if err := validate.Struct(req); err != nil {
		apierrors.Validation(w, err.Error(), nil)
		return nil, false
	}
	return parseUserIDs(w, req.UserIDs)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
