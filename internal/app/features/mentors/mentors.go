// internal/app/features/mentors/mentors.go
package mentors

import (
	"context"
	"net/http"

	"github.com/dalemusser/missionhub/internal/app/store/enrollments"
	mentorstore "github.com/dalemusser/missionhub/internal/app/store/mentors"
	"github.com/dalemusser/missionhub/internal/app/store/queries/mentorworkload"
	userstore "github.com/dalemusser/missionhub/internal/app/store/users"
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

// HandleAssignMentor assigns a mentor to the mission.
// POST /mentors/{missionID}
func (h *Handler) HandleAssignMentor(w http.ResponseWriter, r *http.Request) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return
	}
	var req assignRequest
	if err := webjson.Decode(r, &req); err != nil {
		apierrors.Validation(w, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		apierrors.Validation(w, err.Error(), nil)
		return
	}
	mentorOID, err := primitive.ObjectIDFromHex(req.MentorID)
	if err != nil {
		apierrors.Validation(w, "invalid mentor id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := userstore.New(h.DB).GetByID(ctx, mentorOID); err != nil {
		if err == mongo.ErrNoDocuments {
			apierrors.NotFound(w, "Mentor not found.")
			return
		}
		apierrors.Internal(w, h.Log, "database error loading mentor", err, "Failed to assign mentor.")
		return
	}

	assignment, err := mentorstore.New(h.DB).Assign(ctx, models.MissionMentor{
		MissionID:        missionOID,
		MentorID:         mentorOID,
		Role:             req.Role,
		MaxStudents:      req.MaxStudents,
		Specializations:  htmlsanitize.CleanAll(req.Specializations),
		Responsibilities: htmlsanitize.CleanAll(req.Responsibilities),
		AvailabilityRate: req.AvailabilityRate,
	})
	if err == mentorstore.ErrDuplicateAssignment {
		apierrors.Conflict(w, err.Error())
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error assigning mentor", err, "Failed to assign mentor.")
		return
	}

	h.Log.Info("mentor assigned",
		zap.String("mission_id", missionOID.Hex()),
		zap.String("mentor_id", mentorOID.Hex()),
		zap.String("role", req.Role))
	webjson.Write(w, http.StatusCreated, assignment)
}

// HandleBulkAssignMentors assigns several mentors in one call. Each entry
// succeeds or fails independently; a duplicate assignment fails its entry
// only.
// POST /mentors/{missionID}/bulk
func (h *Handler) HandleBulkAssignMentors(w http.ResponseWriter, r *http.Request) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return
	}
	var req bulkAssignRequest
	if err := webjson.Decode(r, &req); err != nil {
		apierrors.Validation(w, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		apierrors.Validation(w, err.Error(), nil)
		return
	}
	entries := make([]mentorstore.AssignEntry, 0, len(req.Items))
	for _, item := range req.Items {
		oid, err := primitive.ObjectIDFromHex(item.MentorID)
		if err != nil {
			apierrors.Validation(w, "invalid mentor id: "+item.MentorID, nil)
			return
		}
		entries = append(entries, mentorstore.AssignEntry{MentorID: oid, Role: item.Role})
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	results := mentorstore.New(h.DB).AssignBatch(ctx, missionOID, entries)
	webjson.Write(w, http.StatusOK, results)
}

// HandleListMentors lists the mission's mentor assignments.
// GET /mentors/{missionID}
func (h *Handler) HandleListMentors(w http.ResponseWriter, r *http.Request) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := mentorstore.New(h.DB).ListByMission(ctx, missionOID)
	if err != nil {
		apierrors.Internal(w, h.Log, "database error listing mentors", err, "Failed to list mentors.")
		return
	}
	webjson.Write(w, http.StatusOK, list)
}

// HandleGetMentor returns one mentor assignment.
// GET /mentors/{missionID}/{mentorID}
func (h *Handler) HandleGetMentor(w http.ResponseWriter, r *http.Request) {
	missionOID, mentorOID, ok := h.assignmentIDs(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	assignment, err := mentorstore.New(h.DB).Get(ctx, missionOID, mentorOID)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Mentor assignment not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error loading mentor", err, "Failed to load mentor.")
		return
	}
	webjson.Write(w, http.StatusOK, assignment)
}

// HandleGetWorkload computes the mentor's live workload: the deduplicated
// union of students mentored directly and students in the mentor's
// groups. The stored counter comes back alongside so a caller can see
// drift before a recompute.
// GET /mentors/{missionID}/{mentorID}/workload
func (h *Handler) HandleGetWorkload(w http.ResponseWriter, r *http.Request) {
	missionOID, mentorOID, ok := h.assignmentIDs(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	assignment, err := mentorstore.New(h.DB).Get(ctx, missionOID, mentorOID)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Mentor assignment not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error loading mentor", err, "Failed to load mentor.")
		return
	}

	workload, err := mentorworkload.Count(ctx, h.DB, missionOID, mentorOID)
	if err != nil {
		apierrors.Internal(w, h.Log, "database error computing workload", err, "Failed to compute workload.")
		return
	}
	webjson.Write(w, http.StatusOK, workloadResponse{
		MentorID:     mentorOID.Hex(),
		Workload:     workload,
		StoredCount:  assignment.CurrentStudents,
		MaxStudents:  assignment.MaxStudents,
		Status:       assignment.Status,
		OverCapacity: assignment.MaxStudents > 0 && workload > assignment.MaxStudents,
	})
}

// HandleRecomputeWorkload recomputes and stores the mentor's workload
// counter. Status is never changed here, even over capacity.
// POST /mentors/{missionID}/{mentorID}/recompute
func (h *Handler) HandleRecomputeWorkload(w http.ResponseWriter, r *http.Request) {
	missionOID, mentorOID, ok := h.assignmentIDs(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	count, err := mentorworkload.Recompute(ctx, h.DB, missionOID, mentorOID)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Mentor assignment not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error recomputing workload", err, "Failed to recompute workload.")
		return
	}
	webjson.Write(w, http.StatusOK, map[string]any{"current_students": count})
}

// HandleSetMentorStatus assigns the mentor's status, including manually
// flagging or unflagging overloaded.
// POST /mentors/{missionID}/{mentorID}/status
func (h *Handler) HandleSetMentorStatus(w http.ResponseWriter, r *http.Request) {
	missionOID, mentorOID, ok := h.assignmentIDs(w, r)
	if !ok {
		return
	}
	var req mentorStatusRequest
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

	err := mentorstore.New(h.DB).SetStatus(ctx, missionOID, mentorOID, req.Status)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Mentor assignment not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error updating mentor status", err, "Failed to update mentor.")
		return
	}
	webjson.Write(w, http.StatusOK, map[string]string{"status": req.Status})
}

// HandleUnassignMentor removes the mentor's assignment. Direct mentor
// pointers on enrollments are left in place; the workload query ignores
// mentors with no assignment.
// POST /mentors/{missionID}/{mentorID}/unassign
func (h *Handler) HandleUnassignMentor(w http.ResponseWriter, r *http.Request) {
	missionOID, mentorOID, ok := h.assignmentIDs(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := mentorstore.New(h.DB).Unassign(ctx, missionOID, mentorOID)
	if err != nil {
		apierrors.Internal(w, h.Log, "database error unassigning mentor", err, "Failed to unassign mentor.")
		return
	}
	if n == 0 {
		apierrors.NotFound(w, "Mentor assignment not found.")
		return
	}
	h.Log.Info("mentor unassigned",
		zap.String("mission_id", missionOID.Hex()),
		zap.String("mentor_id", mentorOID.Hex()))
	webjson.Write(w, http.StatusOK, map[string]any{"unassigned": true})
}

// HandleSetStudentMentor points a student's live enrollment at this
// mentor and recomputes the mentor's workload.
// POST /mentors/{missionID}/{mentorID}/students/{studentID}
func (h *Handler) HandleSetStudentMentor(w http.ResponseWriter, r *http.Request) {
	missionOID, mentorOID, ok := h.assignmentIDs(w, r)
	if !ok {
		return
	}
	studentOID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "studentID"))
	if err != nil {
		apierrors.Validation(w, "invalid student id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := mentorstore.New(h.DB).Get(ctx, missionOID, mentorOID); err != nil {
		if err == mongo.ErrNoDocuments {
			apierrors.NotFound(w, "Mentor assignment not found.")
			return
		}
		apierrors.Internal(w, h.Log, "database error loading mentor", err, "Failed to set mentor.")
		return
	}

	err = enrollmentstore.New(h.DB).SetMentor(ctx, missionOID, studentOID, &mentorOID)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Enrollment not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error setting mentor", err, "Failed to set mentor.")
		return
	}

	count, err := mentorworkload.Recompute(ctx, h.DB, missionOID, mentorOID)
	if err != nil {
		h.Log.Warn("failed to recompute mentor workload",
			zap.String("mentor_id", mentorOID.Hex()),
			zap.Error(err))
	}
	webjson.Write(w, http.StatusOK, map[string]any{"mentor_id": mentorOID.Hex(), "current_students": count})
}

// HandleClearStudentMentor removes the direct mentor pointer from a
// student's live enrollment.
// POST /mentors/{missionID}/{mentorID}/students/{studentID}/clear
func (h *Handler) HandleClearStudentMentor(w http.ResponseWriter, r *http.Request) {
	missionOID, mentorOID, ok := h.assignmentIDs(w, r)
	if !ok {
		return
	}
	studentOID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "studentID"))
	if err != nil {
		apierrors.Validation(w, "invalid student id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err = enrollmentstore.New(h.DB).SetMentor(ctx, missionOID, studentOID, nil)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Enrollment not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error clearing mentor", err, "Failed to clear mentor.")
		return
	}

	if _, err := mentorworkload.Recompute(ctx, h.DB, missionOID, mentorOID); err != nil {
		h.Log.Warn("failed to recompute mentor workload",
			zap.String("mentor_id", mentorOID.Hex()),
			zap.Error(err))
	}
	webjson.Write(w, http.StatusOK, map[string]any{"cleared": true})
}

// assignmentIDs parses the {missionID} and {mentorID} URL parameters.
func (h *Handler) assignmentIDs(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, primitive.ObjectID, bool) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	mentorOID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "mentorID"))
	if err != nil {
		apierrors.Validation(w, "invalid mentor id", nil)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return missionOID, mentorOID, true
}

func (h *Handler) missionID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "missionID"))
	if err != nil {
		apierrors.Validation(w, "invalid mission id", nil)
		return primitive.NilObjectID, false
	}
	return oid, true
}
