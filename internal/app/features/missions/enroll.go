// internal/app/features/missions/enroll.go
package missions

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/missionhub/internal/app/store/enrollments"
	"github.com/dalemusser/missionhub/internal/app/store/queries/missionroster"
	"github.com/dalemusser/missionhub/internal/app/system/apierrors"
	"github.com/dalemusser/missionhub/internal/app/system/timeouts"
	"github.com/dalemusser/missionhub/internal/app/system/validate"
	"github.com/dalemusser/missionhub/internal/app/system/webjson"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleGetRoster returns the mission's enrollments joined with student
// info. ?status= narrows to one enrollment status; ?include_dropped=true
// adds history records.
// GET /missions/{id}/roster
func (h *Handler) HandleGetRoster(w http.ResponseWriter, r *http.Request) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	roster, err := missionroster.ListMissionRoster(ctx, h.DB, missionOID, missionroster.Filter{
		Status:         r.URL.Query().Get("status"),
		IncludeDropped: r.URL.Query().Get("include_dropped") == "true",
	})
	if err != nil {
		apierrors.Internal(w, h.Log, "database error loading roster", err, "Failed to load roster.")
		return
	}
	webjson.Write(w, http.StatusOK, roster)
}

// HandleEnrollStudents enrolls a set of students into a mission.
// Already-enrolled students are skipped and reported, not treated as an
// error, unless the whole request was redundant.
// POST /missions/{id}/students
func (h *Handler) HandleEnrollStudents(w http.ResponseWriter, r *http.Request) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return
	}
	var req enrollRequest
	if err := webjson.Decode(r, &req); err != nil {
		apierrors.Validation(w, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		apierrors.Validation(w, err.Error(), nil)
		return
	}
	studentIDs, ok := parseObjectIDs(w, req.StudentIDs)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	res, err := enrollmentstore.New(h.DB).Enroll(ctx, missionOID, studentIDs)
	var notApproved *enrollmentstore.NotApprovedError
	switch {
	case err == mongo.ErrNoDocuments:
		apierrors.NotFound(w, "Mission not found.")
		return
	case err == enrollmentstore.ErrDuplicateRequestIDs:
		apierrors.Validation(w, err.Error(), nil)
		return
	case errors.As(err, &notApproved):
		apierrors.Validation(w, err.Error(), map[string]any{
			"student_ids": hexIDs(notApproved.StudentIDs),
		})
		return
	case err == enrollmentstore.ErrAllAlreadyEnrolled:
		apierrors.Validation(w, err.Error(), map[string]any{
			"student_ids": req.StudentIDs,
		})
		return
	case err != nil:
		apierrors.Internal(w, h.Log, "database error enrolling students", err, "Failed to enroll students.")
		return
	}

	h.Log.Info("students enrolled",
		zap.String("mission_id", missionOID.Hex()),
		zap.Int("added", res.Added),
		zap.Int("already_enrolled", len(res.AlreadyEnrolled)))

	roster, err := missionroster.ListMissionRoster(ctx, h.DB, missionOID, missionroster.Filter{})
	if err != nil {
		apierrors.Internal(w, h.Log, "database error loading roster", err, "Enrolled, but failed to load roster.")
		return
	}
	webjson.Write(w, http.StatusOK, enrollResponse{
		AddedCount:      res.Added,
		AlreadyEnrolled: hexIDs(res.AlreadyEnrolled),
		Roster:          roster,
	})
}

// HandleRemoveStudents drops the live enrollments of a set of students.
// Students with no live enrollment produce warnings instead of failing
// the batch.
// POST /missions/{id}/students/remove
func (h *Handler) HandleRemoveStudents(w http.ResponseWriter, r *http.Request) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return
	}
	var req removeRequest
	if err := webjson.Decode(r, &req); err != nil {
		apierrors.Validation(w, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		apierrors.Validation(w, err.Error(), nil)
		return
	}
	studentIDs, ok := parseObjectIDs(w, req.StudentIDs)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	res, err := enrollmentstore.New(h.DB).Remove(ctx, missionOID, studentIDs)
	switch {
	case err == enrollmentstore.ErrDuplicateRequestIDs:
		apierrors.Validation(w, err.Error(), nil)
		return
	case err == enrollmentstore.ErrNoneEnrolled:
		apierrors.Validation(w, err.Error(), map[string]any{
			"student_ids": req.StudentIDs,
		})
		return
	case err != nil:
		apierrors.Internal(w, h.Log, "database error removing students", err, "Failed to remove students.")
		return
	}

	warnings := make([]string, 0, len(res.NotEnrolled))
	for _, id := range res.NotEnrolled {
		warnings = append(warnings, "student "+id.Hex()+" has no live enrollment")
	}

	h.Log.Info("students removed",
		zap.String("mission_id", missionOID.Hex()),
		zap.Int("removed", res.Removed),
		zap.Int("not_enrolled", len(res.NotEnrolled)))

	roster, err := missionroster.ListMissionRoster(ctx, h.DB, missionOID, missionroster.Filter{})
	if err != nil {
		apierrors.Internal(w, h.Log, "database error loading roster", err, "Removed, but failed to load roster.")
		return
	}
	webjson.Write(w, http.StatusOK, removeResponse{
		RemovedCount: res.Removed,
		Warnings:     warnings,
		Roster:       roster,
	})
}

// HandleSetStudentStatus updates one student's enrollment status and
// optionally progress.
// POST /missions/{id}/students/{studentID}/status
func (h *Handler) HandleSetStudentStatus(w http.ResponseWriter, r *http.Request) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return
	}
	studentOID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "studentID"))
	if err != nil {
		apierrors.Validation(w, "invalid student id", nil)
		return
	}
	var req studentStatusRequest
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

	record, err := enrollmentstore.New(h.DB).SetStatus(ctx, missionOID, studentOID, req.Status, req.Progress)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Enrollment not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error updating enrollment status", err, "Failed to update enrollment.")
		return
	}
	webjson.Write(w, http.StatusOK, record)
}

// HandleBulkStudentStatus applies status updates to several students in
// one call. Each item succeeds or fails independently.
// POST /missions/{id}/students/bulk-status
func (h *Handler) HandleBulkStudentStatus(w http.ResponseWriter, r *http.Request) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return
	}
	var req bulkStatusRequest
	if err := webjson.Decode(r, &req); err != nil {
		apierrors.Validation(w, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		apierrors.Validation(w, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	store := enrollmentstore.New(h.DB)
	results := make([]bulkStatusResult, 0, len(req.Items))
	for _, item := range req.Items {
		studentOID, err := primitive.ObjectIDFromHex(item.StudentID)
		if err != nil {
			results = append(results, bulkStatusResult{StudentID: item.StudentID, Error: "invalid student id"})
			continue
		}
		record, err := store.SetStatus(ctx, missionOID, studentOID, item.Status, item.Progress)
		if err == mongo.ErrNoDocuments {
			results = append(results, bulkStatusResult{StudentID: item.StudentID, Error: "no live enrollment"})
			continue
		}
		if err != nil {
			results = append(results, bulkStatusResult{StudentID: item.StudentID, Error: err.Error()})
			continue
		}
		results = append(results, bulkStatusResult{StudentID: item.StudentID, OK: true, Record: &record})
	}
	webjson.Write(w, http.StatusOK, results)
}

// parseObjectIDs converts hex ids from a request, writing the validation
// error itself so callers can simply return on !ok.
func parseObjectIDs(w http.ResponseWriter, ids []string) ([]primitive.ObjectID, bool) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			apierrors.Validation(w, "invalid student id: "+id, nil)
			return nil, false
		}
		out = append(out, oid)
	}
	return out, true
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
