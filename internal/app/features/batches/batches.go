// internal/app/features/batches/batches.go
package batches

import (
	"context"
	"net/http"

	batchmemberstore "github.com/dalemusser/missionhub/internal/app/store/batchmembers"
	userstore "github.com/dalemusser/missionhub/internal/app/store/users"
	"github.com/dalemusser/missionhub/internal/app/system/apierrors"
	"github.com/dalemusser/missionhub/internal/app/system/timeouts"
	"github.com/dalemusser/missionhub/internal/app/system/validate"
	"github.com/dalemusser/missionhub/internal/app/system/webjson"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// setMembershipRequest upserts one student's batch membership status.
// Moving a student to pending or rejected does not drop existing
// enrollments; the fix reconciliation job handles that.
type setMembershipRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=approved pending rejected"`
}

// HandleSetMembership creates or updates a batch membership.
// POST /batches/{batchID}/members
func (h *Handler) HandleSetMembership(w http.ResponseWriter, r *http.Request) {
	batchOID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "batchID"))
	if err != nil {
		apierrors.Validation(w, "invalid batch id", nil)
		return
	}
	var req setMembershipRequest
	if err := webjson.Decode(r, &req); err != nil {
		apierrors.Validation(w, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		apierrors.Validation(w, err.Error(), nil)
		return
	}
	studentOID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		apierrors.Validation(w, "invalid student id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := userstore.New(h.DB).GetByID(ctx, studentOID); err != nil {
		if err == mongo.ErrNoDocuments {
			apierrors.NotFound(w, "Student not found.")
			return
		}
		apierrors.Internal(w, h.Log, "database error loading student", err, "Failed to update membership.")
		return
	}

	if err := batchmemberstore.New(h.DB).Upsert(ctx, batchOID, studentOID, req.Status); err != nil {
		apierrors.Internal(w, h.Log, "database error upserting membership", err, "Failed to update membership.")
		return
	}

	h.Log.Info("batch membership set",
		zap.String("batch_id", batchOID.Hex()),
		zap.String("student_id", studentOID.Hex()),
		zap.String("status", req.Status))
	webjson.Write(w, http.StatusOK, map[string]string{
		"batch_id":   batchOID.Hex(),
		"student_id": studentOID.Hex(),
		"status":     req.Status,
	})
}

// HandleGetMembership reports whether a student is an approved member of
// a batch.
// GET /batches/{batchID}/members/{studentID}
func (h *Handler) HandleGetMembership(w http.ResponseWriter, r *http.Request) {
	batchOID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "batchID"))
	if err != nil {
		apierrors.Validation(w, "invalid batch id", nil)
		return
	}
	studentOID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "studentID"))
	if err != nil {
		apierrors.Validation(w, "invalid student id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	approved, err := batchmemberstore.New(h.DB).IsApproved(ctx, batchOID, studentOID)
	if err != nil {
		apierrors.Internal(w, h.Log, "database error checking membership", err, "Failed to check membership.")
		return
	}
	webjson.Write(w, http.StatusOK, map[string]any{
		"batch_id":   batchOID.Hex(),
		"student_id": studentOID.Hex(),
		"approved":   approved,
	})
}
