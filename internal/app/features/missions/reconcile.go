// internal/app/features/missions/reconcile.go
package missions

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/missionhub/internal/app/store/enrollments"
	reconcilerunstore "github.com/dalemusser/missionhub/internal/app/store/reconcileruns"
	"github.com/dalemusser/missionhub/internal/app/system/apierrors"
	"github.com/dalemusser/missionhub/internal/app/system/timeouts"
	"github.com/dalemusser/missionhub/internal/app/system/webjson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleReconcileFix drops every enrollment whose student is no longer an
// approved member of the mission's batch.
// POST /missions/{id}/reconcile/fix
func (h *Handler) HandleReconcileFix(w http.ResponseWriter, r *http.Request) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	changed, err := enrollmentstore.New(h.DB).Fix(ctx, missionOID)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Mission not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "reconcile fix failed", err, "Reconciliation failed.")
		return
	}

	run := h.recordRun(ctx, missionOID, "fix", int(changed), nil)
	h.Log.Info("reconcile fix complete",
		zap.String("mission_id", missionOID.Hex()),
		zap.Int64("changed", changed))
	webjson.Write(w, http.StatusOK, reconcileFixResponse{RunID: run, ChangedCount: changed})
}

// HandleReconcileSync backfills enrollment records for students present
// only in the mission's embedded roster.
// POST /missions/{id}/reconcile/sync
func (h *Handler) HandleReconcileSync(w http.ResponseWriter, r *http.Request) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	synced, errs, err := enrollmentstore.New(h.DB).Sync(ctx, missionOID)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "Mission not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "reconcile sync failed", err, "Reconciliation failed.")
		return
	}

	run := h.recordRun(ctx, missionOID, "sync", synced, errs)
	h.Log.Info("reconcile sync complete",
		zap.String("mission_id", missionOID.Hex()),
		zap.Int("synced", synced),
		zap.Int("errors", len(errs)))
	webjson.Write(w, http.StatusOK, reconcileSyncResponse{RunID: run, SyncedCount: synced, Errors: errs})
}

// HandleReconcileClear drops every live enrollment of the mission.
// POST /missions/{id}/reconcile/clear
func (h *Handler) HandleReconcileClear(w http.ResponseWriter, r *http.Request) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	updated, err := enrollmentstore.New(h.DB).Clear(ctx, missionOID)
	if err != nil {
		apierrors.Internal(w, h.Log, "reconcile clear failed", err, "Reconciliation failed.")
		return
	}

	run := h.recordRun(ctx, missionOID, "clear", int(updated), nil)
	h.Log.Info("reconcile clear complete",
		zap.String("mission_id", missionOID.Hex()),
		zap.Int64("updated", updated))
	webjson.Write(w, http.StatusOK, reconcileClearResponse{RunID: run, UpdatedCount: updated})
}

// HandleListReconcileRuns returns recent reconciliation runs for a
// mission, newest first. ?limit= caps the page.
// GET /missions/{id}/reconcile/runs
func (h *Handler) HandleListReconcileRuns(w http.ResponseWriter, r *http.Request) {
	missionOID, ok := h.missionID(w, r)
	if !ok {
		return
	}
	var limit int64
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			apierrors.Validation(w, "invalid limit", nil)
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	runs, err := reconcilerunstore.New(h.DB).ListByMission(ctx, missionOID, limit)
	if err != nil {
		apierrors.Internal(w, h.Log, "database error listing reconcile runs", err, "Failed to list runs.")
		return
	}
	webjson.Write(w, http.StatusOK, runs)
}

// recordRun writes the audit record for a finished reconciliation. The
// reconciliation itself already succeeded, so a failure here is logged
// and the run id comes back empty rather than failing the request.
func (h *Handler) recordRun(ctx context.Context, missionID primitive.ObjectID, job string, changed int, errs []string) string {
	run, err := reconcilerunstore.New(h.DB).Record(ctx, missionID, job, changed, errs)
	if err != nil {
		h.Log.Warn("failed to record reconcile run",
			zap.String("mission_id", missionID.Hex()),
			zap.String("job", job),
			zap.Error(err))
		return ""
	}
	return run.RunID
}
