// internal/app/store/reconcileruns/runstore.go
package reconcilerunstore

import (
	"context"
	"time"

	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store records reconciliation job executions for audit.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reconcile_runs")}
}

// Record persists one run and returns it with its generated run id.
// Recording is best-effort from the caller's point of view: a failure
// here must not fail the reconciliation itself.
func (s *Store) Record(ctx context.Context, missionID primitive.ObjectID, job string, changed int, errs []string) (models.ReconcileRun, error) {
	run := models.ReconcileRun{
		RunID:     uuid.NewString(),
		MissionID: missionID,
		Job:       job,
		Changed:   changed,
		Errors:    errs,
		RanAt:     time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, run); err != nil {
		return models.ReconcileRun{}, err
	}
	return run, nil
}

// ListByMission returns the most recent runs for a mission, newest first.
func (s *Store) ListByMission(ctx context.Context, missionID primitive.ObjectID, limit int64) ([]models.ReconcileRun, error) {
	if limit <= 0 {
		limit = 20
	}
	cur, err := s.c.Find(ctx,
		bson.M{"mission_id": missionID},
		options.Find().SetSort(bson.D{{Key: "ran_at", Value: -1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var runs []models.ReconcileRun
	if err := cur.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}
