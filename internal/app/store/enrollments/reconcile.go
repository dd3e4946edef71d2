// internal/app/store/enrollments/reconcile.go
package enrollmentstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/missionhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The reconciliation jobs exist because multi-document mutations are not
// transactional: drift between representations is tolerated and repaired
// here instead of prevented up front. Every job is idempotent: running
// twice produces the same end state as running once.

// Fix drops every live enrollment whose student is no longer an approved
// member of the mission's batch. Returns the number of records changed;
// 0 means the mission was already consistent, which is not an error.
func (s *Store) Fix(ctx context.Context, missionID primitive.ObjectID) (int64, error) {
	var mission models.Mission
	if err := s.missions.FindOne(ctx, bson.M{"_id": missionID}).Decode(&mission); err != nil {
		return 0, err
	}

	approved, err := s.approvedIDs(ctx, mission.BatchID)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"mission_id": missionID,
			"status":     bson.M{"$ne": models.EnrollmentDropped},
			"student_id": bson.M{"$nin": approved},
		},
		bson.M{"$set": bson.M{
			"status":           models.EnrollmentDropped,
			"dropped_at":       now,
			"last_activity_at": now,
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Sync migrates the legacy embedded Mission.students array into
// student_missions. Entries that already have a record (any status) are
// left alone; existing records are never overwritten. Malformed entries
// are collected into the returned error list and do not abort the rest.
func (s *Store) Sync(ctx context.Context, missionID primitive.ObjectID) (synced int, errs []string, err error) {
	var mission models.Mission
	if err := s.missions.FindOne(ctx, bson.M{"_id": missionID}).Decode(&mission); err != nil {
		return 0, nil, err
	}

	for i, entry := range mission.Students {
		if entry.StudentID.IsZero() {
			errs = append(errs, fmt.Sprintf("students[%d]: missing student id", i))
			continue
		}

		count, err := s.c.CountDocuments(ctx, bson.M{
			"mission_id": missionID,
			"student_id": entry.StudentID,
		})
		if err != nil {
			errs = append(errs, fmt.Sprintf("students[%d] (%s): %v", i, entry.StudentID.Hex(), err))
			continue
		}
		if count > 0 {
			continue
		}

		doc := embeddedToRecord(mission, entry)
		if _, err := s.c.InsertOne(ctx, doc); err != nil {
			if wafflemongo.IsDup(err) {
				// A concurrent enroll beat us to it; the record exists, so
				// this entry is in sync.
				continue
			}
			errs = append(errs, fmt.Sprintf("students[%d] (%s): %v", i, entry.StudentID.Hex(), err))
			continue
		}
		synced++
	}
	return synced, errs, nil
}

// Clear marks every non-dropped enrollment in the mission as dropped.
// Used before a full re-import. Returns the number of records updated.
func (s *Store) Clear(ctx context.Context, missionID primitive.ObjectID) (int64, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"mission_id": missionID,
			"status":     bson.M{"$ne": models.EnrollmentDropped},
		},
		bson.M{"$set": bson.M{
			"status":           models.EnrollmentDropped,
			"dropped_at":       now,
			"last_activity_at": now,
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// embeddedToRecord converts one legacy embedded entry into a full
// StudentMission document, copying status/progress/mentor/started_at and
// defaulting status to active and progress to 0.
func embeddedToRecord(mission models.Mission, entry models.EmbeddedStudent) models.StudentMission {
	now := time.Now().UTC()

	status := entry.Status
	if status == "" {
		status = models.EnrollmentActive
	}
	progress := entry.Progress
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	started := now
	if entry.StartedAt != nil {
		started = *entry.StartedAt
	}

	rec := models.StudentMission{
		StudentID:      entry.StudentID,
		MissionID:      mission.ID,
		BatchID:        mission.BatchID,
		MentorID:       entry.MentorID,
		Status:         status,
		Progress:       progress,
		StartedAt:      started,
		LastActivityAt: now,
	}
	if status == models.EnrollmentDropped {
		rec.DroppedAt = &now
	}
	return rec
}

// approvedIDs returns the approved student ids of a batch as a slice for
// use in $nin filters.
func (s *Store) approvedIDs(ctx context.Context, batchID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.batch.Find(ctx,
		bson.M{"batch_id": batchID, "status": models.BatchApproved},
		options.Find().SetProjection(bson.M{"student_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := make([]primitive.ObjectID, 0)
	for cur.Next(ctx) {
		var row struct {
			StudentID primitive.ObjectID `bson:"student_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.StudentID)
	}
	return ids, cur.Err()
}
