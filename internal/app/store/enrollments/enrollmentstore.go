// internal/app/store/enrollments/enrollmentstore.go
package enrollmentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/missionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store owns the student_missions collection. It reads missions and
// batch_members directly for preconditions, the same way the membership
// store loads its sibling collections.
type Store struct {
	c        *mongo.Collection
	missions *mongo.Collection
	batch    *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("student_missions"),
		missions: db.Collection("missions"),
		batch:    db.Collection("batch_members"),
	}
}

var (
	// ErrDuplicateRequestIDs means the same student id appeared twice in
	// one request. Rejected before any mutation.
	ErrDuplicateRequestIDs = errors.New("duplicate student ids in request")

	// ErrAllAlreadyEnrolled means every requested id already had a live
	// enrollment; nothing was created.
	ErrAllAlreadyEnrolled = errors.New("all requested students are already enrolled")

	// ErrNoneEnrolled means a removal request matched no live enrollments.
	ErrNoneEnrolled = errors.New("none of the requested students are enrolled")
)

// NotApprovedError carries the student ids that failed the approved
// batch-membership precondition.
type NotApprovedError struct {
	StudentIDs []primitive.ObjectID
}

func (e *NotApprovedError) Error() string {
	return fmt.Sprintf("%d students are not approved members of the mission batch", len(e.StudentIDs))
}

// EnrollResult reports what one Enroll call did.
type EnrollResult struct {
	Added           int
	AlreadyEnrolled []primitive.ObjectID
}

// Enroll creates a live enrollment for each student not already enrolled.
//
// Preconditions, checked before any insert:
//   - the mission exists (mongo.ErrNoDocuments otherwise)
//   - studentIDs contains no duplicates (ErrDuplicateRequestIDs)
//   - every student is an approved member of the mission's batch
//     (*NotApprovedError listing the offenders)
//
// Students with an existing non-dropped record are skipped and reported in
// AlreadyEnrolled; the call fails with ErrAllAlreadyEnrolled only when
// every requested id was a skip. Mentor counters are not touched.
func (s *Store) Enroll(ctx context.Context, missionID primitive.ObjectID, studentIDs []primitive.ObjectID) (EnrollResult, error) {
	seen := make(map[primitive.ObjectID]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		if _, dup := seen[id]; dup {
			return EnrollResult{}, ErrDuplicateRequestIDs
		}
		seen[id] = struct{}{}
	}

	var mission models.Mission
	if err := s.missions.FindOne(ctx, bson.M{"_id": missionID}).Decode(&mission); err != nil {
		return EnrollResult{}, err
	}

	unapproved, err := s.filterUnapproved(ctx, mission.BatchID, studentIDs)
	if err != nil {
		return EnrollResult{}, err
	}
	if len(unapproved) > 0 {
		return EnrollResult{}, &NotApprovedError{StudentIDs: unapproved}
	}

	enrolled, err := s.liveSet(ctx, missionID, studentIDs)
	if err != nil {
		return EnrollResult{}, err
	}

	now := time.Now().UTC()
	var docs []interface{}
	var already []primitive.ObjectID
	for _, id := range studentIDs {
		if _, ok := enrolled[id]; ok {
			already = append(already, id)
			continue
		}
		docs = append(docs, models.StudentMission{
			StudentID:      id,
			MissionID:      missionID,
			BatchID:        mission.BatchID,
			Status:         models.EnrollmentActive,
			Progress:       0,
			StartedAt:      now,
			LastActivityAt: now,
		})
	}
	if len(docs) == 0 {
		return EnrollResult{AlreadyEnrolled: already}, ErrAllAlreadyEnrolled
	}

	// ordered:false so a concurrent enroll racing on the partial unique
	// index only loses its own insert, not the whole batch.
	res, err := s.c.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	added := 0
	if res != nil {
		added = len(res.InsertedIDs)
	}
	if err != nil {
		var bulkErr mongo.BulkWriteException
		if errors.As(err, &bulkErr) {
			for _, we := range bulkErr.WriteErrors {
				if we.Code != 11000 {
					return EnrollResult{Added: added, AlreadyEnrolled: already}, err
				}
			}
			// Races became duplicates; report them as already enrolled.
			return EnrollResult{Added: added, AlreadyEnrolled: already}, nil
		}
		return EnrollResult{Added: added, AlreadyEnrolled: already}, err
	}
	return EnrollResult{Added: added, AlreadyEnrolled: already}, nil
}

// RemoveResult reports what one Remove call did.
type RemoveResult struct {
	Removed     int
	NotEnrolled []primitive.ObjectID
}

// Remove soft-drops the live enrollments of the given students: status
// becomes "dropped" and dropped_at / last_activity_at are stamped. Ids
// without a live enrollment are warnings, collected in NotEnrolled;
// the call fails with ErrNoneEnrolled only when nothing matched.
func (s *Store) Remove(ctx context.Context, missionID primitive.ObjectID, studentIDs []primitive.ObjectID) (RemoveResult, error) {
	enrolled, err := s.liveSet(ctx, missionID, studentIDs)
	if err != nil {
		return RemoveResult{}, err
	}

	var hit []primitive.ObjectID
	var miss []primitive.ObjectID
	for _, id := range studentIDs {
		if _, ok := enrolled[id]; ok {
			hit = append(hit, id)
		} else {
			miss = append(miss, id)
		}
	}
	if len(hit) == 0 {
		return RemoveResult{NotEnrolled: miss}, ErrNoneEnrolled
	}

	now := time.Now().UTC()
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"mission_id": missionID,
			"student_id": bson.M{"$in": hit},
			"status":     bson.M{"$ne": models.EnrollmentDropped},
		},
		bson.M{"$set": bson.M{
			"status":           models.EnrollmentDropped,
			"dropped_at":       now,
			"last_activity_at": now,
		}},
	)
	if err != nil {
		return RemoveResult{NotEnrolled: miss}, err
	}
	return RemoveResult{Removed: int(res.ModifiedCount), NotEnrolled: miss}, nil
}

// SetStatus updates the status (and optionally progress) of a student's
// latest enrollment record. The same record is reused for every status
// flip; only a fresh Enroll after a drop creates a new document.
//
// completed_at is stamped on a transition to "completed" and dropped_at on
// a transition to "dropped"; neither is ever cleared afterwards. Progress
// is clamped to [0,100]. Returns mongo.ErrNoDocuments when no record
// exists for the pair.
func (s *Store) SetStatus(ctx context.Context, missionID, studentID primitive.ObjectID, status string, progress *int) (models.StudentMission, error) {
	now := time.Now().UTC()
	set := bson.M{
		"status":           status,
		"last_activity_at": now,
	}
	if progress != nil {
		p := *progress
		if p < 0 {
			p = 0
		}
		if p > 100 {
			p = 100
		}
		set["progress"] = p
	}
	switch status {
	case models.EnrollmentCompleted:
		set["completed_at"] = now
	case models.EnrollmentDropped:
		set["dropped_at"] = now
	}

	var updated models.StudentMission
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"mission_id": missionID, "student_id": studentID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().
			SetSort(bson.D{{Key: "started_at", Value: -1}}).
			SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return models.StudentMission{}, err
	}
	return updated, nil
}

// SetMentor assigns (or clears, with nil) the direct mentor pointer on a
// student's live enrollment. Callers recompute the mentor's workload
// counter afterwards.
func (s *Store) SetMentor(ctx context.Context, missionID, studentID primitive.ObjectID, mentorID *primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"last_activity_at": time.Now().UTC()}}
	if mentorID != nil {
		update["$set"].(bson.M)["mentor_id"] = *mentorID
	} else {
		update["$unset"] = bson.M{"mentor_id": ""}
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"mission_id": missionID,
			"student_id": studentID,
			"status":     bson.M{"$ne": models.EnrollmentDropped},
		},
		update,
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetGroupPointer caches the mentorship-group id on the live enrollments
// of the given students. The group's students array stays canonical; this
// pointer is derived and refreshed alongside group mutations.
func (s *Store) SetGroupPointer(ctx context.Context, missionID primitive.ObjectID, studentIDs []primitive.ObjectID, groupID *primitive.ObjectID) error {
	if len(studentIDs) == 0 {
		return nil
	}
	filter := bson.M{
		"mission_id": missionID,
		"student_id": bson.M{"$in": studentIDs},
		"status":     bson.M{"$ne": models.EnrollmentDropped},
	}
	var update bson.M
	if groupID != nil {
		update = bson.M{"$set": bson.M{"mentorship_group_id": *groupID}}
	} else {
		update = bson.M{"$unset": bson.M{"mentorship_group_id": ""}}
	}
	_, err := s.c.UpdateMany(ctx, filter, update)
	return err
}

// ActiveRoster returns all non-dropped enrollments for a mission.
func (s *Store) ActiveRoster(ctx context.Context, missionID primitive.ObjectID) ([]models.StudentMission, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"mission_id": missionID, "status": bson.M{"$ne": models.EnrollmentDropped}},
		options.Find().SetSort(bson.D{{Key: "started_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var roster []models.StudentMission
	if err := cur.All(ctx, &roster); err != nil {
		return nil, err
	}
	return roster, nil
}

// CountLive returns the number of non-dropped enrollments for a mission.
func (s *Store) CountLive(ctx context.Context, missionID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"mission_id": missionID,
		"status":     bson.M{"$ne": models.EnrollmentDropped},
	})
}

// liveSet returns which of the given students currently hold a non-dropped
// enrollment in the mission.
func (s *Store) liveSet(ctx context.Context, missionID primitive.ObjectID, studentIDs []primitive.ObjectID) (map[primitive.ObjectID]struct{}, error) {
	set := make(map[primitive.ObjectID]struct{})
	if len(studentIDs) == 0 {
		return set, nil
	}
	cur, err := s.c.Find(ctx,
		bson.M{
			"mission_id": missionID,
			"student_id": bson.M{"$in": studentIDs},
			"status":     bson.M{"$ne": models.EnrollmentDropped},
		},
		options.Find().SetProjection(bson.M{"student_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			StudentID primitive.ObjectID `bson:"student_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		set[row.StudentID] = struct{}{}
	}
	return set, cur.Err()
}

// filterUnapproved returns the student ids lacking an approved batch_members
// record for the batch, preserving request order.
func (s *Store) filterUnapproved(ctx context.Context, batchID primitive.ObjectID, studentIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	cur, err := s.batch.Find(ctx,
		bson.M{
			"batch_id":   batchID,
			"student_id": bson.M{"$in": studentIDs},
			"status":     models.BatchApproved,
		},
		options.Find().SetProjection(bson.M{"student_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	approved := make(map[primitive.ObjectID]struct{}, len(studentIDs))
	for cur.Next(ctx) {
		var row struct {
			StudentID primitive.ObjectID `bson:"student_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		approved[row.StudentID] = struct{}{}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	var out []primitive.ObjectID
	for _, id := range studentIDs {
		if _, ok := approved[id]; !ok {
			out = append(out, id)
		}
	}
	return out, nil
}
