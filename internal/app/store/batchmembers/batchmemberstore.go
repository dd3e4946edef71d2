// internal/app/store/batchmembers/batchmemberstore.go
package batchmemberstore

import (
	"context"
	"time"

	"github.com/dalemusser/missionhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store answers batch-membership questions. Enrollment preconditions and
// the fix reconciliation job both read the approved set from here.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("batch_members")}
}

// Upsert sets the membership status for (batchID, studentID), creating the
// record when missing.
func (s *Store) Upsert(ctx context.Context, batchID, studentID primitive.ObjectID, status string) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"batch_id": batchID, "student_id": studentID},
		bson.M{
			"$set":         bson.M{"status": status, "updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil && wafflemongo.IsDup(err) {
		// Concurrent upsert raced on the unique index; the record exists now.
		return nil
	}
	return err
}

// IsApproved reports whether the student is an approved member of the batch.
func (s *Store) IsApproved(ctx context.Context, batchID, studentID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"batch_id":   batchID,
		"student_id": studentID,
		"status":     models.BatchApproved,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ApprovedSet returns the ids of all approved students in the batch as a set.
func (s *Store) ApprovedSet(ctx context.Context, batchID primitive.ObjectID) (map[primitive.ObjectID]struct{}, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"batch_id": batchID, "status": models.BatchApproved},
		options.Find().SetProjection(bson.M{"student_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	set := make(map[primitive.ObjectID]struct{})
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

// FilterUnapproved returns the subset of studentIDs that are NOT approved
// members of the batch, preserving request order.
func (s *Store) FilterUnapproved(ctx context.Context, batchID primitive.ObjectID, studentIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	approved, err := s.ApprovedSet(ctx, batchID)
	if err != nil {
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
