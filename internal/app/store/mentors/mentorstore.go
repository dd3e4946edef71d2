// internal/app/store/mentors/mentorstore.go
package mentorstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/missionhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	errBadRole = errors.New(`role must be "mission-lead", "coordinator", "advisor", or "supervisor"`)

	ErrDuplicateAssignment = errors.New("mentor is already assigned to this mission")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("mission_mentors")}
}

func validRole(role string) bool {
	switch role {
	case models.MentorRoleLead, models.MentorRoleCoordinator, models.MentorRoleAdvisor, models.MentorRoleSupervisor:
		return true
	}
	return false
}

// Assign creates a mentor's assignment to a mission.
func (s *Store) Assign(ctx context.Context, a models.MissionMentor) (models.MissionMentor, error) {
	if !validRole(a.Role) {
		return models.MissionMentor{}, errBadRole
	}
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	if a.Status == "" {
		a.Status = models.MentorActive
	}
	a.CurrentStudents = 0
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.MissionMentor{}, ErrDuplicateAssignment
		}
		return models.MissionMentor{}, err
	}
	return a, nil
}

// Get returns the assignment for (missionID, mentorID).
func (s *Store) Get(ctx context.Context, missionID, mentorID primitive.ObjectID) (models.MissionMentor, error) {
	var a models.MissionMentor
	err := s.c.FindOne(ctx, bson.M{"mission_id": missionID, "mentor_id": mentorID}).Decode(&a)
	if err != nil {
		return models.MissionMentor{}, err
	}
	return a, nil
}

// ListByMission returns all mentor assignments for a mission.
func (s *Store) ListByMission(ctx context.Context, missionID primitive.ObjectID) ([]models.MissionMentor, error) {
	cur, err := s.c.Find(ctx, bson.M{"mission_id": missionID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.MissionMentor
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetStatus assigns the mentor's status. "overloaded" only ever arrives
// here through an explicit admin action, never from the recompute path.
func (s *Store) SetStatus(ctx context.Context, missionID, mentorID primitive.ObjectID, status string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"mission_id": missionID, "mentor_id": mentorID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetCurrentStudents writes a recomputed workload counter. It never
// touches status: over-capacity is allowed silently unless an admin flags
// the mentor as overloaded.
func (s *Store) SetCurrentStudents(ctx context.Context, missionID, mentorID primitive.ObjectID, count int) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"mission_id": missionID, "mentor_id": mentorID},
		bson.M{"$set": bson.M{"current_students": count, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Unassign removes the mentor's assignment. Returns the number of
// documents deleted (0 or 1).
func (s *Store) Unassign(ctx context.Context, missionID, mentorID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"mission_id": missionID, "mentor_id": mentorID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AssignEntry is one mentor in a bulk assignment.
type AssignEntry struct {
	MentorID primitive.ObjectID
	Role     string
}

// AssignItemResult is the outcome for one entry of a bulk assignment.
type AssignItemResult struct {
	MentorID primitive.ObjectID `json:"mentor_id"`
	OK       bool               `json:"ok"`
	Error    string             `json:"error,omitempty"`
}

// AssignBatch assigns multiple mentors best-effort: each entry succeeds or
// fails on its own and the batch never aborts early.
func (s *Store) AssignBatch(ctx context.Context, missionID primitive.ObjectID, entries []AssignEntry) []AssignItemResult {
	results := make([]AssignItemResult, 0, len(entries))
	for _, e := range entries {
		_, err := s.Assign(ctx, models.MissionMentor{
			MissionID: missionID,
			MentorID:  e.MentorID,
			Role:      e.Role,
		})
		item := AssignItemResult{MentorID: e.MentorID, OK: err == nil}
		if err != nil {
			item.Error = err.Error()
		}
		results = append(results, item)
	}
	return results
}
