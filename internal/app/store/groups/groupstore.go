// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

// ErrCapacityExceeded means a student batch-add would push the group past
// max_students. The whole batch is rejected; no partial application.
var ErrCapacityExceeded = errors.New("adding these students would exceed the group's capacity")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("mentorship_groups")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.MentorshipGroup, error) {
	var g models.MentorshipGroup
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.MentorshipGroup{}, err
	}
	return g, nil
}

// Create inserts a group. Names are not unique within a mission.
func (s *Store) Create(ctx context.Context, g models.MentorshipGroup) (models.MentorshipGroup, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	if g.Status == "" {
		g.Status = models.GroupActive
	}
	if g.Students == nil {
		g.Students = []primitive.ObjectID{}
	}
	if g.Mentors == nil {
		g.Mentors = []primitive.ObjectID{}
	}
	g.CurrentStudents = len(g.Students)
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.MentorshipGroup{}, err
	}
	return g, nil
}

// AddStudents adds students to the group's canonical list. The capacity
// rule rides in the update's filter: the write matches only when
// max_students is unlimited (0) or the union of current and requested
// students fits, so concurrent adds cannot overshoot. On a miss the
// group is re-read to tell NOT_FOUND apart from a capacity rejection.
// Ids already present don't count toward the increase; current_students
// is recomputed from the array in the same update.
func (s *Store) AddStudents(ctx context.Context, groupID primitive.ObjectID, studentIDs []primitive.ObjectID) (models.MentorshipGroup, error) {
	filter := bson.M{
		"_id": groupID,
		"$expr": bson.M{"$or": bson.A{
			bson.M{"$lte": bson.A{"$max_students", 0}},
			bson.M{"$lte": bson.A{
				bson.M{"$size": bson.M{"$setUnion": bson.A{"$students", studentIDs}}},
				"$max_students",
			}},
		}},
	}
	g, err := s.mutateMembers(ctx, filter, bson.M{
		"$set": bson.M{"students": bson.M{"$setUnion": bson.A{"$students", studentIDs}}},
	})
	if err == mongo.ErrNoDocuments {
		if _, gerr := s.GetByID(ctx, groupID); gerr != nil {
			return models.MentorshipGroup{}, gerr
		}
		return models.MentorshipGroup{}, ErrCapacityExceeded
	}
	return g, err
}

// AddMentors adds mentors to the group. No capacity rule applies.
func (s *Store) AddMentors(ctx context.Context, groupID primitive.ObjectID, mentorIDs []primitive.ObjectID) (models.MentorshipGroup, error) {
	return s.mutateMembers(ctx, bson.M{"_id": groupID}, bson.M{
		"$set": bson.M{"mentors": bson.M{"$setUnion": bson.A{"$mentors", mentorIDs}}},
	})
}

// RemoveUser pulls the id from both the student and mentor lists. Removing
// an id that is not present is a no-op, not an error.
func (s *Store) RemoveUser(ctx context.Context, groupID, userID primitive.ObjectID) (models.MentorshipGroup, error) {
	pull := bson.M{
		"$set": bson.M{
			"students": bson.M{"$filter": bson.M{
				"input": "$students",
				"as":    "sid",
				"cond":  bson.M{"$ne": bson.A{"$$sid", userID}},
			}},
			"mentors": bson.M{"$filter": bson.M{
				"input": "$mentors",
				"as":    "mid",
				"cond":  bson.M{"$ne": bson.A{"$$mid", userID}},
			}},
		},
	}
	return s.mutateMembers(ctx, bson.M{"_id": groupID}, pull)
}

// mutateMembers applies one pipeline stage mutating the member arrays,
// then recomputes current_students from the students array in the same
// atomic update. The filter can carry conditions beyond the id; a
// non-matching filter surfaces as mongo.ErrNoDocuments.
func (s *Store) mutateMembers(ctx context.Context, filter bson.M, stage bson.M) (models.MentorshipGroup, error) {
	pipeline := bson.A{
		stage,
		bson.M{"$set": bson.M{
			"current_students": bson.M{"$size": "$students"},
			"updated_at":       time.Now().UTC(),
		}},
	}
	var updated models.MentorshipGroup
	err := s.c.FindOneAndUpdate(ctx,
		filter,
		pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return models.MentorshipGroup{}, err
	}
	return updated, nil
}

// GroupEdit carries the editable metadata fields. Nil pointers leave the
// current value alone.
type GroupEdit struct {
	Name            *string
	Description     *string
	GroupType       *string
	SkillLevel      *string
	Status          *string
	Channel         *string
	Meeting         *models.MeetingSchedule
	PrimaryMentorID *primitive.ObjectID
	MaxStudents     *int
}

// UpdateInfo applies a free-form metadata edit. The primary mentor is
// expected, not enforced, to be in the group's mentor list.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, edit GroupEdit) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if edit.Name != nil && strings.TrimSpace(*edit.Name) != "" {
		set["name"] = *edit.Name
		set["name_ci"] = text.Fold(*edit.Name)
	}
	if edit.Description != nil {
		set["description"] = *edit.Description
	}
	if edit.GroupType != nil {
		set["group_type"] = *edit.GroupType
	}
	if edit.SkillLevel != nil {
		set["skill_level"] = *edit.SkillLevel
	}
	if edit.Status != nil {
		set["status"] = *edit.Status
	}
	if edit.Channel != nil {
		set["channel"] = *edit.Channel
	}
	if edit.Meeting != nil {
		set["meeting"] = *edit.Meeting
	}
	if edit.PrimaryMentorID != nil {
		set["primary_mentor_id"] = *edit.PrimaryMentorID
	}
	if edit.MaxStudents != nil {
		set["max_students"] = *edit.MaxStudents
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListByMission returns the mission's groups ordered by folded name.
func (s *Store) ListByMission(ctx context.Context, missionID primitive.ObjectID) ([]models.MentorshipGroup, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"mission_id": missionID},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.MentorshipGroup
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListWithMentor returns the mission's groups that list the mentor.
func (s *Store) ListWithMentor(ctx context.Context, missionID, mentorID primitive.ObjectID) ([]models.MentorshipGroup, error) {
	cur, err := s.c.Find(ctx, bson.M{"mission_id": missionID, "mentors": mentorID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.MentorshipGroup
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// GroupsOfStudent returns the ids of groups in the mission whose student
// list contains the student. Used to surface soft-invariant violations
// (a student should be in at most one group per mission).
func (s *Store) GroupsOfStudent(ctx context.Context, missionID, studentID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"mission_id": missionID, "students": studentID},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// Delete removes a group by ID. Returns the number of documents deleted (0 or 1).
// Clearing cached group pointers on enrollments is the caller's job.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
