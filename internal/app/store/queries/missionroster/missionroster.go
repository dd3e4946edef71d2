// internal/app/store/queries/missionroster/missionroster.go
package missionroster

import (
	"context"

	"github.com/dalemusser/missionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RosterEntry joins one enrollment with its student's display data.
type RosterEntry struct {
	Enrollment models.StudentMission `bson:"enrollment" json:"enrollment"`
	Student    models.User           `bson:"student" json:"student"`
}

// Filter controls which enrollments are included.
// Leave Status empty to include all non-dropped records; set
// IncludeDropped to also return history records.
type Filter struct {
	Status         string
	IncludeDropped bool
}

// ListMissionRoster returns the mission's enrollments with student info,
// ordered by student name.
func ListMissionRoster(ctx context.Context, db *mongo.Database, missionID primitive.ObjectID, f Filter) ([]RosterEntry, error) {
	match := bson.M{"mission_id": missionID}
	if f.Status != "" {
		match["status"] = f.Status
	} else if !f.IncludeDropped {
		match["status"] = bson.M{"$ne": models.EnrollmentDropped}
	}

	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "student_id",
			"foreignField": "_id",
			"as":           "student",
		}}},
		bson.D{{Key: "$unwind", Value: "$student"}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "student.full_name_ci", Value: 1},
			{Key: "student._id", Value: 1},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"enrollment": "$$ROOT",
			"student":    "$student",
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"enrollment.student": 0,
		}}},
	}

	cur, err := db.Collection("student_missions").Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []RosterEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
