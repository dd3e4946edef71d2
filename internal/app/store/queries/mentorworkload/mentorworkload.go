// internal/app/store/queries/mentorworkload/mentorworkload.go

// Package mentorworkload computes a mentor's canonical student count for a
// mission. Two representations can disagree (a student can sit in one of
// the mentor's groups without a direct StudentMission.mentor_id, and vice
// versa), so the canonical value is the de-duplicated union of both.
package mentorworkload

import (
	"context"

	mentorstore "github.com/dalemusser/missionhub/internal/app/store/mentors"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Count returns the number of distinct students the mentor is responsible
// for in the mission: students whose live enrollment points directly at
// the mentor, plus students appearing in any of the mission's groups that
// list the mentor and are not already counted.
func Count(ctx context.Context, db *mongo.Database, missionID, mentorID primitive.ObjectID) (int, error) {
	students := make(map[primitive.ObjectID]struct{})

	// Direct mentor_id matches on non-dropped enrollments.
	cur, err := db.Collection("student_missions").Find(ctx,
		bson.M{
			"mission_id": missionID,
			"mentor_id":  mentorID,
			"status":     bson.M{"$ne": models.EnrollmentDropped},
		},
		options.Find().SetProjection(bson.M{"student_id": 1}),
	)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var row struct {
			StudentID primitive.ObjectID `bson:"student_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
		students[row.StudentID] = struct{}{}
	}
	if err := cur.Err(); err != nil {
		return 0, err
	}

	// Students in groups listing this mentor, de-duplicated against the
	// direct matches.
	gcur, err := db.Collection("mentorship_groups").Find(ctx,
		bson.M{"mission_id": missionID, "mentors": mentorID},
		options.Find().SetProjection(bson.M{"students": 1}),
	)
	if err != nil {
		return 0, err
	}
	defer gcur.Close(ctx)
	for gcur.Next(ctx) {
		var row struct {
			Students []primitive.ObjectID `bson:"students"`
		}
		if err := gcur.Decode(&row); err != nil {
			return 0, err
		}
		for _, sid := range row.Students {
			students[sid] = struct{}{}
		}
	}
	if err := gcur.Err(); err != nil {
		return 0, err
	}

	return len(students), nil
}

// Recompute recalculates and persists current_students for one mentor
// assignment. Status is never derived here: "overloaded" stays a manual
// flag even when the counter exceeds max_students. Returns
// mongo.ErrNoDocuments when no assignment exists for the pair.
func Recompute(ctx context.Context, db *mongo.Database, missionID, mentorID primitive.ObjectID) (int, error) {
	n, err := Count(ctx, db, missionID, mentorID)
	if err != nil {
		return 0, err
	}
	if err := mentorstore.New(db).SetCurrentStudents(ctx, missionID, mentorID, n); err != nil {
		return 0, err
	}
	return n, nil
}

// RecomputeForMentors recalculates the counter for several mentors of one
// mission, best-effort: a failure for one mentor does not stop the rest.
// Returns the per-mentor counts that succeeded.
func RecomputeForMentors(ctx context.Context, db *mongo.Database, missionID primitive.ObjectID, mentorIDs []primitive.ObjectID) map[primitive.ObjectID]int {
	counts := make(map[primitive.ObjectID]int, len(mentorIDs))
	for _, mid := range mentorIDs {
		if n, err := Recompute(ctx, db, missionID, mid); err == nil {
			counts[mid] = n
		}
	}
	return counts
}
