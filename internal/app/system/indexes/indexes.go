// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureMissions(ctx, db); err != nil {
		problems = append(problems, "missions: "+err.Error())
	}
	if err := ensureStudentMissions(ctx, db); err != nil {
		problems = append(problems, "student_missions: "+err.Error())
	}
	if err := ensureMentorshipGroups(ctx, db); err != nil {
		problems = append(problems, "mentorship_groups: "+err.Error())
	}
	if err := ensureMissionMentors(ctx, db); err != nil {
		problems = append(problems, "mission_mentors: "+err.Error())
	}
	if err := ensureBatchMembers(ctx, db); err != nil {
		problems = append(problems, "batch_members: "+err.Error())
	}
	if err := ensureReconcileRuns(ctx, db); err != nil {
		problems = append(problems, "reconcile_runs: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	names, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	zap.L().Info("ensured indexes",
		zap.String("collection", coll.Name()),
		zap.Strings("names", names))
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetName("uniq_email_ci").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "full_name_ci", Value: 1}},
			Options: options.Index().SetName("role_name"),
		},
	})
}

func ensureMissions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("missions"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetName("uniq_code").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "batch_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("batch_status"),
		},
	})
}

func ensureStudentMissions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("student_missions"), []mongo.IndexModel{
		{
			// At most one non-dropped enrollment per (student, mission).
			// Dropped records fall outside the partial filter and stay
			// behind as history.
			Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "mission_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_live_enrollment").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": bson.M{"$ne": "dropped"}}),
		},
		{
			Keys:    bson.D{{Key: "mission_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("mission_status"),
		},
		{
			Keys:    bson.D{{Key: "mission_id", Value: 1}, {Key: "mentor_id", Value: 1}},
			Options: options.Index().SetName("mission_mentor"),
		},
	})
}

func ensureMentorshipGroups(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("mentorship_groups"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mission_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("mission_name"), // no uniqueness: duplicate names are allowed
		},
		{
			Keys:    bson.D{{Key: "mission_id", Value: 1}, {Key: "students", Value: 1}},
			Options: options.Index().SetName("mission_students"),
		},
		{
			Keys:    bson.D{{Key: "mission_id", Value: 1}, {Key: "mentors", Value: 1}},
			Options: options.Index().SetName("mission_mentors"),
		},
	})
}

func ensureMissionMentors(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("mission_mentors"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mission_id", Value: 1}, {Key: "mentor_id", Value: 1}},
			Options: options.Index().SetName("uniq_assignment").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}},
			Options: options.Index().SetName("mentor"),
		},
	})
}

func ensureBatchMembers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("batch_members"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "batch_id", Value: 1}, {Key: "student_id", Value: 1}},
			Options: options.Index().SetName("uniq_batch_student").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "batch_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("batch_status"),
		},
	})
}

func ensureReconcileRuns(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("reconcile_runs"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mission_id", Value: 1}, {Key: "ran_at", Value: -1}},
			Options: options.Index().SetName("mission_ran_at"),
		},
	})
}
