package enrollmentstore_test

import (
	"testing"
	"time"

	enrollmentstore "github.com/dalemusser/missionhub/internal/app/store/enrollments"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/dalemusser/missionhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Fix_DropsRevokedStudents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	batchID := primitive.NewObjectID()
	mission := fixtures.CreateMission(ctx, "GO-101", "Intro to Go", batchID)
	keep := fixtures.CreateStudent(ctx, "Keep", "keep@example.com")
	revoked := fixtures.CreateStudent(ctx, "Revoked", "revoked@example.com")
	fixtures.ApproveStudent(ctx, batchID, keep.ID)
	fixtures.CreateBatchMember(ctx, batchID, revoked.ID, models.BatchRejected)
	fixtures.CreateEnrollment(ctx, mission.ID, batchID, keep.ID, models.EnrollmentActive)
	fixtures.CreateEnrollment(ctx, mission.ID, batchID, revoked.ID, models.EnrollmentActive)

	changed, err := store.Fix(ctx, mission.ID)
	if err != nil {
		t.Fatalf("Fix failed: %v", err)
	}
	if changed != 1 {
		t.Errorf("changed: got %d, want 1", changed)
	}

	var sm models.StudentMission
	err = db.Collection("student_missions").FindOne(ctx, bson.M{
		"mission_id": mission.ID,
		"student_id": revoked.ID,
	}).Decode(&sm)
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if sm.Status != models.EnrollmentDropped {
		t.Errorf("revoked status: got %q, want %q", sm.Status, models.EnrollmentDropped)
	}
	if sm.DroppedAt == nil {
		t.Error("DroppedAt was not stamped")
	}

	err = db.Collection("student_missions").FindOne(ctx, bson.M{
		"mission_id": mission.ID,
		"student_id": keep.ID,
	}).Decode(&sm)
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if sm.Status != models.EnrollmentActive {
		t.Errorf("approved student was touched: status %q", sm.Status)
	}
}

func TestStore_Fix_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	batchID := primitive.NewObjectID()
	mission := fixtures.CreateMission(ctx, "GO-101", "Intro to Go", batchID)
	revoked := fixtures.CreateStudent(ctx, "Revoked", "revoked@example.com")
	fixtures.CreateEnrollment(ctx, mission.ID, batchID, revoked.ID, models.EnrollmentActive)

	if _, err := store.Fix(ctx, mission.ID); err != nil {
		t.Fatalf("first Fix failed: %v", err)
	}
	changed, err := store.Fix(ctx, mission.ID)
	if err != nil {
		t.Fatalf("second Fix failed: %v", err)
	}
	if changed != 0 {
		t.Errorf("second run changed %d records, want 0", changed)
	}
}

func TestStore_Sync_BackfillsEmbeddedRoster(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	batchID := primitive.NewObjectID()
	mission := fixtures.CreateMission(ctx, "GO-101", "Intro to Go", batchID)
	legacy := fixtures.CreateStudent(ctx, "Legacy", "legacy@example.com")
	existing := fixtures.CreateStudent(ctx, "Existing", "existing@example.com")
	fixtures.CreateEnrollment(ctx, mission.ID, batchID, existing.ID, models.EnrollmentActive)

	started := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Millisecond)
	_, err := db.Collection("missions").UpdateOne(ctx,
		bson.M{"_id": mission.ID},
		bson.M{"$set": bson.M{"students": []models.EmbeddedStudent{
			{StudentID: legacy.ID, Status: "completed", Progress: 100, StartedAt: &started},
			{StudentID: existing.ID, Status: "active", Progress: 10},
			{}, // malformed: no student id
		}}},
	)
	if err != nil {
		t.Fatalf("failed to seed embedded roster: %v", err)
	}

	synced, errs, err := store.Sync(ctx, mission.ID)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if synced != 1 {
		t.Errorf("synced: got %d, want 1", synced)
	}
	if len(errs) != 1 {
		t.Errorf("errors: got %v, want 1 entry", errs)
	}

	var sm models.StudentMission
	err = db.Collection("student_missions").FindOne(ctx, bson.M{
		"mission_id": mission.ID,
		"student_id": legacy.ID,
	}).Decode(&sm)
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if sm.Status != models.EnrollmentCompleted {
		t.Errorf("Status: got %q, want %q", sm.Status, models.EnrollmentCompleted)
	}
	if sm.Progress != 100 {
		t.Errorf("Progress: got %d, want 100", sm.Progress)
	}
	if !sm.StartedAt.Equal(started) {
		t.Errorf("StartedAt: got %v, want %v", sm.StartedAt, started)
	}

	// The pre-existing record was not overwritten.
	err = db.Collection("student_missions").FindOne(ctx, bson.M{
		"mission_id": mission.ID,
		"student_id": existing.ID,
	}).Decode(&sm)
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if sm.Progress != 0 {
		t.Errorf("existing record was overwritten: progress %d", sm.Progress)
	}
}

func TestStore_Sync_SecondRunDoesNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	batchID := primitive.NewObjectID()
	mission := fixtures.CreateMission(ctx, "GO-101", "Intro to Go", batchID)
	legacy := fixtures.CreateStudent(ctx, "Legacy", "legacy@example.com")
	_, err := db.Collection("missions").UpdateOne(ctx,
		bson.M{"_id": mission.ID},
		bson.M{"$set": bson.M{"students": []models.EmbeddedStudent{{StudentID: legacy.ID}}}},
	)
	if err != nil {
		t.Fatalf("failed to seed embedded roster: %v", err)
	}

	if _, _, err := store.Sync(ctx, mission.ID); err != nil {
		t.Fatalf("first Sync failed: %v", err)
	}
	synced, errs, err := store.Sync(ctx, mission.ID)
	if err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}
	if synced != 0 || len(errs) != 0 {
		t.Errorf("second run: synced %d errs %v, want 0 and none", synced, errs)
	}
}

func TestStore_Clear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	batchID := primitive.NewObjectID()
	mission := fixtures.CreateMission(ctx, "GO-101", "Intro to Go", batchID)
	other := fixtures.CreateMission(ctx, "GO-201", "Advanced Go", batchID)
	s1 := fixtures.CreateStudent(ctx, "Student One", "s1@example.com")
	s2 := fixtures.CreateStudent(ctx, "Student Two", "s2@example.com")
	fixtures.CreateEnrollment(ctx, mission.ID, batchID, s1.ID, models.EnrollmentActive)
	fixtures.CreateEnrollment(ctx, mission.ID, batchID, s2.ID, models.EnrollmentCompleted)
	fixtures.CreateEnrollment(ctx, other.ID, batchID, s1.ID, models.EnrollmentActive)

	updated, err := store.Clear(ctx, mission.ID)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if updated != 2 {
		t.Errorf("updated: got %d, want 2", updated)
	}

	// The other mission is untouched.
	var sm models.StudentMission
	err = db.Collection("student_missions").FindOne(ctx, bson.M{
		"mission_id": other.ID,
		"student_id": s1.ID,
	}).Decode(&sm)
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if sm.Status != models.EnrollmentActive {
		t.Errorf("other mission status: got %q, want active", sm.Status)
	}
}
