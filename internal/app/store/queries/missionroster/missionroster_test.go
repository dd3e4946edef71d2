package missionroster_test

import (
	"testing"

	"github.com/dalemusser/missionhub/internal/app/store/queries/missionroster"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/dalemusser/missionhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListMissionRoster(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	batchID := primitive.NewObjectID()
	mission := fixtures.CreateMission(ctx, "GO-601", "Roster Mission", batchID)
	zed := fixtures.CreateStudent(ctx, "Zed Last", "zed@example.com")
	amy := fixtures.CreateStudent(ctx, "Amy First", "amy@example.com")
	gone := fixtures.CreateStudent(ctx, "Gone Student", "gone@example.com")
	fixtures.CreateEnrollment(ctx, mission.ID, batchID, zed.ID, models.EnrollmentActive)
	fixtures.CreateEnrollment(ctx, mission.ID, batchID, amy.ID, models.EnrollmentCompleted)
	fixtures.CreateEnrollment(ctx, mission.ID, batchID, gone.ID, models.EnrollmentDropped)

	roster, err := missionroster.ListMissionRoster(ctx, db, mission.ID, missionroster.Filter{})
	if err != nil {
		t.Fatalf("ListMissionRoster failed: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("roster: got %d entries, want 2 (dropped excluded)", len(roster))
	}
	// Sorted by student name.
	if roster[0].Student.FullName != "Amy First" {
		t.Errorf("first entry: got %q, want Amy First", roster[0].Student.FullName)
	}
	if roster[0].Enrollment.Status != models.EnrollmentCompleted {
		t.Errorf("enrollment status: got %q", roster[0].Enrollment.Status)
	}
}

func TestListMissionRoster_StatusFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	batchID := primitive.NewObjectID()
	mission := fixtures.CreateMission(ctx, "GO-602", "Filtered Mission", batchID)
	active := fixtures.CreateStudent(ctx, "Active One", "a1@example.com")
	done := fixtures.CreateStudent(ctx, "Done One", "d1@example.com")
	fixtures.CreateEnrollment(ctx, mission.ID, batchID, active.ID, models.EnrollmentActive)
	fixtures.CreateEnrollment(ctx, mission.ID, batchID, done.ID, models.EnrollmentCompleted)

	roster, err := missionroster.ListMissionRoster(ctx, db, mission.ID, missionroster.Filter{
		Status: models.EnrollmentCompleted,
	})
	if err != nil {
		t.Fatalf("ListMissionRoster failed: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("roster: got %d entries, want 1", len(roster))
	}
	if roster[0].Student.ID != done.ID {
		t.Errorf("got student %s, want %s", roster[0].Student.ID.Hex(), done.ID.Hex())
	}
}

func TestListMissionRoster_IncludeDropped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	batchID := primitive.NewObjectID()
	mission := fixtures.CreateMission(ctx, "GO-603", "History Mission", batchID)
	gone := fixtures.CreateStudent(ctx, "Gone Student", "gone2@example.com")
	fixtures.CreateEnrollment(ctx, mission.ID, batchID, gone.ID, models.EnrollmentDropped)

	roster, err := missionroster.ListMissionRoster(ctx, db, mission.ID, missionroster.Filter{IncludeDropped: true})
	if err != nil {
		t.Fatalf("ListMissionRoster failed: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("roster: got %d entries, want 1", len(roster))
	}
	if roster[0].Enrollment.DroppedAt == nil {
		t.Error("dropped_at not set on history record")
	}
}
