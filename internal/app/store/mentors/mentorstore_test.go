package mentorstore_test

import (
	"testing"

	mentorstore "github.com/dalemusser/missionhub/internal/app/store/mentors"
	"github.com/dalemusser/missionhub/internal/app/system/indexes"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/dalemusser/missionhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Assign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := mentorstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	missionID := primitive.NewObjectID()
	mentorID := primitive.NewObjectID()

	a, err := store.Assign(ctx, models.MissionMentor{
		MissionID:   missionID,
		MentorID:    mentorID,
		Role:        models.MentorRoleLead,
		MaxStudents: 10,
	})
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if a.Status != models.MentorActive {
		t.Errorf("Status: got %q, want %q", a.Status, models.MentorActive)
	}
	if a.CurrentStudents != 0 {
		t.Errorf("CurrentStudents: got %d, want 0", a.CurrentStudents)
	}
}

func TestStore_Assign_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := mentorstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Assign(ctx, models.MissionMentor{
		MissionID: primitive.NewObjectID(),
		MentorID:  primitive.NewObjectID(),
		Role:      "guru",
	})
	if err == nil {
		t.Fatal("expected an error for invalid role")
	}
}

func TestStore_Assign_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := mentorstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	missionID := primitive.NewObjectID()
	mentorID := primitive.NewObjectID()
	a := models.MissionMentor{MissionID: missionID, MentorID: mentorID, Role: models.MentorRoleAdvisor}

	if _, err := store.Assign(ctx, a); err != nil {
		t.Fatalf("first Assign failed: %v", err)
	}
	_, err := store.Assign(ctx, a)
	if err != mentorstore.ErrDuplicateAssignment {
		t.Errorf("expected ErrDuplicateAssignment, got %v", err)
	}
}

func TestStore_SetStatus_ManualOverload(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := mentorstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	missionID := primitive.NewObjectID()
	mentorID := primitive.NewObjectID()
	fixtures.CreateMentorAssignment(ctx, missionID, mentorID, models.MentorRoleAdvisor, 5)

	if err := store.SetStatus(ctx, missionID, mentorID, models.MentorOverloaded); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	a, err := store.Get(ctx, missionID, mentorID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if a.Status != models.MentorOverloaded {
		t.Errorf("Status: got %q, want %q", a.Status, models.MentorOverloaded)
	}

	// SetCurrentStudents must not clear the manual flag.
	if err := store.SetCurrentStudents(ctx, missionID, mentorID, 1); err != nil {
		t.Fatalf("SetCurrentStudents failed: %v", err)
	}
	a, err = store.Get(ctx, missionID, mentorID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if a.Status != models.MentorOverloaded {
		t.Errorf("Status was reset to %q by a counter update", a.Status)
	}
	if a.CurrentStudents != 1 {
		t.Errorf("CurrentStudents: got %d, want 1", a.CurrentStudents)
	}
}

func TestStore_SetStatus_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := mentorstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.SetStatus(ctx, primitive.NewObjectID(), primitive.NewObjectID(), models.MentorActive)
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_Unassign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := mentorstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	missionID := primitive.NewObjectID()
	mentorID := primitive.NewObjectID()
	fixtures.CreateMentorAssignment(ctx, missionID, mentorID, models.MentorRoleAdvisor, 0)

	n, err := store.Unassign(ctx, missionID, mentorID)
	if err != nil {
		t.Fatalf("Unassign failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted: got %d, want 1", n)
	}

	n, err = store.Unassign(ctx, missionID, mentorID)
	if err != nil {
		t.Fatalf("second Unassign failed: %v", err)
	}
	if n != 0 {
		t.Errorf("deleted: got %d, want 0", n)
	}
}

func TestStore_AssignBatch_BestEffort(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := mentorstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	missionID := primitive.NewObjectID()
	existing := primitive.NewObjectID()
	fresh := primitive.NewObjectID()
	fixtures.CreateMentorAssignment(ctx, missionID, existing, models.MentorRoleAdvisor, 0)

	results := store.AssignBatch(ctx, missionID, []mentorstore.AssignEntry{
		{MentorID: existing, Role: models.MentorRoleAdvisor}, // duplicate
		{MentorID: fresh, Role: "guru"},                      // bad role
		{MentorID: fresh, Role: models.MentorRoleCoordinator},
	})
	if len(results) != 3 {
		t.Fatalf("results: got %d, want 3", len(results))
	}
	if results[0].OK {
		t.Error("duplicate entry unexpectedly succeeded")
	}
	if results[1].OK {
		t.Error("bad-role entry unexpectedly succeeded")
	}
	if !results[2].OK {
		t.Errorf("valid entry failed: %s", results[2].Error)
	}
}
