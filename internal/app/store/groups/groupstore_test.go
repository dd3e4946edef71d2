package groupstore_test

import (
	"testing"

	groupstore "github.com/dalemusser/missionhub/internal/app/store/groups"
	"github.com/dalemusser/missionhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_AddStudents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	missionID := primitive.NewObjectID()
	batchID := primitive.NewObjectID()
	group := fixtures.CreateGroup(ctx, "Team Alpha", missionID, batchID, 0, nil, nil)

	s1 := primitive.NewObjectID()
	s2 := primitive.NewObjectID()
	updated, err := store.AddStudents(ctx, group.ID, []primitive.ObjectID{s1, s2})
	if err != nil {
		t.Fatalf("AddStudents failed: %v", err)
	}
	if len(updated.Students) != 2 {
		t.Errorf("Students: got %d, want 2", len(updated.Students))
	}
	if updated.CurrentStudents != 2 {
		t.Errorf("CurrentStudents: got %d, want 2", updated.CurrentStudents)
	}
}

func TestStore_AddStudents_Deduplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s1 := primitive.NewObjectID()
	group := fixtures.CreateGroup(ctx, "Team Alpha", primitive.NewObjectID(), primitive.NewObjectID(), 0,
		[]primitive.ObjectID{s1}, nil)

	s2 := primitive.NewObjectID()
	updated, err := store.AddStudents(ctx, group.ID, []primitive.ObjectID{s1, s2})
	if err != nil {
		t.Fatalf("AddStudents failed: %v", err)
	}
	if len(updated.Students) != 2 {
		t.Errorf("Students: got %d, want 2 (s1 must not be duplicated)", len(updated.Students))
	}
	if updated.CurrentStudents != 2 {
		t.Errorf("CurrentStudents: got %d, want 2", updated.CurrentStudents)
	}
}

func TestStore_AddStudents_CapacityRejectsWholeBatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	existing := primitive.NewObjectID()
	group := fixtures.CreateGroup(ctx, "Team Alpha", primitive.NewObjectID(), primitive.NewObjectID(), 2,
		[]primitive.ObjectID{existing}, nil)

	_, err := store.AddStudents(ctx, group.ID, []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()})
	if err != groupstore.ErrCapacityExceeded {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	// Nobody from the batch was added.
	after, err := store.GetByID(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(after.Students) != 1 {
		t.Errorf("Students: got %d, want 1", len(after.Students))
	}
}

func TestStore_AddStudents_AlreadyPresentDoesNotCountTowardCapacity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s1 := primitive.NewObjectID()
	s2 := primitive.NewObjectID()
	group := fixtures.CreateGroup(ctx, "Team Alpha", primitive.NewObjectID(), primitive.NewObjectID(), 2,
		[]primitive.ObjectID{s1}, nil)

	// s1 is already in; only s2 is genuinely new, so capacity 2 holds.
	updated, err := store.AddStudents(ctx, group.ID, []primitive.ObjectID{s1, s2})
	if err != nil {
		t.Fatalf("AddStudents failed: %v", err)
	}
	if updated.CurrentStudents != 2 {
		t.Errorf("CurrentStudents: got %d, want 2", updated.CurrentStudents)
	}
}

func TestStore_AddStudents_GroupNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.AddStudents(ctx, primitive.NewObjectID(), []primitive.ObjectID{primitive.NewObjectID()})
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_AddStudents_UnlimitedCapacity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	group := fixtures.CreateGroup(ctx, "Team Alpha", primitive.NewObjectID(), primitive.NewObjectID(), 0, nil, nil)

	ids := make([]primitive.ObjectID, 50)
	for i := range ids {
		ids[i] = primitive.NewObjectID()
	}
	updated, err := store.AddStudents(ctx, group.ID, ids)
	if err != nil {
		t.Fatalf("AddStudents failed: %v", err)
	}
	if updated.CurrentStudents != 50 {
		t.Errorf("CurrentStudents: got %d, want 50", updated.CurrentStudents)
	}
}

func TestStore_RemoveUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s1 := primitive.NewObjectID()
	s2 := primitive.NewObjectID()
	m1 := primitive.NewObjectID()
	group := fixtures.CreateGroup(ctx, "Team Alpha", primitive.NewObjectID(), primitive.NewObjectID(), 0,
		[]primitive.ObjectID{s1, s2}, []primitive.ObjectID{m1})

	updated, err := store.RemoveUser(ctx, group.ID, s1)
	if err != nil {
		t.Fatalf("RemoveUser failed: %v", err)
	}
	if len(updated.Students) != 1 || updated.Students[0] != s2 {
		t.Errorf("Students: got %v, want [%v]", updated.Students, s2)
	}
	if updated.CurrentStudents != 1 {
		t.Errorf("CurrentStudents: got %d, want 1", updated.CurrentStudents)
	}
	if len(updated.Mentors) != 1 {
		t.Errorf("Mentors: got %d, want 1", len(updated.Mentors))
	}
}

func TestStore_RemoveUser_AbsentIsNoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s1 := primitive.NewObjectID()
	group := fixtures.CreateGroup(ctx, "Team Alpha", primitive.NewObjectID(), primitive.NewObjectID(), 0,
		[]primitive.ObjectID{s1}, nil)

	updated, err := store.RemoveUser(ctx, group.ID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("RemoveUser failed: %v", err)
	}
	if len(updated.Students) != 1 {
		t.Errorf("Students: got %d, want 1", len(updated.Students))
	}
}

func TestStore_AddMentors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m1 := primitive.NewObjectID()
	group := fixtures.CreateGroup(ctx, "Team Alpha", primitive.NewObjectID(), primitive.NewObjectID(), 0,
		nil, []primitive.ObjectID{m1})

	m2 := primitive.NewObjectID()
	updated, err := store.AddMentors(ctx, group.ID, []primitive.ObjectID{m1, m2})
	if err != nil {
		t.Fatalf("AddMentors failed: %v", err)
	}
	if len(updated.Mentors) != 2 {
		t.Errorf("Mentors: got %d, want 2", len(updated.Mentors))
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	group := fixtures.CreateGroup(ctx, "Team Alpha", primitive.NewObjectID(), primitive.NewObjectID(), 0, nil, nil)

	n, err := store.Delete(ctx, group.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted: got %d, want 1", n)
	}

	if _, err := store.GetByID(ctx, group.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}
