package userstore_test

import (
	"testing"

	userstore "github.com/dalemusser/missionhub/internal/app/store/users"
	"github.com/dalemusser/missionhub/internal/app/system/indexes"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/dalemusser/missionhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{
		FullName: "Ada Lovelace",
		Email:    "Ada@Example.COM",
		Role:     models.RoleStudent,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.EmailCI != "ada@example.com" {
		t.Errorf("EmailCI: got %q", u.EmailCI)
	}
	if u.Status != "active" {
		t.Errorf("Status: got %q, want active", u.Status)
	}
}

func TestStore_GetByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created := fixtures.CreateUser(ctx, "Grace Hopper", "grace@example.com", models.RoleMentor)

	u, err := store.GetByEmail(ctx, "GRACE@Example.Com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if u.ID != created.ID {
		t.Errorf("got user %s, want %s", u.ID.Hex(), created.ID.Hex())
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	u := models.User{FullName: "First", Email: "same@example.com", Role: models.RoleStudent}
	if _, err := store.Create(ctx, u); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	u.FullName = "Second"
	u.Email = "Same@Example.com" // differs only in case
	_, err := store.Create(ctx, u)
	if err != userstore.ErrDuplicateEmail {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_SetRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Promoted", "promoted@example.com", models.RoleStudent)

	if err := store.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		t.Fatalf("SetRole failed: %v", err)
	}
	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("Role: got %q, want %q", got.Role, models.RoleAdmin)
	}

	if err := store.SetRole(ctx, primitive.NewObjectID(), models.RoleAdmin); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments for unknown user, got %v", err)
	}
}

func TestStore_ListByRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "Zoe Student", "zoe@example.com", models.RoleStudent)
	fixtures.CreateUser(ctx, "Amy Student", "amy@example.com", models.RoleStudent)
	fixtures.CreateUser(ctx, "Mel Mentor", "mel@example.com", models.RoleMentor)

	students, err := store.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		t.Fatalf("ListByRole failed: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("students: got %d, want 2", len(students))
	}
	if students[0].FullName != "Amy Student" {
		t.Errorf("expected name-sorted order, got %q first", students[0].FullName)
	}

	all, err := store.ListByRole(ctx, "")
	if err != nil {
		t.Fatalf("ListByRole(all) failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all users: got %d, want 3", len(all))
	}
}

func TestStore_ExistAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u1 := fixtures.CreateStudent(ctx, "One Student", "one@example.com")
	u2 := fixtures.CreateStudent(ctx, "Two Student", "two@example.com")
	ghost := primitive.NewObjectID()

	missing, err := store.ExistAll(ctx, []primitive.ObjectID{u1.ID, ghost, u2.ID})
	if err != nil {
		t.Fatalf("ExistAll failed: %v", err)
	}
	if len(missing) != 1 || missing[0] != ghost {
		t.Errorf("missing: got %v, want [%s]", missing, ghost.Hex())
	}

	missing, err = store.ExistAll(ctx, nil)
	if err != nil {
		t.Fatalf("ExistAll(nil) failed: %v", err)
	}
	if missing != nil {
		t.Errorf("missing for empty input: got %v, want nil", missing)
	}
}
