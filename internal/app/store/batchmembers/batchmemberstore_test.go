package batchmemberstore_test

import (
	"testing"

	batchmemberstore "github.com/dalemusser/missionhub/internal/app/store/batchmembers"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/dalemusser/missionhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Upsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchmemberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	batchID := primitive.NewObjectID()
	studentID := primitive.NewObjectID()

	if err := store.Upsert(ctx, batchID, studentID, models.BatchPending); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	ok, err := store.IsApproved(ctx, batchID, studentID)
	if err != nil {
		t.Fatalf("IsApproved failed: %v", err)
	}
	if ok {
		t.Error("pending member reported as approved")
	}

	// Second upsert flips the status in place, no second record.
	if err := store.Upsert(ctx, batchID, studentID, models.BatchApproved); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	ok, err = store.IsApproved(ctx, batchID, studentID)
	if err != nil {
		t.Fatalf("IsApproved failed: %v", err)
	}
	if !ok {
		t.Error("approved member reported as unapproved")
	}

	n, err := db.Collection("batch_members").CountDocuments(ctx, bson.M{
		"batch_id": batchID, "student_id": studentID,
	})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 1 {
		t.Errorf("membership records: got %d, want 1", n)
	}
}

func TestStore_IsApproved_UnknownStudent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchmemberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ok, err := store.IsApproved(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	if err != nil {
		t.Fatalf("IsApproved failed: %v", err)
	}
	if ok {
		t.Error("unknown student reported as approved")
	}
}

func TestStore_FilterUnapproved(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchmemberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	batchID := primitive.NewObjectID()
	approved := primitive.NewObjectID()
	rejected := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	fixtures.ApproveStudent(ctx, batchID, approved)
	fixtures.CreateBatchMember(ctx, batchID, rejected, models.BatchRejected)

	out, err := store.FilterUnapproved(ctx, batchID, []primitive.ObjectID{approved, rejected, stranger})
	if err != nil {
		t.Fatalf("FilterUnapproved failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("unapproved: got %d, want 2", len(out))
	}
	// Request order is preserved.
	if out[0] != rejected || out[1] != stranger {
		t.Errorf("unexpected order: %v", out)
	}
}

func TestStore_ApprovedSet_ScopedToBatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchmemberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	batchA := primitive.NewObjectID()
	batchB := primitive.NewObjectID()
	s1 := primitive.NewObjectID()
	s2 := primitive.NewObjectID()
	fixtures.ApproveStudent(ctx, batchA, s1)
	fixtures.ApproveStudent(ctx, batchB, s2)

	set, err := store.ApprovedSet(ctx, batchA)
	if err != nil {
		t.Fatalf("ApprovedSet failed: %v", err)
	}
	if len(set) != 1 {
		t.Fatalf("set size: got %d, want 1", len(set))
	}
	if _, ok := set[s1]; !ok {
		t.Error("approved student missing from set")
	}
}
