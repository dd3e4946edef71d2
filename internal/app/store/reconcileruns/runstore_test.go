package reconcilerunstore_test

import (
	"testing"
	"time"

	reconcilerunstore "github.com/dalemusser/missionhub/internal/app/store/reconcileruns"
	"github.com/dalemusser/missionhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_RecordAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reconcilerunstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	missionID := primitive.NewObjectID()
	otherMission := primitive.NewObjectID()

	first, err := store.Record(ctx, missionID, "fix", 3, nil)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if first.RunID == "" {
		t.Fatal("RunID is empty")
	}
	time.Sleep(5 * time.Millisecond) // keep ran_at ordering deterministic
	second, err := store.Record(ctx, missionID, "sync", 1, []string{"bad embedded entry"})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := store.Record(ctx, otherMission, "clear", 9, nil); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	runs, err := store.ListByMission(ctx, missionID, 0)
	if err != nil {
		t.Fatalf("ListByMission failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs: got %d, want 2", len(runs))
	}
	// Newest first.
	if runs[0].RunID != second.RunID || runs[1].RunID != first.RunID {
		t.Errorf("unexpected order: %s, %s", runs[0].Job, runs[1].Job)
	}
	if len(runs[0].Errors) != 1 {
		t.Errorf("sync run errors: got %v", runs[0].Errors)
	}

	runs, err = store.ListByMission(ctx, missionID, 1)
	if err != nil {
		t.Fatalf("ListByMission with limit failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("limited runs: got %d, want 1", len(runs))
	}
}
