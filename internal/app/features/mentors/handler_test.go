package mentors_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/missionhub/internal/app/features/mentors"
	"github.com/dalemusser/missionhub/internal/app/system/apierrors"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/dalemusser/missionhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestHandleAssignMentor_SanitizesLists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	h := mentors.NewHandler(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	batchID := primitive.NewObjectID()
	mission := fixtures.CreateMission(ctx, "GO-601", "Mentor Mission", batchID)
	mentor := fixtures.CreateMentor(ctx, "Assigned Mentor", "am@example.com")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/mentors/"+mission.ID.Hex(), map[string]any{
		"mentor_id":       mentor.ID.Hex(),
		"role":            models.MentorRoleAdvisor,
		"specializations": []string{"<b>backend</b>", "databases"},
		"responsibilities": []string{
			"<script>alert(1)</script>code review",
		},
	})
	req = testutil.WithChiURLParam(req, "missionID", mission.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleAssignMentor(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)
	var resp models.MissionMentor
	rec.DecodeJSON(t, &resp)
	if len(resp.Specializations) != 2 || resp.Specializations[0] != "backend" {
		t.Errorf("specializations: got %v, want markup stripped", resp.Specializations)
	}
	if len(resp.Responsibilities) != 1 || resp.Responsibilities[0] != "code review" {
		t.Errorf("responsibilities: got %v, want markup stripped", resp.Responsibilities)
	}
}

func TestHandleRecomputeWorkload_NoAssignment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := mentors.NewHandler(db, zap.NewNop())

	missionID := primitive.NewObjectID()
	mentorID := primitive.NewObjectID()
	req := testutil.NewRequest(http.MethodPost, "/mentors/"+missionID.Hex()+"/"+mentorID.Hex()+"/recompute")
	req = testutil.WithChiURLParam(req, "missionID", missionID.Hex())
	req = testutil.WithChiURLParam(req, "mentorID", mentorID.Hex())
	rec := testutil.NewRecorder()

	h.HandleRecomputeWorkload(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, apierrors.CodeNotFound)
}
