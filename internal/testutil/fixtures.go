package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calls stack: each adds to the route context already on the request.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given name, email, and role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		EmailCI:    text.Fold(email),
		Role:       role,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateStudent creates a student user.
func (f *Fixtures) CreateStudent(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleStudent)
}

// CreateMentor creates a mentor user.
func (f *Fixtures) CreateMentor(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleMentor)
}

// CreateMission creates a test mission in the given batch. Weights are a
// single 100-weight course so the weight invariant holds.
func (f *Fixtures) CreateMission(ctx context.Context, code, title string, batchID primitive.ObjectID) models.Mission {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Mission{
		ID:      primitive.NewObjectID(),
		Code:    code,
		Title:   title,
		TitleCI: text.Fold(title),
		Status:  models.MissionActive,
		BatchID: batchID,
		Courses: []models.MissionCourse{
			{CourseID: primitive.NewObjectID(), Title: "Core Course", Weight: 100, MinProgress: 70},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("missions").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test mission: %v", err)
	}
	return m
}

// ApproveStudent marks the student an approved member of the batch.
func (f *Fixtures) ApproveStudent(ctx context.Context, batchID, studentID primitive.ObjectID) models.BatchMember {
	f.t.Helper()
	return f.CreateBatchMember(ctx, batchID, studentID, models.BatchApproved)
}

// CreateBatchMember creates a batch membership with the given status.
func (f *Fixtures) CreateBatchMember(ctx context.Context, batchID, studentID primitive.ObjectID, status string) models.BatchMember {
	f.t.Helper()

	now := time.Now().UTC()
	bm := models.BatchMember{
		ID:        primitive.NewObjectID(),
		BatchID:   batchID,
		StudentID: studentID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("batch_members").InsertOne(ctx, bm); err != nil {
		f.t.Fatalf("failed to create test batch member: %v", err)
	}
	return bm
}

// CreateEnrollment creates a student_missions record directly, bypassing
// the store, for tests that need a specific pre-existing state.
func (f *Fixtures) CreateEnrollment(ctx context.Context, missionID, batchID, studentID primitive.ObjectID, status string) models.StudentMission {
	f.t.Helper()

	now := time.Now().UTC()
	sm := models.StudentMission{
		ID:             primitive.NewObjectID(),
		StudentID:      studentID,
		MissionID:      missionID,
		BatchID:        batchID,
		Status:         status,
		StartedAt:      now,
		LastActivityAt: now,
	}
	if status == models.EnrollmentDropped {
		sm.DroppedAt = &now
	}

	if _, err := f.db.Collection("student_missions").InsertOne(ctx, sm); err != nil {
		f.t.Fatalf("failed to create test enrollment: %v", err)
	}
	return sm
}

// CreateGroup creates a mentorship group with the given members.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, missionID, batchID primitive.ObjectID, maxStudents int, students, mentors []primitive.ObjectID) models.MentorshipGroup {
	f.t.Helper()

	if students == nil {
		students = []primitive.ObjectID{}
	}
	if mentors == nil {
		mentors = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	g := models.MentorshipGroup{
		ID:              primitive.NewObjectID(),
		Name:            name,
		NameCI:          text.Fold(name),
		MissionID:       missionID,
		BatchID:         batchID,
		Students:        students,
		Mentors:         mentors,
		MaxStudents:     maxStudents,
		CurrentStudents: len(students),
		Status:          models.GroupActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := f.db.Collection("mentorship_groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// CreateMentorAssignment assigns a mentor to a mission with the given
// role and capacity.
func (f *Fixtures) CreateMentorAssignment(ctx context.Context, missionID, mentorID primitive.ObjectID, role string, maxStudents int) models.MissionMentor {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.MissionMentor{
		ID:          primitive.NewObjectID(),
		MissionID:   missionID,
		MentorID:    mentorID,
		Role:        role,
		MaxStudents: maxStudents,
		Status:      models.MentorActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("mission_mentors").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test mentor assignment: %v", err)
	}
	return a
}
