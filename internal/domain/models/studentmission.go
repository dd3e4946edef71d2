// internal/domain/models/studentmission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudentMission statuses. Any status may be assigned from any other;
// "dropped" is the soft-delete state.
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentFailed    = "failed"
	EnrollmentDropped   = "dropped"
)

// CourseProgress is the per-course breakdown of a student's mission progress.
type CourseProgress struct {
	CourseID primitive.ObjectID `bson:"course_id" json:"course_id"`
	Progress int                `bson:"progress" json:"progress"`
}

// StudentMission is one student's enrollment in one mission.
//
// NOTE:
//   - At most one non-dropped document exists per (student_id, mission_id);
//     a partial unique index enforces this. Dropping is soft (status flip),
//     so a fresh enroll after a drop creates a new document and the old one
//     stays behind as history.
//   - MentorshipGroupID is a cached pointer; the group's students array is
//     the canonical membership signal.
type StudentMission struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudentID         primitive.ObjectID  `bson:"student_id" json:"student_id"`
	MissionID         primitive.ObjectID  `bson:"mission_id" json:"mission_id"`
	BatchID           primitive.ObjectID  `bson:"batch_id" json:"batch_id"`
	MentorID          *primitive.ObjectID `bson:"mentor_id,omitempty" json:"mentor_id,omitempty"`
	MentorshipGroupID *primitive.ObjectID `bson:"mentorship_group_id,omitempty" json:"mentorship_group_id,omitempty"`

	Status         string           `bson:"status" json:"status"`
	Progress       int              `bson:"progress" json:"progress"` // 0–100
	CourseProgress []CourseProgress `bson:"course_progress,omitempty" json:"course_progress,omitempty"`

	StartedAt      time.Time  `bson:"started_at" json:"started_at"`
	CompletedAt    *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	DroppedAt      *time.Time `bson:"dropped_at,omitempty" json:"dropped_at,omitempty"`
	LastActivityAt time.Time  `bson:"last_activity_at" json:"last_activity_at"`
}
