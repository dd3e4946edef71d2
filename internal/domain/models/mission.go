// internal/domain/models/mission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mission statuses. Transitions are free assignment; there is no
// enforced state machine at this layer.
const (
	MissionDraft     = "draft"
	MissionActive    = "active"
	MissionPaused    = "paused"
	MissionCompleted = "completed"
	MissionArchived  = "archived"
)

// MissionCourse is one course inside a mission's curriculum.
// Weights across a mission's courses must sum to 100.
type MissionCourse struct {
	CourseID    primitive.ObjectID `bson:"course_id" json:"course_id"`
	Title       string             `bson:"title" json:"title"`
	Weight      int                `bson:"weight" json:"weight"`
	MinProgress int                `bson:"min_progress" json:"min_progress"`
}

// EmbeddedStudent is one entry of the legacy Mission.students array.
//
// NOTE:
//   - This array is deprecated. The student_missions collection is
//     canonical; the array is read by the sync reconciliation job and
//     never written going forward.
type EmbeddedStudent struct {
	StudentID primitive.ObjectID  `bson:"student_id" json:"student_id"`
	Status    string              `bson:"status,omitempty" json:"status,omitempty"`
	Progress  int                 `bson:"progress,omitempty" json:"progress,omitempty"`
	MentorID  *primitive.ObjectID `bson:"mentor_id,omitempty" json:"mentor_id,omitempty"`
	StartedAt *time.Time          `bson:"started_at,omitempty" json:"started_at,omitempty"`
}

// Mission is a cohort learning program.
type Mission struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Code        string             `bson:"code" json:"code"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      string             `bson:"status" json:"status"`
	BatchID     primitive.ObjectID `bson:"batch_id" json:"batch_id"`
	Courses     []MissionCourse    `bson:"courses" json:"courses"`
	MaxStudents int                `bson:"max_students,omitempty" json:"max_students,omitempty"` // 0 = unlimited

	// Legacy embedded roster, kept for backward compatibility only.
	Students []EmbeddedStudent `bson:"students,omitempty" json:"students,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
