// internal/domain/models/missionmentor.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MissionMentor roles.
const (
	MentorRoleLead        = "mission-lead"
	MentorRoleCoordinator = "coordinator"
	MentorRoleAdvisor     = "advisor"
	MentorRoleSupervisor  = "supervisor"
)

// MissionMentor statuses. "overloaded" is set manually by an admin;
// the workload recompute never derives it from the counter.
const (
	MentorActive      = "active"
	MentorDeactive    = "deactive"
	MentorIrregular   = "irregular"
	MentorOverloaded  = "overloaded"
	MentorUnavailable = "unavailable"
)

// MissionMentor is a mentor's assignment to a mission.
//
// CurrentStudents is a derived counter that can drift; it is recomputed
// whenever group membership or direct mentor assignments change, and can
// be recomputed on demand.
type MissionMentor struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MissionID        primitive.ObjectID `bson:"mission_id" json:"mission_id"`
	MentorID         primitive.ObjectID `bson:"mentor_id" json:"mentor_id"`
	Role             string             `bson:"role" json:"role"`
	MaxStudents      int                `bson:"max_students" json:"max_students"` // 0 = unlimited
	CurrentStudents  int                `bson:"current_students" json:"current_students"`
	Status           string             `bson:"status" json:"status"`
	Specializations  []string           `bson:"specializations,omitempty" json:"specializations,omitempty"`
	Responsibilities []string           `bson:"responsibilities,omitempty" json:"responsibilities,omitempty"`
	AvailabilityRate int                `bson:"availability_rate,omitempty" json:"availability_rate,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
