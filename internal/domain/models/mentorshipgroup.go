// internal/domain/models/mentorshipgroup.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MentorshipGroup statuses.
const (
	GroupActive     = "active"
	GroupInactive   = "inactive"
	GroupFull       = "full"
	GroupRecruiting = "recruiting"
)

// MeetingSchedule describes when a group meets.
type MeetingSchedule struct {
	Days      []string `bson:"days,omitempty" json:"days,omitempty"`
	StartTime string   `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime   string   `bson:"end_time,omitempty" json:"end_time,omitempty"`
	Timezone  string   `bson:"timezone,omitempty" json:"timezone,omitempty"`
}

// MentorshipGroup is a sub-team of students and mentors within a mission.
//
// NOTE:
//   - Students and Mentors are embedded id lists; the students array is the
//     canonical membership record. StudentMission.mentorship_group_id is a
//     denormalized pointer updated alongside group mutations.
//   - CurrentStudents is derived from len(students) on every mutation.
//   - MaxStudents 0 means unlimited.
type MentorshipGroup struct {
	ID              primitive.ObjectID   `bson:"_id" json:"id"`
	Name            string               `bson:"name" json:"name"`
	NameCI          string               `bson:"name_ci" json:"name_ci"`
	Description     string               `bson:"description,omitempty" json:"description,omitempty"`
	MissionID       primitive.ObjectID   `bson:"mission_id" json:"mission_id"`
	BatchID         primitive.ObjectID   `bson:"batch_id" json:"batch_id"`
	Students        []primitive.ObjectID `bson:"students" json:"students"`
	Mentors         []primitive.ObjectID `bson:"mentors" json:"mentors"`
	PrimaryMentorID *primitive.ObjectID  `bson:"primary_mentor_id,omitempty" json:"primary_mentor_id,omitempty"`
	MaxStudents     int                  `bson:"max_students" json:"max_students"`
	CurrentStudents int                  `bson:"current_students" json:"current_students"`
	Status          string               `bson:"status" json:"status"`
	GroupType       string               `bson:"group_type,omitempty" json:"group_type,omitempty"`
	SkillLevel      string               `bson:"skill_level,omitempty" json:"skill_level,omitempty"`
	Meeting         *MeetingSchedule     `bson:"meeting,omitempty" json:"meeting,omitempty"`
	Channel         string               `bson:"channel,omitempty" json:"channel,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
