// internal/app/features/groups/types.go
package groups

import "github.com/dalemusser/missionhub/internal/domain/models"

// createGroupRequest is the payload for POST /groups.
type createGroupRequest struct {
	Name        string                  `json:"name" validate:"required"`
	Description string                  `json:"description"`
	MissionID   string                  `json:"mission_id" validate:"required"`
	MaxStudents int                     `json:"max_students" validate:"gte=0"`
	GroupType   string                  `json:"group_type"`
	SkillLevel  string                  `json:"skill_level"`
	Channel     string                  `json:"channel"`
	Meeting     *models.MeetingSchedule `json:"meeting"`
	StudentIDs  []string                `json:"student_ids"`
	MentorIDs   []string                `json:"mentor_ids"`
}

// updateGroupRequest is the payload for POST /groups/{id}. Absent fields
// leave the stored value alone.
type updateGroupRequest struct {
	Name            *string                 `json:"name"`
	Description     *string                 `json:"description"`
	GroupType       *string                 `json:"group_type"`
	SkillLevel      *string                 `json:"skill_level"`
	Status          *string                 `json:"status" validate:"omitempty,oneof=active inactive full recruiting"`
	Channel         *string                 `json:"channel"`
	Meeting         *models.MeetingSchedule `json:"meeting"`
	PrimaryMentorID *string                 `json:"primary_mentor_id"`
	MaxStudents     *int                    `json:"max_students" validate:"omitempty,gte=0"`
}

// memberIDsRequest carries user ids for the add-students and add-mentors
// calls.
type memberIDsRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,dive,required"`
}

// addStudentsResponse is the updated group plus any membership warnings,
// currently students who ended up in more than one group of the mission.
type addStudentsResponse struct {
	models.MentorshipGroup
	Warnings []string `json:"warnings,omitempty"`
}
