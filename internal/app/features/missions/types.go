// internal/app/features/missions/types.go
package missions

import (
	"github.com/dalemusser/missionhub/internal/app/store/queries/missionroster"
	"github.com/dalemusser/missionhub/internal/domain/models"
)

// createMissionRequest is the payload for POST /missions.
type createMissionRequest struct {
	Code        string                `json:"code" validate:"required"`
	Title       string                `json:"title" validate:"required"`
	Description string                `json:"description"`
	BatchID     string                `json:"batch_id" validate:"required"`
	MaxStudents int                   `json:"max_students" validate:"gte=0"`
	Courses     []createMissionCourse `json:"courses" validate:"dive"`
}

type createMissionCourse struct {
	CourseID    string `json:"course_id" validate:"required"`
	Title       string `json:"title"`
	Weight      int    `json:"weight" validate:"gte=0,lte=100"`
	MinProgress int    `json:"min_progress" validate:"gte=0,lte=100"`
}

// missionDetail is the body for GET /missions/{id}: the mission plus its
// live roster.
type missionDetail struct {
	Mission models.Mission              `json:"mission"`
	Roster  []missionroster.RosterEntry `json:"roster"`
}

// setStatusRequest is the payload for POST /missions/{id}/status.
type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft active paused completed archived"`
}

// enrollRequest is the payload for POST /missions/{id}/students.
type enrollRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,required"`
}

// enrollResponse reports the outcome of an enroll call.
type enrollResponse struct {
	AddedCount      int                         `json:"added_count"`
	AlreadyEnrolled []string                    `json:"already_enrolled,omitempty"`
	Roster          []missionroster.RosterEntry `json:"roster"`
}

// removeRequest is the payload for POST /missions/{id}/students/remove.
type removeRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,required"`
}

// removeResponse reports the outcome of a remove call.
type removeResponse struct {
	RemovedCount int                         `json:"removed_count"`
	Warnings     []string                    `json:"warnings,omitempty"`
	Roster       []missionroster.RosterEntry `json:"roster"`
}

// studentStatusRequest is the payload for
// POST /missions/{id}/students/{studentID}/status.
type studentStatusRequest struct {
	Status   string `json:"status" validate:"required,oneof=active completed failed dropped"`
	Progress *int   `json:"progress"`
}

// bulkStatusRequest updates several students' status in one call,
// best-effort per item.
type bulkStatusRequest struct {
	Items []bulkStatusItem `json:"items" validate:"required,min=1,dive"`
}

type bulkStatusItem struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=active completed failed dropped"`
	Progress  *int   `json:"progress"`
}

// bulkStatusResult is the per-item outcome of a bulk status update.
type bulkStatusResult struct {
	StudentID string                 `json:"student_id"`
	OK        bool                   `json:"ok"`
	Error     string                 `json:"error,omitempty"`
	Record    *models.StudentMission `json:"record,omitempty"`
}

// reconcileFixResponse is the body for POST /missions/{id}/reconcile/fix.
type reconcileFixResponse struct {
	RunID        string `json:"run_id"`
	ChangedCount int64  `json:"changed_count"`
}

// reconcileSyncResponse is the body for POST /missions/{id}/reconcile/sync.
type reconcileSyncResponse struct {
	RunID       string   `json:"run_id"`
	SyncedCount int      `json:"synced_count"`
	Errors      []string `json:"errors,omitempty"`
}

// reconcileClearResponse is the body for POST /missions/{id}/reconcile/clear.
type reconcileClearResponse struct {
	RunID        string `json:"run_id"`
	UpdatedCount int64  `json:"updated_count"`
}
