// internal/app/features/mentors/types.go
package mentors

// assignRequest is the payload for POST /mentors/{missionID}.
type assignRequest struct {
	MentorID         string   `json:"mentor_id" validate:"required"`
	Role             string   `json:"role" validate:"required,oneof=mission-lead coordinator advisor supervisor"`
	MaxStudents      int      `json:"max_students" validate:"gte=0"`
	Specializations  []string `json:"specializations"`
	Responsibilities []string `json:"responsibilities"`
	AvailabilityRate int      `json:"availability_rate" validate:"gte=0,lte=100"`
}

// bulkAssignRequest assigns several mentors in one call, best-effort per
// entry.
type bulkAssignRequest struct {
	Items []bulkAssignItem `json:"items" validate:"required,min=1,dive"`
}

type bulkAssignItem struct {
	MentorID string `json:"mentor_id" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=mission-lead coordinator advisor supervisor"`
}

// mentorStatusRequest is the payload for the status endpoint. This is the
// only path that can mark a mentor overloaded.
type mentorStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active deactive irregular overloaded unavailable"`
}

// workloadResponse reports a mentor's live student count alongside the
// stored counter.
type workloadResponse struct {
	MentorID     string `json:"mentor_id"`
	Workload     int    `json:"workload"`
	StoredCount  int    `json:"stored_count"`
	MaxStudents  int    `json:"max_students"`
	Status       string `json:"status"`
	OverCapacity bool   `json:"over_capacity"`
}
