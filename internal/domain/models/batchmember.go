// internal/domain/models/batchmember.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Batch membership statuses. Only "approved" satisfies enrollment
// preconditions.
const (
	BatchApproved = "approved"
	BatchPending  = "pending"
	BatchRejected = "rejected"
)

// BatchMember records a student's membership in a batch (cohort intake),
// independent of any specific mission.
type BatchMember struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BatchID   primitive.ObjectID `bson:"batch_id" json:"batch_id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
