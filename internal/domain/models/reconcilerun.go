// internal/domain/models/reconcilerun.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reconciliation job names.
const (
	ReconcileFix   = "fix"
	ReconcileSync  = "sync"
	ReconcileClear = "clear"
)

// ReconcileRun is an audit record of one reconciliation job execution.
// RunID is a UUID so runs can be correlated across logs and the API response.
type ReconcileRun struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RunID     string             `bson:"run_id" json:"run_id"`
	MissionID primitive.ObjectID `bson:"mission_id" json:"mission_id"`
	Job       string             `bson:"job" json:"job"` // fix | sync | clear
	Changed   int                `bson:"changed" json:"changed"`
	Errors    []string           `bson:"errors,omitempty" json:"errors,omitempty"`
	RanAt     time.Time          `bson:"ran_at" json:"ran_at"`
}
