package types

import (
	"time"

	"github.com/google/uuid"
)

// StoredPlanRecord is a persisted generation result. Records are append-only.
type StoredPlanRecord struct {
	ID        uuid.UUID          `json:"id"`
	UserID    string             `json:"user_id"`
	Profile   UserFitnessProfile `json:"profile"`
	Plan      TrainingPlan       `json:"plan"`
	CreatedAt time.Time          `json:"created_at"`
}

// OwnedBy reports whether the record belongs to userID.
func (r *StoredPlanRecord) OwnedBy(userID string) bool {
	return userID != "" && r.UserID == userID
}
