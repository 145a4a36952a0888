package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ImportBatch records one reconcile call triggered over HTTP.
type ImportBatch struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID    string         `gorm:"index" json:"account_id"`
	Inserted     int            `json:"inserted"`
	Updated      int            `json:"updated"`
	Skipped      int            `json:"skipped"`
	FailureCount int            `json:"failure_count"`
	Failures     datatypes.JSON `json:"failures,omitempty"`
	Status       string         `gorm:"index" json:"status"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"-"`
}
