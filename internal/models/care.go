package models

import (
	"time"

	"github.com/google/uuid"
)

// CareTaskType is the kind of scheduled care.
type CareTaskType string

const (
	CareVaccination CareTaskType = "vaccination"
	CareFarrier     CareTaskType = "farrier"
	CareDental      CareTaskType = "dental"
	CareDeworming   CareTaskType = "deworming"
	CareCheckup     CareTaskType = "checkup"
)

// ValidCareTaskType reports whether s is a known care task type.
func ValidCareTaskType(s string) bool {
	switch CareTaskType(s) {
	case CareVaccination, CareFarrier, CareDental, CareDeworming, CareCheckup:
		return true
	}
	return false
}

// CareTask is a scheduled care item for a horse (vaccination due, farrier
// visit, ...). Completed tasks keep their row; CompletedAt marks them done.
type CareTask struct {
	ID             uuid.UUID    `json:"id"`
	OrganizationID uuid.UUID    `json:"organization_id"`
	HorseID        uuid.UUID    `json:"horse_id"`
	TaskType       CareTaskType `json:"task_type"`
	DueDate        time.Time    `json:"due_date"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
