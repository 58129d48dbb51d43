package care

import (
	"time"

	"github.com/equitrack/backend/internal/models"
)

// DueStatus classifies a care task relative to a reference date.
type DueStatus string

const (
	DueCompleted DueStatus = "completed"
	DueOverdue   DueStatus = "overdue"
	DueSoon      DueStatus = "due_soon"
	DueScheduled DueStatus = "scheduled"
)

// UpcomingWindow is how far ahead a task counts as due soon.
const UpcomingWindow = 14 * 24 * time.Hour

// StatusOf classifies a task against now. Dates compare at day
// granularity; a task due today is due soon, not overdue.
func StatusOf(t *models.CareTask, now time.Time) DueStatus {
	if t.CompletedAt != nil {
		return DueCompleted
	}
	today := now.Truncate(24 * time.Hour)
	due := t.DueDate.Truncate(24 * time.Hour)
	if due.Before(today) {
		return DueOverdue
	}
	if !due.After(today.Add(UpcomingWindow)) {
		return DueSoon
	}
	return DueScheduled
}
