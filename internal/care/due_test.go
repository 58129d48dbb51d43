package care

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/equitrack/backend/internal/models"
)

func TestStatusOf(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	day := 24 * time.Hour

	task := func(due time.Time, completed *time.Time) *models.CareTask {
		return &models.CareTask{TaskType: models.CareFarrier, DueDate: due, CompletedAt: completed}
	}

	assert.Equal(t, DueOverdue, StatusOf(task(now.Add(-3*day), nil), now))
	assert.Equal(t, DueSoon, StatusOf(task(now, nil), now), "due today is due soon, not overdue")
	assert.Equal(t, DueSoon, StatusOf(task(now.Add(14*day), nil), now))
	assert.Equal(t, DueScheduled, StatusOf(task(now.Add(15*day), nil), now))

	done := now.Add(-day)
	assert.Equal(t, DueCompleted, StatusOf(task(now.Add(-10*day), &done), now),
		"completion wins regardless of due date")
}
