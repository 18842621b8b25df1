package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tgienger/taskboard/internal/models"
)

func TestEveryKnownValueHasABadge(t *testing.T) {
	for _, s := range models.TaskStatuses {
		b := TaskStatusBadge(s)
		assert.NotEmpty(t, b.Color, "status %s", s)
		assert.NotEmpty(t, b.Label, "status %s", s)
	}
	for _, p := range models.Priorities {
		b := PriorityBadge(p)
		assert.NotEmpty(t, b.Color, "priority %s", p)
		assert.NotEmpty(t, b.Label, "priority %s", p)
	}
	for _, s := range models.ProjectStatuses {
		b := ProjectStatusBadge(s)
		assert.NotEmpty(t, b.Color, "project status %s", s)
	}
}

func TestBadgeColors(t *testing.T) {
	assert.Equal(t, Current.Success, TaskStatusBadge(models.TaskDone).Color)
	assert.Equal(t, Current.Error, TaskStatusBadge(models.TaskBlocked).Color)
	assert.Equal(t, Current.Warning, PriorityBadge(models.PriorityHigh).Color)
	assert.Equal(t, Current.Error, PriorityBadge(models.PriorityUrgent).Color)
	assert.Equal(t, Current.Success, ProjectStatusBadge(models.ProjectActive).Color)
	assert.Equal(t, "IN PROGRESS", TaskStatusBadge(models.TaskInProgress).Label)
	assert.Equal(t, "ON HOLD", ProjectStatusBadge(models.ProjectOnHold).Label)
}

func TestUnknownValuesFallBackToNeutral(t *testing.T) {
	assert.Equal(t, Badge{Label: "ARCHIVED", Color: Current.Neutral}, TaskStatusBadge("ARCHIVED"))
	assert.Equal(t, Badge{Label: "UNKNOWN", Color: Current.Neutral}, PriorityBadge(""))
	assert.Equal(t, Badge{Label: "SOFT DELETED", Color: Current.Neutral}, ProjectStatusBadge("SOFT_DELETED"))
	assert.NotPanics(t, func() { _ = TaskStatusBadge("whatever").Render() })
}

func TestProgressBar(t *testing.T) {
	s := NewStyles()
	assert.True(t, strings.HasSuffix(s.ProgressBar(25, 8), " 25%"))
	assert.True(t, strings.HasSuffix(s.ProgressBar(150, 8), "100%"))
	assert.True(t, strings.HasSuffix(s.ProgressBar(-3, 8), "  0%"))
}
