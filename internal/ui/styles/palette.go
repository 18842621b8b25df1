package styles

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/models"
)

// Badge is the display form of an enum value
type Badge struct {
	Label string
	Color lipgloss.Color
}

// Render draws the badge as a bracketed, coloured label
func (b Badge) Render() string {
	return lipgloss.NewStyle().Foreground(b.Color).Bold(true).Render("[" + b.Label + "]")
}

// defaultBadge is used for any value the palette does not know
func defaultBadge(value string) Badge {
	label := strings.ReplaceAll(value, "_", " ")
	if label == "" {
		label = "UNKNOWN"
	}
	return Badge{Label: label, Color: Current.Neutral}
}

// TaskStatusBadge maps a task status to its badge
func TaskStatusBadge(s models.TaskStatus) Badge {
	t := Current
	switch s {
	case models.TaskTodo:
		return Badge{Label: s.Label(), Color: t.Neutral}
	case models.TaskInProgress:
		return Badge{Label: s.Label(), Color: t.Info}
	case models.TaskDone:
		return Badge{Label: s.Label(), Color: t.Success}
	case models.TaskBlocked:
		return Badge{Label: s.Label(), Color: t.Error}
	}
	return defaultBadge(string(s))
}

// PriorityBadge maps a task priority to its badge
func PriorityBadge(p models.Priority) Badge {
	t := Current
	switch p {
	case models.PriorityLow:
		return Badge{Label: p.Label(), Color: t.Neutral}
	case models.PriorityMedium:
		return Badge{Label: p.Label(), Color: t.Info}
	case models.PriorityHigh:
		return Badge{Label: p.Label(), Color: t.Warning}
	case models.PriorityUrgent:
		return Badge{Label: p.Label(), Color: t.Error}
	}
	return defaultBadge(string(p))
}

// ProjectStatusBadge maps a project status to its badge
func ProjectStatusBadge(s models.ProjectStatus) Badge {
	t := Current
	switch s {
	case models.ProjectActive:
		return Badge{Label: s.Label(), Color: t.Success}
	case models.ProjectCompleted:
		return Badge{Label: s.Label(), Color: t.Info}
	case models.ProjectOnHold:
		return Badge{Label: s.Label(), Color: t.Warning}
	case models.ProjectCancelled:
		return Badge{Label: s.Label(), Color: t.Error}
	}
	return defaultBadge(string(s))
}

// ProgressBar renders rate (0-100) as a bar of width cells followed by the
// rounded percentage
func (s *Styles) ProgressBar(rate float64, width int) string {
	if width < 1 {
		width = 1
	}
	r := math.Max(0, math.Min(100, rate))
	filled := int(math.Round(r / 100 * float64(width)))
	bar := s.ProgressFull.Render(strings.Repeat("█", filled)) +
		s.ProgressEmpty.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3.0f%%", bar, r)
}
