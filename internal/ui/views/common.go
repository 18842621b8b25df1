package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/graphql"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// API is the part of the api client the views use
type API interface {
	Projects(ctx context.Context, status models.ProjectStatus) ([]models.Project, error)
	Project(ctx context.Context, id string) (*models.Project, error)
	Tasks(ctx context.Context, filter graphql.TaskFilter) ([]models.Task, error)
	TaskComments(ctx context.Context, taskID string) ([]models.TaskComment, error)
	ProjectStats(ctx context.Context) (models.ProjectStats, error)
	CreateProject(ctx context.Context, in graphql.ProjectInput, refetch ...graphql.Operation) (*models.Project, error)
	UpdateProject(ctx context.Context, id string, in graphql.ProjectInput, refetch ...graphql.Operation) (*models.Project, error)
	CreateTask(ctx context.Context, in graphql.CreateTaskInput, refetch ...graphql.Operation) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, p graphql.TaskPatch, refetch ...graphql.Operation) (*models.Task, error)
	AddTaskComment(ctx context.Context, taskID, content, authorEmail string, refetch ...graphql.Operation) (*models.TaskComment, error)
	Refetch(ctx context.Context, op graphql.Operation, out any) error
}

// Navigate asks the app to switch to another route
type Navigate struct {
	Route string
}

func navigate(route string) tea.Cmd {
	return func() tea.Msg { return Navigate{Route: route} }
}

// ProjectRoute returns the route of a project's detail view
func ProjectRoute(id string) string {
	return "/projects/" + id
}

// helpLine renders "key desc • key desc ..." from alternating pairs
func helpLine(s *styles.Styles, pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, s.HelpKey.Render(pairs[i])+" "+pairs[i+1])
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

// header renders the title bar shared by every route
func header(s *styles.Styles, width int, crumbs ...string) string {
	w := styles.ContentWidth(width)
	text := strings.Join(append([]string{"taskboard"}, crumbs...), " › ")
	return s.Header.Width(max(w-2, 10)).Render(text)
}

// centered places content in the middle of the content area
func centered(content string, width, height int) string {
	contentWidth := styles.ContentWidth(width)
	placed := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(placed, width, height)
}

func formatDate(t *time.Time, empty string) string {
	if t == nil || t.IsZero() {
		return empty
	}
	return t.Local().Format("Jan 2, 2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("Jan 2, 2006 3:04 PM")
}

func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:width-1]
	}
	return string(r) + "…"
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// refresh re-issues ops network-only so the cache-first reads that follow
// see the server's current state
func refresh(ctx context.Context, api API, ops ...graphql.Operation) error {
	var errs []error
	for _, op := range ops {
		if err := api.Refetch(ctx, op, nil); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newSpinner() spinner.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Current.Primary)
	return sp
}

// updateTask sends patch for task id and reports the outcome as TaskUpdated
func updateTask(ctx context.Context, api API, id string, patch graphql.TaskPatch, refetch ...graphql.Operation) tea.Cmd {
	return func() tea.Msg {
		task, err := api.UpdateTask(ctx, id, patch, refetch...)
		if task == nil {
			return TaskUpdated{Err: err}
		}
		return TaskUpdated{Task: *task, Err: err}
	}
}

// nextFilter cycles all (the zero value) -> each of values -> all
func nextFilter[T comparable](values []T, cur T) T {
	var all T
	if cur == all {
		return values[0]
	}
	for i, v := range values {
		if v == cur && i+1 < len(values) {
			return values[i+1]
		}
	}
	return all
}
