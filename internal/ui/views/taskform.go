package views

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/forms"
	"github.com/tgienger/taskboard/internal/graphql"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// TaskCreated is emitted after the form created a task. Err is set when the
// task exists but re-fetching the dependent queries failed.
type TaskCreated struct {
	Task models.Task
	Err  error
}

type taskCreatedMsg struct {
	task *models.Task
	err  error
}

type formProjectsMsg struct {
	projects []models.Project
	err      error
}

// Focus order of the task form
const (
	formProject = iota
	formTitle
	formDesc
	formStatus
	formPriority
	formAssignee
	formDue
	formSubmit
	formFields
)

// TaskForm is the task creation popup. It is hosted by the project detail
// view (pinned to that project) and by the task board.
type TaskForm struct {
	api     API
	ctx     context.Context
	styles  *styles.Styles
	keys    keys.KeyMap
	refetch []graphql.Operation

	draft      forms.TaskDraft
	errors     forms.Errors
	projects   []models.Project
	projectIdx int // -1 = nothing selected

	title    textinput.Model
	desc     textarea.Model
	assignee textinput.Model
	due      textinput.Model

	focus      int
	open       bool
	submitting bool
	width      int
	height     int
}

// NewTaskForm creates a closed form. refetch names the queries re-issued
// after a successful create.
func NewTaskForm(ctx context.Context, api API, pinnedProjectID string, refetch ...graphql.Operation) *TaskForm {
	title := textinput.New()
	title.Placeholder = "Enter task title"
	title.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Enter task description"
	desc.CharLimit = 2000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	assignee := textinput.New()
	assignee.Placeholder = "Enter assignee email"
	assignee.CharLimit = 254

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD or YYYY-MM-DDTHH:MM"
	due.CharLimit = 16

	return &TaskForm{
		api:        api,
		ctx:        ctx,
		styles:     styles.NewStyles(),
		keys:       keys.DefaultKeyMap(),
		refetch:    refetch,
		draft:      forms.NewTaskDraft(pinnedProjectID),
		errors:     forms.Errors{},
		projectIdx: -1,
		title:      title,
		desc:       desc,
		assignee:   assignee,
		due:        due,
	}
}

// IsOpen reports whether the form is showing
func (f *TaskForm) IsOpen() bool { return f.open }

func (f *TaskForm) pinned() bool { return f.draft.PinnedProjectID != "" }

// Open shows the form and loads the project choices
func (f *TaskForm) Open() tea.Cmd {
	f.open = true
	f.focus = formProject
	if f.pinned() {
		f.focus = formTitle
	}
	f.updateFocus()
	return tea.Batch(textinput.Blink, f.loadProjects)
}

func (f *TaskForm) loadProjects() tea.Msg {
	projects, err := f.api.Projects(f.ctx, "")
	return formProjectsMsg{projects: projects, err: err}
}

// SetSize adapts the textarea to the terminal
func (f *TaskForm) SetSize(width, height int) {
	f.width = width
	f.height = height
	f.desc.SetWidth(styles.Clamp(styles.ContentWidth(width)-10, 20, 50))
}

// Update handles messages while the form is open. Result messages are
// handled even when it is closed.
func (f *TaskForm) Update(msg tea.Msg) (*TaskForm, tea.Cmd) {
	switch msg := msg.(type) {
	case formProjectsMsg:
		if msg.err == nil {
			f.projects = msg.projects
			f.syncProjectIdx()
		}
		return f, nil

	case taskCreatedMsg:
		f.submitting = false
		if msg.task == nil {
			// Values stay so the user can retry
			f.errors = forms.Errors{forms.FieldSubmit: forms.SubmitError}
			return f, nil
		}
		f.reset()
		f.open = false
		created := TaskCreated{Task: *msg.task, Err: msg.err}
		return f, func() tea.Msg { return created }

	case tea.KeyMsg:
		if !f.open {
			return f, nil
		}
		return f.updateKeys(msg)
	}
	return f, nil
}

func (f *TaskForm) updateKeys(msg tea.KeyMsg) (*TaskForm, tea.Cmd) {
	switch {
	case key.Matches(msg, f.keys.Back):
		f.open = false
		return f, nil

	case key.Matches(msg, f.keys.Save):
		return f, f.submit()

	case key.Matches(msg, f.keys.Tab):
		f.cycleFocus(1)
		return f, nil

	case key.Matches(msg, f.keys.BackTab):
		f.cycleFocus(-1)
		return f, nil

	case key.Matches(msg, f.keys.Enter):
		switch f.focus {
		case formSubmit:
			return f, f.submit()
		case formDesc:
			// newline in the textarea
		default:
			f.cycleFocus(1)
			return f, nil
		}
	}

	if f.focus == formProject || f.focus == formStatus || f.focus == formPriority {
		switch {
		case key.Matches(msg, f.keys.Left), key.Matches(msg, f.keys.Up):
			f.cycleChoice(-1)
		case key.Matches(msg, f.keys.Right), key.Matches(msg, f.keys.Down), msg.String() == " ":
			f.cycleChoice(1)
		}
		return f, nil
	}

	var cmd tea.Cmd
	switch f.focus {
	case formTitle:
		f.title, cmd = f.title.Update(msg)
		f.errors.Clear(forms.FieldTitle)
	case formDesc:
		f.desc, cmd = f.desc.Update(msg)
	case formAssignee:
		f.assignee, cmd = f.assignee.Update(msg)
		f.errors.Clear(forms.FieldAssigneeEmail)
	case formDue:
		f.due, cmd = f.due.Update(msg)
	}
	return f, cmd
}

func (f *TaskForm) cycleFocus(dir int) {
	for {
		f.focus = (f.focus + dir + formFields) % formFields
		if f.focus != formProject || !f.pinned() {
			break
		}
	}
	f.updateFocus()
}

func (f *TaskForm) updateFocus() {
	f.title.Blur()
	f.desc.Blur()
	f.assignee.Blur()
	f.due.Blur()

	switch f.focus {
	case formTitle:
		f.title.Focus()
	case formDesc:
		f.desc.Focus()
	case formAssignee:
		f.assignee.Focus()
	case formDue:
		f.due.Focus()
	}
}

func (f *TaskForm) cycleChoice(dir int) {
	switch f.focus {
	case formProject:
		if f.pinned() || len(f.projects) == 0 {
			return
		}
		n := len(f.projects) + 1 // includes "none"
		f.projectIdx = (f.projectIdx+1+dir+n)%n - 1
		f.draft.ProjectID = ""
		if f.projectIdx >= 0 {
			f.draft.ProjectID = f.projects[f.projectIdx].ID
		}
		f.errors.Clear(forms.FieldProjectID)
	case formStatus:
		f.draft.Status = cycle(models.TaskStatuses, f.draft.Status, dir)
	case formPriority:
		f.draft.Priority = cycle(models.Priorities, f.draft.Priority, dir)
	}
}

func cycle[T comparable](values []T, cur T, dir int) T {
	for i, v := range values {
		if v == cur {
			return values[(i+dir+len(values))%len(values)]
		}
	}
	return values[0]
}

func (f *TaskForm) syncProjectIdx() {
	f.projectIdx = -1
	for i, p := range f.projects {
		if p.ID == f.draft.ProjectID {
			f.projectIdx = i
			return
		}
	}
}

// syncDraft copies the text inputs into the draft
func (f *TaskForm) syncDraft() {
	f.draft.Title = f.title.Value()
	f.draft.Description = f.desc.Value()
	f.draft.AssigneeEmail = f.assignee.Value()
	f.draft.DueDate = f.due.Value()
}

func (f *TaskForm) submit() tea.Cmd {
	if f.submitting {
		return nil
	}
	f.syncDraft()
	f.errors = f.draft.Validate()
	if !f.errors.OK() {
		return nil
	}

	f.submitting = true
	in := f.draft.Input()
	api, ctx, refetch := f.api, f.ctx, f.refetch
	return func() tea.Msg {
		task, err := api.CreateTask(ctx, in, refetch...)
		return taskCreatedMsg{task: task, err: err}
	}
}

func (f *TaskForm) reset() {
	f.draft.Reset()
	f.errors = forms.Errors{}
	f.title.Reset()
	f.desc.Reset()
	f.assignee.Reset()
	f.due.Reset()
	f.syncProjectIdx()
}

// View renders the form
func (f *TaskForm) View() string {
	s := f.styles
	inputWidth := styles.Clamp(styles.ContentWidth(f.width)-6, 20, 50)

	field := func(idx int) lipgloss.Style {
		if f.focus == idx {
			return s.InputFocused
		}
		return s.Input
	}

	projectLabel := "Select a project"
	if f.projectIdx >= 0 && f.projectIdx < len(f.projects) {
		projectLabel = f.projects[f.projectIdx].Name
	} else if f.pinned() {
		projectLabel = f.draft.PinnedProjectID
	}
	if !f.pinned() {
		projectLabel = "◀ " + projectLabel + " ▶"
	}

	btnStyle := s.Button
	if f.focus == formSubmit {
		btnStyle = s.ButtonFocused
	}
	btnLabel := " Create Task "
	if f.submitting {
		btnLabel = " Creating... "
	}

	rows := []string{
		s.Title.Render("New Task"),
		"",
		s.Label.Render("Project *"),
		field(formProject).Width(inputWidth).Render(projectLabel),
		f.fieldError(forms.FieldProjectID),
		s.Label.Render("Task Title *"),
		field(formTitle).Width(inputWidth).Render(f.title.View()),
		f.fieldError(forms.FieldTitle),
		s.Label.Render("Description"),
		field(formDesc).Render(f.desc.View()),
		lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.JoinVertical(lipgloss.Left,
				s.Label.Render("Status"),
				field(formStatus).Render("◀ "+styles.TaskStatusBadge(f.draft.Status).Render()+" ▶"),
			),
			"  ",
			lipgloss.JoinVertical(lipgloss.Left,
				s.Label.Render("Priority"),
				field(formPriority).Render("◀ "+styles.PriorityBadge(f.draft.Priority).Render()+" ▶"),
			),
		),
		s.Label.Render("Assignee Email"),
		field(formAssignee).Width(inputWidth).Render(f.assignee.View()),
		f.fieldError(forms.FieldAssigneeEmail),
		s.Label.Render("Due Date"),
		field(formDue).Width(inputWidth).Render(f.due.View()),
		"",
	}
	if msg, ok := f.errors[forms.FieldSubmit]; ok {
		rows = append(rows, s.Error.Render(msg), "")
	}
	rows = append(rows,
		btnStyle.Render(btnLabel),
		s.TitleMuted.Render("Tab: next • ←→: choose • Ctrl+S: create • Esc: cancel"),
	)

	return centered(s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)), f.width, f.height)
}

func (f *TaskForm) fieldError(field string) string {
	if msg, ok := f.errors[field]; ok {
		return f.styles.FieldError.Render(msg)
	}
	return ""
}

// SetRefetch replaces the queries re-issued after a create
func (f *TaskForm) SetRefetch(ops ...graphql.Operation) {
	f.refetch = ops
}
