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

// ProjectSaved is emitted after the project form created or updated a project
type ProjectSaved struct {
	Project models.Project
	Created bool
	Err     error
}

type projectSavedMsg struct {
	project *models.Project
	created bool
	err     error
}

const (
	pformName = iota
	pformDesc
	pformStatus
	pformDue
	pformSubmit
	pformFields
)

// ProjectForm creates a new project or edits an existing one
type ProjectForm struct {
	api     API
	ctx     context.Context
	styles  *styles.Styles
	keys    keys.KeyMap
	refetch []graphql.Operation

	editingID string // empty when creating
	draft     forms.ProjectDraft
	errors    forms.Errors

	name textinput.Model
	desc textarea.Model
	due  textinput.Model

	focus      int
	open       bool
	submitting bool
	width      int
	height     int
}

// NewProjectForm creates a closed form. refetch names the queries
// re-issued after a successful save.
func NewProjectForm(ctx context.Context, api API, refetch ...graphql.Operation) *ProjectForm {
	name := textinput.New()
	name.Placeholder = "Project name"
	name.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Description (optional)"
	desc.CharLimit = 2000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD"
	due.CharLimit = 10

	return &ProjectForm{
		api:     api,
		ctx:     ctx,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		refetch: refetch,
		draft:   forms.NewProjectDraft(),
		errors:  forms.Errors{},
		name:    name,
		desc:    desc,
		due:     due,
	}
}

// IsOpen reports whether the form is showing
func (f *ProjectForm) IsOpen() bool { return f.open }

// OpenNew shows an empty form
func (f *ProjectForm) OpenNew() tea.Cmd {
	f.editingID = ""
	f.load(forms.NewProjectDraft())
	return textinput.Blink
}

// OpenEdit shows the form pre-filled from p
func (f *ProjectForm) OpenEdit(p models.Project) tea.Cmd {
	f.editingID = p.ID
	f.load(forms.ProjectDraftFrom(p))
	return textinput.Blink
}

func (f *ProjectForm) load(d forms.ProjectDraft) {
	f.draft = d
	f.errors = forms.Errors{}
	f.name.SetValue(d.Name)
	f.desc.SetValue(d.Description)
	f.due.SetValue(d.DueDate)
	f.open = true
	f.submitting = false
	f.focus = pformName
	f.updateFocus()
}

// SetSize adapts the textarea to the terminal
func (f *ProjectForm) SetSize(width, height int) {
	f.width = width
	f.height = height
	f.desc.SetWidth(styles.Clamp(styles.ContentWidth(width)-10, 20, 50))
}

// Update handles messages for the form
func (f *ProjectForm) Update(msg tea.Msg) (*ProjectForm, tea.Cmd) {
	switch msg := msg.(type) {
	case projectSavedMsg:
		f.submitting = false
		if msg.project == nil {
			f.errors = forms.Errors{forms.FieldSubmit: forms.ProjectSubmitError}
			return f, nil
		}
		f.open = false
		saved := ProjectSaved{Project: *msg.project, Created: msg.created, Err: msg.err}
		return f, func() tea.Msg { return saved }

	case tea.KeyMsg:
		if !f.open {
			return f, nil
		}
		return f.updateKeys(msg)
	}
	return f, nil
}

func (f *ProjectForm) updateKeys(msg tea.KeyMsg) (*ProjectForm, tea.Cmd) {
	switch {
	case key.Matches(msg, f.keys.Back):
		f.open = false
		return f, nil

	case key.Matches(msg, f.keys.Save):
		return f, f.submit()

	case key.Matches(msg, f.keys.Tab):
		f.focus = (f.focus + 1) % pformFields
		f.updateFocus()
		return f, nil

	case key.Matches(msg, f.keys.BackTab):
		f.focus = (f.focus + pformFields - 1) % pformFields
		f.updateFocus()
		return f, nil

	case key.Matches(msg, f.keys.Enter):
		switch f.focus {
		case pformSubmit:
			return f, f.submit()
		case pformDesc:
		default:
			f.focus++
			f.updateFocus()
			return f, nil
		}
	}

	if f.focus == pformStatus {
		switch {
		case key.Matches(msg, f.keys.Left), key.Matches(msg, f.keys.Up):
			f.draft.Status = cycle(models.ProjectStatuses, f.draft.Status, -1)
			f.errors.Clear(forms.FieldStatus)
		case key.Matches(msg, f.keys.Right), key.Matches(msg, f.keys.Down), msg.String() == " ":
			f.draft.Status = cycle(models.ProjectStatuses, f.draft.Status, 1)
			f.errors.Clear(forms.FieldStatus)
		}
		return f, nil
	}

	var cmd tea.Cmd
	switch f.focus {
	case pformName:
		f.name, cmd = f.name.Update(msg)
		f.errors.Clear(forms.FieldName)
	case pformDesc:
		f.desc, cmd = f.desc.Update(msg)
	case pformDue:
		f.due, cmd = f.due.Update(msg)
	}
	return f, cmd
}

func (f *ProjectForm) updateFocus() {
	f.name.Blur()
	f.desc.Blur()
	f.due.Blur()
	switch f.focus {
	case pformName:
		f.name.Focus()
	case pformDesc:
		f.desc.Focus()
	case pformDue:
		f.due.Focus()
	}
}

func (f *ProjectForm) submit() tea.Cmd {
	if f.submitting {
		return nil
	}
	f.draft.Name = f.name.Value()
	f.draft.Description = f.desc.Value()
	f.draft.DueDate = f.due.Value()
	f.errors = f.draft.Validate()
	if !f.errors.OK() {
		return nil
	}

	f.submitting = true
	in := f.draft.Input()
	id := f.editingID
	api, ctx, refetch := f.api, f.ctx, f.refetch
	return func() tea.Msg {
		if id == "" {
			p, err := api.CreateProject(ctx, in, refetch...)
			return projectSavedMsg{project: p, created: true, err: err}
		}
		p, err := api.UpdateProject(ctx, id, in, refetch...)
		return projectSavedMsg{project: p, err: err}
	}
}

// View renders the form
func (f *ProjectForm) View() string {
	s := f.styles
	inputWidth := styles.Clamp(styles.ContentWidth(f.width)-6, 20, 50)

	field := func(idx int) lipgloss.Style {
		if f.focus == idx {
			return s.InputFocused
		}
		return s.Input
	}

	title, btnLabel := "New Project", " Create "
	if f.editingID != "" {
		title, btnLabel = "Edit Project", " Save "
	}
	if f.submitting {
		btnLabel = " Saving... "
	}
	btnStyle := s.Button
	if f.focus == pformSubmit {
		btnStyle = s.ButtonFocused
	}

	rows := []string{
		s.Title.Render(title),
		"",
		s.Label.Render("Name *"),
		field(pformName).Width(inputWidth).Render(f.name.View()),
		f.fieldError(forms.FieldName),
		s.Label.Render("Description"),
		field(pformDesc).Render(f.desc.View()),
		s.Label.Render("Status"),
		field(pformStatus).Render("◀ " + styles.ProjectStatusBadge(f.draft.Status).Render() + " ▶"),
		f.fieldError(forms.FieldStatus),
		s.Label.Render("Due Date"),
		field(pformDue).Width(inputWidth).Render(f.due.View()),
		"",
	}
	if msg, ok := f.errors[forms.FieldSubmit]; ok {
		rows = append(rows, s.Error.Render(msg), "")
	}
	rows = append(rows,
		btnStyle.Render(btnLabel),
		s.TitleMuted.Render("Tab: next • ←→: status • Ctrl+S: save • Esc: cancel"),
	)

	return centered(s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)), f.width, f.height)
}

func (f *ProjectForm) fieldError(field string) string {
	if msg, ok := f.errors[field]; ok {
		return f.styles.FieldError.Render(msg)
	}
	return ""
}

// SetRefetch replaces the queries re-issued after a save
func (f *ProjectForm) SetRefetch(ops ...graphql.Operation) {
	f.refetch = ops
}
