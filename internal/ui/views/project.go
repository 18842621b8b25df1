package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/api"
	"github.com/tgienger/taskboard/internal/board"
	"github.com/tgienger/taskboard/internal/graphql"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

type projectLoadedMsg struct {
	id      string
	project *models.Project
	err     error
}

type projectTasksLoadedMsg struct {
	projectID string
	tasks     []models.Task
	err       error
}

type projectRefreshedMsg struct {
	id  string
	err error
}

// ProjectView shows one project and its tasks grouped by status
type ProjectView struct {
	api     API
	ctx     context.Context
	id      string
	spinner spinner.Model
	styles  *styles.Styles
	keys    keys.KeyMap
	width   int
	height  int

	project  *models.Project
	loaded   bool
	notFound bool
	err      string

	board       board.Board
	tasksLoaded bool
	tasksErr    string

	// Board cursor
	col int
	row int

	taskForm    *TaskForm
	projectForm *ProjectForm
	detail      *TaskDetail

	refreshing bool
	notice     string

	showHelpPopup bool
}

// NewProjectView creates the detail view for project id
func NewProjectView(ctx context.Context, client API, id string) *ProjectView {
	v := &ProjectView{
		api:     client,
		ctx:     ctx,
		id:      id,
		spinner: newSpinner(),
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		board:   board.Group(nil),
	}
	deps := v.dependents()
	v.taskForm = NewTaskForm(ctx, client, id, deps...)
	v.projectForm = NewProjectForm(ctx, client, deps...)
	v.detail = NewTaskDetail(ctx, client, deps...)
	return v
}

// dependents are the queries a change on this page invalidates. The
// unfiltered task list backs the task board.
func (v *ProjectView) dependents() []graphql.Operation {
	return []graphql.Operation{
		graphql.GetTasks(graphql.TaskFilter{ProjectID: v.id}),
		graphql.GetProject(v.id),
		graphql.GetTasks(graphql.TaskFilter{}),
		graphql.GetProjects(""),
		graphql.GetProjectStats(),
	}
}

func (v *ProjectView) Init() tea.Cmd {
	return tea.Batch(v.spinner.Tick, v.loadProject, v.loadTasks)
}

func (v *ProjectView) loadProject() tea.Msg {
	p, err := v.api.Project(v.ctx, v.id)
	return projectLoadedMsg{id: v.id, project: p, err: err}
}

func (v *ProjectView) loadTasks() tea.Msg {
	tasks, err := v.api.Tasks(v.ctx, graphql.TaskFilter{ProjectID: v.id})
	return projectTasksLoadedMsg{projectID: v.id, tasks: tasks, err: err}
}

func (v *ProjectView) reload() tea.Cmd {
	return tea.Batch(v.loadProject, v.loadTasks)
}

func (v *ProjectView) refresh() tea.Cmd {
	if v.refreshing {
		return nil
	}
	v.refreshing = true
	id := v.id
	ops := []graphql.Operation{graphql.GetProject(id), graphql.GetTasks(graphql.TaskFilter{ProjectID: id})}
	return func() tea.Msg {
		return projectRefreshedMsg{id: id, err: refresh(v.ctx, v.api, ops...)}
	}
}

// selected returns the task under the cursor
func (v *ProjectView) selected() (models.Task, bool) {
	if v.col < 0 || v.col >= len(v.board) {
		return models.Task{}, false
	}
	tasks := v.board[v.col].Tasks
	if v.row < 0 || v.row >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[v.row], true
}

func (v *ProjectView) clampCursor() {
	v.col = styles.Clamp(v.col, 0, len(v.board)-1)
	v.row = styles.Clamp(v.row, 0, max(v.board[v.col].Count()-1, 0))
}

func (v *ProjectView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.taskForm.SetSize(msg.Width, msg.Height)
		v.projectForm.SetSize(msg.Width, msg.Height)
		v.detail.SetSize(msg.Width, msg.Height)
		return v, nil

	case spinner.TickMsg:
		if v.loaded && v.tasksLoaded && !v.refreshing {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case projectLoadedMsg:
		if msg.id != v.id {
			return v, nil
		}
		v.loaded = true
		v.err = ""
		v.notFound = false
		switch {
		case errors.Is(msg.err, api.ErrNotFound):
			v.notFound = true
		case msg.err != nil:
			v.err = api.UserMessage(msg.err)
		default:
			v.project = msg.project
		}
		return v, nil

	case projectTasksLoadedMsg:
		if msg.projectID != v.id {
			return v, nil
		}
		v.tasksLoaded = true
		if msg.err != nil {
			v.tasksErr = api.UserMessage(msg.err)
			return v, nil
		}
		v.tasksErr = ""
		v.board = board.Group(msg.tasks)
		v.clampCursor()
		return v, nil

	case projectRefreshedMsg:
		v.refreshing = false
		v.notice = ""
		if msg.err != nil {
			v.notice = api.UserMessage(msg.err)
		}
		return v, v.reload()

	case taskCreatedMsg, formProjectsMsg:
		var cmd tea.Cmd
		v.taskForm, cmd = v.taskForm.Update(msg)
		return v, cmd

	case projectSavedMsg:
		var cmd tea.Cmd
		v.projectForm, cmd = v.projectForm.Update(msg)
		return v, cmd

	case commentsLoadedMsg, commentAddedMsg, taskUpdatedMsg:
		var cmd tea.Cmd
		v.detail, cmd = v.detail.Update(msg)
		return v, cmd

	case TaskCreated, ProjectSaved:
		v.notice = ""
		if err := mutationErr(msg); err != nil {
			v.notice = api.UserMessage(err)
		}
		// Dependents were re-fetched by the mutation, so these reads hit the cache
		return v, v.reload()

	case TaskUpdated:
		v.notice = ""
		if msg.Err != nil {
			v.notice = api.UserMessage(msg.Err)
		}
		return v, v.reload()

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		switch {
		case v.taskForm.IsOpen():
			var cmd tea.Cmd
			v.taskForm, cmd = v.taskForm.Update(msg)
			return v, cmd
		case v.projectForm.IsOpen():
			var cmd tea.Cmd
			v.projectForm, cmd = v.projectForm.Update(msg)
			return v, cmd
		case v.detail.IsOpen():
			var cmd tea.Cmd
			v.detail, cmd = v.detail.Update(msg)
			return v, cmd
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *ProjectView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Dashboard):
		return v, navigate("/")
	case key.Matches(msg, v.keys.Board):
		return v, navigate("/tasks")
	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	case key.Matches(msg, v.keys.Refresh):
		return v, v.refresh()
	}

	if v.notFound || v.project == nil {
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Left):
		v.col--
		v.clampCursor()
	case key.Matches(msg, v.keys.Right):
		v.col++
		v.clampCursor()
	case key.Matches(msg, v.keys.Up):
		v.row--
		v.clampCursor()
	case key.Matches(msg, v.keys.Down):
		v.row++
		v.clampCursor()
	case key.Matches(msg, v.keys.New):
		return v, v.taskForm.Open()
	case key.Matches(msg, v.keys.Edit):
		return v, v.projectForm.OpenEdit(*v.project)
	case key.Matches(msg, v.keys.Enter):
		if t, ok := v.selected(); ok {
			return v, v.detail.Show(t)
		}
	case key.Matches(msg, v.keys.Status):
		if t, ok := v.selected(); ok {
			next := t.Status.Next()
			return v, updateTask(v.ctx, v.api, t.ID, graphql.TaskPatch{Status: &next}, v.dependents()...)
		}
	}
	return v, nil
}

// mutationErr extracts the refetch error carried by a save message
func mutationErr(msg tea.Msg) error {
	switch m := msg.(type) {
	case TaskCreated:
		return m.Err
	case ProjectSaved:
		return m.Err
	}
	return nil
}

// View renders the view
func (v *ProjectView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	switch {
	case v.taskForm.IsOpen():
		return v.taskForm.View()
	case v.projectForm.IsOpen():
		return v.projectForm.View()
	case v.detail.IsOpen():
		return v.detail.View()
	}

	s := v.styles
	if !v.loaded {
		return centered(s.TitleMuted.Render(v.spinner.View()+" Loading project..."), v.width, v.height)
	}
	if v.notFound {
		return centered(lipgloss.JoinVertical(lipgloss.Center,
			s.Title.Render("Project not found"),
			"",
			s.TitleMuted.Render("It may have been removed or belong to another organization."),
			"",
			helpLine(s, "esc", "dashboard"),
		), v.width, v.height)
	}
	if v.err != "" {
		return centered(lipgloss.JoinVertical(lipgloss.Center,
			s.Error.Render(v.err),
			helpLine(s, "esc", "dashboard", "r", "retry"),
		), v.width, v.height)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		header(s, v.width, "Projects", v.project.Name),
		v.renderProject(),
		"",
		v.renderBoard(),
		v.renderHelp(),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectView) renderProject() string {
	s := v.styles
	p := v.project

	title := s.Title.Render(p.Name) + "  " + styles.ProjectStatusBadge(p.Status).Render()
	info := s.ProgressBar(p.CompletionRate, 20) +
		s.TitleMuted.Render(fmt.Sprintf("  %d/%d tasks done", p.CompletedTaskCount, p.TaskCount))
	if due := formatDate(p.DueDate, ""); due != "" {
		info += s.TitleMuted.Render("  due " + due)
	}

	rows := []string{title}
	if p.Description != "" {
		rows = append(rows, lipgloss.NewStyle().Width(styles.ContentWidth(v.width)-4).Render(p.Description))
	}
	rows = append(rows, info)
	if v.refreshing {
		rows = append(rows, s.TitleMuted.Render(v.spinner.View()+" refreshing"))
	}
	if v.notice != "" {
		rows = append(rows, s.Error.Render(v.notice))
	}
	return s.ListItem.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (v *ProjectView) renderBoard() string {
	s := v.styles
	if !v.tasksLoaded {
		return s.TitleMuted.Render(v.spinner.View() + " Loading tasks...")
	}
	if v.tasksErr != "" {
		return s.Error.Render(v.tasksErr)
	}

	contentWidth := styles.ContentWidth(v.width)
	colWidth := max((contentWidth-2)/len(v.board)-4, 14)
	// Each card is two lines plus a blank
	visible := max((v.height-16)/3, 1)

	cols := make([]string, len(v.board))
	for i, c := range v.board {
		badge := styles.TaskStatusBadge(c.Status)
		head := s.ColumnHead.Foreground(badge.Color).Render(fmt.Sprintf("%s (%d)", badge.Label, c.Count()))

		lines := []string{head}
		if c.Count() == 0 {
			lines = append(lines, s.TitleMuted.Render("No tasks"))
		}
		start := 0
		if i == v.col && v.row >= visible {
			start = v.row - visible + 1
		}
		end := min(start+visible, c.Count())
		for j := start; j < end; j++ {
			lines = append(lines, v.renderCard(c.Tasks[j], colWidth, i == v.col && j == v.row))
		}
		if end < c.Count() {
			lines = append(lines, s.TitleMuted.Render(fmt.Sprintf("+%d more", c.Count()-end)))
		}

		style := s.Column.Width(colWidth)
		if i == v.col {
			style = style.BorderForeground(styles.Current.BorderFocus)
		}
		cols[i] = style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (v *ProjectView) renderCard(t models.Task, width int, selected bool) string {
	s := v.styles
	style := s.ListItem
	if selected {
		style = s.ListSelected
	}
	style = style.Width(width)

	meta := styles.PriorityBadge(t.Priority).Render()
	if t.AssigneeEmail != "" {
		meta += " " + truncate(t.AssigneeEmail, width-lipgloss.Width(meta)-3)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		style.Render(truncate(t.Title, width-2)),
		style.Render(meta),
	) + "\n"
}

func (v *ProjectView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 60 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return helpLine(v.styles,
		"←→↑↓", "move",
		"↵", "open",
		"n", "new task",
		"s", "next status",
		"e", "edit project",
		"r", "refresh",
		"esc", "back",
	)
}

func (v *ProjectView) renderHelpPopup() string {
	s := v.styles

	helpItems := []string{
		s.HelpKey.Render("h/l") + "    previous / next column",
		s.HelpKey.Render("j/k") + "    move within column",
		s.HelpKey.Render("↵") + "      open task",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("s") + "      advance task status",
		s.HelpKey.Render("e") + "      edit project",
		s.HelpKey.Render("r") + "      refresh",
		s.HelpKey.Render("b") + "      task board",
		s.HelpKey.Render("esc") + "    dashboard",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)
	return centered(s.Box.Render(content), v.width, v.height)
}
