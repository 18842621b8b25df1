package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/api"
	"github.com/tgienger/taskboard/internal/graphql"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

type boardTasksLoadedMsg struct {
	status models.TaskStatus
	tasks  []models.Task
	err    error
}

type boardRefreshedMsg struct {
	err error
}

// boardProjectRefreshedMsg ends the background refresh of the project a new
// task was filed under
type boardProjectRefreshedMsg struct {
	err error
}

// TaskBoardView is the flat list of every task in the organization
type TaskBoardView struct {
	api     API
	ctx     context.Context
	spinner spinner.Model
	styles  *styles.Styles
	keys    keys.KeyMap
	width   int
	height  int

	filter  models.TaskStatus // empty = all
	tasks   []models.Task
	loaded  bool
	err     string
	cursor  int
	scrollY int

	form   *TaskForm
	detail *TaskDetail

	refreshing bool
	notice     string

	showHelpPopup bool
}

// NewTaskBoardView creates the task board
func NewTaskBoardView(ctx context.Context, client API) *TaskBoardView {
	v := &TaskBoardView{
		api:     client,
		ctx:     ctx,
		spinner: newSpinner(),
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
	}
	v.form = NewTaskForm(ctx, client, "")
	v.detail = NewTaskDetail(ctx, client)
	return v
}

func (v *TaskBoardView) Init() tea.Cmd {
	return tea.Batch(v.spinner.Tick, v.loadTasks())
}

func (v *TaskBoardView) loadTasks() tea.Cmd {
	return v.fetchTasks(false)
}

// fetchTasks reads the list for the current filter. With fresh set the
// list is refetched first, since other pages only invalidate the
// unfiltered list.
func (v *TaskBoardView) fetchTasks(fresh bool) tea.Cmd {
	status := v.filter
	return func() tea.Msg {
		filter := graphql.TaskFilter{Status: status}
		if fresh {
			if err := refresh(v.ctx, v.api, graphql.GetTasks(filter)); err != nil {
				return boardTasksLoadedMsg{status: status, err: err}
			}
		}
		tasks, err := v.api.Tasks(v.ctx, filter)
		return boardTasksLoadedMsg{status: status, tasks: tasks, err: err}
	}
}

// dependents are the queries a change to a task in projectID invalidates
func (v *TaskBoardView) dependents(projectID string) []graphql.Operation {
	ops := []graphql.Operation{graphql.GetTasks(graphql.TaskFilter{})}
	if v.filter != "" {
		ops = append(ops, graphql.GetTasks(graphql.TaskFilter{Status: v.filter}))
	}
	if projectID != "" {
		ops = append(ops,
			graphql.GetTasks(graphql.TaskFilter{ProjectID: projectID}),
			graphql.GetProject(projectID),
		)
	}
	return append(ops, graphql.GetProjects(""), graphql.GetProjectStats())
}

func (v *TaskBoardView) refresh() tea.Cmd {
	if v.refreshing {
		return nil
	}
	v.refreshing = true
	op := graphql.GetTasks(graphql.TaskFilter{Status: v.filter})
	return func() tea.Msg {
		return boardRefreshedMsg{err: refresh(v.ctx, v.api, op)}
	}
}

func (v *TaskBoardView) selected() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return models.Task{}, false
	}
	return v.tasks[v.cursor], true
}

func (v *TaskBoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.form.SetSize(msg.Width, msg.Height)
		v.detail.SetSize(msg.Width, msg.Height)
		v.ensureVisible()
		return v, nil

	case spinner.TickMsg:
		if v.loaded && !v.refreshing {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case boardTasksLoadedMsg:
		if msg.status != v.filter {
			return v, nil
		}
		v.loaded = true
		if msg.err != nil {
			v.err = api.UserMessage(msg.err)
			return v, nil
		}
		v.err = ""
		v.tasks = msg.tasks
		v.cursor = styles.Clamp(v.cursor, 0, max(len(v.tasks)-1, 0))
		v.ensureVisible()
		return v, nil

	case boardRefreshedMsg:
		v.refreshing = false
		v.notice = ""
		if msg.err != nil {
			v.notice = api.UserMessage(msg.err)
		}
		return v, v.loadTasks()

	case taskCreatedMsg, formProjectsMsg:
		var cmd tea.Cmd
		v.form, cmd = v.form.Update(msg)
		return v, cmd

	case commentsLoadedMsg, commentAddedMsg, taskUpdatedMsg:
		var cmd tea.Cmd
		v.detail, cmd = v.detail.Update(msg)
		return v, cmd

	case TaskCreated:
		v.notice = ""
		if msg.Err != nil {
			v.notice = api.UserMessage(msg.Err)
		}
		// The project was picked in the form, so its page is refreshed here
		pid := msg.Task.Project.ID
		if pid == "" {
			return v, v.loadTasks()
		}
		return v, tea.Batch(v.loadTasks(), func() tea.Msg {
			return boardProjectRefreshedMsg{err: refresh(v.ctx, v.api,
				graphql.GetTasks(graphql.TaskFilter{ProjectID: pid}),
				graphql.GetProject(pid),
			)}
		})

	case boardProjectRefreshedMsg:
		if msg.err != nil {
			v.notice = api.UserMessage(msg.err)
		}
		return v, nil

	case TaskUpdated:
		v.notice = ""
		if msg.Err != nil {
			v.notice = api.UserMessage(msg.Err)
		}
		return v, v.loadTasks()

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		switch {
		case v.form.IsOpen():
			var cmd tea.Cmd
			v.form, cmd = v.form.Update(msg)
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

func (v *TaskBoardView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Dashboard):
		return v, navigate("/")

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Filter):
		v.filter = nextFilter(models.TaskStatuses, v.filter)
		v.loaded = false
		v.cursor = 0
		v.scrollY = 0
		return v, tea.Batch(v.spinner.Tick, v.fetchTasks(true))

	case key.Matches(msg, v.keys.Refresh):
		return v, tea.Batch(v.spinner.Tick, v.refresh())

	case key.Matches(msg, v.keys.New):
		v.form.SetRefetch(v.dependents("")...)
		return v, v.form.Open()

	case key.Matches(msg, v.keys.Enter):
		if t, ok := v.selected(); ok {
			v.detail.SetRefetch(v.dependents(t.Project.ID)...)
			return v, v.detail.Show(t)
		}

	case key.Matches(msg, v.keys.Status):
		if t, ok := v.selected(); ok {
			next := t.Status.Next()
			return v, updateTask(v.ctx, v.api, t.ID, graphql.TaskPatch{Status: &next}, v.dependents(t.Project.ID)...)
		}

	case key.Matches(msg, v.keys.Right):
		if t, ok := v.selected(); ok && t.Project.ID != "" {
			return v, navigate(ProjectRoute(t.Project.ID))
		}
	}
	return v, nil
}

// visibleItems is how many two-line task rows fit on screen
func (v *TaskBoardView) visibleItems() int {
	// Each task item is 2 lines + 1 margin = 3 lines
	return max((v.height-10)/3, 1)
}

func (v *TaskBoardView) ensureVisible() {
	visible := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

// View renders the view
func (v *TaskBoardView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	switch {
	case v.form.IsOpen():
		return v.form.View()
	case v.detail.IsOpen():
		return v.detail.View()
	}

	var b strings.Builder
	b.WriteString(header(v.styles, v.width, "Task Board"))
	b.WriteString("\n")
	b.WriteString(v.renderFilter())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskBoardView) renderFilter() string {
	s := v.styles
	label := "All"
	if v.filter != "" {
		label = styles.TaskStatusBadge(v.filter).Render()
	}
	line := s.Label.Render("Status: ") + label
	if v.loaded && v.err == "" {
		line += s.TitleMuted.Render("  " + plural(len(v.tasks), "task"))
	}
	if v.refreshing {
		line += "  " + s.TitleMuted.Render(v.spinner.View()+" refreshing")
	}
	if v.notice != "" {
		line += "  " + s.Error.Render(v.notice)
	}
	return s.ListItem.Render(line)
}

func (v *TaskBoardView) renderTaskList() string {
	s := v.styles

	if !v.loaded {
		return s.TitleMuted.Render(v.spinner.View() + " Loading tasks...")
	}
	if v.err != "" {
		return s.Error.Render(v.err)
	}
	if len(v.tasks) == 0 {
		if v.filter != "" {
			return s.TitleMuted.Render("No " + v.filter.Label() + " tasks. Press 'f' to change the filter.")
		}
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	var items []string
	endIdx := min(v.scrollY+v.visibleItems(), len(v.tasks))
	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(v.tasks[i], i == v.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskBoardView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-4, 20)

	badges := styles.TaskStatusBadge(task.Status).Render() + " " + styles.PriorityBadge(task.Priority).Render()
	titleLine := truncate(task.Title, width-lipgloss.Width(badges)-4) + "  " + badges

	var meta []string
	if task.Project.Name != "" {
		meta = append(meta, task.Project.Name)
	}
	if task.AssigneeEmail != "" {
		meta = append(meta, task.AssigneeEmail)
	}
	if due := formatDate(task.DueDate, ""); due != "" {
		meta = append(meta, "due "+due)
	}
	metaLine := strings.Join(meta, " · ")
	if metaLine == "" {
		metaLine = "unassigned"
	}

	var titleStyle, metaStyle lipgloss.Style
	if selected {
		titleStyle = s.ListSelected.Width(width)
		metaStyle = s.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = s.ListItem.Width(width)
		metaStyle = s.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(titleLine),
		metaStyle.Render(truncate(metaLine, width-2)),
	) + "\n"
}

func (v *TaskBoardView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 60 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return helpLine(v.styles,
		"↵", "open",
		"n", "new",
		"s", "next status",
		"f", "filter",
		"→", "project",
		"r", "refresh",
		"esc", "dashboard",
	)
}

func (v *TaskBoardView) renderHelpPopup() string {
	s := v.styles

	helpItems := []string{
		s.HelpKey.Render("j/k") + "    move",
		s.HelpKey.Render("↵") + "      open task",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("s") + "      advance task status",
		s.HelpKey.Render("f") + "      cycle status filter",
		s.HelpKey.Render("l") + "      go to the task's project",
		s.HelpKey.Render("r") + "      refresh",
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
