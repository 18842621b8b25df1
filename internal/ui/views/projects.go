package views

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/api"
	"github.com/tgienger/taskboard/internal/graphql"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string       { return i.project.Name }
func (i projectItem) Description() string { return i.project.Description }
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	badge := styles.ProjectStatusBadge(p.project.Status).Render()
	name := truncate(p.project.Name, width-lipgloss.Width(badge)-4)
	title := titleStyle.Render(name + "  " + badge)

	info := fmt.Sprintf("%s  %d/%d done",
		d.styles.ProgressBar(p.project.CompletionRate, 12),
		p.project.CompletedTaskCount,
		p.project.TaskCount,
	)
	if due := formatDate(p.project.DueDate, ""); due != "" {
		info += "  due " + due
	}
	desc := descStyle.Render(info)

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

type projectsLoadedMsg struct {
	status   models.ProjectStatus
	projects []models.Project
	err      error
}

type statsLoadedMsg struct {
	stats models.ProjectStats
	err   error
}

type dashboardRefreshedMsg struct {
	err error
}

// DashboardView is the root route: organization stats and the project list
type DashboardView struct {
	api      API
	ctx      context.Context
	list     list.Model
	delegate *projectDelegate
	form     *ProjectForm
	spinner  spinner.Model
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int

	filter models.ProjectStatus // empty = all
	loaded bool
	err    string

	stats       models.ProjectStats
	statsLoaded bool
	statsErr    string

	refreshing bool
	notice     string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewDashboardView creates the dashboard
func NewDashboardView(ctx context.Context, client API) *DashboardView {
	s := styles.NewStyles()

	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &DashboardView{
		api:      client,
		ctx:      ctx,
		list:     l,
		delegate: delegate,
		form:     NewProjectForm(ctx, client),
		spinner:  newSpinner(),
		styles:   s,
		keys:     keys.DefaultKeyMap(),
	}
}

func (v *DashboardView) Init() tea.Cmd {
	return tea.Batch(v.spinner.Tick, v.loadProjects(), v.loadStats)
}

func (v *DashboardView) loadProjects() tea.Cmd {
	status := v.filter
	return func() tea.Msg {
		projects, err := v.api.Projects(v.ctx, status)
		return projectsLoadedMsg{status: status, projects: projects, err: err}
	}
}

func (v *DashboardView) loadStats() tea.Msg {
	stats, err := v.api.ProjectStats(v.ctx)
	return statsLoadedMsg{stats: stats, err: err}
}

// dependents are the queries a project save invalidates
func (v *DashboardView) dependents() []graphql.Operation {
	ops := []graphql.Operation{graphql.GetProjects(""), graphql.GetProjectStats()}
	if v.filter != "" {
		ops = append(ops, graphql.GetProjects(v.filter))
	}
	return ops
}

func (v *DashboardView) refresh() tea.Cmd {
	if v.refreshing {
		return nil
	}
	v.refreshing = true
	ops := []graphql.Operation{graphql.GetProjects(v.filter), graphql.GetProjectStats()}
	return func() tea.Msg {
		return dashboardRefreshedMsg{err: refresh(v.ctx, v.api, ops...)}
	}
}

func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, max(msg.Height-14, 4))
		v.form.SetSize(msg.Width, msg.Height)
		return v, nil

	case spinner.TickMsg:
		if v.loaded && v.statsLoaded {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case projectsLoadedMsg:
		if msg.status != v.filter {
			return v, nil
		}
		v.loaded = true
		if msg.err != nil {
			v.err = api.UserMessage(msg.err)
			return v, nil
		}
		v.err = ""
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = projectItem{project: p}
		}
		v.list.SetItems(items)
		return v, nil

	case statsLoadedMsg:
		v.statsLoaded = true
		if msg.err != nil {
			v.statsErr = api.UserMessage(msg.err)
			return v, nil
		}
		v.statsErr = ""
		v.stats = msg.stats
		return v, nil

	case dashboardRefreshedMsg:
		v.refreshing = false
		if msg.err != nil {
			v.notice = api.UserMessage(msg.err)
		} else {
			v.notice = ""
		}
		return v, tea.Batch(v.loadProjects(), v.loadStats)

	case projectSavedMsg:
		var cmd tea.Cmd
		v.form, cmd = v.form.Update(msg)
		return v, cmd

	case ProjectSaved:
		v.notice = ""
		if msg.Err != nil {
			v.notice = api.UserMessage(msg.Err)
		}
		// The save re-fetched the list and stats, so these reads hit the cache
		return v, tea.Batch(v.loadProjects(), v.loadStats)

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.form.IsOpen() {
			var cmd tea.Cmd
			v.form, cmd = v.form.Update(msg)
			return v, cmd
		}

		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			if v.list.FilterState() == list.FilterApplied {
				v.list.ResetFilter()
			}
			return v, nil
		case key.Matches(msg, v.keys.New):
			v.form.SetRefetch(v.dependents()...)
			return v, v.form.OpenNew()
		case key.Matches(msg, v.keys.Filter):
			v.filter = nextFilter(models.ProjectStatuses, v.filter)
			v.loaded = false
			v.list.ResetSelected()
			return v, tea.Batch(v.spinner.Tick, v.loadProjects())
		case key.Matches(msg, v.keys.Refresh):
			return v, v.refresh()
		case key.Matches(msg, v.keys.Board):
			return v, navigate("/tasks")
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, navigate(ProjectRoute(item.project.ID))
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// View renders the view
func (v *DashboardView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.form.IsOpen() {
		return v.form.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		header(v.styles, v.width, "Dashboard"),
		v.renderStats(),
		v.renderFilter(),
		v.renderProjects(),
		v.renderHelp(),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *DashboardView) renderStats() string {
	s := v.styles
	if !v.statsLoaded {
		return s.TitleMuted.Render(v.spinner.View() + " Loading stats...")
	}
	if v.statsErr != "" {
		return s.Error.Render(v.statsErr)
	}

	contentWidth := styles.ContentWidth(v.width)
	cardWidth := styles.Clamp((contentWidth-8)/4, 14, 28)
	card := func(label, value string) string {
		return s.Card.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
			s.TitleMuted.Render(label),
			s.CardValue.Render(value),
		))
	}

	st := v.stats
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Projects", fmt.Sprint(st.TotalProjects)),
		card("Active Projects", fmt.Sprint(st.ActiveProjects)),
		card("Total Tasks", fmt.Sprint(st.TotalTasks)),
		card("Completion Rate", fmt.Sprintf("%.0f%%", st.OverallCompletionRate)),
	)
}

func (v *DashboardView) renderFilter() string {
	s := v.styles
	label := "All"
	if v.filter != "" {
		label = styles.ProjectStatusBadge(v.filter).Render()
	}
	line := s.Label.Render("Status: ") + label
	if v.refreshing {
		line += "  " + s.TitleMuted.Render(v.spinner.View()+" refreshing")
	}
	if v.notice != "" {
		line += "  " + s.Error.Render(v.notice)
	}
	return s.ListItem.Render(line)
}

func (v *DashboardView) renderProjects() string {
	s := v.styles
	if !v.loaded {
		return s.TitleMuted.Render(v.spinner.View() + " Loading projects...")
	}
	if v.err != "" {
		return s.Error.Render(v.err)
	}
	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}
	return v.list.View()
}

func (v *DashboardView) renderEmpty() string {
	s := v.styles
	msg := "Press 'n' to create your first project"
	if v.filter != "" {
		msg = "No " + v.filter.Label() + " projects. Press 'f' to change the filter."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		s.Title.Render("No Projects"),
		s.TitleMuted.Render(msg),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)
}

func (v *DashboardView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 60 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return helpLine(v.styles,
		"↵", "open",
		"n", "new",
		"f", "filter",
		"/", "search",
		"b", "task board",
		"r", "refresh",
		"q", "quit",
	)
}

func (v *DashboardView) renderHelpPopup() string {
	s := v.styles

	helpItems := []string{
		s.HelpKey.Render("↵") + "      open project",
		s.HelpKey.Render("n") + "      new project",
		s.HelpKey.Render("f") + "      cycle status filter",
		s.HelpKey.Render("/") + "      search by name",
		s.HelpKey.Render("b") + "      task board",
		s.HelpKey.Render("r") + "      refresh",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)
	return centered(s.Box.Render(content), v.width, v.height)
}
