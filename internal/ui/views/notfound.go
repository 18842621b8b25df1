package views

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// NotFoundView is shown for any route the app does not know
type NotFoundView struct {
	route  string
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int
}

func NewNotFoundView(route string) *NotFoundView {
	return &NotFoundView{route: route, styles: styles.NewStyles(), keys: keys.DefaultKeyMap()}
}

func (v *NotFoundView) Init() tea.Cmd { return nil }

func (v *NotFoundView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Dashboard):
			return v, navigate("/")
		case key.Matches(msg, v.keys.Board):
			return v, navigate("/tasks")
		}
	}
	return v, nil
}

func (v *NotFoundView) View() string {
	s := v.styles
	return centered(lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("404"),
		s.Label.Render("Page not found"),
		s.TitleMuted.Render(truncate(v.route, 60)),
		"",
		helpLine(s, "↵", "dashboard", "b", "task board", "q", "quit"),
	), v.width, v.height)
}
