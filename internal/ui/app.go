package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
	"github.com/tgienger/taskboard/internal/ui/views"
)

// RouteKind identifies which view a route shows
type RouteKind int

const (
	RouteDashboard RouteKind = iota
	RouteProject
	RouteTasks
	RouteNotFound
)

// Route is a parsed navigation target
type Route struct {
	Kind      RouteKind
	ProjectID string
	// Path is the input as given, kept for the not-found screen
	Path string
}

// ParseRoute maps a path onto a route. Anything unrecognised is RouteNotFound.
func ParseRoute(path string) Route {
	raw := path
	p := strings.TrimSpace(path)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p != "/" {
		p = strings.TrimSuffix(p, "/")
	}

	switch {
	case p == "" || p == "/":
		return Route{Kind: RouteDashboard, Path: raw}
	case p == "/tasks":
		return Route{Kind: RouteTasks, Path: raw}
	case strings.HasPrefix(p, "/projects/"):
		id, err := url.PathUnescape(strings.TrimPrefix(p, "/projects/"))
		if err != nil || id == "" || strings.Contains(id, "/") {
			break
		}
		return Route{Kind: RouteProject, ProjectID: id, Path: raw}
	}
	return Route{Kind: RouteNotFound, Path: raw}
}

// String returns the canonical path of the route
func (r Route) String() string {
	switch r.Kind {
	case RouteDashboard:
		return "/"
	case RouteTasks:
		return "/tasks"
	case RouteProject:
		return views.ProjectRoute(url.PathEscape(r.ProjectID))
	}
	return r.Path
}

// Settings persists small values between runs
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// LastRouteKey is the settings key holding the route to reopen at startup
const LastRouteKey = "last_route"

type App struct {
	api      views.API
	ctx      context.Context
	settings Settings
	log      *slog.Logger
	styles   *styles.Styles
	keys     keys.KeyMap

	route  Route
	view   tea.Model
	width  int
	height int

	// Set once a view panicked; the fallback screen replaces it
	crashed bool
}

// NewApp creates the application. start is the initial route; when empty
// the last visited route is reopened.
func NewApp(ctx context.Context, client views.API, settings Settings, log *slog.Logger, start string) *App {
	a := &App{
		api:      client,
		ctx:      ctx,
		settings: settings,
		log:      log.With(slog.String("component", "ui")),
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
	}
	if start == "" && settings != nil {
		if last, err := settings.GetSetting(LastRouteKey); err == nil {
			start = last
		}
	}
	a.route = ParseRoute(start)
	return a
}

// Route returns the route currently shown
func (a *App) Route() Route { return a.route }

func (a *App) Init() tea.Cmd {
	return a.open(a.route)
}

func (a *App) open(r Route) tea.Cmd {
	a.route = r
	a.crashed = false

	switch r.Kind {
	case RouteDashboard:
		a.view = views.NewDashboardView(a.ctx, a.api)
	case RouteProject:
		a.view = views.NewProjectView(a.ctx, a.api, r.ProjectID)
	case RouteTasks:
		a.view = views.NewTaskBoardView(a.ctx, a.api)
	default:
		a.view = views.NewNotFoundView(r.Path)
	}

	// Save as last opened route
	if r.Kind != RouteNotFound && a.settings != nil {
		if err := a.settings.SetSetting(LastRouteKey, r.String()); err != nil {
			a.log.Warn("saving last route", slog.String("error", err.Error()))
		}
	}

	a.log.Debug("navigate", slog.String("route", r.String()))
	return tea.Batch(
		a.view.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			a.fail("update", r)
			model, cmd = a, nil
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.crashed {
			switch {
			case key.Matches(msg, a.keys.Quit):
				return a, tea.Quit
			case key.Matches(msg, a.keys.Enter), key.Matches(msg, a.keys.Back):
				return a, a.open(ParseRoute("/"))
			}
			return a, nil
		}

	case views.Navigate:
		return a, a.open(ParseRoute(msg.Route))
	}

	if a.crashed {
		return a, nil
	}
	_, cmd = a.view.Update(msg)
	return a, cmd
}

func (a *App) View() (out string) {
	if a.crashed {
		return a.renderFallback()
	}
	defer func() {
		if r := recover(); r != nil {
			a.fail("view", r)
			out = a.renderFallback()
		}
	}()
	return a.view.View()
}

// fail records a panic from the current view and switches to the fallback
func (a *App) fail(phase string, r any) {
	a.crashed = true
	a.log.Error("view panicked",
		slog.String("phase", phase),
		slog.String("route", a.route.String()),
		slog.String("panic", fmt.Sprint(r)),
		slog.String("stack", string(debug.Stack())),
	)
}

func (a *App) renderFallback() string {
	s := a.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Error.Render("Something went wrong"),
		"",
		s.TitleMuted.Render("The error has been logged."),
		"",
		s.Help.Render(s.HelpKey.Render("↵")+" dashboard • "+s.HelpKey.Render("q")+" quit"),
	)
	placed := lipgloss.Place(styles.ContentWidth(a.width), a.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(placed, a.width, a.height)
}
