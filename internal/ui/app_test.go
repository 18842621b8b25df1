package ui

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/taskboard/internal/ui/views"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		path string
		want Route
	}{
		{"", Route{Kind: RouteDashboard}},
		{"/", Route{Kind: RouteDashboard, Path: "/"}},
		{"/tasks", Route{Kind: RouteTasks, Path: "/tasks"}},
		{"/tasks/", Route{Kind: RouteTasks, Path: "/tasks/"}},
		{"/tasks?status=TODO", Route{Kind: RouteTasks, Path: "/tasks?status=TODO"}},
		{"/projects/p1", Route{Kind: RouteProject, ProjectID: "p1", Path: "/projects/p1"}},
		{"/projects/a%20b#top", Route{Kind: RouteProject, ProjectID: "a b", Path: "/projects/a%20b#top"}},
		{"/projects/", Route{Kind: RouteNotFound, Path: "/projects/"}},
		{"/projects/p1/tasks", Route{Kind: RouteNotFound, Path: "/projects/p1/tasks"}},
		{"/projects/%zz", Route{Kind: RouteNotFound, Path: "/projects/%zz"}},
		{"/settings", Route{Kind: RouteNotFound, Path: "/settings"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseRoute(tt.path)); diff != "" {
				t.Errorf("ParseRoute(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestRouteString(t *testing.T) {
	assert.Equal(t, "/", ParseRoute("").String())
	assert.Equal(t, "/tasks", ParseRoute("/tasks/").String())
	assert.Equal(t, "/projects/a%20b", ParseRoute("/projects/a%20b").String())
	assert.Equal(t, "/nope", ParseRoute("/nope").String())
}

type mapSettings map[string]string

func (m mapSettings) GetSetting(key string) (string, error) { return m[key], nil }

func (m mapSettings) SetSetting(key, value string) error {
	m[key] = value
	return nil
}

type failingSettings struct{}

func (failingSettings) GetSetting(string) (string, error) { return "", errors.New("disk gone") }
func (failingSettings) SetSetting(string, string) error   { return errors.New("disk gone") }

func newTestApp(t *testing.T, settings Settings, start string) (*App, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	// The API is never reached: no command returned by the views is run
	return NewApp(context.Background(), nil, settings, log, start), &logs
}

func TestApp_RestoresLastRoute(t *testing.T) {
	settings := mapSettings{LastRouteKey: "/projects/p7"}
	a, _ := newTestApp(t, settings, "")
	a.Init()

	assert.Equal(t, RouteProject, a.Route().Kind)
	assert.Equal(t, "p7", a.Route().ProjectID)
	assert.IsType(t, &views.ProjectView{}, a.view)
}

func TestApp_ExplicitStartWins(t *testing.T) {
	settings := mapSettings{LastRouteKey: "/projects/p7"}
	a, _ := newTestApp(t, settings, "/tasks")
	a.Init()

	assert.Equal(t, RouteTasks, a.Route().Kind)
	assert.Equal(t, "/tasks", settings[LastRouteKey])
}

func TestApp_NavigatePersistsRoute(t *testing.T) {
	settings := mapSettings{}
	a, _ := newTestApp(t, settings, "")
	a.Init()
	assert.Equal(t, "/", settings[LastRouteKey])
	assert.IsType(t, &views.DashboardView{}, a.view)

	a.Update(views.Navigate{Route: "/projects/p1/"})
	assert.Equal(t, "/projects/p1", settings[LastRouteKey])

	// unknown routes are shown but never restored
	a.Update(views.Navigate{Route: "/bogus"})
	assert.IsType(t, &views.NotFoundView{}, a.view)
	assert.Equal(t, "/projects/p1", settings[LastRouteKey])
	assert.Contains(t, a.View(), "Page not found")
}

func TestApp_SettingsFailureIsNotFatal(t *testing.T) {
	a, logs := newTestApp(t, failingSettings{}, "")
	a.Init()

	assert.Equal(t, RouteDashboard, a.Route().Kind)
	assert.Contains(t, logs.String(), "saving last route")
}

func TestApp_NilSettings(t *testing.T) {
	a, _ := newTestApp(t, nil, "/tasks")
	a.Init()
	assert.Equal(t, RouteTasks, a.Route().Kind)
}

type panicky struct{ inView bool }

func (p panicky) Init() tea.Cmd { return nil }

func (p panicky) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok && !p.inView {
		panic("update exploded")
	}
	return p, nil
}

func (p panicky) View() string {
	if p.inView {
		panic("view exploded")
	}
	return "fine"
}

func TestApp_RecoversFromUpdatePanic(t *testing.T) {
	a, logs := newTestApp(t, mapSettings{}, "/tasks")
	a.Init()
	a.view = panicky{}

	require.NotPanics(t, func() {
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	})
	assert.True(t, a.crashed)
	assert.Contains(t, a.View(), "Something went wrong")
	assert.Contains(t, logs.String(), "update exploded")
	assert.Contains(t, logs.String(), "route=/tasks")

	// enter leaves the fallback for the dashboard
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, a.crashed)
	assert.Equal(t, RouteDashboard, a.Route().Kind)
}

func TestApp_RecoversFromViewPanic(t *testing.T) {
	a, logs := newTestApp(t, mapSettings{}, "")
	a.Init()
	a.view = panicky{inView: true}

	var out string
	require.NotPanics(t, func() { out = a.View() })
	assert.Contains(t, out, "Something went wrong")
	assert.Contains(t, logs.String(), "phase=view")

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
