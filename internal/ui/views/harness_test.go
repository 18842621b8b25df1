package views

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/taskboard/internal/api"
	"github.com/tgienger/taskboard/internal/graphql"
	"github.com/tgienger/taskboard/internal/graphql/graphqltest"
)

// harness runs a model the way the tea runtime would, but synchronously:
// every command is executed and its message fed back until none remain.
type harness struct {
	t    *testing.T
	m    tea.Model
	msgs []tea.Msg
}

func newHarness(t *testing.T, m tea.Model) *harness {
	t.Helper()
	h := &harness{t: t, m: m}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.run(m.Init())
	return h
}

func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(h.t, steps, 1000, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := exec(c).(type) {
		case nil, spinner.TickMsg:
			// timers would keep the loop alive forever
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			h.msgs = append(h.msgs, msg)
			var next tea.Cmd
			h.m, next = h.m.Update(msg)
			queue = append(queue, next)
		}
	}
}

// exec runs a command, giving up on the ones that wait on a timer such as
// cursor blinks. Requests to the test server answer well within the limit.
func exec(c tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(300 * time.Millisecond):
		return nil
	}
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	var cmd tea.Cmd
	h.m, cmd = h.m.Update(msg)
	h.run(cmd)
}

// press sends named keys ("enter", "esc", "tab", "ctrl+s", "right") or runes
func (h *harness) press(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		h.send(keyMsg(k))
	}
}

// typeText sends s as one rune batch, as a paste or fast typing would
func (h *harness) typeText(s string) {
	h.t.Helper()
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// received returns the messages of type T seen so far
func received[T tea.Msg](h *harness) []T {
	var out []T
	for _, m := range h.msgs {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// component adapts the popups, whose Update returns their own type. Window
// sizes go to setSize the way the host views forward them.
type component[T any] struct {
	c       T
	update  func(T, tea.Msg) (T, tea.Cmd)
	view    func(T) string
	setSize func(T, int, int)
}

func (m component[T]) Init() tea.Cmd { return nil }

func (m component[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.setSize(m.c, size.Width, size.Height)
		return m, nil
	}
	var cmd tea.Cmd
	m.c, cmd = m.update(m.c, msg)
	return m, cmd
}

func (m component[T]) View() string { return m.view(m.c) }

func taskFormModel(f *TaskForm) tea.Model {
	return component[*TaskForm]{c: f, update: (*TaskForm).Update, view: (*TaskForm).View, setSize: (*TaskForm).SetSize}
}

func taskDetailModel(d *TaskDetail) tea.Model {
	return component[*TaskDetail]{c: d, update: (*TaskDetail).Update, view: (*TaskDetail).View, setSize: (*TaskDetail).SetSize}
}

// newBackend starts a fake server with a small organization loaded and a
// client pointed at it
func newBackend(t *testing.T) (*graphqltest.Server, *api.Client) {
	t.Helper()
	srv := graphqltest.NewServer(t)

	srv.Handle(graphql.OpGetProjects, func(vars map[string]any) (any, []graphql.Error) {
		all := []map[string]any{
			graphqltest.Project("p1", "Website", "ACTIVE"),
			graphqltest.Project("p2", "Mobile App", "ON_HOLD"),
		}
		status := graphqltest.Str(vars, "status")
		var out []any
		for _, p := range all {
			if status == "" || p["status"] == status {
				out = append(out, p)
			}
		}
		return map[string]any{"projects": out}, nil
	})
	srv.Handle(graphql.OpGetProject, func(vars map[string]any) (any, []graphql.Error) {
		switch graphqltest.Str(vars, "id") {
		case "p1":
			return map[string]any{"project": graphqltest.Project("p1", "Website", "ACTIVE")}, nil
		case "p2":
			return map[string]any{"project": graphqltest.Project("p2", "Mobile App", "ON_HOLD")}, nil
		}
		return map[string]any{"project": nil}, nil
	})
	srv.Handle(graphql.OpGetProjectStats, func(map[string]any) (any, []graphql.Error) {
		return map[string]any{"projectStats": graphqltest.Stats(2, 1, 4, 1, 25)}, nil
	})
	srv.Handle(graphql.OpGetTasks, func(vars map[string]any) (any, []graphql.Error) {
		all := []map[string]any{
			graphqltest.Task("t1", "Design landing page", "TODO", "HIGH", "p1", "Website"),
			graphqltest.Task("t2", "Wire up analytics", "IN_PROGRESS", "MEDIUM", "p1", "Website"),
			graphqltest.Task("t3", "Ship v1", "DONE", "URGENT", "p1", "Website"),
			graphqltest.Task("t4", "Prototype", "TODO", "LOW", "p2", "Mobile App"),
		}
		pid, status := graphqltest.Str(vars, "projectId"), graphqltest.Str(vars, "status")
		var out []any
		for _, tk := range all {
			proj := tk["project"].(map[string]any)
			if (pid == "" || proj["id"] == pid) && (status == "" || tk["status"] == status) {
				out = append(out, tk)
			}
		}
		return map[string]any{"tasks": out}, nil
	})
	srv.Handle(graphql.OpCreateTask, func(vars map[string]any) (any, []graphql.Error) {
		tk := graphqltest.Task("t9", graphqltest.Str(vars, "title"), graphqltest.Str(vars, "status"),
			graphqltest.Str(vars, "priority"), graphqltest.Str(vars, "projectId"), "Website")
		return map[string]any{"createTask": map[string]any{"task": tk}}, nil
	})
	srv.Handle(graphql.OpUpdateTask, func(vars map[string]any) (any, []graphql.Error) {
		status := graphqltest.Str(vars, "status")
		if status == "" {
			status = "TODO"
		}
		priority := graphqltest.Str(vars, "priority")
		if priority == "" {
			priority = "HIGH"
		}
		tk := graphqltest.Task(graphqltest.Str(vars, "id"), "Design landing page", status, priority, "p1", "Website")
		return map[string]any{"updateTask": map[string]any{"task": tk}}, nil
	})
	srv.Handle(graphql.OpCreateProject, func(vars map[string]any) (any, []graphql.Error) {
		p := graphqltest.Project("p3", graphqltest.Str(vars, "name"), graphqltest.Str(vars, "status"))
		return map[string]any{"createProject": map[string]any{"project": p}}, nil
	})
	srv.Handle(graphql.OpUpdateProject, func(vars map[string]any) (any, []graphql.Error) {
		p := graphqltest.Project(graphqltest.Str(vars, "id"), graphqltest.Str(vars, "name"), graphqltest.Str(vars, "status"))
		return map[string]any{"updateProject": map[string]any{"project": p}}, nil
	})
	srv.Handle(graphql.OpGetTaskComments, func(map[string]any) (any, []graphql.Error) {
		return map[string]any{"taskComments": []any{
			graphqltest.Comment("c1", "Looks good", "ana@example.com"),
		}}, nil
	})
	srv.Handle(graphql.OpAddTaskComment, func(vars map[string]any) (any, []graphql.Error) {
		c := graphqltest.Comment("c2", graphqltest.Str(vars, "content"), graphqltest.Str(vars, "authorEmail"))
		return map[string]any{"addTaskComment": map[string]any{"comment": c}}, nil
	})

	client, err := api.New(api.Options{
		Endpoint:         srv.URL(),
		OrganizationSlug: "acme",
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return srv, client
}

func callNames(calls []graphqltest.Call) []string {
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Operation
	}
	return names
}

var bg = context.Background()
