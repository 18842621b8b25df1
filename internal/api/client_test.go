package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/taskboard/internal/graphql"
	"github.com/tgienger/taskboard/internal/graphql/graphqltest"
	"github.com/tgienger/taskboard/internal/models"
)

func newTestClient(t *testing.T, srv *graphqltest.Server) (*Client, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	c, err := New(Options{
		Endpoint:         srv.URL(),
		OrganizationSlug: "acme",
		Logger:           slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	require.NoError(t, err)
	return c, &logs
}

func tasksByProject(vars map[string]any) (any, []graphql.Error) {
	pid := graphqltest.Str(vars, "projectId")
	return map[string]any{"tasks": []any{
		graphqltest.Task("t-"+pid, "task of "+pid, "TODO", "LOW", pid, "Project "+pid),
	}}, nil
}

func TestNewRequiresOrganizationSlug(t *testing.T) {
	_, err := New(Options{Endpoint: "http://example.invalid/graphql/"})
	require.Error(t, err)
}

func TestEveryRequestCarriesTenantHeader(t *testing.T) {
	srv := graphqltest.NewServer(t)
	srv.Handle(graphql.OpGetProjectStats, func(map[string]any) (any, []graphql.Error) {
		return map[string]any{"projectStats": graphqltest.Stats(3, 2, 10, 4, 40)}, nil
	})
	srv.Handle(graphql.OpCreateProject, func(vars map[string]any) (any, []graphql.Error) {
		return map[string]any{"createProject": map[string]any{
			"project": graphqltest.Project("p9", graphqltest.Str(vars, "name"), "ACTIVE"),
		}}, nil
	})
	c, _ := newTestClient(t, srv)

	stats, err := c.ProjectStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalProjects)
	assert.InDelta(t, 40.0, stats.OverallCompletionRate, 0.001)

	name := "Launch"
	_, err = c.CreateProject(context.Background(), graphql.ProjectInput{Name: &name})
	require.NoError(t, err)

	calls := srv.Calls()
	require.Len(t, calls, 2)
	ids := map[string]bool{}
	for _, call := range calls {
		assert.Equal(t, "acme", call.Header.Get(OrganizationHeader))
		id := call.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, id)
		ids[id] = true
	}
	assert.Len(t, ids, 2, "request ids must be unique")
}

func TestQueryIsCacheFirst(t *testing.T) {
	srv := graphqltest.NewServer(t)
	srv.Handle(graphql.OpGetProjects, func(map[string]any) (any, []graphql.Error) {
		return map[string]any{"projects": []any{graphqltest.Project("p1", "Alpha", "ACTIVE")}}, nil
	})
	c, _ := newTestClient(t, srv)
	ctx := context.Background()

	first, err := c.Projects(ctx, "")
	require.NoError(t, err)
	second, err := c.Projects(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, srv.Calls(graphql.OpGetProjects), 1)

	_, err = c.Projects(ctx, models.ProjectActive)
	require.NoError(t, err)
	assert.Len(t, srv.Calls(graphql.OpGetProjects), 2, "different arguments are a different cache entry")
}

func TestCacheEntriesPerArgumentTupleAreIndependent(t *testing.T) {
	srv := graphqltest.NewServer(t)
	srv.Handle(graphql.OpGetTasks, tasksByProject)
	c, _ := newTestClient(t, srv)
	ctx := context.Background()

	a, err := c.Tasks(ctx, graphql.TaskFilter{ProjectID: "A"})
	require.NoError(t, err)
	b, err := c.Tasks(ctx, graphql.TaskFilter{ProjectID: "B"})
	require.NoError(t, err)
	require.Len(t, a, 1)
	require.Len(t, b, 1)

	again, err := c.Tasks(ctx, graphql.TaskFilter{ProjectID: "A"})
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, "t-A", again[0].ID, "A must not show B's data")
	assert.Equal(t, 2, c.Cache().Len())
	assert.Len(t, srv.Calls(graphql.OpGetTasks), 2)
}

func TestRefetchReplacesListOutright(t *testing.T) {
	srv := graphqltest.NewServer(t)
	var round atomic.Int32
	srv.Handle(graphql.OpGetTasks, func(map[string]any) (any, []graphql.Error) {
		if round.Load() == 0 {
			return map[string]any{"tasks": []any{
				graphqltest.Task("t1", "one", "TODO", "LOW", "p1", "P"),
				graphqltest.Task("t2", "two", "TODO", "LOW", "p1", "P"),
			}}, nil
		}
		return map[string]any{"tasks": []any{
			graphqltest.Task("t3", "three", "DONE", "HIGH", "p1", "P"),
		}}, nil
	})
	c, _ := newTestClient(t, srv)
	ctx := context.Background()
	filter := graphql.TaskFilter{ProjectID: "p1"}

	before, err := c.Tasks(ctx, filter)
	require.NoError(t, err)
	require.Len(t, before, 2)

	round.Store(1)
	require.NoError(t, c.Refetch(ctx, graphql.GetTasks(filter), nil))

	after, err := c.Tasks(ctx, filter)
	require.NoError(t, err)
	require.Len(t, after, 1, "no merge with the previous list")
	assert.Equal(t, "t3", after[0].ID)
}

func TestFailedRefetchKeepsPreviousEntry(t *testing.T) {
	srv := graphqltest.NewServer(t)
	var fail atomic.Bool
	srv.Handle(graphql.OpGetProjects, func(map[string]any) (any, []graphql.Error) {
		if fail.Load() {
			return nil, []graphql.Error{{Message: "boom"}}
		}
		return map[string]any{"projects": []any{graphqltest.Project("p1", "Alpha", "ACTIVE")}}, nil
	})
	c, _ := newTestClient(t, srv)
	ctx := context.Background()

	_, err := c.Projects(ctx, "")
	require.NoError(t, err)

	fail.Store(true)
	err = c.Refetch(ctx, graphql.GetProjects(""), nil)
	require.Error(t, err)

	projects, err := c.Projects(ctx, "")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Alpha", projects[0].Name)
}

func TestTransportErrors(t *testing.T) {
	t.Run("non-2xx without errors payload", func(t *testing.T) {
		srv := graphqltest.NewServer(t)
		srv.HandleRaw(graphql.OpGetProjects, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		})
		c, logs := newTestClient(t, srv)

		_, err := c.Projects(context.Background(), "")
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusBadGateway, te.StatusCode)
		assert.Contains(t, te.Body, "upstream exploded")
		assert.Equal(t, MsgNetwork, UserMessage(err))
		assert.Contains(t, logs.String(), "network error")
	})

	t.Run("unreachable server", func(t *testing.T) {
		c, err := New(Options{Endpoint: "http://127.0.0.1:1/graphql/", OrganizationSlug: "acme"})
		require.NoError(t, err)

		_, err = c.ProjectStats(context.Background())
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Zero(t, te.StatusCode)
		assert.Equal(t, MsgNetwork, UserMessage(err))
	})

	t.Run("undecodable body", func(t *testing.T) {
		srv := graphqltest.NewServer(t)
		srv.HandleRaw(graphql.OpGetProjects, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		})
		c, _ := newTestClient(t, srv)

		_, err := c.Projects(context.Background(), "")
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 0, c.Cache().Len())
	})
}

func TestOperationErrors(t *testing.T) {
	t.Run("errors alongside data", func(t *testing.T) {
		srv := graphqltest.NewServer(t)
		srv.Handle(graphql.OpGetTasks, func(map[string]any) (any, []graphql.Error) {
			return map[string]any{"tasks": nil}, []graphql.Error{{
				Message:   "Organization not found",
				Locations: []graphql.Location{{Line: 2, Column: 5}},
				Path:      []any{"tasks", 0},
			}}
		})
		c, logs := newTestClient(t, srv)

		_, err := c.Tasks(context.Background(), graphql.TaskFilter{})
		var oe *OperationError
		require.ErrorAs(t, err, &oe)
		require.Len(t, oe.Errors, 1)
		assert.Equal(t, MsgOperation, UserMessage(err))
		assert.NotContains(t, UserMessage(err), "Organization not found")
		assert.Equal(t, 0, c.Cache().Len(), "failed responses are not cached")

		out := logs.String()
		assert.Contains(t, out, "graphql error")
		assert.Contains(t, out, "Organization not found")
		assert.Contains(t, out, "locations=2:5")
		assert.Contains(t, out, "path=tasks.0")
	})

	t.Run("non-2xx with errors payload", func(t *testing.T) {
		srv := graphqltest.NewServer(t)
		srv.HandleRaw(graphql.OpGetProjects, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errors":[{"message":"Variable $status got invalid value"}]}`))
		})
		c, _ := newTestClient(t, srv)

		_, err := c.Projects(context.Background(), "BOGUS")
		var oe *OperationError
		require.ErrorAs(t, err, &oe)
	})
}

func TestMutateRefetchesDependentQueries(t *testing.T) {
	srv := graphqltest.NewServer(t)
	srv.Handle(graphql.OpGetTasks, tasksByProject)
	srv.Handle(graphql.OpUpdateTask, func(vars map[string]any) (any, []graphql.Error) {
		return map[string]any{"updateTask": map[string]any{
			"task": graphqltest.Task(graphqltest.Str(vars, "id"), "t", graphqltest.Str(vars, "status"), "LOW", "A", "Project A"),
		}}, nil
	})
	c, _ := newTestClient(t, srv)
	ctx := context.Background()

	_, err := c.Tasks(ctx, graphql.TaskFilter{ProjectID: "A"})
	require.NoError(t, err)
	srv.Reset()

	done := models.TaskDone
	task, err := c.UpdateTask(ctx, "t-A", graphql.TaskPatch{Status: &done}, graphql.GetTasks(graphql.TaskFilter{ProjectID: "A"}))
	require.NoError(t, err)
	assert.Equal(t, models.TaskDone, task.Status)

	calls := srv.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, graphql.OpUpdateTask, calls[0].Operation)
	assert.Equal(t, graphql.OpGetTasks, calls[1].Operation)
	assert.Equal(t, "A", calls[1].Variables["projectId"])
	_, hasProject := calls[0].Variables["projectId"]
	assert.False(t, hasProject, "a task cannot be moved to another project")
}

func TestMutateReportsRefetchFailureButKeepsResult(t *testing.T) {
	srv := graphqltest.NewServer(t)
	srv.Handle(graphql.OpAddTaskComment, func(vars map[string]any) (any, []graphql.Error) {
		return map[string]any{"addTaskComment": map[string]any{
			"comment": graphqltest.Comment("c1", graphqltest.Str(vars, "content"), graphqltest.Str(vars, "authorEmail")),
		}}, nil
	})
	srv.Handle(graphql.OpGetTaskComments, func(map[string]any) (any, []graphql.Error) {
		return nil, []graphql.Error{{Message: "nope"}}
	})
	c, _ := newTestClient(t, srv)

	cm, err := c.AddTaskComment(context.Background(), "t1", "hello", "me@example.com", graphql.GetTaskComments("t1"))
	require.Error(t, err)
	require.NotNil(t, cm)
	assert.Equal(t, "hello", cm.Content)
	var oe *OperationError
	assert.True(t, errors.As(err, &oe))
}

func TestMutationFailureSkipsRefetch(t *testing.T) {
	srv := graphqltest.NewServer(t)
	srv.Handle(graphql.OpCreateTask, func(map[string]any) (any, []graphql.Error) {
		return nil, []graphql.Error{{Message: "Project matching query does not exist."}}
	})
	srv.Handle(graphql.OpGetTasks, tasksByProject)
	c, _ := newTestClient(t, srv)

	task, err := c.CreateTask(context.Background(), graphql.CreateTaskInput{ProjectID: "p1", Title: "x"}, graphql.GetTasks(graphql.TaskFilter{}))
	require.Error(t, err)
	assert.Nil(t, task)
	assert.Empty(t, srv.Calls(graphql.OpGetTasks))
}

func TestConcurrentIdenticalQueriesAreNotCoalesced(t *testing.T) {
	srv := graphqltest.NewServer(t)
	var arrived sync.WaitGroup
	arrived.Add(2)
	release := make(chan struct{})
	go func() {
		arrived.Wait()
		close(release)
	}()
	srv.Handle(graphql.OpGetProjects, func(map[string]any) (any, []graphql.Error) {
		arrived.Done()
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		return map[string]any{"projects": []any{}}, nil
	})
	c, _ := newTestClient(t, srv)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Projects(context.Background(), "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, srv.Calls(graphql.OpGetProjects), 2)
}

func TestProjectNotFound(t *testing.T) {
	srv := graphqltest.NewServer(t)
	srv.Handle(graphql.OpGetProject, func(map[string]any) (any, []graphql.Error) {
		return map[string]any{"project": nil}, nil
	})
	c, _ := newTestClient(t, srv)

	_, err := c.Project(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
