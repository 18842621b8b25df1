package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/taskboard/internal/forms"
	"github.com/tgienger/taskboard/internal/graphql"
	"github.com/tgienger/taskboard/internal/models"
)

func openTaskForm(t *testing.T, f *TaskForm) *harness {
	t.Helper()
	h := newHarness(t, taskFormModel(f))
	h.run(f.Open())
	return h
}

func TestTaskForm_CreatesTaskAndRefetches(t *testing.T) {
	srv, client := newBackend(t)
	f := NewTaskForm(bg, client, "", graphql.GetTasks(graphql.TaskFilter{}))
	h := openTaskForm(t, f)
	require.Len(t, f.projects, 2, "project choices should be loaded on open")
	srv.Reset()

	h.press("right")
	assert.Equal(t, "p1", f.draft.ProjectID)
	h.press("tab")
	h.typeText("Write docs")
	h.press("ctrl+s")

	calls := srv.Calls()
	require.Equal(t, []string{graphql.OpCreateTask, graphql.OpGetTasks}, callNames(calls))

	vars := calls[0].Variables
	assert.Equal(t, "Write docs", vars["title"])
	assert.Equal(t, "p1", vars["projectId"])
	assert.Equal(t, "TODO", vars["status"])
	assert.Equal(t, "MEDIUM", vars["priority"])
	assert.Nil(t, vars["assigneeEmail"])
	assert.Nil(t, vars["dueDate"])

	created := received[TaskCreated](h)
	require.Len(t, created, 1)
	assert.Equal(t, "t9", created[0].Task.ID)
	assert.NoError(t, created[0].Err)

	assert.False(t, f.IsOpen())
	assert.Empty(t, f.title.Value())
	assert.Empty(t, f.draft.ProjectID)
	assert.Equal(t, models.TaskTodo, f.draft.Status)
}

func TestTaskForm_EmptySubmitShowsErrors(t *testing.T) {
	srv, client := newBackend(t)
	f := NewTaskForm(bg, client, "")
	h := openTaskForm(t, f)
	srv.Reset()

	h.press("ctrl+s")

	assert.Empty(t, srv.Calls(), "nothing should be sent for an invalid draft")
	assert.Len(t, f.errors, 2)
	assert.Contains(t, f.errors, forms.FieldTitle)
	assert.Contains(t, f.errors, forms.FieldProjectID)
	assert.True(t, f.IsOpen())
	assert.Contains(t, f.View(), "Task title is required")
}

func TestTaskForm_EditingClearsFieldError(t *testing.T) {
	_, client := newBackend(t)
	f := NewTaskForm(bg, client, "")
	h := openTaskForm(t, f)

	h.press("ctrl+s")
	require.Contains(t, f.errors, forms.FieldTitle)

	h.press("tab")
	h.typeText("x")
	assert.NotContains(t, f.errors, forms.FieldTitle)
	assert.Contains(t, f.errors, forms.FieldProjectID)
}

func TestTaskForm_InvalidAssigneeBlocksSubmit(t *testing.T) {
	srv, client := newBackend(t)
	f := NewTaskForm(bg, client, "p1")
	h := openTaskForm(t, f)
	srv.Reset()

	h.typeText("Write docs")
	f.focus = formAssignee
	f.updateFocus()
	h.typeText("not-an-email")
	h.press("ctrl+s")

	assert.Empty(t, srv.Calls(graphql.OpCreateTask))
	assert.Equal(t, map[string]string{forms.FieldAssigneeEmail: "Please enter a valid email address"}, map[string]string(f.errors))
}

func TestTaskForm_FailedCreateKeepsValues(t *testing.T) {
	srv, client := newBackend(t)
	srv.Handle(graphql.OpCreateTask, func(map[string]any) (any, []graphql.Error) {
		return nil, []graphql.Error{{Message: "database is down"}}
	})
	f := NewTaskForm(bg, client, "p1")
	h := openTaskForm(t, f)

	h.typeText("Write docs")
	h.press("ctrl+s")

	assert.Empty(t, received[TaskCreated](h))
	assert.True(t, f.IsOpen())
	assert.Equal(t, "Write docs", f.title.Value())
	assert.Equal(t, forms.SubmitError, f.errors[forms.FieldSubmit])
	assert.Contains(t, f.View(), forms.SubmitError)
}

func TestTaskForm_PinnedSkipsProjectField(t *testing.T) {
	_, client := newBackend(t)
	f := NewTaskForm(bg, client, "p2")
	h := openTaskForm(t, f)

	assert.Equal(t, formTitle, f.focus)
	for i := 0; i < formFields; i++ {
		h.press("tab")
		assert.NotEqual(t, formProject, f.focus)
	}

	// choosing is ignored while pinned
	f.focus = formProject
	f.cycleChoice(1)
	assert.Equal(t, "p2", f.draft.ProjectID)
	assert.Contains(t, f.View(), "Mobile App")
}

func TestTaskForm_CycleChoices(t *testing.T) {
	_, client := newBackend(t)
	f := NewTaskForm(bg, client, "")
	h := openTaskForm(t, f)

	// project: none -> p1 -> p2 -> none
	h.press("right", "right")
	assert.Equal(t, "p2", f.draft.ProjectID)
	h.press("right")
	assert.Empty(t, f.draft.ProjectID)
	h.press("left")
	assert.Equal(t, "p2", f.draft.ProjectID)

	f.focus = formPriority
	h.press("right")
	assert.Equal(t, models.PriorityHigh, f.draft.Priority)
	h.press("left", "left")
	assert.Equal(t, models.PriorityLow, f.draft.Priority)
}

func TestTaskForm_EscClosesWithoutReset(t *testing.T) {
	_, client := newBackend(t)
	f := NewTaskForm(bg, client, "p1")
	h := openTaskForm(t, f)

	h.typeText("Half done")
	h.press("esc")

	assert.False(t, f.IsOpen())
	assert.Equal(t, "Half done", f.title.Value())
}
