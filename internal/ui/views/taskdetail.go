package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/api"
	"github.com/tgienger/taskboard/internal/forms"
	"github.com/tgienger/taskboard/internal/graphql"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// TaskUpdated is emitted after a task change was sent. Task is zero when the
// update itself failed; Err with a Task means only the refetch failed.
type TaskUpdated struct {
	Task models.Task
	Err  error
}

type taskUpdatedMsg struct {
	task *models.Task
	err  error
}

type commentsLoadedMsg struct {
	taskID   string
	comments []models.TaskComment
	err      error
}

type commentAddedMsg struct {
	taskID  string
	comment *models.TaskComment
	err     error
}

// TaskDetail is the task popup: fields, comments and the comment box
type TaskDetail struct {
	api     API
	ctx     context.Context
	styles  *styles.Styles
	keys    keys.KeyMap
	refetch []graphql.Operation

	task            models.Task
	comments        []models.TaskComment
	commentsLoading bool
	commentsErr     string
	open            bool
	updating        bool
	err             string

	// comment box
	composing     bool
	commentFocus  int // 0=author, 1=content
	author        textinput.Model
	content       textarea.Model
	commentErrors forms.Errors
	adding        bool

	width  int
	height int
}

// NewTaskDetail creates a hidden popup. refetch names the list queries
// re-issued after the task is changed.
func NewTaskDetail(ctx context.Context, api API, refetch ...graphql.Operation) *TaskDetail {
	draft := forms.NewCommentDraft()

	author := textinput.New()
	author.Placeholder = "Your email"
	author.CharLimit = 254
	author.SetValue(draft.AuthorEmail)

	content := textarea.New()
	content.Placeholder = "Add a comment..."
	content.CharLimit = 2000
	content.SetWidth(50)
	content.SetHeight(3)
	content.ShowLineNumbers = false

	return &TaskDetail{
		api:           api,
		ctx:           ctx,
		styles:        styles.NewStyles(),
		keys:          keys.DefaultKeyMap(),
		refetch:       refetch,
		author:        author,
		content:       content,
		commentErrors: forms.Errors{},
	}
}

// IsOpen reports whether the popup is showing
func (d *TaskDetail) IsOpen() bool { return d.open }

// Show opens the popup for task and loads its comments
func (d *TaskDetail) Show(task models.Task) tea.Cmd {
	d.task = task
	d.open = true
	d.err = ""
	d.comments = nil
	d.commentsErr = ""
	d.commentsLoading = true
	d.composing = false
	return d.loadComments(task.ID)
}

// SetSize adapts the comment box to the terminal
func (d *TaskDetail) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.content.SetWidth(styles.Clamp(styles.ContentWidth(width)-10, 20, 60))
}

// loadComments binds taskID now; the popup may show another task by the
// time the command runs.
func (d *TaskDetail) loadComments(taskID string) tea.Cmd {
	client, ctx := d.api, d.ctx
	return func() tea.Msg {
		comments, err := client.TaskComments(ctx, taskID)
		return commentsLoadedMsg{taskID: taskID, comments: comments, err: err}
	}
}

// Update handles messages for the popup
func (d *TaskDetail) Update(msg tea.Msg) (*TaskDetail, tea.Cmd) {
	switch msg := msg.(type) {
	case commentsLoadedMsg:
		if msg.taskID != d.task.ID {
			return d, nil
		}
		d.commentsLoading = false
		if msg.err != nil {
			d.commentsErr = api.UserMessage(msg.err)
			return d, nil
		}
		d.commentsErr = ""
		d.comments = msg.comments
		return d, nil

	case commentAddedMsg:
		d.adding = false
		if msg.comment == nil {
			d.commentErrors = forms.Errors{forms.FieldSubmit: forms.CommentSubmitError}
			return d, nil
		}
		d.content.Reset()
		d.composing = false
		d.content.Blur()
		d.author.Blur()
		if msg.taskID != d.task.ID {
			return d, nil
		}
		// The add re-fetched the comment list, so this read is served from cache
		return d, d.loadComments(msg.taskID)

	case taskUpdatedMsg:
		d.updating = false
		if msg.task == nil {
			d.err = api.UserMessage(msg.err)
			return d, nil
		}
		if msg.task.ID == d.task.ID {
			d.task = *msg.task
		}
		d.err = ""
		if msg.err != nil {
			d.err = api.UserMessage(msg.err)
		}
		updated := TaskUpdated{Task: *msg.task, Err: msg.err}
		return d, func() tea.Msg { return updated }

	case tea.KeyMsg:
		if !d.open {
			return d, nil
		}
		if d.composing {
			return d.updateComposing(msg)
		}
		return d.updateKeys(msg)
	}
	return d, nil
}

func (d *TaskDetail) updateKeys(msg tea.KeyMsg) (*TaskDetail, tea.Cmd) {
	switch {
	case key.Matches(msg, d.keys.Back):
		d.open = false
		return d, nil

	case key.Matches(msg, d.keys.Status):
		next := d.task.Status.Next()
		return d, d.updateTask(graphql.TaskPatch{Status: &next})

	case key.Matches(msg, d.keys.Bump):
		next := d.task.Priority.Next()
		return d, d.updateTask(graphql.TaskPatch{Priority: &next})

	case key.Matches(msg, d.keys.Comment):
		d.composing = true
		d.commentFocus = 1
		d.commentErrors = forms.Errors{}
		d.updateCommentFocus()
		return d, textarea.Blink
	}
	return d, nil
}

func (d *TaskDetail) updateComposing(msg tea.KeyMsg) (*TaskDetail, tea.Cmd) {
	switch {
	case key.Matches(msg, d.keys.Back):
		d.composing = false
		d.content.Blur()
		d.author.Blur()
		return d, nil

	case key.Matches(msg, d.keys.Save):
		return d, d.submitComment()

	case key.Matches(msg, d.keys.Tab), key.Matches(msg, d.keys.BackTab):
		d.commentFocus = 1 - d.commentFocus
		d.updateCommentFocus()
		return d, nil
	}

	var cmd tea.Cmd
	if d.commentFocus == 0 {
		d.author, cmd = d.author.Update(msg)
		d.commentErrors.Clear(forms.FieldAuthorEmail)
	} else {
		d.content, cmd = d.content.Update(msg)
		d.commentErrors.Clear(forms.FieldContent)
	}
	return d, cmd
}

func (d *TaskDetail) updateCommentFocus() {
	d.author.Blur()
	d.content.Blur()
	if d.commentFocus == 0 {
		d.author.Focus()
	} else {
		d.content.Focus()
	}
}

func (d *TaskDetail) updateTask(patch graphql.TaskPatch) tea.Cmd {
	if d.updating {
		return nil
	}
	d.updating = true
	id := d.task.ID
	refetch := d.refetch
	return func() tea.Msg {
		task, err := d.api.UpdateTask(d.ctx, id, patch, refetch...)
		return taskUpdatedMsg{task: task, err: err}
	}
}

func (d *TaskDetail) submitComment() tea.Cmd {
	if d.adding {
		return nil
	}
	draft := forms.CommentDraft{Content: d.content.Value(), AuthorEmail: strings.TrimSpace(d.author.Value())}
	d.commentErrors = draft.Validate()
	if !d.commentErrors.OK() {
		return nil
	}

	d.adding = true
	taskID := d.task.ID
	return func() tea.Msg {
		comment, err := d.api.AddTaskComment(d.ctx, taskID, draft.Content, draft.AuthorEmail, graphql.GetTaskComments(taskID))
		return commentAddedMsg{taskID: taskID, comment: comment, err: err}
	}
}

// View renders the popup
func (d *TaskDetail) View() string {
	s := d.styles
	t := d.task
	textWidth := styles.Clamp(styles.ContentWidth(d.width)-10, 20, 70)
	labelStyle := s.TitleMuted

	desc := t.Description
	if desc == "" {
		desc = s.TitleMuted.Render("No description provided")
	}

	meta := []string{labelStyle.Render("Project: ") + t.Project.Name}
	if t.AssigneeEmail != "" {
		meta = append(meta, labelStyle.Render("Assignee: ")+t.AssigneeEmail)
	}
	if t.DueDate != nil {
		meta = append(meta, labelStyle.Render("Due: ")+formatDate(t.DueDate, ""))
	}

	rows := []string{
		s.Title.Render(t.Title),
		styles.TaskStatusBadge(t.Status).Render() + " " + styles.PriorityBadge(t.Priority).Render(),
		"",
		lipgloss.NewStyle().Width(textWidth).Render(desc),
		"",
		strings.Join(meta, "   "),
	}
	if d.updating {
		rows = append(rows, s.TitleMuted.Render("Saving..."))
	}
	if d.err != "" {
		rows = append(rows, s.Error.Render(d.err))
	}

	rows = append(rows, "", labelStyle.Render(fmt.Sprintf("Comments (%d)", len(d.comments))))
	rows = append(rows, d.renderComments(textWidth))
	rows = append(rows, "")

	if d.composing {
		rows = append(rows, d.renderCommentBox())
	}

	if d.composing {
		rows = append(rows, helpLine(s, "tab", "switch field", "ctrl+s", "add comment", "esc", "cancel"))
	} else {
		rows = append(rows, helpLine(s, "s", "next status", "p", "next priority", "c", "comment", "esc", "close"))
	}

	return centered(s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)), d.width, d.height)
}

func (d *TaskDetail) renderComments(width int) string {
	s := d.styles
	switch {
	case d.commentsLoading:
		return s.TitleMuted.Render("Loading comments...")
	case d.commentsErr != "":
		return s.Error.Render(d.commentsErr)
	case len(d.comments) == 0:
		return s.TitleMuted.Render("No comments yet. Be the first to comment!")
	}

	var lines []string
	for _, c := range d.comments {
		lines = append(lines, lipgloss.JoinVertical(lipgloss.Left,
			s.Label.Bold(true).Render(c.AuthorEmail)+"  "+s.TitleMuted.Render(formatDateTime(c.CreatedAt)),
			lipgloss.NewStyle().Width(width).Render(c.Content),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (d *TaskDetail) renderCommentBox() string {
	s := d.styles
	authorStyle, contentStyle := s.Input, s.Input
	if d.commentFocus == 0 {
		authorStyle = s.InputFocused
	} else {
		contentStyle = s.InputFocused
	}

	rows := []string{
		authorStyle.Width(styles.Clamp(styles.ContentWidth(d.width)-10, 20, 50)).Render(d.author.View()),
	}
	if msg, ok := d.commentErrors[forms.FieldAuthorEmail]; ok {
		rows = append(rows, s.FieldError.Render(msg))
	}
	rows = append(rows, contentStyle.Render(d.content.View()))
	if msg, ok := d.commentErrors[forms.FieldContent]; ok {
		rows = append(rows, s.FieldError.Render(msg))
	}
	if msg, ok := d.commentErrors[forms.FieldSubmit]; ok {
		rows = append(rows, s.Error.Render(msg))
	}
	if d.adding {
		rows = append(rows, s.TitleMuted.Render("Adding..."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// SetRefetch replaces the queries re-issued after a task change
func (d *TaskDetail) SetRefetch(ops ...graphql.Operation) {
	d.refetch = ops
}
