// Package forms holds the client-side checks run before a mutation is sent.
// Nothing here touches the network.
package forms

import (
	"regexp"
	"strings"

	"github.com/tgienger/taskboard/internal/graphql"
	"github.com/tgienger/taskboard/internal/models"
)

// Field names used as Errors keys
const (
	FieldProjectID     = "projectId"
	FieldTitle         = "title"
	FieldAssigneeEmail = "assigneeEmail"
	FieldName          = "name"
	FieldStatus        = "status"
	FieldContent       = "content"
	FieldAuthorEmail   = "authorEmail"
	FieldSubmit        = "submit"
)

// Shown when a save call fails for any reason
const (
	SubmitError        = "Failed to create task. Please try again."
	ProjectSubmitError = "Failed to save project. Please try again."
	CommentSubmitError = "Failed to add comment. Please try again."
)

// DefaultAuthorEmail pre-fills the comment author
const DefaultAuthorEmail = "user@example.com"

// emailPattern is deliberately loose: something, "@", something, ".", something
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidEmail reports whether s has the minimal email shape. The empty
// string is valid because every email field is optional.
func ValidEmail(s string) bool {
	return s == "" || emailPattern.MatchString(s)
}

// Errors maps a field name to its message. An empty map means valid.
type Errors map[string]string

// OK reports whether there are no errors
func (e Errors) OK() bool { return len(e) == 0 }

// Clear drops the error for field, as happens when the user edits it
func (e Errors) Clear(field string) { delete(e, field) }

// TaskDraft is the state of the task creation form
type TaskDraft struct {
	ProjectID     string
	Title         string
	Description   string
	Status        models.TaskStatus
	Priority      models.Priority
	AssigneeEmail string
	DueDate       string

	// PinnedProjectID is set when the form was opened from a project and
	// survives Reset
	PinnedProjectID string
}

// NewTaskDraft returns a draft with defaults, optionally pinned to a project
func NewTaskDraft(pinnedProjectID string) TaskDraft {
	d := TaskDraft{PinnedProjectID: pinnedProjectID}
	d.Reset()
	return d
}

// Reset restores every field to its default, keeping the pinned project
func (d *TaskDraft) Reset() {
	*d = TaskDraft{
		ProjectID:       d.PinnedProjectID,
		Status:          models.TaskTodo,
		Priority:        models.PriorityMedium,
		PinnedProjectID: d.PinnedProjectID,
	}
}

// Validate checks the draft
func (d TaskDraft) Validate() Errors {
	errs := Errors{}
	if strings.TrimSpace(d.Title) == "" {
		errs[FieldTitle] = "Task title is required"
	}
	if d.ProjectID == "" {
		errs[FieldProjectID] = "Please select a project"
	}
	if !ValidEmail(d.AssigneeEmail) {
		errs[FieldAssigneeEmail] = "Please enter a valid email address"
	}
	return errs
}

// Input converts the draft into CreateTask arguments
func (d TaskDraft) Input() graphql.CreateTaskInput {
	return graphql.CreateTaskInput{
		ProjectID:     d.ProjectID,
		Title:         d.Title,
		Description:   d.Description,
		Status:        d.Status,
		Priority:      d.Priority,
		AssigneeEmail: d.AssigneeEmail,
		DueDate:       d.DueDate,
	}
}

// ProjectDraft is the state of the project create/edit form
type ProjectDraft struct {
	Name        string
	Description string
	Status      models.ProjectStatus
	DueDate     string
}

// NewProjectDraft returns an empty ACTIVE project draft
func NewProjectDraft() ProjectDraft {
	return ProjectDraft{Status: models.ProjectActive}
}

// ProjectDraftFrom pre-fills a draft from an existing project
func ProjectDraftFrom(p models.Project) ProjectDraft {
	d := ProjectDraft{Name: p.Name, Description: p.Description, Status: p.Status}
	if p.DueDate != nil {
		d.DueDate = p.DueDate.Format("2006-01-02")
	}
	return d
}

// Validate checks the draft
func (d ProjectDraft) Validate() Errors {
	errs := Errors{}
	if strings.TrimSpace(d.Name) == "" {
		errs[FieldName] = "Project name is required"
	}
	if !d.Status.Valid() {
		errs[FieldStatus] = "Please select a status"
	}
	return errs
}

// Input converts the draft into CreateProject/UpdateProject arguments
func (d ProjectDraft) Input() graphql.ProjectInput {
	name := strings.TrimSpace(d.Name)
	desc := strings.TrimSpace(d.Description)
	status := d.Status
	due := strings.TrimSpace(d.DueDate)
	return graphql.ProjectInput{Name: &name, Description: &desc, Status: &status, DueDate: &due}
}

// CommentDraft is the state of the add-comment box
type CommentDraft struct {
	Content     string
	AuthorEmail string
}

// NewCommentDraft returns an empty comment by the default author
func NewCommentDraft() CommentDraft {
	return CommentDraft{AuthorEmail: DefaultAuthorEmail}
}

// Validate checks the draft. Unlike the task assignee, the author is required.
func (d CommentDraft) Validate() Errors {
	errs := Errors{}
	if strings.TrimSpace(d.Content) == "" {
		errs[FieldContent] = "Comment cannot be empty"
	}
	if strings.TrimSpace(d.AuthorEmail) == "" || !ValidEmail(d.AuthorEmail) {
		errs[FieldAuthorEmail] = "Please enter a valid email address"
	}
	return errs
}
