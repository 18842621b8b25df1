package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tgienger/taskboard/internal/models"
)

// timestamp decodes the date and datetime forms the backend emits.
// null and "" decode to the zero value.
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t timestamp) ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

// rawProject mirrors the project selection set
type rawProject struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Status             string    `json:"status"`
	DueDate            timestamp `json:"dueDate"`
	TaskCount          int       `json:"taskCount"`
	CompletedTaskCount int       `json:"completedTaskCount"`
	CompletionRate     float64   `json:"completionRate"`
	CreatedAt          timestamp `json:"createdAt"`
	UpdatedAt          timestamp `json:"updatedAt"`
}

func (r rawProject) model() models.Project {
	return models.Project{
		ID:                 r.ID,
		Name:               r.Name,
		Description:        r.Description,
		Status:             models.ProjectStatus(r.Status),
		DueDate:            r.DueDate.ptr(),
		TaskCount:          r.TaskCount,
		CompletedTaskCount: r.CompletedTaskCount,
		CompletionRate:     r.CompletionRate,
		CreatedAt:          r.CreatedAt.Time,
		UpdatedAt:          r.UpdatedAt.Time,
	}
}

// rawTask mirrors the task selection set
type rawTask struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	AssigneeEmail *string   `json:"assigneeEmail"`
	DueDate       timestamp `json:"dueDate"`
	CreatedAt     timestamp `json:"createdAt"`
	UpdatedAt     timestamp `json:"updatedAt"`
	Project       struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"project"`
}

func (r rawTask) model() models.Task {
	var assignee string
	if r.AssigneeEmail != nil {
		assignee = *r.AssigneeEmail
	}
	return models.Task{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Status:        models.TaskStatus(r.Status),
		Priority:      models.Priority(r.Priority),
		AssigneeEmail: assignee,
		DueDate:       r.DueDate.ptr(),
		CreatedAt:     r.CreatedAt.Time,
		UpdatedAt:     r.UpdatedAt.Time,
		Project:       models.ProjectRef{ID: r.Project.ID, Name: r.Project.Name},
	}
}

// rawComment mirrors the comment selection set
type rawComment struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	AuthorEmail string    `json:"authorEmail"`
	CreatedAt   timestamp `json:"createdAt"`
}

func (r rawComment) model() models.TaskComment {
	return models.TaskComment{
		ID:          r.ID,
		Content:     r.Content,
		AuthorEmail: r.AuthorEmail,
		CreatedAt:   r.CreatedAt.Time,
	}
}

type rawStats struct {
	TotalProjects         int     `json:"totalProjects"`
	ActiveProjects        int     `json:"activeProjects"`
	CompletedProjects     int     `json:"completedProjects"`
	TotalTasks            int     `json:"totalTasks"`
	CompletedTasks        int     `json:"completedTasks"`
	OverallCompletionRate float64 `json:"overallCompletionRate"`
}

func (r rawStats) model() models.ProjectStats {
	return models.ProjectStats(r)
}
