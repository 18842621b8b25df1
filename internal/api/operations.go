package api

import (
	"context"
	"errors"

	"github.com/tgienger/taskboard/internal/graphql"
	"github.com/tgienger/taskboard/internal/models"
)

var (
	// ErrNotFound is returned when a single-entity query comes back null
	ErrNotFound = errors.New("not found")
	// ErrEmptyPayload is returned when a mutation succeeds without echoing its entity
	ErrEmptyPayload = errors.New("mutation returned no entity")
)

// Projects lists projects, optionally filtered by status
func (c *Client) Projects(ctx context.Context, status models.ProjectStatus) ([]models.Project, error) {
	var data struct {
		Projects []rawProject `json:"projects"`
	}
	if err := c.Query(ctx, graphql.GetProjects(status), &data); err != nil {
		return nil, err
	}
	out := make([]models.Project, len(data.Projects))
	for i, p := range data.Projects {
		out[i] = p.model()
	}
	return out, nil
}

// Project fetches one project. A null result yields ErrNotFound.
func (c *Client) Project(ctx context.Context, id string) (*models.Project, error) {
	var data struct {
		Project *rawProject `json:"project"`
	}
	if err := c.Query(ctx, graphql.GetProject(id), &data); err != nil {
		return nil, err
	}
	if data.Project == nil {
		return nil, ErrNotFound
	}
	p := data.Project.model()
	return &p, nil
}

// Tasks lists tasks matching filter
func (c *Client) Tasks(ctx context.Context, filter graphql.TaskFilter) ([]models.Task, error) {
	var data struct {
		Tasks []rawTask `json:"tasks"`
	}
	if err := c.Query(ctx, graphql.GetTasks(filter), &data); err != nil {
		return nil, err
	}
	out := make([]models.Task, len(data.Tasks))
	for i, t := range data.Tasks {
		out[i] = t.model()
	}
	return out, nil
}

// TaskComments lists the comments on a task
func (c *Client) TaskComments(ctx context.Context, taskID string) ([]models.TaskComment, error) {
	var data struct {
		TaskComments []rawComment `json:"taskComments"`
	}
	if err := c.Query(ctx, graphql.GetTaskComments(taskID), &data); err != nil {
		return nil, err
	}
	out := make([]models.TaskComment, len(data.TaskComments))
	for i, cm := range data.TaskComments {
		out[i] = cm.model()
	}
	return out, nil
}

// ProjectStats fetches the organization-wide counters
func (c *Client) ProjectStats(ctx context.Context) (models.ProjectStats, error) {
	var data struct {
		ProjectStats rawStats `json:"projectStats"`
	}
	if err := c.Query(ctx, graphql.GetProjectStats(), &data); err != nil {
		return models.ProjectStats{}, err
	}
	return data.ProjectStats.model(), nil
}

// CreateProject creates a project and then re-issues refetch
func (c *Client) CreateProject(ctx context.Context, in graphql.ProjectInput, refetch ...graphql.Operation) (*models.Project, error) {
	var data struct {
		CreateProject struct {
			Project rawProject `json:"project"`
		} `json:"createProject"`
	}
	err := c.Mutate(ctx, graphql.CreateProject(in), &data, refetch...)
	return projectResult(data.CreateProject.Project, err)
}

// UpdateProject patches a project and then re-issues refetch
func (c *Client) UpdateProject(ctx context.Context, id string, in graphql.ProjectInput, refetch ...graphql.Operation) (*models.Project, error) {
	var data struct {
		UpdateProject struct {
			Project rawProject `json:"project"`
		} `json:"updateProject"`
	}
	err := c.Mutate(ctx, graphql.UpdateProject(id, in), &data, refetch...)
	return projectResult(data.UpdateProject.Project, err)
}

// CreateTask creates a task and then re-issues refetch
func (c *Client) CreateTask(ctx context.Context, in graphql.CreateTaskInput, refetch ...graphql.Operation) (*models.Task, error) {
	var data struct {
		CreateTask struct {
			Task rawTask `json:"task"`
		} `json:"createTask"`
	}
	err := c.Mutate(ctx, graphql.CreateTask(in), &data, refetch...)
	return taskResult(data.CreateTask.Task, err)
}

// UpdateTask patches a task and then re-issues refetch
func (c *Client) UpdateTask(ctx context.Context, id string, p graphql.TaskPatch, refetch ...graphql.Operation) (*models.Task, error) {
	var data struct {
		UpdateTask struct {
			Task rawTask `json:"task"`
		} `json:"updateTask"`
	}
	err := c.Mutate(ctx, graphql.UpdateTask(id, p), &data, refetch...)
	return taskResult(data.UpdateTask.Task, err)
}

// AddTaskComment appends a comment and then re-issues refetch
func (c *Client) AddTaskComment(ctx context.Context, taskID, content, authorEmail string, refetch ...graphql.Operation) (*models.TaskComment, error) {
	var data struct {
		AddTaskComment struct {
			Comment rawComment `json:"comment"`
		} `json:"addTaskComment"`
	}
	err := c.Mutate(ctx, graphql.AddTaskComment(taskID, content, authorEmail), &data, refetch...)
	r := data.AddTaskComment.Comment
	if r.ID == "" {
		return nil, emptyPayload(err)
	}
	cm := r.model()
	return &cm, err
}

// projectResult keeps the echoed entity when only a refetch failed
func projectResult(r rawProject, err error) (*models.Project, error) {
	if r.ID == "" {
		return nil, emptyPayload(err)
	}
	p := r.model()
	return &p, err
}

func taskResult(r rawTask, err error) (*models.Task, error) {
	if r.ID == "" {
		return nil, emptyPayload(err)
	}
	t := r.model()
	return &t, err
}

func emptyPayload(err error) error {
	if err != nil {
		return err
	}
	return ErrEmptyPayload
}
