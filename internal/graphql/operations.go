// Package graphql declares every operation the client sends to the backend:
// the query documents, their argument builders and the wire envelope.
package graphql

import (
	"encoding/json"

	"github.com/tgienger/taskboard/internal/models"
)

// Kind distinguishes queries from mutations
type Kind int

const (
	KindQuery Kind = iota
	KindMutation
)

// Operation is a named document plus the arguments it is sent with
type Operation struct {
	Name      string
	Kind      Kind
	Document  string
	Variables map[string]any
}

// Key identifies the exact operation + arguments tuple. encoding/json sorts
// map keys, so equal argument sets always produce the same key.
func (o Operation) Key() string {
	vars := o.Variables
	if vars == nil {
		vars = map[string]any{}
	}
	b, err := json.Marshal(vars)
	if err != nil {
		return o.Name + "?"
	}
	return o.Name + string(b)
}

const projectFields = `
      id
      name
      description
      status
      dueDate
      taskCount
      completedTaskCount
      completionRate
      createdAt
      updatedAt`

const taskFields = `
      id
      title
      description
      status
      priority
      assigneeEmail
      dueDate
      createdAt
      updatedAt
      project {
        id
        name
      }`

const commentFields = `
      id
      content
      authorEmail
      createdAt`

const (
	getProjectsDoc = `query GetProjects($status: String) {
    projects(status: $status) {` + projectFields + `
    }
}`

	getProjectDoc = `query GetProject($id: ID!) {
    project(id: $id) {` + projectFields + `
    }
}`

	getTasksDoc = `query GetTasks($projectId: ID, $status: String) {
    tasks(projectId: $projectId, status: $status) {` + taskFields + `
    }
}`

	getTaskCommentsDoc = `query GetTaskComments($taskId: ID!) {
    taskComments(taskId: $taskId) {` + commentFields + `
    }
}`

	getProjectStatsDoc = `query GetProjectStats {
    projectStats {
      totalProjects
      activeProjects
      completedProjects
      totalTasks
      completedTasks
      overallCompletionRate
    }
}`

	createProjectDoc = `mutation CreateProject($name: String!, $description: String, $status: String, $dueDate: String) {
    createProject(name: $name, description: $description, status: $status, dueDate: $dueDate) {
      project {` + projectFields + `
      }
    }
}`

	updateProjectDoc = `mutation UpdateProject($id: ID!, $name: String, $description: String, $status: String, $dueDate: String) {
    updateProject(id: $id, name: $name, description: $description, status: $status, dueDate: $dueDate) {
      project {` + projectFields + `
      }
    }
}`

	createTaskDoc = `mutation CreateTask($projectId: ID!, $title: String!, $description: String, $status: String, $priority: String, $assigneeEmail: String, $dueDate: String) {
    createTask(projectId: $projectId, title: $title, description: $description, status: $status, priority: $priority, assigneeEmail: $assigneeEmail, dueDate: $dueDate) {
      task {` + taskFields + `
      }
    }
}`

	// updateTask has no projectId argument: a task never changes project.
	updateTaskDoc = `mutation UpdateTask($id: ID!, $title: String, $description: String, $status: String, $priority: String, $assigneeEmail: String, $dueDate: String) {
    updateTask(id: $id, title: $title, description: $description, status: $status, priority: $priority, assigneeEmail: $assigneeEmail, dueDate: $dueDate) {
      task {` + taskFields + `
      }
    }
}`

	addTaskCommentDoc = `mutation AddTaskComment($taskId: ID!, $content: String!, $authorEmail: String!) {
    addTaskComment(taskId: $taskId, content: $content, authorEmail: $authorEmail) {
      comment {` + commentFields + `
      }
    }
}`
)

// Operation names as sent in the request envelope
const (
	OpGetProjects     = "GetProjects"
	OpGetProject      = "GetProject"
	OpGetTasks        = "GetTasks"
	OpGetTaskComments = "GetTaskComments"
	OpGetProjectStats = "GetProjectStats"
	OpCreateProject   = "CreateProject"
	OpUpdateProject   = "UpdateProject"
	OpCreateTask      = "CreateTask"
	OpUpdateTask      = "UpdateTask"
	OpAddTaskComment  = "AddTaskComment"
)

// GetProjects lists projects, optionally restricted to one status
func GetProjects(status models.ProjectStatus) Operation {
	vars := map[string]any{}
	if status != "" {
		vars["status"] = string(status)
	}
	return Operation{Name: OpGetProjects, Document: getProjectsDoc, Variables: vars}
}

// GetProject fetches a single project
func GetProject(id string) Operation {
	return Operation{Name: OpGetProject, Document: getProjectDoc, Variables: map[string]any{"id": id}}
}

// TaskFilter narrows GetTasks. Empty fields are not sent.
type TaskFilter struct {
	ProjectID string
	Status    models.TaskStatus
}

// GetTasks lists tasks matching filter
func GetTasks(filter TaskFilter) Operation {
	vars := map[string]any{}
	if filter.ProjectID != "" {
		vars["projectId"] = filter.ProjectID
	}
	if filter.Status != "" {
		vars["status"] = string(filter.Status)
	}
	return Operation{Name: OpGetTasks, Document: getTasksDoc, Variables: vars}
}

// GetTaskComments lists the comments on a task, oldest first
func GetTaskComments(taskID string) Operation {
	return Operation{Name: OpGetTaskComments, Document: getTaskCommentsDoc, Variables: map[string]any{"taskId": taskID}}
}

// GetProjectStats fetches the organization-wide counters
func GetProjectStats() Operation {
	return Operation{Name: OpGetProjectStats, Document: getProjectStatsDoc, Variables: map[string]any{}}
}

// ProjectInput holds the arguments of CreateProject and UpdateProject.
// On update, nil fields are left unchanged by the server.
type ProjectInput struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	DueDate     *string
}

func (in ProjectInput) variables() map[string]any {
	vars := map[string]any{}
	if in.Name != nil {
		vars["name"] = *in.Name
	}
	if in.Description != nil {
		vars["description"] = *in.Description
	}
	if in.Status != nil {
		vars["status"] = string(*in.Status)
	}
	if in.DueDate != nil {
		vars["dueDate"] = nullable(*in.DueDate)
	}
	return vars
}

// CreateProject creates a project
func CreateProject(in ProjectInput) Operation {
	return Operation{Name: OpCreateProject, Kind: KindMutation, Document: createProjectDoc, Variables: in.variables()}
}

// UpdateProject patches a project
func UpdateProject(id string, in ProjectInput) Operation {
	vars := in.variables()
	vars["id"] = id
	return Operation{Name: OpUpdateProject, Kind: KindMutation, Document: updateProjectDoc, Variables: vars}
}

// CreateTaskInput holds the arguments of CreateTask. Empty optional strings
// are sent as null.
type CreateTaskInput struct {
	ProjectID     string
	Title         string
	Description   string
	Status        models.TaskStatus
	Priority      models.Priority
	AssigneeEmail string
	DueDate       string
}

// CreateTask creates a task in a project
func CreateTask(in CreateTaskInput) Operation {
	return Operation{
		Name:     OpCreateTask,
		Kind:     KindMutation,
		Document: createTaskDoc,
		Variables: map[string]any{
			"projectId":     in.ProjectID,
			"title":         in.Title,
			"description":   in.Description,
			"status":        string(in.Status),
			"priority":      string(in.Priority),
			"assigneeEmail": nullable(in.AssigneeEmail),
			"dueDate":       nullable(in.DueDate),
		},
	}
}

// TaskPatch holds the arguments of UpdateTask; nil fields are not sent
type TaskPatch struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.Priority
	AssigneeEmail *string
	DueDate       *string
}

// UpdateTask patches a task
func UpdateTask(id string, p TaskPatch) Operation {
	vars := map[string]any{"id": id}
	if p.Title != nil {
		vars["title"] = *p.Title
	}
	if p.Description != nil {
		vars["description"] = *p.Description
	}
	if p.Status != nil {
		vars["status"] = string(*p.Status)
	}
	if p.Priority != nil {
		vars["priority"] = string(*p.Priority)
	}
	if p.AssigneeEmail != nil {
		vars["assigneeEmail"] = nullable(*p.AssigneeEmail)
	}
	if p.DueDate != nil {
		vars["dueDate"] = nullable(*p.DueDate)
	}
	return Operation{Name: OpUpdateTask, Kind: KindMutation, Document: updateTaskDoc, Variables: vars}
}

// AddTaskComment appends a comment to a task
func AddTaskComment(taskID, content, authorEmail string) Operation {
	return Operation{
		Name:     OpAddTaskComment,
		Kind:     KindMutation,
		Document: addTaskCommentDoc,
		Variables: map[string]any{
			"taskId":      taskID,
			"content":     content,
			"authorEmail": authorEmail,
		},
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
