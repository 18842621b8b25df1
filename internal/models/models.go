package models

import "time"

// Organization is the tenant boundary. Requests are scoped to it by slug,
// carried in a header rather than on every entity.
type Organization struct {
	ID           string
	Name         string
	Slug         string
	ContactEmail string
	CreatedAt    time.Time
}

// Project represents a tracked project. The task counters and completion
// rate are computed by the server and never recomputed here.
type Project struct {
	ID                 string
	Name               string
	Description        string
	Status             ProjectStatus
	DueDate            *time.Time
	TaskCount          int
	CompletedTaskCount int
	CompletionRate     float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ProjectRef is the denormalized project back-reference embedded in a task
type ProjectRef struct {
	ID   string
	Name string
}

// Task represents a single task. Project is set at creation and cannot be
// changed afterwards.
type Task struct {
	ID            string
	Title         string
	Description   string
	Status        TaskStatus
	Priority      Priority
	AssigneeEmail string
	DueDate       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Project       ProjectRef
}

// TaskComment represents a comment on a task. Comments are append-only.
type TaskComment struct {
	ID          string
	Content     string
	AuthorEmail string
	CreatedAt   time.Time
}

// ProjectStats holds organization-wide aggregates computed by the server
type ProjectStats struct {
	TotalProjects         int
	ActiveProjects        int
	CompletedProjects     int
	TotalTasks            int
	CompletedTasks        int
	OverallCompletionRate float64
}
