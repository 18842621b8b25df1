package models

import "strings"

// ProjectStatus is the lifecycle state of a project. Values outside the
// known set are kept as-is so they can be displayed.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCancelled ProjectStatus = "CANCELLED"
)

// ProjectStatuses lists every known project status in display order
var ProjectStatuses = []ProjectStatus{ProjectActive, ProjectCompleted, ProjectOnHold, ProjectCancelled}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectOnHold, ProjectCancelled:
		return true
	}
	return false
}

func (s ProjectStatus) Label() string { return label(string(s)) }

// TaskStatus is the workflow state of a task
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
	TaskBlocked    TaskStatus = "BLOCKED"
)

// TaskStatuses lists every known task status in board order
var TaskStatuses = []TaskStatus{TaskTodo, TaskInProgress, TaskDone, TaskBlocked}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone, TaskBlocked:
		return true
	}
	return false
}

func (s TaskStatus) Label() string { return label(string(s)) }

// Priority is the urgency of a task
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Priorities lists every known priority from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func (p Priority) Label() string { return label(string(p)) }

// label turns an enum value such as IN_PROGRESS into "IN PROGRESS"
func label(v string) string {
	if v == "" {
		return "UNKNOWN"
	}
	return strings.ReplaceAll(v, "_", " ")
}

// Next returns the status that follows s in board order, wrapping around.
// Unknown statuses move to TODO.
func (s TaskStatus) Next() TaskStatus {
	for i, st := range TaskStatuses {
		if st == s {
			return TaskStatuses[(i+1)%len(TaskStatuses)]
		}
	}
	return TaskTodo
}

// Next returns the priority after p, wrapping around. Unknown values move to MEDIUM.
func (p Priority) Next() Priority {
	for i, pr := range Priorities {
		if pr == p {
			return Priorities[(i+1)%len(Priorities)]
		}
	}
	return PriorityMedium
}

// Next returns the project status after s, wrapping around
func (s ProjectStatus) Next() ProjectStatus {
	for i, st := range ProjectStatuses {
		if st == s {
			return ProjectStatuses[(i+1)%len(ProjectStatuses)]
		}
	}
	return ProjectActive
}
