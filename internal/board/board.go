// Package board partitions tasks into status columns.
package board

import "github.com/tgienger/taskboard/internal/models"

// Statuses is the fixed column order
var Statuses = []models.TaskStatus{
	models.TaskTodo,
	models.TaskInProgress,
	models.TaskDone,
	models.TaskBlocked,
}

// Column holds the tasks with one status, in input order
type Column struct {
	Status models.TaskStatus
	Tasks  []models.Task
}

func (c Column) Count() int { return len(c.Tasks) }

// Board is the ordered set of columns
type Board []Column

// Group puts every task into the column whose status equals its own.
// A task with any other status lands in no column; there is no catch-all.
func Group(tasks []models.Task) Board {
	b := make(Board, len(Statuses))
	idx := make(map[models.TaskStatus]int, len(Statuses))
	for i, s := range Statuses {
		b[i] = Column{Status: s}
		idx[s] = i
	}
	for _, t := range tasks {
		if i, ok := idx[t.Status]; ok {
			b[i].Tasks = append(b[i].Tasks, t)
		}
	}
	return b
}

// Total returns the number of tasks placed in any column
func (b Board) Total() int {
	n := 0
	for _, c := range b {
		n += c.Count()
	}
	return n
}

// Column returns the column for status, if it is one of Statuses
func (b Board) Column(status models.TaskStatus) (Column, bool) {
	for _, c := range b {
		if c.Status == status {
			return c, true
		}
	}
	return Column{}, false
}
