package graphqltest

const stamp = "2024-05-01T09:30:00+00:00"

// Project returns a project object as the backend would serialize it
func Project(id, name, status string) map[string]any {
	return map[string]any{
		"id":                 id,
		"name":               name,
		"description":        name + " description",
		"status":             status,
		"dueDate":            nil,
		"taskCount":          4,
		"completedTaskCount": 1,
		"completionRate":     25.0,
		"createdAt":          stamp,
		"updatedAt":          stamp,
	}
}

// Task returns a task object as the backend would serialize it
func Task(id, title, status, priority, projectID, projectName string) map[string]any {
	return map[string]any{
		"id":            id,
		"title":         title,
		"description":   "",
		"status":        status,
		"priority":      priority,
		"assigneeEmail": "",
		"dueDate":       nil,
		"createdAt":     stamp,
		"updatedAt":     stamp,
		"project": map[string]any{
			"id":   projectID,
			"name": projectName,
		},
	}
}

// Comment returns a comment object as the backend would serialize it
func Comment(id, content, author string) map[string]any {
	return map[string]any{
		"id":          id,
		"content":     content,
		"authorEmail": author,
		"createdAt":   stamp,
	}
}

// Stats returns a projectStats object
func Stats(projects, active, tasks, completed int, rate float64) map[string]any {
	return map[string]any{
		"totalProjects":         projects,
		"activeProjects":        active,
		"completedProjects":     projects - active,
		"totalTasks":            tasks,
		"completedTasks":        completed,
		"overallCompletionRate": rate,
	}
}

// Str reads a string variable, returning "" when absent or null
func Str(vars map[string]any, key string) string {
	s, _ := vars[key].(string)
	return s
}
