package models

import "time"

// TaskStatus tracks a final-project task through its lifecycle.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	// TaskStatusGraded is system-computed: set when every assignee holds a
	// grade, never by a direct status call.
	TaskStatusGraded TaskStatus = "graded"
	// TaskStatusAppeal is entered from graded when a student disputes a
	// grade and left again when the appeal is resolved.
	TaskStatusAppeal TaskStatus = "appeal"
)

// MemberSettable reports whether group members may set the status directly.
func (s TaskStatus) MemberSettable() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Valid reports whether the value is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusGraded, TaskStatusAppeal:
		return true
	}
	return false
}

// TaskPriority orders tasks on group boards.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether the value is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task is a unit of final-project work owned by a group.
type Task struct {
	ID             string         `db:"id" json:"id"`
	Title          string         `db:"title" json:"title"`
	Description    *string        `db:"description" json:"description,omitempty"`
	Priority       TaskPriority   `db:"priority" json:"priority"`
	Status         TaskStatus     `db:"status" json:"status"`
	DueDate        *time.Time     `db:"due_date" json:"due_date,omitempty"`
	EstimatedHours *int           `db:"estimated_hours" json:"estimated_hours,omitempty"`
	GroupID        string         `db:"group_id" json:"group_id"`
	CreatedBy      string         `db:"created_by" json:"created_by"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
	Assignees      []TaskAssignee `json:"assignees,omitempty"`
}

// TaskAssignee links a group member to a task, with audit fields.
type TaskAssignee struct {
	ID         string    `db:"id" json:"id"`
	TaskID     string    `db:"task_id" json:"task_id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	AssignedBy string    `db:"assigned_by" json:"assigned_by"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}
