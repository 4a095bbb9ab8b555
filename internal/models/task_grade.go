package models

import "time"

// TaskGrade is an individual grade for one assignee of a task. A task with
// N assignees carries up to N independent grades; the task flips to graded
// exactly when every assignee holds one.
type TaskGrade struct {
	ID        string    `db:"id" json:"id"`
	TaskID    string    `db:"task_id" json:"task_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	GraderID  string    `db:"grader_id" json:"grader_id"`
	Points    int       `db:"points" json:"points"`
	MaxPoints int       `db:"max_points" json:"max_points"`
	Feedback  *string   `db:"feedback" json:"feedback,omitempty"`
	GradedAt  time.Time `db:"graded_at" json:"graded_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AppealStatus tracks the lifecycle of a grade appeal.
type AppealStatus string

const (
	AppealStatusOpen     AppealStatus = "open"
	AppealStatusResolved AppealStatus = "resolved"
)

// Appeal is a student's dispute over a task grade. Stored as a first-class
// row rather than free text on the task description.
type Appeal struct {
	ID              string       `db:"id" json:"id"`
	TaskID          string       `db:"task_id" json:"task_id"`
	StudentID       string       `db:"student_id" json:"student_id"`
	RequestedPoints int          `db:"requested_points" json:"requested_points"`
	Reason          string       `db:"reason" json:"reason"`
	Status          AppealStatus `db:"status" json:"status"`
	AdminResponse   *string      `db:"admin_response" json:"admin_response,omitempty"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	ResolvedAt      *time.Time   `db:"resolved_at" json:"resolved_at,omitempty"`
}
