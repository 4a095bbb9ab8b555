package dto

import "time"

// TaskStatusCounts breaks tasks down by lifecycle state.
type TaskStatusCounts struct {
	Todo       int `db:"todo" json:"todo"`
	InProgress int `db:"in_progress" json:"in_progress"`
	Done       int `db:"done" json:"done"`
	Graded     int `db:"graded" json:"graded"`
	Appeal     int `db:"appeal" json:"appeal"`
}

// Total sums every bucket.
func (c TaskStatusCounts) Total() int {
	return c.Todo + c.InProgress + c.Done + c.Graded + c.Appeal
}

// GroupTaskStats is the dashboard aggregate for a single group.
type GroupTaskStats struct {
	GroupID        string           `json:"group_id"`
	Counts         TaskStatusCounts `json:"counts"`
	TotalTasks     int              `json:"total_tasks"`
	CompletionRate float64          `json:"completion_rate"`
	AverageScore   float64          `json:"average_score"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// CourseOverview is the course-wide variant of the task statistics.
type CourseOverview struct {
	Counts         TaskStatusCounts `json:"counts"`
	TotalTasks     int              `json:"total_tasks"`
	TotalGroups    int              `json:"total_groups"`
	CompletionRate float64          `json:"completion_rate"`
	AverageScore   float64          `json:"average_score"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// ScoreTally carries summed task-grade points for average computation.
type ScoreTally struct {
	Points    int `db:"points"`
	MaxPoints int `db:"max_points"`
}
