package models

import "time"

// EvaluationWeeks is the number of rubric weeks in a final project.
const EvaluationWeeks = 4

// WeeklyMaxScores fixes the per-week maxima. Weight is front-loaded toward
// weeks 3-4 to match rising project complexity.
var WeeklyMaxScores = [EvaluationWeeks]int{50, 100, 150, 150}

// TotalMaxScore is the sum of the weekly maxima.
const TotalMaxScore = 450

// WeekEvaluation is one rubric bucket: a manual score plus derived
// GitHub-contribution and task-completion metrics.
type WeekEvaluation struct {
	Score               int     `json:"score"`
	Feedback            *string `json:"feedback,omitempty"`
	GitHubContributions int     `json:"github_contributions"`
	TasksCompleted      int     `json:"tasks_completed"`
}

// FinalEvaluation holds the 4-week rubric for one (group, student) pair.
// TotalScore is recomputed as the sum of the week scores on every upsert.
type FinalEvaluation struct {
	ID          string    `db:"id" json:"id"`
	GroupID     string    `db:"group_id" json:"group_id"`
	UserID      string    `db:"user_id" json:"user_id"`
	EvaluatorID string    `db:"evaluator_id" json:"evaluator_id"`
	Feedback    *string   `db:"feedback" json:"feedback,omitempty"`
	TotalScore  int       `db:"total_score" json:"total_score"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	Week1Score               int     `db:"week1_score" json:"week1_score"`
	Week1Feedback            *string `db:"week1_feedback" json:"week1_feedback,omitempty"`
	Week1GitHubContributions int     `db:"week1_github_contributions" json:"week1_github_contributions"`
	Week1TasksCompleted      int     `db:"week1_tasks_completed" json:"week1_tasks_completed"`

	Week2Score               int     `db:"week2_score" json:"week2_score"`
	Week2Feedback            *string `db:"week2_feedback" json:"week2_feedback,omitempty"`
	Week2GitHubContributions int     `db:"week2_github_contributions" json:"week2_github_contributions"`
	Week2TasksCompleted      int     `db:"week2_tasks_completed" json:"week2_tasks_completed"`

	Week3Score               int     `db:"week3_score" json:"week3_score"`
	Week3Feedback            *string `db:"week3_feedback" json:"week3_feedback,omitempty"`
	Week3GitHubContributions int     `db:"week3_github_contributions" json:"week3_github_contributions"`
	Week3TasksCompleted      int     `db:"week3_tasks_completed" json:"week3_tasks_completed"`

	Week4Score               int     `db:"week4_score" json:"week4_score"`
	Week4Feedback            *string `db:"week4_feedback" json:"week4_feedback,omitempty"`
	Week4GitHubContributions int     `db:"week4_github_contributions" json:"week4_github_contributions"`
	Week4TasksCompleted      int     `db:"week4_tasks_completed" json:"week4_tasks_completed"`
}

// Weeks returns the four buckets in order.
func (e *FinalEvaluation) Weeks() [EvaluationWeeks]WeekEvaluation {
	return [EvaluationWeeks]WeekEvaluation{
		{Score: e.Week1Score, Feedback: e.Week1Feedback, GitHubContributions: e.Week1GitHubContributions, TasksCompleted: e.Week1TasksCompleted},
		{Score: e.Week2Score, Feedback: e.Week2Feedback, GitHubContributions: e.Week2GitHubContributions, TasksCompleted: e.Week2TasksCompleted},
		{Score: e.Week3Score, Feedback: e.Week3Feedback, GitHubContributions: e.Week3GitHubContributions, TasksCompleted: e.Week3TasksCompleted},
		{Score: e.Week4Score, Feedback: e.Week4Feedback, GitHubContributions: e.Week4GitHubContributions, TasksCompleted: e.Week4TasksCompleted},
	}
}

// SetWeeks writes the buckets back and recomputes TotalScore.
func (e *FinalEvaluation) SetWeeks(weeks [EvaluationWeeks]WeekEvaluation) {
	e.Week1Score, e.Week1Feedback, e.Week1GitHubContributions, e.Week1TasksCompleted = weeks[0].Score, weeks[0].Feedback, weeks[0].GitHubContributions, weeks[0].TasksCompleted
	e.Week2Score, e.Week2Feedback, e.Week2GitHubContributions, e.Week2TasksCompleted = weeks[1].Score, weeks[1].Feedback, weeks[1].GitHubContributions, weeks[1].TasksCompleted
	e.Week3Score, e.Week3Feedback, e.Week3GitHubContributions, e.Week3TasksCompleted = weeks[2].Score, weeks[2].Feedback, weeks[2].GitHubContributions, weeks[2].TasksCompleted
	e.Week4Score, e.Week4Feedback, e.Week4GitHubContributions, e.Week4TasksCompleted = weeks[3].Score, weeks[3].Feedback, weeks[3].GitHubContributions, weeks[3].TasksCompleted
	e.TotalScore = weeks[0].Score + weeks[1].Score + weeks[2].Score + weeks[3].Score
}

// EvaluationSummary aggregates process-wide evaluation progress.
type EvaluationSummary struct {
	TotalStudents     int        `json:"total_students"`
	EvaluatedStudents int        `json:"evaluated_students"`
	AverageScore      float64    `json:"average_score"`
	WeeklyAverages    [4]float64 `json:"weekly_averages"`
	GeneratedAt       time.Time  `json:"generated_at"`
}
