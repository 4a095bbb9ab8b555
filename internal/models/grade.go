package models

import "time"

// Grade aggregates a student's earned points across quizzes, assignments
// and admin-awarded bonus points. TotalPoints and MaxPossiblePoints are
// always derived from the component fields on recalculation; ExtraPoints
// is the only field an admin sets directly.
type Grade struct {
	ID                  string    `db:"id" json:"id"`
	StudentID           string    `db:"student_id" json:"student_id"`
	QuizPoints          int       `db:"quiz_points" json:"quiz_points"`
	MaxQuizPoints       int       `db:"max_quiz_points" json:"max_quiz_points"`
	AssignmentPoints    int       `db:"assignment_points" json:"assignment_points"`
	MaxAssignmentPoints int       `db:"max_assignment_points" json:"max_assignment_points"`
	ExtraPoints         int       `db:"extra_points" json:"extra_points"`
	TotalPoints         int       `db:"total_points" json:"total_points"`
	MaxPossiblePoints   int       `db:"max_possible_points" json:"max_possible_points"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// Recompute rebuilds the derived totals from the component fields.
// Bonus points may push TotalPoints above MaxPossiblePoints.
func (g *Grade) Recompute() {
	g.TotalPoints = g.QuizPoints + g.AssignmentPoints + g.ExtraPoints
	g.MaxPossiblePoints = g.MaxQuizPoints + g.MaxAssignmentPoints
}

// PointSum holds earned and maximum points read from a submission store.
type PointSum struct {
	Earned int `db:"earned"`
	Max    int `db:"max"`
}
