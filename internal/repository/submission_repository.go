package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-hub-api/internal/models"
)

// SubmissionRepository reads quiz results and assignment submissions.
// Both stores are written by the submission pipeline; the aggregator only
// ever sums them.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// SumQuizPoints totals earned and maximum quiz points for a student.
func (r *SubmissionRepository) SumQuizPoints(ctx context.Context, studentID string) (models.PointSum, error) {
	const query = `SELECT COALESCE(SUM(qr.points), 0) AS earned, COALESCE(SUM(qr.max_points), 0) AS max
        FROM quiz_results qr
        WHERE qr.student_id = $1`
	var sum models.PointSum
	if err := r.db.GetContext(ctx, &sum, query, studentID); err != nil {
		return models.PointSum{}, fmt.Errorf("sum quiz points: %w", err)
	}
	return sum, nil
}

// SumAssignmentPoints totals earned and maximum assignment points for a
// student. Only graded submissions contribute.
func (r *SubmissionRepository) SumAssignmentPoints(ctx context.Context, studentID string) (models.PointSum, error) {
	const query = `SELECT COALESCE(SUM(s.points), 0) AS earned, COALESCE(SUM(s.max_points), 0) AS max
        FROM assignment_submissions s
        WHERE s.student_id = $1 AND s.status = 'graded'`
	var sum models.PointSum
	if err := r.db.GetContext(ctx, &sum, query, studentID); err != nil {
		return models.PointSum{}, fmt.Errorf("sum assignment points: %w", err)
	}
	return sum, nil
}
