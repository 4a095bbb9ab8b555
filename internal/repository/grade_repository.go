package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-hub-api/internal/models"
)

// GradeRepository persists aggregated course grades.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

const gradeColumns = `id, student_id, quiz_points, max_quiz_points, assignment_points,
        max_assignment_points, extra_points, total_points, max_possible_points, created_at, updated_at`

// GetByStudent returns the grade row for a student.
func (r *GradeRepository) GetByStudent(ctx context.Context, studentID string) (*models.Grade, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE student_id = $1", gradeColumns)
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, studentID); err != nil {
		return nil, fmt.Errorf("get grade: %w", err)
	}
	return &grade, nil
}

// List returns all grade rows ordered by total points descending.
func (r *GradeRepository) List(ctx context.Context) ([]models.Grade, error) {
	query := fmt.Sprintf("SELECT %s FROM grades ORDER BY total_points DESC", gradeColumns)
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// Upsert inserts or updates the grade row for a student. The student_id
// unique constraint makes the first recalculation create the row.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now
	const query = `INSERT INTO grades (id, student_id, quiz_points, max_quiz_points, assignment_points,
            max_assignment_points, extra_points, total_points, max_possible_points, created_at, updated_at)
        VALUES (:id, :student_id, :quiz_points, :max_quiz_points, :assignment_points,
            :max_assignment_points, :extra_points, :total_points, :max_possible_points, :created_at, :updated_at)
        ON CONFLICT (student_id)
        DO UPDATE SET quiz_points = EXCLUDED.quiz_points,
            max_quiz_points = EXCLUDED.max_quiz_points,
            assignment_points = EXCLUDED.assignment_points,
            max_assignment_points = EXCLUDED.max_assignment_points,
            extra_points = EXCLUDED.extra_points,
            total_points = EXCLUDED.total_points,
            max_possible_points = EXCLUDED.max_possible_points,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}
