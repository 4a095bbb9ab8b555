package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-hub-api/internal/models"
)

// ErrDuplicateGrade is returned when a (task, student) pair already holds
// a grade.
var ErrDuplicateGrade = fmt.Errorf("task grade already exists")

// syncGradedStatusQuery flips a task to graded once every assignee holds a
// grade. The count equality is evaluated by the database inside the same
// transaction as the grade or assignee write, so two concurrent "last
// assignee" grades cannot both observe a stale count. Only grades belonging
// to current assignees are counted, so a grade left behind by a removed
// assignee never skews the check. Tasks under appeal are left alone.
const syncGradedStatusQuery = `UPDATE tasks SET status = 'graded', updated_at = $2
    WHERE id = $1
      AND status <> 'appeal'
      AND (SELECT COUNT(*) FROM task_grades g
             JOIN task_assignees a ON a.task_id = g.task_id AND a.student_id = g.student_id
           WHERE g.task_id = $1) =
          (SELECT COUNT(*) FROM task_assignees WHERE task_id = $1)
      AND (SELECT COUNT(*) FROM task_assignees WHERE task_id = $1) > 0`

// TaskGradeRepository persists per-assignee task grades and keeps the
// owning task's graded status in step with them.
type TaskGradeRepository struct {
	db *sqlx.DB
}

// NewTaskGradeRepository creates a new task grade repository.
func NewTaskGradeRepository(db *sqlx.DB) *TaskGradeRepository {
	return &TaskGradeRepository{db: db}
}

const taskGradeColumns = `id, task_id, student_id, grader_id, points, max_points, feedback, graded_at, updated_at`

// GetByID returns a grade row.
func (r *TaskGradeRepository) GetByID(ctx context.Context, id string) (*models.TaskGrade, error) {
	query := fmt.Sprintf("SELECT %s FROM task_grades WHERE id = $1", taskGradeColumns)
	var grade models.TaskGrade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, fmt.Errorf("get task grade: %w", err)
	}
	return &grade, nil
}

// GetByTaskAndStudent returns the grade for one assignee of a task.
func (r *TaskGradeRepository) GetByTaskAndStudent(ctx context.Context, taskID, studentID string) (*models.TaskGrade, error) {
	query := fmt.Sprintf("SELECT %s FROM task_grades WHERE task_id = $1 AND student_id = $2", taskGradeColumns)
	var grade models.TaskGrade
	if err := r.db.GetContext(ctx, &grade, query, taskID, studentID); err != nil {
		return nil, fmt.Errorf("get task grade: %w", err)
	}
	return &grade, nil
}

// ListByTask returns all grades of a task.
func (r *TaskGradeRepository) ListByTask(ctx context.Context, taskID string) ([]models.TaskGrade, error) {
	query := fmt.Sprintf("SELECT %s FROM task_grades WHERE task_id = $1 ORDER BY graded_at", taskGradeColumns)
	var grades []models.TaskGrade
	if err := r.db.SelectContext(ctx, &grades, query, taskID); err != nil {
		return nil, fmt.Errorf("list task grades: %w", err)
	}
	return grades, nil
}

// InsertAndSyncStatus writes a new grade and, in the same transaction,
// flips the task to graded when the grade count now matches the assignee
// count.
func (r *TaskGradeRepository) InsertAndSyncStatus(ctx context.Context, grade *models.TaskGrade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	grade.GradedAt = now
	grade.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grade tx: %w", err)
	}
	const insert = `INSERT INTO task_grades (id, task_id, student_id, grader_id, points, max_points, feedback, graded_at, updated_at)
        VALUES (:id, :task_id, :student_id, :grader_id, :points, :max_points, :feedback, :graded_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insert, grade); err != nil {
		tx.Rollback() //nolint:errcheck
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateGrade
		}
		return fmt.Errorf("insert task grade: %w", err)
	}
	if _, err := tx.ExecContext(ctx, syncGradedStatusQuery, grade.TaskID, now); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("sync task status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit task grade: %w", err)
	}
	return nil
}

// UpdateAndSyncStatus mutates an existing grade in place and re-runs the
// graded-count check. The check can only confirm a graded status, never
// revert it.
func (r *TaskGradeRepository) UpdateAndSyncStatus(ctx context.Context, grade *models.TaskGrade) error {
	now := time.Now().UTC()
	grade.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grade tx: %w", err)
	}
	const update = `UPDATE task_grades SET points = :points, max_points = :max_points,
            feedback = :feedback, grader_id = :grader_id, updated_at = :updated_at
        WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, update, grade); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update task grade: %w", err)
	}
	if _, err := tx.ExecContext(ctx, syncGradedStatusQuery, grade.TaskID, now); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("sync task status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit task grade: %w", err)
	}
	return nil
}
