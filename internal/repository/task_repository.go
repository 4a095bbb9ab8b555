package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-hub-api/internal/models"
)

// TaskRepository persists final-project tasks and their assignees.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, title, description, priority, status, due_date, estimated_hours,
        group_id, created_by, created_at, updated_at`

// Create inserts a task.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	const query = `INSERT INTO tasks (id, title, description, priority, status, due_date, estimated_hours,
            group_id, created_by, created_at, updated_at)
        VALUES (:id, :title, :description, :priority, :status, :due_date, :estimated_hours,
            :group_id, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetByID returns a task without assignees.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE id = $1", taskColumns)
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// ListByGroup returns all tasks of a group, newest first.
func (r *TaskRepository) ListByGroup(ctx context.Context, groupID string) ([]models.Task, error) {
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE group_id = $1 ORDER BY created_at DESC", taskColumns)
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, groupID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update rewrites the mutable task fields.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tasks SET title = :title, description = :description, priority = :priority,
            due_date = :due_date, estimated_hours = :estimated_hours, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// SetStatus writes the task status directly.
func (r *TaskRepository) SetStatus(ctx context.Context, id string, status models.TaskStatus) error {
	const query = `UPDATE tasks SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	return nil
}

// Delete removes a task. Assignee and grade rows cascade.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// AddAssignee attaches a group member to the task.
func (r *TaskRepository) AddAssignee(ctx context.Context, assignee *models.TaskAssignee) error {
	if assignee.ID == "" {
		assignee.ID = uuid.NewString()
	}
	assignee.AssignedAt = time.Now().UTC()
	const query = `INSERT INTO task_assignees (id, task_id, student_id, assigned_by, assigned_at)
        VALUES (:id, :task_id, :student_id, :assigned_by, :assigned_at)
        ON CONFLICT (task_id, student_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, assignee); err != nil {
		return fmt.Errorf("add assignee: %w", err)
	}
	return nil
}

// RemoveAssignee detaches a student from the task and re-runs the
// graded-count check in the same transaction. Removing the last ungraded
// assignee can complete the task's grading.
func (r *TaskRepository) RemoveAssignee(ctx context.Context, taskID, studentID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignee tx: %w", err)
	}
	const query = `DELETE FROM task_assignees WHERE task_id = $1 AND student_id = $2`
	if _, err := tx.ExecContext(ctx, query, taskID, studentID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("remove assignee: %w", err)
	}
	if _, err := tx.ExecContext(ctx, syncGradedStatusQuery, taskID, time.Now().UTC()); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("sync task status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove assignee: %w", err)
	}
	return nil
}

// ListAssignees returns the task's assignees in assignment order.
func (r *TaskRepository) ListAssignees(ctx context.Context, taskID string) ([]models.TaskAssignee, error) {
	const query = `SELECT id, task_id, student_id, assigned_by, assigned_at
        FROM task_assignees WHERE task_id = $1 ORDER BY assigned_at`
	var assignees []models.TaskAssignee
	if err := r.db.SelectContext(ctx, &assignees, query, taskID); err != nil {
		return nil, fmt.Errorf("list assignees: %w", err)
	}
	return assignees, nil
}

// IsAssignee reports whether the student is assigned to the task.
func (r *TaskRepository) IsAssignee(ctx context.Context, taskID, studentID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM task_assignees WHERE task_id = $1 AND student_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, taskID, studentID); err != nil {
		return false, fmt.Errorf("check assignee: %w", err)
	}
	return exists, nil
}
