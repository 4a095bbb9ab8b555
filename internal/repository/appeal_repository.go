package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-hub-api/internal/models"
)

// AppealRepository persists grade appeals.
type AppealRepository struct {
	db *sqlx.DB
}

// NewAppealRepository creates a new appeal repository.
func NewAppealRepository(db *sqlx.DB) *AppealRepository {
	return &AppealRepository{db: db}
}

const appealColumns = `id, task_id, student_id, requested_points, reason, status,
        admin_response, created_at, resolved_at`

// Create inserts an appeal in the open state.
func (r *AppealRepository) Create(ctx context.Context, appeal *models.Appeal) error {
	if appeal.ID == "" {
		appeal.ID = uuid.NewString()
	}
	appeal.Status = models.AppealStatusOpen
	appeal.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO appeals (id, task_id, student_id, requested_points, reason, status, created_at)
        VALUES (:id, :task_id, :student_id, :requested_points, :reason, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, appeal); err != nil {
		return fmt.Errorf("create appeal: %w", err)
	}
	return nil
}

// GetByID returns an appeal.
func (r *AppealRepository) GetByID(ctx context.Context, id string) (*models.Appeal, error) {
	query := fmt.Sprintf("SELECT %s FROM appeals WHERE id = $1", appealColumns)
	var appeal models.Appeal
	if err := r.db.GetContext(ctx, &appeal, query, id); err != nil {
		return nil, fmt.Errorf("get appeal: %w", err)
	}
	return &appeal, nil
}

// HasOpen reports whether the (task, student) pair has an unresolved appeal.
func (r *AppealRepository) HasOpen(ctx context.Context, taskID, studentID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM appeals
        WHERE task_id = $1 AND student_id = $2 AND status = 'open')`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, taskID, studentID); err != nil {
		return false, fmt.Errorf("check open appeal: %w", err)
	}
	return exists, nil
}

// ListOpen returns all unresolved appeals, oldest first.
func (r *AppealRepository) ListOpen(ctx context.Context) ([]models.Appeal, error) {
	query := fmt.Sprintf("SELECT %s FROM appeals WHERE status = 'open' ORDER BY created_at", appealColumns)
	var appeals []models.Appeal
	if err := r.db.SelectContext(ctx, &appeals, query); err != nil {
		return nil, fmt.Errorf("list open appeals: %w", err)
	}
	return appeals, nil
}

// Resolve marks an appeal resolved with the admin response.
func (r *AppealRepository) Resolve(ctx context.Context, id, adminResponse string) error {
	const query = `UPDATE appeals SET status = 'resolved', admin_response = $2, resolved_at = $3
        WHERE id = $1 AND status = 'open'`
	result, err := r.db.ExecContext(ctx, query, id, adminResponse, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("resolve appeal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve appeal: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("appeal not open")
	}
	return nil
}
