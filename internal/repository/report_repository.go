package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-hub-api/internal/models"
)

// ReportRepository persists asynchronous export jobs.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, type, format, status, group_id, file_path, error, requested_by,
        created_at, updated_at, completed_at`

// Create inserts a queued report job.
func (r *ReportRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	job.Status = models.ReportJobQueued
	job.CreatedAt = now
	job.UpdatedAt = now
	const query = `INSERT INTO report_jobs (id, type, format, status, group_id, file_path, requested_by, created_at, updated_at)
        VALUES (:id, :type, :format, :status, :group_id, :file_path, :requested_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

// GetByID returns a report job.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	query := fmt.Sprintf("SELECT %s FROM report_jobs WHERE id = $1", reportColumns)
	var job models.ReportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("get report job: %w", err)
	}
	return &job, nil
}

// SetProcessing marks a job as picked up by a worker.
func (r *ReportRepository) SetProcessing(ctx context.Context, id string) error {
	const query = `UPDATE report_jobs SET status = 'processing', updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark report processing: %w", err)
	}
	return nil
}

// SetCompleted records the rendered file path.
func (r *ReportRepository) SetCompleted(ctx context.Context, id, filePath string) error {
	now := time.Now().UTC()
	const query = `UPDATE report_jobs SET status = 'completed', file_path = $2, updated_at = $3, completed_at = $3
        WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, filePath, now); err != nil {
		return fmt.Errorf("mark report completed: %w", err)
	}
	return nil
}

// SetFailed records the failure reason.
func (r *ReportRepository) SetFailed(ctx context.Context, id, reason string) error {
	const query = `UPDATE report_jobs SET status = 'failed', error = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, reason, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark report failed: %w", err)
	}
	return nil
}
