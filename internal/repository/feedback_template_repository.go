package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-hub-api/internal/models"
)

// FeedbackTemplateRepository persists reusable feedback snippets.
type FeedbackTemplateRepository struct {
	db *sqlx.DB
}

// NewFeedbackTemplateRepository creates a new feedback template repository.
func NewFeedbackTemplateRepository(db *sqlx.DB) *FeedbackTemplateRepository {
	return &FeedbackTemplateRepository{db: db}
}

const templateColumns = `id, title, content, category, is_default, created_at, updated_at`

// List returns templates, optionally filtered by category.
func (r *FeedbackTemplateRepository) List(ctx context.Context, category models.FeedbackCategory) ([]models.FeedbackTemplate, error) {
	query := fmt.Sprintf("SELECT %s FROM feedback_templates", templateColumns)
	var args []interface{}
	if category != "" {
		query += " WHERE category = $1"
		args = append(args, category)
	}
	query += " ORDER BY is_default DESC, title"
	var templates []models.FeedbackTemplate
	if err := r.db.SelectContext(ctx, &templates, query, args...); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// GetByID returns a template.
func (r *FeedbackTemplateRepository) GetByID(ctx context.Context, id string) (*models.FeedbackTemplate, error) {
	query := fmt.Sprintf("SELECT %s FROM feedback_templates WHERE id = $1", templateColumns)
	var template models.FeedbackTemplate
	if err := r.db.GetContext(ctx, &template, query, id); err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return &template, nil
}

// Create inserts a template.
func (r *FeedbackTemplateRepository) Create(ctx context.Context, template *models.FeedbackTemplate) error {
	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now
	const query = `INSERT INTO feedback_templates (id, title, content, category, is_default, created_at, updated_at)
        VALUES (:id, :title, :content, :category, :is_default, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, template); err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

// Update rewrites the template text and category.
func (r *FeedbackTemplateRepository) Update(ctx context.Context, template *models.FeedbackTemplate) error {
	template.UpdatedAt = time.Now().UTC()
	const query = `UPDATE feedback_templates SET title = :title, content = :content,
            category = :category, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, template); err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

// Delete removes a template.
func (r *FeedbackTemplateRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM feedback_templates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}
