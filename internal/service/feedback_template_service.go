package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-hub-api/internal/models"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
)

type feedbackTemplateRepo interface {
	List(ctx context.Context, category models.FeedbackCategory) ([]models.FeedbackTemplate, error)
	GetByID(ctx context.Context, id string) (*models.FeedbackTemplate, error)
	Create(ctx context.Context, template *models.FeedbackTemplate) error
	Update(ctx context.Context, template *models.FeedbackTemplate) error
	Delete(ctx context.Context, id string) error
}

// CreateFeedbackTemplateRequest is the payload for creating a template.
type CreateFeedbackTemplateRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=120"`
	Content  string `json:"content" validate:"required,min=3,max=2000"`
	Category string `json:"category" validate:"required"`
}

// UpdateFeedbackTemplateRequest is the payload for updating a template.
type UpdateFeedbackTemplateRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=120"`
	Content  string `json:"content" validate:"required,min=3,max=2000"`
	Category string `json:"category" validate:"required"`
}

// FeedbackTemplateService manages reusable grading feedback snippets.
type FeedbackTemplateService struct {
	repo      feedbackTemplateRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeedbackTemplateService constructs FeedbackTemplateService.
func NewFeedbackTemplateService(repo feedbackTemplateRepo, v *validator.Validate, logger *zap.Logger) *FeedbackTemplateService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackTemplateService{repo: repo, validator: v, logger: logger}
}

// List returns templates, optionally filtered by category. An empty
// category means all.
func (s *FeedbackTemplateService) List(ctx context.Context, category string) ([]models.FeedbackTemplate, error) {
	cat := models.FeedbackCategory(category)
	if category != "" && !cat.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown feedback category")
	}
	templates, err := s.repo.List(ctx, cat)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback templates")
	}
	return templates, nil
}

// Get returns a single template by id.
func (s *FeedbackTemplateService) Get(ctx context.Context, id string) (*models.FeedbackTemplate, error) {
	template, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch feedback template")
	}
	if template == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "feedback template not found")
	}
	return template, nil
}

// Create stores a new custom template.
func (s *FeedbackTemplateService) Create(ctx context.Context, req CreateFeedbackTemplateRequest) (*models.FeedbackTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback template payload")
	}
	cat := models.FeedbackCategory(req.Category)
	if !cat.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown feedback category")
	}

	now := time.Now().UTC()
	template := &models.FeedbackTemplate{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		Category:  cat,
		IsDefault: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, template); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create feedback template")
	}
	return template, nil
}

// Update modifies a custom template. Default templates stay immutable.
func (s *FeedbackTemplateService) Update(ctx context.Context, id string, req UpdateFeedbackTemplateRequest) (*models.FeedbackTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback template payload")
	}
	cat := models.FeedbackCategory(req.Category)
	if !cat.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown feedback category")
	}

	template, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if template.IsDefault {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "default templates cannot be modified")
	}

	template.Title = req.Title
	template.Content = req.Content
	template.Category = cat
	template.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, template); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update feedback template")
	}
	return template, nil
}

// Delete removes a custom template.
func (s *FeedbackTemplateService) Delete(ctx context.Context, id string) error {
	template, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if template.IsDefault {
		return appErrors.Clone(appErrors.ErrForbidden, "default templates cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete feedback template")
	}
	return nil
}
