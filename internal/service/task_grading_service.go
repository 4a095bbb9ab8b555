package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-hub-api/internal/models"
	"github.com/noah-isme/course-hub-api/internal/repository"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
)

type taskGradeRepo interface {
	GetByID(ctx context.Context, id string) (*models.TaskGrade, error)
	GetByTaskAndStudent(ctx context.Context, taskID, studentID string) (*models.TaskGrade, error)
	ListByTask(ctx context.Context, taskID string) ([]models.TaskGrade, error)
	InsertAndSyncStatus(ctx context.Context, grade *models.TaskGrade) error
	UpdateAndSyncStatus(ctx context.Context, grade *models.TaskGrade) error
}

type gradingTaskReader interface {
	GetByID(ctx context.Context, id string) (*models.Task, error)
	IsAssignee(ctx context.Context, taskID, studentID string) (bool, error)
	SetStatus(ctx context.Context, id string, status models.TaskStatus) error
}

type appealRepo interface {
	Create(ctx context.Context, appeal *models.Appeal) error
	GetByID(ctx context.Context, id string) (*models.Appeal, error)
	HasOpen(ctx context.Context, taskID, studentID string) (bool, error)
	ListOpen(ctx context.Context) ([]models.Appeal, error)
	Resolve(ctx context.Context, id, adminResponse string) error
}

type statisticsInvalidator interface {
	Invalidate(ctx context.Context, groupID string)
}

// GradeTaskRequest is the per-assignee grading payload.
type GradeTaskRequest struct {
	TaskID    string  `json:"task_id" validate:"required"`
	StudentID string  `json:"student_id" validate:"required"`
	Points    int     `json:"points" validate:"min=0"`
	MaxPoints int     `json:"max_points" validate:"required,min=1"`
	Feedback  *string `json:"feedback"`
}

// UpdateTaskGradeRequest rewrites an existing grade.
type UpdateTaskGradeRequest struct {
	Points    int     `json:"points" validate:"min=0"`
	MaxPoints int     `json:"max_points" validate:"required,min=1"`
	Feedback  *string `json:"feedback"`
}

// SubmitAppealRequest is the student dispute payload.
type SubmitAppealRequest struct {
	TaskID          string `json:"task_id" validate:"required"`
	RequestedPoints int    `json:"requested_points" validate:"min=0"`
	Reason          string `json:"reason" validate:"required"`
}

// ResolveAppealRequest is the admin resolution payload. Resolution is a
// re-grade: the points here overwrite the disputed grade.
type ResolveAppealRequest struct {
	Points        int     `json:"points" validate:"min=0"`
	Feedback      *string `json:"feedback"`
	AdminResponse string  `json:"admin_response" validate:"required"`
}

// TaskGradingService awards per-assignee points, drives the graded status
// transition and runs the appeal workflow.
type TaskGradingService struct {
	grades    taskGradeRepo
	tasks     gradingTaskReader
	appeals   appealRepo
	stats     statisticsInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTaskGradingService constructs TaskGradingService.
func NewTaskGradingService(grades taskGradeRepo, tasks gradingTaskReader, appeals appealRepo, stats statisticsInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TaskGradingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskGradingService{
		grades:    grades,
		tasks:     tasks,
		appeals:   appeals,
		stats:     stats,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// GradeTask records one assignee's grade. The write and the
// "all assignees graded" status flip happen in a single transaction at
// the repository, so no row is written when validation fails and the
// transition cannot race.
func (s *TaskGradingService) GradeTask(ctx context.Context, graderID string, req GradeTaskRequest) (*models.TaskGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if req.Points > req.MaxPoints {
		return nil, appErrors.Clone(appErrors.ErrValidation, "points exceed max points")
	}
	task, err := s.loadTask(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	assignee, err := s.tasks.IsAssignee(ctx, req.TaskID, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignee")
	}
	if !assignee {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not assigned to this task")
	}

	grade := &models.TaskGrade{
		TaskID:    req.TaskID,
		StudentID: req.StudentID,
		GraderID:  graderID,
		Points:    req.Points,
		MaxPoints: req.MaxPoints,
		Feedback:  req.Feedback,
	}
	if err := s.grades.InsertAndSyncStatus(ctx, grade); err != nil {
		if errors.Is(err, repository.ErrDuplicateGrade) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student already graded for this task")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store grade")
	}
	s.invalidateStats(ctx, task.GroupID)
	if s.metrics != nil {
		s.metrics.RecordGradeWrite("insert")
	}
	s.logger.Info("task graded",
		zap.String("task_id", req.TaskID),
		zap.String("student_id", req.StudentID),
		zap.Int("points", req.Points),
		zap.Int("max_points", req.MaxPoints),
	)
	return grade, nil
}

// GetTaskGrade returns one assignee's grade for a task.
func (s *TaskGradingService) GetTaskGrade(ctx context.Context, taskID, studentID string) (*models.TaskGrade, error) {
	grade, err := s.grades.GetByTaskAndStudent(ctx, taskID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	return grade, nil
}

// ListTaskGrades returns every grade recorded for a task.
func (s *TaskGradingService) ListTaskGrades(ctx context.Context, taskID string) ([]models.TaskGrade, error) {
	grades, err := s.grades.ListByTask(ctx, taskID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// UpdateTaskGrade mutates an existing grade in place and re-runs the
// graded-count check. Editing never reverts a graded task.
func (s *TaskGradingService) UpdateTaskGrade(ctx context.Context, gradeID, graderID string, req UpdateTaskGradeRequest) (*models.TaskGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if req.Points > req.MaxPoints {
		return nil, appErrors.Clone(appErrors.ErrValidation, "points exceed max points")
	}
	grade, err := s.grades.GetByID(ctx, gradeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	grade.Points = req.Points
	grade.MaxPoints = req.MaxPoints
	grade.Feedback = req.Feedback
	grade.GraderID = graderID
	if err := s.grades.UpdateAndSyncStatus(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	if task, err := s.tasks.GetByID(ctx, grade.TaskID); err == nil {
		s.invalidateStats(ctx, task.GroupID)
	}
	if s.metrics != nil {
		s.metrics.RecordGradeWrite("update")
	}
	return grade, nil
}

// SubmitAppeal opens a dispute over a graded task. Only the graded
// student may appeal, and only once at a time.
func (s *TaskGradingService) SubmitAppeal(ctx context.Context, studentID string, req SubmitAppealRequest) (*models.Appeal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appeal payload")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason required")
	}
	task, err := s.loadTask(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusGraded {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only graded tasks can be appealed")
	}
	if _, err := s.grades.GetByTaskAndStudent(ctx, req.TaskID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no grade to appeal")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	open, err := s.appeals.HasOpen(ctx, req.TaskID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check appeals")
	}
	if open {
		return nil, appErrors.Clone(appErrors.ErrConflict, "appeal already open")
	}

	appeal := &models.Appeal{
		TaskID:          req.TaskID,
		StudentID:       studentID,
		RequestedPoints: req.RequestedPoints,
		Reason:          strings.TrimSpace(req.Reason),
	}
	if err := s.appeals.Create(ctx, appeal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create appeal")
	}
	if err := s.tasks.SetStatus(ctx, req.TaskID, models.TaskStatusAppeal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to flag appeal")
	}
	if s.metrics != nil {
		s.metrics.RecordAppealOpened()
	}
	return appeal, nil
}

// ListOpenAppeals returns unresolved appeals for the admin queue.
func (s *TaskGradingService) ListOpenAppeals(ctx context.Context) ([]models.Appeal, error) {
	appeals, err := s.appeals.ListOpen(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appeals")
	}
	return appeals, nil
}

// ResolveAppeal re-grades the disputed TaskGrade, marks the appeal
// resolved and returns the task to graded.
func (s *TaskGradingService) ResolveAppeal(ctx context.Context, appealID, graderID string, req ResolveAppealRequest) (*models.TaskGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resolution payload")
	}
	appeal, err := s.appeals.GetByID(ctx, appealID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appeal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appeal")
	}
	if appeal.Status != models.AppealStatusOpen {
		return nil, appErrors.Clone(appErrors.ErrConflict, "appeal already resolved")
	}
	grade, err := s.grades.GetByTaskAndStudent(ctx, appeal.TaskID, appeal.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "disputed grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	if req.Points > grade.MaxPoints {
		return nil, appErrors.Clone(appErrors.ErrValidation, "points exceed max points")
	}

	grade.Points = req.Points
	if req.Feedback != nil {
		grade.Feedback = req.Feedback
	}
	grade.GraderID = graderID
	if err := s.grades.UpdateAndSyncStatus(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	if err := s.appeals.Resolve(ctx, appealID, req.AdminResponse); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve appeal")
	}
	if err := s.tasks.SetStatus(ctx, appeal.TaskID, models.TaskStatusGraded); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore status")
	}
	if task, err := s.tasks.GetByID(ctx, appeal.TaskID); err == nil {
		s.invalidateStats(ctx, task.GroupID)
	}
	if s.metrics != nil {
		s.metrics.RecordAppealResolved()
		s.metrics.RecordGradeWrite("resolve")
	}
	s.logger.Info("appeal resolved",
		zap.String("appeal_id", appealID),
		zap.String("task_id", appeal.TaskID),
		zap.Int("points", req.Points),
	)
	return grade, nil
}

func (s *TaskGradingService) loadTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	return task, nil
}

func (s *TaskGradingService) invalidateStats(ctx context.Context, groupID string) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, groupID)
	}
}
