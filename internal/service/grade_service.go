package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-hub-api/internal/models"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
)

type gradeRepo interface {
	GetByStudent(ctx context.Context, studentID string) (*models.Grade, error)
	List(ctx context.Context) ([]models.Grade, error)
	Upsert(ctx context.Context, grade *models.Grade) error
}

type submissionReader interface {
	SumQuizPoints(ctx context.Context, studentID string) (models.PointSum, error)
	SumAssignmentPoints(ctx context.Context, studentID string) (models.PointSum, error)
}

type profileReader interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
}

// UpdateExtraPointsRequest is the admin bonus-point payload.
type UpdateExtraPointsRequest struct {
	StudentID   string `json:"student_id" validate:"required"`
	ExtraPoints int    `json:"extra_points" validate:"min=0"`
}

// GradeService rebuilds aggregated course grades from the submission
// stores. Recalculation is a pure function of submission data plus the
// stored bonus points, so repeated calls with no new submissions are
// no-ops.
type GradeService struct {
	grades      gradeRepo
	submissions submissionReader
	profiles    profileReader
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(grades gradeRepo, submissions submissionReader, profiles profileReader, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		grades:      grades,
		submissions: submissions,
		profiles:    profiles,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Get returns a student's aggregated grade.
func (s *GradeService) Get(ctx context.Context, studentID string) (*models.Grade, error) {
	grade, err := s.grades.GetByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	return grade, nil
}

// GetByEmail resolves a student through the profile store and returns
// their aggregated grade.
func (s *GradeService) GetByEmail(ctx context.Context, email string) (*models.Grade, error) {
	if email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email required")
	}
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return s.Get(ctx, profile.ID)
}

// List returns all aggregated grades.
func (s *GradeService) List(ctx context.Context) ([]models.Grade, error) {
	grades, err := s.grades.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// Recalculate rebuilds a student's quiz and assignment totals from the
// submission stores, preserving any admin-awarded bonus points. The grade
// row is created on first call.
func (s *GradeService) Recalculate(ctx context.Context, studentID string) (*models.Grade, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id required")
	}
	if _, err := s.profiles.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return s.recalculate(ctx, studentID)
}

// UpdateExtraPoints is the only direct write an admin may make to a
// grade. Totals are recomputed in the same pass so the derived fields
// never drift from their components.
func (s *GradeService) UpdateExtraPoints(ctx context.Context, req UpdateExtraPointsRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "extra points must be non-negative")
	}
	grade, err := s.recalculateWithExtra(ctx, req.StudentID, &req.ExtraPoints)
	if err != nil {
		return nil, err
	}
	s.logger.Info("extra points updated",
		zap.String("student_id", req.StudentID),
		zap.Int("extra_points", req.ExtraPoints),
	)
	return grade, nil
}

func (s *GradeService) recalculate(ctx context.Context, studentID string) (*models.Grade, error) {
	return s.recalculateWithExtra(ctx, studentID, nil)
}

// recalculateWithExtra rebuilds the component sums and derived totals.
// When extra is nil the stored bonus points are preserved.
func (s *GradeService) recalculateWithExtra(ctx context.Context, studentID string, extra *int) (*models.Grade, error) {
	quiz, err := s.submissions.SumQuizPoints(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum quiz points")
	}
	assignments, err := s.submissions.SumAssignmentPoints(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum assignment points")
	}

	grade, err := s.grades.GetByStudent(ctx, studentID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
		}
		grade = &models.Grade{StudentID: studentID}
	}

	grade.QuizPoints = quiz.Earned
	grade.MaxQuizPoints = quiz.Max
	grade.AssignmentPoints = assignments.Earned
	grade.MaxAssignmentPoints = assignments.Max
	if extra != nil {
		grade.ExtraPoints = *extra
	}
	grade.Recompute()

	if err := s.grades.Upsert(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store grade")
	}
	if s.metrics != nil {
		s.metrics.RecordRecalculation()
	}
	return grade, nil
}
