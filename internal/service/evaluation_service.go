package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-hub-api/internal/models"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
)

type evaluationRepo interface {
	Get(ctx context.Context, groupID, userID string) (*models.FinalEvaluation, error)
	ListByGroup(ctx context.Context, groupID string) ([]models.FinalEvaluation, error)
	Upsert(ctx context.Context, eval *models.FinalEvaluation) error
	Averages(ctx context.Context) (evaluated int, avgTotal float64, weekly [models.EvaluationWeeks]float64, err error)
}

type membershipCounter interface {
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	CountMemberships(ctx context.Context) (int, error)
}

// WeekPayload is one rubric bucket in the upsert request.
type WeekPayload struct {
	Score               int     `json:"score"`
	Feedback            *string `json:"feedback"`
	GitHubContributions int     `json:"github_contributions" validate:"min=0"`
	TasksCompleted      int     `json:"tasks_completed" validate:"min=0"`
}

// UpsertEvaluationRequest carries the full 4-week rubric for one student.
// The GitHub contribution counts come from the repository sync feed.
type UpsertEvaluationRequest struct {
	GroupID  string                              `json:"group_id" validate:"required"`
	UserID   string                              `json:"user_id" validate:"required"`
	Feedback *string                             `json:"feedback"`
	Weeks    [models.EvaluationWeeks]WeekPayload `json:"weeks" validate:"required"`
}

// EvaluationService maintains the fixed 4-week final-project rubric
// (50/100/150/150, 450 total).
type EvaluationService struct {
	evaluations evaluationRepo
	groups      membershipCounter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEvaluationService constructs EvaluationService.
func NewEvaluationService(evaluations evaluationRepo, groups membershipCounter, validate *validator.Validate, logger *zap.Logger) *EvaluationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{evaluations: evaluations, groups: groups, validator: validate, logger: logger}
}

// Upsert writes the one evaluation row for a (group, student) pair.
// Week scores are validated against the declared maxima before anything
// is persisted, and the total is always recomputed as the sum of the
// four week scores.
func (s *EvaluationService) Upsert(ctx context.Context, evaluatorID string, req UpsertEvaluationRequest) (*models.FinalEvaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}
	for i, week := range req.Weeks {
		if week.Score < 0 || week.Score > models.WeeklyMaxScores[i] {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("week %d score must be between 0 and %d", i+1, models.WeeklyMaxScores[i]))
		}
	}
	member, err := s.groups.IsMember(ctx, req.GroupID, req.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if !member {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not a member of the group")
	}

	eval := &models.FinalEvaluation{
		GroupID:     req.GroupID,
		UserID:      req.UserID,
		EvaluatorID: evaluatorID,
		Feedback:    req.Feedback,
	}
	var weeks [models.EvaluationWeeks]models.WeekEvaluation
	for i, week := range req.Weeks {
		weeks[i] = models.WeekEvaluation{
			Score:               week.Score,
			Feedback:            week.Feedback,
			GitHubContributions: week.GitHubContributions,
			TasksCompleted:      week.TasksCompleted,
		}
	}
	eval.SetWeeks(weeks)

	if err := s.evaluations.Upsert(ctx, eval); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store evaluation")
	}
	s.logger.Info("evaluation upserted",
		zap.String("group_id", req.GroupID),
		zap.String("user_id", req.UserID),
		zap.Int("total_score", eval.TotalScore),
	)
	return eval, nil
}

// Get returns the evaluation for a (group, student) pair.
func (s *EvaluationService) Get(ctx context.Context, groupID, userID string) (*models.FinalEvaluation, error) {
	eval, err := s.evaluations.Get(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	return eval, nil
}

// ListByGroup returns a group's evaluations.
func (s *EvaluationService) ListByGroup(ctx context.Context, groupID string) ([]models.FinalEvaluation, error) {
	evals, err := s.evaluations.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}
	return evals, nil
}

// Summary computes process-wide evaluation progress. Students in several
// groups count once per membership.
func (s *EvaluationService) Summary(ctx context.Context) (*models.EvaluationSummary, error) {
	total, err := s.groups.CountMemberships(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	evaluated, avgTotal, weekly, err := s.evaluations.Averages(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate evaluations")
	}
	return &models.EvaluationSummary{
		TotalStudents:     total,
		EvaluatedStudents: evaluated,
		AverageScore:      avgTotal,
		WeeklyAverages:    weekly,
		GeneratedAt:       time.Now().UTC(),
	}, nil
}
