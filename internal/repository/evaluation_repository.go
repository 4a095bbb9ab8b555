package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-hub-api/internal/models"
)

// EvaluationRepository persists final-project weekly evaluations.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository creates a new evaluation repository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

const evaluationColumns = `id, group_id, user_id, evaluator_id, feedback, total_score, created_at, updated_at,
        week1_score, week1_feedback, week1_github_contributions, week1_tasks_completed,
        week2_score, week2_feedback, week2_github_contributions, week2_tasks_completed,
        week3_score, week3_feedback, week3_github_contributions, week3_tasks_completed,
        week4_score, week4_feedback, week4_github_contributions, week4_tasks_completed`

// Get returns the evaluation for a (group, student) pair.
func (r *EvaluationRepository) Get(ctx context.Context, groupID, userID string) (*models.FinalEvaluation, error) {
	query := fmt.Sprintf("SELECT %s FROM final_evaluations WHERE group_id = $1 AND user_id = $2", evaluationColumns)
	var eval models.FinalEvaluation
	if err := r.db.GetContext(ctx, &eval, query, groupID, userID); err != nil {
		return nil, fmt.Errorf("get evaluation: %w", err)
	}
	return &eval, nil
}

// ListByGroup returns all evaluations of a group.
func (r *EvaluationRepository) ListByGroup(ctx context.Context, groupID string) ([]models.FinalEvaluation, error) {
	query := fmt.Sprintf("SELECT %s FROM final_evaluations WHERE group_id = $1 ORDER BY updated_at DESC", evaluationColumns)
	var evals []models.FinalEvaluation
	if err := r.db.SelectContext(ctx, &evals, query, groupID); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evals, nil
}

// Upsert inserts or updates the one evaluation row per (group, student)
// pair. The unique constraint plus ON CONFLICT replaces the legacy
// lookup-then-insert pattern and its race.
func (r *EvaluationRepository) Upsert(ctx context.Context, eval *models.FinalEvaluation) error {
	if eval.ID == "" {
		eval.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if eval.CreatedAt.IsZero() {
		eval.CreatedAt = now
	}
	eval.UpdatedAt = now
	const query = `INSERT INTO final_evaluations (id, group_id, user_id, evaluator_id, feedback, total_score, created_at, updated_at,
            week1_score, week1_feedback, week1_github_contributions, week1_tasks_completed,
            week2_score, week2_feedback, week2_github_contributions, week2_tasks_completed,
            week3_score, week3_feedback, week3_github_contributions, week3_tasks_completed,
            week4_score, week4_feedback, week4_github_contributions, week4_tasks_completed)
        VALUES (:id, :group_id, :user_id, :evaluator_id, :feedback, :total_score, :created_at, :updated_at,
            :week1_score, :week1_feedback, :week1_github_contributions, :week1_tasks_completed,
            :week2_score, :week2_feedback, :week2_github_contributions, :week2_tasks_completed,
            :week3_score, :week3_feedback, :week3_github_contributions, :week3_tasks_completed,
            :week4_score, :week4_feedback, :week4_github_contributions, :week4_tasks_completed)
        ON CONFLICT (group_id, user_id)
        DO UPDATE SET evaluator_id = EXCLUDED.evaluator_id,
            feedback = EXCLUDED.feedback,
            total_score = EXCLUDED.total_score,
            updated_at = EXCLUDED.updated_at,
            week1_score = EXCLUDED.week1_score, week1_feedback = EXCLUDED.week1_feedback,
            week1_github_contributions = EXCLUDED.week1_github_contributions, week1_tasks_completed = EXCLUDED.week1_tasks_completed,
            week2_score = EXCLUDED.week2_score, week2_feedback = EXCLUDED.week2_feedback,
            week2_github_contributions = EXCLUDED.week2_github_contributions, week2_tasks_completed = EXCLUDED.week2_tasks_completed,
            week3_score = EXCLUDED.week3_score, week3_feedback = EXCLUDED.week3_feedback,
            week3_github_contributions = EXCLUDED.week3_github_contributions, week3_tasks_completed = EXCLUDED.week3_tasks_completed,
            week4_score = EXCLUDED.week4_score, week4_feedback = EXCLUDED.week4_feedback,
            week4_github_contributions = EXCLUDED.week4_github_contributions, week4_tasks_completed = EXCLUDED.week4_tasks_completed`
	if _, err := r.db.NamedExecContext(ctx, query, eval); err != nil {
		return fmt.Errorf("upsert evaluation: %w", err)
	}
	return nil
}

// evaluationAverages carries the SQL-side aggregation for the summary.
type evaluationAverages struct {
	Evaluated int     `db:"evaluated"`
	AvgTotal  float64 `db:"avg_total"`
	AvgWeek1  float64 `db:"avg_week1"`
	AvgWeek2  float64 `db:"avg_week2"`
	AvgWeek3  float64 `db:"avg_week3"`
	AvgWeek4  float64 `db:"avg_week4"`
}

// Averages returns evaluation counts and per-week averages computed by the
// database.
func (r *EvaluationRepository) Averages(ctx context.Context) (evaluated int, avgTotal float64, weekly [models.EvaluationWeeks]float64, err error) {
	const query = `SELECT COUNT(*) AS evaluated,
            COALESCE(AVG(total_score), 0) AS avg_total,
            COALESCE(AVG(week1_score), 0) AS avg_week1,
            COALESCE(AVG(week2_score), 0) AS avg_week2,
            COALESCE(AVG(week3_score), 0) AS avg_week3,
            COALESCE(AVG(week4_score), 0) AS avg_week4
        FROM final_evaluations`
	var row evaluationAverages
	if err = r.db.GetContext(ctx, &row, query); err != nil {
		err = fmt.Errorf("evaluation averages: %w", err)
		return
	}
	evaluated = row.Evaluated
	avgTotal = row.AvgTotal
	weekly = [models.EvaluationWeeks]float64{row.AvgWeek1, row.AvgWeek2, row.AvgWeek3, row.AvgWeek4}
	return
}
