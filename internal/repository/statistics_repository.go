package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-hub-api/internal/dto"
)

// StatisticsRepository serves read-side task aggregates.
type StatisticsRepository struct {
	db *sqlx.DB
}

// NewStatisticsRepository creates a new statistics repository.
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

const statusCountsSelect = `SELECT
        COUNT(*) FILTER (WHERE status = 'todo') AS todo,
        COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress,
        COUNT(*) FILTER (WHERE status = 'done') AS done,
        COUNT(*) FILTER (WHERE status = 'graded') AS graded,
        COUNT(*) FILTER (WHERE status = 'appeal') AS appeal
    FROM tasks`

// StatusCountsByGroup returns the per-status task counts for one group.
func (r *StatisticsRepository) StatusCountsByGroup(ctx context.Context, groupID string) (dto.TaskStatusCounts, error) {
	var counts dto.TaskStatusCounts
	if err := r.db.GetContext(ctx, &counts, statusCountsSelect+" WHERE group_id = $1", groupID); err != nil {
		return dto.TaskStatusCounts{}, fmt.Errorf("group status counts: %w", err)
	}
	return counts, nil
}

// StatusCounts returns course-wide per-status task counts.
func (r *StatisticsRepository) StatusCounts(ctx context.Context) (dto.TaskStatusCounts, error) {
	var counts dto.TaskStatusCounts
	if err := r.db.GetContext(ctx, &counts, statusCountsSelect); err != nil {
		return dto.TaskStatusCounts{}, fmt.Errorf("status counts: %w", err)
	}
	return counts, nil
}

// ScoreTallyByGroup sums task-grade points over one group's tasks.
func (r *StatisticsRepository) ScoreTallyByGroup(ctx context.Context, groupID string) (dto.ScoreTally, error) {
	const query = `SELECT COALESCE(SUM(tg.points), 0) AS points, COALESCE(SUM(tg.max_points), 0) AS max_points
        FROM task_grades tg
        JOIN tasks t ON t.id = tg.task_id
        WHERE t.group_id = $1`
	var tally dto.ScoreTally
	if err := r.db.GetContext(ctx, &tally, query, groupID); err != nil {
		return dto.ScoreTally{}, fmt.Errorf("group score tally: %w", err)
	}
	return tally, nil
}

// ScoreTally sums task-grade points course-wide.
func (r *StatisticsRepository) ScoreTally(ctx context.Context) (dto.ScoreTally, error) {
	const query = `SELECT COALESCE(SUM(points), 0) AS points, COALESCE(SUM(max_points), 0) AS max_points
        FROM task_grades`
	var tally dto.ScoreTally
	if err := r.db.GetContext(ctx, &tally, query); err != nil {
		return dto.ScoreTally{}, fmt.Errorf("score tally: %w", err)
	}
	return tally, nil
}
