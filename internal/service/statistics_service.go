package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-hub-api/internal/dto"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
)

type statisticsRepo interface {
	StatusCountsByGroup(ctx context.Context, groupID string) (dto.TaskStatusCounts, error)
	StatusCounts(ctx context.Context) (dto.TaskStatusCounts, error)
	ScoreTallyByGroup(ctx context.Context, groupID string) (dto.ScoreTally, error)
	ScoreTally(ctx context.Context) (dto.ScoreTally, error)
}

type groupCounter interface {
	CountGroups(ctx context.Context) (int, error)
}

// StatisticsService serves dashboard aggregates. Results are cached with
// a short TTL and invalidated on grade writes.
type StatisticsService struct {
	stats  statisticsRepo
	groups groupCounter
	cache  *CacheService
	logger *zap.Logger
}

// NewStatisticsService constructs StatisticsService.
func NewStatisticsService(stats statisticsRepo, groups groupCounter, cache *CacheService, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{stats: stats, groups: groups, cache: cache, logger: logger}
}

func groupStatsKey(groupID string) string {
	return fmt.Sprintf("stats:group:%s", groupID)
}

const overviewKey = "stats:overview"

// GroupTaskStats aggregates one group's board: counts by status,
// completion rate and weighted average score. Returns whether the result
// came from cache.
func (s *StatisticsService) GroupTaskStats(ctx context.Context, groupID string) (*dto.GroupTaskStats, bool, error) {
	if groupID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "group id required")
	}
	var cached dto.GroupTaskStats
	if hit, err := s.cache.Get(ctx, groupStatsKey(groupID), &cached); err == nil && hit {
		return &cached, true, nil
	}

	counts, err := s.stats.StatusCountsByGroup(ctx, groupID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count tasks")
	}
	tally, err := s.stats.ScoreTallyByGroup(ctx, groupID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to tally scores")
	}

	result := &dto.GroupTaskStats{
		GroupID:        groupID,
		Counts:         counts,
		TotalTasks:     counts.Total(),
		CompletionRate: completionRate(counts),
		AverageScore:   averageScore(tally),
		GeneratedAt:    time.Now().UTC(),
	}
	_ = s.cache.Set(ctx, groupStatsKey(groupID), result, 0)
	return result, false, nil
}

// Overview aggregates the whole course.
func (s *StatisticsService) Overview(ctx context.Context) (*dto.CourseOverview, bool, error) {
	var cached dto.CourseOverview
	if hit, err := s.cache.Get(ctx, overviewKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	counts, err := s.stats.StatusCounts(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count tasks")
	}
	tally, err := s.stats.ScoreTally(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to tally scores")
	}
	totalGroups, err := s.groups.CountGroups(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count groups")
	}

	result := &dto.CourseOverview{
		Counts:         counts,
		TotalTasks:     counts.Total(),
		TotalGroups:    totalGroups,
		CompletionRate: completionRate(counts),
		AverageScore:   averageScore(tally),
		GeneratedAt:    time.Now().UTC(),
	}
	_ = s.cache.Set(ctx, overviewKey, result, 0)
	return result, false, nil
}

// Invalidate drops cached statistics for a group and the course overview.
// Called by the grading engine after every grade write.
func (s *StatisticsService) Invalidate(ctx context.Context, groupID string) {
	if groupID != "" {
		s.cache.InvalidatePattern(ctx, groupStatsKey(groupID))
	}
	s.cache.InvalidatePattern(ctx, overviewKey)
}

// completionRate is done tasks over all tasks. Graded and appealed tasks
// passed through done first, so they count as complete.
func completionRate(counts dto.TaskStatusCounts) float64 {
	total := counts.Total()
	if total == 0 {
		return 0
	}
	completed := counts.Done + counts.Graded + counts.Appeal
	return float64(completed) / float64(total)
}

// averageScore is the points-weighted ratio over every grade in scope,
// scaled to 100. Zero when nothing has been graded.
func averageScore(tally dto.ScoreTally) float64 {
	if tally.MaxPoints == 0 {
		return 0
	}
	return float64(tally.Points) / float64(tally.MaxPoints) * 100
}
