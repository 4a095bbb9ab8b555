package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-hub-api/internal/dto"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
)

type memoryCacheRepo struct {
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	delete(m.entries, pattern)
	return nil
}

type mockStatisticsRepo struct {
	groupCounts map[string]dto.TaskStatusCounts
	groupTally  map[string]dto.ScoreTally
	counts      dto.TaskStatusCounts
	tally       dto.ScoreTally
	queries     int
}

func (m *mockStatisticsRepo) StatusCountsByGroup(ctx context.Context, groupID string) (dto.TaskStatusCounts, error) {
	m.queries++
	return m.groupCounts[groupID], nil
}

func (m *mockStatisticsRepo) StatusCounts(ctx context.Context) (dto.TaskStatusCounts, error) {
	m.queries++
	return m.counts, nil
}

func (m *mockStatisticsRepo) ScoreTallyByGroup(ctx context.Context, groupID string) (dto.ScoreTally, error) {
	return m.groupTally[groupID], nil
}

func (m *mockStatisticsRepo) ScoreTally(ctx context.Context) (dto.ScoreTally, error) {
	return m.tally, nil
}

type mockGroupCounter struct {
	groups int
}

func (m *mockGroupCounter) CountGroups(ctx context.Context) (int, error) {
	return m.groups, nil
}

func newStatisticsFixture() (*StatisticsService, *mockStatisticsRepo) {
	stats := &mockStatisticsRepo{
		groupCounts: map[string]dto.TaskStatusCounts{
			"group-1": {Todo: 2, InProgress: 1, Done: 3, Graded: 3, Appeal: 1},
		},
		groupTally: map[string]dto.ScoreTally{
			"group-1": {Points: 30, MaxPoints: 40},
		},
		counts: dto.TaskStatusCounts{Todo: 5, Done: 5},
		tally:  dto.ScoreTally{Points: 45, MaxPoints: 50},
	}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, zap.NewNop(), true)
	svc := NewStatisticsService(stats, &mockGroupCounter{groups: 4}, cache, zap.NewNop())
	return svc, stats
}

func TestGroupTaskStatsComputesRates(t *testing.T) {
	svc, _ := newStatisticsFixture()

	result, cached, err := svc.GroupTaskStats(context.Background(), "group-1")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 10, result.TotalTasks)
	assert.InDelta(t, 0.7, result.CompletionRate, 0.001)
	assert.InDelta(t, 75, result.AverageScore, 0.001)
}

func TestGroupTaskStatsServesSecondCallFromCache(t *testing.T) {
	svc, stats := newStatisticsFixture()

	_, cached, err := svc.GroupTaskStats(context.Background(), "group-1")
	require.NoError(t, err)
	assert.False(t, cached)
	queriesAfterFirst := stats.queries

	result, cached, err := svc.GroupTaskStats(context.Background(), "group-1")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, queriesAfterFirst, stats.queries)
	assert.Equal(t, 10, result.TotalTasks)
}

func TestInvalidateForcesRecomputation(t *testing.T) {
	svc, stats := newStatisticsFixture()

	_, _, err := svc.GroupTaskStats(context.Background(), "group-1")
	require.NoError(t, err)
	_, _, err = svc.Overview(context.Background())
	require.NoError(t, err)
	queriesBefore := stats.queries

	svc.Invalidate(context.Background(), "group-1")

	_, cached, err := svc.GroupTaskStats(context.Background(), "group-1")
	require.NoError(t, err)
	assert.False(t, cached)
	_, cached, err = svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Greater(t, stats.queries, queriesBefore)
}

func TestOverviewAggregatesCourse(t *testing.T) {
	svc, _ := newStatisticsFixture()

	result, cached, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 10, result.TotalTasks)
	assert.Equal(t, 4, result.TotalGroups)
	assert.InDelta(t, 0.5, result.CompletionRate, 0.001)
	assert.InDelta(t, 90, result.AverageScore, 0.001)
}

func TestGroupTaskStatsEmptyGroupIsZeroed(t *testing.T) {
	svc, _ := newStatisticsFixture()

	result, _, err := svc.GroupTaskStats(context.Background(), "group-empty")
	require.NoError(t, err)
	assert.Zero(t, result.TotalTasks)
	assert.Zero(t, result.CompletionRate)
	assert.Zero(t, result.AverageScore)
}

func TestGroupTaskStatsRequiresGroupID(t *testing.T) {
	svc, _ := newStatisticsFixture()

	_, _, err := svc.GroupTaskStats(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
