package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-hub-api/internal/models"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
)

type mockEvaluationStore struct {
	evals map[string]*models.FinalEvaluation
}

func evalKey(groupID, userID string) string {
	return groupID + "|" + userID
}

func (m *mockEvaluationStore) Get(ctx context.Context, groupID, userID string) (*models.FinalEvaluation, error) {
	if e, ok := m.evals[evalKey(groupID, userID)]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEvaluationStore) ListByGroup(ctx context.Context, groupID string) ([]models.FinalEvaluation, error) {
	var out []models.FinalEvaluation
	for _, e := range m.evals {
		if e.GroupID == groupID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEvaluationStore) Upsert(ctx context.Context, eval *models.FinalEvaluation) error {
	if m.evals == nil {
		m.evals = make(map[string]*models.FinalEvaluation)
	}
	key := evalKey(eval.GroupID, eval.UserID)
	if existing, ok := m.evals[key]; ok {
		eval.ID = existing.ID
	} else {
		eval.ID = uuid.NewString()
	}
	stored := *eval
	m.evals[key] = &stored
	return nil
}

func (m *mockEvaluationStore) Averages(ctx context.Context) (int, float64, [models.EvaluationWeeks]float64, error) {
	var weekly [models.EvaluationWeeks]float64
	if len(m.evals) == 0 {
		return 0, 0, weekly, nil
	}
	var total int
	for _, e := range m.evals {
		total += e.TotalScore
		weeks := e.Weeks()
		for i := range weeks {
			weekly[i] += float64(weeks[i].Score)
		}
	}
	n := float64(len(m.evals))
	for i := range weekly {
		weekly[i] /= n
	}
	return len(m.evals), float64(total) / n, weekly, nil
}

type mockMemberships struct {
	members map[string][]string
}

func (m *mockMemberships) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	for _, u := range m.members[groupID] {
		if u == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockMemberships) CountMemberships(ctx context.Context) (int, error) {
	total := 0
	for _, users := range m.members {
		total += len(users)
	}
	return total, nil
}

func newEvaluationFixture() (*EvaluationService, *mockEvaluationStore, *mockMemberships) {
	evals := &mockEvaluationStore{evals: make(map[string]*models.FinalEvaluation)}
	groups := &mockMemberships{members: map[string][]string{
		"group-1": {"stu-1", "stu-2"},
	}}
	svc := NewEvaluationService(evals, groups, validator.New(), zap.NewNop())
	return svc, evals, groups
}

func rubricWeeks(scores [models.EvaluationWeeks]int) [models.EvaluationWeeks]WeekPayload {
	var weeks [models.EvaluationWeeks]WeekPayload
	for i, s := range scores {
		weeks[i] = WeekPayload{Score: s}
	}
	return weeks
}

func TestUpsertComputesTotalFromWeekScores(t *testing.T) {
	svc, _, _ := newEvaluationFixture()

	eval, err := svc.Upsert(context.Background(), "admin-1", UpsertEvaluationRequest{
		GroupID: "group-1",
		UserID:  "stu-1",
		Weeks:   rubricWeeks([models.EvaluationWeeks]int{40, 80, 120, 110}),
	})
	require.NoError(t, err)
	assert.Equal(t, 350, eval.TotalScore)
	assert.Equal(t, 40, eval.Week1Score)
	assert.Equal(t, 110, eval.Week4Score)
}

func TestUpsertRejectsScoreAboveWeeklyMax(t *testing.T) {
	svc, evals, _ := newEvaluationFixture()

	_, err := svc.Upsert(context.Background(), "admin-1", UpsertEvaluationRequest{
		GroupID: "group-1",
		UserID:  "stu-1",
		Weeks:   rubricWeeks([models.EvaluationWeeks]int{60, 80, 120, 110}),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Contains(t, err.Error(), "week 1 score must be between 0 and 50")
	assert.Empty(t, evals.evals)
}

func TestUpsertRejectsNonMember(t *testing.T) {
	svc, evals, _ := newEvaluationFixture()

	_, err := svc.Upsert(context.Background(), "admin-1", UpsertEvaluationRequest{
		GroupID: "group-1",
		UserID:  "stu-9",
		Weeks:   rubricWeeks([models.EvaluationWeeks]int{40, 80, 120, 110}),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, evals.evals)
}

func TestUpsertOverwritesExistingEvaluation(t *testing.T) {
	svc, evals, _ := newEvaluationFixture()

	first, err := svc.Upsert(context.Background(), "admin-1", UpsertEvaluationRequest{
		GroupID: "group-1",
		UserID:  "stu-1",
		Weeks:   rubricWeeks([models.EvaluationWeeks]int{30, 70, 100, 100}),
	})
	require.NoError(t, err)

	second, err := svc.Upsert(context.Background(), "admin-2", UpsertEvaluationRequest{
		GroupID: "group-1",
		UserID:  "stu-1",
		Weeks:   rubricWeeks([models.EvaluationWeeks]int{50, 100, 150, 150}),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.TotalMaxScore, second.TotalScore)
	assert.Len(t, evals.evals, 1)
}

func TestSummaryAveragesAcrossEvaluatedStudents(t *testing.T) {
	svc, _, _ := newEvaluationFixture()

	_, err := svc.Upsert(context.Background(), "admin-1", UpsertEvaluationRequest{
		GroupID: "group-1",
		UserID:  "stu-1",
		Weeks:   rubricWeeks([models.EvaluationWeeks]int{40, 60, 100, 100}),
	})
	require.NoError(t, err)
	_, err = svc.Upsert(context.Background(), "admin-1", UpsertEvaluationRequest{
		GroupID: "group-1",
		UserID:  "stu-2",
		Weeks:   rubricWeeks([models.EvaluationWeeks]int{20, 40, 80, 60}),
	})
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalStudents)
	assert.Equal(t, 2, summary.EvaluatedStudents)
	assert.InDelta(t, 250, summary.AverageScore, 0.001)
	assert.InDelta(t, 30, summary.WeeklyAverages[0], 0.001)
	assert.InDelta(t, 80, summary.WeeklyAverages[3], 0.001)
	assert.False(t, summary.GeneratedAt.IsZero())
}

func TestGetMissingEvaluationIsNotFound(t *testing.T) {
	svc, _, _ := newEvaluationFixture()

	_, err := svc.Get(context.Background(), "group-1", "stu-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
