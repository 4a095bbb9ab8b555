package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-hub-api/internal/models"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
)

type mockGradeStore struct {
	grades map[string]*models.Grade
}

func (m *mockGradeStore) GetByStudent(ctx context.Context, studentID string) (*models.Grade, error) {
	if g, ok := m.grades[studentID]; ok {
		copied := *g
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeStore) List(ctx context.Context) ([]models.Grade, error) {
	var out []models.Grade
	for _, g := range m.grades {
		out = append(out, *g)
	}
	return out, nil
}

func (m *mockGradeStore) Upsert(ctx context.Context, grade *models.Grade) error {
	if m.grades == nil {
		m.grades = make(map[string]*models.Grade)
	}
	stored := *grade
	m.grades[grade.StudentID] = &stored
	return nil
}

type mockSubmissionSums struct {
	quiz        map[string]models.PointSum
	assignments map[string]models.PointSum
}

func (m *mockSubmissionSums) SumQuizPoints(ctx context.Context, studentID string) (models.PointSum, error) {
	return m.quiz[studentID], nil
}

func (m *mockSubmissionSums) SumAssignmentPoints(ctx context.Context, studentID string) (models.PointSum, error) {
	return m.assignments[studentID], nil
}

type mockProfileStore struct {
	profiles map[string]*models.Profile
}

func (m *mockProfileStore) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfileStore) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	for _, p := range m.profiles {
		if p.Email == email {
			copied := *p
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func newGradeFixture() (*GradeService, *mockGradeStore, *mockSubmissionSums) {
	grades := &mockGradeStore{grades: make(map[string]*models.Grade)}
	submissions := &mockSubmissionSums{
		quiz:        map[string]models.PointSum{"stu-1": {Earned: 10, Max: 12}},
		assignments: map[string]models.PointSum{"stu-1": {Earned: 18, Max: 18}},
	}
	profiles := &mockProfileStore{profiles: map[string]*models.Profile{
		"stu-1": {ID: "stu-1", Email: "stu1@example.com", Role: models.RoleStudent},
	}}
	svc := NewGradeService(grades, submissions, profiles, nil, validator.New(), zap.NewNop())
	return svc, grades, submissions
}

func TestRecalculateBuildsGradeFromSubmissions(t *testing.T) {
	svc, _, _ := newGradeFixture()

	grade, err := svc.Recalculate(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 10, grade.QuizPoints)
	assert.Equal(t, 12, grade.MaxQuizPoints)
	assert.Equal(t, 18, grade.AssignmentPoints)
	assert.Equal(t, 18, grade.MaxAssignmentPoints)
	assert.Equal(t, 28, grade.TotalPoints)
	assert.Equal(t, 30, grade.MaxPossiblePoints)
}

func TestRecalculateIsIdempotentWithoutNewSubmissions(t *testing.T) {
	svc, _, _ := newGradeFixture()

	first, err := svc.Recalculate(context.Background(), "stu-1")
	require.NoError(t, err)
	second, err := svc.Recalculate(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, first.TotalPoints, second.TotalPoints)
	assert.Equal(t, first.MaxPossiblePoints, second.MaxPossiblePoints)
}

func TestRecalculatePreservesExtraPoints(t *testing.T) {
	svc, _, submissions := newGradeFixture()

	_, err := svc.UpdateExtraPoints(context.Background(), UpdateExtraPointsRequest{
		StudentID: "stu-1", ExtraPoints: 5,
	})
	require.NoError(t, err)

	submissions.quiz["stu-1"] = models.PointSum{Earned: 12, Max: 12}
	grade, err := svc.Recalculate(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 5, grade.ExtraPoints)
	assert.Equal(t, 35, grade.TotalPoints)
	assert.Equal(t, 30, grade.MaxPossiblePoints)
}

func TestExtraPointsMayExceedMaxPossible(t *testing.T) {
	svc, _, _ := newGradeFixture()

	grade, err := svc.UpdateExtraPoints(context.Background(), UpdateExtraPointsRequest{
		StudentID: "stu-1", ExtraPoints: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 38, grade.TotalPoints)
	assert.Equal(t, 30, grade.MaxPossiblePoints)
	assert.Greater(t, grade.TotalPoints, grade.MaxPossiblePoints)
}

func TestUpdateExtraPointsRejectsNegative(t *testing.T) {
	svc, grades, _ := newGradeFixture()

	_, err := svc.UpdateExtraPoints(context.Background(), UpdateExtraPointsRequest{
		StudentID: "stu-1", ExtraPoints: -3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, grades.grades)
}

func TestRecalculateUnknownStudentIsNotFound(t *testing.T) {
	svc, _, _ := newGradeFixture()

	_, err := svc.Recalculate(context.Background(), "stu-9")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGetByEmailResolvesStudent(t *testing.T) {
	svc, _, _ := newGradeFixture()

	_, err := svc.Recalculate(context.Background(), "stu-1")
	require.NoError(t, err)

	grade, err := svc.GetByEmail(context.Background(), "stu1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", grade.StudentID)
	assert.Equal(t, 28, grade.TotalPoints)
}

func TestGetByEmailUnknownStudentIsNotFound(t *testing.T) {
	svc, _, _ := newGradeFixture()

	_, err := svc.GetByEmail(context.Background(), "ghost@example.com")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGetMissingGradeIsNotFound(t *testing.T) {
	svc, _, _ := newGradeFixture()

	_, err := svc.Get(context.Background(), "stu-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
