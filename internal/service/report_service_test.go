package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-hub-api/internal/models"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
	"github.com/noah-isme/course-hub-api/pkg/storage"
)

type mockReportJobStore struct {
	mu   sync.Mutex
	jobs map[string]*models.ReportJob
}

func (m *mockReportJobStore) Create(ctx context.Context, job *models.ReportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.jobs == nil {
		m.jobs = make(map[string]*models.ReportJob)
	}
	stored := *job
	m.jobs[job.ID] = &stored
	return nil
}

func (m *mockReportJobStore) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		copied := *j
		return &copied, nil
	}
	return nil, fmt.Errorf("get report job: %w", sql.ErrNoRows)
}

func (m *mockReportJobStore) SetProcessing(ctx context.Context, id string) error {
	return m.setStatus(id, models.ReportJobProcessing, "", "")
}

func (m *mockReportJobStore) SetCompleted(ctx context.Context, id, filePath string) error {
	return m.setStatus(id, models.ReportJobCompleted, filePath, "")
}

func (m *mockReportJobStore) SetFailed(ctx context.Context, id, reason string) error {
	return m.setStatus(id, models.ReportJobFailed, "", reason)
}

func (m *mockReportJobStore) setStatus(id string, status models.ReportJobStatus, filePath, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	j.Status = status
	if filePath != "" {
		j.FilePath = filePath
	}
	if reason != "" {
		j.Error = &reason
	}
	return nil
}

func (m *mockReportJobStore) status(id string) models.ReportJobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id].Status
}

type mockEvaluationReader struct {
	evals []models.FinalEvaluation
}

func (m *mockEvaluationReader) ListByGroup(ctx context.Context, groupID string) ([]models.FinalEvaluation, error) {
	return m.evals, nil
}

type mockGradeReader struct {
	grades map[string]*models.Grade
}

func (m *mockGradeReader) List(ctx context.Context) ([]models.Grade, error) {
	var out []models.Grade
	for _, g := range m.grades {
		out = append(out, *g)
	}
	return out, nil
}

func (m *mockGradeReader) GetByStudent(ctx context.Context, studentID string) (*models.Grade, error) {
	if g, ok := m.grades[studentID]; ok {
		copied := *g
		return &copied, nil
	}
	return nil, fmt.Errorf("get grade: %w", sql.ErrNoRows)
}

type mockMemberReader struct {
	members []models.GroupMember
}

func (m *mockMemberReader) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	return m.members, nil
}

func newReportFixture(t *testing.T) (*ReportService, *mockReportJobStore) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	eval := models.FinalEvaluation{GroupID: "group-1", UserID: "stu-1", EvaluatorID: "admin-1"}
	eval.SetWeeks([models.EvaluationWeeks]models.WeekEvaluation{
		{Score: 40}, {Score: 80}, {Score: 120}, {Score: 110},
	})

	repo := &mockReportJobStore{jobs: make(map[string]*models.ReportJob)}
	svc := NewReportService(ReportServiceConfig{
		Repo:        repo,
		Evaluations: &mockEvaluationReader{evals: []models.FinalEvaluation{eval}},
		Grades: &mockGradeReader{grades: map[string]*models.Grade{
			"stu-1": {StudentID: "stu-1", QuizPoints: 10, AssignmentPoints: 18, TotalPoints: 28, MaxPossiblePoints: 30},
		}},
		Members: &mockMemberReader{members: []models.GroupMember{
			{GroupID: "group-1", UserID: "stu-1"},
			{GroupID: "group-1", UserID: "stu-2"},
		}},
		Store:   store,
		Signer:  storage.NewSignedURLSigner("report-test-secret", time.Minute),
		BaseURL: "http://localhost:8080/api/v1",
		Workers: 1,
		Logger:  zap.NewNop(),
	})
	return svc, repo
}

func waitForJob(t *testing.T, repo *mockReportJobStore, id string) models.ReportJobStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status := repo.status(id)
		if status == models.ReportJobCompleted || status == models.ReportJobFailed {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("report job %s never finished", id)
	return ""
}

func TestCreateReportRendersAndServesSignedDownload(t *testing.T) {
	svc, repo := newReportFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	groupID := uuid.NewString()
	job, err := svc.Create(ctx, CreateReportRequest{
		Type: "evaluation_summary", Format: "csv", GroupID: &groupID,
	}, "admin-1")
	require.NoError(t, err)
	require.Equal(t, models.ReportJobCompleted, waitForJob(t, repo, job.ID))

	status, err := svc.Status(ctx, job.ID)
	require.NoError(t, err)
	require.NotEmpty(t, status.DownloadURL)
	require.NotNil(t, status.ExpiresAt)

	parts := strings.Split(status.DownloadURL, "/")
	token := parts[len(parts)-1]
	file, downloaded, err := svc.Download(ctx, token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, job.ID, downloaded.ID)

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "student,week 1,week 2,week 3,week 4,total")
	assert.Contains(t, string(content), "stu-1,40,80,120,110,350")
}

func TestCreateReportSkipsMembersWithoutGrades(t *testing.T) {
	svc, repo := newReportFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	groupID := uuid.NewString()
	job, err := svc.Create(ctx, CreateReportRequest{
		Type: "group_grades", Format: "csv", GroupID: &groupID,
	}, "admin-1")
	require.NoError(t, err)
	require.Equal(t, models.ReportJobCompleted, waitForJob(t, repo, job.ID))

	status, err := svc.Status(ctx, job.ID)
	require.NoError(t, err)
	parts := strings.Split(status.DownloadURL, "/")
	file, _, err := svc.Download(ctx, parts[len(parts)-1])
	require.NoError(t, err)
	defer file.Close()

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "stu-1,10,18,0,28,30")
	assert.NotContains(t, string(content), "stu-2")
}

func TestCreateEvaluationSummaryRequiresGroup(t *testing.T) {
	svc, _ := newReportFixture(t)

	_, err := svc.Create(context.Background(), CreateReportRequest{
		Type: "evaluation_summary", Format: "csv",
	}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateReportRejectsUnknownType(t *testing.T) {
	svc, _ := newReportFixture(t)

	_, err := svc.Create(context.Background(), CreateReportRequest{
		Type: "everything", Format: "csv",
	}, "admin-1")
	require.Error(t, err)
}

func TestDownloadRejectsForgedToken(t *testing.T) {
	svc, _ := newReportFixture(t)

	_, _, err := svc.Download(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestStatusMissingJobIsNotFound(t *testing.T) {
	svc, _ := newReportFixture(t)

	_, err := svc.Status(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
