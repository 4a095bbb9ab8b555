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

type mockTaskStore struct {
	tasks     map[string]*models.Task
	assignees map[string][]models.TaskAssignee
	graded    map[string]map[string]bool
}

func (m *mockTaskStore) Create(ctx context.Context, task *models.Task) error {
	if m.tasks == nil {
		m.tasks = make(map[string]*models.Task)
	}
	task.ID = uuid.NewString()
	stored := *task
	m.tasks[task.ID] = &stored
	return nil
}

func (m *mockTaskStore) GetByID(ctx context.Context, id string) (*models.Task, error) {
	if t, ok := m.tasks[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTaskStore) ListByGroup(ctx context.Context, groupID string) ([]models.Task, error) {
	var out []models.Task
	for _, t := range m.tasks {
		if t.GroupID == groupID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockTaskStore) Update(ctx context.Context, task *models.Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return sql.ErrNoRows
	}
	stored := *task
	m.tasks[task.ID] = &stored
	return nil
}

func (m *mockTaskStore) SetStatus(ctx context.Context, id string, status models.TaskStatus) error {
	if t, ok := m.tasks[id]; ok {
		t.Status = status
		return nil
	}
	return sql.ErrNoRows
}

func (m *mockTaskStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.tasks[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskStore) AddAssignee(ctx context.Context, assignee *models.TaskAssignee) error {
	if m.assignees == nil {
		m.assignees = make(map[string][]models.TaskAssignee)
	}
	m.assignees[assignee.TaskID] = append(m.assignees[assignee.TaskID], *assignee)
	return nil
}

func (m *mockTaskStore) RemoveAssignee(ctx context.Context, taskID, studentID string) error {
	kept := m.assignees[taskID][:0]
	for _, a := range m.assignees[taskID] {
		if a.StudentID != studentID {
			kept = append(kept, a)
		}
	}
	m.assignees[taskID] = kept
	m.syncGraded(taskID)
	return nil
}

// syncGraded mirrors the repository behavior of flipping a task to graded
// once every remaining assignee holds a grade.
func (m *mockTaskStore) syncGraded(taskID string) {
	task, ok := m.tasks[taskID]
	if !ok || task.Status == models.TaskStatusAppeal || len(m.assignees[taskID]) == 0 {
		return
	}
	for _, a := range m.assignees[taskID] {
		if !m.graded[taskID][a.StudentID] {
			return
		}
	}
	task.Status = models.TaskStatusGraded
}

func (m *mockTaskStore) ListAssignees(ctx context.Context, taskID string) ([]models.TaskAssignee, error) {
	return m.assignees[taskID], nil
}

type mockGroupReader struct {
	members map[string][]string
}

func (m *mockGroupReader) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	for _, u := range m.members[groupID] {
		if u == userID {
			return true, nil
		}
	}
	return false, nil
}

func newTaskFixture() (*TaskService, *mockTaskStore) {
	tasks := &mockTaskStore{
		tasks:     make(map[string]*models.Task),
		assignees: make(map[string][]models.TaskAssignee),
	}
	groups := &mockGroupReader{members: map[string][]string{
		"group-1": {"stu-1", "stu-2"},
	}}
	svc := NewTaskService(tasks, groups, validator.New(), zap.NewNop())
	return svc, tasks
}

func TestCreateTaskDefaultsPriorityAndStatus(t *testing.T) {
	svc, _ := newTaskFixture()

	task, err := svc.Create(context.Background(), "stu-1", CreateTaskRequest{
		Title:   "  Write API docs  ",
		GroupID: "group-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Write API docs", task.Title)
	assert.Equal(t, models.TaskPriorityMedium, task.Priority)
	assert.Equal(t, models.TaskStatusTodo, task.Status)
	assert.Equal(t, "stu-1", task.CreatedBy)
}

func TestCreateTaskRejectsNonMember(t *testing.T) {
	svc, tasks := newTaskFixture()

	_, err := svc.Create(context.Background(), "stu-9", CreateTaskRequest{
		Title:   "Sneak in",
		GroupID: "group-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, tasks.tasks)
}

func TestSetStatusMovesThroughMemberLifecycle(t *testing.T) {
	svc, _ := newTaskFixture()

	created, err := svc.Create(context.Background(), "stu-1", CreateTaskRequest{
		Title: "Implement login", GroupID: "group-1",
	})
	require.NoError(t, err)

	for _, status := range []models.TaskStatus{
		models.TaskStatusInProgress,
		models.TaskStatusDone,
		models.TaskStatusTodo,
	} {
		task, err := svc.SetStatus(context.Background(), created.ID, "stu-2", status)
		require.NoError(t, err)
		assert.Equal(t, status, task.Status)
	}
}

func TestSetStatusRejectsSystemManagedStates(t *testing.T) {
	svc, _ := newTaskFixture()

	created, err := svc.Create(context.Background(), "stu-1", CreateTaskRequest{
		Title: "Implement login", GroupID: "group-1",
	})
	require.NoError(t, err)

	for _, status := range []models.TaskStatus{models.TaskStatusGraded, models.TaskStatusAppeal} {
		_, err := svc.SetStatus(context.Background(), created.ID, "stu-1", status)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}

	_, err = svc.SetStatus(context.Background(), created.ID, "stu-1", models.TaskStatus("archived"))
	require.Error(t, err)
}

func TestSetStatusRejectsGradedTask(t *testing.T) {
	svc, tasks := newTaskFixture()

	created, err := svc.Create(context.Background(), "stu-1", CreateTaskRequest{
		Title: "Implement login", GroupID: "group-1",
	})
	require.NoError(t, err)
	tasks.tasks[created.ID].Status = models.TaskStatusGraded

	_, err = svc.SetStatus(context.Background(), created.ID, "stu-1", models.TaskStatusTodo)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.TaskStatusGraded, tasks.tasks[created.ID].Status)
}

func TestAssignRequiresGroupMembership(t *testing.T) {
	svc, tasks := newTaskFixture()

	created, err := svc.Create(context.Background(), "stu-1", CreateTaskRequest{
		Title: "Implement login", GroupID: "group-1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Assign(context.Background(), created.ID, "stu-2", "stu-1"))
	assert.Len(t, tasks.assignees[created.ID], 1)

	err = svc.Assign(context.Background(), created.ID, "stu-9", "stu-1")
	require.Error(t, err)
	assert.Len(t, tasks.assignees[created.ID], 1)
}

func TestUnassignRemovesAssignee(t *testing.T) {
	svc, tasks := newTaskFixture()

	created, err := svc.Create(context.Background(), "stu-1", CreateTaskRequest{
		Title: "Implement login", GroupID: "group-1",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Assign(context.Background(), created.ID, "stu-2", "stu-1"))

	require.NoError(t, svc.Unassign(context.Background(), created.ID, "stu-2", "stu-1"))
	assert.Empty(t, tasks.assignees[created.ID])
}

func TestUnassignLastUngradedMemberCompletesGrading(t *testing.T) {
	svc, tasks := newTaskFixture()

	created, err := svc.Create(context.Background(), "stu-1", CreateTaskRequest{
		Title: "Implement login", GroupID: "group-1",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Assign(context.Background(), created.ID, "stu-1", "stu-1"))
	require.NoError(t, svc.Assign(context.Background(), created.ID, "stu-2", "stu-1"))

	tasks.tasks[created.ID].Status = models.TaskStatusDone
	tasks.graded = map[string]map[string]bool{created.ID: {"stu-1": true}}

	require.NoError(t, svc.Unassign(context.Background(), created.ID, "stu-2", "stu-1"))

	task, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusGraded, task.Status)
}

func TestGetAttachesAssignees(t *testing.T) {
	svc, _ := newTaskFixture()

	created, err := svc.Create(context.Background(), "stu-1", CreateTaskRequest{
		Title: "Implement login", GroupID: "group-1",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Assign(context.Background(), created.ID, "stu-1", "stu-1"))

	task, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, task.Assignees, 1)
	assert.Equal(t, "stu-1", task.Assignees[0].StudentID)
}
