package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-hub-api/internal/models"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
)

type taskRepo interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	ListByGroup(ctx context.Context, groupID string) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	SetStatus(ctx context.Context, id string, status models.TaskStatus) error
	Delete(ctx context.Context, id string) error
	AddAssignee(ctx context.Context, assignee *models.TaskAssignee) error
	RemoveAssignee(ctx context.Context, taskID, studentID string) error
	ListAssignees(ctx context.Context, taskID string) ([]models.TaskAssignee, error)
}

type groupReader interface {
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// CreateTaskRequest is the task creation payload.
type CreateTaskRequest struct {
	Title          string     `json:"title" validate:"required"`
	Description    *string    `json:"description"`
	Priority       string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *int       `json:"estimated_hours" validate:"omitempty,min=0"`
	GroupID        string     `json:"group_id" validate:"required"`
}

// UpdateTaskRequest rewrites a task's descriptive fields.
type UpdateTaskRequest struct {
	Title          string     `json:"title" validate:"required"`
	Description    *string    `json:"description"`
	Priority       string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *int       `json:"estimated_hours" validate:"omitempty,min=0"`
}

// TaskService manages final-project tasks, their assignees and the
// member-driven portion of the status lifecycle.
type TaskService struct {
	tasks     taskRepo
	groups    groupReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTaskService constructs TaskService.
func NewTaskService(tasks taskRepo, groups groupReader, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{tasks: tasks, groups: groups, validator: validate, logger: logger}
}

// Create inserts a task into the creator's group board.
func (s *TaskService) Create(ctx context.Context, creatorID string, req CreateTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title required")
	}
	member, err := s.groups.IsMember(ctx, req.GroupID, creatorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if !member {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not a group member")
	}

	priority := models.TaskPriority(req.Priority)
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	task := &models.Task{
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Priority:       priority,
		Status:         models.TaskStatusTodo,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		GroupID:        req.GroupID,
		CreatedBy:      creatorID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}
	return task, nil
}

// Get returns a task with its assignees.
func (s *TaskService) Get(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	assignees, err := s.tasks.ListAssignees(ctx, taskID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignees")
	}
	task.Assignees = assignees
	return task, nil
}

// ListByGroup returns a group's tasks.
func (s *TaskService) ListByGroup(ctx context.Context, groupID string) ([]models.Task, error) {
	tasks, err := s.tasks.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	return tasks, nil
}

// Update rewrites a task's descriptive fields. Only group members may edit.
func (s *TaskService) Update(ctx context.Context, taskID, actorID string, req UpdateTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}
	task, err := s.requireMemberTask(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	task.Title = strings.TrimSpace(req.Title)
	task.Description = req.Description
	if req.Priority != "" {
		task.Priority = models.TaskPriority(req.Priority)
	}
	task.DueDate = req.DueDate
	task.EstimatedHours = req.EstimatedHours
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update task")
	}
	return task, nil
}

// SetStatus moves a task through the member-driven lifecycle. The graded
// state is owned by the grading engine and appeal by the appeal flow;
// neither may be set directly.
func (s *TaskService) SetStatus(ctx context.Context, taskID, actorID string, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status")
	}
	if !status.MemberSettable() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status is system-managed")
	}
	task, err := s.requireMemberTask(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if task.Status == models.TaskStatusGraded || task.Status == models.TaskStatusAppeal {
		return nil, appErrors.Clone(appErrors.ErrConflict, "task already graded")
	}
	if err := s.tasks.SetStatus(ctx, taskID, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set status")
	}
	task.Status = status
	return task, nil
}

// Delete removes a task from the board.
func (s *TaskService) Delete(ctx context.Context, taskID, actorID string) error {
	if _, err := s.requireMemberTask(ctx, taskID, actorID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete task")
	}
	return nil
}

// Assign attaches a group member to a task.
func (s *TaskService) Assign(ctx context.Context, taskID, studentID, actorID string) error {
	task, err := s.requireMemberTask(ctx, taskID, actorID)
	if err != nil {
		return err
	}
	member, err := s.groups.IsMember(ctx, task.GroupID, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if !member {
		return appErrors.Clone(appErrors.ErrValidation, "assignee is not a group member")
	}
	assignee := &models.TaskAssignee{TaskID: taskID, StudentID: studentID, AssignedBy: actorID}
	if err := s.tasks.AddAssignee(ctx, assignee); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign task")
	}
	return nil
}

// Unassign detaches a student from a task.
func (s *TaskService) Unassign(ctx context.Context, taskID, studentID, actorID string) error {
	if _, err := s.requireMemberTask(ctx, taskID, actorID); err != nil {
		return err
	}
	if err := s.tasks.RemoveAssignee(ctx, taskID, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unassign task")
	}
	return nil
}

func (s *TaskService) loadTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	return task, nil
}

func (s *TaskService) requireMemberTask(ctx context.Context, taskID, actorID string) (*models.Task, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	member, err := s.groups.IsMember(ctx, task.GroupID, actorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}
	if !member {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not a group member")
	}
	return task, nil
}
