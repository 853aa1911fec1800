package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/repository"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskStore is the persistence the task service needs.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	ListByUser(ctx context.Context, userID int64) ([]model.Task, error)
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	Update(ctx context.Context, id int64, patch model.TaskPatch, updatedAt string) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	CountByStatus(ctx context.Context, userID int64) (map[string]int, error)
	CountOverdue(ctx context.Context, userID int64, now string) (int, error)
}

// TaskService handles task business logic.
type TaskService struct {
	repo TaskStore
	now  func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo TaskStore) *TaskService {
	return &TaskService{repo: repo, now: time.Now}
}

// ParseUserID parses a user_id query value.
func ParseUserID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrUserIDRequired
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidUserID
	}
	return id, nil
}

// CreateTask validates and stores a new task.
func (s *TaskService) CreateTask(ctx context.Context, req model.CreateTaskRequest) (model.CreateTaskResponse, error) {
	task, err := ValidateNewTask(req)
	if err != nil {
		return model.CreateTaskResponse{}, err
	}

	now := model.FormatTime(s.now())
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.repo.Create(ctx, &task); err != nil {
		return model.CreateTaskResponse{}, err
	}

	return model.CreateTaskResponse{
		Message: "Task created successfully",
		Task:    task,
	}, nil
}

// ListTasks returns the tasks of a user, newest first.
func (s *TaskService) ListTasks(ctx context.Context, userID int64) ([]model.Task, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetTask retrieves a task by ID.
func (s *TaskService) GetTask(ctx context.Context, id int64) (model.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.Task{}, ErrTaskNotFound
		}
		return model.Task{}, err
	}
	return *task, nil
}

// UpdateTask applies a partial update. updated_at is refreshed even when
// the request carries no recognized field.
func (s *TaskService) UpdateTask(ctx context.Context, id int64, req model.UpdateTaskRequest) error {
	patch, err := ValidateTaskUpdate(req)
	if err != nil {
		return err
	}

	n, err := s.repo.Update(ctx, id, patch, model.FormatTime(s.now()))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteTask removes a task.
func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Stats summarizes the tasks of a user.
func (s *TaskService) Stats(ctx context.Context, userID int64) (model.TaskStats, error) {
	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return model.TaskStats{}, err
	}

	byStatus, err := s.repo.CountByStatus(ctx, userID)
	if err != nil {
		return model.TaskStats{}, err
	}

	overdue, err := s.repo.CountOverdue(ctx, userID, model.FormatTime(s.now()))
	if err != nil {
		return model.TaskStats{}, err
	}

	return model.TaskStats{
		TotalTasks:   total,
		ByStatus:     byStatus,
		OverdueTasks: overdue,
	}, nil
}
