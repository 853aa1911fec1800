package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/taskhub/taskhub/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

const taskColumns = `id, user_id, title, description, priority, status, due_date, created_at, updated_at`

// TaskRepository handles task persistence operations.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task and sets the generated ID on the task struct.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	const query = `INSERT INTO tasks
		(user_id, title, description, priority, status, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		task.UserID,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	task.ID = id
	return nil
}

// ListByUser retrieves all tasks of a user, newest first.
func (r *TaskRepository) ListByUser(ctx context.Context, userID int64) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id DESC`

	tasks := []model.Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	task := &model.Task{}
	if err := r.db.GetContext(ctx, task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	return task, nil
}

// Update overwrites the columns set in patch and always refreshes updated_at.
// It returns the number of rows matched.
func (r *TaskRepository) Update(ctx context.Context, id int64, patch model.TaskPatch, updatedAt string) (int64, error) {
	var (
		sets []string
		args []any
	)

	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Priority != nil {
		set("priority", *patch.Priority)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	switch {
	case patch.ClearDueDate:
		set("due_date", nil)
	case patch.DueDate != nil:
		set("due_date", *patch.DueDate)
	}
	set("updated_at", updatedAt)
	args = append(args, id)

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update task: %w", err)
	}

	return rowsAffected, nil
}

// Delete removes a task and returns the number of rows removed.
func (r *TaskRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete task: %w", err)
	}

	return rowsAffected, nil
}

// CountByUser returns the number of tasks owned by a user.
func (r *TaskRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tasks WHERE user_id = ?`, userID); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

// CountByStatus returns the number of tasks of a user per status label.
func (r *TaskRepository) CountByStatus(ctx context.Context, userID int64) (map[string]int, error) {
	const query = `SELECT status, COUNT(*) AS count FROM tasks WHERE user_id = ? GROUP BY status`

	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountOverdue returns the number of tasks of a user that are due before now
// and not completed. Tasks without a due date are never overdue.
func (r *TaskRepository) CountOverdue(ctx context.Context, userID int64, now string) (int, error) {
	const query = `SELECT COUNT(*) FROM tasks
		WHERE user_id = ? AND due_date IS NOT NULL AND due_date < ? AND status != ?`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, now, model.StatusCompleted); err != nil {
		return 0, fmt.Errorf("count overdue tasks: %w", err)
	}
	return count, nil
}
