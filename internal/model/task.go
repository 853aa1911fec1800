package model

import (
	"bytes"
	"encoding/json"
)

const (
	DefaultPriority = "medium"
	DefaultStatus   = "pending"
	StatusCompleted = "completed"
)

// Task represents a task row.
type Task struct {
	ID          int64   `db:"id" json:"id"`
	UserID      int64   `db:"user_id" json:"user_id"`
	Title       string  `db:"title" json:"title"`
	Description string  `db:"description" json:"description"`
	Priority    string  `db:"priority" json:"priority"`
	Status      string  `db:"status" json:"status"`
	DueDate     *string `db:"due_date" json:"due_date"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at"`
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	UserID      *int64  `json:"user_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
}

// UpdateTaskRequest represents a partial task update. Keys that are absent
// from the body leave the column untouched.
type UpdateTaskRequest struct {
	Title       OptionalString `json:"title"`
	Description OptionalString `json:"description"`
	Priority    OptionalString `json:"priority"`
	Status      OptionalString `json:"status"`
	DueDate     OptionalString `json:"due_date"`
}

// OptionalString records whether a JSON key was present and whether it was null.
type OptionalString struct {
	Set   bool
	Valid bool
	Value string
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Valid = false
		o.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// TaskPatch is a validated partial update. A nil field is not written;
// ClearDueDate sets due_date to NULL.
type TaskPatch struct {
	Title        *string
	Description  *string
	Priority     *string
	Status       *string
	DueDate      *string
	ClearDueDate bool
}

// Empty reports whether the patch changes no user-visible column.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.DueDate == nil && !p.ClearDueDate
}

// TaskResponse wraps a single task.
type TaskResponse struct {
	Task Task `json:"task"`
}

// CreateTaskResponse is returned by task creation.
type CreateTaskResponse struct {
	Message string `json:"message"`
	Task    Task   `json:"task"`
}

// TaskListResponse wraps a list of tasks.
type TaskListResponse struct {
	Tasks []Task `json:"tasks"`
}

// TaskStats summarizes the tasks of one user.
type TaskStats struct {
	TotalTasks   int            `json:"total_tasks"`
	ByStatus     map[string]int `json:"by_status"`
	OverdueTasks int            `json:"overdue_tasks"`
}

// MessageResponse carries a single human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}
