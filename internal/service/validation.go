package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/taskhub/taskhub/internal/model"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

// ErrValidation is wrapped by every input validation failure.
var ErrValidation = errors.New("validation failed")

// validationError carries a client-facing message and unwraps to ErrValidation.
type validationError string

func (e validationError) Error() string { return string(e) }

func (e validationError) Unwrap() error { return ErrValidation }

var (
	ErrNoData               error = validationError("no JSON data provided")
	ErrMissingUserFields    error = validationError("missing required fields")
	ErrUsernameTooShort     error = validationError("username must be at least 3 characters")
	ErrPasswordTooShort     error = validationError("password must be at least 6 characters")
	ErrInvalidEmail         error = validationError("invalid email format")
	ErrCredentialsRequired  error = validationError("username and password required")
	ErrUserIDRequired       error = validationError("user_id is required")
	ErrInvalidUserID        error = validationError("user_id must be an integer")
	ErrTitleRequired        error = validationError("title is required")
	ErrInvalidTaskFieldNull error = validationError("title, priority and status cannot be null")
)

// Registration is a normalized registration request.
type Registration struct {
	Username string
	Email    string
	Password string
}

// ValidateRegistration checks a registration request and returns it trimmed,
// with the email lower-cased. The first violated rule is reported.
func ValidateRegistration(req model.RegisterRequest) (Registration, error) {
	if req.Username == nil || req.Email == nil || req.Password == nil {
		return Registration{}, ErrMissingUserFields
	}

	reg := Registration{
		Username: strings.TrimSpace(*req.Username),
		Email:    strings.ToLower(strings.TrimSpace(*req.Email)),
		Password: *req.Password,
	}

	if utf8.RuneCountInString(reg.Username) < minUsernameLength {
		return Registration{}, ErrUsernameTooShort
	}
	if utf8.RuneCountInString(reg.Password) < minPasswordLength {
		return Registration{}, ErrPasswordTooShort
	}
	if !strings.Contains(reg.Email, "@") {
		return Registration{}, ErrInvalidEmail
	}

	return reg, nil
}

// ValidateLogin checks that both credentials are present and returns the
// trimmed identifier with the raw password.
func ValidateLogin(req model.LoginRequest) (identifier, password string, err error) {
	if req.Username == nil || req.Password == nil {
		return "", "", ErrCredentialsRequired
	}
	return strings.TrimSpace(*req.Username), *req.Password, nil
}

// ValidateNewTask checks a creation request and applies field defaults.
// Timestamps are left for the caller.
func ValidateNewTask(req model.CreateTaskRequest) (model.Task, error) {
	if req.UserID == nil || *req.UserID == 0 {
		return model.Task{}, ErrUserIDRequired
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return model.Task{}, ErrTitleRequired
	}

	task := model.Task{
		UserID:   *req.UserID,
		Title:    *req.Title,
		Priority: model.DefaultPriority,
		Status:   model.DefaultStatus,
		DueDate:  req.DueDate,
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil && *req.Priority != "" {
		task.Priority = *req.Priority
	}
	if req.Status != nil && *req.Status != "" {
		task.Status = *req.Status
	}

	return task, nil
}

// ValidateTaskUpdate turns a partial update request into a patch.
// Absent keys are skipped; a null due_date clears it and a null description
// empties it.
func ValidateTaskUpdate(req model.UpdateTaskRequest) (model.TaskPatch, error) {
	var patch model.TaskPatch

	required := []struct {
		field model.OptionalString
		dst   **string
	}{
		{req.Title, &patch.Title},
		{req.Priority, &patch.Priority},
		{req.Status, &patch.Status},
	}
	for _, r := range required {
		if !r.field.Set {
			continue
		}
		if !r.field.Valid {
			return model.TaskPatch{}, ErrInvalidTaskFieldNull
		}
		v := r.field.Value
		*r.dst = &v
	}

	if req.Description.Set {
		v := req.Description.Value
		patch.Description = &v
	}

	if req.DueDate.Set {
		if req.DueDate.Valid {
			v := req.DueDate.Value
			patch.DueDate = &v
		} else {
			patch.ClearDueDate = true
		}
	}

	return patch, nil
}
