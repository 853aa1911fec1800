package handler

import (
	"log/slog"
	"net/http"

	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/service"
)

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	responder
	service *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService, log *slog.Logger, exposeErrors bool) *TaskHandler {
	return &TaskHandler{
		responder: responder{log: log, exposeErrors: exposeErrors},
		service:   svc,
	}
}

// HandleList handles GET /api/tasks?user_id=ID requests.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := service.ParseUserID(r.URL.Query().Get("user_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	tasks, err := h.service.ListTasks(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TaskListResponse{Tasks: tasks})
}

// HandleCreate handles POST /api/tasks requests.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	resp, err := h.service.CreateTask(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.log.InfoContext(r.Context(), "task created", "task_id", resp.Task.ID, "user_id", resp.Task.UserID)
	writeJSON(w, http.StatusCreated, resp)
}

// HandleGet handles GET /api/tasks/{id} requests.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.fail(w, r, service.ErrTaskNotFound)
		return
	}

	task, err := h.service.GetTask(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TaskResponse{Task: task})
}

// HandleUpdate handles PUT /api/tasks/{id} requests.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.fail(w, r, service.ErrTaskNotFound)
		return
	}

	var req model.UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.service.UpdateTask(r.Context(), id, req); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Task updated successfully"})
}

// HandleDelete handles DELETE /api/tasks/{id} requests.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.fail(w, r, service.ErrTaskNotFound)
		return
	}

	if err := h.service.DeleteTask(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Task deleted successfully"})
}

// HandleStats handles GET /api/tasks/stats/{user_id} requests.
func (h *TaskHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "user_id")
	if !ok {
		h.fail(w, r, service.ErrInvalidUserID)
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
