package handler

import (
	"log/slog"
	"net/http"

	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/service"
)

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	responder
	service *service.UserService
}

// NewUserHandler creates a new UserHandler. When exposeErrors is set, 500
// responses carry the underlying error text.
func NewUserHandler(svc *service.UserService, log *slog.Logger, exposeErrors bool) *UserHandler {
	return &UserHandler{
		responder: responder{log: log, exposeErrors: exposeErrors},
		service:   svc,
	}
}

// HandleRegister handles POST /api/users/register requests.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.log.InfoContext(r.Context(), "user registered", "user_id", resp.User.ID)
	writeJSON(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /api/users/login requests.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleProfile handles GET /api/users/profile/{id} requests.
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.fail(w, r, service.ErrUserNotFound)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]model.UserProfile{"user": profile})
}

// HandleList handles GET /api/users requests.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]model.UserProfile{"users": users})
}
