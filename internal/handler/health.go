package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskhub/taskhub/internal/model"
)

// Checker reports the health of one component.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) error

// Check implements Checker.
func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// HealthHandler serves GET /health. The store check decides the status code;
// dependencies are reported next to it and never fail the response.
type HealthHandler struct {
	responder
	service string
	store   Checker
	deps    map[string]Checker
	now     func() time.Time
}

// NewHealthHandler creates a HealthHandler for the named service.
func NewHealthHandler(serviceName string, store Checker, log *slog.Logger, exposeErrors bool) *HealthHandler {
	return &HealthHandler{
		responder: responder{log: log, exposeErrors: exposeErrors},
		service:   serviceName,
		store:     store,
		deps:      map[string]Checker{},
		now:       time.Now,
	}
}

// WithDependency registers a peer that is probed on every health request.
func (h *HealthHandler) WithDependency(name string, c Checker) *HealthHandler {
	h.deps[name] = c
	return h
}

// HandleHealth handles GET /health requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.store.Check(ctx); err != nil {
		h.log.WarnContext(ctx, "store health check failed", "error", err)
		msg := "store unavailable"
		if h.exposeErrors {
			msg = err.Error()
		}
		writeJSON(w, http.StatusServiceUnavailable, model.HealthResponse{
			Status:    model.StatusUnhealthy,
			Service:   h.service,
			Error:     msg,
			Timestamp: model.FormatTime(h.now()),
		})
		return
	}

	resp := model.HealthResponse{
		Status:    model.StatusHealthy,
		Service:   h.service,
		Timestamp: model.FormatTime(h.now()),
	}

	if len(h.deps) > 0 {
		resp.Dependencies = make(map[string]string, len(h.deps))
		for name, dep := range h.deps {
			if err := dep.Check(ctx); err != nil {
				h.log.WarnContext(ctx, "dependency health check failed", "dependency", name, "error", err)
				resp.Dependencies[name] = model.StatusUnhealthy
				continue
			}
			resp.Dependencies[name] = model.StatusHealthy
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
