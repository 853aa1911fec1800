package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func healthy() Checker {
	return CheckFunc(func(context.Context) error { return nil })
}

func failing(err error) Checker {
	return CheckFunc(func(context.Context) error { return err })
}

func serveHealth(t *testing.T, h *HealthHandler) (int, model.HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body model.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec.Code, body
}

func TestHealth_Healthy(t *testing.T) {
	h := NewHealthHandler("user-service", healthy(), discardLogger(), false)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	code, body := serveHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.StatusHealthy, body.Status)
	assert.Equal(t, "user-service", body.Service)
	assert.Equal(t, model.FormatTime(fixed), body.Timestamp)
	assert.Empty(t, body.Error)
	assert.Nil(t, body.Dependencies)
}

func TestHealth_StoreDownHidesDetail(t *testing.T) {
	h := NewHealthHandler("user-service", failing(errors.New("unable to open database file")), discardLogger(), false)

	code, body := serveHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, model.StatusUnhealthy, body.Status)
	assert.Equal(t, "store unavailable", body.Error)
}

func TestHealth_StoreDownExposesDetail(t *testing.T) {
	h := NewHealthHandler("user-service", failing(errors.New("unable to open database file")), discardLogger(), true)

	code, body := serveHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unable to open database file", body.Error)
}

func TestHealth_DependencyDoesNotFailResponse(t *testing.T) {
	h := NewHealthHandler("task-service", healthy(), discardLogger(), false).
		WithDependency("user-service", failing(context.DeadlineExceeded))

	code, body := serveHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.StatusHealthy, body.Status)
	assert.Equal(t, map[string]string{"user-service": model.StatusUnhealthy}, body.Dependencies)
}

func TestHealth_DependencyHealthy(t *testing.T) {
	h := NewHealthHandler("task-service", healthy(), discardLogger(), false).
		WithDependency("user-service", healthy())

	code, body := serveHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]string{"user-service": model.StatusHealthy}, body.Dependencies)
}

func TestHealth_StoreDownSkipsDependencies(t *testing.T) {
	probed := false
	h := NewHealthHandler("task-service", failing(errors.New("closed")), discardLogger(), false).
		WithDependency("user-service", CheckFunc(func(context.Context) error {
			probed = true
			return nil
		}))

	code, body := serveHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Nil(t, body.Dependencies)
	assert.False(t, probed)
}
