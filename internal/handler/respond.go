package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taskhub/taskhub/internal/middleware"
	"github.com/taskhub/taskhub/internal/service"
)

const maxBodyBytes = 1 << 20 // 1MB

var (
	errInvalidBody  = errors.New("invalid request body")
	errBodyTooLarge = errors.New("request body too large")
)

// responder writes JSON bodies and turns service errors into status codes.
type responder struct {
	log          *slog.Logger
	exposeErrors bool
}

func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse(err.Error()))
	case errors.Is(err, errInvalidBody), errors.Is(err, service.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrTaskNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUserExists):
		writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
	default:
		rs.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"error", err,
		)
		msg := "internal server error"
		if rs.exposeErrors {
			msg += ": " + err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse(msg))
	}
}

// decodeJSON reads a size-limited JSON body into dst. An empty body is
// reported as service.ErrNoData.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errBodyTooLarge
		case errors.Is(err, io.EOF):
			return service.ErrNoData
		default:
			return errInvalidBody
		}
	}
	return nil
}

// pathID parses a numeric URL parameter. Routes constrain the parameter to
// digits, so a failure here is an out-of-range value.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}
