package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/handler"
	"github.com/taskhub/taskhub/internal/middleware"
)

// NewUserRouter returns the route table of the user service.
func NewUserRouter(cfg config.Common, log *slog.Logger, users *handler.UserHandler, health *handler.HealthHandler) http.Handler {
	r := newRouter(cfg, log)

	r.Get("/health", health.HandleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		r.Post("/api/users/register", users.HandleRegister)
		r.Post("/api/users/login", users.HandleLogin)
	})

	r.Get("/api/users/profile/{id:[0-9]+}", users.HandleProfile)
	r.Get("/api/users", users.HandleList)

	return r
}

// NewTaskRouter returns the route table of the task service.
func NewTaskRouter(cfg config.Common, log *slog.Logger, tasks *handler.TaskHandler, health *handler.HealthHandler) http.Handler {
	r := newRouter(cfg, log)

	r.Get("/health", health.HandleHealth)

	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", tasks.HandleList)
		r.Post("/", tasks.HandleCreate)
		r.Get("/stats/{user_id:[0-9]+}", tasks.HandleStats)
		r.Get("/{id:[0-9]+}", tasks.HandleGet)
		r.Put("/{id:[0-9]+}", tasks.HandleUpdate)
		r.Delete("/{id:[0-9]+}", tasks.HandleDelete)
	})

	return r
}

func newRouter(cfg config.Common, log *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Preflight)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}` + "\n"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"error":"method not allowed"}` + "\n"))
	})

	return r
}
