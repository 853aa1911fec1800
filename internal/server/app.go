// Package server wires configuration, storage, services and routes into a
// runnable HTTP application for each binary.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/crypto"
	"github.com/taskhub/taskhub/internal/handler"
	"github.com/taskhub/taskhub/internal/peer"
	"github.com/taskhub/taskhub/internal/repository"
	"github.com/taskhub/taskhub/internal/service"
)

const (
	UserServiceName = "user-service"
	TaskServiceName = "task-service"
)

// App is a wired service ready to be served.
type App struct {
	Handler http.Handler
	db      *sqlx.DB
}

// Close releases the store.
func (a *App) Close() error {
	return a.db.Close()
}

// NewUserApp opens the user store and builds the user service router.
func NewUserApp(ctx context.Context, cfg config.UserService, log *slog.Logger) (*App, error) {
	db, err := openStore(ctx, cfg.DatabaseDriver, cfg.Database, repository.UsersTable)
	if err != nil {
		return nil, err
	}

	hasher := crypto.NewHasher(crypto.HashParams{
		Memory:      cfg.Argon2MemoryKiB,
		Iterations:  cfg.Argon2Iterations,
		Parallelism: cfg.Argon2Parallelism,
		SaltLength:  crypto.DefaultHashParams().SaltLength,
		KeyLength:   crypto.DefaultHashParams().KeyLength,
	})

	userService := service.NewUserService(repository.NewUserRepository(db), hasher)
	users := handler.NewUserHandler(userService, log, cfg.ExposeErrors())
	health := handler.NewHealthHandler(UserServiceName, storeChecker(db), log, cfg.ExposeErrors())

	return &App{
		Handler: NewUserRouter(cfg.Common, log, users, health),
		db:      db,
	}, nil
}

// NewTaskApp opens the task store and builds the task service router,
// including the health probe against the user service.
func NewTaskApp(ctx context.Context, cfg config.TaskService, log *slog.Logger) (*App, error) {
	db, err := openStore(ctx, cfg.DatabaseDriver, cfg.Database, repository.TasksTable)
	if err != nil {
		return nil, err
	}

	taskService := service.NewTaskService(repository.NewTaskRepository(db))
	tasks := handler.NewTaskHandler(taskService, log, cfg.ExposeErrors())
	health := handler.NewHealthHandler(TaskServiceName, storeChecker(db), log, cfg.ExposeErrors()).
		WithDependency(UserServiceName, peer.NewHealthClient(cfg.UserServiceURL, cfg.UserServiceTimeout))

	return &App{
		Handler: NewTaskRouter(cfg.Common, log, tasks, health),
		db:      db,
	}, nil
}

func openStore(ctx context.Context, driver, dsn, table string) (*sqlx.DB, error) {
	db, err := repository.NewDB(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to %s store: %w", table, err)
	}
	if err := repository.EnsureSchema(ctx, db, driver, table); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func storeChecker(db *sqlx.DB) handler.Checker {
	return handler.CheckFunc(func(ctx context.Context) error {
		return repository.Ping(ctx, db)
	})
}

// RedactDSN returns a form of dsn that is safe to log.
func RedactDSN(driver, dsn string) string {
	if driver != repository.DriverMySQL {
		return dsn
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "<unparsable dsn>"
	}
	if cfg.Passwd != "" {
		cfg.Passwd = "xxxxx"
	}
	return cfg.FormatDSN()
}

// NewLogger builds the process logger for a LOG_LEVEL value.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
