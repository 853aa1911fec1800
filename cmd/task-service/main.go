package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/server"
)

func main() {
	cfg, err := config.LoadTaskService()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := server.NewLogger(cfg.LogLevel).With("service", server.TaskServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := server.NewTaskApp(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("failed to close store", "error", err)
		}
	}()

	log.Info("configuration loaded",
		"env", cfg.Env,
		"driver", cfg.DatabaseDriver,
		"database", server.RedactDSN(cfg.DatabaseDriver, cfg.Database),
		"user_service_url", cfg.UserServiceURL,
	)

	if err := server.Run(ctx, cfg.Addr(), app.Handler, cfg.ShutdownTimeout, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
