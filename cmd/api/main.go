package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/Omarhersan/todoApp/internal/auth"
	"github.com/Omarhersan/todoApp/internal/config"
	"github.com/Omarhersan/todoApp/internal/database"
	"github.com/Omarhersan/todoApp/internal/domain"
	"github.com/Omarhersan/todoApp/internal/enhancer"
	"github.com/Omarhersan/todoApp/internal/repository"
	"github.com/Omarhersan/todoApp/internal/server"
	"github.com/Omarhersan/todoApp/internal/service"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, worker *enhancer.Worker, logger *slog.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// Let the task in flight reach a terminal status before the pool closes.
	worker.Stop()

	if dbService != nil {
		if err := dbService.Close(); err != nil {
			logger.Error("closing database connection pool", "error", err)
		}
	}

	logger.Info("server exiting")
	done <- true
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	dbService, err := database.New(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	gormDB := dbService.GetDB()

	if err := gormDB.AutoMigrate(&domain.User{}, &domain.Todo{}); err != nil {
		logger.Error("failed to auto-migrate database", "error", err)
		os.Exit(1)
	}

	todoRepo := repository.NewGormTodoRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)

	enhanceService := enhancer.NewService(enhancer.Options{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.EnhanceTimeout,
	}, logger)
	worker := enhancer.NewWorker(enhanceService, todoRepo, cfg.EnhanceQueueSize, cfg.EnhanceTimeout, logger)
	worker.Start()

	todoService := service.NewTodoService(todoRepo, worker, enhanceService, logger)
	userService := service.NewUserService(userRepo, logger)

	headerResolver := auth.HeaderResolver{Users: userRepo}
	apiServer := server.NewServer(cfg, userService, todoService, dbService, headerResolver, logger)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, worker, logger, done)

	logger.Info("starting server", "addr", apiServer.Addr)
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server error", "error", err)
		os.Exit(1)
	}

	<-done
	logger.Info("graceful shutdown complete")
}
