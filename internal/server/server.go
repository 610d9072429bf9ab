package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/Omarhersan/todoApp/internal/auth"
	"github.com/Omarhersan/todoApp/internal/config"
	"github.com/Omarhersan/todoApp/internal/database"
	"github.com/Omarhersan/todoApp/internal/service"
)

type Server struct {
	cfg         config.Config
	userService service.UserService
	todoService service.TodoService
	db          database.Service
	cookies     auth.Resolver
	headers     auth.Resolver
	logger      *slog.Logger
}

// NewServer wires the handlers and returns a ready-to-run http.Server.
func NewServer(cfg config.Config, userService service.UserService, todoService service.TodoService, dbService database.Service, headerResolver auth.Resolver, logger *slog.Logger) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}

	appServer := &Server{
		cfg:         cfg,
		userService: userService,
		todoService: todoService,
		db:          dbService,
		cookies:     auth.CookieResolver{},
		headers:     headerResolver,
		logger:      logger,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
