package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Omarhersan/todoApp/internal/metrics"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "x-call-from", "x-user-phone", "x-user-id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.healthHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.registerHandler)
		r.Post("/login", s.loginHandler)
		r.Post("/logout", s.logoutHandler)
		r.Get("/me", s.meHandler)
	})

	r.Route("/todos", func(r chi.Router) {
		// Automation routes: bearer key selected by the x-call-from header.
		r.Group(func(r chi.Router) {
			r.Use(s.bearerAuth)
			r.Post("/enhance", s.enhanceHandler)
			r.Get("/pending", s.pendingHandler)
		})

		// Browser routes: session cookie.
		r.Group(func(r chi.Router) {
			r.Use(s.sessionAuth)
			r.Get("/", s.listTodosHandler)
			r.Post("/", s.createTodoHandler)
			r.Get("/status", s.todoStatusHandler)
			r.Get("/{id}", s.getTodoHandler)
			r.Put("/{id}", s.updateTodoHandler)
			r.Delete("/{id}", s.deleteTodoHandler)
		})
	})

	// External variant for machine callers: identity from headers, gated by
	// the same bearer check.
	r.Route("/external/todos", func(r chi.Router) {
		r.Use(s.bearerAuth)
		r.Use(s.externalAuth)
		r.Get("/", s.externalListTodosHandler)
		r.Post("/", s.externalCreateTodoHandler)
		r.Get("/{id}", s.getTodoHandler)
		r.Put("/{id}", s.updateTodoHandler)
		r.Delete("/{id}", s.deleteTodoHandler)
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}
