package server

import (
	"net/http"

	"github.com/Omarhersan/todoApp/internal/domain"
)

// External machine callers share the single-todo handlers; only list and
// create differ, the latter tagging the row's source.

func (s *Server) externalListTodosHandler(w http.ResponseWriter, r *http.Request) {
	s.listTodosHandler(w, r)
}

func (s *Server) externalCreateTodoHandler(w http.ResponseWriter, r *http.Request) {
	s.createTodo(w, r, domain.SourceExternalAPI)
}
