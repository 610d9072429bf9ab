package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Omarhersan/todoApp/internal/auth"
	"github.com/Omarhersan/todoApp/internal/domain"
	"github.com/Omarhersan/todoApp/internal/service"
)

// sessionUserID pulls the user id placed on the context by the auth
// middleware. The middleware guarantees presence on every route using it.
func sessionUserID(r *http.Request) uint {
	userID, _ := auth.UserIDFrom(r.Context())
	return userID
}

func todoIDParam(r *http.Request) (uint, error) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid todo ID provided")
	}
	return uint(id), nil
}

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	todos, err := s.todoService.List(r.Context(), sessionUserID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status": http.StatusOK,
		"data":   todos,
	})
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	s.createTodo(w, r, domain.SourceApp)
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request, source string) {
	var req service.CreateTodoRequest

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxError):
			respondWithError(w, http.StatusBadRequest,
				fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset))
		case errors.Is(err, io.ErrUnexpectedEOF):
			respondWithError(w, http.StatusBadRequest, "Request body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			respondWithError(w, http.StatusBadRequest,
				fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset))
		case errors.Is(err, io.EOF):
			respondWithError(w, http.StatusBadRequest, "Request body must not be empty")
		default:
			s.logger.Error("decoding create todo request", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Error processing request")
		}
		return
	}

	todo, err := s.todoService.Create(r.Context(), sessionUserID(r), req, source)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"status": http.StatusCreated,
		"data":   todo,
	})
}

func (s *Server) getTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := todoIDParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	todo, err := s.todoService.Get(r.Context(), sessionUserID(r), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status": http.StatusOK,
		"data":   todo,
	})
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := todoIDParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req service.UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	todo, err := s.todoService.Update(r.Context(), sessionUserID(r), id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status": http.StatusOK,
		"data":   todo,
	})
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := todoIDParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.todoService.Delete(r.Context(), sessionUserID(r), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status": http.StatusOK,
		"id":     id,
	})
}

func (s *Server) todoStatusHandler(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimSpace(r.URL.Query().Get("id"))
	if idStr == "" {
		respondWithError(w, http.StatusBadRequest, "Todo ID is required")
		return
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid todo ID provided")
		return
	}

	status, err := s.todoService.Status(r.Context(), sessionUserID(r), uint(id))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status": http.StatusOK,
		"data":   status,
	})
}

func (s *Server) enhanceHandler(w http.ResponseWriter, r *http.Request) {
	var req service.EnhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	if err := s.todoService.ApplyEnhancement(r.Context(), req); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) pendingHandler(w http.ResponseWriter, r *http.Request) {
	pending, err := s.todoService.ListPending(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pending)
}
