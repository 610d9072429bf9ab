package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Omarhersan/todoApp/internal/auth"
	"github.com/Omarhersan/todoApp/internal/service"
)

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.userService.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	auth.SetSessionCookie(w, user.ID, s.cfg.Production())
	respondWithJSON(w, http.StatusCreated, map[string]any{
		"status": http.StatusCreated,
		"data":   map[string]any{"user": user},
	})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.userService.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	auth.SetSessionCookie(w, user.ID, s.cfg.Production())
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status": http.StatusOK,
		"data":   map[string]any{"user": user},
	})
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":  http.StatusOK,
		"message": "Logged out successfully",
	})
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := s.cookies.ResolveUserID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := s.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// Stale cookie referencing a deleted user.
			auth.ClearSessionCookie(w)
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"status": http.StatusOK,
		"data":   map[string]any{"user": user},
	})
}
