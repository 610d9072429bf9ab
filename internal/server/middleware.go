package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Omarhersan/todoApp/internal/auth"
)

// sessionAuth resolves the browser session cookie and puts the user id on the
// request context. Unauthenticated requests are terminated with 401.
func (s *Server) sessionAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.cookies.ResolveUserID(r)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
	})
}

// externalAuth resolves the caller-supplied identity headers for machine
// callers without browser sessions.
func (s *Server) externalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.headers.ResolveUserID(r)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrMissingIdentity):
				respondWithError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, auth.ErrUnknownUser):
				respondWithError(w, http.StatusNotFound, err.Error())
			default:
				s.logger.Error("resolving external identity", "error", err)
				respondWithError(w, http.StatusInternalServerError, "Failed to resolve user")
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
	})
}

// bearerAuth gates automation routes. The caller names itself via x-call-from
// and must present the bearer key configured for that name.
func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callFrom := strings.TrimSpace(r.Header.Get("x-call-from"))
		key, ok := s.cfg.APIKeys[callFrom]
		authHeader := r.Header.Get("Authorization")
		if !ok || authHeader == "" || authHeader != "Bearer "+key {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
