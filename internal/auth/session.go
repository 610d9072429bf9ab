// Package auth resolves inbound requests to user identities: a session cookie
// for the browser UI or caller-supplied headers for external machine callers.
package auth

import (
	"net/http"
	"strconv"
	"time"
)

// SessionCookieName holds the numeric user id directly.
const SessionCookieName = "user_id"

const sessionMaxAge = 7 * 24 * time.Hour

// SetSessionCookie writes the session cookie after register or login.
func SetSessionCookie(w http.ResponseWriter, userID uint, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    strconv.FormatUint(uint64(userID), 10),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionMaxAge.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie on logout or when the cookie
// references a user that no longer exists.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
