package api

import (
	"net/http"

	"github.com/google/uuid"
)

// SessionCookie names the cookie that carries the session ID.
const SessionCookie = "lb_session_id"

// maxSessionIDLen bounds a client-supplied session ID.
const maxSessionIDLen = 128

// sessionID returns the caller's session ID, issuing a new one in a cookie
// when the request carries none. The cookie stays readable by page scripts.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" && len(c.Value) <= maxSessionIDLen {
		return c.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		Secure:   isHTTPS(r),
	})
	return id
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
