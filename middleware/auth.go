// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/odr-frontend/auth"
)

// Authenticate attaches the session user, if any, to the request context
func Authenticate(sm *auth.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sm.CurrentUser(r)
			if err != nil {
				if !errors.Is(err, auth.ErrNoSession) {
					slog.Error("failed to resolve session", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// Authorize enforces, in order: a session, an active account, an
// accepted DCO, and superuser rights under /admin and for admin-only API
// writes. Pages are redirected with 303; API paths get a JSON 401/403
// instead.
func Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if isPublicPath(path) {
			next.ServeHTTP(w, r)
			return
		}

		user, ok := auth.UserFromContext(r.Context())
		switch {
		case !ok:
			deny(w, r, "/auth", http.StatusUnauthorized, "Authentication required")
		case path == "/signout":
			next.ServeHTTP(w, r)
		case !user.IsActive:
			if strings.HasPrefix(path, "/inactive") {
				next.ServeHTTP(w, r)
				return
			}
			deny(w, r, "/inactive", http.StatusForbidden, "Account is inactive")
		case !user.DCOAccepted && !strings.HasPrefix(path, "/dco"):
			deny(w, r, "/dco", http.StatusForbidden, "The DCO must be accepted first")
		case (strings.HasPrefix(path, "/admin") || isAdminWrite(r)) && !user.IsSuperuser:
			deny(w, r, "/", http.StatusForbidden, "Superuser access required")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func deny(w http.ResponseWriter, r *http.Request, location string, status int, message string) {
	if IsAPIPath(r.URL.Path) {
		ErrorResponse(w, status, message)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// adminCollections may only be changed by superusers. User updates are
// checked per field by the handler.
var adminCollections = []string{"/api/teams", "/api/user-teams", "/api/feature-toggles"}

func isAdminWrite(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	path := r.URL.Path
	if path == "/api/users" || strings.HasPrefix(path, "/api/users/") {
		return r.Method != http.MethodPut
	}
	for _, prefix := range adminCollections {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func isPublicPath(path string) bool {
	return strings.HasPrefix(path, "/auth") || path == "/health" || path == "/metrics"
}

// IsAPIPath reports whether path serves JSON to scripts rather than pages
func IsAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/") || strings.Contains(path, "/api/") || strings.HasSuffix(path, "/api")
}
