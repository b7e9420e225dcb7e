// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote, request_id) and completion
(status, duration_ms). RequestID assigns the id and echoes it in the
X-Request-ID header.

# Sessions and the Access Gate

Authenticate resolves the session cookie to a user and stores it in the
request context. Authorize then applies the gate in order:

 1. /auth*, /health and /metrics are public
 2. no session redirects to /auth
 3. an inactive account is sent to /inactive
 4. a user who has not accepted the DCO is sent to /dco
 5. /admin* requires a superuser
 6. writes to teams, user-teams and feature toggles, and creating or
    deleting users, require a superuser

Paths that serve JSON (IsAPIPath) get a 401/403 JSON body instead of a redirect.

# Composition

	handler := middleware.Chain(mux,
		middleware.CORS(cfg.CORSOrigins),
		middleware.RequestID,
		middleware.WithMetrics(m),
		middleware.Authenticate(sessions),
		middleware.Authorize,
	)

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid user ID")
	middleware.ActionResponse(w, http.StatusBadRequest, "No user provided")

# Client IP Extraction

	ip := middleware.GetClientIP(r)
*/
package middleware
