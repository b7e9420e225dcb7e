// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes of the ODR frontend.

# Route Registration

NewRouter builds every handler from a Deps value and returns the mux
wrapped in the request pipeline:

	handler := router.NewRouter(router.Deps{DB: gdb, Config: cfg, ...})

Middleware runs outermost first: CORS, RequestID, WithMetrics,
Authenticate, then the Authorize gate.

# Endpoints

Public:

	GET /health
	GET /metrics
	GET /auth, /auth/{provider}, /auth/{provider}/callback
	POST /auth/login, /auth/register

Signed in (active account, DCO accepted):

	GET  /                       - Landing page data
	POST /                       - Plain file drop
	GET  /upload/images          - Upload page data
	POST /upload/images          - HDR image upload
	POST /upload/annotations     - JSONL bulk annotation upload
	GET  /dco                    - DCO page data
	POST /dco, PUT /dco/api      - DCO acceptance
	POST /signout
	GET  /inactive

Superuser:

	/admin/users, /admin/teams, /admin/feature-toggles and their /api actions
	GET  /admin/moderation       - Pending uploads, 10 per page
	POST /admin/moderation/accept|reject
	GET  /uploads/pending/{file} - Preview image

REST API:

	/api/users, /api/teams, /api/user-teams, /api/contents,
	/api/annotations, /api/annotation-sources, /api/embeddings,
	/api/embeddings/engines, /api/feature-toggles

Writes to teams, user-teams and feature toggles, and creating or
deleting users, need a superuser. Other users may only rename
themselves through PUT /api/users/{id}.
*/
package router
