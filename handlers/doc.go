// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP handlers of the ODR frontend.

# Handler Types

Each handler is a struct holding its dependencies, built by a constructor:

  - HomeHandler: landing page data, the plain file drop and /health
  - AuthHandler: OAuth sign-in, password login/registration, sign-out
  - DCOHandler: Developer Certificate of Origin acceptance
  - AdminHandler: user, team and feature toggle administration
  - ModerationHandler: review of pending HDR uploads
  - UploadHandler: HDR image and JSONL annotation uploads
  - UserHandler, TeamHandler, UserTeamHandler, ContentHandler,
    AnnotationHandler, AnnotationSourceHandler, EmbeddingHandler,
    FeatureToggleHandler: the /api REST resources

The REST handlers take only a *gorm.DB:

	users := handlers.NewUserHandler(db)

# REST Conventions

List endpoints accept limit (default 50) and offset (default 0) and
answer {data, count}, where count is the total number of matching rows.
Filters given together are combined with AND. A malformed numeric id is
a 400, an unknown one a 404, and a successful delete a 204.

Errors use middleware.ErrorResponse ({error, message}); admin actions
answer {success, error} through middleware.ActionResponse.

# Uploads

	POST /upload/images       → UploadHandler.Images (gated by "HDR Image Upload")
	POST /upload/annotations  → UploadHandler.Annotations

Both delegate to upload.Pipeline. Accepted and rejected HDR uploads are
moved out of the pending area by ModerationHandler, together with every
file that shares their stem.

# Authorization

Handlers trust the user attached by middleware.Authenticate and the gate
enforced by middleware.Authorize. The few checks that depend on the
request body (changing another user's DCO flag, demoting oneself, reading
pending previews) are made here.
*/
package handlers
