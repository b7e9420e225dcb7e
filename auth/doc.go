// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides sign-in, sessions and token utilities.

# OAuth

SetupProviders registers GitHub and Discord with goth when their client
credentials are configured. Callbacks land on

	<PUBLIC_BASE_URL>/auth/{provider}/callback

UpsertOAuthUser maps a goth.User to a local user: first by linked
account (provider + provider account id), then by email, otherwise a new
active user is created. New users must still accept the DCO.

# Sessions

A session is a row in the sessions table plus an encrypted gorilla
cookie carrying its token:

	token, err := sm.Login(ctx, w, r, user.ID)
	user, err := sm.CurrentUser(r)
	err = sm.Logout(w, r)

Sessions last 30 days. The cookie keys are derived from AUTH_SECRET
with SHA-256 (CreateSessionKey), so rotating the secret signs everyone
out.

# Session Tokens

Tokens are random 32-byte (256-bit) secrets, URL-safe base64 without
padding:

	token, err := auth.GenerateSessionToken()

# Request Context

Middleware stores the signed-in user with WithUser; handlers read it
with UserFromContext.
*/
package auth
