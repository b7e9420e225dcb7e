// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/markbates/goth/gothic"
	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/apiclient"
	"github.com/danielhkuo/odr-frontend/auth"
	"github.com/danielhkuo/odr-frontend/cliparse"
	"github.com/danielhkuo/odr-frontend/middleware"
	"github.com/danielhkuo/odr-frontend/models"
)

// APISessionCookie carries the remote API session id after a password login
const APISessionCookie = "session"

const minPasswordLength = 8

// oauthNotLinked is the /auth error code for an email already held by another sign-in
const oauthNotLinked = "OAuthAccountNotLinked"

// AuthHandler covers OAuth sign-in, password login/registration against
// the remote API, and sign-out.
type AuthHandler struct {
	db        *gorm.DB
	cfg       cliparse.Config
	sessions  *auth.SessionManager
	api       *apiclient.Client
	providers []string
}

func NewAuthHandler(db *gorm.DB, cfg cliparse.Config, sm *auth.SessionManager, api *apiclient.Client, providers []string) *AuthHandler {
	if providers == nil {
		providers = []string{}
	}
	return &AuthHandler{db: db, cfg: cfg, sessions: sm, api: api, providers: providers}
}

// Providers handles GET /auth
func (h *AuthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.ProvidersResponse{Providers: h.providers})
}

// Begin handles GET /auth/{provider}
func (h *AuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	if !auth.HasProvider(provider) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown auth provider")
		return
	}
	gothic.BeginAuthHandler(w, r)
}

// Callback handles GET /auth/{provider}/callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	if !auth.HasProvider(provider) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown auth provider")
		return
	}

	gu, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		slog.Warn("OAuth callback failed", "provider", provider, "error", err)
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return
	}

	user, err := auth.UpsertOAuthUser(r.Context(), h.db, gu)
	if errors.Is(err, auth.ErrAccountNotLinked) {
		http.Redirect(w, r, "/auth?error="+oauthNotLinked, http.StatusSeeOther)
		return
	}
	if err != nil {
		slog.Error("failed to store OAuth user", "provider", provider, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	if _, err := h.sessions.Login(r.Context(), w, r, user.ID); err != nil {
		slog.Error("failed to create session", "user_id", user.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	slog.Info("user signed in", "user_id", user.ID, "provider", provider)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		middleware.JSONResponse(w, http.StatusBadRequest, models.MessageResponse{Message: "Missing username or password"})
		return
	}

	res, err := h.api.Login(r.Context(), username, password)
	if err != nil {
		slog.Warn("password login failed", "username", username, "status", apiclient.StatusCode(err), "error", err)
		middleware.JSONResponse(w, http.StatusBadRequest, models.MessageResponse{Message: "Error logging in user"})
		return
	}

	cookie := &http.Cookie{
		Name:     APISessionCookie,
		Value:    res.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	}
	if !res.ExpiresAt.IsZero() {
		cookie.Expires = res.ExpiresAt
	} else {
		cookie.Expires = time.Now().Add(auth.SessionDuration)
	}
	http.SetCookie(w, cookie)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	username := r.FormValue("username")
	password := r.FormValue("password")
	confirm := r.FormValue("password_confirmation")

	var problem string
	switch {
	case email == "":
		problem = "Missing email"
	case username == "":
		problem = "Missing username"
	case password != confirm:
		problem = "Passwords do not match"
	case len(password) < minPasswordLength:
		problem = "Password must be at least 8 characters long"
	}
	if problem != "" {
		middleware.JSONResponse(w, http.StatusBadRequest, models.MessageResponse{Message: problem})
		return
	}

	created, err := h.api.CreateUser(r.Context(), username, password, email)
	if err != nil || created != username {
		slog.Error("failed to register user", "username", username, "error", err)
		middleware.JSONResponse(w, http.StatusInternalServerError, models.MessageResponse{Message: "Failed to create user"})
		return
	}

	res, err := h.api.Login(r.Context(), username, password)
	if err != nil || res.AccessToken == "" {
		slog.Error("failed to log in registered user", "username", username, "error", err)
		middleware.JSONResponse(w, http.StatusInternalServerError, models.MessageResponse{Message: "Failed to log in user"})
		return
	}

	slog.Info("user registered", "username", username)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Success", Token: res.AccessToken})
}

// Signout handles POST /signout
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		slog.Error("failed to sign out", "error", err)
	}
	http.SetCookie(w, &http.Cookie{Name: APISessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/auth", http.StatusSeeOther)
}

// Inactive handles GET /inactive
func (h *AuthHandler) Inactive(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "Your account is inactive. Contact an administrator to activate it.",
	})
}
