// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/models"
)

const (
	SessionCookieName = "odr_session"
	SessionDuration   = 30 * 24 * time.Hour

	tokenKey = "token"
)

// SessionManager ties an encrypted cookie to a row in the sessions table
type SessionManager struct {
	db    *gorm.DB
	store *sessions.CookieStore
}

func NewSessionManager(db *gorm.DB, secret string, secure bool) *SessionManager {
	store := sessions.NewCookieStore(CreateSessionKey(secret), CreateSessionKey(secret+"encryption"))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{db: db, store: store}
}

// Store exposes the cookie store, shared with gothic for OAuth state
func (m *SessionManager) Store() sessions.Store {
	return m.store
}

// Login creates a database session for userID and writes the cookie
func (m *SessionManager) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, userID uint) (string, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return "", err
	}

	sess := models.Session{
		UserID:       userID,
		SessionToken: token,
		Expires:      time.Now().Add(SessionDuration),
	}
	if err := m.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	if err := m.SaveToken(w, r, token); err != nil {
		return "", err
	}
	return token, nil
}

// SaveToken stores token in the session cookie
func (m *SessionManager) SaveToken(w http.ResponseWriter, r *http.Request, token string) error {
	cs, _ := m.store.Get(r, SessionCookieName)
	cs.Values[tokenKey] = token
	if err := cs.Save(r, w); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}

// Token reads the session token from the request cookie
func (m *SessionManager) Token(r *http.Request) (string, bool) {
	cs, err := m.store.Get(r, SessionCookieName)
	if err != nil {
		return "", false
	}
	token, ok := cs.Values[tokenKey].(string)
	return token, ok && token != ""
}

// CurrentUser resolves the request's cookie to an unexpired session's user
func (m *SessionManager) CurrentUser(r *http.Request) (*models.User, error) {
	token, ok := m.Token(r)
	if !ok {
		return nil, ErrNoSession
	}

	var sess models.Session
	err := m.db.WithContext(r.Context()).
		Where("session_token = ? AND expires > ?", token, time.Now()).
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var user models.User
	err = m.db.WithContext(r.Context()).First(&user, sess.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return &user, nil
}

// Logout deletes the database session and expires the cookie
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	if token, ok := m.Token(r); ok {
		err := m.db.WithContext(r.Context()).
			Where("session_token = ?", token).
			Delete(&models.Session{}).Error
		if err != nil {
			slog.Error("failed to delete session", "error", err)
		}
	}

	cs, _ := m.store.Get(r, SessionCookieName)
	cs.Values = map[any]any{}
	cs.Options.MaxAge = -1
	if err := cs.Save(r, w); err != nil {
		return fmt.Errorf("clear session cookie: %w", err)
	}
	return nil
}

// PurgeExpired removes sessions past their expiry
func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	res := m.db.WithContext(ctx).Where("expires <= ?", time.Now()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
