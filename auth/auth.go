// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/odr-frontend/models"
)

var (
	ErrNoSession        = errors.New("no valid session")
	ErrUnknownProvider  = errors.New("unknown auth provider")
	ErrAccountNotLinked = errors.New("email belongs to an account signed in another way")
)

// GenerateSessionToken creates a random secure session token
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32) // 256 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// CreateSessionKey derives a 32-byte cookie key from a secret.
// AES requires keys of exactly 16, 24, or 32 bytes.
func CreateSessionKey(seed string) []byte {
	sum := sha256.Sum256([]byte(seed))
	return sum[:]
}

type contextKey struct{}

// WithUser returns a copy of ctx carrying the signed-in user
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFromContext returns the signed-in user, if any
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(contextKey{}).(*models.User)
	return u, ok && u != nil
}
