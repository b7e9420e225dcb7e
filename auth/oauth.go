// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/github"
	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/cliparse"
	"github.com/danielhkuo/odr-frontend/models"
)

// SetupProviders registers every OAuth provider with credentials and
// returns their names. gothic keeps its OAuth state in store.
func SetupProviders(cfg cliparse.Config, store sessions.Store) []string {
	gothic.Store = store
	gothic.GetProviderName = func(r *http.Request) (string, error) {
		if p := r.PathValue("provider"); p != "" {
			return p, nil
		}
		return "", ErrUnknownProvider
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	callback := func(name string) string {
		return base + "/auth/" + name + "/callback"
	}

	providers := make([]goth.Provider, 0, 2)
	if cfg.GithubClientID != "" && cfg.GithubClientSecret != "" {
		slog.Info("Enabling GitHub Auth provider")
		providers = append(providers, github.New(cfg.GithubClientID, cfg.GithubClientSecret,
			callback("github"), "user:email"))
	} else {
		slog.Info("GitHub Auth provider disabled or not configured")
	}
	if cfg.DiscordClientID != "" && cfg.DiscordClientSecret != "" {
		slog.Info("Enabling Discord Auth provider")
		providers = append(providers, discord.New(cfg.DiscordClientID, cfg.DiscordClientSecret,
			callback("discord"), discord.ScopeIdentify, discord.ScopeEmail))
	} else {
		slog.Info("Discord Auth provider disabled or not configured")
	}

	goth.ClearProviders()
	if len(providers) == 0 {
		slog.Warn("No OAuth providers enabled or configured")
		return []string{}
	}
	goth.UseProviders(providers...)

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	sort.Strings(names)
	return names
}

// HasProvider reports whether name is a registered provider
func HasProvider(name string) bool {
	_, err := goth.GetProvider(name)
	return err == nil
}

// UpsertOAuthUser finds or creates the local user for an OAuth identity.
// Identities are matched by provider account id only. A new identity whose
// email already belongs to a user fails with ErrAccountNotLinked, since
// provider emails are not verified. The account row is refreshed with the
// latest tokens.
func UpsertOAuthUser(ctx context.Context, db *gorm.DB, gu goth.User) (*models.User, error) {
	if gu.Provider == "" || gu.UserID == "" {
		return nil, errors.New("oauth user missing provider identity")
	}

	var user models.User
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.Account
		err := tx.Where("provider = ? AND provider_account_id = ?", gu.Provider, gu.UserID).First(&account).Error
		switch {
		case err == nil:
			if err := tx.First(&user, account.UserID).Error; err != nil {
				return fmt.Errorf("load linked user: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if gu.Email != "" {
				var n int64
				if err := tx.Model(&models.User{}).Where("email = ?", gu.Email).Count(&n).Error; err != nil {
					return err
				}
				if n > 0 {
					slog.Warn("OAuth identity not linked to existing email", "provider", gu.Provider)
					return ErrAccountNotLinked
				}
			}
			user = newOAuthUser(gu)
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			slog.Info("user created from OAuth", "user_id", user.ID, "provider", gu.Provider)
			account = models.Account{
				UserID:            user.ID,
				Type:              "oauth",
				Provider:          gu.Provider,
				ProviderAccountID: gu.UserID,
			}
		default:
			return err
		}

		account.AccessToken = optional(gu.AccessToken)
		account.RefreshToken = optional(gu.RefreshToken)
		account.IDToken = optional(gu.IDToken)
		if !gu.ExpiresAt.IsZero() {
			exp := gu.ExpiresAt.Unix()
			account.ExpiresAt = &exp
		}
		tokenType := "bearer"
		account.TokenType = &tokenType
		return tx.Save(&account).Error
	})
	if err != nil {
		return nil, fmt.Errorf("upsert oauth user: %w", err)
	}
	return &user, nil
}

func newOAuthUser(gu goth.User) models.User {
	name := gu.Name
	if name == "" {
		name = gu.NickName
	}
	provider := gu.Provider
	return models.User{
		Email:            gu.Email,
		IsActive:         true,
		IdentityProvider: &provider,
		Name:             optional(name),
		Image:            optional(gu.AvatarURL),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
