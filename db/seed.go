// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/models"
)

// ErrUserNotFound is returned when promoting an email nobody has signed in with
var ErrUserNotFound = errors.New("user not found")

// DefaultFeatureToggles are inserted on startup when missing
var DefaultFeatureToggles = []models.FeatureToggle{
	{FeatureName: "HDR Image Upload", IsEnabled: true, DefaultState: true},
	{FeatureName: "Show Datasets", IsEnabled: false, DefaultState: false},
}

// SeedFeatureToggles inserts each default toggle that does not exist yet.
// Existing toggles keep their current state.
func SeedFeatureToggles(ctx context.Context, gdb *gorm.DB) (int, error) {
	inserted := 0
	for _, def := range DefaultFeatureToggles {
		var count int64
		err := gdb.WithContext(ctx).Model(&models.FeatureToggle{}).
			Where("feature_name = ?", def.FeatureName).
			Count(&count).Error
		if err != nil {
			return inserted, fmt.Errorf("check toggle %q: %w", def.FeatureName, err)
		}
		if count > 0 {
			continue
		}

		toggle := def
		if err := gdb.WithContext(ctx).Create(&toggle).Error; err != nil {
			return inserted, fmt.Errorf("seed toggle %q: %w", def.FeatureName, err)
		}
		inserted++
		slog.Info("feature toggle created", "feature", def.FeatureName, "enabled", def.IsEnabled)
	}
	return inserted, nil
}

// PromoteSuperuser marks the user with email as an active superuser. The
// user must already exist: OAuth identities are never linked to a
// pre-created row, so a placeholder could not sign in.
func PromoteSuperuser(ctx context.Context, gdb *gorm.DB, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.New("email is required")
	}

	var user models.User
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
			if IsNotFound(err) {
				return fmt.Errorf("%w: %s must sign in once first", ErrUserNotFound, email)
			}
			return err
		}
		user.IsActive = true
		user.IsSuperuser = true
		return tx.Model(&user).Updates(map[string]any{"is_active": true, "is_superuser": true}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("promote superuser: %w", err)
	}
	return &user, nil
}
