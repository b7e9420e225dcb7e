// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package features

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/models"
)

const cacheKey = "toggles"

// Well-known toggle names
const (
	HDRImageUpload = "HDR Image Upload"
	ShowDatasets   = "Show Datasets"
)

// Service reads feature toggles with a short-lived cache
type Service struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewService(db *gorm.DB, ttl time.Duration) *Service {
	return &Service{db: db, cache: cache.New(ttl, ttl*2)}
}

// Map returns feature name -> enabled. Callers get their own copy.
func (s *Service) Map(ctx context.Context) (map[string]bool, error) {
	if cached, found := s.cache.Get(cacheKey); found {
		return maps.Clone(cached.(map[string]bool)), nil
	}

	var toggles []models.FeatureToggle
	if err := s.db.WithContext(ctx).Order("id").Find(&toggles).Error; err != nil {
		return nil, fmt.Errorf("load feature toggles: %w", err)
	}

	m := make(map[string]bool, len(toggles))
	for _, t := range toggles {
		m[t.FeatureName] = t.IsEnabled
	}
	s.cache.Set(cacheKey, m, cache.DefaultExpiration)
	return maps.Clone(m), nil
}

// Enabled reports whether name is switched on; unknown toggles are off
func (s *Service) Enabled(ctx context.Context, name string) (bool, error) {
	m, err := s.Map(ctx)
	if err != nil {
		return false, err
	}
	return m[name], nil
}

// Invalidate drops the cached map after a toggle write
func (s *Service) Invalidate() {
	s.cache.Delete(cacheKey)
}
