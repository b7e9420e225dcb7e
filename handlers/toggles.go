// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/db"
	"github.com/danielhkuo/odr-frontend/features"
	"github.com/danielhkuo/odr-frontend/middleware"
	"github.com/danielhkuo/odr-frontend/models"
)

type FeatureToggleHandler struct {
	db       *gorm.DB
	features *features.Service
}

func NewFeatureToggleHandler(db *gorm.DB, fs *features.Service) *FeatureToggleHandler {
	return &FeatureToggleHandler{db: db, features: fs}
}

// List handles GET /api/feature-toggles
func (h *FeatureToggleHandler) List(w http.ResponseWriter, r *http.Request) {
	enabled, err := queryBool(r, "isEnabled")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid isEnabled filter")
		return
	}

	q := h.db.WithContext(r.Context())
	if name := r.URL.Query().Get("featureName"); name != "" {
		q = q.Where("feature_name = ?", name)
	}
	if enabled != nil {
		q = q.Where("is_enabled = ?", *enabled)
	}

	resp, err := listPage[models.FeatureToggle](r, q)
	if err != nil {
		slog.Error("failed to list feature toggles", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Create handles POST /api/feature-toggles
func (h *FeatureToggleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.FeatureToggleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.FeatureName == nil || *req.FeatureName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Feature name is required")
		return
	}

	toggle := models.FeatureToggle{FeatureName: *req.FeatureName}
	if req.IsEnabled != nil {
		toggle.IsEnabled = *req.IsEnabled
	}
	if req.DefaultState != nil {
		toggle.DefaultState = *req.DefaultState
	}

	var n int64
	if err := h.db.WithContext(r.Context()).Model(&models.FeatureToggle{}).
		Where("feature_name = ?", toggle.FeatureName).Count(&n).Error; err != nil {
		slog.Error("failed to check feature toggle", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n > 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Feature toggle with this name already exists")
		return
	}

	err := h.db.WithContext(r.Context()).Create(&toggle).Error
	if db.IsUniqueViolation(err) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Feature toggle with this name already exists")
		return
	}
	if err != nil {
		slog.Error("failed to create feature toggle", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create feature toggle")
		return
	}
	h.features.Invalidate()

	slog.Info("feature toggle created", "feature", toggle.FeatureName, "enabled", toggle.IsEnabled)
	middleware.JSONResponse(w, http.StatusCreated, toggle)
}

// Update handles PUT /api/feature-toggles/{name}
func (h *FeatureToggleHandler) Update(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Feature name is required")
		return
	}

	var req models.FeatureToggleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var toggle models.FeatureToggle
	if err := h.db.WithContext(r.Context()).Where("feature_name = ?", name).First(&toggle).Error; err != nil {
		notFoundOr(w, err, "Feature toggle not found")
		return
	}
	if req.IsEnabled != nil {
		toggle.IsEnabled = *req.IsEnabled
	}
	if req.DefaultState != nil {
		toggle.DefaultState = *req.DefaultState
	}

	if err := h.db.WithContext(r.Context()).Save(&toggle).Error; err != nil {
		slog.Error("failed to update feature toggle", "feature", name, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update feature toggle")
		return
	}
	h.features.Invalidate()

	slog.Info("feature toggle updated", "feature", name, "enabled", toggle.IsEnabled)
	middleware.JSONResponse(w, http.StatusOK, toggle)
}
