// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/odr-frontend/features"
	"github.com/danielhkuo/odr-frontend/middleware"
	"github.com/danielhkuo/odr-frontend/models"
	"github.com/danielhkuo/odr-frontend/storage"
)

const serviceName = "odr_frontend"

// HomeHandler serves the landing page data, the plain file drop and /health
type HomeHandler struct {
	features  *features.Service
	store     storage.Store
	maxUpload int64
}

func NewHomeHandler(fs *features.Service, store storage.Store, maxUpload int64) *HomeHandler {
	return &HomeHandler{features: fs, store: store, maxUpload: maxUpload}
}

// Home handles GET /
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	toggles, err := h.features.Map(r.Context())
	if err != nil {
		slog.Error("failed to load feature toggles", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	page := models.HomePage{FeatureToggles: toggles}
	if user, ok := currentUser(r); ok {
		page.IsAuthenticated = true
		page.IsSuperUser = user.IsSuperuser
		page.User = user
	}
	middleware.JSONResponse(w, http.StatusOK, page)
}

// Upload handles POST /, storing the file as-is under its base name
func (h *HomeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	name, data, err := formFile(w, r, h.maxUpload)
	if errors.Is(err, errTooLarge) {
		middleware.JSONResponse(w, http.StatusRequestEntityTooLarge, models.UploadResult{Error: "File too large"})
		return
	}
	if err != nil {
		middleware.JSONResponse(w, http.StatusBadRequest, models.UploadResult{Error: "No file uploaded"})
		return
	}

	filename := storage.BaseName(name)
	if _, err := storage.CleanName(filename); err != nil {
		middleware.JSONResponse(w, http.StatusBadRequest, models.UploadResult{Error: "No file uploaded"})
		return
	}

	loc, err := h.store.Save(r.Context(), storage.DirRoot, filename, data)
	if err != nil {
		slog.Error("failed to save upload", "file", filename, "error", err)
		middleware.JSONResponse(w, http.StatusInternalServerError, models.UploadResult{Error: "Failed to upload file"})
		return
	}

	slog.Info("file uploaded", "file", filename, "location", loc)
	middleware.JSONResponse(w, http.StatusOK, models.UploadResult{Success: true, Filename: filename})
}

// UploadPage handles GET /upload/images and GET /upload/annotations
func (h *HomeHandler) UploadPage(w http.ResponseWriter, r *http.Request) {
	toggles, err := h.features.Map(r.Context())
	if err != nil {
		slog.Error("failed to load feature toggles", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.UploadPage{FeatureToggles: toggles})
}

// Health handles GET /health
func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Service:   serviceName,
	})
}
