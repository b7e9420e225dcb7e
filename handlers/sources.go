// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/middleware"
	"github.com/danielhkuo/odr-frontend/models"
)

type AnnotationSourceHandler struct {
	db *gorm.DB
}

func NewAnnotationSourceHandler(db *gorm.DB) *AnnotationSourceHandler {
	return &AnnotationSourceHandler{db: db}
}

// List handles GET /api/annotation-sources
func (h *AnnotationSourceHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := h.db.WithContext(r.Context())
	for _, f := range []string{"name", "ecosystem", "type"} {
		if v := query.Get(f); v != "" {
			q = q.Where(f+" = ?", v)
		}
	}

	resp, err := listPage[models.AnnotationSource](r, q)
	if err != nil {
		slog.Error("failed to list annotation sources", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Create handles POST /api/annotation-sources
func (h *AnnotationSourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.AnnotationSourceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == nil || *req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Name is required")
		return
	}

	src := models.AnnotationSource{
		Name:             *req.Name,
		Ecosystem:        req.Ecosystem,
		Type:             req.Type,
		AnnotationSchema: req.AnnotationSchema,
		License:          req.License,
		LicenseURL:       req.LicenseURL,
		AddedByID:        req.AddedByID,
	}
	if src.AddedByID == nil {
		if user, ok := currentUser(r); ok {
			src.AddedByID = &user.ID
		}
	}

	if err := h.db.WithContext(r.Context()).Create(&src).Error; err != nil {
		slog.Error("failed to create annotation source", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create annotation source")
		return
	}

	slog.Info("annotation source created", "source_id", src.ID, "name", src.Name)
	middleware.JSONResponse(w, http.StatusCreated, src)
}

// Get handles GET /api/annotation-sources/{id}
func (h *AnnotationSourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid annotation source ID")
		return
	}

	var src models.AnnotationSource
	if err := h.db.WithContext(r.Context()).First(&src, id).Error; err != nil {
		notFoundOr(w, err, "Annotation source not found")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, src)
}
