// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/middleware"
	"github.com/danielhkuo/odr-frontend/models"
)

type ContentHandler struct {
	db *gorm.DB
}

func NewContentHandler(db *gorm.DB) *ContentHandler {
	return &ContentHandler{db: db}
}

// List handles GET /api/contents. Unknown type/status filters are ignored.
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := h.db.WithContext(r.Context())

	if name := query.Get("name"); name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if t := models.ContentType(query.Get("type")); t.Valid() {
		q = q.Where("type = ?", t)
	}
	if s := models.ContentStatus(query.Get("status")); s.Valid() {
		q = q.Where("status = ?", s)
	}

	resp, err := listPage[models.Content](r, q)
	if err != nil {
		slog.Error("failed to list contents", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Create handles POST /api/contents
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ContentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == nil || *req.Name == "" || req.Type == nil || *req.Type == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Name and type are required")
		return
	}

	content := models.Content{
		Status:     models.StatusPending,
		License:    models.DefaultLicense,
		LicenseURL: models.DefaultLicenseURL,
		Meta:       map[string]any{},
		URL:        []string{},
	}
	if msg := applyContentRequest(&content, req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.db.WithContext(r.Context()).Create(&content).Error; err != nil {
		slog.Error("failed to create content", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create content")
		return
	}

	slog.Info("content created", "content_id", content.ID, "name", content.Name)
	middleware.JSONResponse(w, http.StatusCreated, content)
}

// Get handles GET /api/contents/{id}
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid content ID")
		return
	}

	var content models.Content
	if err := h.db.WithContext(r.Context()).First(&content, id).Error; err != nil {
		notFoundOr(w, err, "Content not found")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, content)
}

// Update handles PUT /api/contents/{id}
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid content ID")
		return
	}

	var req models.ContentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var content models.Content
	if err := h.db.WithContext(r.Context()).First(&content, id).Error; err != nil {
		notFoundOr(w, err, "Content not found")
		return
	}
	if msg := applyContentRequest(&content, req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.db.WithContext(r.Context()).Save(&content).Error; err != nil {
		slog.Error("failed to update content", "content_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update content")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, content)
}

// Delete handles DELETE /api/contents/{id}
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid content ID")
		return
	}

	res := h.db.WithContext(r.Context()).Delete(&models.Content{}, id)
	if res.Error != nil {
		slog.Error("failed to delete content", "content_id", id, "error", res.Error)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete content")
		return
	}
	if res.RowsAffected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Content not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// applyContentRequest copies the fields present in req onto c and
// returns a validation message, or "" when the request is valid
func applyContentRequest(c *models.Content, req models.ContentRequest) string {
	if req.Name != nil {
		if *req.Name == "" {
			return "Name cannot be empty"
		}
		c.Name = *req.Name
	}
	if req.Type != nil {
		t := models.ContentType(*req.Type)
		if !t.Valid() {
			return "Invalid content type"
		}
		c.Type = t
	}
	if req.Status != nil {
		s := models.ContentStatus(*req.Status)
		if !s.Valid() {
			return "Invalid content status"
		}
		c.Status = s
	}
	urls, err := parseURLList(req.URL)
	if err != nil {
		return err.Error()
	}
	if urls != nil {
		c.URL = urls
	}

	if req.Hash != nil {
		c.Hash = *req.Hash
	}
	if req.Phash != nil {
		c.Phash = *req.Phash
	}
	if req.Width != nil {
		c.Width = req.Width
	}
	if req.Height != nil {
		c.Height = req.Height
	}
	if req.Format != nil {
		c.Format = *req.Format
	}
	if req.Size != nil {
		c.Size = *req.Size
	}
	if req.License != nil {
		c.License = *req.License
	}
	if req.LicenseURL != nil {
		c.LicenseURL = *req.LicenseURL
	}
	if req.Flags != nil {
		c.Flags = *req.Flags
	}
	if req.Meta != nil {
		c.Meta = req.Meta
	}
	if req.FromUserID != nil {
		c.FromUserID = req.FromUserID
	}
	if req.FromTeamID != nil {
		c.FromTeamID = req.FromTeamID
	}
	return ""
}
