// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/odr-frontend/features"
	"github.com/danielhkuo/odr-frontend/middleware"
	"github.com/danielhkuo/odr-frontend/models"
	"github.com/danielhkuo/odr-frontend/upload"
)

// UploadHandler accepts HDR images and JSONL annotation files
type UploadHandler struct {
	pipeline  *upload.Pipeline
	features  *features.Service
	maxUpload int64
}

func NewUploadHandler(p *upload.Pipeline, fs *features.Service, maxUpload int64) *UploadHandler {
	return &UploadHandler{pipeline: p, features: fs, maxUpload: maxUpload}
}

// Images handles POST /upload/images
func (h *UploadHandler) Images(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.features.Enabled(r.Context(), features.HDRImageUpload)
	if err != nil {
		slog.Error("failed to read feature toggle", "feature", features.HDRImageUpload, "error", err)
		middleware.ActionResponse(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}
	if !enabled {
		middleware.ActionResponse(w, http.StatusForbidden, "HDR image upload is disabled")
		return
	}

	name, data, err := formFile(w, r, h.maxUpload)
	if errors.Is(err, errTooLarge) {
		middleware.ActionResponse(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	if err != nil {
		middleware.ActionResponse(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	userID := r.FormValue("userId")

	res, err := h.pipeline.UploadHDR(r.Context(), name, data, userID)
	switch {
	case errors.Is(err, upload.ErrNoFile):
		middleware.ActionResponse(w, http.StatusBadRequest, "No file uploaded")
	case errors.Is(err, upload.ErrNoUser):
		middleware.ActionResponse(w, http.StatusBadRequest, "No user ID provided")
	case err != nil:
		slog.Error("HDR upload failed", "file", name, "user_id", userID, "error", err)
		middleware.ActionResponse(w, http.StatusInternalServerError, "Failed to upload file")
	default:
		middleware.JSONResponse(w, http.StatusOK, res)
	}
}

// Annotations handles POST /upload/annotations. userId defaults to the
// session user.
func (h *UploadHandler) Annotations(w http.ResponseWriter, r *http.Request) {
	name, data, err := formFile(w, r, h.maxUpload)
	if errors.Is(err, errTooLarge) {
		middleware.JSONResponse(w, http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: "File too large", Message: err.Error()})
		return
	}
	if err != nil {
		middleware.JSONResponse(w, http.StatusBadRequest, models.ErrorResponse{Error: "No file uploaded"})
		return
	}

	userID := r.FormValue("userId")
	if userID == "" {
		if user, ok := currentUser(r); ok {
			userID = strconv.FormatUint(uint64(user.ID), 10)
		}
	}

	res, err := h.pipeline.UploadJSONL(r.Context(), name, data, userID)
	switch {
	case errors.Is(err, upload.ErrNoFile):
		middleware.JSONResponse(w, http.StatusBadRequest, models.ErrorResponse{Error: "No file uploaded"})
	case errors.Is(err, upload.ErrNoUser):
		middleware.JSONResponse(w, http.StatusBadRequest, models.ErrorResponse{Error: "No user ID provided"})
	case errors.Is(err, upload.ErrMalformedLine):
		middleware.JSONResponse(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid JSONL file", Message: err.Error()})
	case err != nil:
		slog.Error("JSONL upload failed", "file", name, "user_id", userID, "error", err)
		middleware.JSONResponse(w, http.StatusInternalServerError,
			models.ErrorResponse{Error: "Failed to upload file", Message: err.Error()})
	default:
		middleware.JSONResponse(w, http.StatusOK, res)
	}
}
