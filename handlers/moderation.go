// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/middleware"
	"github.com/danielhkuo/odr-frontend/models"
	"github.com/danielhkuo/odr-frontend/storage"
)

const moderationPageSize = 10

// ModerationHandler reviews HDR uploads waiting in the pending area
type ModerationHandler struct {
	db    *gorm.DB
	store storage.Store
}

func NewModerationHandler(db *gorm.DB, store storage.Store) *ModerationHandler {
	return &ModerationHandler{db: db, store: store}
}

// List handles GET /admin/moderation?page=N
func (h *ModerationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	files, err := h.store.List(ctx, storage.DirPending)
	if err != nil {
		slog.Error("failed to list pending uploads", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list pending uploads")
		return
	}

	previews := []string{}
	for _, f := range files {
		if strings.HasSuffix(f, ".jpg") {
			previews = append(previews, f)
		}
	}

	resp := models.ModerationPage{
		Images:      []models.ModerationImage{},
		CurrentPage: page,
		TotalPages:  (len(previews) + moderationPageSize - 1) / moderationPageSize,
	}

	start := (page - 1) * moderationPageSize
	if start < len(previews) {
		end := min(start+moderationPageSize, len(previews))
		emails, err := h.userEmails(r)
		if err != nil {
			slog.Error("failed to load users for moderation", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		for _, name := range previews[start:end] {
			resp.Images = append(resp.Images, models.ModerationImage{
				Filename:   name,
				PreviewURL: "/uploads/pending/" + name,
				Metadata:   h.sidecar(r, name, emails),
			})
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

func (h *ModerationHandler) userEmails(r *http.Request) (map[string]string, error) {
	var users []models.User
	if err := h.db.WithContext(r.Context()).Select("id", "email").Find(&users).Error; err != nil {
		return nil, err
	}
	emails := make(map[string]string, len(users))
	for _, u := range users {
		emails[strconv.FormatUint(uint64(u.ID), 10)] = u.Email
	}
	return emails, nil
}

// sidecar loads the .json next to a preview, swapping the uploader id for an email.
// A missing or unreadable sidecar yields nil metadata.
func (h *ModerationHandler) sidecar(r *http.Request, preview string, emails map[string]string) map[string]any {
	data, err := h.store.Read(r.Context(), storage.DirPending, storage.Stem(preview)+".json")
	if err != nil {
		slog.Warn("pending upload has no metadata", "file", preview, "error", err)
		return nil
	}

	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		slog.Warn("pending upload metadata is not JSON", "file", preview, "error", err)
		return nil
	}

	var uploader string
	switch v := meta["uploadedByUser"].(type) {
	case string:
		uploader = v
	case float64:
		uploader = strconv.FormatFloat(v, 'f', -1, 64)
	}
	if email, ok := emails[uploader]; ok {
		meta["uploadedByUser"] = email
	}
	return meta
}

// Accept handles POST /admin/moderation/accept
func (h *ModerationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.moveUpload(w, r, storage.DirAccepted)
}

// Reject handles POST /admin/moderation/reject
func (h *ModerationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.moveUpload(w, r, storage.DirRejected)
}

// moveUpload moves the preview and every pending file sharing its stem
func (h *ModerationHandler) moveUpload(w http.ResponseWriter, r *http.Request, dest string) {
	ctx := r.Context()
	filename, err := storage.CleanName(r.FormValue("filename"))
	if err != nil {
		middleware.ActionResponse(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	files, err := h.store.List(ctx, storage.DirPending)
	if err != nil {
		slog.Error("failed to list pending uploads", "error", err)
		middleware.ActionResponse(w, http.StatusInternalServerError, "Failed to move file")
		return
	}

	stem := storage.Stem(filename)
	moved := 0
	for _, f := range files {
		if f != filename && storage.Stem(f) != stem {
			continue
		}
		if err := h.store.Move(ctx, f, storage.DirPending, dest); err != nil {
			slog.Error("failed to move upload", "file", f, "dest", dest, "error", err)
			middleware.ActionResponse(w, http.StatusInternalServerError, "Failed to move file")
			return
		}
		moved++
	}
	if moved == 0 {
		middleware.ActionResponse(w, http.StatusNotFound, "File not found")
		return
	}

	slog.Info("upload moderated", "file", filename, "dest", dest, "files", moved)
	middleware.JSONResponse(w, http.StatusOK, models.ActionResult{Success: true})
}

// Preview handles GET /uploads/pending/{file}
func (h *ModerationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if user, ok := currentUser(r); !ok || !user.IsSuperuser {
		middleware.ErrorResponse(w, http.StatusForbidden, "Superuser access required")
		return
	}

	name, err := storage.CleanName(r.PathValue("file"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	data, err := h.store.Read(r.Context(), storage.DirPending, name)
	if errors.Is(err, storage.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		slog.Error("failed to read pending upload", "file", name, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	ctype := mime.TypeByExtension(path.Ext(name))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
