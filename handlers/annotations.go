// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/middleware"
	"github.com/danielhkuo/odr-frontend/models"
)

// annotationView is an annotation plus the ids of its sources
type annotationView struct {
	models.Annotation
	AnnotationSourceIDs []uint `json:"annotationSourceIds"`
}

type AnnotationHandler struct {
	db *gorm.DB
}

func NewAnnotationHandler(db *gorm.DB) *AnnotationHandler {
	return &AnnotationHandler{db: db}
}

// List handles GET /api/annotations
func (h *AnnotationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.db.WithContext(r.Context())
	for param, column := range map[string]string{
		"contentId":  "content_id",
		"fromUserId": "from_user_id",
		"fromTeamId": "from_team_id",
	} {
		v, err := queryUint(r, param)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid "+param)
			return
		}
		if v != nil {
			q = q.Where(column+" = ?", *v)
		}
	}

	resp, err := listPage[models.Annotation](r, q)
	if err != nil {
		slog.Error("failed to list annotations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Create handles POST /api/annotations
func (h *AnnotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.AnnotationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ContentID == nil || *req.ContentID == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Content ID is required")
		return
	}

	var content models.Content
	if err := h.db.WithContext(r.Context()).Select("id").First(&content, *req.ContentID).Error; err != nil {
		notFoundOr(w, err, "Content not found")
		return
	}

	view := annotationView{Annotation: models.Annotation{Annotation: map[string]any{}}}
	applyAnnotationRequest(&view.Annotation, req)
	view.AnnotationSourceIDs = req.AnnotationSourceIDs
	if view.AnnotationSourceIDs == nil {
		view.AnnotationSourceIDs = []uint{}
	}

	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&view.Annotation).Error; err != nil {
			return err
		}
		return linkSources(tx, view.ID, view.AnnotationSourceIDs)
	})
	if err != nil {
		slog.Error("failed to create annotation", "content_id", *req.ContentID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create annotation")
		return
	}

	slog.Info("annotation created", "annotation_id", view.ID, "content_id", view.ContentID)
	middleware.JSONResponse(w, http.StatusCreated, view)
}

// Get handles GET /api/annotations/{id}
func (h *AnnotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid annotation ID")
		return
	}

	view, err := h.load(r.Context(), id)
	if err != nil {
		notFoundOr(w, err, "Annotation not found")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// Update handles PUT /api/annotations/{id}. A present annotationSourceIds
// list replaces the existing links.
func (h *AnnotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid annotation ID")
		return
	}

	var req models.AnnotationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	view, err := h.load(r.Context(), id)
	if err != nil {
		notFoundOr(w, err, "Annotation not found")
		return
	}
	applyAnnotationRequest(&view.Annotation, req)

	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&view.Annotation).Error; err != nil {
			return err
		}
		if req.AnnotationSourceIDs == nil {
			return nil
		}
		if err := tx.Where("annotation_id = ?", id).Delete(&models.AnnotationSourceLink{}).Error; err != nil {
			return err
		}
		view.AnnotationSourceIDs = req.AnnotationSourceIDs
		return linkSources(tx, id, req.AnnotationSourceIDs)
	})
	if err != nil {
		slog.Error("failed to update annotation", "annotation_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update annotation")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// Delete handles DELETE /api/annotations/{id}
func (h *AnnotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid annotation ID")
		return
	}

	var affected int64
	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("annotation_id = ?", id).Delete(&models.AnnotationSourceLink{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Annotation{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		slog.Error("failed to delete annotation", "annotation_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete annotation")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Annotation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AnnotationHandler) load(ctx context.Context, id uint) (*annotationView, error) {
	view := &annotationView{}
	if err := h.db.WithContext(ctx).First(&view.Annotation, id).Error; err != nil {
		return nil, err
	}

	view.AnnotationSourceIDs = []uint{}
	err := h.db.WithContext(ctx).
		Model(&models.AnnotationSourceLink{}).
		Where("annotation_id = ?", id).
		Order("annotation_source_id").
		Pluck("annotation_source_id", &view.AnnotationSourceIDs).Error
	if err != nil {
		return nil, fmt.Errorf("load annotation sources: %w", err)
	}
	return view, nil
}

func linkSources(tx *gorm.DB, annotationID uint, sourceIDs []uint) error {
	if len(sourceIDs) == 0 {
		return nil
	}
	links := make([]models.AnnotationSourceLink, 0, len(sourceIDs))
	seen := map[uint]bool{}
	for _, sid := range sourceIDs {
		if seen[sid] {
			continue
		}
		seen[sid] = true
		links = append(links, models.AnnotationSourceLink{AnnotationID: annotationID, AnnotationSourceID: sid})
	}
	return tx.Create(&links).Error
}

func applyAnnotationRequest(a *models.Annotation, req models.AnnotationRequest) {
	if req.ContentID != nil {
		a.ContentID = *req.ContentID
	}
	if req.Annotation != nil {
		a.Annotation = req.Annotation
	}
	if req.ManuallyAdjusted != nil {
		a.ManuallyAdjusted = *req.ManuallyAdjusted
	}
	if req.OverallRating != nil {
		a.OverallRating = req.OverallRating
	}
	if req.FromUserID != nil {
		a.FromUserID = req.FromUserID
	}
	if req.FromTeamID != nil {
		a.FromTeamID = req.FromTeamID
	}
}
