// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/db"
	"github.com/danielhkuo/odr-frontend/middleware"
	"github.com/danielhkuo/odr-frontend/models"
)

type EmbeddingHandler struct {
	db *gorm.DB
}

func NewEmbeddingHandler(db *gorm.DB) *EmbeddingHandler {
	return &EmbeddingHandler{db: db}
}

// List handles GET /api/embeddings
func (h *EmbeddingHandler) List(w http.ResponseWriter, r *http.Request) {
	contentID, err := queryUint(r, "contentId")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid content ID")
		return
	}
	engineID, err := queryUint(r, "embeddingEngineId")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid embedding engine ID")
		return
	}

	q := h.db.WithContext(r.Context())
	if contentID != nil {
		q = q.Where("content_id = ?", *contentID)
	}
	if engineID != nil {
		q = q.Where("embedding_engine_id = ?", *engineID)
	}

	resp, err := listPage[models.ContentEmbedding](r, q)
	if err != nil {
		slog.Error("failed to list embeddings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Create handles POST /api/embeddings
func (h *EmbeddingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ContentEmbeddingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ContentID == nil || req.EmbeddingEngineID == nil || len(req.Embedding) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			"Content ID, embedding engine ID, and embedding vector are required")
		return
	}

	ctx := r.Context()
	if err := h.db.WithContext(ctx).Select("id").First(&models.Content{}, *req.ContentID).Error; err != nil {
		notFoundOr(w, err, "Content not found")
		return
	}
	if err := h.db.WithContext(ctx).Select("id").First(&models.EmbeddingEngine{}, *req.EmbeddingEngineID).Error; err != nil {
		notFoundOr(w, err, "Embedding engine not found")
		return
	}

	emb := models.ContentEmbedding{
		ContentID:         *req.ContentID,
		EmbeddingEngineID: *req.EmbeddingEngineID,
		FromUserID:        req.FromUserID,
		FromTeamID:        req.FromTeamID,
		Embedding:         req.Embedding,
	}
	if err := h.db.WithContext(ctx).Create(&emb).Error; err != nil {
		slog.Error("failed to create embedding", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create embedding")
		return
	}

	slog.Info("embedding stored", "embedding_id", emb.ID, "content_id", emb.ContentID, "dims", len(emb.Embedding))
	middleware.JSONResponse(w, http.StatusCreated, emb)
}

// ListEngines handles GET /api/embeddings/engines
func (h *EmbeddingHandler) ListEngines(w http.ResponseWriter, r *http.Request) {
	supported, err := queryBool(r, "supported")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid supported filter")
		return
	}

	q := h.db.WithContext(r.Context())
	if t := r.URL.Query().Get("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	if supported != nil {
		q = q.Where("supported = ?", *supported)
	}

	resp, err := listPage[models.EmbeddingEngine](r, q)
	if err != nil {
		slog.Error("failed to list embedding engines", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// CreateEngine handles POST /api/embeddings/engines
func (h *EmbeddingHandler) CreateEngine(w http.ResponseWriter, r *http.Request) {
	var req models.EmbeddingEngineRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == nil || *req.Name == "" || req.Type == nil || *req.Type == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Name and type are required")
		return
	}

	engine := models.EmbeddingEngine{
		Name:        *req.Name,
		Description: req.Description,
		Version:     req.Version,
		Type:        *req.Type,
		Supported:   true,
	}
	if req.Supported != nil {
		engine.Supported = *req.Supported
	}

	err := h.db.WithContext(r.Context()).Create(&engine).Error
	if db.IsUniqueViolation(err) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Embedding engine already exists")
		return
	}
	if err != nil {
		slog.Error("failed to create embedding engine", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create embedding engine")
		return
	}

	slog.Info("embedding engine created", "engine_id", engine.ID, "name", engine.Name)
	middleware.JSONResponse(w, http.StatusCreated, engine)
}
