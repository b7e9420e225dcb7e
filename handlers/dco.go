// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/middleware"
	"github.com/danielhkuo/odr-frontend/models"
)

type DCOHandler struct {
	db *gorm.DB
}

func NewDCOHandler(db *gorm.DB) *DCOHandler {
	return &DCOHandler{db: db}
}

// Page handles GET /dco
func (h *DCOHandler) Page(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		middleware.JSONResponse(w, http.StatusUnauthorized, models.MessageResponse{Message: "User not authenticated"})
		return
	}

	page := models.DCOPage{DCOAccepted: user.DCOAccepted, Message: "You have accepted the Developer Certificate of Origin."}
	if !user.DCOAccepted {
		page.Message = "Accept the Developer Certificate of Origin to contribute."
	}
	middleware.JSONResponse(w, http.StatusOK, page)
}

// Accept handles POST /dco
func (h *DCOHandler) Accept(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("acceptDCO") == "" {
		middleware.JSONResponse(w, http.StatusBadRequest,
			models.MessageResponse{Message: "You must accept the DCO to continue"})
		return
	}

	user, ok := currentUser(r)
	if !ok {
		middleware.JSONResponse(w, http.StatusUnauthorized, models.MessageResponse{Message: "User not authenticated"})
		return
	}

	res := h.setDCO(r, user.ID, true)
	if res.Error != nil {
		slog.Error("failed to accept DCO", "user_id", user.ID, "error", res.Error)
		middleware.JSONResponse(w, http.StatusInternalServerError,
			models.MessageResponse{Message: "An error occurred while processing your request"})
		return
	}
	if res.RowsAffected != 1 {
		middleware.JSONResponse(w, http.StatusNotFound, models.MessageResponse{Message: "Error accepting DCO: User not found"})
		return
	}

	slog.Info("DCO accepted", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Set handles PUT /dco/api. Users may only change their own flag unless
// they are superusers.
func (h *DCOHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req models.DCORequest
	if err := middleware.ParseJSONBody(r, &req); err != nil || req.UserID == nil || *req.UserID == 0 || req.DCOAccepted == nil {
		middleware.ActionResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	me, ok := currentUser(r)
	if !ok || (me.ID != *req.UserID && !me.IsSuperuser) {
		middleware.ActionResponse(w, http.StatusForbidden, "Not allowed to change another user's DCO")
		return
	}

	res := h.setDCO(r, *req.UserID, *req.DCOAccepted)
	if res.Error != nil {
		slog.Error("failed to set DCO acceptance", "user_id", *req.UserID, "accepted", *req.DCOAccepted, "error", res.Error)
		middleware.ActionResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if res.RowsAffected != 1 {
		middleware.ActionResponse(w, http.StatusNotFound, "User not found")
		return
	}

	var user models.User
	if err := h.db.WithContext(r.Context()).First(&user, *req.UserID).Error; err != nil {
		slog.Error("failed to reload user", "user_id", *req.UserID, "error", err)
		middleware.ActionResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	slog.Info("DCO acceptance set", "user_id", user.ID, "accepted", user.DCOAccepted)
	middleware.JSONResponse(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

func (h *DCOHandler) setDCO(r *http.Request, userID uint, accepted bool) *gorm.DB {
	return h.db.WithContext(r.Context()).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"dco_accepted": accepted, "updated_at": time.Now()})
}
