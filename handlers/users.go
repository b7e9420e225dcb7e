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

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.db.WithContext(r.Context())
	if email := r.URL.Query().Get("email"); email != "" {
		q = q.Where("email = ?", email)
	}

	resp, err := listPage[models.User](r, q)
	if err != nil {
		slog.Error("failed to list users", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Create handles POST /api/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.UserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Email == nil || strings.TrimSpace(*req.Email) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Email is required")
		return
	}

	user := models.User{Email: strings.TrimSpace(*req.Email), IsActive: true}
	applyUserRequest(&user, req)

	if err := h.db.WithContext(r.Context()).Create(&user).Error; err != nil {
		slog.Error("failed to create user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	slog.Info("user created", "user_id", user.ID)
	middleware.JSONResponse(w, http.StatusCreated, user)
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var user models.User
	if err := h.db.WithContext(r.Context()).First(&user, id).Error; err != nil {
		notFoundOr(w, err, "User not found")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req models.UserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Email cannot be empty")
		return
	}

	me, ok := currentUser(r)
	if !ok || (!me.IsSuperuser && (me.ID != id || touchesAccountFlags(req))) {
		slog.Warn("user update refused", "user_id", id, "caller_id", callerID(me))
		middleware.ErrorResponse(w, http.StatusForbidden, "Only superusers may change account flags or other users")
		return
	}

	var user models.User
	if err := h.db.WithContext(r.Context()).First(&user, id).Error; err != nil {
		notFoundOr(w, err, "User not found")
		return
	}

	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	applyUserRequest(&user, req)

	if err := h.db.WithContext(r.Context()).Save(&user).Error; err != nil {
		slog.Error("failed to update user", "user_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var affected int64
	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		for _, dep := range []any{&models.UserTeam{}, &models.Session{}, &models.Account{}} {
			if err := tx.Where("user_id = ?", id).Delete(dep).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.User{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		slog.Error("failed to delete user", "user_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	slog.Info("user deleted", "user_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// touchesAccountFlags reports whether req sets anything beyond the
// caller's own profile name and image
func touchesAccountFlags(req models.UserRequest) bool {
	return req.Email != nil || req.IsActive != nil || req.IsSuperuser != nil ||
		req.DCOAccepted != nil || req.IdentityProvider != nil
}

func callerID(u *models.User) uint {
	if u == nil {
		return 0
	}
	return u.ID
}

func applyUserRequest(u *models.User, req models.UserRequest) {
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.IsSuperuser != nil {
		u.IsSuperuser = *req.IsSuperuser
	}
	if req.DCOAccepted != nil {
		u.DCOAccepted = *req.DCOAccepted
	}
	if req.IdentityProvider != nil {
		u.IdentityProvider = req.IdentityProvider
	}
	if req.Name != nil {
		u.Name = req.Name
	}
	if req.Image != nil {
		u.Image = req.Image
	}
}
