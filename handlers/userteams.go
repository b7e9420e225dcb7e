// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/db"
	"github.com/danielhkuo/odr-frontend/middleware"
	"github.com/danielhkuo/odr-frontend/models"
)

var (
	errUserNotFound  = errors.New("User not found")
	errTeamNotFound  = errors.New("Team not found")
	errAlreadyMember = errors.New("User is already a member of this team")
)

type UserTeamHandler struct {
	db *gorm.DB
}

func NewUserTeamHandler(db *gorm.DB) *UserTeamHandler {
	return &UserTeamHandler{db: db}
}

// List handles GET /api/user-teams
func (h *UserTeamHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUint(r, "userId")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	teamID, err := queryUint(r, "teamId")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	q := h.db.WithContext(r.Context()).Model(&models.UserTeam{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if teamID != nil {
		q = q.Where("team_id = ?", *teamID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		slog.Error("failed to count memberships", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	limit, offset := paging(r)
	rows := []models.UserTeam{}
	if err := q.Order("team_id, user_id").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		slog.Error("failed to list memberships", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ListResponse{Data: rows, Count: total})
}

// Create handles POST /api/user-teams
func (h *UserTeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.UserTeamRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == nil || req.TeamID == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "User ID and team ID are required")
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleMember && role != models.RoleAdmin {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Role must be member or admin")
		return
	}

	ut, err := addMember(r.Context(), h.db, *req.UserID, *req.TeamID, role)
	switch {
	case errors.Is(err, errUserNotFound), errors.Is(err, errTeamNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errAlreadyMember):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case err != nil:
		slog.Error("failed to add team member", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add user to team")
	default:
		middleware.JSONResponse(w, http.StatusCreated, ut)
	}
}

// Delete handles DELETE /api/user-teams?userId=&teamId=
func (h *UserTeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err1 := queryUint(r, "userId")
	teamID, err2 := queryUint(r, "teamId")
	if err1 != nil || err2 != nil || userID == nil || teamID == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "User ID and team ID are required")
		return
	}

	affected, err := removeMember(r.Context(), h.db, *userID, *teamID)
	if err != nil {
		slog.Error("failed to remove team member", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove user from team")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Membership not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addMember checks both sides exist and inserts the membership
func addMember(ctx context.Context, gdb *gorm.DB, userID, teamID uint, role string) (*models.UserTeam, error) {
	tx := gdb.WithContext(ctx)

	var n int64
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errUserNotFound
	}
	if err := tx.Model(&models.Team{}).Where("id = ?", teamID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errTeamNotFound
	}
	if err := tx.Model(&models.UserTeam{}).Where("user_id = ? AND team_id = ?", userID, teamID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, errAlreadyMember
	}

	ut := models.UserTeam{UserID: userID, TeamID: teamID, Role: role}
	err := tx.Create(&ut).Error
	if db.IsUniqueViolation(err) {
		return nil, errAlreadyMember
	}
	if err != nil {
		return nil, err
	}
	slog.Info("user added to team", "user_id", userID, "team_id", teamID, "role", role)
	return &ut, nil
}

func removeMember(ctx context.Context, gdb *gorm.DB, userID, teamID uint) (int64, error) {
	res := gdb.WithContext(ctx).
		Where("user_id = ? AND team_id = ?", userID, teamID).
		Delete(&models.UserTeam{})
	if res.Error == nil && res.RowsAffected > 0 {
		slog.Info("user removed from team", "user_id", userID, "team_id", teamID)
	}
	return res.RowsAffected, res.Error
}
