// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/db"
	"github.com/danielhkuo/odr-frontend/middleware"
	"github.com/danielhkuo/odr-frontend/models"
)

var errTeamExists = errors.New("Team name already exists")

type TeamHandler struct {
	db *gorm.DB
}

func NewTeamHandler(db *gorm.DB) *TeamHandler {
	return &TeamHandler{db: db}
}

// List handles GET /api/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.db.WithContext(r.Context())
	if name := r.URL.Query().Get("name"); name != "" {
		q = q.Where("name = ?", name)
	}

	resp, err := listPage[models.Team](r, q)
	if err != nil {
		slog.Error("failed to list teams", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Create handles POST /api/teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.TeamRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Team name is required")
		return
	}

	team, err := createTeam(r.Context(), h.db, *req.Name)
	if errors.Is(err, errTeamExists) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to create team", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create team")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, team)
}

// Get handles GET /api/teams/{id}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	var team models.Team
	if err := h.db.WithContext(r.Context()).First(&team, id).Error; err != nil {
		notFoundOr(w, err, "Team not found")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, team)
}

// Update handles PUT /api/teams/{id}
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	var req models.TeamRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var team models.Team
	if err := h.db.WithContext(r.Context()).First(&team, id).Error; err != nil {
		notFoundOr(w, err, "Team not found")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Team name cannot be empty")
			return
		}
		team.Name = name
	}

	err := h.db.WithContext(r.Context()).Save(&team).Error
	if db.IsUniqueViolation(err) {
		middleware.ErrorResponse(w, http.StatusBadRequest, errTeamExists.Error())
		return
	}
	if err != nil {
		slog.Error("failed to update team", "team_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update team")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, team)
}

// Delete handles DELETE /api/teams/{id}
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	affected, err := deleteTeam(r.Context(), h.db, id)
	if err != nil {
		slog.Error("failed to delete team", "team_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete team")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Team not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Members handles GET /api/teams/{id}/members
func (h *TeamHandler) Members(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	var team models.Team
	if err := h.db.WithContext(r.Context()).First(&team, id).Error; err != nil {
		notFoundOr(w, err, "Team not found")
		return
	}

	members := []models.TeamMember{}
	err := h.db.WithContext(r.Context()).
		Table("user_teams").
		Select("users.id AS user_id, users.email, users.name, user_teams.role").
		Joins("JOIN users ON users.id = user_teams.user_id").
		Where("user_teams.team_id = ?", id).
		Order("users.id").
		Scan(&members).Error
	if err != nil {
		slog.Error("failed to list team members", "team_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ListResponse{Data: members, Count: int64(len(members))})
}

// createTeam inserts a team with a trimmed, unused name
func createTeam(ctx context.Context, gdb *gorm.DB, name string) (*models.Team, error) {
	team := models.Team{Name: strings.TrimSpace(name)}

	var n int64
	if err := gdb.WithContext(ctx).Model(&models.Team{}).Where("name = ?", team.Name).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, errTeamExists
	}

	err := gdb.WithContext(ctx).Create(&team).Error
	if db.IsUniqueViolation(err) {
		return nil, errTeamExists
	}
	if err != nil {
		return nil, err
	}
	slog.Info("team created", "team_id", team.ID, "name", team.Name)
	return &team, nil
}

// deleteTeam removes a team and its memberships in one transaction
func deleteTeam(ctx context.Context, gdb *gorm.DB, id uint) (int64, error) {
	var affected int64
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&models.UserTeam{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Team{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	if err == nil && affected > 0 {
		slog.Info("team deleted", "team_id", id)
	}
	return affected, err
}
