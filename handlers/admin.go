// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/features"
	"github.com/danielhkuo/odr-frontend/middleware"
	"github.com/danielhkuo/odr-frontend/models"
)

// AdminHandler serves the superuser pages and their JSON actions
type AdminHandler struct {
	db       *gorm.DB
	features *features.Service
}

func NewAdminHandler(db *gorm.DB, fs *features.Service) *AdminHandler {
	return &AdminHandler{db: db, features: fs}
}

// Users handles GET /admin/users
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users := []models.User{}
	if err := h.db.WithContext(r.Context()).Order("id").Find(&users).Error; err != nil {
		slog.Error("failed to load users", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{"users": users})
}

// UserDetail handles GET /admin/users/{id}
func (h *AdminHandler) UserDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var page models.UserDetailPage
	if err := h.db.WithContext(r.Context()).First(&page.User, id).Error; err != nil {
		notFoundOr(w, err, "User not found")
		return
	}

	page.Teams = []models.TeamWithRole{}
	err := h.db.WithContext(r.Context()).
		Table("teams").
		Select("teams.id, teams.name, user_teams.role").
		Joins("JOIN user_teams ON user_teams.team_id = teams.id").
		Where("user_teams.user_id = ?", id).
		Order("teams.id").
		Scan(&page.Teams).Error
	if err != nil {
		slog.Error("failed to load user teams", "user_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, page)
}

// ToggleActive handles PUT /admin/users/api/toggleActive
func (h *AdminHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	var req models.ToggleUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil || req.User == nil || req.User.IsActive == nil {
		middleware.ActionResponse(w, http.StatusBadRequest, "No user provided")
		return
	}
	h.setUserFlag(w, r, req.User.ID, "is_active", *req.User.IsActive)
}

// ToggleSuperUser handles PUT /admin/users/api/toggleSuperUser
func (h *AdminHandler) ToggleSuperUser(w http.ResponseWriter, r *http.Request) {
	var req models.ToggleUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil || req.User == nil || req.User.IsSuperuser == nil {
		middleware.ActionResponse(w, http.StatusBadRequest, "No user provided")
		return
	}
	if me, ok := currentUser(r); ok && me.ID == req.User.ID && !*req.User.IsSuperuser {
		middleware.ActionResponse(w, http.StatusBadRequest, "You cannot remove your own superuser access")
		return
	}
	h.setUserFlag(w, r, req.User.ID, "is_superuser", *req.User.IsSuperuser)
}

func (h *AdminHandler) setUserFlag(w http.ResponseWriter, r *http.Request, id uint, column string, value bool) {
	res := h.db.WithContext(r.Context()).
		Model(&models.User{}).
		Where("id = ?", id).
		Update(column, value)
	if res.Error != nil {
		slog.Error("failed to update user", "user_id", id, "column", column, "error", res.Error)
		middleware.ActionResponse(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	if res.RowsAffected == 0 {
		middleware.ActionResponse(w, http.StatusNotFound, "User not found")
		return
	}

	slog.Info("user updated by admin", "user_id", id, column, value)
	middleware.JSONResponse(w, http.StatusOK, models.ActionResult{Success: true})
}

// Teams handles GET /admin/teams
func (h *AdminHandler) Teams(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := models.TeamsPage{Teams: []models.Team{}, TeamsUsers: []models.UserTeam{}, Users: []models.User{}}

	err := h.db.WithContext(ctx).Order("id").Find(&page.Teams).Error
	if err == nil {
		err = h.db.WithContext(ctx).Order("team_id, user_id").Find(&page.TeamsUsers).Error
	}
	if err == nil {
		err = h.db.WithContext(ctx).Order("id").Find(&page.Users).Error
	}
	if err != nil {
		slog.Error("failed to load teams page", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, page)
}

// CreateTeam handles POST /admin/teams/api
func (h *AdminHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req models.NewTeamRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil || strings.TrimSpace(req.NewTeamName) == "" {
		middleware.ActionResponse(w, http.StatusBadRequest, "No Team name provided")
		return
	}

	team, err := createTeam(r.Context(), h.db, req.NewTeamName)
	if errors.Is(err, errTeamExists) {
		middleware.ActionResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to create team", "error", err)
		middleware.ActionResponse(w, http.StatusInternalServerError, "Failed to create team")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, map[string]any{"success": true, "team": team})
}

// DeleteTeam handles DELETE /admin/teams/api
func (h *AdminHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	var req models.TeamIDRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil || req.TeamID == 0 {
		middleware.ActionResponse(w, http.StatusBadRequest, "No team ID provided")
		return
	}

	affected, err := deleteTeam(r.Context(), h.db, req.TeamID)
	if err != nil {
		slog.Error("failed to delete team", "team_id", req.TeamID, "error", err)
		middleware.ActionResponse(w, http.StatusInternalServerError, "Failed to delete team")
		return
	}
	if affected == 0 {
		middleware.ActionResponse(w, http.StatusNotFound, "Team not found")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ActionResult{Success: true})
}

// AddUser handles POST /admin/teams/api/addUser
func (h *AdminHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req models.TeamUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil || req.UserID == 0 || req.TeamID == 0 {
		middleware.ActionResponse(w, http.StatusBadRequest, "No user ID or team ID provided")
		return
	}

	ut, err := addMember(r.Context(), h.db, req.UserID, req.TeamID, models.RoleMember)
	switch {
	case errors.Is(err, errUserNotFound), errors.Is(err, errTeamNotFound):
		middleware.ActionResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errAlreadyMember):
		middleware.ActionResponse(w, http.StatusBadRequest, "User is already in this team")
	case err != nil:
		slog.Error("failed to add user to team", "error", err)
		middleware.ActionResponse(w, http.StatusInternalServerError, "Failed to add user to team")
	default:
		middleware.JSONResponse(w, http.StatusCreated, map[string]any{"success": true, "team_user": ut})
	}
}

// RemoveUser handles POST /admin/teams/api/removeUser
func (h *AdminHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	var req models.TeamUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil || req.UserID == 0 || req.TeamID == 0 {
		middleware.ActionResponse(w, http.StatusBadRequest, "No user ID or team ID provided")
		return
	}

	if _, err := removeMember(r.Context(), h.db, req.UserID, req.TeamID); err != nil {
		slog.Error("failed to remove user from team", "error", err)
		middleware.ActionResponse(w, http.StatusInternalServerError, "Failed to remove user from team")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ActionResult{Success: true})
}

// FeatureToggles handles GET /admin/feature-toggles
func (h *AdminHandler) FeatureToggles(w http.ResponseWriter, r *http.Request) {
	toggles, err := h.loadToggles(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{"featureToggles": toggles})
}

// FeatureToggleList handles GET /admin/feature-toggles/api
func (h *AdminHandler) FeatureToggleList(w http.ResponseWriter, r *http.Request) {
	toggles, err := h.loadToggles(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, toggles)
}

func (h *AdminHandler) loadToggles(r *http.Request) ([]models.FeatureToggle, error) {
	toggles := []models.FeatureToggle{}
	err := h.db.WithContext(r.Context()).Order("id").Find(&toggles).Error
	if err != nil {
		slog.Error("failed to load feature toggles", "error", err)
	}
	return toggles, err
}

// ToggleFeature handles PUT /admin/feature-toggles/api/toggleFeature
func (h *AdminHandler) ToggleFeature(w http.ResponseWriter, r *http.Request) {
	var req models.ToggleFeatureRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil || req.Feature == nil || req.Feature.ID == 0 {
		middleware.ActionResponse(w, http.StatusBadRequest, "No feature toggle provided")
		return
	}

	var toggle models.FeatureToggle
	if err := h.db.WithContext(r.Context()).First(&toggle, req.Feature.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			middleware.ActionResponse(w, http.StatusNotFound, "Feature toggle not found")
			return
		}
		slog.Error("failed to load feature toggle", "error", err)
		middleware.ActionResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	toggle.IsEnabled = req.Feature.IsEnabled
	if err := h.db.WithContext(r.Context()).Save(&toggle).Error; err != nil {
		slog.Error("failed to update feature toggle", "feature", toggle.FeatureName, "error", err)
		middleware.ActionResponse(w, http.StatusInternalServerError, "Failed to update feature toggle")
		return
	}
	h.features.Invalidate()

	slog.Info("feature toggle switched", "feature", toggle.FeatureName, "enabled", toggle.IsEnabled)
	middleware.JSONResponse(w, http.StatusOK, toggle)
}
