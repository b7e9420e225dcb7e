// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/db"
	"github.com/danielhkuo/odr-frontend/features"
	"github.com/danielhkuo/odr-frontend/models"
	"github.com/danielhkuo/odr-frontend/testutil"
)

func setupAdmin(t *testing.T) (*gorm.DB, *AdminHandler, *features.Service) {
	t.Helper()
	gdb := testutil.SetupTestDB(t)
	fs := features.NewService(gdb, 0)
	return gdb, NewAdminHandler(gdb, fs), fs
}

func TestAdminToggleUserFlags(t *testing.T) {
	gdb, handler, _ := setupAdmin(t)
	admin := testutil.CreateTestUser(t, gdb, "admin@example.com", true)
	user := testutil.CreateTestUser(t, gdb, "user@example.com", false)

	tests := []struct {
		name           string
		call           func(w http.ResponseWriter, r *http.Request)
		body           any
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "deactivate",
			call:           handler.ToggleActive,
			body:           models.ToggleUserRequest{User: &models.UserFlags{ID: user.ID, IsActive: ptr(false)}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "promote",
			call:           handler.ToggleSuperUser,
			body:           models.ToggleUserRequest{User: &models.UserFlags{ID: user.ID, IsSuperuser: ptr(true)}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "no user",
			call:           handler.ToggleActive,
			body:           map[string]any{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "No user provided",
		},
		{
			name:           "unknown user",
			call:           handler.ToggleActive,
			body:           models.ToggleUserRequest{User: &models.UserFlags{ID: 404, IsActive: ptr(true)}},
			expectedStatus: http.StatusNotFound,
			expectedError:  "User not found",
		},
		{
			name:           "cannot demote self",
			call:           handler.ToggleSuperUser,
			body:           models.ToggleUserRequest{User: &models.UserFlags{ID: admin.ID, IsSuperuser: ptr(false)}},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.AsUser(testutil.MakeRequest("PUT", "/admin/users/api/toggle", tt.body, nil), admin)
			w := httptest.NewRecorder()
			tt.call(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			var resp models.ActionResult
			testutil.AssertJSON(t, w, &resp)
			assert.Equal(t, tt.expectedStatus == http.StatusOK, resp.Success)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, resp.Error)
			}
		})
	}

	var got models.User
	require.NoError(t, gdb.First(&got, user.ID).Error)
	assert.False(t, got.IsActive)
	assert.True(t, got.IsSuperuser)
}

func TestAdminUserDetail(t *testing.T) {
	gdb, handler, _ := setupAdmin(t)
	user := testutil.CreateTestUser(t, gdb, "user@example.com", false)
	team := testutil.CreateTestTeam(t, gdb, "Astro")
	testutil.AddTestMember(t, gdb, user.ID, team.ID, models.RoleAdmin)

	req := testutil.MakeRequest("GET", "/admin/users/1", nil, nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	handler.UserDetail(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var page models.UserDetailPage
	testutil.AssertJSON(t, w, &page)
	assert.Equal(t, "user@example.com", page.User.Email)
	require.Len(t, page.Teams, 1)
	assert.Equal(t, models.TeamWithRole{ID: team.ID, Name: "Astro", Role: models.RoleAdmin}, page.Teams[0])

	req = testutil.MakeRequest("GET", "/admin/users/5", nil, nil)
	req.SetPathValue("id", "5")
	w = httptest.NewRecorder()
	handler.UserDetail(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestAdminTeams(t *testing.T) {
	gdb, handler, _ := setupAdmin(t)
	user := testutil.CreateTestUser(t, gdb, "user@example.com", false)

	w := httptest.NewRecorder()
	handler.CreateTeam(w, testutil.MakeRequest("POST", "/admin/teams/api", models.NewTeamRequest{NewTeamName: " Moon "}, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created struct {
		Success bool        `json:"success"`
		Team    models.Team `json:"team"`
	}
	testutil.AssertJSON(t, w, &created)
	assert.True(t, created.Success)
	assert.Equal(t, "Moon", created.Team.Name)

	actions := []struct {
		name           string
		call           func(w http.ResponseWriter, r *http.Request)
		method         string
		body           any
		expectedStatus int
		expectedError  string
	}{
		{"duplicate team", handler.CreateTeam, "POST", models.NewTeamRequest{NewTeamName: "Moon"}, http.StatusBadRequest, "Team name already exists"},
		{"blank team", handler.CreateTeam, "POST", models.NewTeamRequest{NewTeamName: "  "}, http.StatusBadRequest, "No Team name provided"},
		{"add user", handler.AddUser, "POST", models.TeamUserRequest{UserID: user.ID, TeamID: created.Team.ID}, http.StatusCreated, ""},
		{"add user twice", handler.AddUser, "POST", models.TeamUserRequest{UserID: user.ID, TeamID: created.Team.ID}, http.StatusBadRequest, "User is already in this team"},
		{"add unknown user", handler.AddUser, "POST", models.TeamUserRequest{UserID: 77, TeamID: created.Team.ID}, http.StatusNotFound, "User not found"},
		{"delete without id", handler.DeleteTeam, "DELETE", map[string]any{}, http.StatusBadRequest, "No team ID provided"},
	}
	for _, tt := range actions {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.call(w, testutil.MakeRequest(tt.method, "/admin/teams/api", tt.body, nil))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedError != "" {
				var resp models.ActionResult
				testutil.AssertJSON(t, w, &resp)
				assert.Equal(t, tt.expectedError, resp.Error)
			}
		})
	}

	w = httptest.NewRecorder()
	handler.Teams(w, testutil.MakeRequest("GET", "/admin/teams", nil, nil))
	var page models.TeamsPage
	testutil.AssertJSON(t, w, &page)
	assert.Len(t, page.Teams, 1)
	assert.Len(t, page.TeamsUsers, 1)
	assert.Len(t, page.Users, 1)

	w = httptest.NewRecorder()
	handler.RemoveUser(w, testutil.MakeRequest("POST", "/admin/teams/api/removeUser",
		models.TeamUserRequest{UserID: user.ID, TeamID: created.Team.ID}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	handler.DeleteTeam(w, testutil.MakeRequest("DELETE", "/admin/teams/api", models.TeamIDRequest{TeamID: created.Team.ID}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var n int64
	require.NoError(t, gdb.Model(&models.Team{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestToggleFeatureInvalidatesCache(t *testing.T) {
	gdb, handler, fs := setupAdmin(t)
	_, err := db.SeedFeatureToggles(t.Context(), gdb)
	require.NoError(t, err)

	before, err := fs.Enabled(t.Context(), features.HDRImageUpload)
	require.NoError(t, err)

	var toggle models.FeatureToggle
	require.NoError(t, gdb.Where("feature_name = ?", features.HDRImageUpload).First(&toggle).Error)

	w := httptest.NewRecorder()
	body := models.ToggleFeatureRequest{Feature: &models.FeatureFlag{ID: toggle.ID, IsEnabled: !before}}
	handler.ToggleFeature(w, testutil.MakeRequest("PUT", "/admin/feature-toggles/api/toggleFeature", body, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	after, err := fs.Enabled(t.Context(), features.HDRImageUpload)
	require.NoError(t, err)
	assert.Equal(t, !before, after)

	w = httptest.NewRecorder()
	handler.ToggleFeature(w, testutil.MakeRequest("PUT", "/admin/feature-toggles/api/toggleFeature",
		models.ToggleFeatureRequest{Feature: &models.FeatureFlag{ID: 999}}, nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = httptest.NewRecorder()
	handler.ToggleFeature(w, testutil.MakeRequest("PUT", "/admin/feature-toggles/api/toggleFeature", map[string]any{}, nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = httptest.NewRecorder()
	handler.FeatureToggleList(w, testutil.MakeRequest("GET", "/admin/feature-toggles/api", nil, nil))
	var toggles []models.FeatureToggle
	testutil.AssertJSON(t, w, &toggles)
	assert.NotEmpty(t, toggles)
}

func TestFeatureToggleAPI(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	fs := features.NewService(gdb, 0)
	handler := NewFeatureToggleHandler(gdb, fs)

	w := httptest.NewRecorder()
	handler.Create(w, testutil.MakeRequest("POST", "/api/feature-toggles",
		models.FeatureToggleRequest{FeatureName: ptr("Dark Mode")}, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	enabled, err := fs.Enabled(t.Context(), "Dark Mode")
	require.NoError(t, err)
	assert.False(t, enabled)

	w = httptest.NewRecorder()
	handler.Create(w, testutil.MakeRequest("POST", "/api/feature-toggles",
		models.FeatureToggleRequest{FeatureName: ptr("Dark Mode")}, nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	req := testutil.MakeRequest("PUT", "/api/feature-toggles/Dark%20Mode", models.FeatureToggleRequest{IsEnabled: ptr(true)}, nil)
	req.SetPathValue("name", "Dark Mode")
	w = httptest.NewRecorder()
	handler.Update(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	enabled, err = fs.Enabled(t.Context(), "Dark Mode")
	require.NoError(t, err)
	assert.True(t, enabled)

	req = testutil.MakeRequest("PUT", "/api/feature-toggles/Nope", models.FeatureToggleRequest{IsEnabled: ptr(true)}, nil)
	req.SetPathValue("name", "Nope")
	w = httptest.NewRecorder()
	handler.Update(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = httptest.NewRecorder()
	handler.List(w, testutil.MakeRequest("GET", "/api/feature-toggles?isEnabled=true", nil, nil))
	var resp struct {
		Count int64 `json:"count"`
	}
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, int64(1), resp.Count)
}
