// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/odr-frontend/models"
	"github.com/danielhkuo/odr-frontend/testutil"
)

func TestUserTeamsTable(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	handler := NewUserTeamHandler(gdb)

	alice := testutil.CreateTestUser(t, gdb, "alice@example.com", false)
	bob := testutil.CreateTestUser(t, gdb, "bob@example.com", false)
	red := testutil.CreateTestTeam(t, gdb, "Red")
	blue := testutil.CreateTestTeam(t, gdb, "Blue")

	tests := []struct {
		name           string
		body           models.UserTeamRequest
		expectedStatus int
		expectedRole   string
	}{
		{"default role", models.UserTeamRequest{UserID: &alice.ID, TeamID: &red.ID}, http.StatusCreated, models.RoleMember},
		{"admin role", models.UserTeamRequest{UserID: &bob.ID, TeamID: &red.ID, Role: models.RoleAdmin}, http.StatusCreated, models.RoleAdmin},
		{"second team", models.UserTeamRequest{UserID: &alice.ID, TeamID: &blue.ID}, http.StatusCreated, models.RoleMember},
		{"already member", models.UserTeamRequest{UserID: &alice.ID, TeamID: &red.ID}, http.StatusBadRequest, ""},
		{"bad role", models.UserTeamRequest{UserID: &bob.ID, TeamID: &blue.ID, Role: "owner"}, http.StatusBadRequest, ""},
		{"unknown team", models.UserTeamRequest{UserID: &bob.ID, TeamID: ptr(uint(999))}, http.StatusNotFound, ""},
		{"unknown user", models.UserTeamRequest{UserID: ptr(uint(999)), TeamID: &blue.ID}, http.StatusNotFound, ""},
		{"missing ids", models.UserTeamRequest{UserID: &bob.ID}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run("create "+tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Create(w, testutil.MakeRequest("POST", "/api/user-teams", tt.body, nil))
			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedRole != "" {
				var ut models.UserTeam
				testutil.AssertJSON(t, w, &ut)
				assert.Equal(t, tt.expectedRole, ut.Role)
			}
		})
	}

	t.Run("list", func(t *testing.T) {
		tests := []struct {
			query    string
			expected int64
		}{
			{"", 3},
			{fmt.Sprintf("?userId=%d", alice.ID), 2},
			{fmt.Sprintf("?teamId=%d", red.ID), 2},
			{fmt.Sprintf("?userId=%d&teamId=%d", bob.ID, blue.ID), 0},
		}
		for _, tt := range tests {
			w := httptest.NewRecorder()
			handler.List(w, testutil.MakeRequest("GET", "/api/user-teams"+tt.query, nil, nil))
			testutil.AssertStatus(t, w, http.StatusOK)
			var resp models.ListResponse
			testutil.AssertJSON(t, w, &resp)
			assert.Equal(t, tt.expected, resp.Count, tt.query)
		}

		w := httptest.NewRecorder()
		handler.List(w, testutil.MakeRequest("GET", "/api/user-teams?userId=x", nil, nil))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("delete", func(t *testing.T) {
		path := fmt.Sprintf("/api/user-teams?userId=%d&teamId=%d", alice.ID, red.ID)

		w := httptest.NewRecorder()
		handler.Delete(w, testutil.MakeRequest("DELETE", path, nil, nil))
		testutil.AssertStatus(t, w, http.StatusNoContent)

		w = httptest.NewRecorder()
		handler.Delete(w, testutil.MakeRequest("DELETE", path, nil, nil))
		testutil.AssertStatus(t, w, http.StatusNotFound)

		w = httptest.NewRecorder()
		handler.Delete(w, testutil.MakeRequest("DELETE", "/api/user-teams", nil, nil))
		testutil.AssertStatus(t, w, http.StatusBadRequest)

		var n int64
		require.NoError(t, gdb.Model(&models.UserTeam{}).Where("user_id = ?", alice.ID).Count(&n).Error)
		assert.Equal(t, int64(1), n)
	})
}
