// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/odr-frontend/db"
	"github.com/danielhkuo/odr-frontend/features"
	"github.com/danielhkuo/odr-frontend/models"
	"github.com/danielhkuo/odr-frontend/testutil"
)

func TestFeatureToggleAPITable(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	_, err := db.SeedFeatureToggles(t.Context(), gdb)
	require.NoError(t, err)

	// A long TTL shows that writes invalidate rather than wait for expiry
	fs := features.NewService(gdb, time.Hour)
	handler := NewFeatureToggleHandler(gdb, fs)

	t.Run("list filters", func(t *testing.T) {
		tests := []struct {
			query    string
			expected int64
		}{
			{"", 2},
			{"?isEnabled=true", 1},
			{"?featureName=Show%20Datasets", 1},
			{"?featureName=Show%20Datasets&isEnabled=true", 0},
		}
		for _, tt := range tests {
			w := httptest.NewRecorder()
			handler.List(w, testutil.MakeRequest("GET", "/api/feature-toggles"+tt.query, nil, nil))
			testutil.AssertStatus(t, w, http.StatusOK)
			var resp models.ListResponse
			testutil.AssertJSON(t, w, &resp)
			assert.Equal(t, tt.expected, resp.Count, tt.query)
		}
	})

	t.Run("create", func(t *testing.T) {
		tests := []struct {
			name           string
			body           models.FeatureToggleRequest
			expectedStatus int
		}{
			{"new toggle", models.FeatureToggleRequest{FeatureName: ptr("Embeddings Search"), IsEnabled: ptr(true)}, http.StatusCreated},
			{"duplicate", models.FeatureToggleRequest{FeatureName: ptr(features.ShowDatasets)}, http.StatusBadRequest},
			{"missing name", models.FeatureToggleRequest{IsEnabled: ptr(true)}, http.StatusBadRequest},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := httptest.NewRecorder()
				handler.Create(w, testutil.MakeRequest("POST", "/api/feature-toggles", tt.body, nil))
				testutil.AssertStatus(t, w, tt.expectedStatus)
			})
		}

		enabled, err := fs.Enabled(t.Context(), "Embeddings Search")
		require.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("update", func(t *testing.T) {
		enabled, err := fs.Enabled(t.Context(), features.ShowDatasets)
		require.NoError(t, err)
		require.False(t, enabled)

		req := testutil.MakeRequest("PUT", "/api/feature-toggles/Show%20Datasets", models.FeatureToggleRequest{IsEnabled: ptr(true)}, nil)
		req.SetPathValue("name", features.ShowDatasets)
		w := httptest.NewRecorder()
		handler.Update(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var toggle models.FeatureToggle
		testutil.AssertJSON(t, w, &toggle)
		assert.True(t, toggle.IsEnabled)

		enabled, err = fs.Enabled(t.Context(), features.ShowDatasets)
		require.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("update unknown", func(t *testing.T) {
		req := testutil.MakeRequest("PUT", "/api/feature-toggles/Nope", models.FeatureToggleRequest{IsEnabled: ptr(true)}, nil)
		req.SetPathValue("name", "Nope")
		w := httptest.NewRecorder()
		handler.Update(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}
