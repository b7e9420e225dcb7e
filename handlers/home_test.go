// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/apiclient"
	"github.com/danielhkuo/odr-frontend/db"
	"github.com/danielhkuo/odr-frontend/features"
	"github.com/danielhkuo/odr-frontend/models"
	"github.com/danielhkuo/odr-frontend/storage"
	"github.com/danielhkuo/odr-frontend/testutil"
	"github.com/danielhkuo/odr-frontend/upload"
)

const testUploadLimit = 1 << 20

func setupHome(t *testing.T) (*gorm.DB, *HomeHandler, *storage.LocalStore) {
	t.Helper()
	gdb := testutil.SetupTestDB(t)
	_, err := db.SeedFeatureToggles(t.Context(), gdb)
	require.NoError(t, err)

	store := storage.NewLocalStore(t.TempDir())
	require.NoError(t, store.EnsureDirs())
	return gdb, NewHomeHandler(features.NewService(gdb, time.Minute), store, testUploadLimit), store
}

func TestHome(t *testing.T) {
	gdb, handler, _ := setupHome(t)
	admin := testutil.CreateTestUser(t, gdb, "admin@example.com", true)

	w := httptest.NewRecorder()
	handler.Home(w, testutil.AsUser(testutil.MakeRequest("GET", "/", nil, nil), admin))

	testutil.AssertStatus(t, w, http.StatusOK)
	var page models.HomePage
	testutil.AssertJSON(t, w, &page)
	assert.True(t, page.IsAuthenticated)
	assert.True(t, page.IsSuperUser)
	assert.Equal(t, map[string]bool{features.HDRImageUpload: true, features.ShowDatasets: false}, page.FeatureToggles)

	w = httptest.NewRecorder()
	handler.UploadPage(w, testutil.MakeRequest("GET", "/upload/images", nil, nil))
	var up models.UploadPage
	testutil.AssertJSON(t, w, &up)
	assert.Len(t, up.FeatureToggles, 2)
}

func TestRootUpload(t *testing.T) {
	_, handler, store := setupHome(t)

	tests := []struct {
		name           string
		filename       string
		expectedStatus int
		expectedName   string
	}{
		{"plain file", "notes.txt", http.StatusOK, "notes.txt"},
		{"client directory stripped", `C:\Users\me\photo.dng`, http.StatusOK, "photo.dng"},
		{"no file", "", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Upload(w, testutil.MakeMultipartRequest(t, "POST", "/", tt.filename, []byte("payload"), nil))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			var resp models.UploadResult
			testutil.AssertJSON(t, w, &resp)
			assert.Equal(t, tt.expectedName, resp.Filename)
			if tt.expectedName == "" {
				assert.Equal(t, "No file uploaded", resp.Error)
				return
			}
			data, err := os.ReadFile(store.Path(storage.DirRoot, tt.expectedName))
			require.NoError(t, err)
			assert.Equal(t, "payload", string(data))
		})
	}
}

func TestUploadSizeLimit(t *testing.T) {
	gdb, _, store := setupHome(t)
	fs := features.NewService(gdb, 0)
	const limit = 1024
	home := NewHomeHandler(fs, store, limit)
	uploads := NewUploadHandler(upload.NewPipeline(gdb, nil, store, nil), fs, limit)
	big := make([]byte, 4*limit)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		path    string
		data    []byte
		status  int
	}{
		{"plain drop within limit", home.Upload, "/", []byte("small"), http.StatusOK},
		{"plain drop over limit", home.Upload, "/", big, http.StatusRequestEntityTooLarge},
		{"HDR image over limit", uploads.Images, "/upload/images", big, http.StatusRequestEntityTooLarge},
		{"JSONL over limit", uploads.Annotations, "/upload/annotations", big, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeMultipartRequest(t, "POST", tt.path, "blob.bin", tt.data, map[string]string{"userId": "1"})
			w := httptest.NewRecorder()
			tt.handler(w, req)
			testutil.AssertStatus(t, w, tt.status)
		})
	}

	_, err := os.Stat(store.Path(storage.DirRoot, "blob.bin"))
	require.NoError(t, err, "the small drop is stored")
}

func TestHealth(t *testing.T) {
	_, handler, _ := setupHome(t)

	w := httptest.NewRecorder()
	handler.Health(w, testutil.MakeRequest("GET", "/health", nil, nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.HealthResponse
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "odr_frontend", resp.Service)
	assert.WithinDuration(t, time.Now(), resp.Timestamp, time.Minute)
}

func setupUploads(t *testing.T) (*gorm.DB, *UploadHandler, *storage.LocalStore) {
	t.Helper()
	gdb := testutil.SetupTestDB(t)
	_, err := db.SeedFeatureToggles(t.Context(), gdb)
	require.NoError(t, err)

	store := storage.NewLocalStore(t.TempDir())
	require.NoError(t, store.EnsureDirs())

	api := apiclient.New(testutil.TestAPIURL, 0, 5*time.Second, nil)
	httpmock.ActivateNonDefault(api.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	fs := features.NewService(gdb, 0)
	return gdb, NewUploadHandler(upload.NewPipeline(gdb, api, store, nil), fs, testUploadLimit), store
}

func TestUploadImages(t *testing.T) {
	gdb, handler, store := setupUploads(t)
	b64 := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	httpmock.RegisterResponder(http.MethodPost, testutil.TestAPIURL+apiclient.EndpointCleanMetadata,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{"cleaned_image": b64("clean")}))
	httpmock.RegisterResponder(http.MethodPost, testutil.TestAPIURL+apiclient.EndpointHDRStats,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{"max_luminance": 1000}))
	httpmock.RegisterResponder(http.MethodPost, testutil.TestAPIURL+apiclient.EndpointMetadata,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{"width": 64, "height": 32}))
	httpmock.RegisterResponder(http.MethodPost, testutil.TestAPIURL+apiclient.EndpointJPGPreview,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{"jpg_preview": b64("jpeg")}))

	t.Run("missing file", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Images(w, testutil.MakeMultipartRequest(t, "POST", "/upload/images", "", nil, map[string]string{"userId": "1"}))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("missing user", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Images(w, testutil.MakeMultipartRequest(t, "POST", "/upload/images", "shot.avif", []byte("raw"), nil))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("stored as pending", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Images(w, testutil.MakeMultipartRequest(t, "POST", "/upload/images", "shot.avif", []byte("raw"),
			map[string]string{"userId": "1"}))

		testutil.AssertStatus(t, w, http.StatusOK)
		var res upload.HDRResult
		testutil.AssertJSON(t, w, &res)
		assert.True(t, res.Success)

		pending, err := store.List(t.Context(), storage.DirPending)
		require.NoError(t, err)
		assert.Len(t, pending, 3)

		var content models.Content
		require.NoError(t, gdb.First(&content, res.ContentID).Error)
		assert.Equal(t, res.UniqueFileName, content.Name)
	})

	t.Run("disabled toggle", func(t *testing.T) {
		require.NoError(t, gdb.Model(&models.FeatureToggle{}).
			Where("feature_name = ?", features.HDRImageUpload).
			Update("is_enabled", false).Error)
		handler.features.Invalidate()

		w := httptest.NewRecorder()
		handler.Images(w, testutil.MakeMultipartRequest(t, "POST", "/upload/images", "shot.avif", []byte("raw"),
			map[string]string{"userId": "1"}))
		testutil.AssertStatus(t, w, http.StatusForbidden)
	})
}

func TestUploadAnnotations(t *testing.T) {
	gdb, handler, store := setupUploads(t)
	user := testutil.CreateTestUser(t, gdb, "labeler@example.com", false)

	var fromUsers []any
	httpmock.RegisterResponder(http.MethodPost, testutil.TestAPIURL+apiclient.EndpointAnnotations,
		func(req *http.Request) (*http.Response, error) {
			var body map[string]any
			if err := decodeJSON(req, &body); err != nil {
				return httpmock.NewStringResponse(http.StatusBadRequest, "bad"), nil
			}
			fromUsers = append(fromUsers, body["from_user_id"])
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{"id": 1})
		})

	t.Run("user defaults to the session", func(t *testing.T) {
		data := []byte(`{"filename":"a.jpg","parsed":{"short_caption":"hi"}}` + "\n")
		req := testutil.AsUser(testutil.MakeMultipartRequest(t, "POST", "/upload/annotations", "labels.jsonl", data, nil), user)
		w := httptest.NewRecorder()
		handler.Annotations(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var res upload.JSONLResult
		testutil.AssertJSON(t, w, &res)
		assert.Equal(t, 1, res.ContentCount)
		assert.Equal(t, 1, res.AnnotationsCreated)
		require.Len(t, fromUsers, 1)
		assert.EqualValues(t, user.ID, fromUsers[0])

		saved, err := store.List(t.Context(), storage.DirJSONL)
		require.NoError(t, err)
		assert.Equal(t, []string{res.UniqueFileName}, saved)
	})

	t.Run("malformed line", func(t *testing.T) {
		data := []byte("{\"filename\":\"a.jpg\"}\n{not json\n")
		req := testutil.AsUser(testutil.MakeMultipartRequest(t, "POST", "/upload/annotations", "bad.jsonl", data, nil), user)
		w := httptest.NewRecorder()
		handler.Annotations(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
		var resp models.ErrorResponse
		testutil.AssertJSON(t, w, &resp)
		assert.Equal(t, "Invalid JSONL file", resp.Error)
		assert.Contains(t, resp.Message, "line 2")
	})

	t.Run("no file", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Annotations(w, testutil.AsUser(testutil.MakeMultipartRequest(t, "POST", "/upload/annotations", "", nil, nil), user))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}
