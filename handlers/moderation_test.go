// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/odr-frontend/models"
	"github.com/danielhkuo/odr-frontend/storage"
	"github.com/danielhkuo/odr-frontend/testutil"
)

func setupModeration(t *testing.T) (*ModerationHandler, *storage.LocalStore, models.User) {
	t.Helper()
	gdb := testutil.SetupTestDB(t)
	uploader := testutil.CreateTestUser(t, gdb, "shooter@example.com", false)

	store := storage.NewLocalStore(t.TempDir())
	require.NoError(t, store.EnsureDirs())
	return NewModerationHandler(gdb, store), store, uploader
}

func savePending(t *testing.T, store storage.Store, stem, uploader string) {
	t.Helper()
	ctx := t.Context()
	_, err := store.Save(ctx, storage.DirPending, stem+".avif", []byte("raw"))
	require.NoError(t, err)
	_, err = store.Save(ctx, storage.DirPending, stem+".jpg", []byte("\xff\xd8\xff preview"))
	require.NoError(t, err)
	sidecar := fmt.Sprintf(`{"uploadedByUser": %q, "hdrStats": {"max": 4.2}, "metadata": {"width": 10}}`, uploader)
	_, err = store.Save(ctx, storage.DirPending, stem+".json", []byte(sidecar))
	require.NoError(t, err)
}

func TestModerationList(t *testing.T) {
	handler, store, uploader := setupModeration(t)

	for i := range 12 {
		savePending(t, store, fmt.Sprintf("1_202501%02dT000000000Z", i+1), "1")
	}
	savePending(t, store, "9_20250201T000000000Z", "9")

	tests := []struct {
		name          string
		query         string
		expectedPage  int
		expectedCount int
	}{
		{"first page", "", 1, 10},
		{"second page", "?page=2", 2, 3},
		{"past the end", "?page=5", 5, 0},
		{"garbage page", "?page=abc", 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.List(w, testutil.MakeRequest("GET", "/admin/moderation"+tt.query, nil, nil))

			testutil.AssertStatus(t, w, http.StatusOK)
			var page struct {
				Images []struct {
					Filename   string         `json:"filename"`
					PreviewURL string         `json:"previewUrl"`
					Metadata   map[string]any `json:"metadata"`
				} `json:"images"`
				CurrentPage int `json:"currentPage"`
				TotalPages  int `json:"totalPages"`
			}
			testutil.AssertJSON(t, w, &page)
			assert.Equal(t, tt.expectedPage, page.CurrentPage)
			assert.Equal(t, 2, page.TotalPages)
			require.Len(t, page.Images, tt.expectedCount)

			if tt.expectedPage == 2 {
				last := page.Images[2]
				assert.Equal(t, "9_20250201T000000000Z.jpg", last.Filename)
				assert.Equal(t, "9", last.Metadata["uploadedByUser"])

				first := page.Images[0]
				assert.Equal(t, "/uploads/pending/"+first.Filename, first.PreviewURL)
				assert.Equal(t, uploader.Email, first.Metadata["uploadedByUser"])
			}
		})
	}
}

func TestModerationMove(t *testing.T) {
	handler, store, _ := setupModeration(t)
	savePending(t, store, "1_20250101T000000000Z", "1")
	savePending(t, store, "1_20250102T000000000Z", "1")

	tests := []struct {
		name           string
		call           func(w http.ResponseWriter, r *http.Request)
		filename       string
		expectedStatus int
		dest           string
	}{
		{"accept", handler.Accept, "1_20250101T000000000Z.jpg", http.StatusOK, storage.DirAccepted},
		{"reject", handler.Reject, "1_20250102T000000000Z.jpg", http.StatusOK, storage.DirRejected},
		{"traversal", handler.Accept, "../secret.jpg", http.StatusBadRequest, ""},
		{"missing", handler.Accept, "nope.jpg", http.StatusNotFound, ""},
		{"empty", handler.Reject, "", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.call(w, testutil.MakeFormRequest("POST", "/admin/moderation", url.Values{"filename": {tt.filename}}))
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.dest == "" {
				return
			}
			moved, err := store.List(t.Context(), tt.dest)
			require.NoError(t, err)
			stem := storage.Stem(tt.filename)
			assert.Equal(t, []string{stem + ".avif", stem + ".jpg", stem + ".json"}, moved)
		})
	}

	left, err := store.List(t.Context(), storage.DirPending)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestPendingPreview(t *testing.T) {
	handler, store, uploader := setupModeration(t)
	savePending(t, store, "1_20250101T000000000Z", "1")
	admin := uploader
	admin.IsSuperuser = true

	tests := []struct {
		name           string
		file           string
		user           *models.User
		expectedStatus int
	}{
		{"superuser", "1_20250101T000000000Z.jpg", &admin, http.StatusOK},
		{"regular user", "1_20250101T000000000Z.jpg", &uploader, http.StatusForbidden},
		{"anonymous", "1_20250101T000000000Z.jpg", nil, http.StatusForbidden},
		{"missing", "2_20250101T000000000Z.jpg", &admin, http.StatusNotFound},
		{"traversal", "..", &admin, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/uploads/pending/x", nil, nil)
			req.SetPathValue("file", tt.file)
			if tt.user != nil {
				req = testutil.AsUser(req, *tt.user)
			}
			w := httptest.NewRecorder()
			handler.Preview(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
				assert.Equal(t, "\xff\xd8\xff preview", w.Body.String())
			}
		})
	}
}
