// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/odr-frontend/models"
	"github.com/danielhkuo/odr-frontend/testutil"
)

func TestAnnotationLifecycle(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	handler := NewAnnotationHandler(gdb)
	user := testutil.CreateTestUser(t, gdb, "u@example.com", false)
	content := testutil.CreateTestContent(t, gdb, "a.jpg", user.ID)

	sources := []models.AnnotationSource{{Name: "florence"}, {Name: "human"}, {Name: "clip"}}
	require.NoError(t, gdb.Create(&sources).Error)

	t.Run("content must exist", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := models.AnnotationRequest{ContentID: ptr(uint(99))}
		handler.Create(w, testutil.MakeRequest("POST", "/api/annotations", body, nil))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("content id required", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Create(w, testutil.MakeRequest("POST", "/api/annotations", models.AnnotationRequest{}, nil))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	var created annotationView
	t.Run("create links deduplicated sources", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := models.AnnotationRequest{
			ContentID:           &content.ID,
			Annotation:          map[string]any{"short_caption": "a beach"},
			OverallRating:       ptr(4.5),
			FromUserID:          &user.ID,
			AnnotationSourceIDs: []uint{sources[0].ID, sources[1].ID, sources[0].ID},
		}
		handler.Create(w, testutil.MakeRequest("POST", "/api/annotations", body, nil))

		testutil.AssertStatus(t, w, http.StatusCreated)
		testutil.AssertJSON(t, w, &created)
		assert.Equal(t, content.ID, created.ContentID)
		assert.Equal(t, "a beach", created.Annotation.Annotation["short_caption"])

		var n int64
		require.NoError(t, gdb.Model(&models.AnnotationSourceLink{}).Count(&n).Error)
		assert.Equal(t, int64(2), n)
	})

	t.Run("update replaces sources", func(t *testing.T) {
		req := testutil.MakeRequest("PUT", "/api/annotations/1", models.AnnotationRequest{
			ManuallyAdjusted:    ptr(true),
			AnnotationSourceIDs: []uint{sources[2].ID},
		}, nil)
		req.SetPathValue("id", "1")
		w := httptest.NewRecorder()
		handler.Update(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		req = testutil.MakeRequest("GET", "/api/annotations/1", nil, nil)
		req.SetPathValue("id", "1")
		w = httptest.NewRecorder()
		handler.Get(w, req)

		var got annotationView
		testutil.AssertJSON(t, w, &got)
		assert.True(t, got.ManuallyAdjusted)
		assert.Equal(t, []uint{sources[2].ID}, got.AnnotationSourceIDs)
		require.NotNil(t, got.OverallRating)
		assert.InDelta(t, 4.5, *got.OverallRating, 0.001)
	})

	t.Run("update without sources keeps them", func(t *testing.T) {
		req := testutil.MakeRequest("PUT", "/api/annotations/1", models.AnnotationRequest{OverallRating: ptr(2.0)}, nil)
		req.SetPathValue("id", "1")
		w := httptest.NewRecorder()
		handler.Update(w, req)

		var got annotationView
		testutil.AssertJSON(t, w, &got)
		assert.Equal(t, []uint{sources[2].ID}, got.AnnotationSourceIDs)
	})

	t.Run("list by content", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.List(w, testutil.MakeRequest("GET", "/api/annotations?contentId=1&fromUserId=1", nil, nil))

		var resp struct {
			Count int64 `json:"count"`
		}
		testutil.AssertJSON(t, w, &resp)
		assert.Equal(t, int64(1), resp.Count)
	})

	t.Run("delete removes links", func(t *testing.T) {
		req := testutil.MakeRequest("DELETE", "/api/annotations/1", nil, nil)
		req.SetPathValue("id", "1")
		w := httptest.NewRecorder()
		handler.Delete(w, req)
		testutil.AssertStatus(t, w, http.StatusNoContent)

		var n int64
		require.NoError(t, gdb.Model(&models.AnnotationSourceLink{}).Count(&n).Error)
		assert.Zero(t, n)
	})
}

func TestAnnotationSources(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	handler := NewAnnotationSourceHandler(gdb)
	admin := testutil.CreateTestUser(t, gdb, "admin@example.com", true)

	req := testutil.AsUser(testutil.MakeRequest("POST", "/api/annotation-sources",
		models.AnnotationSourceRequest{Name: ptr("florence-2"), Ecosystem: ptr("huggingface")}, nil), admin)
	w := httptest.NewRecorder()
	handler.Create(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)
	var src models.AnnotationSource
	testutil.AssertJSON(t, w, &src)
	require.NotNil(t, src.AddedByID)
	assert.Equal(t, admin.ID, *src.AddedByID)

	w = httptest.NewRecorder()
	handler.Create(w, testutil.MakeRequest("POST", "/api/annotation-sources", models.AnnotationSourceRequest{}, nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = httptest.NewRecorder()
	handler.List(w, testutil.MakeRequest("GET", "/api/annotation-sources?ecosystem=huggingface", nil, nil))
	var resp struct {
		Data  []models.AnnotationSource `json:"data"`
		Count int64                     `json:"count"`
	}
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, int64(1), resp.Count)

	get := testutil.MakeRequest("GET", "/api/annotation-sources/7", nil, nil)
	get.SetPathValue("id", "7")
	w = httptest.NewRecorder()
	handler.Get(w, get)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestEmbeddings(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	handler := NewEmbeddingHandler(gdb)
	user := testutil.CreateTestUser(t, gdb, "u@example.com", false)
	content := testutil.CreateTestContent(t, gdb, "a.jpg", user.ID)

	w := httptest.NewRecorder()
	handler.CreateEngine(w, testutil.MakeRequest("POST", "/api/embeddings/engines",
		models.EmbeddingEngineRequest{Name: ptr("clip-vit"), Type: ptr("image")}, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var engine models.EmbeddingEngine
	testutil.AssertJSON(t, w, &engine)
	assert.True(t, engine.Supported)

	w = httptest.NewRecorder()
	handler.CreateEngine(w, testutil.MakeRequest("POST", "/api/embeddings/engines",
		models.EmbeddingEngineRequest{Name: ptr("clip-vit"), Type: ptr("image")}, nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	tests := []struct {
		name           string
		body           models.ContentEmbeddingRequest
		expectedStatus int
	}{
		{"valid", models.ContentEmbeddingRequest{ContentID: &content.ID, EmbeddingEngineID: &engine.ID, Embedding: []float32{0.1, 0.2}}, http.StatusCreated},
		{"empty vector", models.ContentEmbeddingRequest{ContentID: &content.ID, EmbeddingEngineID: &engine.ID}, http.StatusBadRequest},
		{"unknown content", models.ContentEmbeddingRequest{ContentID: ptr(uint(9)), EmbeddingEngineID: &engine.ID, Embedding: []float32{1}}, http.StatusNotFound},
		{"unknown engine", models.ContentEmbeddingRequest{ContentID: &content.ID, EmbeddingEngineID: ptr(uint(9)), Embedding: []float32{1}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Create(w, testutil.MakeRequest("POST", "/api/embeddings", tt.body, nil))
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	w = httptest.NewRecorder()
	handler.List(w, testutil.MakeRequest("GET", "/api/embeddings?contentId=1", nil, nil))
	var resp struct {
		Data  []models.ContentEmbedding `json:"data"`
		Count int64                     `json:"count"`
	}
	testutil.AssertJSON(t, w, &resp)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, []float32{0.1, 0.2}, resp.Data[0].Embedding)

	w = httptest.NewRecorder()
	handler.ListEngines(w, testutil.MakeRequest("GET", "/api/embeddings/engines?supported=maybe", nil, nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}
