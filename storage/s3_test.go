// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves the handful of path-style S3 calls the store makes
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
}

type listResult struct {
	XMLName     xml.Name `xml:"ListBucketResult"`
	Name        string   `xml:"Name"`
	Prefix      string   `xml:"Prefix"`
	KeyCount    int      `xml:"KeyCount"`
	IsTruncated bool     `xml:"IsTruncated"`
	Contents    []struct {
		Key  string `xml:"Key"`
		Size int    `xml:"Size"`
	} `xml:"Contents"`
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/"+f.bucket), "/")

	switch {
	case r.Method == http.MethodGet && key == "":
		prefix := r.URL.Query().Get("prefix")
		res := listResult{Name: f.bucket, Prefix: prefix}
		keys := make([]string, 0, len(f.objects))
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			res.Contents = append(res.Contents, struct {
				Key  string `xml:"Key"`
				Size int    `xml:"Size"`
			}{k, len(f.objects[k])})
		}
		res.KeyCount = len(keys)
		w.Header().Set("Content-Type", "application/xml")
		xml.NewEncoder(w).Encode(res)

	case r.Method == http.MethodPut && r.Header.Get("X-Amz-Copy-Source") != "":
		src := strings.TrimPrefix(r.Header.Get("X-Amz-Copy-Source"), f.bucket+"/")
		data, ok := f.objects[src]
		if !ok {
			noSuchKey(w)
			return
		}
		f.objects[key] = data
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, `<CopyObjectResult><ETag>"etag"</ETag></CopyObjectResult>`)

	case r.Method == http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[key] = data
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			noSuchKey(w)
			return
		}
		w.Write(data)

	case r.Method == http.MethodHead:
		if _, ok := f.objects[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func noSuchKey(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusNotFound)
	io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
}

func newTestS3Store(t *testing.T) (*S3Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{bucket: "odr-test", objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := NewS3Store(context.Background(), S3Options{
		Bucket:    "odr-test",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)
	return store, fake
}

func TestS3Store_SaveAndRead(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestS3Store(t)

	loc, err := store.Save(ctx, DirPending, "1_20250101T000000000Z.jpg", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "s3://odr-test/pending/1_20250101T000000000Z.jpg", loc)
	assert.Equal(t, []byte("jpeg"), fake.objects["pending/1_20250101T000000000Z.jpg"])

	data, err := store.Read(ctx, DirPending, "1_20250101T000000000Z.jpg")
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	_, err = store.Read(ctx, DirPending, "missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Store_ListAndMove(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestS3Store(t)

	fake.objects["pending/b.jpg"] = []byte("b")
	fake.objects["pending/a.json"] = []byte("{}")
	fake.objects["accepted/c.jpg"] = []byte("c")

	names, err := store.List(ctx, DirPending)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.jpg"}, names)

	require.NoError(t, store.Move(ctx, "b.jpg", DirPending, DirAccepted))
	assert.NotContains(t, fake.objects, "pending/b.jpg")
	assert.Equal(t, []byte("b"), fake.objects["accepted/b.jpg"])

	ok, err := store.Exists(ctx, DirAccepted, "b.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, DirPending, "b.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Options{Region: "us-east-1"})
	assert.Error(t, err)
}
