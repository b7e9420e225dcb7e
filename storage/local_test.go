// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveReadList(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())
	require.NoError(t, store.EnsureDirs())

	for _, dir := range Dirs {
		info, err := os.Stat(filepath.Join(store.Root(), dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	loc, err := store.Save(ctx, DirPending, "b.jpg", []byte("bbb"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Root(), "pending", "b.jpg"), loc)
	_, err = store.Save(ctx, DirPending, "a.json", []byte("{}"))
	require.NoError(t, err)

	names, err := store.List(ctx, DirPending)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.jpg"}, names)

	data, err := store.Read(ctx, DirPending, "b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "bbb", string(data))
}

func TestLocalStore_Move(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	_, err := store.Save(ctx, DirPending, "x.jpg", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, store.Move(ctx, "x.jpg", DirPending, DirAccepted))

	ok, err := store.Exists(ctx, DirPending, "x.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = store.Exists(ctx, DirAccepted, "x.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	err = store.Move(ctx, "x.jpg", DirPending, DirRejected)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_MissingAndInvalid(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	_, err := store.Read(ctx, DirPending, "nope.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := store.List(ctx, DirFlagged)
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = store.Save(ctx, DirPending, "../escape.jpg", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestNameHelpers(t *testing.T) {
	tests := []struct {
		in       string
		base     string
		cleanErr bool
	}{
		{"photo.jpg", "photo.jpg", false},
		{"dir/sub/photo.tar.gz", "photo.tar.gz", false},
		{`C:\Users\me\photo.dng`, "photo.dng", false},
		{"noext", "noext", false},
		{"..", "", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.base, BaseName(tt.in), tt.in)
		_, err := CleanName(BaseName(tt.in))
		assert.Equal(t, tt.cleanErr, err != nil, tt.in)
	}

	assert.Equal(t, "photo.tar", Stem("photo.tar.gz"))
	assert.Equal(t, "noext", Stem("noext"))
	assert.Equal(t, ".hidden", Stem(".hidden"))
}
