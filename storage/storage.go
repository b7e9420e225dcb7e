// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/danielhkuo/odr-frontend/cliparse"
)

// Upload areas
const (
	DirRoot     = ""
	DirPending  = "pending"
	DirAccepted = "accepted"
	DirRejected = "rejected"
	DirFlagged  = "flagged"
	DirJSONL    = "jsonl"
)

// Dirs is every area created by EnsureDirs
var Dirs = []string{DirPending, DirAccepted, DirRejected, DirFlagged, DirJSONL}

var (
	ErrNotFound    = errors.New("object not found")
	ErrInvalidName = errors.New("invalid file name")
)

// Store persists uploaded files grouped by area
type Store interface {
	// Save writes data and returns its location (file path or s3:// URL)
	Save(ctx context.Context, dir, name string, data []byte) (string, error)
	Read(ctx context.Context, dir, name string) ([]byte, error)
	// List returns the sorted file names directly inside dir
	List(ctx context.Context, dir string) ([]string, error)
	Move(ctx context.Context, name, fromDir, toDir string) error
	Exists(ctx context.Context, dir, name string) (bool, error)
}

// New returns the S3 store when the config enables it, otherwise the local store
func New(ctx context.Context, cfg cliparse.Config) (Store, error) {
	if cfg.S3Active() {
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.AWSRegion,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
		})
	}
	store := NewLocalStore(cfg.UploadDir)
	if err := store.EnsureDirs(); err != nil {
		return nil, err
	}
	return store, nil
}

// CleanName rejects names that would escape their area
func CleanName(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

// BaseName strips any client-supplied directory from an uploaded file name
func BaseName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

// Stem returns name without its final extension
func Stem(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

func objectKey(dir, name string) string {
	if dir == DirRoot {
		return name
	}
	return dir + "/" + name
}
