// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
)

// LocalStore keeps uploads under a root directory on disk
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Root returns the base directory
func (s *LocalStore) Root() string {
	return s.root
}

// Path returns the on-disk path of name inside dir
func (s *LocalStore) Path(dir, name string) string {
	return filepath.Join(s.root, dir, name)
}

// EnsureDirs creates the root and every upload area
func (s *LocalStore) EnsureDirs() error {
	for _, dir := range Dirs {
		if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
			return fmt.Errorf("create upload dir %s: %w", dir, err)
		}
	}
	return nil
}

func (s *LocalStore) Save(ctx context.Context, dir, name string, data []byte) (string, error) {
	if _, err := CleanName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	p := s.Path(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	slog.Info("file saved locally", "path", p, "size", humanize.Bytes(uint64(len(data))))
	return p, nil
}

func (s *LocalStore) Read(ctx context.Context, dir, name string) ([]byte, error) {
	if _, err := CleanName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, dir, name)
	}
	return data, err
}

func (s *LocalStore) List(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, dir))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *LocalStore) Move(ctx context.Context, name, fromDir, toDir string) error {
	if _, err := CleanName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(s.root, toDir), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	err := os.Rename(s.Path(fromDir, name), s.Path(toDir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, fromDir, name)
	}
	return err
}

func (s *LocalStore) Exists(ctx context.Context, dir, name string) (bool, error) {
	if _, err := CleanName(name); err != nil {
		return false, err
	}
	_, err := os.Stat(s.Path(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
