// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/auth"
	"github.com/danielhkuo/odr-frontend/middleware"
	"github.com/danielhkuo/odr-frontend/models"
)

// maxUploadMemory is held in memory by ParseMultipartForm; the rest spills to disk
const maxUploadMemory = 32 << 20

var (
	errInvalidNumber = errors.New("invalid number")
	errTooLarge      = errors.New("upload too large")
)

// pathID parses the {id} path segment
func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// paging reads limit/offset, falling back to the defaults on bad input
func paging(r *http.Request) (limit, offset int) {
	limit, offset = models.DefaultLimit, models.DefaultOffset
	q := r.URL.Query()
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n >= 0 {
		offset = n
	}
	return limit, offset
}

// queryUint returns nil when key is absent and errInvalidNumber when it is not a positive id
func queryUint(r *http.Request, key string) (*uint, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return nil, fmt.Errorf("%w: %s", errInvalidNumber, key)
	}
	v := uint(n)
	return &v, nil
}

// queryBool returns nil when key is absent
func queryBool(r *http.Request, key string) (*bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &b, nil
}

// listPage counts q, then fetches one page of it ordered by id
func listPage[T any](r *http.Request, q *gorm.DB) (models.ListResponse, error) {
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Model(new(T)).Count(&total).Error; err != nil {
		return models.ListResponse{}, err
	}

	limit, offset := paging(r)
	rows := []T{}
	if err := q.Order("id").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return models.ListResponse{}, err
	}
	return models.ListResponse{Data: rows, Count: total}, nil
}

// currentUser returns the user set by the auth middleware
func currentUser(r *http.Request) (*models.User, bool) {
	return auth.UserFromContext(r.Context())
}

// notFoundOr writes 404 with notFound for a missing row, 500 otherwise
func notFoundOr(w http.ResponseWriter, err error, notFound string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, notFound)
		return
	}
	slog.Error("database query failed", "error", err)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
}

// parseURLList accepts a JSON string or list of strings
func parseURLList(raw json.RawMessage) ([]string, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return []string{one}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, errors.New("url must be a string or a list of strings")
	}
	return many, nil
}

// formFile reads the multipart "file" field from a body of at most limit
// bytes. An oversized body fails with errTooLarge.
func formFile(w http.ResponseWriter, r *http.Request, limit int64) (name string, data []byte, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	defer func() {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			err = fmt.Errorf("%w: limit %s", errTooLarge, humanize.IBytes(uint64(mbe.Limit)))
		}
	}()

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return "", nil, err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}
