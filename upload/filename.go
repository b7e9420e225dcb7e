// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upload

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoFile = errors.New("No file uploaded")
	ErrNoUser = errors.New("No user ID provided")
)

// Timestamp renders t as compact UTC ISO-8601, e.g. 20250102T030405678Z
func Timestamp(t time.Time) string {
	s := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return strings.NewReplacer("-", "", ":", "", ".", "").Replace(s)
}

// Extension returns the text after the last dot, or the whole name if there is none
func Extension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// UniqueFileName builds "<userID>_<timestamp>.<ext>" for an uploaded file
func UniqueFileName(original, userID string, now time.Time) (string, error) {
	if original == "" {
		return "", ErrNoFile
	}
	if strings.TrimSpace(userID) == "" {
		return "", ErrNoUser
	}
	return userID + "_" + Timestamp(now) + "." + Extension(original), nil
}

// NumericUserID parses a positive integer user id, returning fallback otherwise
func NumericUserID(userID string, fallback int) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(userID), 64)
	if err != nil || f <= 0 || math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt32 {
		return fallback
	}
	return int(f)
}

// BaseFilename returns the last "/" segment of a record's filename
func BaseFilename(filename string) string {
	if i := strings.LastIndex(filename, "/"); i >= 0 && i < len(filename)-1 {
		return filename[i+1:]
	}
	return filename
}
