// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upload

import (
	"time"

	"github.com/danielhkuo/odr-frontend/models"
)

// ContentForFile builds the pending IMAGE record for a bulk-annotated file
func ContentForFile(baseFilename, userID string) models.Content {
	format := Extension(baseFilename)
	if format == "" {
		format = "jpg"
	}
	zero := 0
	fromUser := uint(NumericUserID(userID, 1))

	return models.Content{
		Name:       baseFilename,
		Type:       models.ContentImage,
		Width:      &zero,
		Height:     &zero,
		URL:        []string{},
		Format:     format,
		Size:       0,
		Status:     models.StatusPending,
		License:    models.DefaultLicense,
		LicenseURL: models.DefaultLicenseURL,
		Flags:      0,
		Meta:       map[string]any{},
		FromUserID: &fromUser,
	}
}

// ContentAPIPayload is the body sent to the API when the database write fails
func ContentAPIPayload(c models.Content, now time.Time) map[string]any {
	return map[string]any{
		"name":       c.Name,
		"type":       c.Type,
		"hash":       c.Hash,
		"phash":      c.Phash,
		"width":      derefInt(c.Width),
		"height":     derefInt(c.Height),
		"url":        c.URL,
		"format":     c.Format,
		"size":       c.Size,
		"status":     c.Status,
		"license":    c.License,
		"licenseUrl": c.LicenseURL,
		"flags":      c.Flags,
		"meta":       c.Meta,
		"fromUserId": c.FromUserID,
		"updatedAt":  now.UTC().Format(time.RFC3339Nano),
	}
}

// AnnotationPayload converts a JSONL record into an /annotations request.
// It returns nil when the record carries no "parsed" object.
func AnnotationPayload(rec Record, contentID uint, userID string) map[string]any {
	parsed, ok := rec["parsed"].(map[string]any)
	if !ok || parsed == nil {
		return nil
	}

	tags := []any{}
	tagsList, _ := parsed["tags_list"].([]any)
	for _, item := range tagsList {
		if obj, ok := item.(map[string]any); ok {
			tags = append(tags, obj["tag"])
		} else {
			tags = append(tags, nil)
		}
	}

	annotation := make(map[string]any, len(parsed)+9)
	for k, v := range parsed {
		annotation[k] = v
	}
	annotation["short_caption"] = orDefault(parsed["short_caption"], "")
	annotation["dense_caption"] = orDefault(parsed["dense_caption"], "")
	annotation["tags"] = tags
	annotation["tags_list"] = orDefault(parsed["tags_list"], []any{})
	annotation["verification"] = orDefault(parsed["verification"], "")
	annotation["model"] = orDefault(rec["model"], "")
	annotation["provider"] = orDefault(rec["provider"], "")
	annotation["config_name"] = orDefault(rec["config_name"], "")
	annotation["version"] = orDefault(rec["version"], "")

	return map[string]any{
		"annotation":            annotation,
		"manually_adjusted":     false,
		"overall_rating":        5,
		"content_id":            contentID,
		"from_user_id":          NumericUserID(userID, 0),
		"annotation_source_ids": []uint{},
	}
}

// orDefault returns v unless it is empty (nil, "", false or 0)
func orDefault(v, def any) any {
	switch x := v.(type) {
	case nil:
		return def
	case string:
		if x == "" {
			return def
		}
	case bool:
		if !x {
			return def
		}
	case float64:
		if x == 0 {
			return def
		}
	}
	return v
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
