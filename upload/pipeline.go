// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upload

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/apiclient"
	"github.com/danielhkuo/odr-frontend/metrics"
	"github.com/danielhkuo/odr-frontend/storage"
)

// Content write paths
const (
	ViaDB  = "db"
	ViaAPI = "api"
)

// Pipeline runs upload workflows against the database, the API and storage
type Pipeline struct {
	db      *gorm.DB
	api     *apiclient.Client
	store   storage.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewPipeline(db *gorm.DB, api *apiclient.Client, store storage.Store, m *metrics.Metrics) *Pipeline {
	return &Pipeline{db: db, api: api, store: store, metrics: m, now: time.Now}
}

// SetClock replaces the time source used for unique file names
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
}

// ContentRef reports where a file's content record was written
type ContentRef struct {
	Filename  string `json:"filename"`
	ContentID uint   `json:"contentId"`
	Via       string `json:"via"`
}

// JSONLResult summarizes a bulk-annotation upload
type JSONLResult struct {
	Type               string       `json:"type"`
	Message            string       `json:"message"`
	UniqueFileName     string       `json:"uniqueFileName"`
	Location           string       `json:"location"`
	ContentCount       int          `json:"contentCount"`
	AnnotationsCreated int          `json:"annotationsCreated"`
	AnnotationsFailed  int          `json:"annotationsFailed"`
	AnnotationsSkipped int          `json:"annotationsSkipped"`
	Contents           []ContentRef `json:"contents"`
}

// UploadJSONL imports a bulk-annotation file: one content record per
// distinct filename, then one annotation per record with parsed output.
// Content creation tries the database first and the API second; a failure
// of both aborts the upload. Annotation failures are counted, not fatal.
func (p *Pipeline) UploadJSONL(ctx context.Context, filename string, data []byte, userID string) (*JSONLResult, error) {
	uniqueName, err := UniqueFileName(filename, userID, p.now())
	if err != nil {
		return nil, err
	}

	groups, err := ParseJSONL(data)
	if err != nil {
		return nil, err
	}

	res := &JSONLResult{Type: "success", UniqueFileName: uniqueName, Contents: []ContentRef{}}

	for _, g := range groups {
		base := BaseFilename(g.Filename)

		ref, err := p.createContent(ctx, base, userID)
		if err != nil {
			return nil, err
		}
		res.Contents = append(res.Contents, ref)
		slog.Info("created content record", "file", base, "content_id", ref.ContentID, "via", ref.Via)

		created, failed, skipped := p.createAnnotations(ctx, g, ref.ContentID, userID)
		res.AnnotationsCreated += created
		res.AnnotationsFailed += failed
		res.AnnotationsSkipped += skipped
	}
	res.ContentCount = len(res.Contents)

	p.metrics.AddUploadAnnotations("created", res.AnnotationsCreated)
	p.metrics.AddUploadAnnotations("failed", res.AnnotationsFailed)
	p.metrics.AddUploadAnnotations("skipped", res.AnnotationsSkipped)

	loc, err := p.store.Save(ctx, storage.DirJSONL, uniqueName, data)
	if err != nil {
		return nil, fmt.Errorf("save JSONL file: %w", err)
	}
	res.Location = loc
	res.Message = "Successfully uploaded " + uniqueName

	slog.Info("JSONL upload finished",
		"file", uniqueName,
		"size", humanize.Bytes(uint64(len(data))),
		"contents", res.ContentCount,
		"annotations_created", res.AnnotationsCreated,
		"annotations_failed", res.AnnotationsFailed,
		"annotations_skipped", res.AnnotationsSkipped,
	)
	return res, nil
}

func (p *Pipeline) createContent(ctx context.Context, base, userID string) (ContentRef, error) {
	content := ContentForFile(base, userID)

	dbErr := p.db.WithContext(ctx).Create(&content).Error
	if dbErr == nil {
		p.metrics.IncUploadContent(ViaDB)
		return ContentRef{Filename: base, ContentID: content.ID, Via: ViaDB}, nil
	}

	slog.Error("database insert failed, falling back to API", "file", base, "error", dbErr)
	id, err := p.api.CreateContent(ctx, NumericUserID(userID, 0), ContentAPIPayload(content, p.now()))
	if err != nil {
		return ContentRef{}, fmt.Errorf("create content for %s: %w", base, err)
	}
	p.metrics.IncUploadContent(ViaAPI)
	return ContentRef{Filename: base, ContentID: id, Via: ViaAPI}, nil
}

func (p *Pipeline) createAnnotations(ctx context.Context, g Group, contentID uint, userID string) (created, failed, skipped int) {
	for _, rec := range g.Records {
		payload := AnnotationPayload(rec, contentID, userID)
		if payload == nil {
			slog.Warn("no parsed data found for annotation", "file", g.Filename)
			skipped++
			continue
		}

		resp, err := p.api.CreateAnnotation(ctx, payload)
		if err != nil {
			slog.Error("error adding annotation", "file", g.Filename, "content_id", contentID, "error", err)
			failed++
			continue
		}
		slog.Debug("added annotation", "content_id", contentID, "annotation_id", resp["id"])
		created++
	}
	return created, failed, skipped
}
