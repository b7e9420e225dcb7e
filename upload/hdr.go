// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/odr-frontend/models"
	"github.com/danielhkuo/odr-frontend/storage"
)

// Sidecar is the JSON written next to each pending HDR upload
type Sidecar struct {
	UploadedByUser string         `json:"uploadedByUser"`
	HDRStats       map[string]any `json:"hdrStats"`
	Metadata       map[string]any `json:"metadata"`
}

// HDRResult describes a stored HDR upload
type HDRResult struct {
	Success        bool   `json:"success"`
	UniqueFileName string `json:"uniqueFileName"`
	PreviewName    string `json:"previewName"`
	SidecarName    string `json:"sidecarName"`
	ContentID      uint   `json:"contentId"`
}

// UploadHDR cleans an HDR image through the API, gathers its stats,
// metadata and JPEG preview, stores all three files as pending and
// records a PENDING content row.
func (p *Pipeline) UploadHDR(ctx context.Context, filename string, data []byte, userID string) (*HDRResult, error) {
	uniqueName, err := UniqueFileName(filename, userID, p.now())
	if err != nil {
		return nil, err
	}
	ext := Extension(filename)
	stem := storage.Stem(uniqueName)

	cleaned, err := p.api.CleanMetadata(ctx, uniqueName, data)
	if err != nil {
		return nil, err
	}

	var (
		hdrStats map[string]any
		metadata map[string]any
		preview  []byte
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hdrStats, err = p.api.HDRStats(gctx, uniqueName, cleaned)
		return err
	})
	g.Go(func() error {
		var err error
		metadata, err = p.api.ImageMetadata(gctx, uniqueName, cleaned)
		return err
	})
	g.Go(func() error {
		var err error
		preview, err = p.api.JPGPreview(gctx, uniqueName, cleaned)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sidecar, err := json.MarshalIndent(Sidecar{
		UploadedByUser: userID,
		HDRStats:       hdrStats,
		Metadata:       metadata,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sidecar: %w", err)
	}

	res := &HDRResult{
		Success:        true,
		UniqueFileName: uniqueName,
		PreviewName:    stem + ".jpg",
		SidecarName:    stem + ".json",
	}

	// A .jpg upload shares its name with the preview; the preview wins
	files := []struct {
		name string
		data []byte
	}{
		{uniqueName, cleaned},
		{res.PreviewName, preview},
		{res.SidecarName, sidecar},
	}
	for _, f := range files {
		if _, err := p.store.Save(ctx, storage.DirPending, f.name, f.data); err != nil {
			return nil, fmt.Errorf("save %s: %w", f.name, err)
		}
	}

	fromUser := uint(NumericUserID(userID, 1))
	width := intFrom(metadata["width"])
	height := intFrom(metadata["height"])
	content := models.Content{
		Name:       uniqueName,
		Type:       models.ContentImage,
		Width:      &width,
		Height:     &height,
		URL:        []string{},
		Format:     ext,
		Size:       int64(len(data)),
		Status:     models.StatusPending,
		License:    models.DefaultLicense,
		LicenseURL: models.DefaultLicenseURL,
		Flags:      0,
		Meta:       metadata,
		FromUserID: &fromUser,
	}
	if err := p.db.WithContext(ctx).Create(&content).Error; err != nil {
		return nil, fmt.Errorf("insert content: %w", err)
	}
	p.metrics.IncUploadContent(ViaDB)
	res.ContentID = content.ID

	slog.Info("HDR upload stored",
		"file", uniqueName,
		"size", humanize.Bytes(uint64(len(data))),
		"content_id", content.ID,
	)
	return res, nil
}

func intFrom(v any) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case int:
		return x
	case json.Number:
		n, _ := x.Int64()
		return int(n)
	}
	return 0
}
