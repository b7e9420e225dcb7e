// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Image processing endpoints
const (
	EndpointCleanMetadata = "/image/clean-metadata"
	EndpointHDRStats      = "/image/hdr-stats"
	EndpointMetadata      = "/image/metadata"
	EndpointJPGPreview    = "/image/jpg-preview"
)

// CleanMetadata strips metadata from an image and returns the cleaned bytes
func (c *Client) CleanMetadata(ctx context.Context, filename string, data []byte) ([]byte, error) {
	res, err := c.PostFile(ctx, EndpointCleanMetadata, filename, data)
	if err != nil {
		return nil, err
	}
	return decodeBase64Field(res, "cleaned_image", EndpointCleanMetadata)
}

func (c *Client) HDRStats(ctx context.Context, filename string, data []byte) (map[string]any, error) {
	return c.PostFile(ctx, EndpointHDRStats, filename, data)
}

func (c *Client) ImageMetadata(ctx context.Context, filename string, data []byte) (map[string]any, error) {
	return c.PostFile(ctx, EndpointMetadata, filename, data)
}

// JPGPreview renders a JPEG preview of an HDR image
func (c *Client) JPGPreview(ctx context.Context, filename string, data []byte) ([]byte, error) {
	res, err := c.PostFile(ctx, EndpointJPGPreview, filename, data)
	if err != nil {
		return nil, err
	}
	return decodeBase64Field(res, "jpg_preview", EndpointJPGPreview)
}

func decodeBase64Field(res map[string]any, field, endpoint string) ([]byte, error) {
	s, ok := res[field].(string)
	if !ok || s == "" {
		return nil, apiError(endpoint, fmt.Errorf("response missing %s", field))
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, apiError(endpoint, fmt.Errorf("decode %s: %w", field, err))
	}
	return b, nil
}
