// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"context"
	"fmt"
	"strconv"
)

const (
	EndpointContent     = "/content/"
	EndpointAnnotations = "/annotations"
)

// CreateContent registers a content record through the API and returns its id
func (c *Client) CreateContent(ctx context.Context, fromUserID int, content any) (uint, error) {
	endpoint := EndpointContent + "?from_user_id=" + strconv.Itoa(fromUserID)
	var res map[string]any
	if err := c.PostJSON(ctx, endpoint, content, &res); err != nil {
		return 0, err
	}
	id, ok := res["id"].(float64)
	if !ok || id <= 0 {
		return 0, apiError(endpoint, fmt.Errorf("response missing content id"))
	}
	return uint(id), nil
}

// CreateAnnotation posts an annotation payload and returns the decoded reply
func (c *Client) CreateAnnotation(ctx context.Context, annotation any) (map[string]any, error) {
	var res map[string]any
	if err := c.PostJSON(ctx, EndpointAnnotations, annotation, &res); err != nil {
		return nil, err
	}
	return res, nil
}
