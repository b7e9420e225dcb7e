// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"context"
	"fmt"
	"time"
)

const (
	EndpointLogin = "/auth/login"
	EndpointUsers = "/users/"
)

// LoginResult is the API's reply to a successful login
type LoginResult struct {
	ID          string
	ExpiresAt   time.Time
	AccessToken string
}

// Login exchanges credentials for an API session
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var res map[string]any
	err := c.PostJSON(ctx, EndpointLogin, map[string]string{
		"username": username,
		"password": password,
	}, &res)
	if err != nil {
		return nil, err
	}

	out := &LoginResult{}
	if v, ok := res["id"]; ok && v != nil {
		out.ID = fmt.Sprint(v)
	}
	if s, ok := res["access_token"].(string); ok {
		out.AccessToken = s
	}
	if s, ok := res["expires_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			out.ExpiresAt = t
		} else if t, err := time.Parse("2006-01-02T15:04:05.999999", s); err == nil {
			out.ExpiresAt = t.UTC()
		}
	}
	return out, nil
}

// CreateUser registers a password user and returns the created username
func (c *Client) CreateUser(ctx context.Context, username, password, email string) (string, error) {
	var res map[string]any
	err := c.PostJSON(ctx, EndpointUsers, map[string]string{
		"username": username,
		"password": password,
		"email":    email,
	}, &res)
	if err != nil {
		return "", err
	}
	name, _ := res["username"].(string)
	return name, nil
}
