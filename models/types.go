// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"time"
)

// Paging defaults for list endpoints
const (
	DefaultLimit  = 50
	DefaultOffset = 0
)

// Admin request types. Field names follow the admin UI's JSON.

type NewTeamRequest struct {
	NewTeamName string `json:"newTeamName"`
}

type TeamIDRequest struct {
	TeamID uint `json:"teamId"`
}

type TeamUserRequest struct {
	UserID uint `json:"userId"`
	TeamID uint `json:"teamId"`
}

type UserFlags struct {
	ID          uint  `json:"id"`
	IsActive    *bool `json:"is_active"`
	IsSuperuser *bool `json:"is_superuser"`
}

type ToggleUserRequest struct {
	User *UserFlags `json:"user"`
}

type FeatureFlag struct {
	ID        uint `json:"id"`
	IsEnabled bool `json:"is_enabled"`
}

type ToggleFeatureRequest struct {
	Feature *FeatureFlag `json:"feature"`
}

type DCORequest struct {
	UserID      *uint `json:"userId"`
	DCOAccepted *bool `json:"dcoAccepted"`
}

// REST request types. Pointer fields distinguish "absent" from zero on update.

type UserRequest struct {
	Email            *string `json:"email"`
	IsActive         *bool   `json:"isActive"`
	IsSuperuser      *bool   `json:"isSuperuser"`
	DCOAccepted      *bool   `json:"dcoAccepted"`
	IdentityProvider *string `json:"identityProvider"`
	Name             *string `json:"name"`
	Image            *string `json:"image"`
}

type TeamRequest struct {
	Name *string `json:"name"`
}

type UserTeamRequest struct {
	UserID *uint  `json:"userId"`
	TeamID *uint  `json:"teamId"`
	Role   string `json:"role"`
}

type ContentRequest struct {
	Name       *string         `json:"name"`
	Type       *string         `json:"type"`
	Hash       *string         `json:"hash"`
	Phash      *string         `json:"phash"`
	Width      *int            `json:"width"`
	Height     *int            `json:"height"`
	Format     *string         `json:"format"`
	Size       *int64          `json:"size"`
	Status     *string         `json:"status"`
	License    *string         `json:"license"`
	LicenseURL *string         `json:"licenseUrl"`
	Flags      *int            `json:"flags"`
	Meta       map[string]any  `json:"meta"`
	URL        json.RawMessage `json:"url"`
	FromUserID *uint           `json:"fromUserId"`
	FromTeamID *uint           `json:"fromTeamId"`
}

type AnnotationRequest struct {
	ContentID           *uint          `json:"contentId"`
	Annotation          map[string]any `json:"annotation"`
	ManuallyAdjusted    *bool          `json:"manuallyAdjusted"`
	OverallRating       *float64       `json:"overallRating"`
	FromUserID          *uint          `json:"fromUserId"`
	FromTeamID          *uint          `json:"fromTeamId"`
	AnnotationSourceIDs []uint         `json:"annotationSourceIds"`
}

type AnnotationSourceRequest struct {
	Name             *string        `json:"name"`
	Ecosystem        *string        `json:"ecosystem"`
	Type             *string        `json:"type"`
	AnnotationSchema map[string]any `json:"annotationSchema"`
	License          *string        `json:"license"`
	LicenseURL       *string        `json:"licenseUrl"`
	AddedByID        *uint          `json:"addedById"`
}

type EmbeddingEngineRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Version     *string `json:"version"`
	Type        *string `json:"type"`
	Supported   *bool   `json:"supported"`
}

type ContentEmbeddingRequest struct {
	ContentID         *uint     `json:"contentId"`
	EmbeddingEngineID *uint     `json:"embeddingEngineId"`
	FromUserID        *uint     `json:"fromUserId"`
	FromTeamID        *uint     `json:"fromTeamId"`
	Embedding         []float32 `json:"embedding"`
}

type FeatureToggleRequest struct {
	FeatureName  *string `json:"featureName"`
	IsEnabled    *bool   `json:"isEnabled"`
	DefaultState *bool   `json:"defaultState"`
}

// Response types

type ListResponse struct {
	Data  any   `json:"data"`
	Count int64 `json:"count"`
}

type ActionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}

type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

type HomePage struct {
	FeatureToggles  map[string]bool `json:"featureToggles"`
	IsAuthenticated bool            `json:"isAuthenticated"`
	IsSuperUser     bool            `json:"isSuperUser"`
	User            *User           `json:"user,omitempty"`
}

type UploadPage struct {
	FeatureToggles map[string]bool `json:"featureToggles"`
}

type UploadResult struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// DCOPage is the page data behind GET /dco
type DCOPage struct {
	DCOAccepted bool   `json:"dcoAccepted"`
	Message     string `json:"message"`
}

// TeamWithRole is a team as seen from one member
type TeamWithRole struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// TeamMember is a user as seen from one team
type TeamMember struct {
	UserID uint    `json:"userId"`
	Email  string  `json:"email"`
	Name   *string `json:"name"`
	Role   string  `json:"role"`
}

type UserDetailPage struct {
	User  User           `json:"user"`
	Teams []TeamWithRole `json:"teams"`
}

type TeamsPage struct {
	Teams      []Team     `json:"teams"`
	TeamsUsers []UserTeam `json:"teams_users"`
	Users      []User     `json:"users"`
}

type ModerationImage struct {
	Filename   string `json:"filename"`
	PreviewURL string `json:"previewUrl"`
	Metadata   any    `json:"metadata"`
}

type ModerationPage struct {
	Images      []ModerationImage `json:"images"`
	CurrentPage int               `json:"currentPage"`
	TotalPages  int               `json:"totalPages"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
