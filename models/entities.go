// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// ContentType is the media kind of a content row
type ContentType string

const (
	ContentImage ContentType = "IMAGE"
	ContentVideo ContentType = "VIDEO"
	ContentVoice ContentType = "VOICE"
	ContentMusic ContentType = "MUSIC"
	ContentText  ContentType = "TEXT"
)

// ContentTypes lists every valid ContentType in declaration order
var ContentTypes = []ContentType{ContentImage, ContentVideo, ContentVoice, ContentMusic, ContentText}

// Valid reports whether t is a known content type
func (t ContentType) Valid() bool {
	for _, v := range ContentTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ContentStatus is the moderation/availability state of a content row
type ContentStatus string

const (
	StatusPending     ContentStatus = "PENDING"
	StatusAvailable   ContentStatus = "AVAILABLE"
	StatusUnavailable ContentStatus = "UNAVAILABLE"
	StatusDelisted    ContentStatus = "DELISTED"
)

var ContentStatuses = []ContentStatus{StatusPending, StatusAvailable, StatusUnavailable, StatusDelisted}

// Valid reports whether s is a known content status
func (s ContentStatus) Valid() bool {
	for _, v := range ContentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Team membership roles
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Default license attached to uploaded content
const (
	DefaultLicense    = "CDLA-Permissive-2.0"
	DefaultLicenseURL = "https://cdla.dev/permissive-2-0/"
)

// Persistent entities

type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Email            string     `gorm:"size:255;not null;index" json:"email"`
	HashedPassword   *string    `json:"-"`
	IsActive         bool       `gorm:"not null" json:"isActive"`
	IsSuperuser      bool       `gorm:"not null" json:"isSuperuser"`
	IdentityProvider *string    `gorm:"size:255" json:"identityProvider"`
	DCOAccepted      bool       `gorm:"column:dco_accepted;not null" json:"dcoAccepted"`
	Name             *string    `gorm:"size:255" json:"name"`
	EmailVerified    *time.Time `json:"emailVerified"`
	Image            *string    `json:"image"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Account links a user to an OAuth provider identity
type Account struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	UserID            uint    `gorm:"not null;index" json:"userId"`
	Type              string  `gorm:"size:64;not null" json:"type"`
	Provider          string  `gorm:"size:64;not null;uniqueIndex:idx_account_provider" json:"provider"`
	ProviderAccountID string  `gorm:"size:255;not null;uniqueIndex:idx_account_provider" json:"providerAccountId"`
	RefreshToken      *string `json:"-"`
	AccessToken       *string `json:"-"`
	ExpiresAt         *int64  `json:"expiresAt"`
	IDToken           *string `json:"-"`
	Scope             *string `json:"scope"`
	TokenType         *string `json:"tokenType"`
}

// Session is a server-side login session referenced by cookie token
type Session struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	UserID       uint      `gorm:"not null;index" json:"userId"`
	SessionToken string    `gorm:"size:128;not null;uniqueIndex" json:"-"`
	Expires      time.Time `gorm:"not null" json:"expires"`
}

type Team struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserTeam is a team membership
type UserTeam struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	TeamID    uint      `gorm:"primaryKey;autoIncrement:false" json:"teamId"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type FeatureToggle struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	FeatureName  string `gorm:"size:255;not null;uniqueIndex" json:"featureName"`
	IsEnabled    bool   `gorm:"not null" json:"isEnabled"`
	DefaultState bool   `gorm:"not null" json:"defaultState"`
}

type Content struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"not null;index" json:"name"`
	Type       ContentType    `gorm:"size:16;not null" json:"type"`
	Hash       string         `json:"hash"`
	Phash      string         `json:"phash"`
	Width      *int           `json:"width"`
	Height     *int           `json:"height"`
	Format     string         `gorm:"size:32" json:"format"`
	Size       int64          `json:"size"`
	Status     ContentStatus  `gorm:"size:16;not null;index" json:"status"`
	License    string         `json:"license"`
	LicenseURL string         `gorm:"column:license_url" json:"licenseUrl"`
	Flags      int            `json:"flags"`
	Meta       map[string]any `gorm:"type:jsonb;serializer:json" json:"meta"`
	URL        []string       `gorm:"column:url;type:jsonb;serializer:json" json:"url"`
	FromUserID *uint          `gorm:"index" json:"fromUserId"`
	FromTeamID *uint          `json:"fromTeamId"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

type Annotation struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ContentID        uint           `gorm:"not null;index" json:"contentId"`
	Annotation       map[string]any `gorm:"type:jsonb;serializer:json" json:"annotation"`
	ManuallyAdjusted bool           `gorm:"not null" json:"manuallyAdjusted"`
	OverallRating    *float64       `json:"overallRating"`
	FromUserID       *uint          `gorm:"index" json:"fromUserId"`
	FromTeamID       *uint          `gorm:"index" json:"fromTeamId"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

type AnnotationSource struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"not null;index" json:"name"`
	Ecosystem        *string        `json:"ecosystem"`
	Type             *string        `json:"type"`
	AnnotationSchema map[string]any `gorm:"type:jsonb;serializer:json" json:"annotationSchema"`
	License          *string        `json:"license"`
	LicenseURL       *string        `gorm:"column:license_url" json:"licenseUrl"`
	AddedByID        *uint          `json:"addedById"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// AnnotationSourceLink attaches an annotation to the sources it came from
type AnnotationSourceLink struct {
	AnnotationID       uint `gorm:"primaryKey;autoIncrement:false" json:"annotationId"`
	AnnotationSourceID uint `gorm:"primaryKey;autoIncrement:false" json:"annotationSourceId"`
}

func (AnnotationSourceLink) TableName() string {
	return "annotation_sources_link"
}

type EmbeddingEngine struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description *string `json:"description"`
	Version     *string `json:"version"`
	Type        string  `gorm:"size:64;not null" json:"type"`
	Supported   bool    `gorm:"not null" json:"supported"`
}

type ContentEmbedding struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ContentID         uint      `gorm:"not null;index" json:"contentId"`
	EmbeddingEngineID uint      `gorm:"not null;index" json:"embeddingEngineId"`
	FromUserID        *uint     `json:"fromUserId"`
	FromTeamID        *uint     `json:"fromTeamId"`
	Embedding         []float32 `gorm:"type:jsonb;serializer:json;not null" json:"embedding"`
	CreatedAt         time.Time `json:"createdAt"`
}

// AllEntities is the migration set, in dependency order
func AllEntities() []any {
	return []any{
		&User{}, &Account{}, &Session{},
		&Team{}, &UserTeam{},
		&FeatureToggle{},
		&Content{}, &Annotation{},
		&AnnotationSource{}, &AnnotationSourceLink{},
		&EmbeddingEngine{}, &ContentEmbedding{},
	}
}
