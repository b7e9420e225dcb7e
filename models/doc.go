// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the persistent entities and the request/response types.

# Entities

gorm models, migrated by db.Migrate:

  - User, Account, Session: identities, OAuth links and login sessions
  - Team, UserTeam: teams and memberships (role "member" or "admin")
  - FeatureToggle: named UI switches
  - Content: an uploaded media item (ContentType, ContentStatus)
  - Annotation, AnnotationSource, AnnotationSourceLink: labels attached to content
  - EmbeddingEngine, ContentEmbedding: vector embeddings per engine

JSON columns (Content.Meta, Content.URL, Annotation.Annotation,
ContentEmbedding.Embedding) use gorm's json serializer.

# Request Types

Admin actions decode the admin UI's payloads (NewTeamRequest,
TeamUserRequest, ToggleUserRequest, ToggleFeatureRequest). REST
requests (UserRequest, ContentRequest, ...) use pointer fields so an
update only touches fields present in the body.

# Response Types

  - ListResponse: data, count
  - ActionResult: success, error
  - ErrorResponse: error, message
  - HomePage, UploadPage, TeamsPage, UserDetailPage, ModerationPage: page data
*/
package models
