// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ODR frontend server.

The Open Data Repository frontend signs contributors in (GitHub or Discord
OAuth, or a password account on the remote ODR API), gates them on an
active account and an accepted Developer Certificate of Origin, and lets
them upload HDR images and JSONL bulk annotations. Superusers manage users,
teams and feature toggles, and moderate pending uploads.

# Commands

	odr serve [flags]                    run the HTTP server (default)
	odr migrate [flags]                  create or update the schema
	odr seed --superuser-email EMAIL     seed toggles, promote a superuser

Settings come from a .env file, then the environment, then flags:

	DATABASE_URL=postgres://... AUTH_SECRET=... go run . serve -p 3000

# Configuration

Required settings:

  - DATABASE_URL (-d), or the POSTGRES_HOST/PORT/USER/PASSWORD/DB set
  - AUTH_SECRET (--auth-secret): session cookie key

Optional settings:

  - PORT (-p): server port (default: 3000)
  - API_SERVICE_URL (--api): remote ODR API base URL
  - UPLOAD_DIR (--upload-dir): local storage root (default: ./uploads)
  - APP_ENV (--env): development or production
  - AWS_S3_ENABLED, AWS_S3_BUCKET, AWS_REGION, AWS_S3_ENDPOINT: S3 storage,
    used only in production
  - GITHUB_CLIENT_ID/SECRET, DISCORD_CLIENT_ID/SECRET: OAuth providers
  - LOG_LEVEL, LOG_FORMAT: slog level and text|json output

# Architecture

  - handlers: HTTP handlers (pages, admin, moderation, uploads, REST API)
  - router: route table and middleware pipeline
  - middleware: CORS, request ids, logging, metrics, the authorization gate
  - auth: OAuth providers and database-backed sessions
  - upload: JSONL and HDR upload pipelines
  - apiclient: rate-limited client for the remote ODR API
  - storage: local directory or S3 file storage
  - features: cached feature toggle lookups
  - db, models: gorm schema, migration and seeding
  - cliparse, logging, metrics: configuration and observability
*/
package main
