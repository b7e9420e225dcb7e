// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are resolved in three layers, later layers winning:

 1. A .env file in the working directory (optional)
 2. Environment variables, decoded with caarlos0/env struct tags
 3. CLI flags

# CLI Flags

	-p             Server port
	-d             Database URL
	-upload-dir    Local upload directory
	-api           Remote API base URL
	-env           development or production
	-log-level     debug, info, warn, error
	-log-format    text or json
	-auth-secret   Session secret

# Environment Variables

	PORT, DATABASE_URL, POSTGRES_HOST/PORT/USER/PASSWORD/DB
	AUTH_SECRET, GITHUB_CLIENT_ID/SECRET, DISCORD_CLIENT_ID/SECRET, PUBLIC_BASE_URL
	API_SERVICE_URL, PUBLIC_API_BASE_URL, API_RATE_LIMIT, API_TIMEOUT
	UPLOAD_DIR, APP_ENV, AWS_S3_ENABLED, AWS_S3_BUCKET (or S3_BUCKET_NAME),
	AWS_REGION, AWS_S3_ENDPOINT
	LOG_LEVEL, LOG_FORMAT, FEATURE_CACHE_TTL

When DATABASE_URL is empty it is composed from the POSTGRES_* values.
An OAuth provider is enabled only when both its client ID and secret are set.

# Validation

ParseFlags returns an error if:

  - no database URL can be determined
  - AUTH_SECRET is missing
  - the port is outside 1..65535

# Storage Switch

Config.S3Active is true only in production with AWS_S3_ENABLED and a bucket.
Everything else writes under UPLOAD_DIR.
*/
package cliparse
