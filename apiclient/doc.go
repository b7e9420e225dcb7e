// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apiclient calls the content-processing API (API_SERVICE_URL).

# Transport

All calls are POSTs. PostFile sends a multipart form with a single
"file" field; PostJSON sends a JSON body. Replies are decoded as JSON.
Non-2xx replies become a *StatusError that matches ErrUnexpectedStatus.
Every error is prefixed with "API error (<endpoint>)".

A token-bucket limiter (API_RATE_LIMIT per second) paces outgoing calls,
so bulk uploads cannot flood the API.

# Endpoints

	/image/clean-metadata   CleanMetadata  (base64 cleaned_image)
	/image/hdr-stats        HDRStats
	/image/metadata         ImageMetadata
	/image/jpg-preview      JPGPreview     (base64 jpg_preview)
	/content/               CreateContent  (?from_user_id=N)
	/annotations            CreateAnnotation
	/auth/login             Login
	/users/                 CreateUser
*/
package apiclient
