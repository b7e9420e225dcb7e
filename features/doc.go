// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package features serves feature-toggle state to page handlers.
//
// The name -> enabled map is cached for FEATURE_CACHE_TTL. Every handler
// that writes a toggle calls Invalidate so admins see changes at once.
package features
