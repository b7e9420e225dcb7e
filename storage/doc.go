// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package storage persists uploaded files.

# Areas

Files are grouped into areas that mirror the moderation flow:

	pending/   new HDR uploads with their .jpg preview and .json sidecar
	accepted/  approved by a moderator
	rejected/  declined by a moderator
	flagged/   set aside for review
	jsonl/     raw bulk-annotation files

The root area ("") receives plain uploads from the home page.

# Backends

LocalStore writes under UPLOAD_DIR. S3Store writes to a bucket with
"<area>/<name>" keys using the AWS SDK. New picks S3 only when the
config enables it in production.

# Names

Every operation rejects names containing path separators or "..".
Handlers pass client file names through BaseName first.
*/
package storage
