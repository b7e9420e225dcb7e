// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package upload implements the content upload workflows.

# File Names

Every stored upload is renamed to "<userID>_<timestamp>.<ext>", where the
timestamp is compact UTC ISO-8601 with millisecond precision:

	UniqueFileName("sunset.dng", "7", now) // "7_20250102T030405678Z.dng"

# Bulk Annotations (JSONL)

UploadJSONL parses the file, groups records by "filename", and for each
group creates one PENDING image content row. The row is written through
the database first; if that fails it is created through the remote API.
Each record with a "parsed" object becomes one annotation posted to the
API. The raw file is kept under the jsonl area.

# HDR Images

UploadHDR strips metadata through the API, then requests HDR stats,
image metadata and a JPEG preview concurrently. The cleaned image, the
preview and a JSON sidecar land in the pending area for moderation.
*/
package upload
