// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var ErrMalformedLine = errors.New("Error parsing JSONL line")

// Record is one decoded JSONL line
type Record map[string]any

// Group holds every record that names the same file, in file order
type Group struct {
	Filename string
	Records  []Record
}

// ParseJSONL decodes a JSON-Lines document and groups records by filename.
// Groups keep the order in which each filename first appears. Records
// without a filename are skipped. Any undecodable line fails the whole parse.
func ParseJSONL(data []byte) ([]Group, error) {
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	var groups []Group
	index := map[string]int{}
	total := 0

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrMalformedLine, i+1, err)
		}
		if rec == nil {
			return nil, fmt.Errorf("%w %d: not a JSON object", ErrMalformedLine, i+1)
		}

		filename, _ := rec["filename"].(string)
		if filename == "" {
			slog.Warn("missing filename in JSONL line", "line", i+1)
			continue
		}

		pos, ok := index[filename]
		if !ok {
			pos = len(groups)
			index[filename] = pos
			groups = append(groups, Group{Filename: filename})
		}
		groups[pos].Records = append(groups[pos].Records, rec)
		total++
	}

	slog.Info("parsed JSONL file", "filenames", len(groups), "annotations", total)
	return groups, nil
}
