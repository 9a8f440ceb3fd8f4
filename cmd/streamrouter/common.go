package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/praetorian-inc/streamrouter/pkg/rule"
	"github.com/praetorian-inc/streamrouter/pkg/types"
)

// streamFlags carries the flags shared by match/testmatch/streams validate
// for loading and narrowing a stream snapshot.
type streamFlags struct {
	path    string
	include string
	exclude string
}

// loadStreams reads and filters a streams YAML file per streamFlags.
func loadStreams(f streamFlags) ([]*types.Stream, error) {
	if f.path == "" {
		return nil, fmt.Errorf("--streams is required")
	}

	loader := rule.NewLoader()
	streams, err := loader.LoadStreamsFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("loading streams from %s: %w", f.path, err)
	}

	if f.include != "" || f.exclude != "" {
		streams, err = rule.Filter(streams, rule.FilterConfig{
			Include: rule.ParsePatterns(f.include),
			Exclude: rule.ParsePatterns(f.exclude),
		})
		if err != nil {
			return nil, fmt.Errorf("filtering streams: %w", err)
		}
	}

	return streams, nil
}

// parseMessage builds a types.Message from repeated field=value flags and
// an optional raw JSON object. JSON fields win on key collision with
// field=value pairs, since --json is meant for whole-message input and
// --field for quick ad-hoc overrides on top of it. Field values from
// --field are always stored as strings; types.Message.FieldFloat parses
// them lazily for GREATER/SMALLER, so no numeric coercion is needed here.
func parseMessage(fields []string, rawJSON string) (types.Message, error) {
	msg := make(types.Message, len(fields))

	for _, kv := range fields {
		field, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --field %q: expected field=value", kv)
		}
		msg[field] = value
	}

	if rawJSON != "" {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(rawJSON), &decoded); err != nil {
			return nil, fmt.Errorf("parsing --json message: %w", err)
		}
		for field, value := range decoded {
			msg[field] = value
		}
	}

	return msg, nil
}

// writeFile writes data to path with the same permissions the teacher's
// loader expects to read back (0o644), used by 'streams new --output'.
func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
