package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/praetorian-inc/streamrouter/pkg/types"
)

// FilterConfig specifies include and exclude patterns for stream filtering
// by ID, e.g. narrowing a large streams file down to one team's streams
// before engine construction.
type FilterConfig struct {
	Include []string // Regex patterns - only matching streams included
	Exclude []string // Regex patterns - matching streams excluded
}

// ParsePatterns splits a comma-separated string into individual patterns.
// Patterns are trimmed of whitespace.
func ParsePatterns(patterns string) []string {
	if patterns == "" {
		return []string{}
	}

	parts := strings.Split(patterns, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Filter applies include and exclude patterns to streams, matched against
// each stream's ID. Include is applied first, then exclude. Empty include
// means "include all". Returns error if any pattern is invalid regex.
func Filter(streams []*types.Stream, config FilterConfig) ([]*types.Stream, error) {
	if len(streams) == 0 {
		return streams, nil
	}

	var includeRegexes []*regexp.Regexp
	for _, pattern := range config.Include {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		includeRegexes = append(includeRegexes, re)
	}

	var excludeRegexes []*regexp.Regexp
	for _, pattern := range config.Exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		excludeRegexes = append(excludeRegexes, re)
	}

	filtered := streams
	if len(includeRegexes) > 0 {
		filtered = applyInclude(streams, includeRegexes)
	}
	if len(excludeRegexes) > 0 {
		filtered = applyExclude(filtered, excludeRegexes)
	}

	return filtered, nil
}

func applyInclude(streams []*types.Stream, regexes []*regexp.Regexp) []*types.Stream {
	result := make([]*types.Stream, 0)
	for _, s := range streams {
		if matchesAny(s.ID, regexes) {
			result = append(result, s)
		}
	}
	return result
}

func applyExclude(streams []*types.Stream, regexes []*regexp.Regexp) []*types.Stream {
	result := make([]*types.Stream, 0)
	for _, s := range streams {
		if !matchesAny(s.ID, regexes) {
			result = append(result, s)
		}
	}
	return result
}

func matchesAny(streamID string, regexes []*regexp.Regexp) bool {
	for _, re := range regexes {
		if re.MatchString(streamID) {
			return true
		}
	}
	return false
}
