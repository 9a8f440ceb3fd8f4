package rule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/praetorian-inc/streamrouter/pkg/matchers"
	"github.com/praetorian-inc/streamrouter/pkg/types"
)

// validateTimeout is the match timeout CompileRegex attaches to each REGEX
// pattern compiled during validation. It bounds later matches against the
// compiled pattern, not compilation itself; validation only compiles the
// pattern and never runs it.
const validateTimeout = 2 * time.Second

// ValidateStream checks a stream's ID and every rule it carries. It
// reports every problem it finds rather than stopping at the first, since
// it is meant for pre-flight CLI validation where a user wants the full
// list of issues in one pass. It flags every rule the engine would drop
// (unrecognized type, regex that fails to compile) and also rules the
// engine keeps (empty field, EXACT without a value, non-numeric
// GREATER/SMALLER value).
func ValidateStream(s *types.Stream) error {
	if s == nil {
		return fmt.Errorf("stream is nil")
	}
	if s.ID == "" {
		return fmt.Errorf("stream ID is required")
	}

	var problems []string
	for i, r := range s.Rules {
		if err := ValidateStreamRule(r); err != nil {
			problems = append(problems, fmt.Sprintf("rule %d: %v", i, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("stream %s has %d invalid rule(s): %s", s.ID, len(problems), strings.Join(problems, "; "))
	}
	return nil
}

// ValidateStreamRule checks a single rule's field, type, and value for
// internal consistency. It does not consult the index or any other rule,
// so it cannot catch cross-stream issues.
func ValidateStreamRule(r types.StreamRule) error {
	if r.Field == "" {
		return fmt.Errorf("field is required")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("unrecognized rule type")
	}

	switch r.Type {
	case types.Exact:
		if r.Value == "" {
			return fmt.Errorf("EXACT rule requires a value")
		}
	case types.Greater, types.Smaller:
		if _, err := strconv.ParseFloat(r.Value, 64); err != nil {
			return fmt.Errorf("%s rule value %q is not numeric", r.Type, r.Value)
		}
	case types.Regex:
		if r.Value == "" {
			return fmt.Errorf("REGEX rule requires a pattern")
		}
		if _, err := matchers.CompileRegex(r.Value, matchers.DialectRE2, validateTimeout); err != nil {
			return fmt.Errorf("invalid regex pattern %q: %w", r.Value, err)
		}
	}

	return nil
}
