package matchers

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/praetorian-inc/streamrouter/pkg/types"
)

// Dialect selects the regexp2 compile mode used for REGEX rules.
type Dialect int

const (
	// DialectRE2 compiles with regexp2.RE2|regexp2.Multiline: POSIX/RE2-like
	// syntax, no backreferences or lookaround. This is the default.
	// regexp2 matches by backtracking in both modes, so a pathological
	// pattern relies on the timeout guard under either dialect.
	DialectRE2 Dialect = iota
	// DialectECMAScript compiles with regexp2.ECMAScript|regexp2.Multiline,
	// accepting backreferences and lookaround.
	DialectECMAScript
)

// CompileRegex compiles a REGEX rule's pattern for unanchored substring
// search, with an intrinsic execution-time limit. dialect selects which
// regexp2 mode is tried first; the other mode is always tried as a
// fallback so a pattern that only compiles under the non-preferred mode
// still works, matching the teacher's two-mode compile pattern in
// pkg/matcher/regexp_portable.go. DialectRE2 (the default) prefers
// RE2|Multiline (POSIX/RE2-like syntax, no backreferences or
// lookaround). DialectECMAScript prefers ECMAScript|Multiline
// (backreferences, lookaround, named groups with default flags). Both
// modes match by backtracking, so the timeout applies to either.
func CompileRegex(pattern string, dialect Dialect, timeout time.Duration) (*regexp2.Regexp, error) {
	var first, second regexp2.RegexOptions = regexp2.RE2, regexp2.ECMAScript
	if dialect == DialectECMAScript {
		first, second = regexp2.ECMAScript, regexp2.RE2
	}

	re, err := regexp2.Compile(pattern, first|regexp2.Multiline)
	if err != nil {
		re, err = regexp2.Compile(pattern, second|regexp2.Multiline)
		if err != nil {
			return nil, fmt.Errorf("compiling regex %q: %w", pattern, err)
		}
	}
	re.MatchTimeout = timeout
	return re, nil
}

// RegexMatch evaluates a compiled REGEX rule against a message field.
// It returns (matched, timedOut). A timeout or any other regexp2 error
// is treated as a non-match, never propagated — per spec §7,
// RuleTimeout degenerates to non-match at the call site, not an error
// out of Match.
func RegexMatch(msg types.Message, rule types.StreamRule, re *regexp2.Regexp) (matched bool, timedOut bool) {
	v, ok := msg.FieldString(rule.Field)
	if !ok {
		return false, false
	}

	m, err := re.FindStringMatch(v)
	if err != nil {
		if isTimeout(err) {
			return false, true
		}
		return false, false
	}
	return m != nil, false
}

func isTimeout(err error) bool {
	return strings.Contains(err.Error(), "match timeout")
}
