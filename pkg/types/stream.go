// Package types holds the data model shared by the matcher, index, and
// engine packages: streams, stream rules, and the messages they route.
package types

// RuleType identifies the predicate semantics of a StreamRule.
type RuleType int

const (
	// Unknown marks a rule whose type name was not recognized when loaded.
	// Engine construction drops Unknown rules (spec §4.1/§4.6): they
	// contribute to neither the index nor a stream's required-rule count.
	Unknown RuleType = iota - 1
	// Presence matches when a field exists with a non-empty value.
	Presence
	// Exact matches when a field's string form equals Value byte-for-byte.
	Exact
	// Greater matches when a field's numeric value is strictly greater than Value.
	Greater
	// Smaller matches when a field's numeric value is strictly smaller than Value.
	Smaller
	// Regex matches when a field's string form contains a substring matching Value.
	Regex
)

// String returns the wire/YAML name of a RuleType.
func (t RuleType) String() string {
	switch t {
	case Presence:
		return "PRESENCE"
	case Exact:
		return "EXACT"
	case Greater:
		return "GREATER"
	case Smaller:
		return "SMALLER"
	case Regex:
		return "REGEX"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether t is one of the five recognized rule types.
func (t RuleType) Valid() bool {
	return t >= Presence && t <= Regex
}

// ParseRuleType converts a rule type name (case-sensitive, as it appears
// in stream YAML definitions) into a RuleType. ok is false for any name
// outside the recognized set; callers must drop the rule rather than
// guess, per spec §4.1.
func ParseRuleType(name string) (t RuleType, ok bool) {
	switch name {
	case "PRESENCE":
		return Presence, true
	case "EXACT":
		return Exact, true
	case "GREATER":
		return Greater, true
	case "SMALLER":
		return Smaller, true
	case "REGEX":
		return Regex, true
	default:
		return Unknown, false
	}
}

// StreamRule is a single predicate over one named message field.
type StreamRule struct {
	Field    string   // message field name this rule inspects
	Type     RuleType // predicate kind
	Value    string   // comparand: string for EXACT/REGEX, numeric text for GREATER/SMALLER, unused for PRESENCE
	Inverted bool     // negate the predicate's raw result

	// Keywords are literal substrings that must appear in the field's
	// value for a REGEX rule to have any chance of matching (e.g. "AKIA"
	// for an AWS key pattern). Optional; only consulted by pkg/prefilter.
	// Unused for every other rule type.
	Keywords []string
}

// Stream is an identified routing destination carrying an ordered
// conjunction of StreamRules. A Stream with zero rules never matches
// any message.
type Stream struct {
	ID    string
	Rules []StreamRule
}
