// Package matchers implements the per-rule-type predicates (C1):
// PRESENCE, EXACT, GREATER, SMALLER, REGEX. Each matcher has the
// contract match(message, rule) -> bool; there is no matcher base
// type or inheritance, just a closed set of functions dispatched by
// types.RuleType.
package matchers

import (
	"math"
	"strconv"

	"github.com/praetorian-inc/streamrouter/pkg/types"
)

// Func is the shape every rule-type predicate implements.
type Func func(msg types.Message, rule types.StreamRule) bool

// Presence matches iff the field exists with a non-empty value.
// rule.Value is ignored.
//
// Presence needs no inversion logic of its own: the caller negates its
// result through Invert like any other rule type, and because Presence
// is false for a missing or empty field, an inverted PRESENCE rule is
// true exactly when the field is missing or empty. The engine evaluates
// PRESENCE over every field it is bound to (see the PRESENCE loop in
// engine.MatchWithStats), so absent fields reach this negation too.
func Presence(msg types.Message, rule types.StreamRule) bool {
	return msg.Present(rule.Field)
}

// Exact matches iff the field exists and its string form equals
// rule.Value byte-for-byte.
func Exact(msg types.Message, rule types.StreamRule) bool {
	v, ok := msg.FieldString(rule.Field)
	if !ok {
		return false
	}
	return v == rule.Value
}

// Greater matches iff the field exists, both operands parse as finite
// numbers, and the field value is strictly greater than rule.Value.
func Greater(msg types.Message, rule types.StreamRule) bool {
	fieldVal, ruleVal, ok := finiteOperands(msg, rule)
	if !ok {
		return false
	}
	return fieldVal > ruleVal
}

// Smaller matches iff the field exists, both operands parse as finite
// numbers, and the field value is strictly smaller than rule.Value.
func Smaller(msg types.Message, rule types.StreamRule) bool {
	fieldVal, ruleVal, ok := finiteOperands(msg, rule)
	if !ok {
		return false
	}
	return fieldVal < ruleVal
}

// finiteOperands parses the field's value and rule.Value for GREATER/
// SMALLER. ok is false unless both operands are present and finite —
// per spec.md §4.1 "both the field value and rule.value parse as finite
// numbers"; strconv.ParseFloat itself accepts "Inf"/"NaN" without
// error, so those must be rejected explicitly rather than compared.
func finiteOperands(msg types.Message, rule types.StreamRule) (fieldVal, ruleVal float64, ok bool) {
	fieldVal, present := msg.FieldFloat(rule.Field)
	if !present || math.IsInf(fieldVal, 0) || math.IsNaN(fieldVal) {
		return 0, 0, false
	}
	ruleVal, err := strconv.ParseFloat(rule.Value, 64)
	if err != nil || math.IsInf(ruleVal, 0) || math.IsNaN(ruleVal) {
		return 0, 0, false
	}
	return fieldVal, ruleVal, true
}

// Invert negates result iff rule.Inverted is set. All five rule types
// route their raw predicate result through this before it is counted;
// for PRESENCE this produces exactly the "missing or empty" semantics
// spec.md resolves its Open Question with, because Presence itself is
// false on an absent field.
func Invert(rule types.StreamRule, result bool) bool {
	if rule.Inverted {
		return !result
	}
	return result
}

// ByType dispatches to the matcher function for a rule type. REGEX is
// supplied by the caller (pkg/engine) because it needs a compiled,
// per-rule regexp2.Regexp and a timeout, not just the rule's raw value.
func ByType(t types.RuleType) (Func, bool) {
	switch t {
	case types.Presence:
		return Presence, true
	case types.Exact:
		return Exact, true
	case types.Greater:
		return Greater, true
	case types.Smaller:
		return Smaller, true
	default:
		return nil, false
	}
}
