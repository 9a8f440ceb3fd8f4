package engine

import (
	"github.com/praetorian-inc/streamrouter/pkg/matchers"
	"github.com/praetorian-inc/streamrouter/pkg/types"
)

// MatchStats summarizes one Match call's rule-evaluation volume, broken
// down by rule type. It is a lighter-weight companion to TestMatch's
// per-rule report: just enough to drive a CLI --stats flag or a log
// line, without TestMatch's bypass-the-index, check-every-rule cost.
type MatchStats struct {
	Evaluated map[types.RuleType]int
	TimedOut  map[types.RuleType]int
}

func newMatchStats() MatchStats {
	return MatchStats{
		Evaluated: make(map[types.RuleType]int, numRuleTypes),
		TimedOut:  make(map[types.RuleType]int, numRuleTypes),
	}
}

const numRuleTypes = int(types.Regex) + 1

// Match evaluates msg against the engine's full stream set and returns
// every stream whose rules all matched (spec §4.3). It allocates only
// call-local state, so it is safe to call concurrently on a shared
// Engine. Order of the returned slice is unspecified but deterministic
// for a given msg and Engine.
func (e *Engine) Match(msg types.Message) []*types.Stream {
	streams, _ := e.MatchWithStats(msg)
	return streams
}

// MatchWithStats is Match plus a MatchStats breakdown of how much work
// the call actually did, for callers (the CLI's --stats flag, a host's
// own logging) that want more than the boolean matched/unmatched result
// without paying TestMatch's full per-rule-report cost.
func (e *Engine) MatchWithStats(msg types.Message) ([]*types.Stream, MatchStats) {
	satisfied := make(map[*types.Stream]int, len(e.streams))
	stats := newMatchStats()

	// PRESENCE is evaluated over every field it's bound to, not just the
	// message's own fields, because it must be able to detect absence
	// for inversion (spec §4.2).
	for _, field := range e.idx.Fields(types.Presence) {
		for _, entry := range e.idx.Rules(types.Presence, field) {
			e.metrics.Evaluations.WithLabelValues("PRESENCE").Inc()
			stats.Evaluated[types.Presence]++
			raw := matchers.Presence(msg, *entry.Rule)
			if matchers.Invert(*entry.Rule, raw) {
				satisfied[entry.Stream]++
			}
		}
	}

	e.matchConstantTime(msg, types.Exact, "EXACT", satisfied, &stats)
	e.matchConstantTime(msg, types.Greater, "GREATER", satisfied, &stats)
	e.matchConstantTime(msg, types.Smaller, "SMALLER", satisfied, &stats)
	e.matchRegex(msg, satisfied, &stats)

	result := make([]*types.Stream, 0)
	for _, s := range e.streams {
		required := e.required[s]
		if required > 0 && satisfied[s] == required {
			result = append(result, s)
		}
	}
	return result, stats
}

// matchConstantTime handles EXACT/GREATER/SMALLER: types whose matcher is
// O(1) and needs no timeout guard (spec §4.4). Candidates are bounded to
// the intersection of msg's fields and the type's field set, except for
// inverted rules bound to a field msg doesn't have at all — those still
// need evaluating (see below).
func (e *Engine) matchConstantTime(msg types.Message, t types.RuleType, label string, satisfied map[*types.Stream]int, stats *MatchStats) {
	fn, ok := matchers.ByType(t)
	if !ok {
		return
	}
	for field := range msg {
		if !e.idx.HasField(t, field) {
			continue
		}
		for _, entry := range e.idx.Rules(t, field) {
			e.metrics.Evaluations.WithLabelValues(label).Inc()
			stats.Evaluated[t]++
			if matchers.Invert(*entry.Rule, fn(msg, *entry.Rule)) {
				satisfied[entry.Stream]++
			}
		}
	}

	// A field this type is bound to but that msg doesn't have at all is
	// never visited above. fn always returns false on a missing field
	// (spec §4.1), so a non-inverted rule there can never be satisfied —
	// but an inverted one is satisfied by that same false flipping to
	// true (spec.md's "EXACT source=app2 inverted=true matches a message
	// with no source field" example). Only inverted rules need this
	// pass; fn need not even run since its result on an absent field is
	// already known.
	for _, field := range e.idx.Fields(t) {
		if _, present := msg[field]; present {
			continue
		}
		for _, entry := range e.idx.Rules(t, field) {
			if !entry.Rule.Inverted {
				continue
			}
			e.metrics.Evaluations.WithLabelValues(label).Inc()
			stats.Evaluated[t]++
			satisfied[entry.Stream]++
		}
	}
}

// matchRegex handles REGEX: the only type subject to the timeout guard.
// It narrows candidates through the per-field Aho-Corasick prefilter
// before running the timeout-bounded regexp2 evaluation.
func (e *Engine) matchRegex(msg types.Message, satisfied map[*types.Stream]int, stats *MatchStats) {
	for field := range msg {
		if !e.idx.HasField(types.Regex, field) {
			continue
		}
		value, ok := msg.FieldString(field)
		if !ok {
			continue
		}

		entries := e.idx.Rules(types.Regex, field)
		if pf, ok := e.prefilters[field]; ok {
			entries = pf.Filter(value)
		}

		for _, entry := range entries {
			e.metrics.Evaluations.WithLabelValues("REGEX").Inc()
			stats.Evaluated[types.Regex]++
			re := e.regexes[entry.Rule]
			if re == nil {
				continue
			}
			matched, timedOut := matchers.RegexMatch(msg, *entry.Rule, re)
			if timedOut {
				e.metrics.Timeouts.WithLabelValues("REGEX").Inc()
				stats.TimedOut[types.Regex]++
				e.logger.Warn("rule regex timed out", "stream", entry.Stream.ID, "field", field, "pattern", entry.Rule.Value)
				continue
			}
			if matchers.Invert(*entry.Rule, matched) {
				satisfied[entry.Stream]++
			}
		}
	}

	// As in matchConstantTime: a field bound to REGEX rules but absent
	// from msg, or holding a value with no string form, is never
	// evaluated above. RegexMatch is false on such a field regardless of
	// pattern, so only inverted rules there can be satisfied; no need to
	// run the compiled regex at all.
	for _, field := range e.idx.Fields(types.Regex) {
		if _, ok := msg.FieldString(field); ok {
			continue
		}
		for _, entry := range e.idx.Rules(types.Regex, field) {
			if !entry.Rule.Inverted {
				continue
			}
			e.metrics.Evaluations.WithLabelValues("REGEX").Inc()
			stats.Evaluated[types.Regex]++
			satisfied[entry.Stream]++
		}
	}
}
