package engine

import (
	"time"

	"github.com/praetorian-inc/streamrouter/pkg/matchers"
	"github.com/praetorian-inc/streamrouter/pkg/types"
)

// TestMatch is the diagnostic harness (C5): for every stream it runs
// every one of that stream's rules directly, bypassing the field-type
// index entirely, and reports each rule's individual outcome alongside
// the stream's overall verdict. It is intentionally slower and more
// informative than Match and must never sit on the production routing
// path (spec §4.5) — use it from a diagnostics endpoint or the CLI's
// testmatch subcommand instead.
//
// A rule dropped at construction (unrecognized type, or a REGEX pattern
// that failed to compile) is skipped here exactly as it is in Match, so
// TestMatch's matched verdict stays equivalent to Match's result set for
// the same message (spec §8's test-harness-equivalence property).
func (e *Engine) TestMatch(msg types.Message) []StreamReport {
	reports := make([]StreamReport, 0, len(e.streams))

	for _, s := range e.streams {
		report := StreamReport{StreamID: s.ID}
		validCount := 0
		allTrue := true

		for i := range s.Rules {
			rule := &s.Rules[i]
			if !rule.Type.Valid() {
				continue
			}

			start := time.Now()
			status := RuleCompleted
			var result bool

			switch rule.Type {
			case types.Presence:
				result = matchers.Invert(*rule, matchers.Presence(msg, *rule))
			case types.Exact, types.Greater, types.Smaller:
				fn, _ := matchers.ByType(rule.Type)
				result = matchers.Invert(*rule, fn(msg, *rule))
			case types.Regex:
				re := e.regexes[rule]
				if re == nil {
					continue // dropped at construction
				}
				matched, timedOut := matchers.RegexMatch(msg, *rule, re)
				if timedOut {
					status = RuleTimedOut
					e.metrics.Timeouts.WithLabelValues("REGEX").Inc()
				} else {
					result = matchers.Invert(*rule, matched)
				}
			}

			validCount++
			if status == RuleTimedOut || !result {
				allTrue = false
			}
			report.Rules = append(report.Rules, RuleReport{
				Field:    rule.Field,
				Type:     rule.Type.String(),
				Status:   status,
				Result:   result,
				Duration: time.Since(start),
			})
		}

		report.Matched = validCount > 0 && allTrue
		reports = append(reports, report)
	}

	return reports
}
