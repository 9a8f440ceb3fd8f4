// Package engine implements the stream routing core (C3): it builds the
// rule index from a stream snapshot (C6, the engine factory), evaluates
// inbound messages against that index (C3's match), and exposes a
// diagnostic per-rule harness (C5) alongside it. An Engine is immutable
// once New returns; match and TestMatch allocate only call-local state,
// so a single Engine may be shared across concurrently matching workers.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/praetorian-inc/streamrouter/pkg/index"
	"github.com/praetorian-inc/streamrouter/pkg/matchers"
	"github.com/praetorian-inc/streamrouter/pkg/metrics"
	"github.com/praetorian-inc/streamrouter/pkg/prefilter"
	"github.com/praetorian-inc/streamrouter/pkg/types"
)

// defaultRuleTimeout is the per-matcher wall-clock budget when Config
// leaves RuleTimeout unset. Spec §4.4 asks for "tens of milliseconds";
// 25ms gives headroom for a handful of REGEX rules on one field without
// letting a single pathological pattern stall ingest noticeably.
const defaultRuleTimeout = 25 * time.Millisecond

// Config carries everything engine construction needs beyond the stream
// snapshot itself: the per-rule timeout, the regex dialect preference,
// and the metric/log collaborators a host might already have wired up.
type Config struct {
	// RuleTimeout bounds a single REGEX matcher invocation. Zero means
	// defaultRuleTimeout.
	RuleTimeout time.Duration

	// Dialect selects the preferred regexp2 compile mode; the other mode
	// is still tried as a fallback if the preferred one fails to compile
	// (see matchers.CompileRegex).
	Dialect matchers.Dialect

	// Registerer receives the engine's Prometheus counters. Nil means
	// the counters are created but never registered (suitable for tests
	// and for hosts that scrape Metrics directly).
	Registerer prometheus.Registerer

	// Logger receives per-rule drop/timeout diagnostics. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Engine is the constructed, read-only routing core. Build one with New
// per stream snapshot; discard it and build a fresh one on the next
// snapshot rather than mutating it.
type Engine struct {
	idx     *index.Index
	streams []*types.Stream
	// required is each stream's count of rules that survived
	// construction; a stream absent from this map or mapped to 0 can
	// never appear in a Match result (drop-closed, spec §4.6).
	required map[*types.Stream]int
	// regexes holds the compiled matcher for every surviving REGEX rule,
	// keyed by the rule's own address (stable: Engine never appends to
	// a Stream's Rules slice after construction).
	regexes map[*types.StreamRule]*regexp2.Regexp
	// prefilters holds an optional Aho-Corasick keyword prefilter per
	// field that has REGEX rules bound to it.
	prefilters map[string]*prefilter.Prefilter

	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New is the engine factory (C6): it builds a fresh, immutable Engine
// from a stream snapshot. Rules with an unrecognized type or a regex
// that fails to compile are logged, counted, and dropped; the stream
// they belonged to is kept with a reduced required-rule count, which
// may leave it at zero (drop-closed: such a stream never matches).
// Construction itself never fails on bad rule content — only a metrics
// registration conflict (a reused prometheus.Registerer) returns an error.
func New(streams []*types.Stream, cfg Config) (*Engine, error) {
	if cfg.RuleTimeout <= 0 {
		cfg.RuleTimeout = defaultRuleTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	m, err := metrics.New(cfg.Registerer)
	if err != nil {
		return nil, fmt.Errorf("registering engine metrics: %w", err)
	}

	e := &Engine{
		idx:        index.New(),
		streams:    streams,
		required:   make(map[*types.Stream]int, len(streams)),
		regexes:    make(map[*types.StreamRule]*regexp2.Regexp),
		prefilters: make(map[string]*prefilter.Prefilter),
		timeout:    cfg.RuleTimeout,
		metrics:    m,
		logger:     cfg.Logger,
	}

	for _, s := range streams {
		required := 0
		for i := range s.Rules {
			rule := &s.Rules[i]

			if !rule.Type.Valid() {
				m.Dropped.Inc()
				e.logger.Warn("dropping rule with unrecognized type", "stream", s.ID, "field", rule.Field)
				continue
			}

			if rule.Type == types.Regex {
				re, err := matchers.CompileRegex(rule.Value, cfg.Dialect, cfg.RuleTimeout)
				if err != nil {
					m.Dropped.Inc()
					e.logger.Warn("dropping rule with invalid regex", "stream", s.ID, "field", rule.Field, "error", err)
					continue
				}
				e.regexes[rule] = re
			}

			e.idx.Add(rule.Type, index.Entry{Stream: s, Rule: rule})
			required++
		}
		e.required[s] = required
	}

	for _, field := range e.idx.Fields(types.Regex) {
		e.prefilters[field] = prefilter.New(e.idx.Rules(types.Regex, field))
	}

	return e, nil
}

// Streams returns the stream snapshot the Engine was built from, for
// introspection (e.g. CLI listing). Callers must not mutate it.
func (e *Engine) Streams() []*types.Stream {
	return e.streams
}

// Metrics exposes the engine's Prometheus counters for a host that wants
// to scrape them directly rather than through a registered Registerer.
func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}
