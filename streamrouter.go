// Package streamrouter provides a stream routing engine for log messages:
// given a message and a pre-loaded set of streams, it reports which
// streams' rule conjunctions the message satisfies.
//
// # Basic usage
//
// Build a Router from a stream snapshot and match messages against it:
//
//	router, err := streamrouter.NewRouter(streams)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	matched := router.Match(streamrouter.Message{"level": "ERROR", "source": "app1"})
//	for _, s := range matched {
//	    fmt.Printf("routed to %s\n", s.ID)
//	}
//
// # With custom timeout and metrics
//
//	router, err := streamrouter.NewRouter(streams,
//	    streamrouter.WithRuleTimeout(10*time.Millisecond),
//	    streamrouter.WithRegisterer(prometheus.DefaultRegisterer),
//	)
//
// Users can import just "github.com/praetorian-inc/streamrouter" without
// reaching into the pkg/ subpackages for everyday use; the subpackages
// remain directly importable for callers who want engine.Config's full
// surface or the lower-level pkg/rule/pkg/matchers pieces directly.
package streamrouter

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/praetorian-inc/streamrouter/pkg/engine"
	"github.com/praetorian-inc/streamrouter/pkg/matchers"
	"github.com/praetorian-inc/streamrouter/pkg/metrics"
	"github.com/praetorian-inc/streamrouter/pkg/rule"
	"github.com/praetorian-inc/streamrouter/pkg/types"
)

// Re-export commonly used types for convenience.
type (
	// Stream is an identified routing destination carrying an ordered
	// conjunction of StreamRules.
	Stream = types.Stream

	// StreamRule is a single predicate over one named message field.
	StreamRule = types.StreamRule

	// RuleType identifies the predicate semantics of a StreamRule.
	RuleType = types.RuleType

	// Message is a single log message: field name to value.
	Message = types.Message

	// MatchStats summarizes one Match call's rule-evaluation volume.
	MatchStats = engine.MatchStats

	// StreamReport is one stream's per-rule breakdown from TestMatch.
	StreamReport = engine.StreamReport
)

// Re-export the rule type constants.
const (
	Presence = types.Presence
	Exact    = types.Exact
	Greater  = types.Greater
	Smaller  = types.Smaller
	Regex    = types.Regex
)

// Router wraps an immutable Engine with the defaults and loading
// convenience most callers want: build once per stream snapshot with
// NewRouter, then call Match concurrently from as many workers as
// needed — see pkg/engine.Engine's doc comment for the concurrency
// contract this relies on.
type Router struct {
	engine *engine.Engine
}

// routerConfig holds Router construction options.
type routerConfig struct {
	ruleTimeout time.Duration
	dialect     matchers.Dialect
	registerer  prometheus.Registerer
	logger      *slog.Logger
}

// Option configures a Router.
type Option func(*routerConfig)

// WithRuleTimeout bounds a single matcher invocation (spec §4.4).
// Default is the engine's own default (~25ms).
func WithRuleTimeout(d time.Duration) Option {
	return func(c *routerConfig) { c.ruleTimeout = d }
}

// WithRegexDialect selects the preferred regexp2 compile mode for REGEX
// rules (DialectRE2, the default, or DialectECMAScript). The
// non-preferred mode is still tried as a fallback if a pattern fails to
// compile under the preferred one, so every valid pattern still
// compiles regardless of this setting; it only controls which mode's
// semantics win when a pattern is valid under both.
func WithRegexDialect(d matchers.Dialect) Option {
	return func(c *routerConfig) { c.dialect = d }
}

// WithRegisterer supplies a prometheus.Registerer the Router's metrics
// are registered against. Default: metrics are created but never
// registered (suitable for tests and callers who scrape Metrics()
// directly).
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *routerConfig) { c.registerer = reg }
}

// WithLogger supplies the *slog.Logger the Router uses for per-rule
// drop/timeout diagnostics. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *routerConfig) { c.logger = logger }
}

// NewRouter builds a Router from a stream snapshot (C6, the engine
// factory). Rules with an unrecognized type or an invalid regex are
// logged and dropped rather than failing construction; the stream they
// belonged to keeps its remaining valid rules (spec §4.6).
func NewRouter(streams []*Stream, opts ...Option) (*Router, error) {
	cfg := &routerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	e, err := engine.New(streams, engine.Config{
		RuleTimeout: cfg.ruleTimeout,
		Dialect:     cfg.dialect,
		Registerer:  cfg.registerer,
		Logger:      cfg.logger,
	})
	if err != nil {
		return nil, err
	}
	return &Router{engine: e}, nil
}

// NewRouterFromYAML loads a stream snapshot from a YAML file (see
// pkg/rule.Loader) and builds a Router from it in one step, for callers
// who don't already have a []*Stream from their own persistence layer.
func NewRouterFromYAML(path string, opts ...Option) (*Router, error) {
	streams, err := rule.NewLoader().LoadStreamsFile(path)
	if err != nil {
		return nil, err
	}
	return NewRouter(streams, opts...)
}

// Match evaluates msg against every stream and returns those whose rule
// conjunction is fully satisfied (spec §4.3). It allocates only
// call-local state, so it is safe to call concurrently across workers
// sharing one Router.
func (r *Router) Match(msg Message) []*Stream {
	return r.engine.Match(msg)
}

// MatchWithStats is Match plus a MatchStats breakdown of how much work
// the call did, broken down by rule type.
func (r *Router) MatchWithStats(msg Message) ([]*Stream, MatchStats) {
	return r.engine.MatchWithStats(msg)
}

// TestMatch runs the diagnostic harness (C5): every rule of every
// stream is evaluated directly, bypassing the field-type index, and a
// per-rule report is returned alongside each stream's overall verdict.
// This must never sit on the production routing path — use Match there.
func (r *Router) TestMatch(msg Message) []StreamReport {
	return r.engine.TestMatch(msg)
}

// Streams returns the stream snapshot the Router was built from.
// Callers must not mutate the returned slice or its elements.
func (r *Router) Streams() []*Stream {
	return r.engine.Streams()
}

// Metrics exposes the Router's Prometheus counters (evaluations, rule
// timeouts, dropped rules) for callers who want to scrape them directly
// rather than through a registered Registerer.
func (r *Router) Metrics() *metrics.Metrics {
	return r.engine.Metrics()
}
