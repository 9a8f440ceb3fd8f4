package matchers

import (
	"testing"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/praetorian-inc/streamrouter/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresence(t *testing.T) {
	tests := []struct {
		name     string
		msg      types.Message
		rule     types.StreamRule
		expected bool
	}{
		{"present non-empty", types.Message{"level": "INFO"}, types.StreamRule{Field: "level"}, true},
		{"present empty string", types.Message{"level": ""}, types.StreamRule{Field: "level"}, false},
		{"absent", types.Message{}, types.StreamRule{Field: "level"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Presence(tt.msg, tt.rule))
		})
	}
}

func TestExact(t *testing.T) {
	rule := types.StreamRule{Field: "source", Value: "app1"}

	assert.True(t, Exact(types.Message{"source": "app1"}, rule))
	assert.False(t, Exact(types.Message{"source": "app2"}, rule))
	assert.False(t, Exact(types.Message{}, rule))
}

func TestInvertedExactOnAbsentField(t *testing.T) {
	rule := types.StreamRule{Field: "source", Value: "app2", Inverted: true}

	// message has no "source" field at all
	raw := Exact(types.Message{"level": "INFO"}, rule)
	assert.False(t, raw) // Exact on absent field is false
	assert.True(t, Invert(rule, raw))

	raw = Exact(types.Message{"source": "app2"}, rule)
	assert.True(t, raw)
	assert.False(t, Invert(rule, raw))
}

func TestInvertedPresenceOnAbsentField(t *testing.T) {
	rule := types.StreamRule{Field: "source", Inverted: true}

	// field missing entirely -> inverted presence must be true
	assert.True(t, Invert(rule, Presence(types.Message{}, rule)))
	// field present but empty -> inverted presence must be true
	assert.True(t, Invert(rule, Presence(types.Message{"source": ""}, rule)))
	// field present and non-empty -> inverted presence must be false
	assert.False(t, Invert(rule, Presence(types.Message{"source": "x"}, rule)))
}

func TestGreaterSmaller(t *testing.T) {
	greater := types.StreamRule{Field: "response_time", Value: "500"}
	assert.True(t, Greater(types.Message{"response_time": "750"}, greater))
	assert.False(t, Greater(types.Message{"response_time": "abc"}, greater))
	assert.False(t, Greater(types.Message{"response_time": "500"}, greater)) // strict

	smaller := types.StreamRule{Field: "response_time", Value: "500"}
	assert.True(t, Smaller(types.Message{"response_time": "250"}, smaller))
	assert.False(t, Smaller(types.Message{"response_time": "500"}, smaller))
}

func TestGreaterSmaller_RejectsNonFiniteOperands(t *testing.T) {
	infRule := types.StreamRule{Field: "response_time", Value: "Inf"}
	assert.False(t, Greater(types.Message{"response_time": "100"}, infRule))
	assert.False(t, Smaller(types.Message{"response_time": "100"}, infRule))

	nanRule := types.StreamRule{Field: "response_time", Value: "NaN"}
	assert.False(t, Greater(types.Message{"response_time": "100"}, nanRule))
	assert.False(t, Smaller(types.Message{"response_time": "100"}, nanRule))

	finiteRule := types.StreamRule{Field: "response_time", Value: "500"}
	assert.False(t, Greater(types.Message{"response_time": "Inf"}, finiteRule))
	assert.False(t, Smaller(types.Message{"response_time": "-Inf"}, finiteRule))
	assert.False(t, Greater(types.Message{"response_time": "NaN"}, finiteRule))
}

func TestRegexMatch(t *testing.T) {
	re, err := CompileRegex(`err(or)?`, DialectRE2, time.Second)
	require.NoError(t, err)

	rule := types.StreamRule{Field: "msg", Value: `err(or)?`}

	matched, timedOut := RegexMatch(types.Message{"msg": "an error occurred"}, rule, re)
	assert.True(t, matched)
	assert.False(t, timedOut)

	matched, _ = RegexMatch(types.Message{"msg": "all good"}, rule, re)
	assert.False(t, matched)

	matched, _ = RegexMatch(types.Message{}, rule, re)
	assert.False(t, matched)
}

func TestRegexTimeout(t *testing.T) {
	// Catastrophic-backtracking-prone pattern, compiled with ECMAScript
	// preferred and a 1ms match budget.
	re, err := CompileRegex(`(a+)+$`, DialectECMAScript, time.Millisecond)
	require.NoError(t, err)

	rule := types.StreamRule{Field: "msg", Value: `(a+)+$`}
	pathological := types.Message{"msg": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa!"}

	matched, timedOut := RegexMatch(pathological, rule, re)
	assert.False(t, matched)
	_ = timedOut // either true (timed out) or false (the search ended inside the budget); never panics or hangs the test
}

func TestCompileRegex_DialectPreferenceBothCompile(t *testing.T) {
	// A pattern valid under either mode compiles under both; this just
	// confirms both Dialect values are honored end to end without error.
	reRE2, err := CompileRegex(`err(or)?`, DialectRE2, time.Second)
	require.NoError(t, err)
	reECMA, err := CompileRegex(`err(or)?`, DialectECMAScript, time.Second)
	require.NoError(t, err)

	for _, re := range []*regexp2.Regexp{reRE2, reECMA} {
		m, err := re.FindStringMatch("an error occurred")
		require.NoError(t, err)
		assert.NotNil(t, m)
	}
}

func TestCompileRegex_ECMAScriptOnlyFeatureFallsBackUnderEitherDialect(t *testing.T) {
	// A backreference is rejected by RE2 mode; DialectRE2 must still
	// succeed via its ECMAScript fallback, same as DialectECMAScript
	// succeeding on its preferred first attempt.
	pattern := `(\w)\1`

	reRE2, err := CompileRegex(pattern, DialectRE2, time.Second)
	require.NoError(t, err)
	reECMA, err := CompileRegex(pattern, DialectECMAScript, time.Second)
	require.NoError(t, err)

	for _, re := range []*regexp2.Regexp{reRE2, reECMA} {
		m, err := re.FindStringMatch("bookkeeper")
		require.NoError(t, err)
		assert.NotNil(t, m)
	}
}

func TestByType(t *testing.T) {
	_, ok := ByType(types.Presence)
	assert.True(t, ok)
	_, ok = ByType(types.Exact)
	assert.True(t, ok)
	_, ok = ByType(types.Greater)
	assert.True(t, ok)
	_, ok = ByType(types.Smaller)
	assert.True(t, ok)
	_, ok = ByType(types.Regex)
	assert.False(t, ok, "REGEX is dispatched by the engine via a compiled regexp2.Regexp, not ByType")
}
