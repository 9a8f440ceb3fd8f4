package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/streamrouter/pkg/types"
)

func TestTestMatch_EquivalentToMatch(t *testing.T) {
	streams := []*types.Stream{
		{ID: "E", Rules: []types.StreamRule{{Field: "host", Type: types.Exact, Value: "h1"}}},
		{ID: "F", Rules: []types.StreamRule{
			{Field: "host", Type: types.Exact, Value: "h1"},
			{Field: "env", Type: types.Exact, Value: "prod"},
		}},
		{ID: "G"}, // empty stream, never matches
	}
	e, err := New(streams, Config{})
	require.NoError(t, err)

	msg := types.Message{"host": "h1"}
	matched := e.Match(msg)
	matchedIDs := make(map[string]bool, len(matched))
	for _, s := range matched {
		matchedIDs[s.ID] = true
	}

	reports := e.TestMatch(msg)
	require.Len(t, reports, 3)
	for _, r := range reports {
		assert.Equal(t, matchedIDs[r.StreamID], r.Matched, r.StreamID)
	}
}

func TestTestMatch_PerRuleDetail(t *testing.T) {
	streams := []*types.Stream{{
		ID: "A",
		Rules: []types.StreamRule{
			{Field: "level", Type: types.Exact, Value: "ERROR"},
			{Field: "trace_id", Type: types.Presence},
		},
	}}
	e, err := New(streams, Config{})
	require.NoError(t, err)

	reports := e.TestMatch(types.Message{"level": "ERROR"})
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Rules, 2)
	assert.True(t, reports[0].Rules[0].Result)
	assert.False(t, reports[0].Rules[1].Result)
	assert.False(t, reports[0].Matched)
}

func TestTestMatch_SkipsRulesDroppedAtConstruction(t *testing.T) {
	streams := []*types.Stream{{
		ID: "A",
		Rules: []types.StreamRule{
			{Field: "level", Type: types.Exact, Value: "ERROR"},
			{Field: "msg", Type: types.Regex, Value: "("},
		},
	}}
	e, err := New(streams, Config{})
	require.NoError(t, err)

	reports := e.TestMatch(types.Message{"level": "ERROR"})
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Rules, 1, "the invalid regex rule should be absent from the report entirely")
	assert.True(t, reports[0].Matched)
}

func TestTestMatch_EmptyStreamNeverMatched(t *testing.T) {
	streams := []*types.Stream{{ID: "empty"}}
	e, err := New(streams, Config{})
	require.NoError(t, err)

	reports := e.TestMatch(types.Message{"anything": "value"})
	require.Len(t, reports, 1)
	assert.False(t, reports[0].Matched)
	assert.Empty(t, reports[0].Rules)
}
