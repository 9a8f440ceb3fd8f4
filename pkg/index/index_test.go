package index

import (
	"testing"

	"github.com/praetorian-inc/streamrouter/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestIndex_AddAndLookup(t *testing.T) {
	idx := New()
	stream := &types.Stream{ID: "A"}
	rule := &types.StreamRule{Field: "source", Type: types.Exact, Value: "app1"}

	idx.Add(types.Exact, Entry{Stream: stream, Rule: rule})

	entries := idx.Rules(types.Exact, "source")
	if assert.Len(t, entries, 1) {
		assert.Same(t, stream, entries[0].Stream)
		assert.Same(t, rule, entries[0].Rule)
	}
	assert.Empty(t, idx.Rules(types.Exact, "other"))
	assert.Empty(t, idx.Rules(types.Regex, "source"))
}

func TestIndex_FieldsUnion(t *testing.T) {
	idx := New()
	s := &types.Stream{ID: "A"}
	idx.Add(types.Exact, Entry{Stream: s, Rule: &types.StreamRule{Field: "a", Type: types.Exact}})
	idx.Add(types.Exact, Entry{Stream: s, Rule: &types.StreamRule{Field: "b", Type: types.Exact}})
	idx.Add(types.Exact, Entry{Stream: s, Rule: &types.StreamRule{Field: "a", Type: types.Exact}})

	fields := idx.Fields(types.Exact)
	assert.ElementsMatch(t, []string{"a", "b"}, fields)
}

func TestIndex_InvariantFieldMatchesBucket(t *testing.T) {
	// Invariant 1 (spec §3): every rule in index[T][f] has field==f, type==T.
	idx := New()
	s := &types.Stream{ID: "A"}
	r := &types.StreamRule{Field: "host", Type: types.Regex, Value: "^h"}
	idx.Add(types.Regex, Entry{Stream: s, Rule: r})

	for _, e := range idx.Rules(types.Regex, "host") {
		assert.Equal(t, "host", e.Rule.Field)
		assert.Equal(t, types.Regex, e.Rule.Type)
	}
}

func TestIndex_Count(t *testing.T) {
	idx := New()
	s := &types.Stream{ID: "A"}
	idx.Add(types.Exact, Entry{Stream: s, Rule: &types.StreamRule{Field: "a", Type: types.Exact}})
	idx.Add(types.Presence, Entry{Stream: s, Rule: &types.StreamRule{Field: "b", Type: types.Presence}})
	assert.Equal(t, 2, idx.Count())
}

func TestIndex_InvalidTypeIgnored(t *testing.T) {
	idx := New()
	s := &types.Stream{ID: "A"}
	idx.Add(types.Unknown, Entry{Stream: s, Rule: &types.StreamRule{Field: "a", Type: types.Unknown}})
	assert.Equal(t, 0, idx.Count())
	assert.Empty(t, idx.Fields(types.Unknown))
}
