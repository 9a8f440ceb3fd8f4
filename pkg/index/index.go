// Package index builds and holds the Rule Index (C2): five independent
// field-name -> rule-list maps, one per recognized RuleType, plus a
// parallel field-name set per type. It is the structure the engine (C3)
// consults so that, for every type but PRESENCE, inner work is bounded
// by the intersection of a message's fields with that type's field set
// instead of a full scan of every rule.
package index

import "github.com/praetorian-inc/streamrouter/pkg/types"

// Entry is one indexed rule together with the stream it belongs to, so
// the engine can tally the owning stream's satisfied-rule count without
// indexing back from rule to stream by any other means.
type Entry struct {
	Stream *types.Stream
	Rule   *types.StreamRule
}

// numTypes is the count of recognized RuleType values (Presence..Regex).
const numTypes = int(types.Regex) + 1

// Index holds the five field->rules maps and their field-name sets.
// An Index is built once per engine construction and never mutated
// afterward (invariant 4 in spec §3).
type Index struct {
	byField [numTypes]map[string][]Entry
	fields  [numTypes]map[string]struct{}
}

// New returns an empty Index with all five buckets initialized.
func New() *Index {
	idx := &Index{}
	for t := 0; t < numTypes; t++ {
		idx.byField[t] = make(map[string][]Entry)
		idx.fields[t] = make(map[string]struct{})
	}
	return idx
}

// Add inserts entry into type t's bucket, keyed by entry.Rule.Field.
// Insertion is amortized O(1) and preserves insertion order within a
// field's list, though evaluation order is immaterial to the final
// result (conjunction is by count, not sequence).
func (idx *Index) Add(t types.RuleType, entry Entry) {
	if !t.Valid() {
		return
	}
	i := int(t)
	idx.byField[i][entry.Rule.Field] = append(idx.byField[i][entry.Rule.Field], entry)
	idx.fields[i][entry.Rule.Field] = struct{}{}
}

// Rules returns the rules of type t bound to field. The returned slice
// must not be mutated by callers.
func (idx *Index) Rules(t types.RuleType, field string) []Entry {
	if !t.Valid() {
		return nil
	}
	return idx.byField[int(t)][field]
}

// Fields returns every field name that has at least one rule of type t.
func (idx *Index) Fields(t types.RuleType) []string {
	if !t.Valid() {
		return nil
	}
	set := idx.fields[int(t)]
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	return out
}

// HasField reports whether type t has any rule bound to field.
func (idx *Index) HasField(t types.RuleType, field string) bool {
	if !t.Valid() {
		return false
	}
	_, ok := idx.fields[int(t)][field]
	return ok
}

// Count returns the total number of indexed rules across all five types.
func (idx *Index) Count() int {
	n := 0
	for t := 0; t < numTypes; t++ {
		for _, entries := range idx.byField[t] {
			n += len(entries)
		}
	}
	return n
}
