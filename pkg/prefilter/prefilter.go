// Package prefilter prunes REGEX index entries with Aho-Corasick keyword
// matching before they reach the (comparatively expensive) timeout-guarded
// regexp2 evaluation. It is a pure optimization layered on top of the
// required field-type index (pkg/index); a REGEX rule with no Keywords
// is always a candidate, exactly like a rule the teacher's prefilter
// treats as "no keywords = always check".
package prefilter

import (
	"github.com/cloudflare/ahocorasick"
	"github.com/praetorian-inc/streamrouter/pkg/index"
	"github.com/praetorian-inc/streamrouter/pkg/types"
)

// Prefilter narrows a field's REGEX entries to the ones whose Keywords
// actually occur in that field's value.
type Prefilter struct {
	matcher          *ahocorasick.Matcher
	keywords         []string                  // keyword at each Aho-Corasick index
	keywordEntries   map[string][]index.Entry  // keyword -> entries needing it
	noKeywordEntries []index.Entry             // entries always checked (no keywords, or inverted)
}

// New builds a Prefilter from one field's REGEX entries (as returned by
// index.Index.Rules(types.Regex, field)).
func New(entries []index.Entry) *Prefilter {
	pf := &Prefilter{
		keywordEntries:   make(map[string][]index.Entry),
		noKeywordEntries: make([]index.Entry, 0),
	}

	keywordSet := make(map[string]bool)
	for _, e := range entries {
		// An inverted rule's raw predicate contributes to the result
		// negated, so a keyword miss (the usual reason to prune) is
		// exactly the case where an inverted rule is satisfied. Keyword
		// pruning would drop it before Invert ever runs, so inverted
		// rules always go through, same as a rule with no Keywords.
		if len(e.Rule.Keywords) == 0 || e.Rule.Inverted {
			pf.noKeywordEntries = append(pf.noKeywordEntries, e)
			continue
		}
		for _, kw := range e.Rule.Keywords {
			if !keywordSet[kw] {
				keywordSet[kw] = true
				pf.keywords = append(pf.keywords, kw)
			}
			pf.keywordEntries[kw] = append(pf.keywordEntries[kw], e)
		}
	}

	if len(pf.keywords) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.keywords)
	}

	return pf
}

// Filter returns the entries that might match value: those with no
// Keywords or with Inverted set, plus those whose Keywords were found
// as substrings of value.
func (pf *Prefilter) Filter(value string) []index.Entry {
	result := make([]index.Entry, 0, len(pf.noKeywordEntries))
	result = append(result, pf.noKeywordEntries...)

	if pf.matcher == nil {
		return result
	}

	hits := pf.matcher.Match([]byte(value))

	seen := make(map[*types.StreamRule]bool, len(result))
	for _, e := range pf.noKeywordEntries {
		seen[e.Rule] = true
	}

	for _, hit := range hits {
		kw := pf.keywords[hit]
		for _, e := range pf.keywordEntries[kw] {
			if !seen[e.Rule] {
				seen[e.Rule] = true
				result = append(result, e)
			}
		}
	}

	return result
}
