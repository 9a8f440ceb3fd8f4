// Package rule loads, filters, and validates stream definitions from YAML
// before they reach engine construction.
package rule

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/praetorian-inc/streamrouter/pkg/types"
	"gopkg.in/yaml.v3"
)

// yamlStreamRule mirrors the on-disk shape of a single stream rule.
type yamlStreamRule struct {
	Field    string   `yaml:"field"`
	Type     string   `yaml:"type"`
	Value    string   `yaml:"value"`
	Inverted bool     `yaml:"inverted"`
	Keywords []string `yaml:"keywords"`
}

// yamlStream mirrors the on-disk shape of a single stream definition.
type yamlStream struct {
	ID    string           `yaml:"id"`
	Rules []yamlStreamRule `yaml:"rules"`
}

// yamlStreamsFile mirrors a document of the form:
//
//	streams:
//	  - id: high-latency-errors
//	    rules:
//	      - field: level
//	        type: EXACT
//	        value: ERROR
type yamlStreamsFile struct {
	Streams []yamlStream `yaml:"streams"`
}

// Loader reads stream definitions from YAML.
type Loader struct{}

// NewLoader returns a Loader. It carries no state; a struct exists so the
// loading API can grow options later without breaking callers.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadStreams parses a streams document from YAML bytes.
func (l *Loader) LoadStreams(data []byte) ([]*types.Stream, error) {
	var doc yamlStreamsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	streams := make([]*types.Stream, 0, len(doc.Streams))
	for _, ys := range doc.Streams {
		streams = append(streams, convertYAMLStream(ys))
	}
	return streams, nil
}

// LoadStreamsFile parses a streams document from a YAML file path.
func (l *Loader) LoadStreamsFile(path string) ([]*types.Stream, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return l.LoadStreams(data)
}

// LoadStream parses a single stream from YAML bytes. Returns an error if
// zero or more than one stream is present.
func (l *Loader) LoadStream(data []byte) (*types.Stream, error) {
	streams, err := l.LoadStreams(data)
	if err != nil {
		return nil, err
	}
	if len(streams) == 0 {
		return nil, fmt.Errorf("no streams found in YAML")
	}
	if len(streams) > 1 {
		return nil, fmt.Errorf("expected single stream, found %d", len(streams))
	}
	return streams[0], nil
}

// convertYAMLStream converts a yamlStream into a types.Stream. An ID is
// generated when the document omits one, so a hand-written snippet used
// in testMatch doesn't need to invent identifiers.
func convertYAMLStream(ys yamlStream) *types.Stream {
	id := ys.ID
	if id == "" {
		id = uuid.NewString()
	}

	rules := make([]types.StreamRule, 0, len(ys.Rules))
	for _, yr := range ys.Rules {
		ruleType, ok := types.ParseRuleType(yr.Type)
		if !ok {
			// Engine construction drops rules it can't classify; the
			// loader passes Unknown through rather than deciding here.
			ruleType = types.Unknown
		}
		rules = append(rules, types.StreamRule{
			Field:    yr.Field,
			Type:     ruleType,
			Value:    yr.Value,
			Inverted: yr.Inverted,
			Keywords: yr.Keywords,
		})
	}

	return &types.Stream{ID: id, Rules: rules}
}
