package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/streamrouter/pkg/engine"
)

var (
	testMatchStreams   streamFlags
	testMatchFields    []string
	testMatchJSON      string
	testMatchTimeout   time.Duration
	testMatchOutFormat string
)

var testMatchCmd = &cobra.Command{
	Use:   "testmatch",
	Short: "Run the per-rule diagnostic harness against a message",
	Long: `testmatch runs every rule of every stream directly against the message,
bypassing the field-type index entirely, and reports each rule's individual
outcome alongside the stream's overall verdict.

This is strictly a diagnostic tool: it is slower than 'match' and must
never be mistaken for the production routing path.`,
	RunE: runTestMatch,
}

func init() {
	testMatchCmd.Flags().StringVar(&testMatchStreams.path, "streams", "", "Path to a streams YAML file (required)")
	testMatchCmd.Flags().StringVar(&testMatchStreams.include, "streams-include", "", "Only load streams whose ID matches one of these regex patterns (comma-separated)")
	testMatchCmd.Flags().StringVar(&testMatchStreams.exclude, "streams-exclude", "", "Drop streams whose ID matches one of these regex patterns (comma-separated)")
	testMatchCmd.Flags().StringArrayVar(&testMatchFields, "field", nil, "A field=value pair in the message being matched; may be repeated")
	testMatchCmd.Flags().StringVar(&testMatchJSON, "json", "", "The full message as a JSON object")
	testMatchCmd.Flags().DurationVar(&testMatchTimeout, "rule-timeout", 0, "Per-rule evaluation timeout (default: engine default, ~25ms)")
	testMatchCmd.Flags().StringVar(&testMatchOutFormat, "format", "table", "Output format: table, json")
}

func runTestMatch(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	streams, err := loadStreams(testMatchStreams)
	if err != nil {
		return err
	}

	msg, err := parseMessage(testMatchFields, testMatchJSON)
	if err != nil {
		return err
	}

	e, err := engine.New(streams, engine.Config{RuleTimeout: testMatchTimeout, Logger: logger})
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	reports := e.TestMatch(msg)

	switch testMatchOutFormat {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "table":
		return outputTestMatchTable(cmd, reports)
	default:
		return fmt.Errorf("unknown output format: %s", testMatchOutFormat)
	}
}

func outputTestMatchTable(cmd *cobra.Command, reports []engine.StreamReport) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "STREAM\tMATCHED\tFIELD\tTYPE\tSTATUS\tRESULT\n")
	for _, r := range reports {
		if len(r.Rules) == 0 {
			fmt.Fprintf(w, "%s\t%t\t-\t-\t-\t-\n", r.StreamID, r.Matched)
			continue
		}
		for i, rule := range r.Rules {
			streamCol, matchedCol := "", ""
			if i == 0 {
				streamCol, matchedCol = r.StreamID, fmt.Sprintf("%t", r.Matched)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\n", streamCol, matchedCol, rule.Field, rule.Type, rule.Status, rule.Result)
		}
	}
	return nil
}
