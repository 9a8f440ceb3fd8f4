package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/streamrouter/pkg/engine"
	"github.com/praetorian-inc/streamrouter/pkg/matchers"
	"github.com/praetorian-inc/streamrouter/pkg/types"
)

var (
	matchStreams   streamFlags
	matchFields    []string
	matchJSON      string
	matchTimeout   time.Duration
	matchOutFormat string
	matchStats     bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Evaluate a message against a stream snapshot",
	Long:  "Build an engine from a streams YAML file and report which streams match the given message",
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchStreams.path, "streams", "", "Path to a streams YAML file (required)")
	matchCmd.Flags().StringVar(&matchStreams.include, "streams-include", "", "Only load streams whose ID matches one of these regex patterns (comma-separated)")
	matchCmd.Flags().StringVar(&matchStreams.exclude, "streams-exclude", "", "Drop streams whose ID matches one of these regex patterns (comma-separated)")
	matchCmd.Flags().StringArrayVar(&matchFields, "field", nil, "A field=value pair in the message being matched; may be repeated")
	matchCmd.Flags().StringVar(&matchJSON, "json", "", "The full message as a JSON object, e.g. '{\"level\":\"ERROR\"}'")
	matchCmd.Flags().DurationVar(&matchTimeout, "rule-timeout", 0, "Per-rule evaluation timeout (default: engine default, ~25ms)")
	matchCmd.Flags().StringVar(&matchOutFormat, "format", "table", "Output format: table, json")
	matchCmd.Flags().BoolVar(&matchStats, "stats", false, "Print a per-rule-type evaluation/timeout breakdown to stderr")
}

func runMatch(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	streams, err := loadStreams(matchStreams)
	if err != nil {
		return err
	}

	msg, err := parseMessage(matchFields, matchJSON)
	if err != nil {
		return err
	}

	e, err := engine.New(streams, engine.Config{
		RuleTimeout: matchTimeout,
		Dialect:     matchers.DialectRE2,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	matched, stats := e.MatchWithStats(msg)
	if matchStats {
		printMatchStats(cmd, stats)
	}

	switch matchOutFormat {
	case "json":
		ids := make([]string, len(matched))
		for i, s := range matched {
			ids[i] = s.ID
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ids)
	case "table":
		out := cmd.OutOrStdout()
		if len(matched) == 0 {
			fmt.Fprintln(out, "no streams matched")
			return nil
		}
		fmt.Fprintf(out, "%d stream(s) matched:\n", len(matched))
		for _, s := range matched {
			fmt.Fprintf(out, "  %s\n", s.ID)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", matchOutFormat)
	}
}

// printMatchStats writes a one-line-per-rule-type evaluation/timeout
// breakdown to stderr, so it never pollutes --format json's stdout.
func printMatchStats(cmd *cobra.Command, stats engine.MatchStats) {
	out := cmd.ErrOrStderr()
	for _, t := range []types.RuleType{types.Presence, types.Exact, types.Greater, types.Smaller, types.Regex} {
		fmt.Fprintf(out, "stats: %-10s evaluated=%d timed_out=%d\n", t, stats.Evaluated[t], stats.TimedOut[t])
	}
}
