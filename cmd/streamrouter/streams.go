package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/praetorian-inc/streamrouter/pkg/rule"
	"github.com/praetorian-inc/streamrouter/pkg/types"
)

var streamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "Inspect, validate, and scaffold stream definitions",
	Long:  "Commands for working with stream YAML snapshots outside of matching",
}

// --- streams list ---

var streamsListFlags streamFlags

var streamsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the streams in a snapshot",
	RunE:  runStreamsList,
}

// --- streams validate ---

var streamsValidateFlags streamFlags

var streamsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a streams snapshot without constructing a live engine",
	Long: `validate checks every stream's ID and every rule's field/type/value for
internal consistency (unknown rule type, malformed regex, missing numeric
value) without constructing an engine, prints every problem found, and
exits non-zero if any stream has one.

It flags every rule engine.New would drop (an unrecognized type or a
regex that fails to compile) and also some rules engine.New keeps, such
as an EXACT rule with no value. Use 'streamrouter streams list' after a
clean validate to see what the engine would actually build.`,
	RunE: runStreamsValidate,
}

// --- streams new ---

var (
	streamsNewID  string
	streamsNewOut string
)

var streamsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Scaffold a new single-stream YAML snippet",
	Long:  "Generates a minimal stream definition with a PRESENCE placeholder rule, suitable as a starting point for hand-editing",
	RunE:  runStreamsNew,
}

func init() {
	streamsListCmd.Flags().StringVar(&streamsListFlags.path, "streams", "", "Path to a streams YAML file (required)")
	streamsListCmd.Flags().StringVar(&streamsListFlags.include, "streams-include", "", "Only list streams whose ID matches one of these regex patterns (comma-separated)")
	streamsListCmd.Flags().StringVar(&streamsListFlags.exclude, "streams-exclude", "", "Drop streams whose ID matches one of these regex patterns (comma-separated)")

	streamsValidateCmd.Flags().StringVar(&streamsValidateFlags.path, "streams", "", "Path to a streams YAML file (required)")

	streamsNewCmd.Flags().StringVar(&streamsNewID, "id", "", "Stream ID (default: a generated UUID)")
	streamsNewCmd.Flags().StringVar(&streamsNewOut, "output", "", "Write to this path instead of stdout")

	streamsCmd.AddCommand(streamsListCmd)
	streamsCmd.AddCommand(streamsValidateCmd)
	streamsCmd.AddCommand(streamsNewCmd)
}

func runStreamsList(cmd *cobra.Command, args []string) error {
	streams, err := loadStreams(streamsListFlags)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID\tRULES\n")
	for _, s := range streams {
		fmt.Fprintf(w, "%s\t%d\n", s.ID, len(s.Rules))
	}
	return nil
}

func runStreamsValidate(cmd *cobra.Command, args []string) error {
	if streamsValidateFlags.path == "" {
		return fmt.Errorf("--streams is required")
	}

	loader := rule.NewLoader()
	streams, err := loader.LoadStreamsFile(streamsValidateFlags.path)
	if err != nil {
		return fmt.Errorf("loading streams from %s: %w", streamsValidateFlags.path, err)
	}

	var problems []string
	for _, s := range streams {
		if err := rule.ValidateStream(s); err != nil {
			problems = append(problems, err.Error())
		}
	}

	out := cmd.OutOrStdout()
	if len(problems) == 0 {
		fmt.Fprintf(out, "%d stream(s) valid\n", len(streams))
		return nil
	}

	for _, p := range problems {
		fmt.Fprintln(out, p)
	}
	return fmt.Errorf("%d of %d stream(s) have invalid rules", len(problems), len(streams))
}

func runStreamsNew(cmd *cobra.Command, args []string) error {
	id := streamsNewID
	if id == "" {
		id = uuid.NewString()
	}

	doc := struct {
		Streams []yamlStreamDoc `yaml:"streams"`
	}{
		Streams: []yamlStreamDoc{{
			ID: id,
			Rules: []yamlRuleDoc{
				{Field: "level", Type: types.Presence.String()},
			},
		}},
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("rendering stream scaffold: %w", err)
	}

	if streamsNewOut == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return writeFile(streamsNewOut, data)
}

// yamlStreamDoc/yamlRuleDoc mirror pkg/rule's on-disk shape so 'streams new'
// emits exactly what 'streams list'/'match' expect to load back in.
type yamlStreamDoc struct {
	ID    string        `yaml:"id"`
	Rules []yamlRuleDoc `yaml:"rules"`
}

type yamlRuleDoc struct {
	Field    string `yaml:"field"`
	Type     string `yaml:"type"`
	Value    string `yaml:"value,omitempty"`
	Inverted bool   `yaml:"inverted,omitempty"`
}
