package main

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "streamrouter",
	Short: "Stream routing engine for log messages",
	Long: `streamrouter evaluates a log message against a set of streams, each
carrying an ordered conjunction of field rules (PRESENCE, EXACT, GREATER,
SMALLER, REGEX), and reports which streams match.

Streams are supplied as a YAML snapshot; the engine that evaluates them
is rebuilt fresh from that snapshot on every invocation of this CLI.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose (debug) logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(testMatchCmd)
	rootCmd.AddCommand(streamsCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the CLI's slog.Logger from the persistent verbose/quiet
// flags, using tint for readable, leveled, colored terminal output. Library
// code (pkg/engine) never constructs this itself — it accepts an injected
// *slog.Logger and defaults to slog.Default(), so a caller embedding the
// engine is never forced into this handler.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	})
	return slog.New(handler)
}
