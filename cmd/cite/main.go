// Package main provides the cite CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cite",
	Short: "Turn bibliographic reference lines into structured records",
	Long: `cite parses free-text bibliographic references, one per line, into
structured records: publication metadata (authors, title, imprint, journal or
container) and content metadata (institution, place, region, country,
religious order, period, document type).

Records are written one JSON file per reference. Batch runs resume where they
stopped, skip references that already have a record, and log failures.
Extraction is rule-based by default; --remote sends each reference to a
language model instead.

All commands output JSON by default; use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func init() {
	// Load .env file if present (for ANTHROPIC_API_KEY)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log debug events to stderr")
	rootCmd.Version = Version
}

// setupLogging installs the process-wide slog handler on stderr.
func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
