package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matsen/citeparse/internal/batch"
	"github.com/matsen/citeparse/internal/citation"
)

var nextOutput string

func init() {
	nextCmd.Flags().StringVarP(&nextOutput, "output", "o", "", "Also write the batch to this file as tab-prefixed lines")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(resetCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how far the source file has been processed",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	progress := mustLoadProgress(cfg)

	st, err := batch.ComputeStatus(cfg.SourceFile, batch.NewStore(cfg.OutputDir), progress)
	if err != nil {
		exitWithError(ExitDataError, "computing status: %v", err)
	}

	if !humanOutput {
		return outputJSON(st)
	}
	body := fmt.Sprintf("%s\n%s %d/%d (%.1f%%)\n%s %d\n%s %d\n%s %d",
		headerStyle.Render("Processing status"),
		labelStyle.Render("Completed:"), st.Completed, st.SourceTotal, st.Percent,
		labelStyle.Render("Remaining:"), st.Remaining,
		labelStyle.Render("Errors:"), st.TotalErrors,
		labelStyle.Render("Last line:"), st.LastProcessedLine,
	)
	if st.RunID != "" {
		body += "\n" + labelStyle.Render("Run:") + " " + st.RunID
	}
	outputHuman("%s\n", boxStyle.Render(body))
	return nil
}

var nextCmd = &cobra.Command{
	Use:   "next [size]",
	Short: "Show the next batch of references after the last processed line",
	Long: `Show the next references to process, starting after the last processed line.

Size defaults to 50. With --output the batch is also written as
"line<TAB>text" lines, a format the source reader accepts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNext,
}

func runNext(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	progress := mustLoadProgress(cfg)

	size := DefaultSearchLimit
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			exitWithError(ExitError, "invalid size %q", args[0])
		}
		size = n
	}

	cites, err := batch.NextBatch(cfg.SourceFile, progress, size)
	if err != nil {
		exitWithError(ExitDataError, "reading source: %v", err)
	}

	if nextOutput != "" {
		f, err := os.Create(nextOutput)
		if err != nil {
			exitWithError(ExitError, "creating %s: %v", nextOutput, err)
		}
		for _, c := range cites {
			fmt.Fprintf(f, "%d\t%s\n", c.LineNum, c.Text)
		}
		if err := f.Close(); err != nil {
			exitWithError(ExitError, "writing %s: %v", nextOutput, err)
		}
	}

	if humanOutput {
		for _, c := range cites {
			outputHuman("%04d: %s\n", c.LineNum, c.Text)
		}
		if len(cites) == 0 {
			outputHuman("%s\n", successStyle.Render("Nothing left to process."))
		}
		return nil
	}
	if cites == nil {
		cites = []citation.Citation{}
	}
	return outputJSON(cites)
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget saved progress (record files are kept)",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	progress := mustLoadProgress(cfg)

	fresh, err := progress.Reset()
	if err != nil {
		exitWithError(ExitError, "resetting progress: %v", err)
	}

	if humanOutput {
		outputHuman("Progress reset (new run %s)\n", fresh.RunID)
		return nil
	}
	return outputJSON(StatusResponse{Status: "reset", Path: fresh.Path()})
}
