package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matsen/citeparse/internal/batch"
	"github.com/matsen/citeparse/internal/citation"
)

var (
	runFrom    int
	runTo      int
	runLimit   int
	runResume  bool
	runRemote  bool
	runWorkers int
	runPrompt  string
)

func init() {
	runCmd.Flags().IntVar(&runFrom, "from", 0, "First source line to process")
	runCmd.Flags().IntVar(&runTo, "to", 0, "Last source line to process")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "Process at most this many references")
	runCmd.Flags().BoolVar(&runResume, "resume", false, "Start after the last processed line")
	runCmd.Flags().BoolVar(&runRemote, "remote", false, "Extract with the language model instead of the rules")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "Concurrent extractions (default from config)")
	runCmd.Flags().StringVar(&runPrompt, "prompt", "", "Prompt template file for --remote")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process references from the source file into record files",
	Long: `Process a range of the source file, writing one record file per reference.

References that already have a record file are skipped without extraction.
Failures are appended to the error log and the run continues. Progress is
saved periodically so an interrupted run can be resumed with --resume.

Examples:
  cite run                          # whole source file
  cite run --from 1251 --to 1500
  cite run --resume --limit 100
  cite run --remote --workers 4`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

// RunResponse is the response for the run command.
type RunResponse struct {
	RunID     string `json:"run_id"`
	Total     int    `json:"total"`
	Written   int    `json:"written"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	Succeeded int    `json:"succeeded"`
	ElapsedMS int64  `json:"elapsed_ms"`
	OutputDir string `json:"output_dir"`
	ErrorLog  string `json:"error_log,omitempty"`
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	progress := mustLoadProgress(cfg)

	rng := citation.Range{From: runFrom, To: runTo}
	if runResume && rng.From == 0 {
		rng.From = progress.LastProcessedLine + 1
	}
	cites, err := citation.ReadFile(cfg.SourceFile, rng)
	if err != nil {
		exitWithError(ExitDataError, "reading source: %v", err)
	}
	if runLimit > 0 && len(cites) > runLimit {
		cites = cites[:runLimit]
	}

	workers := runWorkers
	if workers <= 0 {
		workers = cfg.Workers
	}

	ext := newExtractor(cfg, runRemote, runPrompt)
	store := batch.NewStore(cfg.OutputDir)
	failures := batch.NewFailureLog(cfg.ErrorLog)

	runner := batch.NewRunner(ext, store,
		batch.WithWorkers(workers),
		batch.WithFailureLog(failures),
		batch.WithProgress(progress),
		batch.WithLogger(slog.Default()),
		batch.WithProgressFunc(batch.DefaultReportEvery, func(s batch.Summary) {
			if humanOutput {
				fmt.Fprintf(os.Stderr, "%s %d/%d (%d failed)\n",
					labelStyle.Render("progress:"), s.Written+s.Skipped+s.Failed, s.Total, s.Failed)
			}
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := runner.Run(ctx, cites)
	if err != nil && !errors.Is(err, context.Canceled) {
		exitWithError(ExitError, "run failed: %v", err)
	}

	resp := RunResponse{
		RunID:     progress.RunID,
		Total:     sum.Total,
		Written:   sum.Written,
		Skipped:   sum.Skipped,
		Failed:    sum.Failed,
		Succeeded: sum.Succeeded(),
		ElapsedMS: sum.Elapsed.Milliseconds(),
		OutputDir: store.Dir(),
	}
	if sum.Failed > 0 {
		resp.ErrorLog = failures.Path()
	}

	if humanOutput {
		printRunSummary(resp, sum, err != nil)
	} else {
		outputJSON(resp)
	}
	if err != nil {
		os.Exit(ExitError)
	}
	return nil
}

func printRunSummary(resp RunResponse, sum batch.Summary, interrupted bool) {
	title := headerStyle.Render("Run complete")
	if interrupted {
		title = errorStyle.Render("Run interrupted")
	}
	failed := fmt.Sprintf("%d", resp.Failed)
	if resp.Failed > 0 {
		failed = errorStyle.Render(failed)
	}
	body := fmt.Sprintf("%s\n%s %s\n%s %d  %s %d  %s %s\n%s %s\n%s %s",
		title,
		labelStyle.Render("Run:"), resp.RunID,
		labelStyle.Render("Written:"), resp.Written,
		labelStyle.Render("Skipped:"), resp.Skipped,
		labelStyle.Render("Failed:"), failed,
		labelStyle.Render("Succeeded:"), successStyle.Render(fmt.Sprintf("%d/%d", resp.Succeeded, resp.Total)),
		labelStyle.Render("Elapsed:"), formatDuration(sum.Elapsed),
	)
	if resp.ErrorLog != "" {
		body += "\n" + labelStyle.Render("Errors:") + " " + resp.ErrorLog
	}
	outputHuman("%s\n", boxStyle.Render(body))
}
