package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/citeparse/internal/batch"
	"github.com/matsen/citeparse/internal/record"
	"github.com/matsen/citeparse/internal/storage"
)

var saveStart int

func init() {
	saveCmd.Flags().IntVar(&saveStart, "start", 1, "Line number for the first unnumbered record")
	rootCmd.AddCommand(saveCmd)
}

var saveCmd = &cobra.Command{
	Use:   "save [file]",
	Short: "Save record JSON produced elsewhere into record files",
	Long: `Save records from a file (or stdin) into the record directory.

The input may be a single record object, an array of records, or either form
wrapped as {"line_number": N, "data": {...}} ("line_num" is accepted too).
A record's line comes from the wrapper, then from its reference_number, then
from --start plus its position in the array. Every record must match the
record schema or nothing is saved. A record that cannot be written is logged
to the error log and the rest are still saved.

Examples:
  cite save answers.json
  cat answer.json | cite save --start 1251`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSave,
}

// SaveResponse is the response for the save command.
type SaveResponse struct {
	Saved    []string `json:"saved"`
	Failed   []string `json:"failed"`
	Count    int      `json:"count"`
	ErrorLog string   `json:"error_log,omitempty"`
}

func runSave(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	var in io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			exitWithError(ExitError, "opening %s: %v", args[0], err)
		}
		defer f.Close()
		in = f
	}

	recs, err := storage.DecodePayload(in, saveStart)
	if err != nil {
		exitWithError(ExitDataError, "invalid payload: %v", err)
	}

	store := batch.NewStore(cfg.OutputDir)
	failures := batch.NewFailureLog(cfg.ErrorLog)
	resp := SaveResponse{Saved: []string{}, Failed: []string{}}
	for _, rec := range recs {
		lineNum := mustLineNum(rec)
		if err := store.Write(rec); err != nil {
			slog.Warn("save.record.failed", "line", lineNum, "error", err)
			if logErr := failures.Append(lineNum, batch.KindWriteError, err, record.Value(rec.Publication.Title)); logErr != nil {
				exitWithError(ExitError, "saving %s: %v (and %v)", record.ID(lineNum), err, logErr)
			}
			resp.Failed = append(resp.Failed, record.ID(lineNum))
			continue
		}
		resp.Saved = append(resp.Saved, record.ID(lineNum))
	}
	resp.Count = len(resp.Saved)
	if len(resp.Failed) > 0 {
		resp.ErrorLog = failures.Path()
	}

	if humanOutput {
		for _, id := range resp.Saved {
			outputHuman("%s %s\n", successStyle.Render("saved"), id)
		}
		for _, id := range resp.Failed {
			outputHuman("%s %s (see %s)\n", errorStyle.Render("failed"), id, resp.ErrorLog)
		}
		return nil
	}
	return outputJSON(resp)
}
