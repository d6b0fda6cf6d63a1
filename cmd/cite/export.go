package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/citeparse/internal/batch"
	"github.com/matsen/citeparse/internal/export"
	"github.com/matsen/citeparse/internal/storage"
)

var (
	exportFormat string
	exportOutput string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "jsonl", "Output format: jsonl, xlsx or bibtex")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout; required for xlsx)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all records as JSONL, XLSX or BibTeX",
	Long: `Export every record file, in line order.

Examples:
  cite export > records.jsonl
  cite export --format xlsx -o references.xlsx
  cite export --format bibtex -o references.bib`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	switch exportFormat {
	case "jsonl", "bibtex":
	case "xlsx":
		if exportOutput == "" {
			exitWithError(ExitError, "xlsx export needs --output")
		}
	default:
		exitWithError(ExitError, "unknown format %q (want jsonl, xlsx or bibtex)", exportFormat)
	}

	cfg := mustLoadConfig()
	recs := mustListRecords(batch.NewStore(cfg.OutputDir))

	var w io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			exitWithError(ExitError, "creating %s: %v", exportOutput, err)
		}
		defer f.Close()
		w = f
	}

	var err error
	switch exportFormat {
	case "jsonl":
		err = storage.Write(w, recs)
	case "xlsx":
		err = export.WriteXLSX(w, recs, slog.Default())
	case "bibtex":
		_, err = io.WriteString(w, export.ToBibTeXList(recs))
	}
	if err != nil {
		exitWithError(ExitError, "exporting: %v", err)
	}

	// Stdout already carries the export itself.
	if exportOutput == "" {
		return nil
	}
	if humanOutput {
		outputHuman("Exported %d records to %s\n", len(recs), exportOutput)
		return nil
	}
	return outputJSON(StatusResponse{Status: "exported", Path: exportOutput, Count: len(recs)})
}
