package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/citeparse/internal/sourcepdf"
)

var (
	sourceOutput string
	sourcePages  int
)

func init() {
	sourceFromPDFCmd.Flags().StringVarP(&sourceOutput, "output", "o", "", "Output list file (default stdout)")
	sourceFromPDFCmd.Flags().IntVar(&sourcePages, "pages", 0, "Read only the first N pages")
	sourceCmd.AddCommand(sourceFromPDFCmd)
	rootCmd.AddCommand(sourceCmd)
}

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Prepare source lists",
}

var sourceFromPDFCmd = &cobra.Command{
	Use:   "from-pdf <file.pdf>",
	Short: "Convert a PDF bibliography into a one-reference-per-line list",
	Long: `Extract the text of a PDF bibliography and split it into references.

A reference starts at a numbered line ("12.", "[12]") or at an upper-case
surname; wrapped lines are joined and words hyphenated at a line break are
rejoined. Check the result before running: layout-heavy PDFs need hand fixes.

Examples:
  cite source from-pdf bibliographie.pdf -o liste-tout.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runSourceFromPDF,
}

func runSourceFromPDF(cmd *cobra.Command, args []string) error {
	text, err := sourcepdf.ExtractText(args[0], sourcePages)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", args[0], err)
	}
	entries := sourcepdf.SplitEntries(text)

	var w io.Writer = os.Stdout
	if sourceOutput != "" {
		f, err := os.Create(sourceOutput)
		if err != nil {
			exitWithError(ExitError, "creating %s: %v", sourceOutput, err)
		}
		defer f.Close()
		w = f
	}
	if err := sourcepdf.WriteList(w, entries); err != nil {
		exitWithError(ExitError, "writing list: %v", err)
	}

	if sourceOutput == "" {
		return nil
	}
	if humanOutput {
		outputHuman("Wrote %d references to %s\n", len(entries), sourceOutput)
		return nil
	}
	return outputJSON(StatusResponse{Status: "written", Path: sourceOutput, Count: len(entries)})
}
