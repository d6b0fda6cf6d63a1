package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/citeparse/internal/citation"
	"github.com/matsen/citeparse/internal/record"
	"github.com/matsen/citeparse/internal/remote"
)

var (
	parseLine   int
	parseRemote bool
	parsePrompt string
)

func init() {
	parseCmd.Flags().IntVar(&parseLine, "line", 0, "Parse this line of the source file")
	parseCmd.Flags().BoolVar(&parseRemote, "remote", false, "Extract with the language model instead of the rules")
	parseCmd.Flags().StringVar(&parsePrompt, "prompt", "", "Prompt template file for --remote")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Parse one reference and print its record",
	Long: `Parse a single reference into a record without writing anything.

The reference is given as an argument or selected from the source file with
--line. A reference given as an argument is numbered 1 unless --line is set.

Examples:
  cite parse "DUPONT Jean, Histoire de l'abbaye de Cluny, Paris, 1998"
  cite parse --line 42
  cite parse --line 42 --remote`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	var c citation.Citation
	switch {
	case len(args) == 1:
		lineNum := parseLine
		if lineNum <= 0 {
			lineNum = 1
		}
		var err error
		c, err = citation.Parse(lineNum, args[0])
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
	case parseLine > 0:
		var err error
		c, err = citation.Line(cfg.SourceFile, parseLine)
		if err != nil {
			exitWithError(ExitDataError, "reading source: %v", err)
		}
	default:
		exitWithError(ExitError, "must give a reference or --line")
	}

	ext := newExtractor(cfg, parseRemote, parsePrompt)
	rec, err := ext.Extract(context.Background(), c)
	if err != nil {
		if humanOutput {
			exitWithError(exitCodeFor(err), "%v", err)
		}
		outputJSON(ErrorResponse{Error: err.Error(), Kind: remote.Kind(err)})
		os.Exit(exitCodeFor(err))
	}

	if humanOutput {
		outputHuman("%s", formatRecordHuman(rec))
		outputHuman("%s %s\n", labelStyle.Render("Source:"), strings.TrimSpace(c.Text))
		return nil
	}
	return record.Encode(os.Stdout, rec)
}
