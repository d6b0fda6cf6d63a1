package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/citeparse/internal/citation"
)

var (
	listFrom  int
	listCount int
)

func init() {
	listCmd.Flags().IntVar(&listFrom, "from", 1, "First source line")
	listCmd.Flags().IntVar(&listCount, "count", DefaultSearchLimit, "Number of lines to show")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print numbered references from the source file",
	Long: `Print a window of the source file as numbered references.

Blank lines keep their number but are not shown.

Examples:
  cite list --from 1251 --count 20
  cite list --human`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	if listFrom < 1 || listCount < 1 {
		exitWithError(ExitError, "--from and --count must be positive")
	}
	cfg := mustLoadConfig()

	cites, err := citation.ReadFile(cfg.SourceFile, citation.Range{From: listFrom, To: listFrom + listCount - 1})
	if err != nil {
		exitWithError(ExitDataError, "reading source: %v", err)
	}

	if humanOutput {
		for _, c := range cites {
			outputHuman("%04d: %s\n", c.LineNum, c.Text)
		}
		return nil
	}
	if cites == nil {
		cites = []citation.Citation{}
	}
	return outputJSON(cites)
}
