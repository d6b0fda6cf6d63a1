package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/citeparse/internal/batch"
	"github.com/matsen/citeparse/internal/record"
	"github.com/matsen/citeparse/internal/storage"
)

func init() {
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the search index from the record files",
	Long: `Rebuild the SQLite search index from the record directory.

The index is derived data; rebuild it after a run or a save.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	recs := mustListRecords(batch.NewStore(cfg.OutputDir))

	db := mustOpenDatabase(cfg)
	defer db.Close()

	n, err := db.Rebuild(recs)
	if err != nil {
		exitWithError(ExitError, "rebuilding index: %v", err)
	}

	if humanOutput {
		outputHuman("Indexed %d records into %s\n", n, cfg.IndexFile)
		return nil
	}
	return outputJSON(StatusResponse{Status: "indexed", Path: cfg.IndexFile, Count: n})
}

// mustListRecords reads every record file, exits on error.
func mustListRecords(store *batch.Store) []*record.Record {
	recs, err := store.List()
	if err != nil {
		exitWithError(ExitDataError, "reading records: %v", err)
	}
	return recs
}

var (
	searchLimit           int
	searchTitle           string
	searchAuthor          string
	searchInstitution     string
	searchType            string
	searchCountry         string
	searchRegion          string
	searchInstitutionType string
	searchDocumentType    string
	searchOrder           string
	searchCountBy         string
)

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	searchCmd.Flags().StringVarP(&searchTitle, "title", "t", "", "Words that must appear in the title")
	searchCmd.Flags().StringVarP(&searchAuthor, "author", "a", "", "Author name (prefix match)")
	searchCmd.Flags().StringVar(&searchInstitution, "institution", "", "Words that must appear in the institution")
	searchCmd.Flags().StringVar(&searchType, "type", "", "Publication type (monograph, article, book_chapter, thesis)")
	searchCmd.Flags().StringVar(&searchCountry, "country", "", "Country")
	searchCmd.Flags().StringVar(&searchRegion, "region", "", "Region")
	searchCmd.Flags().StringVar(&searchInstitutionType, "institution-type", "", "Institution type (abbey, priory, ...)")
	searchCmd.Flags().StringVar(&searchDocumentType, "document-type", "", "Document type (cartulary, charter, ...)")
	searchCmd.Flags().StringVar(&searchOrder, "order", "", "Religious order")
	searchCmd.Flags().StringVar(&searchCountBy, "count-by", "", "Count records per value of a field instead of listing them")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search indexed records",
	Long: `Search the index built by 'cite index'.

The keyword matches titles, authors, institutions, places and journals.
Filters combine with AND; text filters ignore case and accents, the others
ignore case.

Examples:
  cite search Cluny
  cite search --document-type cartulary --country Belgium
  cite search -a DUPONT --type article
  cite search --count-by country`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	if searchCountBy != "" {
		buckets, err := db.CountBy(searchCountBy)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			for _, b := range buckets {
				v := b.Value
				if v == "" {
					v = "(none)"
				}
				outputHuman("%6d  %s\n", b.Count, v)
			}
			return nil
		}
		if buckets == nil {
			buckets = []storage.Bucket{}
		}
		return outputJSON(buckets)
	}

	filters := storage.SearchFilters{
		Title:           searchTitle,
		Author:          searchAuthor,
		Institution:     searchInstitution,
		Country:         searchCountry,
		Region:          searchRegion,
		InstitutionType: searchInstitutionType,
		DocumentType:    searchDocumentType,
		ReligiousOrder:  searchOrder,
	}
	if len(args) == 1 {
		filters.Keyword = args[0]
	}
	if searchType != "" {
		t, ok := record.NormalizePublicationType(searchType)
		if !ok {
			exitWithError(ExitError, "unknown publication type %q", searchType)
		}
		filters.PublicationType = t
	}

	recs, err := db.Search(filters, searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	if humanOutput {
		if len(recs) == 0 {
			outputHuman("No records found.\n")
			return nil
		}
		for _, rec := range recs {
			outputHuman("%s\n", formatRecordLine(rec))
		}
		return nil
	}
	if recs == nil {
		recs = []*record.Record{}
	}
	return outputJSON(recs)
}
