package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/litreview/internal/storage"
)

var (
	searchLimit    int
	searchAuthors  []string
	searchYear     string
	searchTitle    string
	searchKeywords string
	searchJournal  string
	searchType     string
	searchDOI      string
)

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results")
	searchCmd.Flags().StringArrayVarP(&searchAuthors, "author", "a", nil, "Filter by author (can be repeated for AND)")
	searchCmd.Flags().StringVarP(&searchYear, "year", "y", "", "Filter by year (2024, 2020:2024, 2020:, :2024)")
	searchCmd.Flags().StringVar(&searchTitle, "title", "", "Search in title only")
	searchCmd.Flags().StringVarP(&searchKeywords, "keyword", "k", "", "Search in keywords only")
	searchCmd.Flags().StringVarP(&searchJournal, "journal", "j", "", "Filter by journal (partial match)")
	searchCmd.Flags().StringVar(&searchType, "type", "", "Filter by RIS type code (JOUR, CONF, ...)")
	searchCmd.Flags().StringVar(&searchDOI, "doi", "", "Find the record with this DOI")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the unique table",
	Long: `Search the unique table through the SQLite search index.

The query searches title, abstract, authors and keywords. Filters combine
with AND. Run 'lit rebuild' first if the index is missing.

Examples:
  lit search "robotics"
  lit search -a Bers -y 2015:2020
  lit search --keyword "unplugged" --type JOUR --human
  lit search --doi 10.1016/j.compedu.2013.10.020`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	db := mustOpenDatabase(root)
	defer db.Close()

	filters := storage.SearchFilters{
		Authors:  searchAuthors,
		Title:    searchTitle,
		Keywords: searchKeywords,
		Journal:  searchJournal,
		Type:     strings.ToUpper(searchType),
		DOI:      searchDOI,
	}
	if len(args) == 1 {
		filters.Keyword = args[0]
	}
	if searchYear != "" {
		from, to, err := parseYearRange(searchYear)
		if err != nil {
			exitWithError(ExitError, "invalid --year: %v", err)
		}
		filters.YearFrom, filters.YearTo = from, to
	}
	if !hasFilter(filters) {
		exitWithError(ExitError, "must specify a query or at least one filter (--author, --year, --title, --keyword, --journal, --type, --doi)")
	}

	hits, err := db.SearchWithFilters(filters, searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	// Empty result is not an error
	if hits == nil {
		hits = []storage.Hit{}
	}

	if humanOutput {
		if len(hits) == 0 {
			fmt.Println("No references found")
		} else {
			fmt.Printf("Found %d references:\n\n", len(hits))
			for _, h := range hits {
				printRefSummary(strconv.Itoa(h.Pos), h.Ref)
			}
		}
	} else {
		outputJSON(hits)
	}
	return nil
}

func hasFilter(f storage.SearchFilters) bool {
	return f.Keyword != "" || len(f.Authors) > 0 || f.Title != "" || f.Keywords != "" ||
		f.YearFrom != 0 || f.YearTo != 0 || f.Journal != "" || f.Type != "" || f.DOI != ""
}

// parseYearRange parses a year range expression into from/to values.
// Supported formats: "2024", "2020:2024", "2020:", ":2024"
func parseYearRange(expr string) (from, to int, err error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, 0, nil
	}

	if before, after, found := strings.Cut(expr, ":"); found {
		if before != "" {
			if from, err = strconv.Atoi(before); err != nil {
				return 0, 0, fmt.Errorf("invalid start year %q", before)
			}
		}
		if after != "" {
			if to, err = strconv.Atoi(after); err != nil {
				return 0, 0, fmt.Errorf("invalid end year %q", after)
			}
		}
		if from != 0 && to != 0 && from > to {
			return 0, 0, fmt.Errorf("start year %d after end year %d", from, to)
		}
		return from, to, nil
	}

	year, err := strconv.Atoi(expr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year %q", expr)
	}
	return year, year, nil
}
