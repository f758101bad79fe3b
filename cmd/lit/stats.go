package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/litreview/internal/bibstats"
)

var statsTop int

func init() {
	statsCmd.Flags().IntVar(&statsTop, "top", bibstats.DefaultTopN, "Length of the ranked lists")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show bibliometric statistics of the unique table",
	Long: `Show bibliometric statistics of the unique table: most frequent first
authors, products per year and type, products per type, and the most
frequent journals and publishers.

Examples:
  lit stats
  lit stats --top 10 --human`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	cfg := mustLoadConfig(root)

	stats := bibstats.Compute(mustReadUnique(cfg), statsTop)

	if humanOutput {
		printStatsHuman(stats)
	} else {
		outputJSON(stats)
	}
	return nil
}

func printCounts(title string, counts []bibstats.Count) {
	fmt.Printf("%s:\n", title)
	if len(counts) == 0 {
		fmt.Println("  (none)")
	}
	for _, c := range counts {
		fmt.Printf("  %5d  %s\n", c.Count, truncateString(c.Name, SearchTitleMaxLen))
	}
	fmt.Println()
}

func printStatsHuman(s bibstats.Stats) {
	fmt.Printf("%d records\n\n", s.Records)
	printCounts("Top first authors", s.TopAuthors)
	printCounts("Products by type", s.ProductsByType)
	printCounts("Top journals", s.TopJournals)
	printCounts("Top publishers", s.TopPublishers)

	fmt.Println("Products by year:")
	for _, y := range s.YearsByType {
		total := 0
		for _, t := range y.Types {
			total += t.Count
		}
		fmt.Printf("  %d  %5d", y.Year, total)
		for _, t := range y.Types {
			fmt.Printf("  %s=%d", t.Name, t.Count)
		}
		fmt.Println()
	}
}
