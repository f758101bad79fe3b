package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/litreview/internal/analysis"
	"github.com/matsen/litreview/internal/reference"
	"github.com/matsen/litreview/internal/taxonomy"
)

var termsCategory string

func init() {
	termsMatchCmd.Flags().StringVar(&termsCategory, "category", "", "Only match terms of this category")
	termsCmd.AddCommand(termsNormalizeCmd)
	termsCmd.AddCommand(termsMatchCmd)
	termsCmd.AddCommand(termsRecordsCmd)
	termsCmd.AddCommand(termsListCmd)
	rootCmd.AddCommand(termsCmd)
}

var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "Inspect the taxonomy and term matching",
}

var termsNormalizeCmd = &cobra.Command{
	Use:   "normalize <term>...",
	Short: "Map terms to their canonical form",
	Long: `Map each term to its canonical taxonomy form. Terms the taxonomy does not
know are returned unchanged.

Examples:
  lit terms normalize kindergarten "computational thinking skills"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTermsNormalize,
}

var termsMatchCmd = &cobra.Command{
	Use:   "match [text]",
	Short: "Find taxonomy terms in a text",
	Long: `Find the taxonomy terms present in a text. Reads stdin when no text is given.

Examples:
  lit terms match "Children debugging block programs with robots"
  lit terms match --category Habilidades < abstract.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTermsMatch,
}

var termsRecordsCmd = &cobra.Command{
	Use:   "records <term>",
	Short: "List unique records whose abstract contains a term",
	Args:  cobra.ExactArgs(1),
	RunE:  runTermsRecords,
}

var termsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List taxonomy categories and terms",
	Args:  cobra.NoArgs,
	RunE:  runTermsList,
}

// NormalizedTerm pairs an input with its canonical form.
type NormalizedTerm struct {
	Input     string `json:"input"`
	Canonical string `json:"canonical"`
	Known     bool   `json:"known"`
	Category  string `json:"category,omitempty"`
}

// TermRecordsResult is the response for terms records.
type TermRecordsResult struct {
	Term    string                `json:"term"`
	Count   int                   `json:"count"`
	Records []reference.Reference `json:"records"`
}

func runTermsNormalize(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	tax, _ := mustLoadTaxonomy(mustLoadConfig(root), nil)

	results := make([]NormalizedTerm, 0, len(args))
	for _, in := range args {
		canonical := tax.Normalize(in)
		category, known := tax.CategoryOf(canonical)
		results = append(results, NormalizedTerm{Input: in, Canonical: canonical, Known: known, Category: category})
	}

	if humanOutput {
		for _, r := range results {
			marker := ""
			if !r.Known {
				marker = " (not in taxonomy)"
			}
			fmt.Printf("%s -> %s%s\n", r.Input, r.Canonical, marker)
		}
	} else {
		outputJSON(results)
	}
	return nil
}

func runTermsMatch(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	tax, _ := mustLoadTaxonomy(mustLoadConfig(root), nil)

	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := readAllStdin()
		if err != nil {
			exitWithError(ExitError, "reading stdin: %v", err)
		}
		text = data
	}

	matches := taxonomy.NewMatcher(tax, nil).MatchAll(text)
	if termsCategory != "" {
		if _, ok := tax.Category(termsCategory); !ok {
			exitWithError(ExitError, "unknown category %q", termsCategory)
		}
		filtered := matches[:0]
		for _, m := range matches {
			if m.Category == termsCategory {
				filtered = append(filtered, m)
			}
		}
		matches = filtered
	}
	if matches == nil {
		matches = []taxonomy.Match{}
	}

	if humanOutput {
		if len(matches) == 0 {
			fmt.Println("No taxonomy terms found")
		}
		for _, m := range matches {
			fmt.Printf("%s: %s\n", m.Category, m.Term)
		}
	} else {
		outputJSON(matches)
	}
	return nil
}

func runTermsRecords(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	cfg := mustLoadConfig(root)
	tax, _ := mustLoadTaxonomy(cfg, nil)

	a := analysis.New(tax, analysis.Options{})
	term := tax.Normalize(args[0])
	if !tax.IsCanonical(term) {
		exitWithError(ExitError, "%q is not a taxonomy term", args[0])
	}
	records := a.RecordsWithTerm(mustReadUnique(cfg), term)
	if records == nil {
		records = []reference.Reference{}
	}

	if humanOutput {
		fmt.Printf("%d records mention %s\n\n", len(records), term)
		for i, ref := range records {
			printRefSummary(fmt.Sprintf("%d", i+1), ref)
		}
	} else {
		outputJSON(TermRecordsResult{Term: term, Count: len(records), Records: records})
	}
	return nil
}

func runTermsList(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	tax, _ := mustLoadTaxonomy(mustLoadConfig(root), nil)

	if humanOutput {
		for _, cat := range tax.Categories() {
			fmt.Printf("%s (%d terms)\n", cat.Name, len(cat.Terms))
			for _, t := range cat.Terms {
				fmt.Printf("  %s\n", t.Canonical)
			}
		}
	} else {
		outputJSON(tax.Categories())
	}
	return nil
}

func readAllStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
