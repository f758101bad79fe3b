package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/litreview/internal/analysis"
	"github.com/matsen/litreview/internal/viz"
)

// Co-occurrence graph files written next to the analysis outputs.
const (
	GraphFile     = "co_occurrence_graph.json"
	CytoscapeFile = "co_occurrence_elements.json"
)

var (
	analyzeOutput   string
	analyzeDiagonal bool
	analyzeNoGraph  bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Output directory (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeDiagonal, "diagonal", false, "Keep self co-occurrence entries")
	analyzeCmd.Flags().BoolVar(&analyzeNoGraph, "no-graph", false, "Skip the co-occurrence graph")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute term statistics over the unique table",
	Long: `Match taxonomy terms against the abstracts of the unique table and write
frequencies, co-occurrences, TF-IDF weights and yearly trends as CSV and
JSON, plus a co-occurrence graph and a run manifest.

Examples:
  lit analyze
  lit analyze --output results/ --human
  lit analyze --diagonal`,
	RunE: runAnalyze,
}

// AnalyzeResult is the response for the analyze command.
type AnalyzeResult struct {
	Manifest      *analysis.Manifest   `json:"manifest"`
	Summary       analysis.Summary     `json:"summary"`
	FrequentTerms []analysis.TermCount `json:"frequent_terms"`
	Graph         string               `json:"graph,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	cfg := mustLoadConfig(root)
	logger, closeLog := mustSetupLogger(cfg)
	defer closeLog()

	tax, taxName := mustLoadTaxonomy(cfg, logger)
	refs := mustReadUnique(cfg)
	logger.Debug("inputs loaded", "records", len(refs), "taxonomy", taxName)

	outDir := cfg.Paths.OutputDir
	if analyzeOutput != "" {
		outDir = analyzeOutput
	}

	a := analysis.New(tax, analysis.Options{
		MinFrequency: cfg.Analysis.MinCoOccurrence,
		Diagonal:     cfg.Analysis.Diagonal || analyzeDiagonal,
	})
	report := a.Run(refs)
	if report.Summary.WithAbstract == 0 {
		logger.Warn("no records with an abstract", "input", cfg.Paths.UniqueFile)
	}

	manifest, err := analysis.WriteOutputs(outDir, report, analysis.RunInfo{
		Input:    cfg.Paths.UniqueFile,
		Taxonomy: taxName,
	})
	if err != nil {
		exitWithError(ExitError, "writing outputs: %v", err)
	}

	result := AnalyzeResult{
		Manifest:      manifest,
		Summary:       report.Summary,
		FrequentTerms: analysis.FrequentTerms(report.Frequencies, cfg.Analysis.TopN, cfg.Analysis.MinFrequency),
	}

	if !analyzeNoGraph {
		graph := viz.BuildCoOccurrenceGraph(report.CoOccurrence, report.Frequencies.Combined, a.TermCategories(), viz.GraphOptions{
			MinWeight: cfg.Analysis.GraphMinWeight,
			MaxNodes:  cfg.Analysis.GraphMaxNodes,
		})
		if graph.IsEmpty() {
			logger.Warn("co-occurrence graph is empty", "min_weight", cfg.Analysis.GraphMinWeight)
		}
		result.Graph = filepath.Join(outDir, GraphFile)
		if err := viz.WriteGraph(result.Graph, graph); err != nil {
			exitWithError(ExitError, "writing graph: %v", err)
		}
		if err := viz.WriteCytoscape(filepath.Join(outDir, CytoscapeFile), graph); err != nil {
			exitWithError(ExitError, "writing graph: %v", err)
		}
		logger.Debug("graph written", "nodes", len(graph.Nodes), "edges", len(graph.Edges))
	}

	logger.Info("analysis complete",
		"run_id", manifest.RunID,
		"records", report.Summary.Entries,
		"with_abstract", report.Summary.WithAbstract,
		"unique_terms", report.Summary.UniqueTerms,
		"output", outDir,
	)

	if humanOutput {
		printAnalyzeHuman(outDir, result)
	} else {
		outputJSON(result)
	}
	return nil
}

func printAnalyzeHuman(outDir string, r AnalyzeResult) {
	s := r.Summary
	fmt.Printf("Analysed %d records (%d with abstract), %d distinct terms\n\n", s.Entries, s.WithAbstract, s.UniqueTerms)
	for _, c := range s.Categories {
		fmt.Printf("%-30s %4d terms %6d matches\n", c.Name, c.Terms, c.Total)
	}
	if len(r.FrequentTerms) > 0 {
		fmt.Println("\nMost frequent terms:")
		for i, t := range r.FrequentTerms {
			fmt.Printf("%3d. %-40s %d\n", i+1, t.Term, t.Count)
		}
	}
	fmt.Printf("\nWrote %d files to %s\n", len(r.Manifest.Files), outDir)
	if r.Graph != "" {
		fmt.Printf("Graph: %s\n", r.Graph)
	}
}
