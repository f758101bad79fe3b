package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/litreview/internal/cluster"
)

var (
	clusterMethods    []string
	clusterMaxRecords int
	clusterOutput     string
)

func init() {
	clusterCmd.Flags().StringSliceVar(&clusterMethods, "method", nil, "Linkage methods to compare: ward, average, complete, single (default from config)")
	clusterCmd.Flags().IntVar(&clusterMaxRecords, "max-records", 0, "Maximum records with abstract and keywords used (default from config)")
	clusterCmd.Flags().StringVarP(&clusterOutput, "output", "o", "", "Output directory for linkage files (default from config)")
	rootCmd.AddCommand(clusterCmd)
}

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Evaluate hierarchical clustering of abstracts",
	Long: `Vectorize the abstracts of the unique table with TF-IDF and compare
hierarchical linkage methods by cophenetic correlation, and by adjusted
Rand index and normalized mutual information against keyword labels.

Only records with both an abstract and keywords are used.

Examples:
  lit cluster
  lit cluster --method ward,complete --max-records 100 --human`,
	RunE: runCluster,
}

// ClusterResult is the response for the cluster command.
type ClusterResult struct {
	*cluster.Report
	Files []string `json:"files"`
}

func runCluster(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	cfg := mustLoadConfig(root)
	logger, closeLog := mustSetupLogger(cfg)
	defer closeLog()

	names := cfg.Cluster.Methods
	if len(clusterMethods) > 0 {
		names = clusterMethods
	}
	methods, err := parseMethods(names)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	maxRecords := cfg.Cluster.MaxRecords
	if clusterMaxRecords > 0 {
		maxRecords = clusterMaxRecords
	}
	outDir := cfg.Paths.OutputDir
	if clusterOutput != "" {
		outDir = clusterOutput
	}

	refs := mustReadUnique(cfg)
	report, err := cluster.Evaluate(refs, cluster.Options{MaxRecords: maxRecords, Methods: methods})
	if err != nil {
		exitWithError(exitCodeFor(err), "clustering: %v", err)
	}
	for _, note := range report.Notes {
		logger.Warn(note)
	}

	files, err := cluster.WriteLinkages(outDir, report)
	if err != nil {
		exitWithError(ExitError, "writing linkages: %v", err)
	}
	logger.Info("clustering complete", "records", report.Records, "labels", report.Labels, "best", report.Best, "output", outDir)

	if humanOutput {
		printClusterHuman(report)
	} else {
		outputJSON(ClusterResult{Report: report, Files: files})
	}
	return nil
}

func parseMethods(names []string) ([]cluster.Method, error) {
	var methods []cluster.Method
	for _, name := range names {
		m, err := cluster.ParseMethod(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, nil
}

func formatScore(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", *v)
}

func printClusterHuman(r *cluster.Report) {
	fmt.Printf("%d records, %d keyword labels, %d vocabulary terms\n\n", r.Records, r.Labels, r.Vocabulary)
	fmt.Printf("%-10s %10s %8s %8s %9s\n", "method", "cophenetic", "ARI", "NMI", "clusters")
	for _, m := range r.Methods {
		fmt.Printf("%-10s %10s %8s %8s %9d\n", m.Method, formatScore(m.Cophenetic), formatScore(m.ARI), formatScore(m.NMI), m.Clusters)
	}
	if r.Best != "" {
		fmt.Printf("\nBest by cophenetic correlation: %s\n", r.Best)
	}
	for _, note := range r.Notes {
		fmt.Printf("note: %s\n", note)
	}
}
