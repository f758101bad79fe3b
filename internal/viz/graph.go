package viz

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/matsen/litreview/internal/analysis"
)

// Defaults for the network filters.
const (
	DefaultMinWeight = 2
	DefaultMaxNodes  = 30
)

// GraphOptions filters the network.
type GraphOptions struct {
	// MinWeight drops edges seen in fewer records.
	MinWeight int

	// MaxNodes caps the node count, keeping the best connected terms.
	MaxNodes int
}

func (o GraphOptions) withDefaults() GraphOptions {
	if o.MinWeight < 1 {
		o.MinWeight = DefaultMinWeight
	}
	if o.MaxNodes < 1 {
		o.MaxNodes = DefaultMaxNodes
	}
	return o
}

// BuildCoOccurrenceGraph turns a co-occurrence table into a network. Edges
// below MinWeight are dropped and the heaviest 2*MaxNodes kept; when more
// than MaxNodes terms remain, the highest-degree ones are kept.
func BuildCoOccurrenceGraph(co *analysis.Table, freq *analysis.Counter, categories map[string]string, opts GraphOptions) *GraphData {
	opts = opts.withDefaults()

	edges := collectEdges(co, opts.MinWeight)
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Weight > edges[j].Weight
	})
	if len(edges) > opts.MaxNodes*2 {
		edges = edges[:opts.MaxNodes*2]
	}

	order, degree := nodeDegrees(edges)
	if len(order) > opts.MaxNodes {
		ranked := append([]string(nil), order...)
		sort.SliceStable(ranked, func(i, j int) bool {
			return degree[ranked[i]] > degree[ranked[j]]
		})
		keep := make(map[string]bool, opts.MaxNodes)
		for _, term := range ranked[:opts.MaxNodes] {
			keep[term] = true
		}
		edges = filterEdges(edges, keep)
		order, degree = nodeDegrees(edges)
	}

	nodes := make([]Node, 0, len(order))
	for _, term := range order {
		nodes = append(nodes, Node{
			ID:        term,
			Label:     term,
			Category:  categories[term],
			Frequency: freq.Get(term),
			Degree:    degree[term],
		})
	}
	if edges == nil {
		edges = []Edge{}
	}
	return &GraphData{Nodes: nodes, Edges: edges}
}

// collectEdges folds the symmetric table into one edge per unordered pair,
// skipping self-entries.
func collectEdges(co *analysis.Table, minWeight int) []Edge {
	seen := make(map[[2]string]bool)
	var edges []Edge
	for _, c := range co.Cells() {
		if c.Row == c.Column || c.Count < minWeight {
			continue
		}
		key := [2]string{c.Row, c.Column}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		edges = append(edges, Edge{Source: c.Row, Target: c.Column, Weight: c.Count})
	}
	return edges
}

// nodeDegrees returns the endpoints in first-seen order and their degrees.
func nodeDegrees(edges []Edge) ([]string, map[string]int) {
	var order []string
	degree := make(map[string]int)
	for _, e := range edges {
		for _, term := range []string{e.Source, e.Target} {
			if _, ok := degree[term]; !ok {
				order = append(order, term)
			}
			degree[term]++
		}
	}
	return order, degree
}

func filterEdges(edges []Edge, keep map[string]bool) []Edge {
	var out []Edge
	for _, e := range edges {
		if keep[e.Source] && keep[e.Target] {
			out = append(out, e)
		}
	}
	return out
}

// WriteGraph writes the graph as indented JSON.
func WriteGraph(path string, g *GraphData) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling graph: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing graph: %w", err)
	}
	return nil
}
