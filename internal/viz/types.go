// Package viz builds the term co-occurrence network consumed by the graph
// viewer.
package viz

// GraphData contains all data needed to render the network.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node represents a taxonomy term in the graph.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`

	// Category is the first taxonomy category containing the term.
	Category string `json:"category,omitempty"`

	// Frequency is the combined presence count (for sizing).
	Frequency int `json:"frequency"`

	// Degree is the number of edges kept for the node.
	Degree int `json:"degree"`
}

// Edge is an undirected co-occurrence between two terms.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
