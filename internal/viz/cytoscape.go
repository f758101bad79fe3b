package viz

import (
	"encoding/json"
	"fmt"
	"os"
)

// Elements is the Cytoscape.js "elements" document for the graph viewer.
// Categories become compound parent nodes holding their terms.
type Elements struct {
	Nodes []Element[NodeData] `json:"nodes"`
	Edges []Element[EdgeData] `json:"edges"`
}

// Element wraps element data the way Cytoscape.js expects it.
type Element[T any] struct {
	Data T `json:"data"`
}

// NodeData describes a term or category node.
type NodeData struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Parent    string `json:"parent,omitempty"`
	Frequency int    `json:"frequency,omitempty"`
}

// EdgeData describes one weighted co-occurrence.
type EdgeData struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// categoryID keeps category nodes apart from terms with the same name.
func categoryID(name string) string {
	return "category:" + name
}

// Cytoscape converts the graph to Cytoscape.js elements. Category nodes come
// first, in order of first use.
func (g *GraphData) Cytoscape() Elements {
	el := Elements{
		Nodes: make([]Element[NodeData], 0, len(g.Nodes)),
		Edges: make([]Element[EdgeData], 0, len(g.Edges)),
	}

	seen := make(map[string]bool)
	for _, n := range g.Nodes {
		if n.Category == "" || seen[n.Category] {
			continue
		}
		seen[n.Category] = true
		el.Nodes = append(el.Nodes, Element[NodeData]{Data: NodeData{ID: categoryID(n.Category), Label: n.Category}})
	}
	for _, n := range g.Nodes {
		data := NodeData{ID: n.ID, Label: n.Label, Frequency: n.Frequency}
		if n.Category != "" {
			data.Parent = categoryID(n.Category)
		}
		el.Nodes = append(el.Nodes, Element[NodeData]{Data: data})
	}

	for i, e := range g.Edges {
		el.Edges = append(el.Edges, Element[EdgeData]{Data: EdgeData{
			ID:     fmt.Sprintf("e%d", i),
			Source: e.Source,
			Target: e.Target,
			Weight: e.Weight,
		}})
	}
	return el
}

// WriteCytoscape writes the graph as Cytoscape.js elements.
func WriteCytoscape(path string, g *GraphData) error {
	data, err := json.Marshal(g.Cytoscape())
	if err != nil {
		return fmt.Errorf("marshaling cytoscape elements: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing cytoscape elements: %w", err)
	}
	return nil
}
