package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dusk-indust/archviz/internal/graph"
)

// GraphExport is the top-level JSON export structure.
type GraphExport struct {
	Name        string            `json:"name"`
	Orientation graph.Orientation `json:"orientation"`
	Stats       graph.GraphStats  `json:"stats"`
	Graph       *graph.Graph      `json:"graph"`
}

// NewGraphExport wraps g for JSON output.
func NewGraphExport(name string, g *graph.Graph, orient graph.Orientation) *GraphExport {
	return &GraphExport{
		Name:        name,
		Orientation: orient,
		Stats:       g.Stats(),
		Graph:       g,
	}
}

// WriteJSON writes the export as indented JSON.
func (e *GraphExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("encode graph export: %w", err)
	}
	return nil
}
