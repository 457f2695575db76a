package render

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/archviz/internal/graph"
)

// Mermaid returns the diagram as a Mermaid flowchart. Groups become
// subgraphs; box and connector colors become style and linkStyle lines.
func (d *Diagram) Mermaid() string {
	// Mermaid ids must be alphanumeric, so every box gets a short alias.
	ids := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if id, ok := ids[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		ids[key] = id
		return id
	}

	dir := "TD"
	if d.Orientation == graph.LeftRight {
		dir = "LR"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "graph %s\n", dir)

	boxes := make(map[string]Box, len(d.Boxes))
	for _, b := range d.Boxes {
		boxes[b.ID] = b
	}

	grouped := make(map[string]bool)
	for gi, g := range d.Groups {
		fmt.Fprintf(&sb, "  subgraph G%d[\"%s\"]\n", gi, mermaidText(g.Label))
		for _, id := range g.Boxes {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", getID(id), mermaidText(boxes[id].Label))
			grouped[id] = true
		}
		sb.WriteString("  end\n")
	}
	for _, b := range d.Boxes {
		if !grouped[b.ID] {
			fmt.Fprintf(&sb, "  %s[\"%s\"]\n", getID(b.ID), mermaidText(b.Label))
		}
	}

	for _, c := range d.Connectors {
		arrow := "-->"
		switch {
		case c.Dashed:
			arrow = "-.->"
		case c.Bold:
			arrow = "==>"
		}
		if c.Label == "" {
			fmt.Fprintf(&sb, "  %s %s %s\n", getID(c.From), arrow, getID(c.To))
			continue
		}
		fmt.Fprintf(&sb, "  %s %s|\"%s\"| %s\n", getID(c.From), arrow, mermaidText(c.Label), getID(c.To))
	}

	for gi, g := range d.Groups {
		fmt.Fprintf(&sb, "  style G%d fill:%s\n", gi, g.Fill)
	}
	for _, b := range d.Boxes {
		style := fmt.Sprintf("fill:%s,color:%s", b.Fill, b.FontColor)
		if b.Border != "" {
			style += fmt.Sprintf(",stroke:%s,stroke-width:%dpx", b.Border, b.PenWidth)
		} else if b.PenWidth > 1 {
			style += fmt.Sprintf(",stroke-width:%dpx", b.PenWidth)
		}
		fmt.Fprintf(&sb, "  style %s %s\n", getID(b.ID), style)
	}
	for i, c := range d.Connectors {
		fmt.Fprintf(&sb, "  linkStyle %d stroke:%s,stroke-width:%dpx\n", i, c.Color, c.PenWidth)
	}

	return sb.String()
}

// mermaidText escapes quotes and turns newlines into HTML breaks.
func mermaidText(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	return strings.ReplaceAll(s, "\n", "<br/>")
}
