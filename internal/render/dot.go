package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// WriteDOT writes the diagram as a Graphviz digraph.
func (d *Diagram) WriteDOT(w io.Writer) error {
	var b bytes.Buffer

	fmt.Fprintf(&b, "digraph %s {\n", dotQuote(d.Title))
	fmt.Fprintf(&b, "  rankdir=%s;\n", d.Orientation)
	b.WriteString("  compound=true;\n")
	b.WriteString("  splines=true;\n")
	b.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Arial\"];\n")
	b.WriteString("  edge [fontname=\"Arial\", fontsize=10];\n")

	for _, g := range d.Groups {
		fmt.Fprintf(&b, "\n  subgraph %s {\n", dotQuote(g.ID))
		fmt.Fprintf(&b, "    label=%s;\n", dotQuote(g.Label))
		fmt.Fprintf(&b, "    style=filled;\n    fillcolor=%s;\n", dotQuote(g.Fill))
		for _, id := range g.Boxes {
			fmt.Fprintf(&b, "    %s;\n", dotQuote(id))
		}
		b.WriteString("  }\n")
	}

	b.WriteString("\n")
	for _, box := range d.Boxes {
		fmt.Fprintf(&b, "  %s [%s];\n", dotQuote(box.ID), boxAttrs(box))
	}

	b.WriteString("\n")
	for _, c := range d.Connectors {
		fmt.Fprintf(&b, "  %s -> %s [%s];\n", dotQuote(c.From), dotQuote(c.To), connectorAttrs(c))
	}

	if d.Legend != nil {
		writeDOTLegend(&b, d.Legend)
	}

	b.WriteString("}\n")
	_, err := w.Write(b.Bytes())
	return err
}

// DOT returns the diagram as a Graphviz digraph string.
func (d *Diagram) DOT() string {
	var sb strings.Builder
	_ = d.WriteDOT(&sb)
	return sb.String()
}

func boxAttrs(box Box) string {
	attrs := []string{
		"label=" + dotQuote(box.Label),
		"fillcolor=" + dotQuote(box.Fill),
		"fontcolor=" + dotQuote(box.FontColor),
	}
	if box.Border != "" {
		attrs = append(attrs, "color="+dotQuote(box.Border))
	}
	attrs = append(attrs, fmt.Sprintf("penwidth=%d", box.PenWidth))
	return strings.Join(attrs, ", ")
}

func connectorAttrs(c Connector) string {
	attrs := []string{
		"label=" + dotQuote(c.Label),
		"color=" + dotQuote(c.Color),
		"fontcolor=" + dotQuote(c.FontColor),
		fmt.Sprintf("penwidth=%d", c.PenWidth),
	}
	if c.FontSize > 0 {
		attrs = append(attrs, fmt.Sprintf("fontsize=%d", c.FontSize))
	}
	switch {
	case c.Dashed:
		attrs = append(attrs, "style=dashed")
	case c.Bold:
		attrs = append(attrs, "style=bold")
	}
	if c.Free {
		attrs = append(attrs, "constraint=false")
	}
	return strings.Join(attrs, ", ")
}

func writeDOTLegend(b *bytes.Buffer, l *Legend) {
	b.WriteString("\n  subgraph \"cluster_legend\" {\n")
	fmt.Fprintf(b, "    label=%s;\n", dotQuote(l.Title))
	b.WriteString("    style=filled;\n    fillcolor=\"white\";\n")
	for i, e := range l.Entries {
		fmt.Fprintf(b, "    \"legend_%d\" [shape=plaintext, style=\"\", label=%s, fontcolor=%s];\n",
			i, dotQuote(e.Label), dotQuote(e.Color))
	}
	if l.Note != "" {
		fmt.Fprintf(b, "    \"legend_note\" [shape=note, style=\"\", label=%s, fontcolor=%s];\n",
			dotQuote(l.Note), dotQuote(LegendNoteGray))
	}
	b.WriteString("  }\n")
}

// dotQuote renders s as a DOT double-quoted string. Newlines become the \n
// centered line break.
func dotQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
