// Package render maps a projected graph onto a drawable diagram: styled boxes,
// layer containers, colored connectors and a legend. The Diagram value is
// serialized to Graphviz DOT or Mermaid.
package render

import (
	"fmt"

	"github.com/dusk-indust/archviz/internal/catalog"
	"github.com/dusk-indust/archviz/internal/graph"
)

// Palette.
const (
	NeutralColor   = "#9CA3AF"
	EdgeGray       = "#6B7280"
	HighlightFill  = "#FCD34D"
	HighlightFont  = "#1E3A8A"
	RequestColor   = "#3B82F6"
	ResponseColor  = "#10B981"
	LegendNoteGray = "#666666"
	White          = "white"
)

// Box is one drawable node.
type Box struct {
	ID        string
	Label     string
	Fill      string
	FontColor string
	Border    string
	PenWidth  int
	Group     string
}

// Group is a labeled container, one per cluster.
type Group struct {
	ID    string
	Label string
	Fill  string
	Boxes []string
}

// Connector is one directed, labeled edge.
type Connector struct {
	From      string
	To        string
	Label     string
	Color     string
	FontColor string
	FontSize  int
	PenWidth  int
	Bold      bool
	Dashed    bool
	// Free connectors do not influence rank placement. Later sequences in a
	// multi-sequence overlay are free so parallel edges stay apart.
	Free bool
}

// LegendEntry is one line of the legend.
type LegendEntry struct {
	Label string
	Color string
}

// Legend is the fixed key appended to a diagram.
type Legend struct {
	Title   string
	Entries []LegendEntry
	Note    string
}

// Diagram is the drawable produced by Render.
type Diagram struct {
	Title       string
	Orientation graph.Orientation
	Boxes       []Box
	Groups      []Group
	Connectors  []Connector
	Legend      *Legend
}

// Render turns g into a Diagram. Records missing from cat fall back to a
// neutral style; Render never fails. details may be nil.
func Render(cat *catalog.Catalog, g *graph.Graph, details catalog.Details, orient graph.Orientation) *Diagram {
	if orient == "" {
		orient = graph.TopBottom
	}
	d := &Diagram{Title: titleFor(g.Kind), Orientation: orient}

	for _, n := range g.Nodes {
		d.Boxes = append(d.Boxes, renderNode(cat, n, details))
	}
	for _, c := range g.Clusters {
		grp := Group{ID: "cluster_" + string(c.Layer), Label: string(c.Layer), Fill: NeutralColor, Boxes: append([]string(nil), c.Nodes...)}
		if l, err := cat.Layer(c.Layer); err == nil {
			grp.Label = l.Name
			if l.Color != "" {
				grp.Fill = l.Color
			}
		}
		d.Groups = append(d.Groups, grp)
		for _, id := range c.Nodes {
			for i := range d.Boxes {
				if d.Boxes[i].ID == id {
					d.Boxes[i].Group = grp.ID
				}
			}
		}
	}

	seqs := sequenceIndex(cat, g.Sequences)
	for _, e := range g.Edges {
		d.Connectors = append(d.Connectors, renderEdge(e, seqs, g.Sequences))
	}

	d.Legend = legendFor(g, seqs, details)
	return d
}

func titleFor(k graph.Kind) string {
	switch k {
	case graph.KindFlow:
		return "Numbered Flows"
	case graph.KindPath:
		return "Scenario Path"
	case graph.KindJourney:
		return "User Journey"
	default:
		return "Architecture"
	}
}

func renderNode(cat *catalog.Catalog, n graph.Node, details catalog.Details) Box {
	b := Box{ID: n.ID, FontColor: White, PenWidth: 1}

	if n.Entity == "" {
		b.Label = n.Label
		if b.Label == "" {
			b.Label = n.ID
		}
		b.Fill = n.Color
		if b.Fill == "" {
			b.Fill = NeutralColor
		}
		return b
	}

	e, err := cat.Entity(n.Entity)
	if err != nil {
		b.Label = n.Entity
		b.Fill = NeutralColor
	} else {
		b.Label = e.Icon + "\n" + e.Name
		b.Fill = e.Color
		if b.Fill == "" {
			b.Fill = NeutralColor
		}
	}
	if badge := details.Badge(n.Entity); badge != "" {
		b.Label += " " + badge
	}

	switch n.Style {
	case graph.StyleHighlighted:
		b.Fill = HighlightFill
		b.FontColor = HighlightFont
		b.PenWidth = 3
	case graph.StyleRequest:
		b.Border = RequestColor
		b.PenWidth = 2
	case graph.StyleResponse:
		b.Border = ResponseColor
		b.PenWidth = 2
	}
	return b
}

func sequenceIndex(cat *catalog.Catalog, names []string) map[string]catalog.Sequence {
	out := make(map[string]catalog.Sequence, len(names))
	for _, name := range names {
		if s, err := cat.Sequence(name); err == nil {
			out[name] = s
		}
	}
	return out
}

func renderEdge(e graph.Edge, seqs map[string]catalog.Sequence, order []string) Connector {
	c := Connector{From: e.From, To: e.To, Label: e.Label, Color: EdgeGray, FontColor: EdgeGray, PenWidth: 1}

	switch e.Style {
	case graph.EdgeSequence:
		s := seqs[e.Sequence]
		c.Label = fmt.Sprintf("%s %s\n%s", s.Marker, e.Step, e.Label)
		if s.Marker == "" {
			c.Label = fmt.Sprintf("%s\n%s", e.Step, e.Label)
		}
		c.Color = e.Color
		if c.Color == "" {
			c.Color = NeutralColor
		}
		c.FontColor = c.Color
		c.PenWidth = 3
		c.Bold = true
		if e.Async {
			c.Label += " (async)"
			c.Dashed = true
			c.Bold = false
		}
		c.Free = len(order) > 0 && e.Sequence != order[0]
	case graph.EdgeRequest:
		c.Color, c.FontColor, c.PenWidth = RequestColor, RequestColor, 2
	case graph.EdgeResponse:
		c.Color, c.FontColor, c.PenWidth = ResponseColor, ResponseColor, 2
	case graph.EdgeJourney:
		c.FontSize = 8
	}
	return c
}

// Legend entries for deployment badges, in display order.
func badgeEntries() []LegendEntry {
	var out []LegendEntry
	for _, k := range catalog.DeploymentKinds {
		out = append(out, LegendEntry{Label: k.Badge() + " = " + k.Label(), Color: EdgeGray})
	}
	return out
}

func legendFor(g *graph.Graph, seqs map[string]catalog.Sequence, details catalog.Details) *Legend {
	hasBadges := details.HasDeployment(g.EntityIDs())

	switch g.Kind {
	case graph.KindFlow:
		l := &Legend{Title: "Flow Legend", Note: "Numbers show the sequence of steps\nColors distinguish different flow types"}
		for _, name := range g.Sequences {
			s, ok := seqs[name]
			if !ok {
				continue
			}
			label := s.Marker + " " + s.Legend
			if s.Example != "" {
				label += "\n\"" + s.Example + "\""
			}
			l.Entries = append(l.Entries, LegendEntry{Label: label, Color: s.Color})
		}
		if hasBadges {
			l.Entries = append(l.Entries, badgeEntries()...)
		}
		return l
	case graph.KindPath:
		l := &Legend{Title: "Legend", Entries: []LegendEntry{
			{Label: "➡️ Request Path", Color: RequestColor},
			{Label: "⬅️ Response Path", Color: ResponseColor},
		}}
		if hasBadges {
			l.Entries = append(l.Entries, badgeEntries()...)
		}
		return l
	case graph.KindJourney:
		l := &Legend{Title: "Phases"}
		for _, p := range g.Phases {
			l.Entries = append(l.Entries, LegendEntry{Label: p.Name, Color: p.Color})
		}
		return l
	default:
		if !hasBadges {
			return nil
		}
		return &Legend{Title: "Deployment", Entries: badgeEntries()}
	}
}
