package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dusk-indust/archviz/internal/catalog"
)

// Options selects what Project puts into a graph.
type Options struct {
	// Layers lists visible layers by display name or id. Empty means no
	// layer is visible.
	Layers []string
	// Highlight names one entity, by id or display name, to mark as
	// highlighted.
	Highlight string
	// IncludeConditional admits conditional relationships. Conditions, when
	// non-empty, narrows them to the listed tags.
	IncludeConditional bool
	Conditions         []string
	// Sequences switches the edge source from the relationship catalog to
	// the ordered union of the named flow sequences. Unknown names are
	// skipped.
	Sequences []string
}

// Project builds a graph from the catalog. The result depends only on cat and
// opts: node order follows entity order, edge order follows relationship or
// step order, and clusters follow layer order.
func Project(cat *catalog.Catalog, opts Options) *Graph {
	visible := make(map[catalog.LayerID]bool)
	for _, name := range opts.Layers {
		if l, ok := cat.ResolveLayer(name); ok {
			visible[l.ID] = true
		}
	}

	var seqs []catalog.Sequence
	for _, name := range opts.Sequences {
		s, err := cat.Sequence(name)
		if err != nil {
			continue
		}
		seqs = append(seqs, s)
	}

	g := &Graph{Kind: KindArchitecture}
	var touched map[string]bool
	if len(opts.Sequences) > 0 {
		g.Kind = KindFlow
		touched = make(map[string]bool)
		for _, s := range seqs {
			g.Sequences = append(g.Sequences, s.Name)
			for _, id := range s.Entities() {
				touched[id] = true
			}
		}
	}

	inGraph := make(map[string]bool)
	for _, e := range cat.Entities() {
		if !visible[e.Layer] || inGraph[e.ID] {
			continue
		}
		if touched != nil && !touched[e.ID] {
			continue
		}
		style := StyleNormal
		if isHighlight(e, opts.Highlight) {
			style = StyleHighlighted
		}
		g.Nodes = append(g.Nodes, Node{ID: e.ID, Entity: e.ID, Layer: e.Layer, Style: style})
		inGraph[e.ID] = true
	}

	g.Clusters = clusterByLayer(cat, g.Nodes)

	if touched != nil {
		for _, s := range seqs {
			for _, st := range s.Steps {
				if !inGraph[st.From] || !inGraph[st.To] {
					continue
				}
				g.Edges = append(g.Edges, Edge{
					From:     st.From,
					To:       st.To,
					Label:    st.Label,
					Style:    EdgeSequence,
					Sequence: s.Name,
					Step:     st.ID.String(),
					Color:    s.Color,
					Async:    st.Async,
				})
			}
		}
		return g
	}

	conds := make(map[string]bool, len(opts.Conditions))
	for _, c := range opts.Conditions {
		conds[c] = true
	}
	for _, r := range cat.Relationships() {
		if !inGraph[r.From] || !inGraph[r.To] {
			continue
		}
		if r.Conditional() {
			if !opts.IncludeConditional {
				continue
			}
			if len(conds) > 0 && !conds[r.Condition] {
				continue
			}
		}
		g.Edges = append(g.Edges, Edge{
			From:      r.From,
			To:        r.To,
			Label:     r.Label,
			Style:     EdgeArchitecture,
			Condition: r.Condition,
		})
	}
	return g
}

func isHighlight(e catalog.Entity, target string) bool {
	if target == "" {
		return false
	}
	return e.ID == target || e.Name == target
}

// clusterByLayer groups entity nodes by layer in layer order. Layers with no
// node produce no cluster.
func clusterByLayer(cat *catalog.Catalog, nodes []Node) []Cluster {
	var out []Cluster
	for _, l := range cat.Layers() {
		var members []string
		for _, n := range nodes {
			if n.Layer == l.ID {
				members = append(members, n.ID)
			}
		}
		if len(members) > 0 {
			out = append(out, Cluster{Layer: l.ID, Nodes: members})
		}
	}
	return out
}

// ProjectPath turns a scenario path into a chain of step nodes, one per path
// position, so repeated entities stay distinct. Positions before split are
// request nodes, the rest response nodes. Edge labels carry the step number
// and, when details know it, the protocol leaving the source entity: its
// outbound protocol on the request side and its inbound protocol on the
// response side.
func ProjectPath(cat *catalog.Catalog, path []string, split int, details catalog.Details) *Graph {
	g := &Graph{Kind: KindPath}
	for i, id := range path {
		style := StyleResponse
		if i < split {
			style = StyleRequest
		}
		n := Node{ID: PathNodeID(id, i), Entity: id, Style: style}
		if e, err := cat.Entity(id); err == nil {
			n.Layer = e.Layer
		}
		g.Nodes = append(g.Nodes, n)
	}

	for i := 0; i+1 < len(path); i++ {
		id := path[i]
		var protocol string
		if i < split {
			protocol = details.OutboundProtocol(id)
		} else {
			protocol = details.InboundProtocol(id)
		}
		label := strconv.Itoa(i + 1)
		if protocol != "" {
			label += "\n" + protocol
		}
		style := EdgeResponse
		if i < split-1 {
			style = EdgeRequest
		}
		g.Edges = append(g.Edges, Edge{
			From:  PathNodeID(id, i),
			To:    PathNodeID(path[i+1], i+1),
			Label: label,
			Style: style,
			Step:  strconv.Itoa(i + 1),
		})
	}
	return g
}

// PathNodeID names the node for path position i.
func PathNodeID(entityID string, i int) string {
	return fmt.Sprintf("%s_step%d", entityID, i)
}

// defaultPhaseColor fills journey steps whose phase has no color.
const defaultPhaseColor = "#6B7280"

// journeyActionWidth caps the user-action line of a journey step label.
const journeyActionWidth = 40

// ProjectJourney turns a phased journey into a chain of step nodes. Only the
// steps of the named phases are kept; no phase names means every phase.
// Consecutive kept steps are joined by an edge labeled with the protocol of
// the earlier step.
func ProjectJourney(j catalog.Journey, phases []string) *Graph {
	want := make(map[string]bool, len(phases))
	for _, p := range phases {
		want[p] = true
	}

	g := &Graph{Kind: KindJourney}
	selected := make(map[int]bool)
	for _, p := range j.Phases {
		if len(want) > 0 && !want[p.Name] {
			continue
		}
		g.Phases = append(g.Phases, p)
		for _, id := range p.Steps {
			selected[id] = true
		}
	}

	for _, s := range j.Steps {
		if !selected[s.ID] {
			continue
		}
		color := defaultPhaseColor
		if p, ok := j.Phase(s.Phase); ok && p.Color != "" {
			color = p.Color
		}
		g.Nodes = append(g.Nodes, Node{
			ID:    journeyNodeID(s.ID),
			Style: StyleStep,
			Label: journeyLabel(s),
			Color: color,
		})
	}

	for i := 0; i+1 < len(j.Steps); i++ {
		cur, next := j.Steps[i], j.Steps[i+1]
		if !selected[cur.ID] || !selected[next.ID] {
			continue
		}
		g.Edges = append(g.Edges, Edge{
			From:  journeyNodeID(cur.ID),
			To:    journeyNodeID(next.ID),
			Label: cur.Protocol,
			Style: EdgeJourney,
			Step:  strconv.Itoa(cur.ID),
		})
	}
	return g
}

func journeyNodeID(id int) string {
	return "step_" + strconv.Itoa(id)
}

func journeyLabel(s catalog.JourneyStep) string {
	action := s.UserAction
	if r := []rune(action); len(r) > journeyActionWidth {
		action = string(r[:journeyActionWidth]) + "..."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d. %s\n", s.ID, s.Title)
	fmt.Fprintf(&sb, "User: %s\n", action)
	fmt.Fprintf(&sb, "Latency: %s", s.Latency)
	return sb.String()
}
