package graph

import (
	"strings"

	"github.com/dusk-indust/archviz/internal/catalog"
)

// --- Enums ---

// Kind identifies which projection produced a graph.
type Kind string

const (
	KindArchitecture Kind = "architecture"
	KindFlow         Kind = "flow"
	KindPath         Kind = "path"
	KindJourney      Kind = "journey"
)

// Orientation is the rank direction of a rendered diagram.
type Orientation string

const (
	TopBottom Orientation = "TB"
	LeftRight Orientation = "LR"
)

// ParseOrientation accepts "TB", "LR" and their long forms. Anything else
// yields TopBottom.
func ParseOrientation(s string) Orientation {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lr", "left to right", "left-to-right", "horizontal":
		return LeftRight
	default:
		return TopBottom
	}
}

// NodeStyle tags a node for the renderer.
type NodeStyle string

const (
	StyleNormal      NodeStyle = "normal"
	StyleHighlighted NodeStyle = "highlighted"
	StyleRequest     NodeStyle = "request"
	StyleResponse    NodeStyle = "response"
	StyleStep        NodeStyle = "step"
)

// EdgeStyle tags an edge for the renderer.
type EdgeStyle string

const (
	EdgeArchitecture EdgeStyle = "architecture"
	EdgeSequence     EdgeStyle = "sequence"
	EdgeRequest      EdgeStyle = "request"
	EdgeResponse     EdgeStyle = "response"
	EdgeJourney      EdgeStyle = "journey"
)

// --- Projection model ---

// Node is one vertex of a projected graph. Entity is empty for nodes that do
// not stand for a catalog entity (journey steps); Label and Color then carry
// what the renderer needs.
type Node struct {
	ID     string          `json:"id"`
	Entity string          `json:"entity,omitempty"`
	Layer  catalog.LayerID `json:"layer,omitempty"`
	Style  NodeStyle       `json:"style"`
	Label  string          `json:"label,omitempty"`
	Color  string          `json:"color,omitempty"`
}

// Cluster lists the node ids belonging to one visible layer.
type Cluster struct {
	Layer catalog.LayerID `json:"layer"`
	Nodes []string        `json:"nodes"`
}

// Edge is one directed connector. Parallel edges between the same pair of
// nodes are kept distinct.
type Edge struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Label     string    `json:"label"`
	Style     EdgeStyle `json:"style"`
	Sequence  string    `json:"sequence,omitempty"`
	Step      string    `json:"step,omitempty"`
	Color     string    `json:"color,omitempty"`
	Condition string    `json:"condition,omitempty"`
	Async     bool      `json:"async,omitempty"`
}

// Graph is the renderer-independent result of a projection.
type Graph struct {
	Kind      Kind            `json:"kind"`
	Nodes     []Node          `json:"nodes"`
	Clusters  []Cluster       `json:"clusters"`
	Edges     []Edge          `json:"edges"`
	Sequences []string        `json:"sequences,omitempty"`
	Phases    []catalog.Phase `json:"phases,omitempty"`
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// EntityIDs returns the entity ids of all entity-backed nodes, in node order.
func (g *Graph) EntityIDs() []string {
	out := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.Entity != "" {
			out = append(out, n.Entity)
		}
	}
	return out
}

// Stats returns node, edge and cluster counts.
func (g *Graph) Stats() GraphStats {
	return GraphStats{
		NodeCount:    len(g.Nodes),
		EdgeCount:    len(g.Edges),
		ClusterCount: len(g.Clusters),
	}
}

// GraphStats summarizes a graph or a store.
type GraphStats struct {
	NodeCount    int `json:"nodeCount"`
	EdgeCount    int `json:"edgeCount"`
	ClusterCount int `json:"clusterCount"`
}

// --- Store model ---

// FlowKind classifies stored edges.
type FlowKind string

const (
	FlowKindFlows       FlowKind = "FLOWS_TO"
	FlowKindConditional FlowKind = "CONDITIONAL_FLOW"
)

// ComponentNode is an entity as held by a Store.
type ComponentNode struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Layer string `json:"layer"`
}

// LayerNode is a layer as held by a Store, with its member component ids.
type LayerNode struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Order   int      `json:"order"`
	Members []string `json:"members"`
}

// FlowEdge is a relationship as held by a Store.
type FlowEdge struct {
	SourceID  string   `json:"sourceId"`
	TargetID  string   `json:"targetId"`
	Label     string   `json:"label"`
	Condition string   `json:"condition,omitempty"`
	Kind      FlowKind `json:"kind"`
}

// DependencyChain is an ordered sequence of components forming a flow path.
type DependencyChain struct {
	Nodes []string `json:"nodes"` // component ids in order
	Depth int      `json:"depth"`
}

// ImpactResult describes which components sit upstream of a failing set.
type ImpactResult struct {
	DirectlyAffected     []string `json:"directlyAffected"`     // components sending straight to the set
	TransitivelyAffected []string `json:"transitivelyAffected"` // full upstream closure
	RiskScore            float64  `json:"riskScore"`            // 0.0-1.0, share of all components
}
