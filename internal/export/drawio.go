// Package export writes projected diagrams to exchange formats: draw.io
// documents with a fixed swimlane layout, and JSON.
package export

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/dusk-indust/archviz/internal/catalog"
	"github.com/dusk-indust/archviz/internal/graph"
)

// Layout constants, in canvas units.
const (
	OriginX        = 50
	OriginY        = 50
	LayerWidth     = 800
	LayerHeight    = 200
	LayerSpacing   = 50
	NodeWidth      = 140
	NodeHeight     = 60
	NodeSpacingX   = 20
	NodeSpacingY   = 20
	NodesPerRow    = 4
	HeaderPadding  = 80
	NodeLocalX     = 20
	NodeLocalY     = 50
	FirstEdgeIndex = 1000
)

const (
	swimlaneStyle = "swimlane;startSize=30;fillColor=%s;strokeColor=#666666;fontStyle=1;fontSize=14;"
	vertexStyle   = "rounded=1;whiteSpace=wrap;html=1;fillColor=%s;strokeColor=#666666;fontColor=#FFFFFF;fontSize=11;fontStyle=1;"
	edgeStyle     = "edgeStyle=orthogonalEdgeStyle;rounded=1;orthogonalLoop=1;jettySize=auto;html=1;strokeColor=#6B7280;fontSize=9;fontColor=#6B7280;endArrow=classic;"
	neutralFill   = "#9CA3AF"
)

// Document is a draw.io mxfile.
type Document struct {
	XMLName  xml.Name `xml:"mxfile"`
	Host     string   `xml:"host,attr"`
	Modified string   `xml:"modified,attr"`
	Agent    string   `xml:"agent,attr"`
	Version  string   `xml:"version,attr"`
	Type     string   `xml:"type,attr"`
	Diagram  Page     `xml:"diagram"`

	// Centers holds the absolute canvas center of every vertex cell, keyed
	// by cell id. Edge endpoints anchor here.
	Centers map[string]Point `xml:"-"`
}

// Page is the single diagram page of a Document.
type Page struct {
	ID    string     `xml:"id,attr"`
	Name  string     `xml:"name,attr"`
	Model GraphModel `xml:"mxGraphModel"`
}

// GraphModel holds the flat cell list.
type GraphModel struct {
	Dx         string `xml:"dx,attr"`
	Dy         string `xml:"dy,attr"`
	Grid       string `xml:"grid,attr"`
	GridSize   string `xml:"gridSize,attr"`
	Guides     string `xml:"guides,attr"`
	Tooltips   string `xml:"tooltips,attr"`
	Connect    string `xml:"connect,attr"`
	Arrows     string `xml:"arrows,attr"`
	Fold       string `xml:"fold,attr"`
	Page       string `xml:"page,attr"`
	PageScale  string `xml:"pageScale,attr"`
	PageWidth  string `xml:"pageWidth,attr"`
	PageHeight string `xml:"pageHeight,attr"`
	Math       string `xml:"math,attr"`
	Shadow     string `xml:"shadow,attr"`
	Cells      []Cell `xml:"root>mxCell"`
}

// Cell is a swimlane, vertex or edge. Cells "0" and "1" are the root and
// default parent.
type Cell struct {
	ID       string    `xml:"id,attr"`
	Value    string    `xml:"value,attr,omitempty"`
	Style    string    `xml:"style,attr,omitempty"`
	Vertex   string    `xml:"vertex,attr,omitempty"`
	Edge     string    `xml:"edge,attr,omitempty"`
	Parent   string    `xml:"parent,attr,omitempty"`
	Source   string    `xml:"source,attr,omitempty"`
	Target   string    `xml:"target,attr,omitempty"`
	Geometry *Geometry `xml:"mxGeometry,omitempty"`
}

// IsSwimlane reports whether the cell is a layer container.
func (c Cell) IsSwimlane() bool { return c.Vertex == "1" && c.Parent == "1" }

// IsVertex reports whether the cell is an entity node.
func (c Cell) IsVertex() bool { return c.Vertex == "1" && c.Parent != "1" }

// IsEdge reports whether the cell is a connector.
func (c Cell) IsEdge() bool { return c.Edge == "1" }

// Geometry positions a cell. Vertex coordinates are relative to the parent.
type Geometry struct {
	X        string `xml:"x,attr,omitempty"`
	Y        string `xml:"y,attr,omitempty"`
	Width    string `xml:"width,attr,omitempty"`
	Height   string `xml:"height,attr,omitempty"`
	Relative string `xml:"relative,attr,omitempty"`
	As       string `xml:"as,attr"`
}

// Point is an absolute canvas coordinate.
type Point struct {
	X, Y int
}

// LayerCellID names the swimlane cell of a layer.
func LayerCellID(id catalog.LayerID) string { return "layer_" + string(id) }

// VertexCellID names the vertex cell of an entity.
func VertexCellID(entityID string) string { return "comp_" + entityID }

// BuildDrawio lays out the architecture for the visible layers. Node and edge
// sets match graph.Project for the same layers without conditional edges.
// An empty layer list yields a document holding only the two root cells.
func BuildDrawio(cat *catalog.Catalog, layers []string, orient graph.Orientation) *Document {
	g := graph.Project(cat, graph.Options{Layers: layers})

	doc := &Document{
		Host:     "app.diagrams.net",
		Modified: "2024-01-01T00:00:00.000Z",
		Agent:    "archviz",
		Version:  "22.1.0",
		Type:     "device",
		Diagram: Page{
			ID:   "architecture-diagram",
			Name: "Enterprise Agent Platform Architecture",
			Model: GraphModel{
				Dx: "1422", Dy: "794", Grid: "1", GridSize: "10", Guides: "1",
				Tooltips: "1", Connect: "1", Arrows: "1", Fold: "1", Page: "1",
				PageScale: "1", PageWidth: "1169", PageHeight: "827", Math: "0", Shadow: "0",
			},
		},
		Centers: make(map[string]Point),
	}
	cells := []Cell{{ID: "0"}, {ID: "1", Parent: "0"}}

	x, y := OriginX, OriginY
	for _, c := range g.Clusters {
		name, fill := string(c.Layer), neutralFill
		if l, err := cat.Layer(c.Layer); err == nil {
			name = l.Name
			if l.Color != "" {
				fill = l.Color
			}
		}

		rows := (len(c.Nodes) + NodesPerRow - 1) / NodesPerRow
		height := max(LayerHeight, rows*(NodeHeight+NodeSpacingY)+HeaderPadding)

		laneID := LayerCellID(c.Layer)
		cells = append(cells, Cell{
			ID:       laneID,
			Value:    name,
			Style:    fmt.Sprintf(swimlaneStyle, fill),
			Vertex:   "1",
			Parent:   "1",
			Geometry: box(x, y, LayerWidth, height),
		})

		lx, ly := NodeLocalX, NodeLocalY
		for i, id := range c.Nodes {
			label, color := id, neutralFill
			if e, err := cat.Entity(id); err == nil {
				label = e.Icon + " " + e.Name
				if e.Color != "" {
					color = e.Color
				}
			}
			cellID := VertexCellID(id)
			cells = append(cells, Cell{
				ID:       cellID,
				Value:    label,
				Style:    fmt.Sprintf(vertexStyle, color),
				Vertex:   "1",
				Parent:   laneID,
				Geometry: box(lx, ly, NodeWidth, NodeHeight),
			})
			doc.Centers[cellID] = Point{X: x + lx + NodeWidth/2, Y: y + ly + NodeHeight/2}

			if (i+1)%NodesPerRow == 0 {
				lx = NodeLocalX
				ly += NodeHeight + NodeSpacingY
			} else {
				lx += NodeWidth + NodeSpacingX
			}
		}

		if orient == graph.LeftRight {
			x += LayerWidth + LayerSpacing
		} else {
			y += height + LayerSpacing
		}
	}

	for i, e := range g.Edges {
		cells = append(cells, Cell{
			ID:       "edge_" + strconv.Itoa(FirstEdgeIndex+i),
			Value:    e.Label,
			Style:    edgeStyle,
			Edge:     "1",
			Parent:   "1",
			Source:   VertexCellID(e.From),
			Target:   VertexCellID(e.To),
			Geometry: &Geometry{Relative: "1", As: "geometry"},
		})
	}

	doc.Diagram.Model.Cells = cells
	return doc
}

func box(x, y, w, h int) *Geometry {
	return &Geometry{
		X:      strconv.Itoa(x),
		Y:      strconv.Itoa(y),
		Width:  strconv.Itoa(w),
		Height: strconv.Itoa(h),
		As:     "geometry",
	}
}

// Marshal renders the document as indented XML with a header.
func (d *Document) Marshal() ([]byte, error) {
	out, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("drawio: marshal: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// Drawio returns the draw.io document for the visible layers.
func Drawio(cat *catalog.Catalog, layers []string, orient graph.Orientation) (string, error) {
	b, err := BuildDrawio(cat, layers, orient).Marshal()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseDrawio decodes a document produced by Drawio.
func ParseDrawio(data []byte) (*Document, error) {
	var d Document
	if err := xml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("drawio: parse: %w", err)
	}
	return &d, nil
}

// Check verifies structural validity: unique cell ids, resolvable parents and
// edges whose endpoints are vertex cells.
func (d *Document) Check() error {
	cells := d.Diagram.Model.Cells
	byID := make(map[string]Cell, len(cells))
	for _, c := range cells {
		if _, dup := byID[c.ID]; dup {
			return fmt.Errorf("drawio: duplicate cell id %q", c.ID)
		}
		byID[c.ID] = c
	}
	for _, c := range cells {
		if c.Parent != "" {
			if _, ok := byID[c.Parent]; !ok {
				return fmt.Errorf("drawio: cell %q has unknown parent %q", c.ID, c.Parent)
			}
		}
		if !c.IsEdge() {
			continue
		}
		for _, ref := range []string{c.Source, c.Target} {
			if t, ok := byID[ref]; !ok || !t.IsVertex() {
				return fmt.Errorf("drawio: edge %q references %q, which is not a vertex", c.ID, ref)
			}
		}
	}
	return nil
}
