package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/archviz/internal/catalog"
	"github.com/dusk-indust/archviz/internal/graph"
)

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return cat
}

// roundTrip renders and parses a document so assertions run on what a
// diagram editor would actually read.
func roundTrip(t *testing.T, cat *catalog.Catalog, layers []string, orient graph.Orientation) *Document {
	t.Helper()
	out, err := Drawio(cat, layers, orient)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "<?xml"))
	doc, err := ParseDrawio([]byte(out))
	require.NoError(t, err)
	require.NoError(t, doc.Check())
	return doc
}

func cellsWhere(doc *Document, pred func(Cell) bool) []Cell {
	var out []Cell
	for _, c := range doc.Diagram.Model.Cells {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

func cellByID(t *testing.T, doc *Document, id string) Cell {
	t.Helper()
	for _, c := range doc.Diagram.Model.Cells {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("cell %s not found", id)
	return Cell{}
}

func TestDrawio_StructuralValidity(t *testing.T) {
	cat := defaultCatalog(t)
	all := cat.LayerNames()

	for n := 1; n <= len(all); n++ {
		layers := all[:n]
		doc := roundTrip(t, cat, layers, graph.TopBottom)
		g := graph.Project(cat, graph.Options{Layers: layers})

		assert.Len(t, cellsWhere(doc, Cell.IsSwimlane), len(g.Clusters), "layers %v", layers)
		assert.Len(t, cellsWhere(doc, Cell.IsVertex), len(g.Nodes))
		assert.Len(t, cellsWhere(doc, Cell.IsEdge), len(g.Edges))

		vertices := make(map[string]bool)
		for _, v := range cellsWhere(doc, Cell.IsVertex) {
			vertices[v.ID] = true
		}
		for _, e := range cellsWhere(doc, Cell.IsEdge) {
			assert.True(t, vertices[e.Source], "edge %s source %s", e.ID, e.Source)
			assert.True(t, vertices[e.Target], "edge %s target %s", e.ID, e.Target)
		}
	}
}

func TestDrawio_EmptyFilter(t *testing.T) {
	doc := roundTrip(t, defaultCatalog(t), nil, graph.TopBottom)

	cells := doc.Diagram.Model.Cells
	require.Len(t, cells, 2)
	assert.Equal(t, "0", cells[0].ID)
	assert.Equal(t, "1", cells[1].ID)
	assert.Equal(t, "0", cells[1].Parent)
}

func TestDrawio_SkipsEmptyLayers(t *testing.T) {
	cat := defaultCatalog(t)
	require.Empty(t, cat.EntitiesInLayer(catalog.LayerGovernance))

	doc := roundTrip(t, cat, cat.LayerNames(), graph.TopBottom)
	for _, s := range cellsWhere(doc, Cell.IsSwimlane) {
		assert.NotEqual(t, "layer_governance", s.ID)
	}
}

func TestDrawio_TopBottomLayout(t *testing.T) {
	cat := defaultCatalog(t)
	doc := BuildDrawio(cat, []string{"Entry Layer", "Security Layer", "Support Services"}, graph.TopBottom)

	entry := cellByID(t, doc, "layer_entry")
	assert.Equal(t, Geometry{X: "50", Y: "50", Width: "800", Height: "200", As: "geometry"}, *entry.Geometry)
	assert.Equal(t, "Entry Layer", entry.Value)
	assert.Contains(t, entry.Style, "fillColor=#E8F4F8;")

	security := cellByID(t, doc, "layer_security")
	assert.Equal(t, "300", security.Geometry.Y)

	// Seven support entities wrap onto a second row and grow the lane.
	support := cellByID(t, doc, "layer_support")
	assert.Equal(t, "550", support.Geometry.Y)
	assert.Equal(t, "240", support.Geometry.Height)

	members := cat.EntitiesInLayer(catalog.LayerSupport)
	require.Len(t, members, 7)
	fifth := cellByID(t, doc, VertexCellID(members[4].ID))
	assert.Equal(t, "layer_support", fifth.Parent)
	assert.Equal(t, "20", fifth.Geometry.X)
	assert.Equal(t, "130", fifth.Geometry.Y)
	fourth := cellByID(t, doc, VertexCellID(members[3].ID))
	assert.Equal(t, "500", fourth.Geometry.X)

	customer, err := cat.Entity("customer")
	require.NoError(t, err)
	cell := cellByID(t, doc, "comp_customer")
	assert.Equal(t, customer.Icon+" "+customer.Name, cell.Value)
	assert.Equal(t, Point{X: 140, Y: 130}, doc.Centers["comp_customer"])
	assert.Equal(t, Point{X: 50 + 20 + 70, Y: 550 + 130 + 30}, doc.Centers[VertexCellID(members[4].ID)])
}

func TestDrawio_LeftRightLayout(t *testing.T) {
	cat := defaultCatalog(t)
	doc := BuildDrawio(cat, []string{"Entry Layer", "Security Layer"}, graph.LeftRight)

	entry := cellByID(t, doc, "layer_entry")
	security := cellByID(t, doc, "layer_security")
	assert.Equal(t, "50", entry.Geometry.X)
	assert.Equal(t, "900", security.Geometry.X)
	assert.Equal(t, entry.Geometry.Y, security.Geometry.Y)

	tb := BuildDrawio(cat, []string{"Entry Layer", "Security Layer"}, graph.TopBottom)
	assert.Equal(t, len(tb.Diagram.Model.Cells), len(doc.Diagram.Model.Cells))
}

func TestDrawio_Edges(t *testing.T) {
	cat := defaultCatalog(t)
	doc := BuildDrawio(cat, cat.LayerNames(), graph.TopBottom)

	edges := cellsWhere(doc, Cell.IsEdge)
	require.NotEmpty(t, edges)
	assert.Equal(t, "edge_1000", edges[0].ID)
	assert.Equal(t, "comp_customer", edges[0].Source)
	assert.Equal(t, "comp_authentication", edges[0].Target)
	assert.Equal(t, "Request", edges[0].Value)

	for _, e := range edges {
		assert.NotContains(t, e.Value, "Card Query", "conditional edges are never exported")
	}
}

func TestDrawio_Deterministic(t *testing.T) {
	cat := defaultCatalog(t)
	a, err := Drawio(cat, cat.LayerNames(), graph.TopBottom)
	require.NoError(t, err)
	b, err := Drawio(cat, cat.LayerNames(), graph.TopBottom)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCheck_Rejects(t *testing.T) {
	doc := &Document{Diagram: Page{Model: GraphModel{Cells: []Cell{
		{ID: "0"}, {ID: "1", Parent: "0"},
		{ID: "edge_1", Edge: "1", Parent: "1", Source: "comp_a", Target: "comp_b"},
	}}}}
	assert.ErrorContains(t, doc.Check(), "not a vertex")

	dup := &Document{Diagram: Page{Model: GraphModel{Cells: []Cell{{ID: "0"}, {ID: "0"}}}}}
	assert.ErrorContains(t, dup.Check(), "duplicate")

	orphan := &Document{Diagram: Page{Model: GraphModel{Cells: []Cell{{ID: "0"}, {ID: "x", Parent: "nope"}}}}}
	assert.ErrorContains(t, orphan.Check(), "unknown parent")
}

func TestGraphExport_WriteJSON(t *testing.T) {
	cat := defaultCatalog(t)
	g := graph.Project(cat, graph.Options{Layers: []string{"Entry Layer"}})

	var buf bytes.Buffer
	require.NoError(t, NewGraphExport("entry", g, graph.LeftRight).WriteJSON(&buf))

	var decoded struct {
		Name        string           `json:"name"`
		Orientation string           `json:"orientation"`
		Stats       graph.GraphStats `json:"stats"`
		Graph       graph.Graph      `json:"graph"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "entry", decoded.Name)
	assert.Equal(t, "LR", decoded.Orientation)
	assert.Equal(t, g.Stats(), decoded.Stats)
	assert.Equal(t, g.Edges, decoded.Graph.Edges)
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	jobs := []Job{
		{File: "a.txt", Render: func(context.Context) ([]byte, error) { return []byte("alpha"), nil }},
		{File: "b.txt", Render: func(context.Context) ([]byte, error) { return []byte("beta!"), nil }},
	}

	var mu sync.Mutex
	var done []string
	results, err := WriteAll(context.Background(), dir, jobs, func(r Result) {
		mu.Lock()
		defer mu.Unlock()
		done = append(done, r.File)
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a.txt", results[0].File)
	assert.Equal(t, 5, results[1].Bytes)

	sort.Strings(done)
	assert.Equal(t, []string{"a.txt", "b.txt"}, done)

	data, err := os.ReadFile(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "beta!", string(data))
}

func TestWriteAll_PropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	jobs := []Job{
		{File: "ok.txt", Render: func(context.Context) ([]byte, error) { return []byte("ok"), nil }},
		{File: "bad.txt", Render: func(context.Context) ([]byte, error) { return nil, boom }},
	}

	results, err := WriteAll(context.Background(), t.TempDir(), jobs, nil)
	require.ErrorIs(t, err, boom)
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[1].Err, boom)
}
