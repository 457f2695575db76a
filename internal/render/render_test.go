package render

import (
	"bytes"
	"strings"
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

func boxByID(t *testing.T, d *Diagram, id string) Box {
	t.Helper()
	for _, b := range d.Boxes {
		if b.ID == id {
			return b
		}
	}
	t.Fatalf("box %s not found", id)
	return Box{}
}

func TestRender_Architecture(t *testing.T) {
	cat := defaultCatalog(t)
	g := graph.Project(cat, graph.Options{Layers: []string{"Entry Layer", "Orchestration Layer"}, Highlight: "planner"})

	d := Render(cat, g, nil, graph.LeftRight)

	assert.Equal(t, graph.LeftRight, d.Orientation)
	require.Len(t, d.Groups, 2)
	assert.Equal(t, "Entry Layer", d.Groups[0].Label)
	assert.Equal(t, "#E8F4F8", d.Groups[0].Fill)
	assert.Len(t, d.Boxes, len(g.Nodes))
	assert.Len(t, d.Connectors, len(g.Edges))

	customer, err := cat.Entity("customer")
	require.NoError(t, err)
	box := boxByID(t, d, "customer")
	assert.Equal(t, customer.Icon+"\n"+customer.Name, box.Label)
	assert.Equal(t, customer.Color, box.Fill)
	assert.Equal(t, "cluster_entry", box.Group)

	planner := boxByID(t, d, "planner")
	assert.Equal(t, HighlightFill, planner.Fill)
	assert.Equal(t, HighlightFont, planner.FontColor)
	assert.Equal(t, 3, planner.PenWidth)

	for _, c := range d.Connectors {
		assert.Equal(t, EdgeGray, c.Color)
	}
	assert.Nil(t, d.Legend, "no deployment metadata, no legend")
}

func TestRender_BadgesAndLegend(t *testing.T) {
	cat := defaultCatalog(t)
	g := graph.Project(cat, graph.Options{Layers: []string{"Orchestration Layer"}})
	details := catalog.Details{
		"planner":  {DeploymentType: "Container (AKS)"},
		"executor": {DeploymentType: "Azure Managed Service"},
	}

	d := Render(cat, g, details, graph.TopBottom)

	assert.True(t, strings.HasSuffix(boxByID(t, d, "planner").Label, " ⭐"))
	assert.True(t, strings.HasSuffix(boxByID(t, d, "executor").Label, " ☁️"))
	assert.NotContains(t, boxByID(t, d, "critic").Label, "⭐")

	require.NotNil(t, d.Legend)
	require.Len(t, d.Legend.Entries, 3)
	assert.Equal(t, "⭐ = Container (K8s)", d.Legend.Entries[0].Label)
	assert.Equal(t, "🌐 = External API", d.Legend.Entries[2].Label)
}

func TestRender_MissingRecordsDegrade(t *testing.T) {
	cat := defaultCatalog(t)
	g := &graph.Graph{
		Kind:     graph.KindArchitecture,
		Nodes:    []graph.Node{{ID: "ghost", Entity: "ghost", Layer: "nowhere", Style: graph.StyleNormal}},
		Clusters: []graph.Cluster{{Layer: "nowhere", Nodes: []string{"ghost"}}},
	}

	d := Render(cat, g, nil, "")

	require.Len(t, d.Boxes, 1)
	assert.Equal(t, "ghost", d.Boxes[0].Label)
	assert.Equal(t, NeutralColor, d.Boxes[0].Fill)
	require.Len(t, d.Groups, 1)
	assert.Equal(t, NeutralColor, d.Groups[0].Fill)
	assert.Equal(t, graph.TopBottom, d.Orientation)
	assert.NotEmpty(t, d.DOT())
}

func TestRender_Sequences(t *testing.T) {
	cat := defaultCatalog(t)
	g := graph.Project(cat, graph.Options{Layers: cat.LayerNames(), Sequences: []string{"rag", "mcp"}})

	d := Render(cat, g, nil, graph.TopBottom)

	first := d.Connectors[0]
	assert.Equal(t, "🟢 1\nHTTPS/REST", first.Label)
	assert.Equal(t, "#006400", first.Color)
	assert.Equal(t, 3, first.PenWidth)
	assert.True(t, first.Bold)
	assert.False(t, first.Free)

	var free, async int
	for _, c := range d.Connectors {
		if c.Free {
			free++
		}
		if c.Dashed {
			async++
			assert.True(t, strings.HasSuffix(c.Label, " (async)"))
		}
	}
	mcp, err := cat.Sequence("mcp")
	require.NoError(t, err)
	assert.Equal(t, len(mcp.Steps), free)
	assert.Equal(t, 4, async)

	require.NotNil(t, d.Legend)
	assert.Equal(t, "Flow Legend", d.Legend.Title)
	require.Len(t, d.Legend.Entries, 2)
	assert.Equal(t, "🟢 Dark Green (1-11): RAG Knowledge Retrieval\n\"What are your business hours?\"", d.Legend.Entries[0].Label)
	assert.Equal(t, "#0066CC", d.Legend.Entries[1].Color)
	assert.Contains(t, d.Legend.Note, "Numbers show the sequence of steps")
}

func TestRender_PathAndJourney(t *testing.T) {
	cat := defaultCatalog(t)

	path := graph.ProjectPath(cat, []string{"customer", "api_gateway", "accounts_api", "customer"}, 3, nil)
	d := Render(cat, path, nil, graph.TopBottom)
	assert.Equal(t, RequestColor, d.Boxes[0].Border)
	assert.Equal(t, ResponseColor, d.Boxes[3].Border)
	assert.Equal(t, RequestColor, d.Connectors[0].Color)
	assert.Equal(t, ResponseColor, d.Connectors[2].Color)
	require.NotNil(t, d.Legend)
	assert.Equal(t, "➡️ Request Path", d.Legend.Entries[0].Label)

	j, err := cat.Journey("airport_transfer")
	require.NoError(t, err)
	jd := Render(cat, graph.ProjectJourney(j, nil), nil, graph.TopBottom)
	assert.Equal(t, "#10B981", jd.Boxes[0].Fill)
	assert.Equal(t, White, jd.Boxes[0].FontColor)
	assert.Equal(t, 8, jd.Connectors[0].FontSize)
	require.NotNil(t, jd.Legend)
	assert.Len(t, jd.Legend.Entries, 4)
}

func TestWriteDOT(t *testing.T) {
	cat := defaultCatalog(t)
	g := graph.Project(cat, graph.Options{Layers: cat.LayerNames(), Sequences: []string{"rag", "mcp"}})
	d := Render(cat, g, nil, graph.LeftRight)

	var buf bytes.Buffer
	require.NoError(t, d.WriteDOT(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "digraph \"Numbered Flows\" {\n"))
	assert.Contains(t, out, "rankdir=LR;")
	assert.Contains(t, out, "subgraph \"cluster_entry\" {")
	assert.Contains(t, out, "label=\"🟢 1\\nHTTPS/REST\"")
	assert.Contains(t, out, "constraint=false")
	assert.Contains(t, out, "style=dashed")
	assert.Contains(t, out, "subgraph \"cluster_legend\"")
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Equal(t, out, d.DOT())
	assert.Equal(t, len(g.Edges), strings.Count(out, " -> "))
}

func TestDOTQuote(t *testing.T) {
	assert.Equal(t, `"a\nb"`, dotQuote("a\nb"))
	assert.Equal(t, `"say \"hi\""`, dotQuote(`say "hi"`))
	assert.Equal(t, `"C:\\x"`, dotQuote(`C:\x`))
}

func TestMermaid(t *testing.T) {
	cat := defaultCatalog(t)
	g := graph.Project(cat, graph.Options{Layers: []string{"Entry Layer"}})
	d := Render(cat, g, nil, graph.TopBottom)

	out := d.Mermaid()

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, "subgraph G0[\"Entry Layer\"]")
	assert.Contains(t, out, "N0 -->|\"Request\"| N1")
	assert.Contains(t, out, "style G0 fill:#E8F4F8")
	assert.NotContains(t, out, "\n\n")
	assert.Equal(t, len(g.Edges), strings.Count(out, "linkStyle"))

	lr := Render(cat, g, nil, graph.LeftRight).Mermaid()
	assert.True(t, strings.HasPrefix(lr, "graph LR\n"))
}
