package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/archviz/internal/catalog"
)

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return cat
}

func nodeIDs(g *Graph) []string {
	out := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		out = append(out, n.ID)
	}
	return out
}

type edgeKey struct{ from, to, label string }

func edgeKeys(g *Graph) map[edgeKey]bool {
	out := make(map[edgeKey]bool, len(g.Edges))
	for _, e := range g.Edges {
		out[edgeKey{e.From, e.To, e.Label}] = true
	}
	return out
}

func TestProject_EntryAndOrchestration(t *testing.T) {
	cat := defaultCatalog(t)

	g := Project(cat, Options{Layers: []string{"Entry Layer", "Orchestration Layer"}})

	assert.Equal(t, KindArchitecture, g.Kind)
	require.Len(t, g.Clusters, 2)
	assert.Equal(t, catalog.LayerEntry, g.Clusters[0].Layer)
	assert.Equal(t, catalog.LayerOrchestration, g.Clusters[1].Layer)
	assert.Equal(t, []string{"customer", "authentication", "api_gateway"}, g.Clusters[0].Nodes)
	assert.Contains(t, nodeIDs(g), "planner")
	assert.NotContains(t, nodeIDs(g), "azure_openai")

	keys := edgeKeys(g)
	assert.True(t, keys[edgeKey{"customer", "authentication", "Request"}])
	assert.True(t, keys[edgeKey{"planner", "tool_selector", "Plan"}])
	for _, e := range g.Edges {
		_, fromOK := g.Node(e.From)
		_, toOK := g.Node(e.To)
		assert.True(t, fromOK && toOK, "edge %s -> %s leaves the graph", e.From, e.To)
		assert.Equal(t, EdgeArchitecture, e.Style)
	}
	assert.Len(t, g.Edges, 9)
}

func TestProject_AcceptsLayerIDs(t *testing.T) {
	cat := defaultCatalog(t)

	byName := Project(cat, Options{Layers: []string{"Entry Layer"}})
	byID := Project(cat, Options{Layers: []string{"entry"}})
	assert.Equal(t, byName, byID)
}

func TestProject_Deterministic(t *testing.T) {
	cat := defaultCatalog(t)
	opts := Options{Layers: cat.LayerNames(), Highlight: "planner", IncludeConditional: true}

	first := Project(cat, opts)
	for range 5 {
		assert.Equal(t, first, Project(cat, opts))
	}
}

func TestProject_ConditionalEdges(t *testing.T) {
	cat := defaultCatalog(t)
	var conditional int
	for _, r := range cat.Relationships() {
		if r.Conditional() {
			conditional++
		}
	}
	require.Positive(t, conditional)

	without := Project(cat, Options{Layers: cat.LayerNames()})
	for _, e := range without.Edges {
		assert.Empty(t, e.Condition)
	}
	assert.Len(t, without.Edges, len(cat.Relationships())-conditional)

	with := Project(cat, Options{Layers: cat.LayerNames(), IncludeConditional: true})
	var got int
	for _, e := range with.Edges {
		if e.Condition != "" {
			got++
		}
	}
	assert.Equal(t, conditional, got)
	assert.Len(t, with.Edges, len(cat.Relationships()))

	cardOnly := Project(cat, Options{Layers: cat.LayerNames(), IncludeConditional: true, Conditions: []string{"card"}})
	for _, e := range cardOnly.Edges {
		if e.Condition != "" {
			assert.Equal(t, "card", e.Condition)
		}
	}
	assert.Len(t, cardOnly.Edges, len(without.Edges)+1)
}

func TestProject_LayerSubset(t *testing.T) {
	cat := defaultCatalog(t)
	all := cat.LayerNames()

	for i := range all {
		small := Project(cat, Options{Layers: all[:i]})
		large := Project(cat, Options{Layers: all[:i+1]})

		largeNodes := make(map[string]bool)
		for _, id := range nodeIDs(large) {
			largeNodes[id] = true
		}
		for _, id := range nodeIDs(small) {
			assert.True(t, largeNodes[id], "node %s missing from superset", id)
		}

		largeEdges := edgeKeys(large)
		for k := range edgeKeys(small) {
			assert.True(t, largeEdges[k], "edge %v missing from superset", k)
		}
		// An edge of the superset belongs to the subset iff both ends are visible there.
		smallEdges := edgeKeys(small)
		for _, e := range large.Edges {
			_, fromOK := small.Node(e.From)
			_, toOK := small.Node(e.To)
			assert.Equal(t, fromOK && toOK, smallEdges[edgeKey{e.From, e.To, e.Label}])
		}
	}
}

func TestProject_EmptyLayerFilter(t *testing.T) {
	g := Project(defaultCatalog(t), Options{})
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Clusters)
	assert.Empty(t, g.Edges)
}

func TestProject_Highlight(t *testing.T) {
	cat := defaultCatalog(t)

	for _, target := range []string{"planner", "Planner Agent"} {
		g := Project(cat, Options{Layers: []string{"Orchestration Layer"}, Highlight: target})
		var highlighted []string
		for _, n := range g.Nodes {
			if n.Style == StyleHighlighted {
				highlighted = append(highlighted, n.ID)
			}
		}
		assert.Equal(t, []string{"planner"}, highlighted, "highlight %q", target)
	}
}

func TestProject_ParallelSequenceEdges(t *testing.T) {
	cat := defaultCatalog(t)

	g := Project(cat, Options{Layers: cat.LayerNames(), Sequences: []string{"rag", "mcp"}})
	assert.Equal(t, KindFlow, g.Kind)
	assert.Equal(t, []string{"rag", "mcp"}, g.Sequences)

	rag, err := cat.Sequence("rag")
	require.NoError(t, err)
	mcp, err := cat.Sequence("mcp")
	require.NoError(t, err)
	assert.Len(t, g.Edges, len(rag.Steps)+len(mcp.Steps))

	var first []Edge
	for _, e := range g.Edges {
		if e.From == "customer" && e.To == "authentication" {
			first = append(first, e)
		}
	}
	require.Len(t, first, 2)
	assert.Equal(t, "rag", first[0].Sequence)
	assert.Equal(t, "#006400", first[0].Color)
	assert.Equal(t, "mcp", first[1].Sequence)
	assert.Equal(t, "1", first[1].Step)

	// Only entities touched by a sequence become nodes.
	assert.NotContains(t, nodeIDs(g), "zookeeper")

	var async int
	for _, e := range g.Edges {
		if e.Async {
			async++
		}
	}
	assert.Equal(t, 4, async)
}

func TestProject_UnknownSequenceSkipped(t *testing.T) {
	cat := defaultCatalog(t)

	g := Project(cat, Options{Layers: cat.LayerNames(), Sequences: []string{"rag", "nope"}})
	assert.Equal(t, []string{"rag"}, g.Sequences)
	assert.Len(t, g.Edges, 11)
}

func TestProjectPath_GeneralQuestion(t *testing.T) {
	cat := defaultCatalog(t)
	sc, err := cat.Scenario("General Question")
	require.NoError(t, err)
	require.Len(t, sc.Path, 13)

	details := catalog.Details{
		"customer": {OutboundProtocol: "HTTPS/REST"},
		"critic":   {InboundProtocol: "gRPC"},
	}
	g := ProjectPath(cat, sc.Path, 6, details)

	assert.Equal(t, KindPath, g.Kind)
	require.Len(t, g.Nodes, 13)
	require.Len(t, g.Edges, 12)

	var request int
	for _, n := range g.Nodes {
		if n.Style == StyleRequest {
			request++
		}
	}
	assert.Equal(t, 6, request)
	assert.Equal(t, "customer_step0", g.Nodes[0].ID)
	assert.Equal(t, "planner_step10", g.Nodes[10].ID)

	assert.Equal(t, "1\nHTTPS/REST", g.Edges[0].Label)
	assert.Equal(t, EdgeRequest, g.Edges[0].Style)
	assert.Equal(t, EdgeRequest, g.Edges[4].Style)
	assert.Equal(t, EdgeResponse, g.Edges[5].Style)
	assert.Equal(t, "10\ngRPC", g.Edges[9].Label)
	assert.Equal(t, "12", g.Edges[11].Label)
}

func TestProjectJourney(t *testing.T) {
	cat := defaultCatalog(t)
	j, err := cat.Journey("airport_transfer")
	require.NoError(t, err)

	all := ProjectJourney(j, nil)
	assert.Equal(t, KindJourney, all.Kind)
	assert.Len(t, all.Nodes, 22)
	assert.Len(t, all.Edges, 21)
	assert.Len(t, all.Phases, 4)

	first := all.Nodes[0]
	assert.Equal(t, "step_1", first.ID)
	assert.Equal(t, "#10B981", first.Color)
	assert.Equal(t, "1. Home Screen - Initial State\nUser: Views banking app home screen\nLatency: 50ms", first.Label)
	assert.Equal(t, "HTTPS/REST", all.Edges[0].Label)

	one := ProjectJourney(j, []string{"Proactive Engagement"})
	assert.Equal(t, []string{"step_1", "step_2", "step_3"}, nodeIDs(one))
	assert.Len(t, one.Edges, 2)
	assert.Equal(t, "gRPC + HTTPS/REST + OAuth 2.0", one.Edges[1].Label)

	// Non-adjacent phases are not bridged.
	split := ProjectJourney(j, []string{"Proactive Engagement", "Travel Card Update"})
	assert.Len(t, split.Nodes, 10)
	assert.Len(t, split.Edges, 8)
}

func TestJourneyLabel_Truncates(t *testing.T) {
	s := catalog.JourneyStep{
		ID:         9,
		Title:      "Long",
		UserAction: "Types a very long message into the chat input box",
		Latency:    "1s",
	}
	assert.Equal(t, "9. Long\nUser: Types a very long message into the chat ...\nLatency: 1s", journeyLabel(s))
}

func TestParseOrientation(t *testing.T) {
	assert.Equal(t, LeftRight, ParseOrientation("LR"))
	assert.Equal(t, LeftRight, ParseOrientation("Left to Right"))
	assert.Equal(t, TopBottom, ParseOrientation("TB"))
	assert.Equal(t, TopBottom, ParseOrientation("diagonal"))
}
