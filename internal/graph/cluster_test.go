package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/archviz/internal/catalog"
)

func TestComputeCohesion(t *testing.T) {
	s := newSeededMemStore(t)

	got, err := ComputeCohesion(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// entry: web->gateway internal, gateway->planner crosses.
	assert.Equal(t, LayerCohesion{Layer: "entry", Internal: 1, External: 1, Score: 0.5}, got[0])
	// core: planner->accounts internal; the conditional card flow is ignored.
	assert.Equal(t, LayerCohesion{Layer: "core", Internal: 1, External: 1, Score: 0.5}, got[1])
}

func TestComputeCohesion_EmptyLayer(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.AddLayer(ctx, LayerNode{ID: "lonely", Name: "Lonely", Order: 1}))

	got, err := ComputeCohesion(ctx, s)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].Score)
}

func TestComputeIslands(t *testing.T) {
	s := newSeededMemStore(t)

	islands, err := ComputeIslands(context.Background(), s)
	require.NoError(t, err)
	// cards only hangs off a conditional flow, so it is a singleton.
	assert.Equal(t, [][]string{{"accounts", "gateway", "planner", "web"}}, islands)
}

func TestComputeIslands_DefaultCatalog(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	s := NewMemStore()
	_, err = Index(context.Background(), s, cat)
	require.NoError(t, err)

	islands, err := ComputeIslands(context.Background(), s)
	require.NoError(t, err)
	require.NotEmpty(t, islands)

	seen := make(map[string]bool)
	for _, island := range islands {
		assert.GreaterOrEqual(t, len(island), 2)
		for _, id := range island {
			assert.False(t, seen[id], "%s in two islands", id)
			seen[id] = true
		}
	}
	assert.Contains(t, islands[0], "customer")
}
