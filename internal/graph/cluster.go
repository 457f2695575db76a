package graph

import (
	"context"
	"fmt"
	"sort"
)

// LayerCohesion scores how self-contained a layer is in the stored graph.
type LayerCohesion struct {
	Layer    string  `json:"layer"`
	Internal int     `json:"internal"` // flows with both ends in the layer
	External int     `json:"external"` // flows crossing the layer boundary
	Score    float64 `json:"score"`    // internal / (internal + external)
}

// ComputeCohesion scores every stored layer by its flows. Conditional flows
// are ignored. Layers without any flow score 0.
func ComputeCohesion(ctx context.Context, store Store) ([]LayerCohesion, error) {
	layers, err := store.GetLayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("cohesion: layers: %w", err)
	}
	flows, err := store.GetAllFlows(ctx)
	if err != nil {
		return nil, fmt.Errorf("cohesion: flows: %w", err)
	}

	layerOf := make(map[string]string)
	for _, l := range layers {
		for _, m := range l.Members {
			layerOf[m] = l.ID
		}
	}

	out := make([]LayerCohesion, 0, len(layers))
	for _, l := range layers {
		c := LayerCohesion{Layer: l.ID}
		for _, f := range flows {
			if f.Kind != FlowKindFlows {
				continue
			}
			src, dst := layerOf[f.SourceID] == l.ID, layerOf[f.TargetID] == l.ID
			switch {
			case src && dst:
				c.Internal++
			case src || dst:
				c.External++
			}
		}
		if total := c.Internal + c.External; total > 0 {
			c.Score = float64(c.Internal) / float64(total)
		}
		out = append(out, c)
	}
	return out, nil
}

// ComputeIslands finds groups of components joined by unconditional flows,
// ignoring direction. Singletons are dropped. Members of each island are
// sorted and islands are ordered largest first, then by first member.
func ComputeIslands(ctx context.Context, store Store) ([][]string, error) {
	layers, err := store.GetLayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("islands: layers: %w", err)
	}
	flows, err := store.GetAllFlows(ctx)
	if err != nil {
		return nil, fmt.Errorf("islands: flows: %w", err)
	}

	var ids []string
	for _, l := range layers {
		ids = append(ids, l.Members...)
	}
	adj := buildAdjacency(ids, flows)

	visited := make(map[string]bool, len(ids))
	var islands [][]string
	for _, id := range ids {
		if visited[id] {
			continue
		}
		component := bfsComponent(id, adj, visited)
		if len(component) < 2 {
			continue
		}
		sort.Strings(component)
		islands = append(islands, component)
	}
	sort.SliceStable(islands, func(i, j int) bool {
		if len(islands[i]) != len(islands[j]) {
			return len(islands[i]) > len(islands[j])
		}
		return islands[i][0] < islands[j][0]
	})
	return islands, nil
}

// buildAdjacency constructs an undirected adjacency list from unconditional
// flows between known components.
func buildAdjacency(ids []string, flows []FlowEdge) map[string]map[string]bool {
	adj := make(map[string]map[string]bool, len(ids))
	for _, id := range ids {
		adj[id] = make(map[string]bool)
	}
	for _, f := range flows {
		if f.Kind != FlowKindFlows {
			continue
		}
		if adj[f.SourceID] != nil && adj[f.TargetID] != nil {
			adj[f.SourceID][f.TargetID] = true
			adj[f.TargetID][f.SourceID] = true
		}
	}
	return adj
}

// bfsComponent returns every node reachable from start, marking visited.
func bfsComponent(start string, adj map[string]map[string]bool, visited map[string]bool) []string {
	var component []string
	queue := []string{start}
	visited[start] = true

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		component = append(component, node)
		for neighbor := range adj[node] {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}
	return component
}
