package graph

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu         sync.RWMutex
	components map[string]ComponentNode
	order      []string // component ids in insertion order
	layers     []LayerNode
	flows      []FlowEdge
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		components: make(map[string]ComponentNode),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddLayer appends a layer. Members are derived from components, not taken
// from node.
func (m *MemStore) AddLayer(_ context.Context, node LayerNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	node.Members = nil
	m.layers = append(m.layers, node)
	return nil
}

// AddComponent stores a component keyed by id.
func (m *MemStore) AddComponent(_ context.Context, node ComponentNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.components[node.ID]; !ok {
		m.order = append(m.order, node.ID)
	}
	m.components[node.ID] = node
	return nil
}

// AddFlow appends a flow edge.
func (m *MemStore) AddFlow(_ context.Context, edge FlowEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flows = append(m.flows, edge)
	return nil
}

// GetComponent returns the component with the given id, or nil if not found.
func (m *MemStore) GetComponent(_ context.Context, id string) (*ComponentNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.components[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// QueryComponents returns components whose id or name contains query
// (case-insensitive), up to limit results. A limit <= 0 returns all matches.
func (m *MemStore) QueryComponents(_ context.Context, query string, limit int) ([]ComponentNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(query)
	var results []ComponentNode
	for _, id := range m.order {
		c := m.components[id]
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(c.ID, q) {
			results = append(results, c)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

// GetLayers returns the layers sorted by order, each with its member ids.
func (m *MemStore) GetLayers(_ context.Context) ([]LayerNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]LayerNode, len(m.layers))
	for i, l := range m.layers {
		for _, id := range m.order {
			if m.components[id].Layer == l.ID {
				l.Members = append(l.Members, id)
			}
		}
		out[i] = l
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// GetAllFlows returns a copy of all flow edges.
func (m *MemStore) GetAllFlows(_ context.Context) ([]FlowEdge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FlowEdge, len(m.flows))
	copy(out, m.flows)
	return out, nil
}

// GetDependencies performs a BFS over flows from id in the given direction,
// up to maxDepth hops. It returns one DependencyChain per reachable component.
func (m *MemStore) GetDependencies(_ context.Context, id string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if maxDepth <= 0 {
		return nil, nil
	}

	// BFS state: each entry tracks the path from id to the current node.
	type bfsEntry struct {
		id   string
		path []string
	}

	visited := map[string]bool{id: true}
	queue := []bfsEntry{{id: id, path: []string{id}}}
	var chains []DependencyChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var nextQueue []bfsEntry
		for _, entry := range queue {
			for _, nb := range m.neighbors(entry.id, direction) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				newPath := make([]string, len(entry.path), len(entry.path)+1)
				copy(newPath, entry.path)
				newPath = append(newPath, nb)
				chains = append(chains, DependencyChain{
					Nodes: newPath,
					Depth: len(newPath) - 1,
				})
				nextQueue = append(nextQueue, bfsEntry{id: nb, path: newPath})
			}
		}
		queue = nextQueue
	}

	return chains, nil
}

// neighbors returns ids reachable from id in one hop along the given direction.
func (m *MemStore) neighbors(id string, direction Direction) []string {
	var result []string
	for _, e := range m.flows {
		switch direction {
		case DirectionDownstream:
			if e.SourceID == id {
				result = append(result, e.TargetID)
			}
		case DirectionUpstream:
			if e.TargetID == id {
				result = append(result, e.SourceID)
			}
		}
	}
	return result
}

// AssessImpact finds the components that send traffic, directly or
// transitively, into the failing set. Only unconditional flows count.
func (m *MemStore) AssessImpact(_ context.Context, failing []string) (*ImpactResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	failingSet := make(map[string]bool, len(failing))
	for _, f := range failing {
		failingSet[f] = true
	}

	directSet := make(map[string]bool)
	for _, e := range m.flows {
		if e.Kind != FlowKindFlows {
			continue
		}
		if failingSet[e.TargetID] && !failingSet[e.SourceID] {
			directSet[e.SourceID] = true
		}
	}

	allAffected := make(map[string]bool)
	frontier := make(map[string]bool)
	for k := range directSet {
		allAffected[k] = true
		frontier[k] = true
	}

	for len(frontier) > 0 {
		nextFrontier := make(map[string]bool)
		for _, e := range m.flows {
			if e.Kind != FlowKindFlows {
				continue
			}
			if frontier[e.TargetID] && !failingSet[e.SourceID] && !allAffected[e.SourceID] {
				allAffected[e.SourceID] = true
				nextFrontier[e.SourceID] = true
			}
		}
		frontier = nextFrontier
	}

	transitive := setToSlice(allAffected)

	var riskScore float64
	if len(m.components) > 0 {
		riskScore = float64(len(transitive)) / float64(len(m.components))
	}

	return &ImpactResult{
		DirectlyAffected:     setToSlice(directSet),
		TransitivelyAffected: transitive,
		RiskScore:            riskScore,
	}, nil
}

// Stats returns component, flow and layer counts.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &GraphStats{
		NodeCount:    len(m.components),
		EdgeCount:    len(m.flows),
		ClusterCount: len(m.layers),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

// setToSlice converts a string bool map to a sorted slice.
func setToSlice(s map[string]bool) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
