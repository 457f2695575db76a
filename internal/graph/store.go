package graph

import (
	"context"
	"io"
)

// Store is the interface for the indexed architecture graph.
// Implementations: KuzuStore (persistent), MemStore (in-process and tests).
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddLayer(ctx context.Context, node LayerNode) error
	AddComponent(ctx context.Context, node ComponentNode) error
	AddFlow(ctx context.Context, edge FlowEdge) error

	// Read operations.
	GetComponent(ctx context.Context, id string) (*ComponentNode, error)
	QueryComponents(ctx context.Context, query string, limit int) ([]ComponentNode, error)
	GetLayers(ctx context.Context) ([]LayerNode, error)
	GetAllFlows(ctx context.Context) ([]FlowEdge, error)

	// Graph traversal.
	GetDependencies(ctx context.Context, id string, direction Direction, maxDepth int) ([]DependencyChain, error)
	AssessImpact(ctx context.Context, failing []string) (*ImpactResult, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // who sends to this component?
	DirectionDownstream Direction = "downstream" // who does this component send to?
)
