package mcptools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/archviz/internal/catalog"
	"github.com/dusk-indust/archviz/internal/export"
	"github.com/dusk-indust/archviz/internal/graph"
	"github.com/dusk-indust/archviz/internal/render"
	"github.com/dusk-indust/archviz/internal/scenario"
)

// Service holds the catalog, enhancement details and indexed graph used by
// the MCP tool handlers.
type Service struct {
	cat     *catalog.Catalog
	details catalog.Details
	store   graph.Store
	logger  *slog.Logger
}

// NewService creates a Service. store must already hold the indexed catalog;
// see graph.Index. A nil logger discards output.
func NewService(cat *catalog.Catalog, details catalog.Details, store graph.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{cat: cat, details: details, store: store, logger: logger}
}

func (s *Service) layersOrAll(layers []string) []string {
	if len(layers) == 0 {
		return s.cat.LayerNames()
	}
	return layers
}

// ProjectGraph projects the catalog and returns it as structured JSON or as
// DOT or Mermaid text.
func (s *Service) ProjectGraph(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ProjectGraphInput,
) (*mcp.CallToolResult, ProjectGraphOutput, error) {
	g := graph.Project(s.cat, graph.Options{
		Layers:             s.layersOrAll(input.Layers),
		Highlight:          input.Highlight,
		IncludeConditional: input.IncludeConditional,
		Conditions:         input.Conditions,
		Sequences:          input.Sequences,
	})
	out := ProjectGraphOutput{Stats: g.Stats()}

	orient := graph.ParseOrientation(input.Direction)
	switch strings.ToLower(input.Format) {
	case "", "json":
		out.Graph = g
	case "dot":
		out.Diagram = render.Render(s.cat, g, s.details, orient).DOT()
	case "mermaid":
		out.Diagram = render.Render(s.cat, g, s.details, orient).Mermaid()
	default:
		return nil, ProjectGraphOutput{}, fmt.Errorf("unknown format %q (want json, dot or mermaid)", input.Format)
	}

	s.logger.Debug("projected graph", "kind", g.Kind, "nodes", out.Stats.NodeCount, "edges", out.Stats.EdgeCount)
	return nil, out, nil
}

// ExportDrawio builds the draw.io document for the selected layers.
func (s *Service) ExportDrawio(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ExportDrawioInput,
) (*mcp.CallToolResult, ExportDrawioOutput, error) {
	doc := export.BuildDrawio(s.cat, s.layersOrAll(input.Layers), graph.ParseOrientation(input.Direction))
	data, err := doc.Marshal()
	if err != nil {
		return nil, ExportDrawioOutput{}, fmt.Errorf("marshal drawio: %w", err)
	}

	out := ExportDrawioOutput{XML: string(data)}
	for _, c := range doc.Diagram.Model.Cells {
		switch {
		case c.IsSwimlane():
			out.Swimlanes++
		case c.IsVertex():
			out.Vertices++
		case c.IsEdge():
			out.Edges++
		}
	}
	return nil, out, nil
}

// ResolveScenario maps a scenario name or free-text query to a processing
// path split into request and response halves.
func (s *Service) ResolveScenario(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ResolveScenarioInput,
) (*mcp.CallToolResult, ResolveScenarioOutput, error) {
	if strings.TrimSpace(input.Input) == "" {
		return nil, ResolveScenarioOutput{}, fmt.Errorf("input is required")
	}

	r := scenario.Resolve(s.cat, input.Input)
	return nil, ResolveScenarioOutput{
		Resolution: r,
		Request:    r.Request(),
		Response:   r.Response(),
	}, nil
}

// ClassifyIntent classifies a query without resolving a path.
func (s *Service) ClassifyIntent(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ClassifyIntentInput,
) (*mcp.CallToolResult, ClassifyIntentOutput, error) {
	intent := scenario.Classify(input.Text)
	return nil, ClassifyIntentOutput{
		Intent:   intent,
		Keywords: scenario.Keywords(intent),
		Path:     scenario.PathForIntent(intent),
	}, nil
}

// ValidateCatalog reports every referential integrity problem in the catalog.
func (s *Service) ValidateCatalog(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ValidateCatalogInput,
) (*mcp.CallToolResult, ValidateCatalogOutput, error) {
	violations := catalog.Validate(s.cat)
	return nil, ValidateCatalogOutput{
		Valid:      len(violations) == 0,
		Violations: violations,
	}, nil
}

// ListFlows lists the named sequences, scenarios and journeys.
func (s *Service) ListFlows(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListFlowsInput,
) (*mcp.CallToolResult, ListFlowsOutput, error) {
	var out ListFlowsOutput
	for _, seq := range s.cat.Sequences() {
		out.Sequences = append(out.Sequences, FlowSummary{
			Name:     seq.Name,
			Title:    seq.Title,
			Steps:    len(seq.Steps),
			Entities: seq.Entities(),
		})
	}
	for _, sc := range s.cat.Scenarios() {
		out.Scenarios = append(out.Scenarios, sc.Name)
	}
	for _, j := range s.cat.Journeys() {
		out.Journeys = append(out.Journeys, j.Name)
	}
	return nil, out, nil
}

// SearchComponents filters catalog entities by layer, name and deployment.
func (s *Service) SearchComponents(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SearchComponentsInput,
) (*mcp.CallToolResult, SearchComponentsOutput, error) {
	kind, err := catalog.ParseDeploymentKind(input.Deployment)
	if err != nil {
		return nil, SearchComponentsOutput{}, err
	}

	found := s.cat.Search(catalog.SearchQuery{
		Layer:      input.Layer,
		Text:       input.Text,
		Deployment: kind,
	}, s.details)
	return nil, SearchComponentsOutput{Components: found, Total: len(found)}, nil
}

// GetDependencies traverses the indexed flow graph from one component.
func (s *Service) GetDependencies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDependenciesInput,
) (*mcp.CallToolResult, GetDependenciesOutput, error) {
	if input.ComponentID == "" {
		return nil, GetDependenciesOutput{}, fmt.Errorf("componentId is required")
	}

	direction := graph.DirectionDownstream
	if strings.EqualFold(input.Direction, "upstream") {
		direction = graph.DirectionUpstream
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 5
	}

	chains, err := s.store.GetDependencies(ctx, input.ComponentID, direction, maxDepth)
	if err != nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("get dependencies: %w", err)
	}

	return nil, GetDependenciesOutput{Chains: chains}, nil
}

// AssessImpact computes which components lose a path forward when the given
// components fail.
func (s *Service) AssessImpact(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AssessImpactInput,
) (*mcp.CallToolResult, AssessImpactOutput, error) {
	if len(input.Failing) == 0 {
		return nil, AssessImpactOutput{}, fmt.Errorf("failing is required")
	}

	impact, err := s.store.AssessImpact(ctx, input.Failing)
	if err != nil {
		return nil, AssessImpactOutput{}, fmt.Errorf("assess impact: %w", err)
	}

	return nil, AssessImpactOutput{Impact: *impact}, nil
}

// LayerCohesion scores each layer and lists the connected islands of the
// indexed graph.
func (s *Service) LayerCohesion(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ LayerCohesionInput,
) (*mcp.CallToolResult, LayerCohesionOutput, error) {
	layers, err := graph.ComputeCohesion(ctx, s.store)
	if err != nil {
		return nil, LayerCohesionOutput{}, fmt.Errorf("compute cohesion: %w", err)
	}
	islands, err := graph.ComputeIslands(ctx, s.store)
	if err != nil {
		return nil, LayerCohesionOutput{}, fmt.Errorf("compute islands: %w", err)
	}
	return nil, LayerCohesionOutput{Layers: layers, Islands: islands}, nil
}
