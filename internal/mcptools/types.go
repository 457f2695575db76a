package mcptools

import (
	"github.com/dusk-indust/archviz/internal/catalog"
	"github.com/dusk-indust/archviz/internal/graph"
	"github.com/dusk-indust/archviz/internal/scenario"
)

// --- MCP Tool Input Types ---
// The SDK derives each tool's JSON schema from these struct tags. Fields
// without omitempty are required.

// ProjectGraphInput is the input for the project_graph MCP tool.
type ProjectGraphInput struct {
	Layers             []string `json:"layers,omitempty" jsonschema:"layer names or ids to show (default: every layer)"`
	Highlight          string   `json:"highlight,omitempty" jsonschema:"entity id or display name to highlight"`
	IncludeConditional bool     `json:"includeConditional,omitempty" jsonschema:"include scenario-conditional relationships"`
	Conditions         []string `json:"conditions,omitempty" jsonschema:"restrict conditional relationships to these tags, e.g. card, loan, wealth"`
	Sequences          []string `json:"sequences,omitempty" jsonschema:"named flow sequences to draw instead of the relationship catalog: rag, mcp, mcp_openapi"`
	Direction          string   `json:"direction,omitempty" jsonschema:"TB (default) or LR"`
	Format             string   `json:"format,omitempty" jsonschema:"json (default), dot or mermaid"`
}

// ProjectGraphOutput is the result of the project_graph MCP tool.
type ProjectGraphOutput struct {
	Stats   graph.GraphStats `json:"stats"`
	Graph   *graph.Graph     `json:"graph,omitempty"`
	Diagram string           `json:"diagram,omitempty"`
}

// ExportDrawioInput is the input for the export_drawio MCP tool.
type ExportDrawioInput struct {
	Layers    []string `json:"layers,omitempty" jsonschema:"layer names or ids to export (default: every layer)"`
	Direction string   `json:"direction,omitempty" jsonschema:"TB (default) stacks layers, LR places them side by side"`
}

// ExportDrawioOutput is the result of the export_drawio MCP tool.
type ExportDrawioOutput struct {
	XML       string `json:"xml"`
	Swimlanes int    `json:"swimlanes"`
	Vertices  int    `json:"vertices"`
	Edges     int    `json:"edges"`
}

// ResolveScenarioInput is the input for the resolve_scenario MCP tool.
type ResolveScenarioInput struct {
	Input string `json:"input" jsonschema:"a scenario name such as 'Card Application' or a free-text customer query"`
}

// ResolveScenarioOutput is the result of the resolve_scenario MCP tool.
type ResolveScenarioOutput struct {
	Resolution scenario.Resolution `json:"resolution"`
	Request    []string            `json:"request"`
	Response   []string            `json:"response"`
}

// ClassifyIntentInput is the input for the classify_intent MCP tool.
type ClassifyIntentInput struct {
	Text string `json:"text" jsonschema:"customer query to classify"`
}

// ClassifyIntentOutput is the result of the classify_intent MCP tool.
type ClassifyIntentOutput struct {
	Intent   scenario.Intent `json:"intent"`
	Keywords []string        `json:"keywords"`
	Path     []string        `json:"path"`
}

// ValidateCatalogInput is the input for the validate_catalog MCP tool.
type ValidateCatalogInput struct{}

// ValidateCatalogOutput is the result of the validate_catalog MCP tool.
type ValidateCatalogOutput struct {
	Valid      bool                `json:"valid"`
	Violations []catalog.Violation `json:"violations"`
}

// ListFlowsInput is the input for the list_flows MCP tool.
type ListFlowsInput struct{}

// FlowSummary is a brief overview of one named flow sequence.
type FlowSummary struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Steps    int      `json:"steps"`
	Entities []string `json:"entities"`
}

// ListFlowsOutput is the result of the list_flows MCP tool.
type ListFlowsOutput struct {
	Sequences []FlowSummary `json:"sequences"`
	Scenarios []string      `json:"scenarios"`
	Journeys  []string      `json:"journeys"`
}

// SearchComponentsInput is the input for the search_components MCP tool.
type SearchComponentsInput struct {
	Layer      string `json:"layer,omitempty" jsonschema:"layer name or id"`
	Text       string `json:"text,omitempty" jsonschema:"case-insensitive substring of the component name"`
	Deployment string `json:"deployment,omitempty" jsonschema:"container, managed or external (needs enhancement details)"`
}

// SearchComponentsOutput is the result of the search_components MCP tool.
type SearchComponentsOutput struct {
	Components []catalog.Entity `json:"components"`
	Total      int              `json:"total"`
}

// GetDependenciesInput is the input for the get_dependencies MCP tool.
type GetDependenciesInput struct {
	ComponentID string `json:"componentId" jsonschema:"entity id, e.g. planner"`
	Direction   string `json:"direction,omitempty" jsonschema:"downstream (where it sends) or upstream (who sends to it). Default: downstream"`
	MaxDepth    int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetDependenciesOutput is the result of the get_dependencies MCP tool.
type GetDependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}

// AssessImpactInput is the input for the assess_impact MCP tool.
type AssessImpactInput struct {
	Failing []string `json:"failing" jsonschema:"entity ids assumed to be down"`
}

// AssessImpactOutput is the result of the assess_impact MCP tool.
type AssessImpactOutput struct {
	Impact graph.ImpactResult `json:"impact"`
}

// LayerCohesionInput is the input for the layer_cohesion MCP tool.
type LayerCohesionInput struct{}

// LayerCohesionOutput is the result of the layer_cohesion MCP tool.
type LayerCohesionOutput struct {
	Layers  []graph.LayerCohesion `json:"layers"`
	Islands [][]string            `json:"islands"`
}
