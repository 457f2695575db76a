package mcptools

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMCPServer creates an MCP server with every archviz tool registered.
func NewMCPServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "archviz",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "project_graph",
		Description: "Project the platform architecture into a graph. Filter by layer, highlight an entity, include conditional routes, or draw named flow sequences. Returns JSON, DOT or Mermaid.",
	}, svc.ProjectGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_drawio",
		Description: "Export the selected layers as an editable draw.io document with one swimlane per layer and every relationship as a labeled edge.",
	}, svc.ExportDrawio)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_scenario",
		Description: "Resolve a scenario name or free-text customer query to its processing path, split into request and response halves.",
	}, svc.ResolveScenario)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify_intent",
		Description: "Classify a customer query as card, loan, wealth, multi or general and return the templated path for that intent.",
	}, svc.ClassifyIntent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_catalog",
		Description: "Check the entity, relationship, layer and sequence catalogs for dangling references, duplicates and misordered steps.",
	}, svc.ValidateCatalog)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_flows",
		Description: "List the named flow sequences, the predefined scenarios and the customer journeys.",
	}, svc.ListFlows)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_components",
		Description: "Search components by layer, name substring and deployment kind.",
	}, svc.SearchComponents)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dependencies",
		Description: "Traverse the flow graph downstream or upstream from a component. Returns dependency chains up to the specified depth.",
	}, svc.GetDependencies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "assess_impact",
		Description: "Compute the blast radius of failing components: every component whose requests pass through them, with a risk score.",
	}, svc.AssessImpact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "layer_cohesion",
		Description: "Score how self-contained each layer is and list the connected islands of the flow graph.",
	}, svc.LayerCohesion)

	return server
}

// RunStdio runs server on the stdio transport, blocking until stdin is closed
// or ctx is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves server over streamable HTTP on addr until ctx is cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string, logger *slog.Logger) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp http shutdown", "error", err)
		}
	}()

	logger.Info("mcp http listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
