package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/archviz/internal/export"
	"github.com/dusk-indust/archviz/internal/scenario"
)

// runCLI executes the root command against project root dir and returns
// what it wrote to stdout.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--project-root", dir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidate(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "catalog is consistent: 34 entities, 53 relationships, 10 layers, 3 sequences")
}

func TestDiagram_Formats(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "diagram", "-l", "Entry Layer", "--format", "mermaid")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD"))

	out, err = runCLI(t, dir, "--direction", "LR", "diagram", "--highlight", "planner")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph"))
	assert.Contains(t, out, "rankdir=LR")

	_, err = runCLI(t, dir, "diagram", "--format", "png")
	assert.ErrorContains(t, err, "unknown format")
}

func TestDiagram_ConfigLayers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "archviz.yml"), []byte("layers: [\"Data Layer\"]\n"), 0o644))

	out, err := runCLI(t, dir, "diagram", "-f", "json")
	require.NoError(t, err)

	var exp export.GraphExport
	require.NoError(t, json.Unmarshal([]byte(out), &exp))
	assert.Equal(t, 3, exp.Stats.NodeCount)
	assert.Equal(t, 1, exp.Stats.ClusterCount)
}

func TestDiagram_OutputFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out", "arch.dot")

	out, err := runCLI(t, dir, "diagram", "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("digraph")))
}

func TestFlows(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "flows", "rag", "mcp")
	require.NoError(t, err)
	assert.Contains(t, out, "(async)")

	_, err = runCLI(t, dir, "flows", "nope")
	assert.Error(t, err)
}

func TestPathAndJourney(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "path", "General", "Question", "-f", "json")
	require.NoError(t, err)
	var exp export.GraphExport
	require.NoError(t, json.Unmarshal([]byte(out), &exp))
	assert.Equal(t, "path-general-question", exp.Name)
	assert.Equal(t, 13, exp.Stats.NodeCount)

	out, err = runCLI(t, dir, "journey", "-f", "mermaid")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph"))

	_, err = runCLI(t, dir, "journey", "--phase", "No Such Phase")
	assert.ErrorContains(t, err, "has no phase")
}

func TestClassifyAndResolve(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "classify", "I", "need", "a", "mortgage")
	require.NoError(t, err)
	assert.Equal(t, "loan\n", out)

	out, err = runCLI(t, dir, "resolve", "--json", "General Question")
	require.NoError(t, err)
	var r scenario.Resolution
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 6, r.Split)

	out, err = runCLI(t, dir, "resolve", "apply", "for", "a", "credit", "card")
	require.NoError(t, err)
	assert.Contains(t, out, "card")
	assert.Contains(t, out, "→")
}

func TestComponents(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "components", "--layer", "entry")
	require.NoError(t, err)
	assert.Contains(t, out, "api_gateway")
	assert.Contains(t, out, "3 of 34 components")

	_, err = runCLI(t, dir, "components", "--layer", "nowhere")
	assert.ErrorContains(t, err, "unknown layer")
}

func TestGraphCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "deps", "zookeeper")
	require.NoError(t, err)
	assert.Contains(t, out, "zookeeper → kafka")

	out, err = runCLI(t, dir, "deps", "--upstream", "--depth", "1", "redis")
	require.NoError(t, err)
	assert.Contains(t, out, "redis → rate_limiter")

	_, err = runCLI(t, dir, "deps", "ghost")
	assert.ErrorContains(t, err, "unknown component")

	out, err = runCLI(t, dir, "impact", "redis")
	require.NoError(t, err)
	assert.Contains(t, out, "rate_limiter")

	out, err = runCLI(t, dir, "cohesion")
	require.NoError(t, err)
	assert.Contains(t, out, "connected island")
}

func TestExportAll(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "diagrams")

	out, err := runCLI(t, dir, "export", "--all", "--dir", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "14 files written")

	for _, name := range []string{
		"architecture.drawio",
		"architecture.dot",
		"architecture.mmd",
		"architecture.json",
		"flow-mcp_openapi.dot",
		"path-general-question.dot",
		"path-multi-intent-query.dot",
		"journey-airport_transfer.dot",
	} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}

	data, err := os.ReadFile(filepath.Join(outDir, "architecture.drawio"))
	require.NoError(t, err)
	doc, err := export.ParseDrawio(data)
	require.NoError(t, err)
	assert.NoError(t, doc.Check())
}

func TestStatus(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "diagram status")
	assert.Contains(t, out, "14 missing, 0 stale")

	_, err = runCLI(t, dir, "export", "--all")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(dir, "diagrams"))

	out, err = runCLI(t, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "All 14 diagrams are up to date")
}

func TestExport_Drawio(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "export", "-l", "Security Layer")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<?xml"))

	doc, err := export.ParseDrawio([]byte(out))
	require.NoError(t, err)
	assert.NoError(t, doc.Check())
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "created ./archviz.yml")
	assert.Contains(t, out, "created .mcp.json")

	raw, err := os.ReadFile(filepath.Join(dir, ".mcp.json"))
	require.NoError(t, err)
	var cfg mcpConfig
	require.NoError(t, json.Unmarshal(raw, &cfg))
	assert.Contains(t, string(cfg.MCPServers["archviz"]), `"serve"`)

	out, err = runCLI(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "skipped ./archviz.yml")
	assert.Contains(t, out, "skipped .mcp.json archviz entry")
}

func TestMergeMCPConfig_KeepsOtherServers(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mcp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers":{"other":{"command":"x"}}}`), 0o644))

	var buf bytes.Buffer
	require.NoError(t, mergeMCPConfig(&buf, path, false))
	assert.Contains(t, buf.String(), "updated .mcp.json")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var cfg mcpConfig
	require.NoError(t, json.Unmarshal(raw, &cfg))
	assert.Contains(t, cfg.MCPServers, "other")
	assert.Contains(t, cfg.MCPServers, "archviz")
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "general-question", slug("General Question"))
	assert.Equal(t, "multi-intent-query", slug("Multi-Intent Query"))
	assert.Equal(t, "mcp_openapi", slug("mcp_openapi"))
	assert.Equal(t, "a-b", slug("  A & B! "))
}
