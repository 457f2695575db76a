package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archviz/internal/config"
	"github.com/dusk-indust/archviz/internal/ui"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// archvizMCPEntry is the MCP server configuration for the archviz binary.
var archvizMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "archviz",
  "args": ["serve"]
}`)

func initCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write archviz.yml and register the MCP server in .mcp.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), a.root, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files and entries")
	return cmd
}

// runInit writes a starter archviz.yml and merges the archviz entry into
// .mcp.json in the project root.
func runInit(w io.Writer, root string, force bool) error {
	starter := &config.ProjectConfig{
		Direction:   config.DefaultDirection,
		DetailsPath: "enhanced_component_details.json",
		OutputDir:   config.DefaultOutputDir,
		GraphPath:   config.DefaultGraphPath,
	}
	path, err := config.Save(root, starter, force)
	switch {
	case err == nil:
		fmt.Fprintf(w, "  %s created %s\n", ui.StatusIcon(true), dotRelative(root, path))
	case !force:
		if _, statErr := os.Stat(path); statErr == nil {
			fmt.Fprintf(w, "  %s skipped %s (exists, use --force to overwrite)\n", ui.WarnIcon(), dotRelative(root, path))
			break
		}
		return err
	default:
		return err
	}

	if err := mergeMCPConfig(w, filepath.Join(root, ".mcp.json"), force); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nSetup complete. Run 'archviz export --all' to render every diagram.")
	return nil
}

// mergeMCPConfig creates or merges the archviz entry into .mcp.json.
func mergeMCPConfig(w io.Writer, mcpPath string, force bool) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["archviz"]; exists && !force {
		fmt.Fprintf(w, "  %s skipped .mcp.json archviz entry (exists, use --force to overwrite)\n", ui.WarnIcon())
		return nil
	}

	cfg.MCPServers["archviz"] = archvizMCPEntry

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}

	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Fprintf(w, "  %s %s .mcp.json with archviz MCP server\n", ui.StatusIcon(true), action)
	return nil
}

// dotRelative returns a display path relative to the project root, prefixed
// with "./".
func dotRelative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return "./" + rel
}
