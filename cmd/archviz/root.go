package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archviz/internal/catalog"
	"github.com/dusk-indust/archviz/internal/config"
	"github.com/dusk-indust/archviz/internal/graph"
)

// app carries what every command needs once the root pre-run has loaded it.
type app struct {
	root    string
	cfg     *config.ProjectConfig
	logger  *slog.Logger
	cat     *catalog.Catalog
	details catalog.Details
}

// rootFlags override the matching archviz.yml settings when set.
type rootFlags struct {
	projectRoot string
	catalogDir  string
	details     string
	direction   string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	var (
		flags rootFlags
		a     = &app{}
	)

	cmd := &cobra.Command{
		Use:   "archviz",
		Short: "Architecture diagrams for the enterprise agent platform",
		Long: "archviz projects the agent platform's component catalog into architecture,\n" +
			"flow, scenario path and journey diagrams, and exports them as DOT, Mermaid,\n" +
			"JSON or draw.io.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd, flags)
		},
	}
	cmd.SetVersionTemplate("archviz {{ .Version }}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.projectRoot, "project-root", ".", "directory holding archviz.yml")
	pf.StringVar(&flags.catalogDir, "catalog-dir", "", "load the catalog from this directory instead of the built-in one")
	pf.StringVar(&flags.details, "details", "", "enhancement details JSON (deployment badges, protocols)")
	pf.StringVar(&flags.direction, "direction", "", "diagram orientation: TB or LR")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")

	cmd.AddCommand(
		diagramCmd(a),
		flowsCmd(a),
		pathCmd(a),
		journeyCmd(a),
		exportCmd(a),
		classifyCmd(a),
		resolveCmd(a),
		componentsCmd(a),
		validateCmd(a),
		depsCmd(a),
		impactCmd(a),
		cohesionCmd(a),
		indexCmd(a),
		serveCmd(a),
		statusCmd(a),
		initCmd(a),
	)
	return cmd
}

func (a *app) load(cmd *cobra.Command, flags rootFlags) error {
	root, err := filepath.Abs(flags.projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	a.root = root

	cfg, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	pf := cmd.Flags()
	if pf.Changed("catalog-dir") {
		cfg.CatalogDir = flags.catalogDir
	}
	if pf.Changed("details") {
		cfg.DetailsPath = flags.details
	}
	if pf.Changed("direction") {
		cfg.Direction = flags.direction
	}
	if pf.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	a.cfg = cfg

	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()}))

	if cfg.CatalogDir != "" {
		a.cat, err = catalog.LoadDir(a.path(cfg.CatalogDir))
	} else {
		a.cat, err = catalog.Default()
	}
	if err != nil {
		return err
	}
	for _, v := range catalog.Validate(a.cat) {
		a.logger.Warn("catalog violation", "kind", v.Kind, "subject", v.Subject, "message", v.Message)
	}

	if cfg.DetailsPath != "" {
		a.details = catalog.LoadDetails(a.path(cfg.DetailsPath), a.logger)
	}
	return nil
}

// path resolves p against the project root.
func (a *app) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.root, p)
}

func (a *app) orientation() graph.Orientation {
	return graph.ParseOrientation(a.cfg.Direction)
}

// layers returns the requested layers, falling back to the configured set and
// then to every layer.
func (a *app) layers(requested []string) []string {
	switch {
	case len(requested) > 0:
		return requested
	case len(a.cfg.Layers) > 0:
		return a.cfg.Layers
	default:
		return a.cat.LayerNames()
	}
}

// emit writes data to the file named by out, or to the command's stdout when
// out is empty or "-".
func emit(cmd *cobra.Command, out string, data []byte) error {
	if out == "" || out == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(out), err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", out, len(data))
	return nil
}

// slug turns a display name into a file name stem.
func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
