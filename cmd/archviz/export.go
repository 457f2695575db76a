package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archviz/internal/export"
	"github.com/dusk-indust/archviz/internal/graph"
	"github.com/dusk-indust/archviz/internal/scenario"
	"github.com/dusk-indust/archviz/internal/ui"
)

func exportCmd(a *app) *cobra.Command {
	var (
		output string
		layers []string
		all    bool
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the architecture as an editable draw.io document",
		Long: "Export writes the selected layers as a draw.io (diagrams.net) file with one\n" +
			"swimlane per layer and every relationship as a labeled edge.\n\n" +
			"With --all it renders every diagram the catalog supports into the output\n" +
			"directory concurrently.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if all {
				if dir == "" {
					dir = a.path(a.cfg.OutputDir)
				}
				return a.exportAll(cmd.Context(), cmd, dir)
			}

			xml, err := export.Drawio(a.cat, a.layers(layers), a.orientation())
			if err != nil {
				return err
			}
			return emit(cmd, output, []byte(xml))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringSliceVarP(&layers, "layer", "l", nil, "layer name or id to export (repeatable, default: all)")
	cmd.Flags().BoolVar(&all, "all", false, "render every diagram into the output directory")
	cmd.Flags().StringVar(&dir, "dir", "", "output directory for --all (default: outputDir from archviz.yml)")
	return cmd
}

// exportJobs lists every artifact of a full export.
func (a *app) exportJobs() []export.Job {
	layers := a.layers(nil)
	orient := a.orientation()
	arch := func() *graph.Graph {
		return graph.Project(a.cat, graph.Options{Layers: layers, IncludeConditional: true})
	}

	jobs := []export.Job{
		{File: "architecture.drawio", Render: func(context.Context) ([]byte, error) {
			xml, err := export.Drawio(a.cat, layers, orient)
			return []byte(xml), err
		}},
	}
	for _, format := range []string{"dot", "mermaid", "json"} {
		jobs = append(jobs, a.graphJob("architecture", format, arch))
	}

	for _, seq := range a.cat.Sequences() {
		jobs = append(jobs, a.graphJob("flow-"+slug(seq.Name), "dot", func() *graph.Graph {
			return graph.Project(a.cat, graph.Options{Layers: layers, Sequences: []string{seq.Name}})
		}))
	}

	for _, sc := range a.cat.Scenarios() {
		jobs = append(jobs, a.graphJob("path-"+slug(sc.Name), "dot", func() *graph.Graph {
			r := scenario.Resolve(a.cat, sc.Name)
			return graph.ProjectPath(a.cat, r.Path, r.Split, a.details)
		}))
	}

	for _, j := range a.cat.Journeys() {
		jobs = append(jobs, a.graphJob("journey-"+slug(j.Name), "dot", func() *graph.Graph {
			return graph.ProjectJourney(j, nil)
		}))
	}
	return jobs
}

var formatExt = map[string]string{"dot": ".dot", "mermaid": ".mmd", "json": ".json"}

func (a *app) graphJob(stem, format string, project func() *graph.Graph) export.Job {
	return export.Job{
		File: stem + formatExt[format],
		Render: func(ctx context.Context) ([]byte, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return a.renderAs(format, stem, project())
		},
	}
}

func (a *app) exportAll(ctx context.Context, cmd *cobra.Command, dir string) error {
	out := cmd.OutOrStdout()
	jobs := a.exportJobs()

	results, err := export.WriteAll(ctx, dir, jobs, func(r export.Result) {
		a.logger.Debug("export finished", "file", r.File, "bytes", r.Bytes, "error", r.Err)
	})

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := fmt.Sprintf("%d bytes", r.Bytes)
		if r.Err != nil {
			status = r.Err.Error()
		}
		rows = append(rows, []string{ui.StatusIcon(r.Err == nil), r.File, status})
	}
	withOut(cmd, func() { ui.Table([]string{"", "FILE", "RESULT"}, rows) })

	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(out, "\n%d files written to %s\n", len(results), displayDir(dir))
	return nil
}

func displayDir(dir string) string {
	if rel, err := filepath.Rel(".", dir); err == nil && !strings.HasPrefix(rel, "..") {
		return "./" + rel
	}
	return dir
}
