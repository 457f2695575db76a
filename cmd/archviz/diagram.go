package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archviz/internal/catalog"
	"github.com/dusk-indust/archviz/internal/export"
	"github.com/dusk-indust/archviz/internal/graph"
	"github.com/dusk-indust/archviz/internal/render"
	"github.com/dusk-indust/archviz/internal/scenario"
)

// formatFlags are shared by every command that renders a graph.
type formatFlags struct {
	format string
	output string
}

func (f *formatFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "dot", "dot, mermaid or json")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write to this file instead of stdout")
}

// renderAs renders g in the named format.
func (a *app) renderAs(format, name string, g *graph.Graph) ([]byte, error) {
	orient := a.orientation()
	switch strings.ToLower(format) {
	case "", "dot", "gv":
		return []byte(render.Render(a.cat, g, a.details, orient).DOT()), nil
	case "mermaid", "mmd":
		return []byte(render.Render(a.cat, g, a.details, orient).Mermaid()), nil
	case "json":
		var buf bytes.Buffer
		if err := export.NewGraphExport(name, g, orient).WriteJSON(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want dot, mermaid or json)", format)
	}
}

func diagramCmd(a *app) *cobra.Command {
	var (
		ff          formatFlags
		layers      []string
		highlight   string
		conditional bool
		conditions  []string
	)

	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Render the layered architecture diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := graph.Project(a.cat, graph.Options{
				Layers:             a.layers(layers),
				Highlight:          highlight,
				IncludeConditional: conditional || len(conditions) > 0,
				Conditions:         conditions,
			})
			a.logger.Debug("projected architecture", "nodes", len(g.Nodes), "edges", len(g.Edges))

			data, err := a.renderAs(ff.format, "architecture", g)
			if err != nil {
				return err
			}
			return emit(cmd, ff.output, data)
		},
	}
	ff.register(cmd)
	cmd.Flags().StringSliceVarP(&layers, "layer", "l", nil, "layer name or id to show (repeatable, default: all)")
	cmd.Flags().StringVar(&highlight, "highlight", "", "entity id or name to highlight")
	cmd.Flags().BoolVar(&conditional, "conditional", false, "include scenario-conditional routes")
	cmd.Flags().StringSliceVar(&conditions, "condition", nil, "only these conditional routes: card, loan, wealth")
	return cmd
}

func flowsCmd(a *app) *cobra.Command {
	var (
		ff     formatFlags
		layers []string
	)

	cmd := &cobra.Command{
		Use:   "flows <sequence>...",
		Short: "Render one or more numbered flow sequences (rag, mcp, mcp_openapi)",
		Args:  cobra.MinimumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			var names []string
			for _, s := range a.cat.Sequences() {
				names = append(names, s.Name)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if _, err := a.cat.Sequence(name); err != nil {
					return err
				}
			}
			g := graph.Project(a.cat, graph.Options{
				Layers:    a.layers(layers),
				Sequences: args,
			})

			data, err := a.renderAs(ff.format, "flows-"+strings.Join(args, "-"), g)
			if err != nil {
				return err
			}
			return emit(cmd, ff.output, data)
		},
	}
	ff.register(cmd)
	cmd.Flags().StringSliceVarP(&layers, "layer", "l", nil, "layer name or id to show (repeatable, default: all)")
	return cmd
}

func pathCmd(a *app) *cobra.Command {
	var ff formatFlags

	cmd := &cobra.Command{
		Use:   "path <scenario or query>",
		Short: "Render the request and response path for a scenario or free-text query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := scenario.Resolve(a.cat, strings.Join(args, " "))
			a.logger.Info("resolved path", "scenario", r.Name, "intent", r.Intent, "steps", len(r.Path), "split", r.Split)

			g := graph.ProjectPath(a.cat, r.Path, r.Split, a.details)
			name := r.Name
			if name == "" {
				name = string(r.Intent)
			}
			data, err := a.renderAs(ff.format, "path-"+slug(name), g)
			if err != nil {
				return err
			}
			return emit(cmd, ff.output, data)
		},
	}
	ff.register(cmd)
	return cmd
}

func journeyCmd(a *app) *cobra.Command {
	var (
		ff     formatFlags
		phases []string
	)

	cmd := &cobra.Command{
		Use:   "journey [name]",
		Short: "Render a customer journey timeline (default: the first journey)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.journey(args)
			if err != nil {
				return err
			}
			for _, p := range phases {
				if _, ok := j.Phase(p); !ok {
					return fmt.Errorf("journey %s has no phase %q", j.Name, p)
				}
			}

			g := graph.ProjectJourney(j, phases)
			data, err := a.renderAs(ff.format, "journey-"+slug(j.Name), g)
			if err != nil {
				return err
			}
			return emit(cmd, ff.output, data)
		},
	}
	ff.register(cmd)
	cmd.Flags().StringSliceVar(&phases, "phase", nil, "only these phases (repeatable, default: all)")
	return cmd
}

func (a *app) journey(args []string) (catalog.Journey, error) {
	if len(args) == 1 {
		return a.cat.Journey(args[0])
	}
	journeys := a.cat.Journeys()
	if len(journeys) == 0 {
		return catalog.Journey{}, fmt.Errorf("catalog has no journeys")
	}
	return journeys[0], nil
}
