package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archviz/internal/graph"
	"github.com/dusk-indust/archviz/internal/ui"
)

// storeFlags select between an in-process index and the persisted graph.
type storeFlags struct {
	persisted bool
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.persisted, "persisted", false, "query the graph written by 'archviz index' instead of indexing in memory")
}

// openStore returns an indexed store. The in-memory store is built from the
// loaded catalog on every call.
func (a *app) openStore(ctx context.Context, f storeFlags) (graph.Store, error) {
	if f.persisted {
		path := a.path(a.cfg.GraphPath)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("no graph found at %s\nRun 'archviz index' first", path)
		}
		return openPersistentStore(path, false)
	}

	store := graph.NewMemStore()
	stats, err := graph.Index(ctx, store, a.cat)
	if err != nil {
		store.Close()
		return nil, err
	}
	a.logger.Debug("indexed catalog in memory", "components", stats.NodeCount, "flows", stats.EdgeCount)
	return store, nil
}

func depsCmd(a *app) *cobra.Command {
	var (
		sf       storeFlags
		upstream bool
		depth    int
	)

	cmd := &cobra.Command{
		Use:   "deps <component>",
		Short: "Show where a component sends requests, or with --upstream who sends to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx, sf)
			if err != nil {
				return err
			}
			defer store.Close()

			id := args[0]
			if c, err := store.GetComponent(ctx, id); err != nil {
				return err
			} else if c == nil {
				return fmt.Errorf("unknown component %q", id)
			}

			dir := graph.DirectionDownstream
			if upstream {
				dir = graph.DirectionUpstream
			}
			chains, err := store.GetDependencies(ctx, id, dir, depth)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(chains) == 0 {
				fmt.Fprintf(out, "%s has no %s dependencies\n", id, dir)
				return nil
			}
			for _, c := range chains {
				fmt.Fprintf(out, "%s %s\n", ui.Subtle.Sprintf("[%d]", c.Depth), strings.Join(c.Nodes, " → "))
			}
			return nil
		},
	}
	sf.register(cmd)
	cmd.Flags().BoolVar(&upstream, "upstream", false, "walk against flow direction")
	cmd.Flags().IntVar(&depth, "depth", 5, "maximum traversal depth")
	return cmd
}

func impactCmd(a *app) *cobra.Command {
	var sf storeFlags

	cmd := &cobra.Command{
		Use:   "impact <component>...",
		Short: "Estimate which components are affected when the given components fail",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx, sf)
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := store.AssessImpact(ctx, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", ui.Brand.Sprint("Failing:   "), strings.Join(args, ", "))
			fmt.Fprintf(out, "%s %s\n", ui.Warn.Sprint("Direct:    "), strings.Join(res.DirectlyAffected, ", "))
			fmt.Fprintf(out, "%s %s\n", ui.Warn.Sprint("Transitive:"), strings.Join(res.TransitivelyAffected, ", "))
			fmt.Fprintf(out, "%s %.2f\n", ui.Bad.Sprint("Risk:      "), res.RiskScore)
			return nil
		},
	}
	sf.register(cmd)
	return cmd
}

func cohesionCmd(a *app) *cobra.Command {
	var sf storeFlags

	cmd := &cobra.Command{
		Use:   "cohesion",
		Short: "Score how self-contained each layer is and list disconnected islands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx, sf)
			if err != nil {
				return err
			}
			defer store.Close()

			scores, err := graph.ComputeCohesion(ctx, store)
			if err != nil {
				return err
			}
			islands, err := graph.ComputeIslands(ctx, store)
			if err != nil {
				return err
			}

			rows := make([][]string, len(scores))
			for i, s := range scores {
				rows[i] = []string{s.Layer, fmt.Sprint(s.Internal), fmt.Sprint(s.External), fmt.Sprintf("%.2f", s.Score)}
			}
			withOut(cmd, func() { ui.Table([]string{"LAYER", "INTERNAL", "EXTERNAL", "SCORE"}, rows) })

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n%d connected island(s)\n", len(islands))
			for i, isl := range islands {
				fmt.Fprintf(out, "  %d. %d components: %s\n", i+1, len(isl), strings.Join(isl, ", "))
			}
			return nil
		},
	}
	sf.register(cmd)
	return cmd
}

func indexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Index the catalog into the persistent graph database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.path(a.cfg.GraphPath)
			store, err := openPersistentStore(path, true)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := graph.Index(cmd.Context(), store, a.cat)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s indexed %d components, %d flows, %d layers into %s\n",
				ui.StatusIcon(true), stats.NodeCount, stats.EdgeCount, stats.ClusterCount, path)
			return nil
		},
	}
}
