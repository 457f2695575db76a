package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archviz/internal/config"
	"github.com/dusk-indust/archviz/internal/status"
	"github.com/dusk-indust/archviz/internal/ui"
)

func statusCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which exported diagrams are rendered, missing or stale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				dir = a.path(a.cfg.OutputDir)
			}

			jobs := a.exportJobs()
			files := make([]string, len(jobs))
			for i, j := range jobs {
				files[i] = j.File
			}

			inputs := []string{a.path(a.cfg.CatalogDir), a.path(a.cfg.DetailsPath)}
			for _, name := range config.FileNames {
				inputs = append(inputs, filepath.Join(a.root, name))
			}
			r := status.Scan(dir, files, inputs...)

			withOut(cmd, func() { ui.Banner("diagram status") })

			rows := make([][]string, len(r.Artifacts))
			for i, art := range r.Artifacts {
				rows[i] = []string{stateIcon(art.State), art.File, string(art.State)}
			}
			withOut(cmd, func() { ui.Table([]string{"", "FILE", "STATE"}, rows) })

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			if r.Complete() {
				fmt.Fprintf(out, "All %d diagrams are up to date in %s\n", len(r.Artifacts), displayDir(dir))
				return nil
			}
			fmt.Fprintf(out, "%d missing, %d stale. Run 'archviz export --all' to refresh.\n",
				r.Count(status.StateMissing), r.Count(status.StateStale))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default: outputDir from archviz.yml)")
	return cmd
}

func stateIcon(s status.State) string {
	switch s {
	case status.StateRendered:
		return ui.StatusIcon(true)
	case status.StateStale:
		return ui.WarnIcon()
	default:
		return ui.StatusIcon(false)
	}
}
