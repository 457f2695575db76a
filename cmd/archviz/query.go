package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archviz/internal/catalog"
	"github.com/dusk-indust/archviz/internal/scenario"
	"github.com/dusk-indust/archviz/internal/ui"
)

func classifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <query>",
		Short: "Classify a customer query as card, loan, wealth, multi or general",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent := scenario.Classify(strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), intent)
			a.logger.Debug("classified", "intent", intent, "keywords", scenario.Keywords(intent))
			return nil
		},
	}
}

func resolveCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <scenario or query>",
		Short: "Resolve a scenario name or free-text query to its processing path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := scenario.Resolve(a.cat, strings.Join(args, " "))
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}

			if r.Name != "" {
				fmt.Fprintf(out, "%s %s\n", ui.Brand.Sprint("Scenario:"), r.Name)
			}
			fmt.Fprintf(out, "%s %s\n", ui.Brand.Sprint("Intent:  "), r.Intent)
			fmt.Fprintf(out, "%s\n\n", ui.Subtle.Sprint(r.Explanation))
			fmt.Fprintf(out, "%s %s\n", ui.Info.Sprint("Request: "), strings.Join(a.names(r.Request()), " → "))
			fmt.Fprintf(out, "%s %s\n", ui.Good.Sprint("Response:"), strings.Join(a.names(r.Response()), " → "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the resolution as JSON")
	return cmd
}

// names maps entity ids to display names, keeping unknown ids as they are.
func (a *app) names(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id
		if e, err := a.cat.Entity(id); err == nil {
			out[i] = e.Name
		}
	}
	return out
}

func componentsCmd(a *app) *cobra.Command {
	var (
		layer      string
		text       string
		deployment string
	)

	cmd := &cobra.Command{
		Use:     "components",
		Aliases: []string{"ls"},
		Short:   "List components, filtered by layer, name and deployment kind",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := catalog.ParseDeploymentKind(deployment)
			if err != nil {
				return err
			}
			if layer != "" {
				if _, ok := a.cat.ResolveLayer(layer); !ok {
					return fmt.Errorf("unknown layer %q", layer)
				}
			}

			found := a.cat.Search(catalog.SearchQuery{Layer: layer, Text: text, Deployment: kind}, a.details)
			if len(found) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.Warn.Sprint("no matching components"))
				return nil
			}

			rows := make([][]string, len(found))
			for i, e := range found {
				l, _ := a.cat.Layer(e.Layer)
				rows[i] = []string{e.ID, e.Name, l.Name, a.details.Badge(e.ID)}
			}
			withOut(cmd, func() { ui.Table([]string{"ID", "NAME", "LAYER", "DEPLOY"}, rows) })
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d components\n", len(found), len(a.cat.Entities()))
			return nil
		},
	}
	cmd.Flags().StringVar(&layer, "layer", "", "layer name or id")
	cmd.Flags().StringVar(&text, "name", "", "case-insensitive name substring")
	cmd.Flags().StringVar(&deployment, "deployment", "", "container, managed or external")
	return cmd
}

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the catalog for dangling references and misordered steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			violations := catalog.Validate(a.cat)
			if len(violations) == 0 {
				fmt.Fprintf(out, "%s catalog is consistent: %d entities, %d relationships, %d layers, %d sequences\n",
					ui.StatusIcon(true), len(a.cat.Entities()), len(a.cat.Relationships()), len(a.cat.Layers()), len(a.cat.Sequences()))
				return nil
			}

			rows := make([][]string, len(violations))
			for i, v := range violations {
				rows[i] = []string{string(v.Kind), v.Subject, v.Message}
			}
			withOut(cmd, func() { ui.Table([]string{"KIND", "SUBJECT", "PROBLEM"}, rows) })
			return &catalog.ValidationError{Violations: violations}
		},
	}
}

// withOut points ui output at the command's stdout for the duration of fn.
func withOut(cmd *cobra.Command, fn func()) {
	prev := ui.Out
	ui.Out = cmd.OutOrStdout()
	defer func() { ui.Out = prev }()
	fn()
}
