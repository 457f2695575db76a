package graph

import (
	"context"
	"fmt"

	"github.com/dusk-indust/archviz/internal/catalog"
)

// Index loads the catalog's layers, entities and relationships into store.
// Relationships whose endpoints are not entities are skipped so that a
// partially broken catalog still indexes.
func Index(ctx context.Context, store Store, cat *catalog.Catalog) (*GraphStats, error) {
	if err := store.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	for _, l := range cat.Layers() {
		if err := store.AddLayer(ctx, LayerNode{ID: string(l.ID), Name: l.Name, Order: l.Order}); err != nil {
			return nil, fmt.Errorf("add layer %s: %w", l.ID, err)
		}
	}

	seen := make(map[string]bool)
	for _, e := range cat.Entities() {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		if err := store.AddComponent(ctx, ComponentNode{ID: e.ID, Name: e.Name, Layer: string(e.Layer)}); err != nil {
			return nil, fmt.Errorf("add component %s: %w", e.ID, err)
		}
	}

	for _, r := range cat.Relationships() {
		if !seen[r.From] || !seen[r.To] {
			continue
		}
		kind := FlowKindFlows
		if r.Conditional() {
			kind = FlowKindConditional
		}
		edge := FlowEdge{SourceID: r.From, TargetID: r.To, Label: r.Label, Condition: r.Condition, Kind: kind}
		if err := store.AddFlow(ctx, edge); err != nil {
			return nil, fmt.Errorf("add flow %s -> %s: %w", r.From, r.To, err)
		}
	}

	return store.Stats(ctx)
}
