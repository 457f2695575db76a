//go:build cgo

package main

import (
	"fmt"
	"os"

	"github.com/dusk-indust/archviz/internal/graph"
)

// openPersistentStore opens the KuzuDB graph at path. fresh removes any
// previous database first so a re-index never sees stale rows.
func openPersistentStore(path string, fresh bool) (graph.Store, error) {
	if fresh {
		if err := os.RemoveAll(path); err != nil {
			return nil, fmt.Errorf("remove old graph: %w", err)
		}
	}
	store, err := graph.NewKuzuFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("open graph: %w", err)
	}
	return store, nil
}
