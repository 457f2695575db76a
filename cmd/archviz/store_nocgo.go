//go:build !cgo

package main

import (
	"errors"

	"github.com/dusk-indust/archviz/internal/graph"
)

func openPersistentStore(string, bool) (graph.Store, error) {
	return nil, errors.New("the persistent graph needs KuzuDB; rebuild with CGO_ENABLED=1")
}
