package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DataFS holds the built-in platform catalog.
//
//go:embed data/*.yaml
var DataFS embed.FS

// dataFiles lists the catalog sections in load order.
var dataFiles = []string{
	"layers.yaml",
	"entities.yaml",
	"relationships.yaml",
	"sequences.yaml",
	"scenarios.yaml",
	"journeys.yaml",
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(DataFS, "data")
	if err != nil {
		return nil, fmt.Errorf("catalog: open embedded data: %w", err)
	}
	return Load(sub)
}

// LoadDir reads a catalog from a directory laid out like the built-in data.
func LoadDir(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog: %s is not a directory", dir)
	}
	return Load(os.DirFS(dir))
}

// Load reads every catalog section present in fsys. A missing section file
// leaves that section empty. Referential integrity is not checked here; see
// Validate.
func Load(fsys fs.FS) (*Catalog, error) {
	var d Data
	for _, name := range dataFiles {
		raw, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", name, err)
		}
		var section Data
		if err := yaml.Unmarshal(raw, &section); err != nil {
			return nil, fmt.Errorf("catalog: parse %s: %w", name, err)
		}
		merge(&d, section)
	}
	return New(d), nil
}

func merge(dst *Data, src Data) {
	dst.Layers = append(dst.Layers, src.Layers...)
	dst.Entities = append(dst.Entities, src.Entities...)
	dst.Relationships = append(dst.Relationships, src.Relationships...)
	dst.Sequences = append(dst.Sequences, src.Sequences...)
	dst.Scenarios = append(dst.Scenarios, src.Scenarios...)
	dst.Journeys = append(dst.Journeys, src.Journeys...)
}
