// Package catalog holds the read-only architecture model: layers, entities,
// relationships, named flow sequences, scenarios and journeys. A Catalog is
// built once and shared by reference; nothing in it changes after New.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a lookup names an id the catalog does not hold.
var ErrNotFound = errors.New("not found")

// Data is the raw content of a catalog, as authored.
type Data struct {
	Layers        []Layer        `yaml:"layers"`
	Entities      []Entity       `yaml:"entities"`
	Relationships []Relationship `yaml:"relationships"`
	Sequences     []Sequence     `yaml:"sequences"`
	Scenarios     []Scenario     `yaml:"scenarios"`
	Journeys      []Journey      `yaml:"journeys"`
}

// Catalog is the immutable catalog bundle threaded through the projector,
// renderers, exporter and resolver.
type Catalog struct {
	layers        []Layer
	entities      []Entity
	relationships []Relationship
	sequences     []Sequence
	scenarios     []Scenario
	journeys      []Journey

	entityIdx map[string]int
	layerIdx  map[LayerID]int
}

// New builds a Catalog from d. Layers are sorted by Order; every other table
// keeps its authored order. The first occurrence of a duplicate entity id
// wins lookups; Validate reports the duplicate.
func New(d Data) *Catalog {
	c := &Catalog{
		layers:        append([]Layer(nil), d.Layers...),
		entities:      append([]Entity(nil), d.Entities...),
		relationships: append([]Relationship(nil), d.Relationships...),
		sequences:     make([]Sequence, len(d.Sequences)),
		scenarios:     make([]Scenario, len(d.Scenarios)),
		journeys:      make([]Journey, len(d.Journeys)),
		entityIdx:     make(map[string]int, len(d.Entities)),
		layerIdx:      make(map[LayerID]int, len(d.Layers)),
	}
	sort.SliceStable(c.layers, func(i, j int) bool {
		return c.layers[i].Order < c.layers[j].Order
	})
	for i, l := range c.layers {
		if _, ok := c.layerIdx[l.ID]; !ok {
			c.layerIdx[l.ID] = i
		}
	}
	for i, e := range c.entities {
		if _, ok := c.entityIdx[e.ID]; !ok {
			c.entityIdx[e.ID] = i
		}
	}
	for i, s := range d.Sequences {
		s.Steps = append([]Step(nil), s.Steps...)
		c.sequences[i] = s
	}
	for i, s := range d.Scenarios {
		s.Path = append([]string(nil), s.Path...)
		c.scenarios[i] = s
	}
	for i, j := range d.Journeys {
		c.journeys[i] = copyJourney(j)
	}
	return c
}

func copyJourney(j Journey) Journey {
	phases := make([]Phase, len(j.Phases))
	for i, p := range j.Phases {
		p.Steps = append([]int(nil), p.Steps...)
		phases[i] = p
	}
	steps := make([]JourneyStep, len(j.Steps))
	for i, s := range j.Steps {
		s.Components = append([]string(nil), s.Components...)
		steps[i] = s
	}
	j.Phases = phases
	j.Steps = steps
	j.Roster = append([]string(nil), j.Roster...)
	return j
}

// --- Entities ---

// Entity returns the entity with the given id.
func (c *Catalog) Entity(id string) (Entity, error) {
	i, ok := c.entityIdx[id]
	if !ok {
		return Entity{}, fmt.Errorf("entity %q: %w", id, ErrNotFound)
	}
	return c.entities[i], nil
}

// HasEntity reports whether id names an entity.
func (c *Catalog) HasEntity(id string) bool {
	_, ok := c.entityIdx[id]
	return ok
}

// Entities returns all entities in authored order.
func (c *Catalog) Entities() []Entity {
	return append([]Entity(nil), c.entities...)
}

// EntitiesInLayer returns the entities assigned to the layer, in authored order.
func (c *Catalog) EntitiesInLayer(id LayerID) []Entity {
	var out []Entity
	for _, e := range c.entities {
		if e.Layer == id {
			out = append(out, e)
		}
	}
	return out
}

// EntityByName finds an entity by its display name, case-insensitively.
func (c *Catalog) EntityByName(name string) (Entity, error) {
	for _, e := range c.entities {
		if strings.EqualFold(e.Name, name) {
			return e, nil
		}
	}
	return Entity{}, fmt.Errorf("entity named %q: %w", name, ErrNotFound)
}

// --- Layers ---

// Layer returns the layer with the given id.
func (c *Catalog) Layer(id LayerID) (Layer, error) {
	i, ok := c.layerIdx[id]
	if !ok {
		return Layer{}, fmt.Errorf("layer %q: %w", id, ErrNotFound)
	}
	return c.layers[i], nil
}

// HasLayer reports whether id names a layer.
func (c *Catalog) HasLayer(id LayerID) bool {
	_, ok := c.layerIdx[id]
	return ok
}

// LayerByName returns the layer with the given display name.
func (c *Catalog) LayerByName(name string) (Layer, error) {
	for _, l := range c.layers {
		if l.Name == name {
			return l, nil
		}
	}
	return Layer{}, fmt.Errorf("layer named %q: %w", name, ErrNotFound)
}

// ResolveLayer accepts either a layer display name or a layer id.
func (c *Catalog) ResolveLayer(nameOrID string) (Layer, bool) {
	if l, err := c.LayerByName(nameOrID); err == nil {
		return l, true
	}
	if l, err := c.Layer(LayerID(nameOrID)); err == nil {
		return l, true
	}
	return Layer{}, false
}

// Layers returns all layers sorted by Order.
func (c *Catalog) Layers() []Layer {
	return append([]Layer(nil), c.layers...)
}

// LayerNames returns the display names of all layers, sorted by Order.
func (c *Catalog) LayerNames() []string {
	out := make([]string, len(c.layers))
	for i, l := range c.layers {
		out[i] = l.Name
	}
	return out
}

// LayerOf returns the layer an entity belongs to.
func (c *Catalog) LayerOf(entityID string) (Layer, error) {
	e, err := c.Entity(entityID)
	if err != nil {
		return Layer{}, err
	}
	return c.Layer(e.Layer)
}

// --- Relationships and sequences ---

// Relationships returns all relationships in authored order.
func (c *Catalog) Relationships() []Relationship {
	return append([]Relationship(nil), c.relationships...)
}

// Sequence returns the named flow sequence.
func (c *Catalog) Sequence(name string) (Sequence, error) {
	for _, s := range c.sequences {
		if s.Name == name {
			s.Steps = append([]Step(nil), s.Steps...)
			return s, nil
		}
	}
	return Sequence{}, fmt.Errorf("sequence %q: %w", name, ErrNotFound)
}

// Sequences returns all named flow sequences in authored order.
func (c *Catalog) Sequences() []Sequence {
	out := make([]Sequence, len(c.sequences))
	for i, s := range c.sequences {
		s.Steps = append([]Step(nil), s.Steps...)
		out[i] = s
	}
	return out
}

// --- Scenarios and journeys ---

// Scenario returns the named scenario.
func (c *Catalog) Scenario(name string) (Scenario, error) {
	for _, s := range c.scenarios {
		if s.Name == name {
			s.Path = append([]string(nil), s.Path...)
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("scenario %q: %w", name, ErrNotFound)
}

// Scenarios returns all scenarios in authored order.
func (c *Catalog) Scenarios() []Scenario {
	out := make([]Scenario, len(c.scenarios))
	for i, s := range c.scenarios {
		s.Path = append([]string(nil), s.Path...)
		out[i] = s
	}
	return out
}

// Journey returns the named journey.
func (c *Catalog) Journey(name string) (Journey, error) {
	for _, j := range c.journeys {
		if j.Name == name {
			return copyJourney(j), nil
		}
	}
	return Journey{}, fmt.Errorf("journey %q: %w", name, ErrNotFound)
}

// Journeys returns all journeys in authored order.
func (c *Catalog) Journeys() []Journey {
	out := make([]Journey, len(c.journeys))
	for i, j := range c.journeys {
		out[i] = copyJourney(j)
	}
	return out
}

// LayerRoster is the part of a journey roster that sits in one layer.
type LayerRoster struct {
	Layer    Layer
	Entities []Entity
}

// RosterByLayer groups a journey's component roster by layer, in layer order.
// Roster ids that are not catalog entities are skipped, and layers with no
// roster members are omitted.
func (c *Catalog) RosterByLayer(j Journey) []LayerRoster {
	byLayer := make(map[LayerID][]Entity)
	for _, id := range j.Roster {
		e, err := c.Entity(id)
		if err != nil {
			continue
		}
		byLayer[e.Layer] = append(byLayer[e.Layer], e)
	}

	var out []LayerRoster
	for _, l := range c.layers {
		if ents := byLayer[l.ID]; len(ents) > 0 {
			out = append(out, LayerRoster{Layer: l, Entities: ents})
		}
	}
	return out
}
