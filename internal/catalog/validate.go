package catalog

import (
	"fmt"
	"strings"
)

// ViolationKind classifies a catalog integrity problem.
type ViolationKind string

const (
	ViolationDanglingEntity  ViolationKind = "dangling_entity"
	ViolationDanglingLayer   ViolationKind = "dangling_layer"
	ViolationDuplicateEntity ViolationKind = "duplicate_entity"
	ViolationDuplicateLayer  ViolationKind = "duplicate_layer"
	ViolationDuplicateOrder  ViolationKind = "duplicate_order"
	ViolationStepOrder       ViolationKind = "step_order"
)

// Violation is one integrity problem. Subject names the record holding the
// bad reference, Ref the value that failed to resolve.
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	Subject string        `json:"subject"`
	Ref     string        `json:"ref,omitempty"`
	Message string        `json:"message"`
}

func (v Violation) String() string {
	return v.Subject + ": " + v.Message
}

// ValidationError wraps the violations found by Check.
type ValidationError struct {
	Violations []Violation
}

// Error formats the violations as a semicolon-separated list.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "catalog validation failed: " + strings.Join(parts, "; ")
}

// Check runs Validate and returns a *ValidationError if anything is wrong.
func (c *Catalog) Check() error {
	if vs := Validate(c); len(vs) > 0 {
		return &ValidationError{Violations: vs}
	}
	return nil
}

// Validate reports every dangling reference and ordering problem in c. It
// never stops at the first problem.
func Validate(c *Catalog) []Violation {
	var out []Violation
	add := func(kind ViolationKind, subject, ref, format string, args ...any) {
		out = append(out, Violation{
			Kind:    kind,
			Subject: subject,
			Ref:     ref,
			Message: fmt.Sprintf(format, args...),
		})
	}

	// Layers: unique ids and unique orders.
	seenLayer := make(map[LayerID]bool)
	seenOrder := make(map[int]LayerID)
	for _, l := range c.layers {
		subject := "layer " + string(l.ID)
		if seenLayer[l.ID] {
			add(ViolationDuplicateLayer, subject, string(l.ID), "duplicate layer id")
		}
		seenLayer[l.ID] = true
		if prev, ok := seenOrder[l.Order]; ok {
			add(ViolationDuplicateOrder, subject, fmt.Sprint(l.Order), "order %d already used by layer %s", l.Order, prev)
		} else {
			seenOrder[l.Order] = l.ID
		}
	}

	// Entities: unique ids, resolvable layer.
	seenEntity := make(map[string]bool)
	for _, e := range c.entities {
		subject := "entity " + e.ID
		if seenEntity[e.ID] {
			add(ViolationDuplicateEntity, subject, e.ID, "duplicate entity id")
		}
		seenEntity[e.ID] = true
		if !c.HasLayer(e.Layer) {
			add(ViolationDanglingLayer, subject, string(e.Layer), "unknown layer %q", e.Layer)
		}
	}

	checkEntity := func(subject, id string) {
		if !c.HasEntity(id) {
			add(ViolationDanglingEntity, subject, id, "unknown entity %q", id)
		}
	}

	for i, r := range c.relationships {
		subject := fmt.Sprintf("relationship %d (%s -> %s)", i+1, r.From, r.To)
		checkEntity(subject, r.From)
		checkEntity(subject, r.To)
	}

	for _, s := range c.sequences {
		var prev *StepID
		seen := make(map[StepID]bool)
		for _, st := range s.Steps {
			subject := fmt.Sprintf("sequence %s step %s", s.Name, st.ID)
			checkEntity(subject, st.From)
			checkEntity(subject, st.To)
			if seen[st.ID] {
				add(ViolationStepOrder, subject, st.ID.String(), "duplicate step id")
			} else if prev != nil && !prev.Less(st.ID) {
				add(ViolationStepOrder, subject, st.ID.String(), "step follows %s", prev)
			}
			seen[st.ID] = true
			id := st.ID
			prev = &id
		}
	}

	for _, s := range c.scenarios {
		for i, id := range s.Path {
			checkEntity(fmt.Sprintf("scenario %q path[%d]", s.Name, i), id)
		}
	}

	for _, j := range c.journeys {
		for _, st := range j.Steps {
			for _, id := range st.Components {
				checkEntity(fmt.Sprintf("journey %s step %d", j.Name, st.ID), id)
			}
		}
	}

	return out
}
