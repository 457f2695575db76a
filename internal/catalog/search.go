package catalog

import "strings"

// SearchQuery filters entities for the component explorer. Zero fields match
// everything.
type SearchQuery struct {
	Layer      string         // layer display name or id
	Text       string         // case-insensitive substring of the entity name
	Deployment DeploymentKind // requires enhancement details when set
}

// Search returns the entities matching q, in authored order. When a
// deployment filter is active, entities without details are excluded.
func (c *Catalog) Search(q SearchQuery, details Details) []Entity {
	var layer *Layer
	if q.Layer != "" {
		l, ok := c.ResolveLayer(q.Layer)
		if !ok {
			return nil
		}
		layer = &l
	}
	text := strings.ToLower(q.Text)

	var out []Entity
	for _, e := range c.entities {
		if layer != nil && e.Layer != layer.ID {
			continue
		}
		if q.Deployment != DeploymentUnknown {
			det, ok := details.Get(e.ID)
			if !ok || det.Deployment() != q.Deployment {
				continue
			}
		}
		if text != "" && !strings.Contains(strings.ToLower(e.Name), text) {
			continue
		}
		out = append(out, e)
	}
	return out
}
