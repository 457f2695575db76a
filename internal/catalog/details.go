package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// DeploymentKind is the deployment category derived from a deployment_type
// string in the enhancement file.
type DeploymentKind string

const (
	DeploymentUnknown   DeploymentKind = ""
	DeploymentContainer DeploymentKind = "container"
	DeploymentManaged   DeploymentKind = "managed"
	DeploymentExternal  DeploymentKind = "external"
)

// DeploymentKinds lists the recognized categories in badge precedence order.
var DeploymentKinds = []DeploymentKind{DeploymentContainer, DeploymentManaged, DeploymentExternal}

// ClassifyDeployment maps a free-form deployment_type to a category.
// "Container" anywhere wins over "Managed" anywhere, which wins over an
// "External" prefix. Categories are exclusive, so "Managed Container Apps"
// counts as container only.
func ClassifyDeployment(deploymentType string) DeploymentKind {
	switch {
	case strings.Contains(deploymentType, "Container"):
		return DeploymentContainer
	case strings.Contains(deploymentType, "Managed"):
		return DeploymentManaged
	case strings.HasPrefix(deploymentType, "External"):
		return DeploymentExternal
	default:
		return DeploymentUnknown
	}
}

// ParseDeploymentKind parses a category name as used on the command line.
func ParseDeploymentKind(s string) (DeploymentKind, error) {
	switch k := DeploymentKind(strings.ToLower(strings.TrimSpace(s))); k {
	case DeploymentUnknown, DeploymentContainer, DeploymentManaged, DeploymentExternal:
		return k, nil
	case "all":
		return DeploymentUnknown, nil
	default:
		return DeploymentUnknown, fmt.Errorf("unknown deployment kind %q (want container, managed or external)", s)
	}
}

// Badge returns the glyph shown next to a node of this kind.
func (k DeploymentKind) Badge() string {
	switch k {
	case DeploymentContainer:
		return "⭐"
	case DeploymentManaged:
		return "☁️"
	case DeploymentExternal:
		return "🌐"
	}
	return ""
}

// Label describes the kind for legends.
func (k DeploymentKind) Label() string {
	switch k {
	case DeploymentContainer:
		return "Container (K8s)"
	case DeploymentManaged:
		return "Managed Service"
	case DeploymentExternal:
		return "External API"
	}
	return ""
}

// Scalar holds a JSON value that authors write either as a string or as a
// number/object. Non-string values keep their compact JSON text.
type Scalar string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = Scalar(str)
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return err
	}
	*s = Scalar(buf.String())
	return nil
}

// Detail is the optional enrichment for one entity. Every field may be absent.
type Detail struct {
	DeploymentType    string   `json:"deployment_type,omitempty"`
	Databases         []string `json:"databases,omitempty"`
	Functions         []string `json:"functions,omitempty"`
	APICalls          []string `json:"api_calls,omitempty"`
	Endpoints         []string `json:"endpoints,omitempty"`
	InboundProtocol   string   `json:"inbound_protocol,omitempty"`
	OutboundProtocol  string   `json:"outbound_protocol,omitempty"`
	Replicas          Scalar   `json:"replicas,omitempty"`
	ContainerImage    string   `json:"container_image,omitempty"`
	Authentication    Scalar   `json:"authentication,omitempty"`
	AgentCoordination Scalar   `json:"agent_coordination,omitempty"`
}

// Deployment classifies the detail's deployment_type.
func (d Detail) Deployment() DeploymentKind {
	return ClassifyDeployment(d.DeploymentType)
}

// Details maps entity ids to their enrichment. A nil Details is valid and
// behaves as empty.
type Details map[string]Detail

// Get returns the detail for id.
func (d Details) Get(id string) (Detail, bool) {
	det, ok := d[id]
	return det, ok
}

// Deployment returns the deployment category for id, or DeploymentUnknown.
func (d Details) Deployment(id string) DeploymentKind {
	det, ok := d[id]
	if !ok {
		return DeploymentUnknown
	}
	return det.Deployment()
}

// Badge returns the deployment badge glyph for id, or "".
func (d Details) Badge(id string) string {
	return d.Deployment(id).Badge()
}

// HasDeployment reports whether any of ids carries a recognized deployment.
func (d Details) HasDeployment(ids []string) bool {
	for _, id := range ids {
		if d.Deployment(id) != DeploymentUnknown {
			return true
		}
	}
	return false
}

// Count returns how many entities are classified as kind.
func (d Details) Count(kind DeploymentKind) int {
	n := 0
	for _, det := range d {
		if det.Deployment() == kind {
			n++
		}
	}
	return n
}

// OutboundProtocol returns the outbound protocol for id, or "".
func (d Details) OutboundProtocol(id string) string {
	return d[id].OutboundProtocol
}

// InboundProtocol returns the inbound protocol for id, or "".
func (d Details) InboundProtocol(id string) string {
	return d[id].InboundProtocol
}

// ParseDetails decodes an enhancement document keyed by entity id.
func ParseDetails(r io.Reader) (Details, error) {
	var d Details
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("parse details: %w", err)
	}
	if d == nil {
		d = Details{}
	}
	return d, nil
}

// LoadDetails reads the optional enhancement file. A missing or malformed
// file yields empty Details; the problem is logged, never returned.
func LoadDetails(path string, logger *slog.Logger) Details {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return Details{}
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("no enhancement details file", "path", path)
		return Details{}
	}
	if err != nil {
		logger.Warn("cannot open enhancement details", "path", path, "error", err)
		return Details{}
	}
	defer f.Close()

	d, err := ParseDetails(f)
	if err != nil {
		logger.Warn("ignoring enhancement details", "path", path, "error", err)
		return Details{}
	}
	logger.Debug("loaded enhancement details", "path", path, "entities", len(d))
	return d
}
