package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// --- Enums ---

// LayerID identifies a display layer.
type LayerID string

const (
	LayerEntry         LayerID = "entry"
	LayerSecurity      LayerID = "security"
	LayerOrchestration LayerID = "orchestration"
	LayerAgents        LayerID = "agents"
	LayerSupport       LayerID = "support"
	LayerMessaging     LayerID = "messaging"
	LayerData          LayerID = "data"
	LayerExternal      LayerID = "external"
	LayerGovernance    LayerID = "governance"
	LayerMonitoring    LayerID = "monitoring"
)

// --- Models ---

// Layer groups entities for clustering and filtering. Order defines the
// rendering sequence, lowest first.
type Layer struct {
	ID    LayerID `yaml:"id" json:"id"`
	Name  string  `yaml:"name" json:"name"`
	Color string  `yaml:"color" json:"color"`
	Order int     `yaml:"order" json:"order"`
}

// Entity is an architectural component of the platform.
type Entity struct {
	ID        string  `yaml:"id" json:"id"`
	Name      string  `yaml:"name" json:"name"`
	Layer     LayerID `yaml:"layer" json:"layer"`
	Color     string  `yaml:"color" json:"color"`
	Icon      string  `yaml:"icon" json:"icon"`
	Technical string  `yaml:"technical" json:"technical"`
	Layman    string  `yaml:"layman" json:"layman"`
}

// Relationship is a directed, labeled flow between two entities. A non-empty
// Condition marks the edge as scenario-conditional.
type Relationship struct {
	From      string `yaml:"from" json:"from"`
	To        string `yaml:"to" json:"to"`
	Label     string `yaml:"label" json:"label"`
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty"`
}

// Conditional reports whether the relationship carries a condition tag.
func (r Relationship) Conditional() bool {
	return r.Condition != ""
}

// StepID positions a step within a sequence. Branch is empty for ordinary
// steps; a lettered branch ("14a") is an asynchronous side-step forked from
// step Number.
type StepID struct {
	Number int
	Branch string
}

// ParseStepID parses "14" or "14a".
func ParseStepID(s string) (StepID, error) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return StepID{}, fmt.Errorf("step id %q: missing number", s)
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return StepID{}, fmt.Errorf("step id %q: %w", s, err)
	}
	branch := s[i:]
	for _, r := range branch {
		if r < 'a' || r > 'z' {
			return StepID{}, fmt.Errorf("step id %q: branch must be lowercase letters", s)
		}
	}
	return StepID{Number: n, Branch: branch}, nil
}

// String renders the id the way it is authored.
func (id StepID) String() string {
	return strconv.Itoa(id.Number) + id.Branch
}

// Less orders by number, then branch. The unbranched step sorts first.
func (id StepID) Less(o StepID) bool {
	if id.Number != o.Number {
		return id.Number < o.Number
	}
	if len(id.Branch) != len(o.Branch) {
		return len(id.Branch) < len(o.Branch)
	}
	return id.Branch < o.Branch
}

// IsBranch reports whether the id names a forked side-step.
func (id StepID) IsBranch() bool {
	return id.Branch != ""
}

// UnmarshalYAML accepts both integer and string scalars.
func (id *StepID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: step id must be a scalar", value.Line)
	}
	parsed, err := ParseStepID(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*id = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (id StepID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *StepID) UnmarshalText(b []byte) error {
	parsed, err := ParseStepID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Step is one numbered edge of a named flow sequence.
type Step struct {
	ID       StepID `yaml:"step" json:"step"`
	From     string `yaml:"from" json:"from"`
	To       string `yaml:"to" json:"to"`
	Label    string `yaml:"label" json:"label"`
	Protocol string `yaml:"protocol,omitempty" json:"protocol,omitempty"`
	Latency  string `yaml:"latency,omitempty" json:"latency,omitempty"`
	Async    bool   `yaml:"async,omitempty" json:"async,omitempty"`
}

// Sequence is an ordered, numbered trace of one scenario, overlaid on the
// entity set in its own color.
type Sequence struct {
	Name    string `yaml:"name" json:"name"`
	Title   string `yaml:"title" json:"title"`
	Color   string `yaml:"color" json:"color"`
	Marker  string `yaml:"marker" json:"marker"`
	Legend  string `yaml:"legend" json:"legend"`
	Example string `yaml:"example,omitempty" json:"example,omitempty"`
	Steps   []Step `yaml:"steps" json:"steps"`
}

// Entities returns the distinct entity ids the sequence touches, in order of
// first appearance.
func (s Sequence) Entities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, st := range s.Steps {
		for _, id := range []string{st.From, st.To} {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// SyncSteps returns the steps that are not asynchronous side-steps.
func (s Sequence) SyncSteps() []Step {
	out := make([]Step, 0, len(s.Steps))
	for _, st := range s.Steps {
		if !st.ID.IsBranch() {
			out = append(out, st)
		}
	}
	return out
}

// Scenario is a pre-authored user journey: a query, its intent, and the
// ordered entity path it takes. Paths are illustrative and need not follow
// catalog relationships.
type Scenario struct {
	Name        string   `yaml:"name" json:"name"`
	Query       string   `yaml:"query" json:"query"`
	Intent      string   `yaml:"intent" json:"intent"`
	Path        []string `yaml:"path" json:"path"`
	Explanation string   `yaml:"explanation" json:"explanation"`
}

// Phase is a named, colored slice of a journey.
type Phase struct {
	Name        string `yaml:"name" json:"name"`
	Color       string `yaml:"color" json:"color"`
	Description string `yaml:"description" json:"description"`
	Steps       []int  `yaml:"steps" json:"steps"`
}

// JourneyStep is one screen of a phased journey.
type JourneyStep struct {
	ID            int      `yaml:"id" json:"id"`
	Phase         string   `yaml:"phase" json:"phase"`
	Title         string   `yaml:"title" json:"title"`
	UserAction    string   `yaml:"user_action" json:"userAction"`
	ChatbotAction string   `yaml:"chatbot_action" json:"chatbotAction"`
	Components    []string `yaml:"components" json:"components"`
	Protocol      string   `yaml:"protocol" json:"protocol"`
	Latency       string   `yaml:"latency" json:"latency"`
	APICall       string   `yaml:"api_call,omitempty" json:"apiCall,omitempty"`
}

// Journey is a multi-phase use case walked through step by step.
type Journey struct {
	Name        string        `yaml:"name" json:"name"`
	Title       string        `yaml:"title" json:"title"`
	Description string        `yaml:"description" json:"description"`
	Duration    string        `yaml:"duration" json:"duration"`
	Phases      []Phase       `yaml:"phases" json:"phases"`
	Steps       []JourneyStep `yaml:"steps" json:"steps"`
	Roster      []string      `yaml:"roster" json:"roster"`
}

// Phase returns the named phase.
func (j Journey) Phase(name string) (Phase, bool) {
	for _, p := range j.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return Phase{}, false
}

// APICalls returns the steps that call an external API.
func (j Journey) APICalls() []JourneyStep {
	var out []JourneyStep
	for _, s := range j.Steps {
		if s.APICall != "" {
			out = append(out, s)
		}
	}
	return out
}
