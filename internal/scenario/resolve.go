package scenario

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/archviz/internal/catalog"
)

// GeneralScenario names the scenario whose path serves queries without a
// dedicated path template.
const GeneralScenario = "General Question"

var (
	basePath = []string{
		"customer", "authentication", "api_gateway", "waf", "rate_limiter",
		"content_filter", "planner", "memory_manager", "tool_selector", "executor",
	}
	agentPaths = map[Intent][]string{
		IntentCard:   {"card_agent", "azure_openai", "mcp_tools", "crm"},
		IntentLoan:   {"loan_agent", "azure_openai", "rag_engine"},
		IntentWealth: {"wealth_agent", "azure_openai", "rag_engine"},
	}
	fallbackAgentPath = []string{"azure_openai"}
	endPath           = []string{"critic", "governance", "api_gateway", "customer"}
)

// PathForIntent returns the templated processing path for intent: the shared
// entry segment, an intent-specific agent segment and the shared exit segment.
func PathForIntent(intent Intent) []string {
	agent, ok := agentPaths[intent]
	if !ok {
		agent = fallbackAgentPath
	}
	out := make([]string, 0, len(basePath)+len(agent)+len(endPath))
	out = append(out, basePath...)
	out = append(out, agent...)
	return append(out, endPath...)
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	// Name is the matched scenario name; empty for free text.
	Name        string   `json:"name,omitempty"`
	Query       string   `json:"query"`
	Intent      Intent   `json:"intent"`
	Path        []string `json:"path"`
	Explanation string   `json:"explanation"`
	// Split is the length of the request half of Path.
	Split int `json:"split"`
}

// Request returns the request half of the path.
func (r Resolution) Request() []string { return r.Path[:r.Split] }

// Response returns the response half of the path.
func (r Resolution) Response() []string { return r.Path[r.Split:] }

// Resolve looks input up as a scenario name, ignoring case. A known scenario
// yields its authored path verbatim. Anything else is treated as a free-text
// query: it is classified, card, loan and wealth queries get their path
// template and every other intent takes the General Question path.
func Resolve(cat *catalog.Catalog, input string) Resolution {
	if sc, ok := findScenario(cat, input); ok {
		path := append([]string(nil), sc.Path...)
		return Resolution{
			Name:        sc.Name,
			Query:       sc.Query,
			Intent:      Intent(sc.Intent),
			Path:        path,
			Explanation: sc.Explanation,
			Split:       Split(path),
		}
	}

	intent := Classify(input)
	var path []string
	switch intent {
	case IntentCard, IntentLoan, IntentWealth:
		path = PathForIntent(intent)
	default:
		if sc, err := cat.Scenario(GeneralScenario); err == nil {
			path = append([]string(nil), sc.Path...)
		} else {
			path = PathForIntent(IntentGeneral)
		}
	}
	return Resolution{
		Query:       input,
		Intent:      intent,
		Path:        path,
		Explanation: fmt.Sprintf("Based on your query, the system will route this through the %s processing pipeline.", intent),
		Split:       Split(path),
	}
}

func findScenario(cat *catalog.Catalog, name string) (catalog.Scenario, bool) {
	name = strings.TrimSpace(name)
	if sc, err := cat.Scenario(name); err == nil {
		return sc, true
	}
	for _, sc := range cat.Scenarios() {
		if strings.EqualFold(sc.Name, name) {
			return sc, true
		}
	}
	return catalog.Scenario{}, false
}
