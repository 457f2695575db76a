// Package scenario resolves a pre-authored scenario name or a free-text query
// into an ordered entity path, an intent and an explanation, and splits paths
// into request and response halves.
package scenario

import "strings"

// Intent is a coarse label for what a query asks for.
type Intent string

const (
	IntentCard    Intent = "card"
	IntentLoan    Intent = "loan"
	IntentWealth  Intent = "wealth"
	IntentMulti   Intent = "multi"
	IntentGeneral Intent = "general"
)

// keywordRule maps a keyword set to an intent. Rules are tried in order and
// the first rule with any keyword contained in the query wins.
type keywordRule struct {
	intent   Intent
	keywords []string
	minWords int // rule applies only when the query has more words than this
}

var rules = []keywordRule{
	{intent: IntentCard, keywords: []string{"card", "credit", "debit", "rewards", "cashback"}},
	{intent: IntentLoan, keywords: []string{"loan", "mortgage", "borrow", "financing", "interest rate"}},
	{intent: IntentWealth, keywords: []string{"invest", "wealth", "portfolio", "stocks", "bonds", "retirement"}},
	{intent: IntentMulti, keywords: []string{"and", "also", "plus"}, minWords: 10},
}

// Classify maps free text to an intent by case-insensitive substring match.
// Matching is on substrings, not words: "understand" contains "and".
// Text matching no rule is IntentGeneral.
func Classify(text string) Intent {
	q := strings.ToLower(text)
	words := len(strings.Fields(q))
	for _, r := range rules {
		if words <= r.minWords {
			continue
		}
		for _, kw := range r.keywords {
			if strings.Contains(q, kw) {
				return r.intent
			}
		}
	}
	return IntentGeneral
}

// Keywords returns the keywords that select intent, or nil.
func Keywords(intent Intent) []string {
	for _, r := range rules {
		if r.intent == intent {
			return append([]string(nil), r.keywords...)
		}
	}
	return nil
}
