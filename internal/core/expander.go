// ABOUTME: Expander derives retrieval sub-queries from one user query
// ABOUTME: Keyword triggers map to canonical expansion phrases for recall on local content
package core

import "strings"

// expansionRule maps trigger keywords to canonical expansion phrases.
// Matching is case-insensitive substring matching on the lowercased query.
type expansionRule struct {
	triggers []string
	phrases  []string
}

// Local clinic and counseling content is indexed mostly in German, so
// venue and contact questions get bilingual expansions aimed at it.
var defaultExpansionRules = []expansionRule{
	{
		triggers: []string{"münchen", "munich", "clinic", "zentrum", "near me", "in my area", "beratung", "checkpoint"},
		phrases: []string{
			"HIV Zentrum München IZAR TUM Klinik",
			"Checkpoint München HIV Beratungsstelle",
			"HIV Beratung und Test München",
		},
	},
	{
		triggers: []string{"contact", "appointment", "termin", "kontakt", "address", "adresse", "phone", "telefon"},
		phrases: []string{
			"HIV Beratungsstelle Kontakt Adresse Öffnungszeiten",
			"HIV Klinik Termin vereinbaren",
		},
	},
	{
		triggers: []string{"test", "getestet", "window period"},
		phrases: []string{
			"Wo kann ich einen HIV-Test machen",
			"HIV testing locations and procedure",
		},
	},
}

// Expander broadens a query into a small set of sub-queries
type Expander struct {
	rules []expansionRule
}

// NewExpander creates an Expander with the default trigger table
func NewExpander() *Expander {
	return &Expander{rules: defaultExpansionRules}
}

// Expand returns a deduplicated list of sub-queries. The original query is
// always first; expansion phrases follow in rule order so downstream merging
// stays deterministic.
func (e *Expander) Expand(query string) []string {
	lower := strings.ToLower(query)

	out := []string{query}
	seen := map[string]bool{strings.ToLower(strings.TrimSpace(query)): true}

	for _, rule := range e.rules {
		if !matchesAny(lower, rule.triggers) {
			continue
		}
		for _, phrase := range rule.phrases {
			key := strings.ToLower(phrase)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, phrase)
		}
	}

	return out
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
