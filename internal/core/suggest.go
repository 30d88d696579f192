// ABOUTME: SuggestionEngine derives follow-up prompts from a chat exchange
// ABOUTME: Ordered rule table over combined user and assistant text; first match wins
package core

import "strings"

// subRule refines a matched topic with a more specific suggestion triplet.
// userAny matches against the user text only; combinedAny against the
// combined user+assistant text.
type subRule struct {
	userAny     []string
	combinedAny []string
	out         []string
}

// topicRule is one entry in the ordered topic table. Rules are evaluated in
// order and the first whose triggers match wins.
type topicRule struct {
	triggers []string
	subRules []subRule
	fallback []string
}

var topicRules = []topicRule{
	{ // Testing & diagnosis
		triggers: []string{"test", "testing", "diagnosis", "hiv test", "window period"},
		subRules: []subRule{
			{userAny: []string{"where"}, combinedAny: []string{"location"},
				out: []string{"What types of tests exist?", "How accurate are tests?", "What if I test positive?"}},
			{combinedAny: []string{"positive", "result"},
				out: []string{"What happens next?", "Treatment options?", "Who should I tell?"}},
			{userAny: []string{"when"}, combinedAny: []string{"window"},
				out: []string{"Where to get tested?", "What happens during testing?", "Cost of testing?"}},
		},
		fallback: []string{"Where can I get tested?", "When should I test?", "Test accuracy rates?"},
	},
	{ // Treatment & medication
		triggers: []string{"treatment", "medication", "art", "antiretroviral", "drugs", "pills", "medicine"},
		subRules: []subRule{
			{combinedAny: []string{"side effect", "problem"},
				out: []string{"How to manage side effects?", "Alternative treatments?", "When to see a doctor?"}},
			{combinedAny: []string{"start", "begin"},
				out: []string{"What to expect from treatment?", "Treatment side effects?", "Cost of medication?"}},
			{combinedAny: []string{"stop", "miss", "adhere"},
				out: []string{"Importance of adherence?", "What if I miss doses?", "Reminder strategies?"}},
		},
		fallback: []string{"How does treatment work?", "Treatment side effects?", "How long is treatment?"},
	},
	{ // Prevention (PrEP/PEP)
		triggers: []string{"prevent", "prevention", "prep", "pep", "prophylaxis", "protect"},
		subRules: []subRule{
			{combinedAny: []string{"prep"},
				out: []string{"How to get PrEP?", "PrEP side effects?", "PrEP effectiveness?"}},
			{combinedAny: []string{"pep"},
				out: []string{"Where to get PEP?", "PEP timeline?", "PEP vs PrEP?"}},
			{combinedAny: []string{"condom"},
				out: []string{"Other prevention methods?", "What is PrEP?", "Risk reduction strategies?"}},
		},
		fallback: []string{"What is PrEP?", "What is PEP?", "How to reduce risk?"},
	},
	{ // Living with the condition
		triggers: []string{"living with", "daily life", "lifestyle", "cope", "coping", "manage", "undetectable"},
		subRules: []subRule{
			{combinedAny: []string{"work", "job"},
				out: []string{"Disclosure at work?", "Staying healthy?", "Support groups?"}},
			{combinedAny: []string{"relation", "partner", "sex"},
				out: []string{"Telling partners?", "Safe sex practices?", "Undetectable = Untransmittable?"}},
			{combinedAny: []string{"u=u", "undetectable"},
				out: []string{"How to become undetectable?", "What does U=U mean?", "Can I have children?"}},
		},
		fallback: []string{"Staying healthy tips?", "Support resources?", "Emotional support?"},
	},
	{ // Transmission & risk
		triggers: []string{"transmit", "transmission", "risk", "expose", "exposure", "infect", "catch", "spread"},
		subRules: []subRule{
			{userAny: []string{"how"},
				out: []string{"Risk levels?", "Prevention methods?", "Getting tested?"}},
			{combinedAny: []string{"partner"},
				out: []string{"How to tell partner?", "Protecting partners?", "U=U explained?"}},
		},
		fallback: []string{"Transmission risks?", "Prevention strategies?", "PrEP for partners?"},
	},
	{ // Symptoms & health
		triggers: []string{"symptom", "sick", "fever", "rash", "tired", "fatigue", "health"},
		subRules: []subRule{
			{combinedAny: []string{"early", "first"},
				out: []string{"When to get tested?", "Acute HIV symptoms?", "Next steps?"}},
		},
		fallback: []string{"When to see a doctor?", "Managing symptoms?", "Health monitoring?"},
	},
	{ // Support & resources
		triggers: []string{"support", "help", "resource", "counsel", "talk", "alone", "scared", "anxiety"},
		subRules: []subRule{
			{combinedAny: []string{"emotion", "mental", "depress"},
				out: []string{"Mental health resources?", "Support groups?", "Counseling services?"}},
			{combinedAny: []string{"financial", "cost", "afford"},
				out: []string{"Financial assistance?", "Insurance coverage?", "Free services?"}},
		},
		fallback: []string{"Support groups near me?", "Hotline numbers?", "Online communities?"},
	},
	{ // Pregnancy & family
		triggers: []string{"pregnant", "pregnancy", "baby", "child", "mother", "breastfeed"},
		fallback: []string{"Prevention during pregnancy?", "Safe delivery options?", "Infant testing?"},
	},
	{ // Stigma & disclosure
		triggers: []string{"stigma", "discriminat", "tell", "disclose", "secret", "shame"},
		fallback: []string{"Disclosure strategies?", "Legal protections?", "Finding support?"},
	},
}

// responseRules key off phrases the assistant used in its reply
var responseRules = []struct {
	any []string
	out []string
}{
	{any: []string{"doctor", "healthcare", "medical"},
		out: []string{"How to find a specialist?", "What to ask my doctor?", "Preparing for appointments?"}},
	{any: []string{"immediately", "urgent", "soon"},
		out: []string{"Where to get immediate help?", "Emergency resources?", "What to do now?"}},
	{any: []string{"more information", "learn more"},
		out: []string{"Tell me more", "Related topics?", "Where to read more?"}},
}

// questionRules key off the question word in the user text
var questionRules = []struct {
	word string
	out  []string
}{
	{"how", []string{"Tell me more", "Next steps?", "Where to get help?"}},
	{"what", []string{"How does it work?", "Why is this important?", "Related information?"}},
	{"where", []string{"Other options?", "What to expect?", "Cost information?"}},
	{"when", []string{"What happens next?", "How long does it take?", "Other timing questions?"}},
	{"why", []string{"Tell me more", "What are alternatives?", "Related concerns?"}},
}

var defaultSuggestions = []string{"Tell me more", "What are my options?", "Where can I get help?"}

// SuggestionEngine maps a chat exchange to follow-up suggestions
type SuggestionEngine struct{}

// NewSuggestionEngine creates a SuggestionEngine
func NewSuggestionEngine() *SuggestionEngine {
	return &SuggestionEngine{}
}

// Suggest returns exactly three follow-up suggestions for the exchange.
// Pure and deterministic: identical inputs always yield identical output.
func (se *SuggestionEngine) Suggest(userText, assistantText string) []string {
	userLower := strings.ToLower(userText)
	responseLower := strings.ToLower(assistantText)
	combined := userLower + " " + responseLower

	for _, rule := range topicRules {
		if !matchesAny(combined, rule.triggers) {
			continue
		}
		for _, sub := range rule.subRules {
			if matchesAny(userLower, sub.userAny) || matchesAny(combined, sub.combinedAny) {
				return sub.out
			}
		}
		return rule.fallback
	}

	for _, rule := range responseRules {
		if matchesAny(responseLower, rule.any) {
			return rule.out
		}
	}

	if strings.Contains(userText, "?") {
		for _, rule := range questionRules {
			if strings.Contains(userLower, rule.word) {
				return rule.out
			}
		}
		return []string{"Tell me more", "Related topics?", "Where to get help?"}
	}

	return defaultSuggestions
}
