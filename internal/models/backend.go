// ABOUTME: Completion backend configuration and outcome types
// ABOUTME: BackendDescriptor lists are static startup configuration; ordering defines fallback
package models

import "time"

// BackendDescriptor describes one configured completion backend.
// The first descriptor in a configured list is the default primary.
type BackendDescriptor struct {
	Name        string  `json:"name"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Priority    int     `json:"priority"`
}

// AttemptFailure records one recovered backend failure for observability
type AttemptFailure struct {
	Backend string    `json:"backend"`
	Cause   error     `json:"-"`
	At      time.Time `json:"at"`
}

// CompletionOutcome is a successful completion. Failures holds the recovered
// attempts that preceded the success, in attempt order.
type CompletionOutcome struct {
	Text        string           `json:"text"`
	BackendUsed string           `json:"backend_used"`
	Failures    []AttemptFailure `json:"-"`
}
