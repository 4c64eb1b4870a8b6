package engine

import (
	"slices"

	"github.com/linnemanlabs/salus/internal/kb"
)

// Outcome is the terminal state of a single resolve call.
type Outcome string

const (
	// OutcomeEmergency means an emergency rule matched and short-circuited scoring.
	OutcomeEmergency Outcome = "emergency"

	// OutcomeMatched means a topic won the keyword scoring.
	OutcomeMatched Outcome = "matched"

	// OutcomeFallback means nothing matched.
	OutcomeFallback Outcome = "fallback"
)

// Result is the outcome of resolving one turn. It is transient: the engine
// never persists it.
type Result struct {
	Outcome     Outcome     `json:"outcome"`
	Category    string      `json:"category,omitempty"` // empty unless Outcome is matched
	Score       int         `json:"score,omitempty"`
	Severity    kb.Severity `json:"severity"`
	Reply       string      `json:"reply"`
	IsEmergency bool        `json:"is_emergency"`
}

// Context is per-conversation state carried between turns. The caller owns
// it: the engine receives it by value and returns the updated value. A
// zero Context is a valid first turn.
type Context struct {
	LastCategory    string   `json:"last_category,omitempty"`
	ActiveFollowups []string `json:"active_followups,omitempty"`
	TurnCount       int      `json:"turn_count"`
}

// HasFollowup reports whether category is an active follow-up from the
// previous turn.
func (c Context) HasFollowup(category string) bool {
	return slices.Contains(c.ActiveFollowups, category)
}

// afterMatch records a successful topic match: the topic becomes the last
// category and its declared follow-ups bias the next turn.
func (c Context) afterMatch(category string, followups []string) Context {
	return Context{
		LastCategory:    category,
		ActiveFollowups: slices.Clone(followups),
		TurnCount:       c.TurnCount + 1,
	}
}

// afterFallback clears the follow-up bias but keeps the last category, so
// one unrelated utterance does not erase a still-relevant prior topic.
func (c Context) afterFallback() Context {
	return Context{
		LastCategory: c.LastCategory,
		TurnCount:    c.TurnCount + 1,
	}
}

// afterEmergency resets the conversation: an emergency clears both the
// last category and the follow-up bias.
func (c Context) afterEmergency() Context {
	return Context{TurnCount: c.TurnCount + 1}
}
